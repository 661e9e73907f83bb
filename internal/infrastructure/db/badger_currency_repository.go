package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/damon-houk/exchange-rates-sync/internal/domain/entity"
	"github.com/damon-houk/exchange-rates-sync/internal/domain/repository"
	"github.com/dgraph-io/badger/v3"
)

const currencyKeyPrefix = "currency:"

// Ensure BadgerCurrencyRepository implements repository.CurrencyRepository at compile time.
var _ repository.CurrencyRepository = (*BadgerCurrencyRepository)(nil)

// BadgerCurrencyRepository implements the currency repository interface using BadgerDB
type BadgerCurrencyRepository struct {
	db *badger.DB
}

// NewBadgerCurrencyRepository creates a new BadgerDB currency repository
func NewBadgerCurrencyRepository(db *badger.DB) *BadgerCurrencyRepository {
	return &BadgerCurrencyRepository{db: db}
}

func currencyKey(code string) []byte {
	return []byte(currencyKeyPrefix + code)
}

// UpsertAll updates index and value of existing rows and inserts new ones in a single transaction
func (r *BadgerCurrencyRepository) UpsertAll(ctx context.Context, currencies []entity.Currency) error {
	for i := range currencies {
		if err := currencies[i].Validate(); err != nil {
			return fmt.Errorf("invalid currency at position %d: %w", i, err)
		}
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		for _, c := range currencies {
			if err := ctx.Err(); err != nil {
				return err
			}

			record := c
			item, err := txn.Get(currencyKey(c.Code))
			switch {
			case err == nil:
				if err := item.Value(func(val []byte) error {
					return json.Unmarshal(val, &record)
				}); err != nil {
					return fmt.Errorf("failed to decode currency %s: %w", c.Code, err)
				}
				record.Index = c.Index
				record.Value = c.Value
			case errors.Is(err, badger.ErrKeyNotFound):
			default:
				return err
			}

			data, err := json.Marshal(record)
			if err != nil {
				return fmt.Errorf("failed to marshal currency %s: %w", c.Code, err)
			}

			if err := txn.Set(currencyKey(c.Code), data); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return fmt.Errorf("failed to upsert currencies: %w", err)
	}

	return nil
}

// FetchAll returns every stored currency sorted by code
func (r *BadgerCurrencyRepository) FetchAll(ctx context.Context) ([]entity.Currency, error) {
	var currencies []entity.Currency

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(currencyKeyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var c entity.Currency
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &c)
			}); err != nil {
				return fmt.Errorf("failed to decode %s: %w", it.Item().Key(), err)
			}
			currencies = append(currencies, c)
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to fetch currencies: %w", err)
	}

	entity.SortByCode(currencies)
	return currencies, nil
}

// ToggleFavorite flips the favorite flag of a stored currency
func (r *BadgerCurrencyRepository) ToggleFavorite(ctx context.Context, code string) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(currencyKey(code))
		if err != nil {
			return err
		}

		var c entity.Currency
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &c)
		}); err != nil {
			return err
		}

		c.IsFavorite = !c.IsFavorite

		data, err := json.Marshal(c)
		if err != nil {
			return err
		}
		return txn.Set(currencyKey(code), data)
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("currency %s: %w", code, entity.ErrNotFound)
	}

	if err != nil {
		return fmt.Errorf("failed to toggle favorite: %w", err)
	}

	return nil
}

// ClearAll removes every stored currency
func (r *BadgerCurrencyRepository) ClearAll(ctx context.Context) error {
	if err := r.db.DropPrefix([]byte(currencyKeyPrefix)); err != nil {
		return fmt.Errorf("failed to clear currencies: %w", err)
	}
	return nil
}
