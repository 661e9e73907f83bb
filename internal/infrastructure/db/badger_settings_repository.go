package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/damon-houk/exchange-rates-sync/internal/domain/repository"
	"github.com/dgraph-io/badger/v3"
)

const (
	settingsKeyPrefix = "settings:"

	lastSyncedAtKey     = "last_synced_at"
	baseCurrencyCodeKey = "base_currency_code"
)

// Ensure BadgerSettingsRepository implements repository.SettingsRepository at compile time.
var _ repository.SettingsRepository = (*BadgerSettingsRepository)(nil)

// BadgerSettingsRepository stores synchronization settings as plain values in BadgerDB
type BadgerSettingsRepository struct {
	db *badger.DB
}

// NewBadgerSettingsRepository creates a new BadgerDB settings repository
func NewBadgerSettingsRepository(db *badger.DB) *BadgerSettingsRepository {
	return &BadgerSettingsRepository{db: db}
}

// LastSyncedAt returns the epoch seconds of the last successful sync, or nil
func (r *BadgerSettingsRepository) LastSyncedAt(ctx context.Context) (*int64, error) {
	raw, err := r.get(lastSyncedAtKey)
	if err != nil || raw == nil {
		return nil, err
	}

	ts, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", lastSyncedAtKey, err)
	}
	return &ts, nil
}

// SetLastSyncedAt stores the epoch seconds of the last successful sync
func (r *BadgerSettingsRepository) SetLastSyncedAt(ctx context.Context, timestamp int64) error {
	return r.set(lastSyncedAtKey, []byte(strconv.FormatInt(timestamp, 10)))
}

// BaseCurrencyCode returns the chosen base currency or the default one
func (r *BadgerSettingsRepository) BaseCurrencyCode(ctx context.Context) (string, error) {
	raw, err := r.get(baseCurrencyCodeKey)
	if err != nil {
		return repository.DefaultBaseCurrencyCode, err
	}
	if len(raw) == 0 {
		return repository.DefaultBaseCurrencyCode, nil
	}
	return string(raw), nil
}

// SetBaseCurrencyCode stores the chosen base currency
func (r *BadgerSettingsRepository) SetBaseCurrencyCode(ctx context.Context, code string) error {
	return r.set(baseCurrencyCodeKey, []byte(code))
}

// get returns nil without error when the key is missing
func (r *BadgerSettingsRepository) get(key string) ([]byte, error) {
	var value []byte

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(settingsKeyPrefix + key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, nil
}

func (r *BadgerSettingsRepository) set(key string, value []byte) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(settingsKeyPrefix+key), value)
	})
	if err != nil {
		return fmt.Errorf("failed to store setting %s: %w", key, err)
	}
	return nil
}
