package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/damon-houk/exchange-rates-sync/internal/domain/entity"
	"github.com/damon-houk/exchange-rates-sync/internal/domain/repository"

	_ "github.com/glebarez/go-sqlite"
)

var (
	_ repository.CurrencyRepository = (*SQLiteStore)(nil)
	_ repository.SettingsRepository = (*SQLiteStore)(nil)
)

// SQLiteStore keeps currencies and settings in a single SQLite file
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at dbPath with WAL mode enabled and creates the schema
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// A single connection serialises writers, SQLite allows only one anyway.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS currencies (
			code TEXT PRIMARY KEY,
			idx INTEGER NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			symbol TEXT NOT NULL DEFAULT '',
			value REAL NOT NULL,
			is_favorite INTEGER NOT NULL DEFAULT 0
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create currencies table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create metadata table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// UpsertAll updates index and value of existing rows and inserts new ones in a single transaction
func (s *SQLiteStore) UpsertAll(ctx context.Context, currencies []entity.Currency) error {
	for i := range currencies {
		if err := currencies[i].Validate(); err != nil {
			return fmt.Errorf("invalid currency at position %d: %w", i, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO currencies (code, idx, name, symbol, value, is_favorite)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET idx = excluded.idx, value = excluded.value
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, c := range currencies {
		if _, err := stmt.ExecContext(ctx, c.Code, c.Index, c.Name, c.Symbol, c.Value, c.IsFavorite); err != nil {
			return fmt.Errorf("failed to upsert currency %s: %w", c.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit currencies: %w", err)
	}
	return nil
}

// FetchAll returns every stored currency sorted by code
func (s *SQLiteStore) FetchAll(ctx context.Context) ([]entity.Currency, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT idx, code, name, symbol, value, is_favorite FROM currencies ORDER BY code ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch currencies: %w", err)
	}
	defer rows.Close()

	var currencies []entity.Currency
	for rows.Next() {
		var c entity.Currency
		if err := rows.Scan(&c.Index, &c.Code, &c.Name, &c.Symbol, &c.Value, &c.IsFavorite); err != nil {
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		currencies = append(currencies, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate currencies: %w", err)
	}
	return currencies, nil
}

// ToggleFavorite flips the favorite flag of a stored currency
func (s *SQLiteStore) ToggleFavorite(ctx context.Context, code string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE currencies SET is_favorite = NOT is_favorite WHERE code = ?", code)
	if err != nil {
		return fmt.Errorf("failed to toggle favorite: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to toggle favorite: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("currency %s: %w", code, entity.ErrNotFound)
	}
	return nil
}

// ClearAll removes every stored currency
func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM currencies"); err != nil {
		return fmt.Errorf("failed to clear currencies: %w", err)
	}
	return nil
}

// LastSyncedAt returns the epoch seconds of the last successful sync, or nil
func (s *SQLiteStore) LastSyncedAt(ctx context.Context) (*int64, error) {
	raw, ok, err := s.getMetadata(ctx, lastSyncedAtKey)
	if err != nil || !ok {
		return nil, err
	}

	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", lastSyncedAtKey, err)
	}
	return &ts, nil
}

// SetLastSyncedAt stores the epoch seconds of the last successful sync
func (s *SQLiteStore) SetLastSyncedAt(ctx context.Context, timestamp int64) error {
	return s.setMetadata(ctx, lastSyncedAtKey, strconv.FormatInt(timestamp, 10))
}

// BaseCurrencyCode returns the chosen base currency or the default one
func (s *SQLiteStore) BaseCurrencyCode(ctx context.Context) (string, error) {
	raw, ok, err := s.getMetadata(ctx, baseCurrencyCodeKey)
	if err != nil {
		return repository.DefaultBaseCurrencyCode, err
	}
	if !ok || raw == "" {
		return repository.DefaultBaseCurrencyCode, nil
	}
	return raw, nil
}

// SetBaseCurrencyCode stores the chosen base currency
func (s *SQLiteStore) SetBaseCurrencyCode(ctx context.Context, code string) error {
	return s.setMetadata(ctx, baseCurrencyCodeKey, code)
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) getMetadata(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) setMetadata(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to store setting %s: %w", key, err)
	}
	return nil
}
