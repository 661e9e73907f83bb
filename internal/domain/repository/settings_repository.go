package repository

import "context"

// DefaultBaseCurrencyCode is used until a base currency has been chosen
const DefaultBaseCurrencyCode = "EUR"

// SettingsRepository defines the interface for persisted synchronization settings
type SettingsRepository interface {
	// LastSyncedAt returns the epoch seconds of the last successful sync, or nil
	LastSyncedAt(ctx context.Context) (*int64, error)

	// SetLastSyncedAt stores the epoch seconds of the last successful sync
	SetLastSyncedAt(ctx context.Context, timestamp int64) error

	// BaseCurrencyCode returns the chosen base currency, DefaultBaseCurrencyCode when unset
	BaseCurrencyCode(ctx context.Context) (string, error)

	// SetBaseCurrencyCode stores the chosen base currency
	SetBaseCurrencyCode(ctx context.Context, code string) error
}
