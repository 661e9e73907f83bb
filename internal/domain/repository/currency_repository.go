// Package repository internal/domain/repository/currency_repository.go
package repository

import (
	"context"

	"github.com/damon-houk/exchange-rates-sync/internal/domain/entity"
)

// CurrencyRepository defines the interface for durable currency records keyed by code
type CurrencyRepository interface {
	// UpsertAll updates existing rows by code and inserts the rest
	UpsertAll(ctx context.Context, currencies []entity.Currency) error

	// FetchAll returns every stored currency sorted by code
	FetchAll(ctx context.Context) ([]entity.Currency, error)

	// ToggleFavorite flips the favorite flag of a stored currency
	ToggleFavorite(ctx context.Context, code string) error

	// ClearAll removes every stored currency
	ClearAll(ctx context.Context) error
}
