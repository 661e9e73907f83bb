package service

import (
	"context"

	"github.com/damon-houk/exchange-rates-sync/internal/domain/entity"
)

// RateSource defines the interface for the remote exchange rate provider
type RateSource interface {
	// FetchLatestRates retrieves the latest rates expressed against the base currency
	FetchLatestRates(ctx context.Context, baseCurrencyCode string) (*entity.RateSnapshot, error)

	// FetchCurrencyCatalog retrieves the code to name catalog
	FetchCurrencyCatalog(ctx context.Context) (entity.Catalog, error)
}

// SymbolResolver maps a currency code to its display symbol
type SymbolResolver interface {
	// Resolve returns the symbol for code, or code itself when unknown
	Resolve(code string) string
}
