package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/damon-houk/exchange-rates-sync/internal/domain/entity"
	"github.com/damon-houk/exchange-rates-sync/internal/domain/service"
)

var (
	//go:embed fixtures/latest.json
	fixtureLatest []byte

	//go:embed fixtures/symbols.json
	fixtureSymbols []byte
)

// Ensure FixtureSource implements service.RateSource at compile time.
var _ service.RateSource = (*FixtureSource)(nil)

// FixtureSource serves a rate snapshot shipped with the binary, for offline runs.
// Rates are rebased when another base currency is requested.
type FixtureSource struct {
	latest  LatestResponse
	symbols SymbolsResponse
	now     func() time.Time
}

// NewFixtureSource decodes the embedded snapshot and catalog
func NewFixtureSource() (*FixtureSource, error) {
	s := &FixtureSource{now: time.Now}

	if err := json.Unmarshal(fixtureLatest, &s.latest); err != nil {
		return nil, fmt.Errorf("failed to decode fixture rates: %w", err)
	}
	if err := json.Unmarshal(fixtureSymbols, &s.symbols); err != nil {
		return nil, fmt.Errorf("failed to decode fixture symbols: %w", err)
	}

	return s, nil
}

// FetchLatestRates returns the fixture rates expressed against baseCurrencyCode
func (s *FixtureSource) FetchLatestRates(ctx context.Context, baseCurrencyCode string) (*entity.RateSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pivot, ok := s.latest.Rates[baseCurrencyCode]
	if !ok || pivot <= 0 {
		return nil, &ProviderError{
			Code: 201,
			Type: "invalid_base_currency",
			Info: fmt.Sprintf("no fixture rate for %s", baseCurrencyCode),
		}
	}

	rates := make(map[string]float64, len(s.latest.Rates))
	for code, value := range s.latest.Rates {
		rates[code] = value / pivot
	}

	return &entity.RateSnapshot{
		Timestamp: s.now().Unix(),
		Base:      baseCurrencyCode,
		Date:      s.latest.Date,
		Rates:     rates,
	}, nil
}

// FetchCurrencyCatalog returns the fixture catalog
func (s *FixtureSource) FetchCurrencyCatalog(ctx context.Context) (entity.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	catalog := make(entity.Catalog, len(s.symbols.Symbols))
	for code, name := range s.symbols.Symbols {
		catalog[code] = name
	}
	return catalog, nil
}
