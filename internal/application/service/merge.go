package service

import (
	"github.com/damon-houk/exchange-rates-sync/internal/domain/entity"
	domainservice "github.com/damon-houk/exchange-rates-sync/internal/domain/service"
)

// mergeRates folds a rate batch into records in ascending code order and returns
// how many records were created. Existing records only take the new value, so
// names, symbols, favorites and indexes survive a refresh. Records missing from
// the batch are kept.
func mergeRates(
	records map[string]*entity.Currency,
	snapshot *entity.RateSnapshot,
	name func(code string) string,
	symbols domainservice.SymbolResolver,
) int {
	inserted := 0

	for i, code := range snapshot.SortedCodes() {
		value := snapshot.Rates[code]

		if existing, ok := records[code]; ok {
			existing.Value = value
			continue
		}

		// The index is the position inside this batch, not inside the merged set.
		records[code] = &entity.Currency{
			Index:  i,
			Code:   code,
			Name:   name(code),
			Symbol: symbols.Resolve(code),
			Value:  value,
		}
		inserted++
	}

	return inserted
}

func orderedCopy(records map[string]*entity.Currency) []entity.Currency {
	out := make([]entity.Currency, 0, len(records))
	for _, c := range records {
		out = append(out, *c)
	}
	entity.SortByCode(out)
	return out
}
