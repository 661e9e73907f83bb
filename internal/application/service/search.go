package service

import (
	"strings"

	"github.com/damon-houk/exchange-rates-sync/internal/domain/entity"
)

// VisibleRecords returns the records matching the favorites filter and search text,
// ordered by code. The search is a case-insensitive substring match on name or code.
func (s *SyncService) VisibleRecords(search string, favoritesOnly bool) []entity.Currency {
	s.mu.Lock()
	defer s.mu.Unlock()

	return filterRecords(orderedCopy(s.records), search, favoritesOnly)
}

func filterRecords(records []entity.Currency, search string, favoritesOnly bool) []entity.Currency {
	needle := strings.ToLower(search)

	visible := make([]entity.Currency, 0, len(records))
	for _, c := range records {
		if favoritesOnly && !c.IsFavorite {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(c.Name), needle) &&
			!strings.Contains(strings.ToLower(c.Code), needle) {
			continue
		}
		visible = append(visible, c)
	}
	return visible
}
