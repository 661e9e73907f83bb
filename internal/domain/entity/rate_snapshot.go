package entity

import "sort"

// RateSnapshot is one batch of rates returned by the remote provider
type RateSnapshot struct {
	Timestamp int64              `json:"timestamp"`
	Base      string             `json:"base"`
	Date      string             `json:"date"`
	Rates     map[string]float64 `json:"rates"`
}

// SortedCodes returns the codes of the batch in ascending order
func (s *RateSnapshot) SortedCodes() []string {
	codes := make([]string, 0, len(s.Rates))
	for code := range s.Rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Catalog maps currency codes to their human-readable names
type Catalog map[string]string
