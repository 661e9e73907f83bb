package entity

import (
	"errors"
	"sort"
)

// Currency represents a single exchange rate row shown to the user
type Currency struct {
	Index      int     `json:"index"`
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Symbol     string  `json:"symbol"`
	Value      float64 `json:"value"`
	IsFavorite bool    `json:"is_favorite"`
}

// Validate ensures the currency can be stored
func (c *Currency) Validate() error {
	if c.Code == "" {
		return errors.New("currency code must not be empty")
	}

	if c.Index < 0 {
		return errors.New("index must not be negative")
	}

	return nil
}

// SortByCode orders currencies by code, ascending
func SortByCode(currencies []Currency) {
	sort.Slice(currencies, func(i, j int) bool {
		return currencies[i].Code < currencies[j].Code
	})
}
