package handler

import (
	"github.com/damon-houk/exchange-rates-sync/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CurrencyResponse represents a single currency row
type CurrencyResponse struct {
	Index      int     `json:"index"`
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Symbol     string  `json:"symbol"`
	Value      float64 `json:"value"`
	IsFavorite bool    `json:"is_favorite"`
}

// CurrencyListResponse represents the response for the currency list endpoint
type CurrencyListResponse struct {
	Base       string             `json:"base"`
	UpdatedAt  string             `json:"updated_at,omitempty"`
	IsLoading  bool               `json:"is_loading"`
	Count      int                `json:"count"`
	Currencies []CurrencyResponse `json:"currencies"`
}

// StatusResponse represents the synchronization state
type StatusResponse struct {
	BaseCurrencyCode string `json:"base_currency_code"`
	LastSyncedAt     *int64 `json:"last_synced_at,omitempty"`
	UpdatedAt        string `json:"updated_at,omitempty"`
	IsLoading        bool   `json:"is_loading"`
	InFlight         bool   `json:"in_flight"`
	LastError        string `json:"last_error,omitempty"`
	LastPersistError string `json:"last_persist_error,omitempty"`
	Count            int    `json:"count"`
}

// BaseCurrencyRequest represents the request body for changing the base currency
type BaseCurrencyRequest struct {
	Code string `json:"code"`
}

// ConversionResponse represents the response for the conversion endpoint
type ConversionResponse struct {
	From            string          `json:"from"`
	To              string          `json:"to"`
	Base            string          `json:"base"`
	OriginalAmount  decimal.Decimal `json:"original_amount"`
	ExchangeRate    decimal.Decimal `json:"exchange_rate"`
	ConvertedAmount decimal.Decimal `json:"converted_amount"`
}

func newCurrencyResponse(c entity.Currency) CurrencyResponse {
	return CurrencyResponse{
		Index:      c.Index,
		Code:       c.Code,
		Name:       c.Name,
		Symbol:     c.Symbol,
		Value:      c.Value,
		IsFavorite: c.IsFavorite,
	}
}

func newStatusResponse(s entity.SyncState) StatusResponse {
	return StatusResponse{
		BaseCurrencyCode: s.BaseCurrencyCode,
		LastSyncedAt:     s.LastSyncedAt,
		UpdatedAt:        s.UpdatedAt,
		IsLoading:        s.IsLoading,
		InFlight:         s.InFlight,
		LastError:        s.LastError,
		LastPersistError: s.LastPersistError,
		Count:            s.Count,
	}
}
