// Package service internal/application/service/conversion_service.go
package service

import (
	"context"
	"fmt"

	"github.com/damon-houk/exchange-rates-sync/internal/domain/entity"
	"github.com/damon-houk/exchange-rates-sync/internal/infrastructure/logger"
	"github.com/damon-houk/exchange-rates-sync/internal/infrastructure/middleware"
	"github.com/shopspring/decimal"
)

// RateLookup exposes the current rates relative to the base currency
type RateLookup interface {
	Rate(code string) (float64, bool)
	BaseCurrencyCode() string
}

// Conversion represents an amount converted between two currencies
type Conversion struct {
	From            string          `json:"from"`
	To              string          `json:"to"`
	Base            string          `json:"base"`
	OriginalAmount  decimal.Decimal `json:"original_amount"`
	ExchangeRate    decimal.Decimal `json:"exchange_rate"`
	ConvertedAmount decimal.Decimal `json:"converted_amount"`
}

// ConversionService converts amounts using the synchronized rates
type ConversionService struct {
	rates  RateLookup
	logger logger.Logger
}

// NewConversionService creates a new conversion service
func NewConversionService(rates RateLookup, log logger.Logger) *ConversionService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ConversionService{
		rates:  rates,
		logger: log,
	}
}

// Convert converts amount from one currency to another through the base currency
func (s *ConversionService) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (*Conversion, error) {
	requestID := middleware.GetRequestID(ctx)

	s.logger.Info("Converting amount", map[string]interface{}{
		"request_id": requestID,
		"amount":     amount.String(),
		"from":       from,
		"to":         to,
	})

	if !amount.IsPositive() {
		return nil, entity.ErrInvalidAmount
	}

	fromRate, err := s.lookup(from)
	if err != nil {
		s.logger.Warn("Missing rate for source currency", map[string]interface{}{
			"request_id": requestID,
			"currency":   from,
		})
		return nil, err
	}

	toRate, err := s.lookup(to)
	if err != nil {
		s.logger.Warn("Missing rate for target currency", map[string]interface{}{
			"request_id": requestID,
			"currency":   to,
		})
		return nil, err
	}

	rate := toRate.Div(fromRate)

	// Round to two decimal places
	converted := amount.Mul(rate).Round(2)

	s.logger.Info("Conversion completed", map[string]interface{}{
		"request_id":       requestID,
		"from":             from,
		"to":               to,
		"exchange_rate":    rate.String(),
		"converted_amount": converted.String(),
	})

	return &Conversion{
		From:            from,
		To:              to,
		Base:            s.rates.BaseCurrencyCode(),
		OriginalAmount:  amount,
		ExchangeRate:    rate.Round(6),
		ConvertedAmount: converted,
	}, nil
}

func (s *ConversionService) lookup(code string) (decimal.Decimal, error) {
	value, ok := s.rates.Rate(code)
	if !ok || value <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %s", entity.ErrUnknownCurrency, code)
	}
	return decimal.NewFromFloat(value), nil
}
