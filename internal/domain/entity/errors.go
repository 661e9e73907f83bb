package entity

import "errors"

var (
	// ErrNotFound is returned by stores when a key does not exist
	ErrNotFound = errors.New("not found")

	// ErrCurrencyNotFound is returned when a code is not part of the in-memory set
	ErrCurrencyNotFound = errors.New("currency not found")

	// ErrUnknownCurrency is returned when a conversion references a code without a rate
	ErrUnknownCurrency = errors.New("unknown currency")

	// ErrRefreshInProgress is returned when a refresh is requested while another one is running
	ErrRefreshInProgress = errors.New("refresh already in progress")

	// ErrInvalidBaseCurrency is returned for an empty or malformed base currency code
	ErrInvalidBaseCurrency = errors.New("invalid base currency code")

	// ErrInvalidAmount is returned when a conversion amount is not positive
	ErrInvalidAmount = errors.New("amount must be a positive value")

	// ErrPersistence wraps failures of the persistent or settings store
	ErrPersistence = errors.New("persistence failure")
)
