// internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/damon-houk/exchange-rates-sync/internal/domain/entity"
	"github.com/damon-houk/exchange-rates-sync/internal/infrastructure/logger"
	"github.com/stretchr/testify/mock"
)

// MockCurrencyRepository mocks the CurrencyRepository interface
type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) UpsertAll(ctx context.Context, currencies []entity.Currency) error {
	args := m.Called(ctx, currencies)
	return args.Error(0)
}

func (m *MockCurrencyRepository) FetchAll(ctx context.Context) ([]entity.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) ToggleFavorite(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockCurrencyRepository) ClearAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockSettingsRepository mocks the SettingsRepository interface
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) LastSyncedAt(ctx context.Context) (*int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*int64), args.Error(1)
}

func (m *MockSettingsRepository) SetLastSyncedAt(ctx context.Context, timestamp int64) error {
	args := m.Called(ctx, timestamp)
	return args.Error(0)
}

func (m *MockSettingsRepository) BaseCurrencyCode(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockSettingsRepository) SetBaseCurrencyCode(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

// MockRateSource mocks the remote rate provider
type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) FetchLatestRates(ctx context.Context, baseCurrencyCode string) (*entity.RateSnapshot, error) {
	args := m.Called(ctx, baseCurrencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RateSnapshot), args.Error(1)
}

func (m *MockRateSource) FetchCurrencyCatalog(ctx context.Context) (entity.Catalog, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entity.Catalog), args.Error(1)
}

// MockSymbolResolver mocks the symbol lookup
type MockSymbolResolver struct {
	mock.Mock
}

func (m *MockSymbolResolver) Resolve(code string) string {
	args := m.Called(code)
	return args.String(0)
}

// MockLogger mocks the logger interface
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Info(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Warn(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Error(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Fatal(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) WithField(key string, value interface{}) logger.Logger {
	args := m.Called(key, value)
	return args.Get(0).(logger.Logger)
}

func (m *MockLogger) WithFields(fields map[string]interface{}) logger.Logger {
	args := m.Called(fields)
	return args.Get(0).(logger.Logger)
}
