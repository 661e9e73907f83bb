// internal/infrastructure/api/fixer_client_test.go
package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damon-houk/exchange-rates-sync/internal/infrastructure/logger"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*FixerClient, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewFixerClient(FixerConfig{
		BaseURL:     server.URL,
		APIKey:      "secret-key",
		MaxAttempts: 1,
	}, nil, logger.NewJSONLogger(nil, logger.ErrorLevel))

	return client, server
}

func TestFetchLatestRates(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest", r.URL.Path)
		assert.Equal(t, "secret-key", r.URL.Query().Get("access_key"))
		assert.Equal(t, "EUR", r.URL.Query().Get("base"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"timestamp": 1731312845,
			"base": "EUR",
			"date": "2024-11-11",
			"rates": {"AUD": 1.624809, "EUR": 1, "USD": 1.069119, "BTC": 1.3140604e-5}
		}`))
	})

	snapshot, err := client.FetchLatestRates(context.Background(), "EUR")

	require.NoError(t, err)
	assert.Equal(t, int64(1731312845), snapshot.Timestamp)
	assert.Equal(t, "EUR", snapshot.Base)
	assert.Equal(t, "2024-11-11", snapshot.Date)
	assert.Len(t, snapshot.Rates, 4)
	assert.Equal(t, 1.069119, snapshot.Rates["USD"])
	assert.InDelta(t, 1.3140604e-5, snapshot.Rates["BTC"], 1e-12)
	assert.Equal(t, []string{"AUD", "BTC", "EUR", "USD"}, snapshot.SortedCodes())
}

func TestFetchLatestRatesProviderError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"success": false,
			"error": {"code": 101, "type": "invalid_access_key", "info": "You have not supplied a valid API Access Key."}
		}`))
	})

	snapshot, err := client.FetchLatestRates(context.Background(), "EUR")

	assert.Nil(t, snapshot)
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 101, perr.Code)
	assert.Equal(t, "invalid_access_key", perr.Type)
	assert.Contains(t, err.Error(), "valid API Access Key")
}

func TestFetchLatestRatesFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error", http.StatusInternalServerError, `oops`, "API returned error status: 500"},
		{"malformed payload", http.StatusOK, `{"success": true, "rates": [1, 2]}`, "failed to decode response"},
		{"empty rates", http.StatusOK, `{"success": true, "timestamp": 10, "rates": {}}`, "no rates returned"},
		{"missing timestamp", http.StatusOK, `{"success": true, "rates": {"USD": 1.1}}`, "invalid timestamp"},
		{"unsuccessful without details", http.StatusOK, `{"success": false}`, "request was not successful"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			snapshot, err := client.FetchLatestRates(context.Background(), "EUR")

			assert.Nil(t, snapshot)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFetchCurrencyCatalog(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/symbols", r.URL.Path)
		assert.Equal(t, "secret-key", r.URL.Query().Get("access_key"))
		assert.Empty(t, r.URL.Query().Get("base"))

		w.Write([]byte(`{
			"success": true,
			"symbols": {"EUR": "Euro", "USD": "United States Dollar"}
		}`))
	})

	catalog, err := client.FetchCurrencyCatalog(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Euro", catalog["EUR"])
	assert.Equal(t, "United States Dollar", catalog["USD"])
}

func TestFetchCurrencyCatalogEmpty(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "symbols": {}}`))
	})

	catalog, err := client.FetchCurrencyCatalog(context.Background())

	assert.Nil(t, catalog)
	assert.ErrorContains(t, err, "no symbols returned")
}

func TestFetchRetriesTransportErrors(t *testing.T) {
	calls := 0
	transport := roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("connection reset by peer")
		}
		return http.DefaultTransport.RoundTrip(r)
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "timestamp": 1731312845, "base": "USD", "rates": {"USD": 1}}`))
	}))
	defer server.Close()

	client := NewFixerClient(FixerConfig{BaseURL: server.URL, MaxAttempts: 3},
		&http.Client{Transport: transport}, logger.NewJSONLogger(nil, logger.ErrorLevel))

	var waits []time.Duration
	client.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	snapshot, err := client.FetchLatestRates(context.Background(), "USD")

	require.NoError(t, err)
	assert.Equal(t, "USD", snapshot.Base)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{1 * time.Second, 4 * time.Second}, waits)
}

func TestFetchRetriesServerErrors(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"success": true, "timestamp": 1731312845, "base": "EUR", "rates": {"USD": 1.07}}`))
	})
	client.maxAttempts = 2
	client.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	snapshot, err := client.FetchLatestRates(context.Background(), "EUR")

	require.NoError(t, err)
	assert.Equal(t, 1.07, snapshot.Rates["USD"])
	assert.Equal(t, 2, calls)
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	})
	client.maxAttempts = 3
	client.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	_, err := client.FetchLatestRates(context.Background(), "EUR")

	assert.ErrorContains(t, err, "API returned error status: 404")
	assert.Equal(t, 1, calls)
}

func TestFetchGivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	transport := roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		return nil, errors.New("no route to host")
	})

	client := NewFixerClient(FixerConfig{BaseURL: "http://fixer.invalid/api", MaxAttempts: 2},
		&http.Client{Transport: transport}, logger.NewJSONLogger(nil, logger.ErrorLevel))
	client.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	_, err := client.FetchCurrencyCatalog(context.Background())

	assert.Equal(t, 2, calls)
	assert.ErrorContains(t, err, "failed to execute request after 2 attempts")
}

func TestFetchStopsRetryingOnCancel(t *testing.T) {
	transport := roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("timeout")
	})

	client := NewFixerClient(FixerConfig{BaseURL: "http://fixer.invalid/api", MaxAttempts: 5},
		&http.Client{Transport: transport}, logger.NewJSONLogger(nil, logger.ErrorLevel))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchLatestRates(ctx, "EUR")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewFixerClientDefaults(t *testing.T) {
	client := NewFixerClient(FixerConfig{APIKey: "k"}, nil, nil)

	assert.Equal(t, fixerBaseURL, client.baseURL)
	assert.Equal(t, defaultMaxAttempts, client.maxAttempts)
	assert.Equal(t, defaultTimeout, client.httpClient.Timeout)

	reqURL, err := client.buildURL(latestPath, map[string][]string{"base": {"GBP"}})
	require.NoError(t, err)
	assert.Equal(t, "http://data.fixer.io/api/latest?access_key=k&base=GBP", reqURL)
}
