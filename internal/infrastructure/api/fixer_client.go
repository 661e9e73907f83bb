package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/damon-houk/exchange-rates-sync/internal/domain/entity"
	"github.com/damon-houk/exchange-rates-sync/internal/domain/service"
	"github.com/damon-houk/exchange-rates-sync/internal/infrastructure/logger"
)

const (
	fixerBaseURL = "http://data.fixer.io/api"
	latestPath   = "/latest"
	symbolsPath  = "/symbols"

	defaultMaxAttempts = 3
	defaultTimeout     = 10 * time.Second
)

// Ensure FixerClient implements service.RateSource at compile time.
var _ service.RateSource = (*FixerClient)(nil)

// FixerConfig holds the settings of the fixer.io client
type FixerConfig struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxAttempts int
}

// FixerClient implements the RateSource interface against the fixer.io API
type FixerClient struct {
	baseURL     string
	apiKey      string
	maxAttempts int
	httpClient  *http.Client
	logger      logger.Logger
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewFixerClient creates a new fixer.io client
func NewFixerClient(cfg FixerConfig, httpClient *http.Client, log logger.Logger) *FixerClient {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{
			Timeout: timeout,
		}
	}

	if log == nil {
		log = logger.GetDefaultLogger()
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = fixerBaseURL
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	return &FixerClient{
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		maxAttempts: maxAttempts,
		httpClient:  httpClient,
		logger:      log.WithField("component", "fixer_client"),
		sleep:       sleepContext,
	}
}

// ProviderError is reported by the provider inside an otherwise valid response
type ProviderError struct {
	Code int    `json:"code"`
	Type string `json:"type"`
	Info string `json:"info"`
}

func (e *ProviderError) Error() string {
	if e.Info != "" {
		return fmt.Sprintf("provider error %d (%s): %s", e.Code, e.Type, e.Info)
	}
	return fmt.Sprintf("provider error %d (%s)", e.Code, e.Type)
}

// LatestResponse represents the response structure of the latest rates endpoint
type LatestResponse struct {
	Success   bool               `json:"success"`
	Timestamp int64              `json:"timestamp"`
	Base      string             `json:"base"`
	Date      string             `json:"date"`
	Rates     map[string]float64 `json:"rates"`
	Error     *ProviderError     `json:"error,omitempty"`
}

// SymbolsResponse represents the response structure of the symbols endpoint
type SymbolsResponse struct {
	Success bool              `json:"success"`
	Symbols map[string]string `json:"symbols"`
	Error   *ProviderError    `json:"error,omitempty"`
}

// FetchLatestRates retrieves the latest rates expressed against baseCurrencyCode
func (c *FixerClient) FetchLatestRates(ctx context.Context, baseCurrencyCode string) (*entity.RateSnapshot, error) {
	query := url.Values{}
	query.Set("base", baseCurrencyCode)

	var resp LatestResponse
	if err := c.get(ctx, latestPath, query, &resp); err != nil {
		return nil, err
	}

	return resp.toSnapshot(baseCurrencyCode)
}

// FetchCurrencyCatalog retrieves the code to name catalog
func (c *FixerClient) FetchCurrencyCatalog(ctx context.Context) (entity.Catalog, error) {
	var resp SymbolsResponse
	if err := c.get(ctx, symbolsPath, nil, &resp); err != nil {
		return nil, err
	}

	if !resp.Success {
		return nil, providerFailure(resp.Error)
	}

	if len(resp.Symbols) == 0 {
		return nil, fmt.Errorf("failed to decode response: no symbols returned")
	}

	return entity.Catalog(resp.Symbols), nil
}

func (r *LatestResponse) toSnapshot(requestedBase string) (*entity.RateSnapshot, error) {
	if !r.Success {
		return nil, providerFailure(r.Error)
	}

	if len(r.Rates) == 0 {
		return nil, fmt.Errorf("failed to decode response: no rates returned")
	}

	if r.Timestamp <= 0 {
		return nil, fmt.Errorf("failed to decode response: invalid timestamp %d", r.Timestamp)
	}

	base := r.Base
	if base == "" {
		base = requestedBase
	}

	return &entity.RateSnapshot{
		Timestamp: r.Timestamp,
		Base:      base,
		Date:      r.Date,
		Rates:     r.Rates,
	}, nil
}

func providerFailure(perr *ProviderError) error {
	if perr == nil {
		return &ProviderError{Type: "unknown", Info: "request was not successful"}
	}
	return perr
}

// get performs a GET request with retry logic and decodes the JSON body into dest
func (c *FixerClient) get(ctx context.Context, path string, query url.Values, dest interface{}) error {
	reqURL, err := c.buildURL(path, query)
	if err != nil {
		return fmt.Errorf("failed to build request URL: %w", err)
	}

	var resp *http.Response
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		var req *http.Request
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Add("Accept", "application/json")

		resp, err = c.httpClient.Do(req)
		if err == nil && resp.StatusCode < http.StatusInternalServerError {
			break
		}
		if err == nil {
			// Server side failures are retried like transport errors
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			err = fmt.Errorf("API returned error status: %d", resp.StatusCode)
		}

		if attempt < c.maxAttempts {
			backoffTime := time.Duration(attempt*attempt) * time.Second
			c.logger.Warn("Request failed, retrying", map[string]interface{}{
				"path":        path,
				"attempt":     attempt,
				"max":         c.maxAttempts,
				"retry_after": backoffTime.String(),
				"error":       err.Error(),
			})
			if sleepErr := c.sleep(ctx, backoffTime); sleepErr != nil {
				return fmt.Errorf("failed to execute request: %w", sleepErr)
			}
		}
	}

	if err != nil {
		return fmt.Errorf("failed to execute request after %d attempts: %w", c.maxAttempts, err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Error closing response body", map[string]interface{}{
				"error": closeErr.Error(),
			})
		}
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("Provider response received", map[string]interface{}{
		"path":   path,
		"status": resp.StatusCode,
		"bytes":  len(bodyBytes),
	})

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned error status: %d", resp.StatusCode)
	}

	if err := json.Unmarshal(bodyBytes, dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func (c *FixerClient) buildURL(path string, query url.Values) (string, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", err
	}

	values := u.Query()
	values.Set("access_key", c.apiKey)
	for key, vals := range query {
		for _, v := range vals {
			values.Add(key, v)
		}
	}
	u.RawQuery = values.Encode()

	return u.String(), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
