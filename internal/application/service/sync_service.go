// Package service internal/application/service/sync_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/damon-houk/exchange-rates-sync/internal/domain/entity"
	"github.com/damon-houk/exchange-rates-sync/internal/domain/repository"
	domainservice "github.com/damon-houk/exchange-rates-sync/internal/domain/service"
	"github.com/damon-houk/exchange-rates-sync/internal/infrastructure/cache"
	"github.com/damon-houk/exchange-rates-sync/internal/infrastructure/logger"
	"github.com/google/uuid"
)

// SyncService keeps the in-memory currency set in step with the remote provider and the local store
type SyncService struct {
	currencies repository.CurrencyRepository
	settings   repository.SettingsRepository
	source     domainservice.RateSource
	symbols    domainservice.SymbolResolver
	catalog    *cache.CatalogCache
	logger     logger.Logger
	now        func() time.Time

	// persistMu orders store writes so a toggle never races the upsert of the same row
	persistMu sync.Mutex

	mu               sync.Mutex
	records          map[string]*entity.Currency
	baseCode         string
	lastSyncedAt     *int64
	isLoading        bool
	inFlight         bool
	pendingBase      string
	lastError        string
	lastPersistError string
}

// NewSyncService creates the engine and reads the persisted settings
func NewSyncService(
	ctx context.Context,
	currencies repository.CurrencyRepository,
	settings repository.SettingsRepository,
	source domainservice.RateSource,
	symbols domainservice.SymbolResolver,
	catalog *cache.CatalogCache,
	log logger.Logger,
) *SyncService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	if catalog == nil {
		catalog = cache.NewCatalogCache()
	}

	s := &SyncService{
		currencies: currencies,
		settings:   settings,
		source:     source,
		symbols:    symbols,
		catalog:    catalog,
		logger:     log,
		now:        time.Now,
		records:    make(map[string]*entity.Currency),
		baseCode:   repository.DefaultBaseCurrencyCode,
	}

	if code, err := settings.BaseCurrencyCode(ctx); err != nil {
		s.recordPersistError("Failed to read base currency code", err)
	} else if code != "" {
		s.baseCode = code
	}

	if ts, err := settings.LastSyncedAt(ctx); err != nil {
		s.recordPersistError("Failed to read last sync timestamp", err)
	} else {
		s.lastSyncedAt = ts
	}

	return s
}

// LoadCached replaces the in-memory set with whatever the store holds.
// An empty or unreadable store leaves the engine waiting for its first fetch.
func (s *SyncService) LoadCached(ctx context.Context) error {
	stored, err := s.currencies.FetchAll(ctx)
	if err != nil {
		s.recordPersistError("Failed to load cached currencies", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(stored) == 0 {
		if len(s.records) == 0 {
			s.isLoading = true
		}
		if err != nil {
			return fmt.Errorf("%w: %v", entity.ErrPersistence, err)
		}
		return nil
	}

	records := make(map[string]*entity.Currency, len(stored))
	for i := range stored {
		c := stored[i]
		records[c.Code] = &c
	}
	s.records = records
	s.isLoading = false

	s.logger.Info("Loaded cached currencies", map[string]interface{}{
		"count": len(records),
	})

	return nil
}

// Refresh fetches the latest rates for baseCurrencyCode and merges them into the set.
// It returns ErrRefreshInProgress without side effects when another refresh is running.
func (s *SyncService) Refresh(ctx context.Context, baseCurrencyCode string) error {
	base, err := normalizeCode(baseCurrencyCode)
	if err != nil {
		return err
	}

	s.catalog.CleanExpired()

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return entity.ErrRefreshInProgress
	}
	s.inFlight = true
	if len(s.records) == 0 {
		s.isLoading = true
	}
	needCatalog := len(s.records) == 0 && s.catalog.Empty()
	s.mu.Unlock()

	log := s.logger.WithFields(map[string]interface{}{
		"sync_id": uuid.New().String(),
		"base":    base,
	})
	log.Info("Refreshing exchange rates", nil)

	start := s.now()
	err = s.refresh(ctx, log, base, needCatalog)

	// A base change queued during the fetch runs before the flight ends
	s.mu.Lock()
	for s.pendingBase != "" && ctx.Err() == nil {
		base = s.pendingBase
		s.pendingBase = ""
		needCatalog = len(s.records) == 0 && s.catalog.Empty()
		s.mu.Unlock()

		log = s.logger.WithFields(map[string]interface{}{
			"sync_id": uuid.New().String(),
			"base":    base,
		})
		log.Info("Refreshing for changed base currency", nil)
		err = s.refresh(ctx, log, base, needCatalog)

		s.mu.Lock()
	}
	s.pendingBase = ""
	s.inFlight = false
	s.isLoading = false
	if err != nil {
		s.lastError = err.Error()
	} else {
		s.lastError = ""
	}
	count := len(s.records)
	s.mu.Unlock()

	if err != nil {
		log.Error("Failed to refresh exchange rates", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}

	log.Info("Exchange rates refreshed", map[string]interface{}{
		"count":       count,
		"duration_ms": s.now().Sub(start).Milliseconds(),
	})
	return nil
}

// RefreshCurrent refreshes against the configured base currency
func (s *SyncService) RefreshCurrent(ctx context.Context) error {
	return s.Refresh(ctx, s.BaseCurrencyCode())
}

func (s *SyncService) refresh(ctx context.Context, log logger.Logger, base string, needCatalog bool) error {
	if needCatalog {
		catalog, err := s.source.FetchCurrencyCatalog(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch currency catalog: %w", err)
		}
		s.catalog.Put(catalog)
		log.Debug("Currency catalog cached", map[string]interface{}{
			"size": s.catalog.Size(),
		})
	}

	snapshot, err := s.source.FetchLatestRates(ctx, base)
	if err != nil {
		return fmt.Errorf("failed to fetch latest rates: %w", err)
	}

	if snapshot.Base != "" && snapshot.Base != base {
		log.Warn("Provider returned a different base currency", map[string]interface{}{
			"returned_base": snapshot.Base,
		})
	}

	if !needCatalog && s.catalog.Empty() && s.hasUnknownCodes(snapshot) {
		// Names are cosmetic, a failed lookup must not fail the refresh.
		if catalog, err := s.source.FetchCurrencyCatalog(ctx); err != nil {
			log.Warn("Failed to fetch currency catalog", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			s.catalog.Put(catalog)
		}
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if err := s.settings.SetLastSyncedAt(ctx, snapshot.Timestamp); err != nil {
		s.recordPersistError("Failed to store last sync timestamp", err)
	}

	merged, inserted := s.merge(snapshot)

	log.Debug("Merged rate batch", map[string]interface{}{
		"rates":    len(snapshot.Rates),
		"inserted": inserted,
	})

	if err := s.currencies.UpsertAll(ctx, merged); err != nil {
		s.recordPersistError("Failed to store currencies", err)
	}

	return nil
}

func (s *SyncService) merge(snapshot *entity.RateSnapshot) ([]entity.Currency, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := snapshot.Timestamp
	s.lastSyncedAt = &ts

	name := func(code string) string {
		n, _ := s.catalog.Get(code)
		return n
	}
	inserted := mergeRates(s.records, snapshot, name, s.symbols)
	return orderedCopy(s.records), inserted
}

func (s *SyncService) hasUnknownCodes(snapshot *entity.RateSnapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for code := range snapshot.Rates {
		if _, ok := s.records[code]; !ok {
			return true
		}
	}
	return false
}

// ToggleFavorite flips the favorite flag of code and persists it.
// The in-memory flag stays flipped when the store write fails.
func (s *SyncService) ToggleFavorite(ctx context.Context, code string) (*entity.Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	record, ok := s.records[code]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", entity.ErrCurrencyNotFound, code)
	}
	record.IsFavorite = !record.IsFavorite
	updated := *record
	s.mu.Unlock()

	if err := s.currencies.ToggleFavorite(ctx, code); err != nil {
		s.recordPersistError("Failed to store favorite flag", err)
		return &updated, fmt.Errorf("%w: %v", entity.ErrPersistence, err)
	}

	s.logger.Debug("Toggled favorite", map[string]interface{}{
		"code":        code,
		"is_favorite": updated.IsFavorite,
	})

	return &updated, nil
}

// SetBaseCurrency persists a new base currency and refreshes the loaded set when it changed.
// A change arriving while a refresh is running is queued behind that refresh.
func (s *SyncService) SetBaseCurrency(ctx context.Context, code string) error {
	base, err := normalizeCode(code)
	if err != nil {
		return err
	}

	if err := s.settings.SetBaseCurrencyCode(ctx, base); err != nil {
		s.recordPersistError("Failed to store base currency code", err)
		return fmt.Errorf("%w: %v", entity.ErrPersistence, err)
	}

	s.mu.Lock()
	changed := s.baseCode != base
	s.baseCode = base
	refreshNeeded := len(s.records) > 0 || s.inFlight
	s.mu.Unlock()

	if !changed {
		return nil
	}

	s.logger.Info("Base currency changed", map[string]interface{}{
		"base": base,
	})

	// An empty set is filled by the next scheduled refresh
	if !refreshNeeded {
		return nil
	}

	for {
		err := s.Refresh(ctx, base)
		if !errors.Is(err, entity.ErrRefreshInProgress) {
			return err
		}

		s.mu.Lock()
		if s.inFlight {
			s.pendingBase = base
			s.mu.Unlock()
			s.logger.Info("Queued refresh for changed base currency", map[string]interface{}{
				"base": base,
			})
			return nil
		}
		s.mu.Unlock()
	}
}

// ClearAll wipes the persisted and in-memory currency sets
func (s *SyncService) ClearAll(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if err := s.currencies.ClearAll(ctx); err != nil {
		s.recordPersistError("Failed to clear currencies", err)
		return fmt.Errorf("%w: %v", entity.ErrPersistence, err)
	}

	s.catalog.Clear()

	s.mu.Lock()
	s.records = make(map[string]*entity.Currency)
	s.isLoading = true
	s.mu.Unlock()

	s.logger.Info("Cleared all currencies", nil)
	return nil
}

// State returns a snapshot of the synchronization bookkeeping
func (s *SyncService) State() entity.SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := entity.SyncState{
		BaseCurrencyCode: s.baseCode,
		IsLoading:        s.isLoading,
		InFlight:         s.inFlight,
		LastError:        s.lastError,
		LastPersistError: s.lastPersistError,
		Count:            len(s.records),
	}

	if s.lastSyncedAt != nil {
		ts := *s.lastSyncedAt
		state.LastSyncedAt = &ts
		state.UpdatedAt = FormatTimestamp(ts, s.now())
	}

	return state
}

// BaseCurrencyCode returns the configured base currency
func (s *SyncService) BaseCurrencyCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseCode
}

// Rate returns the value of code relative to the base currency
func (s *SyncService) Rate(code string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[code]
	if !ok {
		return 0, false
	}
	return record.Value, true
}

// Records returns every currency ordered by code
func (s *SyncService) Records() []entity.Currency {
	s.mu.Lock()
	defer s.mu.Unlock()
	return orderedCopy(s.records)
}

func (s *SyncService) recordPersistError(msg string, err error) {
	s.logger.Error(msg, map[string]interface{}{
		"error": err.Error(),
	})

	s.mu.Lock()
	s.lastPersistError = err.Error()
	s.mu.Unlock()
}

func normalizeCode(code string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return "", entity.ErrInvalidBaseCurrency
	}

	for _, r := range normalized {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("%w: %q", entity.ErrInvalidBaseCurrency, code)
		}
	}
	return normalized, nil
}

