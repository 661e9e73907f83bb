package internal

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/damon-houk/exchange-rates-sync/internal/application/service"
	"github.com/damon-houk/exchange-rates-sync/internal/domain/entity"
	"github.com/damon-houk/exchange-rates-sync/internal/infrastructure/api"
	"github.com/damon-houk/exchange-rates-sync/internal/infrastructure/cache"
	"github.com/damon-houk/exchange-rates-sync/internal/infrastructure/db"
	"github.com/damon-houk/exchange-rates-sync/internal/infrastructure/logger"
	"github.com/damon-houk/exchange-rates-sync/internal/infrastructure/symbols"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformance(t *testing.T) {
	// Skip in short mode or CI
	if testing.Short() {
		t.Skip("Skipping performance test in short mode")
	}

	badgerDB, err := db.OpenBadger(t.TempDir())
	require.NoError(t, err, "failed to open database")
	defer badgerDB.Close()

	source, err := api.NewFixtureSource()
	require.NoError(t, err)

	resolver, err := symbols.NewResolver()
	require.NoError(t, err)

	currencies := db.NewBadgerCurrencyRepository(badgerDB)
	settings := db.NewBadgerSettingsRepository(badgerDB)
	log := logger.NewJSONLogger(io.Discard, logger.ErrorLevel)

	ctx := context.Background()
	syncService := service.NewSyncService(ctx, currencies, settings, source, resolver, cache.NewCatalogCache(), log)
	conversionService := service.NewConversionService(syncService, log)

	require.NoError(t, syncService.LoadCached(ctx))
	require.NoError(t, syncService.Refresh(ctx, "EUR"))

	records := syncService.Records()
	require.NotEmpty(t, records)

	codes := make([]string, 0, len(records))
	for _, r := range records {
		codes = append(codes, r.Code)
	}

	// Performance test configuration
	operations := 200
	concurrency := 10

	t.Run("Refreshes, toggles and reads", func(t *testing.T) {
		var refreshed, skipped, toggled, reads atomic.Int64

		startTime := time.Now()

		wg := sync.WaitGroup{}
		wg.Add(concurrency)

		perWorker := operations / concurrency

		for i := 0; i < concurrency; i++ {
			go func(workerID int) {
				defer wg.Done()

				rng := rand.New(rand.NewSource(int64(workerID)))
				for j := 0; j < perWorker; j++ {
					switch rng.Intn(4) {
					case 0:
						base := []string{"EUR", "USD", "GBP"}[rng.Intn(3)]
						err := syncService.Refresh(ctx, base)
						switch {
						case err == nil:
							refreshed.Add(1)
						case errors.Is(err, entity.ErrRefreshInProgress):
							skipped.Add(1)
						default:
							t.Errorf("unexpected refresh error: %v", err)
						}
					case 1:
						if _, err := syncService.ToggleFavorite(ctx, codes[rng.Intn(len(codes))]); err != nil {
							t.Errorf("unexpected toggle error: %v", err)
						}
						toggled.Add(1)
					default:
						syncService.VisibleRecords("a", rng.Intn(2) == 0)
						syncService.State()
						reads.Add(1)
					}
				}
			}(i)
		}

		wg.Wait()
		duration := time.Since(startTime)

		t.Logf("%d refreshes (%d skipped), %d toggles and %d reads in %v",
			refreshed.Load(), skipped.Load(), toggled.Load(), reads.Load(), duration)

		assert.False(t, syncService.State().InFlight)
		assert.Empty(t, syncService.State().LastPersistError)
	})

	t.Run("Store matches memory", func(t *testing.T) {
		stored, err := currencies.FetchAll(ctx)
		require.NoError(t, err)

		memory := syncService.Records()
		require.Len(t, stored, len(memory))

		for i := range memory {
			assert.Equal(t, memory[i].Code, stored[i].Code)
			assert.Equal(t, memory[i].IsFavorite, stored[i].IsFavorite, "favorite flag of %s", memory[i].Code)
			assert.Equal(t, memory[i].Value, stored[i].Value, "value of %s", memory[i].Code)
			assert.Equal(t, memory[i].Index, stored[i].Index, "index of %s", memory[i].Code)
		}
	})

	t.Run("Conversions", func(t *testing.T) {
		startTime := time.Now()

		wg := sync.WaitGroup{}
		wg.Add(concurrency)

		perWorker := operations / concurrency

		for i := 0; i < concurrency; i++ {
			go func(workerID int) {
				defer wg.Done()

				for j := 0; j < perWorker; j++ {
					from := codes[(workerID+j)%len(codes)]
					to := codes[(workerID*j)%len(codes)]
					if _, err := conversionService.Convert(ctx, decimal.NewFromInt(1), from, to); err != nil {
						t.Errorf("conversion %s->%s failed: %v", from, to, err)
					}
				}
			}(i)
		}

		wg.Wait()
		duration := time.Since(startTime)

		throughput := float64(operations) / duration.Seconds()
		t.Logf("Currency conversion: %d conversions in %v (%.2f ops/sec)",
			operations, duration, throughput)
	})
}
