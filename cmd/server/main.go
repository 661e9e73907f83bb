package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/damon-houk/exchange-rates-sync/internal/application/poller"
	"github.com/damon-houk/exchange-rates-sync/internal/application/service"
	"github.com/damon-houk/exchange-rates-sync/internal/domain/repository"
	domainservice "github.com/damon-houk/exchange-rates-sync/internal/domain/service"
	"github.com/damon-houk/exchange-rates-sync/internal/infrastructure/api"
	"github.com/damon-houk/exchange-rates-sync/internal/infrastructure/cache"
	"github.com/damon-houk/exchange-rates-sync/internal/infrastructure/config"
	"github.com/damon-houk/exchange-rates-sync/internal/infrastructure/db"
	"github.com/damon-houk/exchange-rates-sync/internal/infrastructure/handler"
	"github.com/damon-houk/exchange-rates-sync/internal/infrastructure/logger"
	"github.com/damon-houk/exchange-rates-sync/internal/infrastructure/symbols"
)

const (
	shutdownTimeout = 10 * time.Second
	sqliteFileName  = "rates.db"
)

func main() {
	configPath := flag.String("config", "", "path to the TOML config file (default ~/.config/fxsync/config.toml)")
	clearOnly := flag.Bool("clear", false, "remove every stored currency and exit")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewJSONLogger(os.Stdout, logger.ParseLevel(cfg.Log.Level))
	logger.SetDefaultLogger(log)
	defer log.Sync()

	log.Info("Starting exchange rate sync service", map[string]interface{}{
		"source":  cfg.Source.Kind,
		"storage": cfg.Storage.Driver,
		"addr":    cfg.Server.Addr,
	})

	if err := run(cfg, *clearOnly, log); err != nil {
		log.Fatal("Service stopped with error", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Service stopped", nil)
}

func run(cfg config.Config, clearOnly bool, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	currencies, settings, closeStore, err := openStorage(cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Error("Error closing storage", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	source, err := newRateSource(cfg.Source, log)
	if err != nil {
		return err
	}

	resolver, err := symbols.NewResolver()
	if err != nil {
		return fmt.Errorf("failed to load symbols: %w", err)
	}
	log.Debug("Symbol table loaded", map[string]interface{}{
		"symbols": resolver.Len(),
	})

	catalog := cache.NewCatalogCache()
	catalog.SetExpiration(cfg.Sync.CatalogTTL)

	syncService := service.NewSyncService(ctx, currencies, settings, source, resolver, catalog, log)

	if clearOnly {
		if err := syncService.ClearAll(ctx); err != nil {
			return err
		}
		log.Info("Stored currencies removed", nil)
		return nil
	}

	if err := syncService.LoadCached(ctx); err != nil {
		log.Warn("Starting without cached currencies", map[string]interface{}{
			"error": err.Error(),
		})
	}

	conversionService := service.NewConversionService(syncService, log)

	router := handler.NewRouter(log,
		handler.NewCurrencyHandler(syncService, log),
		handler.NewSyncHandler(syncService, log),
		handler.NewConversionHandler(conversionService, log),
	)

	pollCtx, cancelPoll := context.WithCancel(ctx)
	defer cancelPoll()
	p := poller.StartPoller(pollCtx, syncService, cfg.Sync.Interval, log)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"addr": cfg.Server.Addr,
		})
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received", nil)
	case err := <-serveErr:
		cancelPoll()
		p.Wait()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	cancelPoll()
	p.Wait()
	return nil
}

func openStorage(cfg config.StorageConfig) (repository.CurrencyRepository, repository.SettingsRepository, func() error, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		store, err := db.NewSQLiteStore(filepath.Join(cfg.Path, sqliteFileName))
		if err != nil {
			return nil, nil, nil, err
		}
		return store, store, store.Close, nil
	default:
		badgerDB, err := db.OpenBadger(cfg.Path)
		if err != nil {
			return nil, nil, nil, err
		}
		return db.NewBadgerCurrencyRepository(badgerDB), db.NewBadgerSettingsRepository(badgerDB), badgerDB.Close, nil
	}
}

func newRateSource(cfg config.SourceConfig, log logger.Logger) (domainservice.RateSource, error) {
	switch cfg.Kind {
	case config.SourceFixture:
		source, err := api.NewFixtureSource()
		if err != nil {
			return nil, fmt.Errorf("failed to load fixture rates: %w", err)
		}
		return source, nil
	default:
		return api.NewFixerClient(api.FixerConfig{
			BaseURL:     cfg.BaseURL,
			APIKey:      cfg.APIKey,
			Timeout:     cfg.Timeout,
			MaxAttempts: cfg.MaxAttempts,
		}, nil, log), nil
	}
}
