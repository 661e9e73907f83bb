package poller

import (
	"context"
	"errors"
	"time"

	"github.com/damon-houk/exchange-rates-sync/internal/domain/entity"
	"github.com/damon-houk/exchange-rates-sync/internal/infrastructure/logger"
)

const (
	defaultPollInterval = 15 * time.Minute
	maxBackoff          = 4 * time.Hour
)

// Refresher refreshes the rate set against the configured base currency
type Refresher interface {
	RefreshCurrent(ctx context.Context) error
}

// Poller drives periodic refreshes and backs off while the provider keeps failing
type Poller struct {
	target   Refresher
	interval time.Duration
	logger   logger.Logger
	failures int
	done     chan struct{}
}

// StartPoller launches a background goroutine that refreshes right away and then
// at a fixed cadence until ctx is cancelled. It returns immediately.
func StartPoller(ctx context.Context, target Refresher, interval time.Duration, log logger.Logger) *Poller {
	p := newPoller(target, interval, log)

	go func() {
		defer close(p.done)

		for {
			timer := time.NewTimer(p.tick(ctx))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()

	return p
}

func newPoller(target Refresher, interval time.Duration, log logger.Logger) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &Poller{
		target:   target,
		interval: interval,
		logger:   log,
		done:     make(chan struct{}),
	}
}

// Wait blocks until the polling goroutine has exited
func (p *Poller) Wait() {
	<-p.done
}

// tick runs one refresh and returns the delay before the next one
func (p *Poller) tick(ctx context.Context) time.Duration {
	err := p.target.RefreshCurrent(ctx)

	switch {
	case err == nil:
		p.failures = 0
	case errors.Is(err, entity.ErrRefreshInProgress):
		p.logger.Debug("Scheduled refresh skipped, another refresh is running", nil)
		return calculateBackoff(p.failures, p.interval)
	case ctx.Err() != nil:
		return p.interval
	default:
		p.failures++
	}

	next := calculateBackoff(p.failures, p.interval)
	if p.failures > 0 {
		p.logger.Warn("Scheduled refresh failed", map[string]interface{}{
			"error":                err.Error(),
			"consecutive_failures": p.failures,
			"next_attempt_in":      next.String(),
		})
	}
	return next
}

// calculateBackoff doubles the base interval per consecutive failure, capped at
// maxBackoff or the base interval itself when that is longer.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	limit := maxBackoff
	if base > limit {
		limit = base
	}

	if failures <= 0 {
		return base
	}
	if failures > 30 {
		return limit
	}

	backoff := base * time.Duration(1<<failures)
	if backoff <= 0 || backoff > limit {
		return limit
	}
	return backoff
}
