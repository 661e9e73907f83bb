package poller

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/damon-houk/exchange-rates-sync/internal/domain/entity"
	"github.com/damon-houk/exchange-rates-sync/internal/infrastructure/logger"
	"github.com/damon-houk/exchange-rates-sync/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type scriptedRefresher struct {
	calls   atomic.Int32
	results []error
}

func (r *scriptedRefresher) RefreshCurrent(ctx context.Context) error {
	n := int(r.calls.Add(1)) - 1
	if n < len(r.results) {
		return r.results[n]
	}
	return nil
}

func quietLogger() logger.Logger {
	return logger.NewJSONLogger(io.Discard, logger.ErrorLevel)
}

func TestCalculateBackoff(t *testing.T) {
	base := 15 * time.Minute

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 15 * time.Minute},
		{"negative failures", -1, 15 * time.Minute},
		{"one failure", 1, 30 * time.Minute},
		{"two failures", 2, time.Hour},
		{"three failures", 3, 2 * time.Hour},
		{"four failures", 4, 4 * time.Hour},
		{"five failures capped", 5, 4 * time.Hour},
		{"many failures capped", 63, 4 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calculateBackoff(tt.failures, base))
		})
	}
}

func TestCalculateBackoffLongInterval(t *testing.T) {
	base := 12 * time.Hour

	for failures := 0; failures <= 40; failures++ {
		assert.Equal(t, base, calculateBackoff(failures, base))
	}
}

func TestTick(t *testing.T) {
	errProvider := errors.New("provider down")
	ctx := context.Background()

	refresher := &scriptedRefresher{results: []error{
		errProvider,
		errProvider,
		entity.ErrRefreshInProgress,
		nil,
	}}
	p := newPoller(refresher, time.Minute, quietLogger())

	assert.Equal(t, 2*time.Minute, p.tick(ctx))
	assert.Equal(t, 4*time.Minute, p.tick(ctx))

	// A skipped refresh neither resets nor extends the backoff
	assert.Equal(t, 4*time.Minute, p.tick(ctx))
	assert.Equal(t, 2, p.failures)

	assert.Equal(t, time.Minute, p.tick(ctx))
	assert.Zero(t, p.failures)
}

func TestTickSkippedRefreshDoesNotWarn(t *testing.T) {
	errProvider := errors.New("provider down")
	ctx := context.Background()

	log := new(mocks.MockLogger)
	log.On("Warn", "Scheduled refresh failed", mock.MatchedBy(func(fields map[string]interface{}) bool {
		return fields["error"] == errProvider.Error()
	})).Once()
	log.On("Debug", mock.Anything, mock.Anything).Maybe()

	refresher := &scriptedRefresher{results: []error{
		errProvider,
		entity.ErrRefreshInProgress,
	}}
	p := newPoller(refresher, time.Minute, log)

	assert.Equal(t, 2*time.Minute, p.tick(ctx))
	assert.Equal(t, 2*time.Minute, p.tick(ctx))
	assert.Equal(t, 1, p.failures)

	log.AssertExpectations(t)
	log.AssertNumberOfCalls(t, "Warn", 1)
}

func TestTickCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newPoller(&scriptedRefresher{results: []error{context.Canceled}}, time.Minute, quietLogger())

	assert.Equal(t, time.Minute, p.tick(ctx))
	assert.Zero(t, p.failures)
}

func TestStartPoller(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	refresher := &scriptedRefresher{}

	p := StartPoller(ctx, refresher, 10*time.Millisecond, quietLogger())

	require.Eventually(t, func() bool {
		return refresher.calls.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond)

	cancel()

	stopped := make(chan struct{})
	go func() {
		p.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after cancellation")
	}
}

func TestStartPollerDefaultsInterval(t *testing.T) {
	p := newPoller(&scriptedRefresher{}, 0, nil)

	assert.Equal(t, defaultPollInterval, p.interval)
	assert.NotNil(t, p.logger)
}
