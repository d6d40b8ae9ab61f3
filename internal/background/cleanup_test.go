package background

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/BradenHooton/leadintake/internal/cache"
	"github.com/BradenHooton/leadintake/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingPruner struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
}

func (p *recordingPruner) Prune(_ context.Context, cutoff time.Time) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cutoffs = append(p.cutoffs, cutoff)
	return 0, p.err
}

func (p *recordingPruner) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cutoffs)
}

func TestRunCleanup_UsesWindowCutoff(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	pruner := &recordingPruner{}

	cm := NewCleanupManager(pruner, time.Hour, discardLogger(), time.Minute)
	cm.now = func() time.Time { return now }

	cm.runCleanup(context.Background())

	require.Len(t, pruner.cutoffs, 1)
	assert.Equal(t, now.Add(-time.Hour), pruner.cutoffs[0])
}

func TestRunCleanup_PrunesMemoryStore(t *testing.T) {
	now := time.Now()
	store := cache.NewMemoryAttemptStore()
	ctx := context.Background()

	seed := func(key string, last time.Time) {
		require.NoError(t, store.Update(ctx, key, func(models.RateLimitEntry, bool) (models.RateLimitEntry, bool) {
			return models.RateLimitEntry{Count: 1, LastAttempt: last}, true
		}))
	}
	seed("old@example.com", now.Add(-2*time.Hour))
	seed("fresh@example.com", now.Add(-time.Minute))

	cm := NewCleanupManager(store, time.Hour, discardLogger(), time.Minute)
	cm.now = func() time.Time { return now }
	cm.runCleanup(ctx)

	assert.Equal(t, 1, store.Len())
}

func TestRunCleanup_ErrorIsLogged(t *testing.T) {
	pruner := &recordingPruner{err: errors.New("boom")}
	cm := NewCleanupManager(pruner, time.Hour, discardLogger(), time.Minute)

	assert.NotPanics(t, func() { cm.runCleanup(context.Background()) })
	assert.Equal(t, 1, pruner.calls())
}

func TestStartStop(t *testing.T) {
	pruner := &recordingPruner{}
	cm := NewCleanupManager(pruner, time.Hour, discardLogger(), 5*time.Millisecond)

	done := make(chan struct{})
	go func() {
		cm.Start(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool { return pruner.calls() >= 2 }, time.Second, 5*time.Millisecond)

	cm.Stop()
	cm.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup manager did not stop")
	}
}

func TestStart_ContextCancel(t *testing.T) {
	cm := NewCleanupManager(&recordingPruner{}, time.Hour, discardLogger(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cm.Start(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup manager ignored context cancellation")
	}
}
