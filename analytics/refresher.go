package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/OxBryte/onchain-linktree/eventlog"
	"github.com/OxBryte/onchain-linktree/model"

	"github.com/rs/zerolog/log"
)

// Refresher recomputes the dashboard snapshot from the event log on a
// fixed interval and serves the latest copy to handlers. A single
// goroutine does the recomputation, so overlapping runs cannot occur.
type Refresher struct {
	events   *eventlog.Log
	interval time.Duration
	now      func() time.Time

	mu     sync.RWMutex
	latest model.Snapshot
	ready  bool
}

// NewRefresher creates a refresher over the given event log.
func NewRefresher(events *eventlog.Log, interval time.Duration) *Refresher {
	return &Refresher{
		events:   events,
		interval: interval,
		now:      time.Now,
	}
}

// Run recomputes immediately, then on every tick until ctx is done.
func (r *Refresher) Run(ctx context.Context) {
	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Analytics refresher stopped")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// Snapshot returns the most recent aggregate. When no refresh has
// completed yet it computes one on demand so callers never see a
// zero-valued placeholder.
func (r *Refresher) Snapshot(ctx context.Context) model.Snapshot {
	r.mu.RLock()
	if r.ready {
		snap := r.latest
		r.mu.RUnlock()
		return snap
	}
	r.mu.RUnlock()

	r.refresh(ctx)

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest
}

func (r *Refresher) refresh(ctx context.Context) {
	snap := ComputeSnapshot(r.events.Query(ctx, ""), r.now())

	r.mu.Lock()
	r.latest = snap
	r.ready = true
	r.mu.Unlock()
}
