// Package heartbeat keeps the send modes of one aggregate alive by heartbeating
// each of them on its own interval.
package heartbeat

import (
	"context"
	"time"

	"github.com/NordCoder/SendModes/internal/domain/sendmode"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const DefaultResync = 5 * time.Minute

var (
	beatsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heartbeat_sent_total", Help: "Heartbeats acknowledged by the send-mode service",
	})
	beatErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heartbeat_errors_total", Help: "Failed heartbeats and syncs",
	})
	modesActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "heartbeat_modes_active", Help: "Send modes currently heartbeated",
	})
)

type Directory interface {
	Sync(ctx context.Context, aggregateID string) ([]sendmode.SendMode, error)
	Heartbeat(ctx context.Context, id string) error
}

type Runner struct {
	Log         *zap.Logger
	Dir         Directory
	AggregateID string
	// Resync is how often the mode list is refreshed. Zero means DefaultResync.
	Resync time.Duration
	// Every overrides the per-mode period; nil means SendMode.HeartbeatEvery.
	Every func(sendmode.SendMode) time.Duration
}

// Run heartbeats until ctx is cancelled. Modes without an automatic interval are
// skipped. A mode keeps its ticker across resyncs unless its interval changes or it
// disappears from the aggregate.
func (r *Runner) Run(ctx context.Context) error {
	resync := r.Resync
	if resync <= 0 {
		resync = DefaultResync
	}
	ticker := time.NewTicker(resync)
	defer ticker.Stop()

	workers := map[string]*worker{}
	defer func() {
		for id, w := range workers {
			w.stop()
			delete(workers, id)
		}
		modesActive.Set(0)
	}()

	for {
		r.reconcile(ctx, workers)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

type worker struct {
	every  time.Duration
	cancel context.CancelFunc
	done   chan struct{}
}

func (w *worker) stop() {
	w.cancel()
	<-w.done
}

// reconcile starts workers for new modes, stops those of removed modes and restarts
// the ones whose interval changed. A failed sync leaves the running workers alone.
func (r *Runner) reconcile(ctx context.Context, workers map[string]*worker) {
	ms, err := r.Dir.Sync(ctx, r.AggregateID)
	if err != nil {
		if ctx.Err() == nil {
			beatErrors.Inc()
			r.Log.Warn("sync send modes", zap.String("aggregate_id", r.AggregateID), zap.Error(err))
		}
		return
	}

	want := make(map[string]time.Duration, len(ms))
	for _, m := range ms {
		if every := r.every(m); every > 0 {
			want[m.ID] = every
		}
	}

	for id, w := range workers {
		if every, ok := want[id]; !ok || every != w.every {
			w.stop()
			delete(workers, id)
		}
	}
	for id, every := range want {
		if _, ok := workers[id]; ok {
			continue
		}
		every := every
		wctx, cancel := context.WithCancel(ctx)
		w := &worker{every: every, cancel: cancel, done: make(chan struct{})}
		workers[id] = w
		go func(id string) {
			defer close(w.done)
			r.beat(wctx, id, every)
		}(id)
	}

	modesActive.Set(float64(len(workers)))
	r.Log.Debug("heartbeats scheduled", zap.Int("modes", len(ms)), zap.Int("active", len(workers)))
}

func (r *Runner) every(m sendmode.SendMode) time.Duration {
	if r.Every != nil {
		return r.Every(m)
	}
	return m.HeartbeatEvery()
}

func (r *Runner) beat(ctx context.Context, id string, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := r.Dir.Heartbeat(ctx, id); err != nil {
				if ctx.Err() != nil {
					return
				}
				beatErrors.Inc()
				r.Log.Warn("heartbeat", zap.String("id", id), zap.Error(err))
				continue
			}
			beatsSent.Inc()
		}
	}
}
