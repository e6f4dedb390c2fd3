// Package outbox relays messages queued in storage to their publishers.
package outbox

import (
	"context"
	"sync"
	"time"

	"github.com/NordCoder/SendModes/internal/domain/outbox"
	"github.com/NordCoder/SendModes/internal/obs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	mPicked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outbox_picked_total", Help: "Messages picked into processing.",
	})
	mOk = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outbox_processed_ok_total", Help: "Messages processed successfully.",
	})
	mErr = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outbox_processed_err_total", Help: "Handler errors.",
	})
	mTickDur = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "outbox_tick_duration_seconds", Help: "Tick duration.",
		Buckets: prometheus.DefBuckets,
	})
	mBatchSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "outbox_last_batch_size", Help: "Size of last picked batch.",
	})
)

type Config struct {
	Enable        bool          `mapstructure:"enable"`
	Workers       int           `mapstructure:"workers" validate:"gte=0"`
	BatchSize     int           `mapstructure:"batch_size" validate:"gte=0"`
	Wait          time.Duration `mapstructure:"wait" validate:"gte=0"`
	InProgressTTL time.Duration `mapstructure:"in_progress_ttl" validate:"gte=0"`
}

type Runner struct {
	log      *zap.Logger
	repo     outbox.Repository
	dispatch outbox.GlobalHandler
	cfg      Config
}

func NewRunner(log *zap.Logger, repo outbox.Repository, dispatch outbox.GlobalHandler, cfg Config) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Wait <= 0 {
		cfg.Wait = time.Second
	}
	if cfg.InProgressTTL <= 0 {
		cfg.InProgressTTL = time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{log: log, repo: repo, dispatch: dispatch, cfg: cfg}
}

// Run polls the outbox with the configured number of workers until ctx ends.
func (r *Runner) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Workers; i++ {
		wg.Add(1)
		go r.worker(ctx, &wg)
	}
	wg.Wait()
	return ctx.Err()
}

func (r *Runner) worker(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	r.log.Info("outbox worker started", zap.Duration("wait", r.cfg.Wait))

	ticker := time.NewTicker(r.cfg.Wait)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("outbox worker stop")
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

// tick delivers one batch and returns how many messages were marked done.
func (r *Runner) tick(ctx context.Context) int {
	t0 := time.Now()
	defer func() { mTickDur.Observe(time.Since(t0).Seconds()) }()

	tr := otel.Tracer("outbox.runner")
	ctx, span := tr.Start(ctx, "outbox.tick")
	defer span.End()
	span.SetAttributes(
		attribute.Int("batch.limit", r.cfg.BatchSize),
		attribute.String("in_progress_ttl", r.cfg.InProgressTTL.String()),
	)

	messages, err := r.repo.PickBatch(ctx, r.cfg.BatchSize, r.cfg.InProgressTTL)
	if err != nil {
		span.RecordError(err)
		mErr.Inc()
		obs.WithTrace(ctx, r.log).Error("outbox pick error", zap.Error(err))
		return 0
	}
	mPicked.Add(float64(len(messages)))
	mBatchSize.Set(float64(len(messages)))

	okKeys := make([]string, 0, len(messages))
	for _, m := range messages {
		if r.deliver(ctx, m) {
			okKeys = append(okKeys, m.IdempotencyKey)
		}
	}

	if err := r.repo.MarkSuccess(ctx, okKeys); err != nil {
		span.RecordError(err)
		mErr.Inc()
		obs.WithTrace(ctx, r.log).Error("mark success error", zap.Error(err))
		return 0
	}
	return len(okKeys)
}

// deliver runs the handler for m under the trace context it was queued with. The
// batch context still bounds it.
func (r *Runner) deliver(ctx context.Context, m outbox.Message) bool {
	parent := otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier{
		"traceparent": m.Traceparent,
		"tracestate":  m.Tracestate,
		"baggage":     m.Baggage,
	})
	msgCtx, span := otel.Tracer("outbox.runner").Start(parent, "outbox.dispatch",
		trace.WithAttributes(
			attribute.String("outbox.key", m.IdempotencyKey),
			attribute.Int("outbox.kind", int(m.Kind)),
		),
	)
	defer span.End()

	log := obs.WithTrace(msgCtx, r.log).With(zap.String("key", m.IdempotencyKey), zap.Int("kind", int(m.Kind)))
	handler, err := r.dispatch(m.Kind)
	if err != nil {
		span.RecordError(err)
		mErr.Inc()
		log.Error("no handler for kind", zap.Error(err))
		return false
	}
	if err := handler(msgCtx, m.Data); err != nil {
		span.RecordError(err)
		mErr.Inc()
		log.Error("handler error", zap.Error(err))
		return false
	}
	mOk.Inc()
	return true
}
