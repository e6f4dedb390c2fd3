package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/NordCoder/SendModes/internal/domain/notification"
	"github.com/NordCoder/SendModes/internal/domain/outbox"
	"github.com/NordCoder/SendModes/internal/liberr"
	"github.com/NordCoder/SendModes/internal/obs/retry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var (
	outboxHandlerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "outbox_handler_latency_seconds",
		Help:    "Latency of outbox handlers, retries included.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	outboxHandlerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_handler_errors_total",
		Help: "Errors in outbox handlers (after retries).",
	}, []string{"kind"})
)

func instrument(kind string, h outbox.KindHandler, pol retry.Policy) outbox.KindHandler {
	tr := otel.Tracer("outbox.handler")
	if pol.Name == "" {
		pol.Name = "outbox_" + kind
	}
	return func(ctx context.Context, data []byte) error {
		ctx, span := tr.Start(ctx, "outbox.handle")
		defer span.End()

		start := time.Now()
		err := retry.Do(ctx, func() error { return h(ctx, data) }, pol)
		outboxHandlerLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			outboxHandlerErrors.WithLabelValues(kind).Inc()
		}
		return err
	}
}

// MakeGlobalHandler delivers queued text messages through pub, retrying transient
// failures per pol.
func MakeGlobalHandler(pub notification.Publisher, pol retry.Policy) outbox.GlobalHandler {
	if pol.Retryable == nil {
		pol.Retryable = liberr.IsTransient
	}
	return func(kind outbox.Kind) (outbox.KindHandler, error) {
		switch kind {
		case outbox.KindTextMessage:
			base := func(ctx context.Context, data []byte) error {
				var msg notification.TextMessage
				if err := json.Unmarshal(data, &msg); err != nil {
					return liberr.InternalCause("decode queued text message", err)
				}
				return pub.PublishTextMessage(ctx, msg)
			}
			return instrument("text_message", base, pol), nil
		default:
			return nil, liberr.Internal("unsupported outbox kind: %d", kind)
		}
	}
}
