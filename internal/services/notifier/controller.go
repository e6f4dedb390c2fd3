package notifier

import (
	"context"
	"errors"

	"github.com/NordCoder/SendModes/internal/domain/notification"
	"github.com/NordCoder/SendModes/internal/liberr"
	kafkax "github.com/NordCoder/SendModes/internal/repository/kafka"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	eventsConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_events_consumed_total",
		Help: "Inbound events consumed by type.",
	}, []string{"type"})
	messagesPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_messages_published_total",
		Help: "Text messages published by channel.",
	}, []string{"channel"})
	handleErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_errors_total",
		Help: "Failed events by type and error kind.",
	}, []string{"type", "kind"})
)

// Subscriber feeds messages to a handler until ctx ends. *kafka.Consumer satisfies it.
type Subscriber interface {
	Consume(ctx context.Context, h kafkax.Handler) error
}

type Controller struct {
	Log *zap.Logger
	Sub Subscriber
	UC  *Handler
}

// Run consumes notification events.
func (c *Controller) Run(ctx context.Context) error {
	handler := kafkax.JSONHandler(func(ctx context.Context, _ []byte, ev notification.Event) error {
		eventsConsumed.WithLabelValues("event").Inc()
		if ev.ModeID == "" {
			c.Log.Warn("event: missing mode_id", zap.String("bank", ev.Bank))
			return nil
		}
		return c.observe("event", c.UC.HandleEvent(ctx, ev))
	})
	return c.consume(ctx, handler)
}

// RunSend consumes ready-made texts keyed by send mode id.
func (c *Controller) RunSend(ctx context.Context) error {
	handler := kafkax.JSONHandler(func(ctx context.Context, key []byte, ev notification.SendEvent) error {
		eventsConsumed.WithLabelValues("send_event").Inc()
		return c.observe("send_event", c.UC.HandleSendEvent(ctx, string(key), ev))
	})
	return c.consume(ctx, handler)
}

func (c *Controller) consume(ctx context.Context, h kafkax.Handler) error {
	if err := c.Sub.Consume(ctx, h); err != nil && !errors.Is(err, context.Canceled) {
		c.Log.Warn("kafka consume", zap.Error(err))
		return err
	}
	return nil
}

func (c *Controller) observe(typ string, err error) error {
	if err != nil {
		handleErrors.WithLabelValues(typ, string(liberr.KindOf(err))).Inc()
	}
	return err
}
