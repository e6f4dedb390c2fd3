package outbox

import (
	"context"
	"encoding/json"

	"github.com/NordCoder/SendModes/internal/domain/notification"
	"github.com/NordCoder/SendModes/internal/domain/outbox"
	"github.com/NordCoder/SendModes/internal/liberr"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// TextMessages queues text messages in the outbox instead of publishing them.
// The Runner delivers them later with the caller's trace context restored.
type TextMessages struct {
	Repo outbox.Repository
	// NewKey returns the idempotency key of a message. Defaults to a random UUID.
	NewKey func() string
}

var _ notification.Publisher = (*TextMessages)(nil)

func (t *TextMessages) PublishTextMessage(ctx context.Context, msg notification.TextMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return liberr.InternalCause("encode text message", err)
	}
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	key := uuid.NewString
	if t.NewKey != nil {
		key = t.NewKey
	}
	return t.Repo.Enqueue(ctx, outbox.Message{
		IdempotencyKey: key(),
		Kind:           outbox.KindTextMessage,
		Data:           data,
		Status:         outbox.StatusCreated,
		Traceparent:    carrier.Get("traceparent"),
		Tracestate:     carrier.Get("tracestate"),
		Baggage:        carrier.Get("baggage"),
	})
}
