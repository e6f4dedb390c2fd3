package kafka

import (
	"context"

	"github.com/NordCoder/SendModes/internal/domain/notification"
)

type TextMessagesKafka struct {
	p *Producer
}

func NewTextMessagesKafka(p *Producer) *TextMessagesKafka { return &TextMessagesKafka{p: p} }

var _ notification.Publisher = (*TextMessagesKafka)(nil)

// PublishTextMessage keys the message by send mode so one mode's messages keep
// their order.
func (e *TextMessagesKafka) PublishTextMessage(ctx context.Context, msg notification.TextMessage) error {
	return e.p.PublishJSON(ctx, []byte(msg.ModeID), msg)
}
