package notifier

import (
	"context"
	"fmt"

	"github.com/NordCoder/SendModes/internal/domain/notification"
	"github.com/NordCoder/SendModes/internal/domain/sendmode"
	"github.com/NordCoder/SendModes/internal/liberr"
	"github.com/NordCoder/SendModes/internal/obs"
	"go.uber.org/zap"
)

type ModeResolver interface {
	Get(ctx context.Context, id string) (sendmode.SendMode, error)
}

type TemplateFinder interface {
	Find(ctx context.Context, bank string, kind sendmode.Kind, searchBy string) (notification.Template, error)
}

type Handler struct {
	Modes     ModeResolver
	Templates TemplateFinder
	Out       notification.Publisher
	Log       *zap.Logger
}

// HandleEvent renders the template registered for the event's bank, send mode kind
// and search key, and publishes the result.
func (h *Handler) HandleEvent(ctx context.Context, ev notification.Event) error {
	m, err := h.Modes.Get(ctx, ev.ModeID)
	if err != nil {
		return fmt.Errorf("resolve send mode %s: %w", ev.ModeID, err)
	}

	tpl, err := h.Templates.Find(ctx, ev.Bank, m.Kind, ev.SearchBy)
	if err != nil {
		return fmt.Errorf("find template: %w", err)
	}

	ch, err := notification.ParseEventChannel(tpl.NotificationType)
	if err != nil {
		return fmt.Errorf("template %s/%s channel: %w", tpl.Bank, tpl.SearchBy, err)
	}

	vars, err := BuildContext(tpl, ev)
	if err != nil {
		return err
	}
	text, err := Render(tpl.Template, vars)
	if err != nil {
		return err
	}

	msg := notification.TextMessage{ModeID: m.ID, Source: tpl.Source, Text: text, Channel: ch}
	if err := h.Out.PublishTextMessage(ctx, msg); err != nil {
		return fmt.Errorf("publish text message: %w", err)
	}
	messagesPublished.WithLabelValues(string(ch)).Inc()
	obs.WithTrace(ctx, h.Log).Debug("event rendered",
		zap.String("mode_id", m.ID),
		zap.String("bank", ev.Bank),
		zap.String("search_by", ev.SearchBy),
		zap.Stringer("channel", ch),
	)
	return nil
}

// HandleSendEvent forwards a ready text to modeID. Without a channel the text goes
// out as an SMS.
func (h *Handler) HandleSendEvent(ctx context.Context, modeID string, ev notification.SendEvent) error {
	if modeID == "" {
		return liberr.Internal("send event without mode id")
	}
	ch := ev.Channel
	if ch == "" {
		ch = notification.ChannelSMS
	}
	m, err := h.Modes.Get(ctx, modeID)
	if err != nil {
		return fmt.Errorf("resolve send mode %s: %w", modeID, err)
	}

	msg := notification.TextMessage{ModeID: m.ID, Source: ev.Source, Text: ev.Text, Channel: ch}
	if err := h.Out.PublishTextMessage(ctx, msg); err != nil {
		return fmt.Errorf("publish text message: %w", err)
	}
	messagesPublished.WithLabelValues(string(ch)).Inc()
	return nil
}
