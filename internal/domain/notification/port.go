package notification

import (
	"context"

	"github.com/NordCoder/SendModes/internal/domain/sendmode"
)

type TemplateRepo interface {
	Find(ctx context.Context, bank string, kind sendmode.Kind, searchBy string) (Template, error)
	ListByBank(ctx context.Context, bank string) ([]Template, error)
}

type TemplateCache interface {
	Get(ctx context.Context, key string) (Template, error)
	Set(ctx context.Context, key string, t Template) error
	Delete(ctx context.Context, key string) error
}

type Publisher interface {
	PublishTextMessage(ctx context.Context, msg TextMessage) error
}
