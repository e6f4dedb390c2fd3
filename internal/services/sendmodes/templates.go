package sendmodes

import (
	"context"
	"errors"

	"github.com/NordCoder/SendModes/internal/domain/notification"
	"github.com/NordCoder/SendModes/internal/domain/sendmode"
	"github.com/NordCoder/SendModes/internal/liberr"
	"go.uber.org/zap"
)

func TemplateKey(bank string, kind sendmode.Kind, searchBy string) string {
	return "notification_template:" + bank + ":" + string(kind) + ":" + searchBy
}

type TemplateDirectory struct {
	Repo  notification.TemplateRepo
	Cache notification.TemplateCache
	Log   *zap.Logger
}

func (d *TemplateDirectory) Find(ctx context.Context, bank string, kind sendmode.Kind, searchBy string) (notification.Template, error) {
	key := TemplateKey(bank, kind, searchBy)
	t, err := d.Cache.Get(ctx, key)
	switch {
	case err == nil:
		cacheLookups.WithLabelValues("template", "hit").Inc()
		return t, nil
	case errors.Is(err, liberr.ErrNotFound):
		cacheLookups.WithLabelValues("template", "miss").Inc()
	default:
		cacheLookups.WithLabelValues("template", "error").Inc()
		d.Log.Warn("template cache read failed", zap.String("key", key), zap.Error(err))
	}

	t, err = d.Repo.Find(ctx, bank, kind, searchBy)
	if err != nil {
		return notification.Template{}, err
	}
	if err := d.Cache.Set(ctx, key, t); err != nil {
		d.Log.Warn("template cache write failed", zap.String("key", key), zap.Error(err))
	}
	return t, nil
}

func (d *TemplateDirectory) ListByBank(ctx context.Context, bank string) ([]notification.Template, error) {
	return d.Repo.ListByBank(ctx, bank)
}
