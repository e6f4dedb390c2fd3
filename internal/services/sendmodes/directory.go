// Package sendmodes keeps the local store and cache of send modes in step with the
// remote send-mode service.
package sendmodes

import (
	"context"
	"errors"

	"github.com/NordCoder/SendModes/internal/domain/sendmode"
	"github.com/NordCoder/SendModes/internal/liberr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "sendmodes_cache_lookups_total",
	Help: "Directory cache lookups by entity and result.",
}, []string{"entity", "result"})

func SendModeKey(id string) string { return "send_mode:" + id }

type Directory struct {
	Repo  sendmode.Repo
	Cache sendmode.Cache
	API   sendmode.API
	Tx    sendmode.Transactor
	Clock sendmode.Clock
	Log   *zap.Logger
}

// Get reads through the cache and the local store, falling back to the remote
// service and back-filling both.
func (d *Directory) Get(ctx context.Context, id string) (sendmode.SendMode, error) {
	key := SendModeKey(id)
	m, err := d.Cache.Get(ctx, key)
	switch {
	case err == nil:
		cacheLookups.WithLabelValues("send_mode", "hit").Inc()
		return m, nil
	case errors.Is(err, liberr.ErrNotFound):
		cacheLookups.WithLabelValues("send_mode", "miss").Inc()
	default:
		cacheLookups.WithLabelValues("send_mode", "error").Inc()
		d.Log.Warn("send mode cache read failed", zap.String("id", id), zap.Error(err))
	}

	m, err = d.Repo.GetByID(ctx, id)
	if errors.Is(err, liberr.ErrNotFound) {
		m, err = d.API.GetSendModeByID(ctx, id)
		if err != nil {
			return sendmode.SendMode{}, err
		}
		if err := d.Repo.Create(ctx, m); err != nil {
			d.Log.Warn("store fetched send mode", zap.String("id", id), zap.Error(err))
		}
	} else if err != nil {
		return sendmode.SendMode{}, err
	}

	d.fill(ctx, m)
	return m, nil
}

func (d *Directory) Create(ctx context.Context, req sendmode.NewSendModeRequest) (sendmode.SendMode, error) {
	m, err := d.API.CreateSendMode(ctx, req)
	if err != nil {
		return sendmode.SendMode{}, err
	}
	if err := d.Repo.Create(ctx, m); err != nil {
		return sendmode.SendMode{}, err
	}
	d.fill(ctx, m)
	return m, nil
}

// Rename is local: the remote service has no rename call.
func (d *Directory) Rename(ctx context.Context, req sendmode.RenameSendModeRequest) error {
	if err := d.Repo.Rename(ctx, req); err != nil {
		return err
	}
	d.invalidate(ctx, req.ID)
	return nil
}

func (d *Directory) Heartbeat(ctx context.Context, id string) error {
	if err := d.API.Heartbeat(ctx, id); err != nil {
		return err
	}
	err := d.Repo.TouchHeartbeat(ctx, id, d.Clock.Now())
	if err != nil && !errors.Is(err, liberr.ErrNotFound) {
		return err
	}
	d.invalidate(ctx, id)
	return nil
}

func (d *Directory) Delete(ctx context.Context, id string) error {
	if err := d.API.DeleteSendMode(ctx, id); err != nil {
		return err
	}
	err := d.Repo.Delete(ctx, id)
	if err != nil && !errors.Is(err, liberr.ErrNotFound) {
		return err
	}
	d.invalidate(ctx, id)
	d.Log.Info("send mode removed", zap.String("id", id))
	return nil
}

// Sync replaces the local copies of an aggregate's send modes with the remote
// ones in one transaction. Local modes the remote no longer returns are deleted.
func (d *Directory) Sync(ctx context.Context, aggregateID string) ([]sendmode.SendMode, error) {
	ms, err := d.API.GetSendModesByAggregateID(ctx, aggregateID)
	if err != nil {
		return nil, err
	}
	var stale []string
	err = d.Tx.WithTx(ctx, func(ctx context.Context) error {
		stale = stale[:0]
		local, err := d.Repo.ListByAggregateID(ctx, aggregateID)
		if err != nil {
			return err
		}
		remote := make(map[string]struct{}, len(ms))
		for _, m := range ms {
			if err := d.Repo.Create(ctx, m); err != nil {
				return err
			}
			remote[m.ID] = struct{}{}
		}
		for _, m := range local {
			if _, ok := remote[m.ID]; ok {
				continue
			}
			if err := d.Repo.Delete(ctx, m.ID); err != nil && !errors.Is(err, liberr.ErrNotFound) {
				return err
			}
			stale = append(stale, m.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, m := range ms {
		d.invalidate(ctx, m.ID)
	}
	for _, id := range stale {
		d.invalidate(ctx, id)
	}
	d.Log.Info("send modes synced",
		zap.String("aggregate_id", aggregateID),
		zap.Int("count", len(ms)),
		zap.Int("removed", len(stale)))
	return ms, nil
}

// Cache failures are logged, never returned.

func (d *Directory) fill(ctx context.Context, m sendmode.SendMode) {
	if err := d.Cache.Set(ctx, SendModeKey(m.ID), m); err != nil {
		d.Log.Warn("send mode cache write failed", zap.String("id", m.ID), zap.Error(err))
	}
}

func (d *Directory) invalidate(ctx context.Context, id string) {
	if err := d.Cache.Delete(ctx, SendModeKey(id)); err != nil {
		d.Log.Warn("send mode cache invalidate failed", zap.String("id", id), zap.Error(err))
	}
}
