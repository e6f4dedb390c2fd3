package sendmode

import (
	"context"
	"time"
)

type Repo interface {
	Create(ctx context.Context, m SendMode) error
	GetByID(ctx context.Context, id string) (SendMode, error)
	ListByAggregateID(ctx context.Context, aggregateID string) ([]SendMode, error)
	Rename(ctx context.Context, req RenameSendModeRequest) error
	TouchHeartbeat(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type Cache interface {
	Get(ctx context.Context, key string) (SendMode, error)
	Set(ctx context.Context, key string, m SendMode) error
	Delete(ctx context.Context, key string) error
}

// API is the remote send-mode service.
type API interface {
	Provisioner
	GetSendModeByID(ctx context.Context, id string) (SendMode, error)
	GetSendModesByAggregateID(ctx context.Context, aggregateID string) ([]SendMode, error)
	Heartbeat(ctx context.Context, id string) error
	DeleteSendMode(ctx context.Context, id string) error
}

// Provisioner only creates send modes.
type Provisioner interface {
	CreateSendMode(ctx context.Context, req NewSendModeRequest) (SendMode, error)
}

type Clock interface {
	Now() time.Time
}

// Transactor runs fn inside one storage transaction carried by ctx.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
