// Package outbox describes messages queued in storage for later delivery.
package outbox

import (
	"context"
	"time"
)

type Status string

const (
	StatusCreated    Status = "CREATED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusSuccess    Status = "SUCCESS"
)

type Kind int

const (
	KindTextMessage Kind = 1
)

type Message struct {
	IdempotencyKey string
	Kind           Kind
	Data           []byte
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Traceparent    string
	Tracestate     string
	Baggage        string
}

type Repository interface {
	// Enqueue stores m unless a message with the same key exists.
	Enqueue(ctx context.Context, m Message) error

	// PickBatch claims up to batch messages that are new or whose claim is older
	// than inProgressTTL.
	PickBatch(ctx context.Context, batch int, inProgressTTL time.Duration) ([]Message, error)

	MarkSuccess(ctx context.Context, keys []string) error
}

type KindHandler func(ctx context.Context, data []byte) error

type GlobalHandler func(kind Kind) (KindHandler, error)
