package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/NordCoder/SendModes/internal/domain/outbox"
	"github.com/NordCoder/SendModes/internal/liberr"
	"github.com/jackc/pgx/v5"
)

type OutboxRepo struct{ db *DB }

func NewOutboxRepo(db *DB) *OutboxRepo { return &OutboxRepo{db: db} }

var _ outbox.Repository = (*OutboxRepo)(nil)

const (
	qEnqueue = `
INSERT INTO outbox (idempotency_key, kind, data, status, traceparent, tracestate, baggage)
VALUES (@key, @kind, @data, 'CREATED', @traceparent, @tracestate, @baggage)
ON CONFLICT (idempotency_key) DO NOTHING;`

	qPick = `
WITH cand AS (
   SELECT idempotency_key
   FROM outbox
   WHERE status = 'CREATED'
      OR (status = 'IN_PROGRESS' AND updated_at < now() - $2::interval)
   ORDER BY created_at
   LIMIT $1
   FOR UPDATE SKIP LOCKED
), upd AS (
   UPDATE outbox o
   SET status = 'IN_PROGRESS', updated_at = now()
   FROM cand
   WHERE o.idempotency_key = cand.idempotency_key
   RETURNING o.idempotency_key, o.kind, o.data, o.status, o.created_at, o.updated_at,
             o.traceparent, o.tracestate, o.baggage
)
SELECT idempotency_key, kind, data, status, created_at, updated_at, traceparent, tracestate, baggage
FROM upd
ORDER BY created_at;`

	qMarkSuccess = `
UPDATE outbox
SET status = 'SUCCESS', updated_at = now()
WHERE idempotency_key = ANY($1);`
)

// Enqueue joins the transaction carried by ctx, if any.
func (r *OutboxRepo) Enqueue(ctx context.Context, m outbox.Message) error {
	return r.db.run(ctx, "outbox message "+m.IdempotencyKey, func(ctx context.Context) error {
		_, err := r.db.execQueryer(ctx).Exec(ctx, qEnqueue, pgx.NamedArgs{
			"key":         m.IdempotencyKey,
			"kind":        int(m.Kind),
			"data":        m.Data,
			"traceparent": m.Traceparent,
			"tracestate":  m.Tracestate,
			"baggage":     m.Baggage,
		})
		return err
	})
}

func (r *OutboxRepo) PickBatch(ctx context.Context, batch int, inProgressTTL time.Duration) ([]outbox.Message, error) {
	if batch <= 0 {
		return nil, liberr.Internal("outbox batch must be > 0, got %d", batch)
	}
	ttl := fmt.Sprintf("%f seconds", inProgressTTL.Seconds())

	var out []outbox.Message
	err := r.db.run(ctx, "outbox batch", func(ctx context.Context) error {
		rows, err := r.db.execQueryer(ctx).Query(ctx, qPick, batch, ttl)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (outbox.Message, error) {
			var m outbox.Message
			var kind int
			var status string
			err := row.Scan(&m.IdempotencyKey, &kind, &m.Data, &status, &m.CreatedAt, &m.UpdatedAt,
				&m.Traceparent, &m.Tracestate, &m.Baggage)
			m.Kind = outbox.Kind(kind)
			m.Status = outbox.Status(status)
			return m, err
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OutboxRepo) MarkSuccess(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.db.run(ctx, "outbox messages", func(ctx context.Context) error {
		_, err := r.db.execQueryer(ctx).Exec(ctx, qMarkSuccess, keys)
		return err
	})
}
