package postgres

import (
	"context"
	"time"

	"github.com/NordCoder/SendModes/internal/codec"
	"github.com/NordCoder/SendModes/internal/domain/sendmode"
	"github.com/jackc/pgx/v5"
)

var _ sendmode.Repo = (*SendModeRepoImpl)(nil)

type SendModeRepoImpl struct {
	db *DB
}

func NewSendModeRepo(db *DB) *SendModeRepoImpl { return &SendModeRepoImpl{db: db} }

const (
	sendModeColumns = `id, aggregate_id, name, send_mode, access_token, fingerprint, private_key,
       auto_heartbeat_interval, last_heartbeat`

	qSendModeUpsert = `
INSERT INTO send_modes (id, aggregate_id, name, send_mode, access_token, fingerprint, private_key,
                        auto_heartbeat_interval, last_heartbeat)
VALUES (@id, @aggregate_id, @name, @send_mode, @access_token, @fingerprint, @private_key,
        @auto_heartbeat_interval, @last_heartbeat)
ON CONFLICT (id) DO UPDATE
SET aggregate_id            = EXCLUDED.aggregate_id,
    name                    = EXCLUDED.name,
    send_mode               = EXCLUDED.send_mode,
    access_token            = EXCLUDED.access_token,
    fingerprint             = EXCLUDED.fingerprint,
    private_key             = EXCLUDED.private_key,
    auto_heartbeat_interval = EXCLUDED.auto_heartbeat_interval,
    last_heartbeat          = EXCLUDED.last_heartbeat;
`

	qSendModeGetByID = `SELECT ` + sendModeColumns + ` FROM send_modes WHERE id = $1;`

	qSendModeListByAggregate = `
SELECT ` + sendModeColumns + `
FROM send_modes
WHERE aggregate_id = $1
ORDER BY name, id;
`

	qSendModeRename = `UPDATE send_modes SET name = $2 WHERE id = $1;`

	qSendModeTouch = `UPDATE send_modes SET last_heartbeat = $2 WHERE id = $1;`

	qSendModeDelete = `DELETE FROM send_modes WHERE id = $1;`
)

// Create stores m, replacing a stored mode with the same id.
func (r *SendModeRepoImpl) Create(ctx context.Context, m sendmode.SendMode) error {
	row, err := codec.SendModeRow.Encode(m)
	if err != nil {
		return err
	}
	return r.db.run(ctx, "send mode "+m.ID, func(ctx context.Context) error {
		_, err := r.db.execQueryer(ctx).Exec(ctx, qSendModeUpsert, pgx.NamedArgs(row))
		return err
	})
}

func (r *SendModeRepoImpl) GetByID(ctx context.Context, id string) (sendmode.SendMode, error) {
	var row codec.Row
	err := r.db.run(ctx, "send mode "+id, func(ctx context.Context) error {
		rows, err := r.db.execQueryer(ctx).Query(ctx, qSendModeGetByID, id)
		if err != nil {
			return err
		}
		row, err = pgx.CollectExactlyOneRow(rows, pgx.RowToMap)
		return err
	})
	if err != nil {
		return sendmode.SendMode{}, err
	}
	return codec.SendModeRow.Decode(row)
}

func (r *SendModeRepoImpl) ListByAggregateID(ctx context.Context, aggregateID string) ([]sendmode.SendMode, error) {
	var rows []codec.Row
	err := r.db.run(ctx, "send modes of "+aggregateID, func(ctx context.Context) error {
		rs, err := r.db.execQueryer(ctx).Query(ctx, qSendModeListByAggregate, aggregateID)
		if err != nil {
			return err
		}
		rows, err = pgx.CollectRows(rs, pgx.RowToMap)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]sendmode.SendMode, 0, len(rows))
	for _, row := range rows {
		m, err := codec.SendModeRow.Decode(row)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *SendModeRepoImpl) Rename(ctx context.Context, req sendmode.RenameSendModeRequest) error {
	return r.execOne(ctx, req.ID, qSendModeRename, req.ID, req.Name)
}

func (r *SendModeRepoImpl) TouchHeartbeat(ctx context.Context, id string, at time.Time) error {
	return r.execOne(ctx, id, qSendModeTouch, id, at.UTC())
}

func (r *SendModeRepoImpl) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, id, qSendModeDelete, id)
}

// execOne runs a statement that must affect the row with the given id.
func (r *SendModeRepoImpl) execOne(ctx context.Context, id, sql string, args ...any) error {
	return r.db.run(ctx, "send mode "+id, func(ctx context.Context) error {
		tag, err := r.db.execQueryer(ctx).Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
}
