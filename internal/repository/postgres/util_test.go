package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/NordCoder/SendModes/internal/liberr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestIsConnectionErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"net op", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}, true},
		{"deadline", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"connection message", errors.New("conn closed: connection reset by peer"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"timed out", errors.New("i/o timed out"), true},
		{"pg connection class", &pgconn.PgError{Code: "08006", Message: "connection failure"}, true},
		{"pg admin shutdown", &pgconn.PgError{Code: "57P01"}, true},
		{"pg unique violation", &pgconn.PgError{Code: "23505", Message: "duplicate key"}, false},
		{"no rows", pgx.ErrNoRows, false},
		{"syntax", errors.New("syntax error at or near SELECT"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isConnectionErr(tc.err))
		})
	}
}

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr("x", nil))

	err := mapErr("send mode 1", fmt.Errorf("scan: %w", pgx.ErrNoRows))
	assert.ErrorIs(t, err, liberr.ErrNotFound)
	assert.Equal(t, "send mode 1, not found", err.Error())

	assert.ErrorIs(t, mapErr("x", context.DeadlineExceeded), liberr.ErrTimeout)
	assert.ErrorIs(t, mapErr("x", &net.OpError{Op: "read", Err: errors.New("reset")}), liberr.ErrTransport)
	assert.ErrorIs(t, mapErr("x", &pgconn.PgError{Code: "23505"}), liberr.ErrInternal)

	inv := liberr.InvalidDeviceMode("SMTP")
	assert.Same(t, inv, mapErr("x", inv))
}

func testDB() *DB {
	return &DB{QueryTimeout: time.Second, log: zap.NewNop()}
}

func TestRunRetriesConnectionErrors(t *testing.T) {
	calls := 0
	err := testDB().run(context.Background(), "send mode 1", func(ctx context.Context) error {
		calls++
		_, ok := ctx.Deadline()
		assert.True(t, ok, "query must run under a deadline")
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRunGivesUpAfterThreeAttempts(t *testing.T) {
	calls := 0
	err := testDB().run(context.Background(), "send mode 1", func(context.Context) error {
		calls++
		return errors.New("broken pipe")
	})

	assert.ErrorIs(t, err, liberr.ErrTransport)
	assert.Equal(t, 3, calls)
}

func TestRunDoesNotRetryStatementErrors(t *testing.T) {
	calls := 0
	err := testDB().run(context.Background(), "send mode 1", func(context.Context) error {
		calls++
		return pgx.ErrNoRows
	})

	assert.ErrorIs(t, err, liberr.ErrNotFound)
	assert.Equal(t, 1, calls)
}

type stubTx struct{ pgx.Tx }

func TestRunDoesNotRetryInsideTransaction(t *testing.T) {
	ctx := context.WithValue(context.Background(), txInjector{}, pgx.Tx(stubTx{}))
	calls := 0
	err := testDB().run(ctx, "send mode 1", func(context.Context) error {
		calls++
		return errors.New("connection refused")
	})

	assert.ErrorIs(t, err, liberr.ErrTransport)
	assert.Equal(t, 1, calls)
}
