package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/NordCoder/SendModes/internal/liberr"
	"github.com/NordCoder/SendModes/internal/obs/retry"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// run executes fn under the per-query timeout, retrying connection failures, and
// translates the final error for resource. Inside a transaction fn runs once: a
// broken connection aborts the whole transaction.
func (db *DB) run(ctx context.Context, resource string, fn func(ctx context.Context) error) error {
	_, txErr := extractTx(ctx)
	inTx := txErr == nil
	p := retry.DefaultDBPolicy(db.logger(), func(err error) bool {
		return !inTx && ctx.Err() == nil && isConnectionErr(err)
	})
	err := retry.Do(ctx, func() error {
		qctx, cancel := db.withTimeout(ctx)
		defer cancel()
		return fn(qctx)
	}, p)
	return mapErr(resource, err)
}

func (db *DB) logger() *zap.Logger {
	if db.log == nil {
		return zap.L()
	}
	return db.log
}

// isConnectionErr reports failures caused by the connection rather than by the
// statement: dropped or refused connections, broken pipes and timeouts.
func isConnectionErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// class 08: connection exception; 57P01..57P03: server going away
		return strings.HasPrefix(pgErr.Code, "08") ||
			pgErr.Code == "57P01" || pgErr.Code == "57P02" || pgErr.Code == "57P03"
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection") ||
		strings.Contains(msg, "broken") ||
		strings.Contains(msg, "timed")
}

func isTimeout(err error) bool {
	return pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded)
}

func mapErr(resource string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return liberr.NotFound(resource)
	case errors.Is(err, liberr.ErrInternal), errors.Is(err, liberr.ErrInvalidDeviceMode),
		errors.Is(err, liberr.ErrNotFound), errors.Is(err, liberr.ErrTimeout), errors.Is(err, liberr.ErrTransport):
		return err
	case isTimeout(err):
		return fmt.Errorf("%w: %w", liberr.ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		return liberr.Transport(err)
	case isConnectionErr(err):
		return liberr.Transport(err)
	default:
		return liberr.InternalCause(resource, err)
	}
}
