// Package httpexec sends one outbound HTTP request with a per-attempt deadline and
// fixed-interval retries of transient failures.
package httpexec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/NordCoder/SendModes/internal/liberr"
	"github.com/NordCoder/SendModes/internal/obs/retry"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	DefaultAttemptTimeout = 500 * time.Millisecond
	RequestIDHeader       = "X-Request-Id"
)

var errAttemptDeadline = errors.New("attempt deadline exceeded")

var executeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "sendmodes_http_execute_total",
	Help: "Executed outbound requests by outcome.",
}, []string{"method", "outcome"})

// Doer is the transport an Executor sends through. *http.Client satisfies it and
// is safe to share between goroutines.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Stats describes one finished Execute call.
type Stats struct {
	Method   string
	URL      string
	Attempts int
	Elapsed  time.Duration
	Err      error
}

type Executor struct {
	client         Doer
	policy         retry.Policy
	attemptTimeout time.Duration
	observer       func(Stats)
	log            *zap.Logger
}

type Option func(*Executor)

func WithAttemptTimeout(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.attemptTimeout = d
		}
	}
}

// WithRetry overrides the attempt count and the fixed interval between attempts.
func WithRetry(attempts int, interval time.Duration) Option {
	return func(e *Executor) {
		if attempts > 0 {
			e.policy.Attempts = attempts
		}
		if interval >= 0 {
			e.policy.Backoff = retry.Fixed{Interval: interval}
		}
	}
}

func WithObserver(fn func(Stats)) Option {
	return func(e *Executor) { e.observer = fn }
}

func New(client Doer, opts ...Option) *Executor {
	log := zap.L().With(zap.String("component", "httpexec"))
	e := &Executor{
		client:         client,
		policy:         retry.DefaultHTTPPolicy(log),
		attemptTimeout: DefaultAttemptTimeout,
		log:            log,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Executor) WithLogger(l *zap.Logger) *Executor {
	if l == nil {
		return e
	}
	cp := *e
	cp.log = l.With(zap.String("component", "httpexec"))
	attempts, backoff := e.policy.Attempts, e.policy.Backoff
	cp.policy = retry.DefaultHTTPPolicy(cp.log)
	cp.policy.Attempts, cp.policy.Backoff = attempts, backoff
	return &cp
}

// Execute sends req, retrying timeouts and transport failures. Any response is
// returned as is, whatever its status; the caller must close its body.
//
// The request body must be replayable (nil, http.NoBody or GetBody set), otherwise
// Execute fails with liberr.ErrInternal without sending anything.
func (e *Executor) Execute(ctx context.Context, req *http.Request) (*http.Response, error) {
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		e.log.Error("request body is not replayable", zap.String("method", req.Method), zap.String("url", req.URL.String()))
		return nil, liberr.Internal("request body is not replayable")
	}

	base := req.Clone(ctx)
	if base.Header.Get(RequestIDHeader) == "" {
		base.Header.Set(RequestIDHeader, uuid.NewString())
	}
	url := base.URL.String()
	log := e.log.With(
		zap.String("method", base.Method),
		zap.String("url", url),
		zap.String("request_id", base.Header.Get(RequestIDHeader)),
	)

	var (
		resp     *http.Response
		attempts int
	)
	policy := e.policy
	policy.Retryable = func(err error) bool { return ctx.Err() == nil && liberr.IsTransient(err) }

	start := time.Now()
	err := retry.Do(ctx, func() error {
		attempts++
		r, err := replay(ctx, base)
		if err != nil {
			return err
		}
		resp, err = e.send(ctx, r)
		return err
	}, policy)
	elapsed := time.Since(start)

	if err != nil && !isClassified(err) {
		err = liberr.FromContext(err)
	}

	log.Debug("request finished",
		zap.Int("attempts", attempts),
		zap.Duration("elapsed", elapsed),
		zap.Int64("elapsed_ms", elapsed.Milliseconds()),
		zap.Error(err),
	)
	executeTotal.WithLabelValues(base.Method, string(liberr.KindOf(err))).Inc()
	if e.observer != nil {
		e.observer(Stats{Method: base.Method, URL: url, Attempts: attempts, Elapsed: elapsed, Err: err})
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// send performs one attempt. The deadline only covers the send up to response
// headers; the attempt context is released when the response body is closed.
func (e *Executor) send(ctx context.Context, req *http.Request) (*http.Response, error) {
	actx, cancel := context.WithCancelCause(ctx)
	timer := time.AfterFunc(e.attemptTimeout, func() { cancel(errAttemptDeadline) })

	resp, err := e.client.Do(req.WithContext(actx))
	if !timer.Stop() {
		if resp != nil {
			_ = resp.Body.Close()
		}
		cancel(nil)
		return nil, fmt.Errorf("%w after %s", liberr.ErrTimeout, e.attemptTimeout)
	}
	if err != nil {
		cancel(nil)
		if ctx.Err() != nil {
			return nil, liberr.FromContext(ctx.Err())
		}
		return nil, liberr.Transport(err)
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: func() { cancel(nil) }}
	return resp, nil
}

func replay(ctx context.Context, base *http.Request) (*http.Request, error) {
	r := base.Clone(ctx)
	if base.GetBody != nil {
		body, err := base.GetBody()
		if err != nil {
			return nil, liberr.InternalCause("replay request body", err)
		}
		r.Body = body
	}
	return r, nil
}

func isClassified(err error) bool {
	for _, target := range []error{
		liberr.ErrInternal, liberr.ErrTimeout, liberr.ErrTransport, liberr.ErrNotFound,
		liberr.ErrUnauthorized, liberr.ErrForbidden, liberr.ErrInvalidDeviceMode,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

type cancelOnClose struct {
	io.ReadCloser
	once   sync.Once
	cancel func()
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.once.Do(c.cancel)
	return err
}
