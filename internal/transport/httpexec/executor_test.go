package httpexec

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/NordCoder/SendModes/internal/liberr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeDoer struct {
	mu    sync.Mutex
	calls int
	reqs  []*http.Request
	fn    func(n int, req *http.Request) (*http.Response, error)
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	return f.fn(n, req)
}

func (f *fakeDoer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func respond(req *http.Request, status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
		Request:    req,
	}
}

// blockUntilDone behaves like a server that never answers.
func blockUntilDone(req *http.Request) (*http.Response, error) {
	<-req.Context().Done()
	return nil, req.Context().Err()
}

type onlyReader struct{ r io.Reader }

func (o onlyReader) Read(p []byte) (int, error) { return o.r.Read(p) }

func TestExecuteRejectsNonReplayableBody(t *testing.T) {
	doer := &fakeDoer{fn: func(int, *http.Request) (*http.Response, error) {
		t.Fatal("must not send")
		return nil, nil
	}}
	req, err := http.NewRequest(http.MethodPost, "http://sendmodes.local/api/v1/send_modes", onlyReader{strings.NewReader(`{}`)})
	require.NoError(t, err)
	require.Nil(t, req.GetBody)

	resp, err := New(doer).Execute(context.Background(), req)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, liberr.ErrInternal)
	assert.Equal(t, 0, doer.Calls())
}

func TestExecuteRetriesTimeoutsThenSucceeds(t *testing.T) {
	doer := &fakeDoer{fn: func(n int, req *http.Request) (*http.Response, error) {
		if n < 5 {
			return blockUntilDone(req)
		}
		return respond(req, http.StatusOK, `ok`), nil
	}}
	var stats Stats
	exec := New(doer, WithObserver(func(s Stats) { stats = s }))

	req, _ := http.NewRequest(http.MethodGet, "http://sendmodes.local/api/v1/send_modes/1", nil)
	resp, err := exec.Execute(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, doer.Calls())
	assert.Equal(t, 5, stats.Attempts)
	assert.NoError(t, stats.Err)
	assert.GreaterOrEqual(t, stats.Elapsed, 4*100*time.Millisecond+4*500*time.Millisecond)
}

func TestExecuteDoesNotRetryHTTPErrorStatus(t *testing.T) {
	doer := &fakeDoer{fn: func(_ int, req *http.Request) (*http.Response, error) {
		return respond(req, http.StatusNotFound, `{"error":"missing"}`), nil
	}}
	req, _ := http.NewRequest(http.MethodGet, "http://sendmodes.local/api/v1/send_modes/x", nil)

	resp, err := New(doer).Execute(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 1, doer.Calls())
}

func TestExecuteSurfacesLastTransportError(t *testing.T) {
	doer := &fakeDoer{fn: func(n int, _ *http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	}}
	var stats Stats
	exec := New(doer, WithRetry(5, 5*time.Millisecond), WithObserver(func(s Stats) { stats = s }))
	req, _ := http.NewRequest(http.MethodDelete, "http://sendmodes.local/api/v1/send_modes/1", nil)

	resp, err := exec.Execute(context.Background(), req)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, liberr.ErrTransport)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 5, doer.Calls())
	assert.Equal(t, 5, stats.Attempts)
}

func TestExecuteSurfacesTimeoutWhenAllAttemptsTimeOut(t *testing.T) {
	doer := &fakeDoer{fn: func(_ int, req *http.Request) (*http.Response, error) { return blockUntilDone(req) }}
	exec := New(doer, WithAttemptTimeout(20*time.Millisecond), WithRetry(3, time.Millisecond))
	req, _ := http.NewRequest(http.MethodGet, "http://sendmodes.local/", nil)

	_, err := exec.Execute(context.Background(), req)

	assert.ErrorIs(t, err, liberr.ErrTimeout)
	assert.Equal(t, 3, doer.Calls())
}

func TestExecuteReplaysBodyAndKeepsRequestID(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies []string
		ids    []string
	)
	doer := &fakeDoer{fn: func(n int, req *http.Request) (*http.Response, error) {
		b, _ := io.ReadAll(req.Body)
		mu.Lock()
		bodies = append(bodies, string(b))
		ids = append(ids, req.Header.Get(RequestIDHeader))
		mu.Unlock()
		if n < 3 {
			return nil, errors.New("connection reset by peer")
		}
		return respond(req, http.StatusCreated, `{}`), nil
	}}
	req, _ := http.NewRequest(http.MethodPost, "http://sendmodes.local/api/v1/send_modes", bytes.NewReader([]byte(`{"name":"a"}`)))

	resp, err := New(doer, WithRetry(5, time.Millisecond)).Execute(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, []string{`{"name":"a"}`, `{"name":"a"}`, `{"name":"a"}`}, bodies)
	require.Len(t, ids, 3)
	assert.NotEmpty(t, ids[0])
	assert.Equal(t, ids[0], ids[1])
	assert.Equal(t, ids[0], ids[2])
	assert.Empty(t, req.Header.Get(RequestIDHeader), "caller request must not be mutated")
}

type ctxBody struct {
	ctx context.Context
	r   io.Reader
}

func (b ctxBody) Read(p []byte) (int, error) {
	if err := b.ctx.Err(); err != nil {
		return 0, err
	}
	return b.r.Read(p)
}

func (b ctxBody) Close() error { return nil }

func TestExecuteBodyOutlivesAttemptDeadline(t *testing.T) {
	doer := &fakeDoer{fn: func(_ int, req *http.Request) (*http.Response, error) {
		resp := respond(req, http.StatusOK, "")
		resp.Body = ctxBody{ctx: req.Context(), r: strings.NewReader("payload")}
		return resp, nil
	}}
	exec := New(doer, WithAttemptTimeout(10*time.Millisecond))
	req, _ := http.NewRequest(http.MethodGet, "http://sendmodes.local/", nil)

	resp, err := exec.Execute(context.Background(), req)
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(b))
	require.NoError(t, resp.Body.Close())
}

func TestExecuteStopsOnCallerCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	doer := &fakeDoer{fn: func(_ int, req *http.Request) (*http.Response, error) { return blockUntilDone(req) }}
	req, _ := http.NewRequest(http.MethodGet, "http://sendmodes.local/", nil)

	_, err := New(doer).Execute(ctx, req)

	assert.ErrorIs(t, err, liberr.ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, doer.Calls())
}
