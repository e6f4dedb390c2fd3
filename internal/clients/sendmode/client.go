// Package sendmode is the HTTP client of the remote send-mode service.
package sendmode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/NordCoder/SendModes/internal/codec"
	domain "github.com/NordCoder/SendModes/internal/domain/sendmode"
	"github.com/NordCoder/SendModes/internal/liberr"
	"go.uber.org/zap"
)

const basePath = "/api/v1/send_modes"

// Executor sends a request with retries. *httpexec.Executor satisfies it.
type Executor interface {
	Execute(ctx context.Context, req *http.Request) (*http.Response, error)
}

type Client struct {
	baseURL string
	exec    Executor
	log     *zap.Logger
}

var (
	_ domain.API         = (*Client)(nil)
	_ domain.Provisioner = (*Client)(nil)
)

func New(baseURL string, exec Executor) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		exec:    exec,
		log:     zap.L().With(zap.String("component", "sendmode_client")),
	}
}

func (c *Client) WithLogger(l *zap.Logger) *Client {
	if l == nil {
		return c
	}
	cp := *c
	cp.log = l.With(zap.String("component", "sendmode_client"))
	return &cp
}

func (c *Client) CreateSendMode(ctx context.Context, req domain.NewSendModeRequest) (domain.SendMode, error) {
	body, err := codec.NewSendModeJSON.Encode(req)
	if err != nil {
		return domain.SendMode{}, err
	}
	b, err := c.do(ctx, http.MethodPost, basePath, body)
	if err != nil {
		return domain.SendMode{}, err
	}
	m, err := codec.SendModeJSON.Decode(b)
	if err != nil {
		return domain.SendMode{}, decodeErr("created send mode", err)
	}
	c.log.Info("send mode created",
		zap.String("id", m.ID),
		zap.String("aggregate_id", m.AggregateID),
		zap.Stringer("kind", m.Kind),
	)
	return m, nil
}

func (c *Client) GetSendModeByID(ctx context.Context, id string) (domain.SendMode, error) {
	b, err := c.do(ctx, http.MethodGet, basePath+"/"+url.PathEscape(id), nil)
	if err != nil {
		return domain.SendMode{}, err
	}
	m, err := codec.SendModeJSON.Decode(b)
	if err != nil {
		return domain.SendMode{}, decodeErr("send mode", err)
	}
	return m, nil
}

func (c *Client) GetSendModesByAggregateID(ctx context.Context, aggregateID string) ([]domain.SendMode, error) {
	b, err := c.do(ctx, http.MethodGet, basePath+"/aggregate_id/"+url.PathEscape(aggregateID), nil)
	if err != nil {
		return nil, err
	}
	ms, err := codec.SendModeListJSON.Decode(b)
	if err != nil {
		return nil, decodeErr("send modes", err)
	}
	return ms, nil
}

func (c *Client) Heartbeat(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodGet, basePath+"/"+url.PathEscape(id)+"/heartbeat", nil)
	return err
}

func (c *Client) DeleteSendMode(ctx context.Context, id string) error {
	if _, err := c.do(ctx, http.MethodDelete, basePath+"/"+url.PathEscape(id), nil); err != nil {
		return err
	}
	c.log.Info("send mode deleted", zap.String("id", id))
	return nil
}

// do sends one call and returns the body of a 2xx response. Any other status is
// reported as an internal failure carrying the code in its message.
func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, liberr.InternalCause("build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.exec.Execute(ctx, req)
	if err != nil {
		c.log.Warn("send mode call failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.log.Warn("send mode call rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, liberr.Internal("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, liberr.Transport(fmt.Errorf("read response body: %w", err))
	}
	return b, nil
}

func decodeErr(what string, err error) error {
	if errors.Is(err, liberr.ErrInternal) {
		return err
	}
	return liberr.InternalCause("decode "+what, err)
}
