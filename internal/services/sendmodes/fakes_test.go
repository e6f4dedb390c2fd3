package sendmodes

import (
	"context"
	"sync"
	"time"

	"github.com/NordCoder/SendModes/internal/domain/notification"
	"github.com/NordCoder/SendModes/internal/domain/sendmode"
	"github.com/NordCoder/SendModes/internal/liberr"
)

type memRepo struct {
	mu      sync.Mutex
	modes   map[string]sendmode.SendMode
	creates int
	err     error
}

func newMemRepo(ms ...sendmode.SendMode) *memRepo {
	r := &memRepo{modes: map[string]sendmode.SendMode{}}
	for _, m := range ms {
		r.modes[m.ID] = m
	}
	return r
}

func (r *memRepo) Create(_ context.Context, m sendmode.SendMode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.creates++
	r.modes[m.ID] = m
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (sendmode.SendMode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return sendmode.SendMode{}, r.err
	}
	m, ok := r.modes[id]
	if !ok {
		return sendmode.SendMode{}, liberr.NotFound("send mode " + id)
	}
	return m, nil
}

func (r *memRepo) ListByAggregateID(_ context.Context, aggregateID string) ([]sendmode.SendMode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sendmode.SendMode
	for _, m := range r.modes {
		if m.AggregateID == aggregateID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memRepo) Rename(_ context.Context, req sendmode.RenameSendModeRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.modes[req.ID]
	if !ok {
		return liberr.NotFound("send mode " + req.ID)
	}
	m.Name = req.Name
	r.modes[req.ID] = m
	return nil
}

func (r *memRepo) TouchHeartbeat(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.modes[id]
	if !ok {
		return liberr.NotFound("send mode " + id)
	}
	m.LastHeartbeat = at
	r.modes[id] = m
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.modes[id]; !ok {
		return liberr.NotFound("send mode " + id)
	}
	delete(r.modes, id)
	return nil
}

type memCache[E any] struct {
	mu   sync.Mutex
	data map[string]E
	err  error
}

func newMemCache[E any]() *memCache[E] { return &memCache[E]{data: map[string]E{}} }

func (c *memCache[E]) Get(_ context.Context, key string) (E, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero E
	if c.err != nil {
		return zero, c.err
	}
	v, ok := c.data[key]
	if !ok {
		return zero, liberr.NotFound("cache key " + key)
	}
	return v, nil
}

func (c *memCache[E]) Set(_ context.Context, key string, v E) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.data[key] = v
	return nil
}

func (c *memCache[E]) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	delete(c.data, key)
	return nil
}

func (c *memCache[E]) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

type fakeAPI struct {
	mu         sync.Mutex
	modes      map[string]sendmode.SendMode
	gets       int
	heartbeats []string
	err        error
}

func (a *fakeAPI) CreateSendMode(_ context.Context, req sendmode.NewSendModeRequest) (sendmode.SendMode, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return sendmode.SendMode{}, a.err
	}
	m := sendmode.SendMode{
		ID:                    "sm-new",
		AggregateID:           req.AggregateID,
		Name:                  req.Name,
		Kind:                  req.Kind,
		AccessToken:           req.AccessToken,
		AutoHeartbeatInterval: req.AutoHeartbeatInterval,
	}
	a.modes[m.ID] = m
	return m, nil
}

func (a *fakeAPI) GetSendModeByID(_ context.Context, id string) (sendmode.SendMode, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gets++
	if a.err != nil {
		return sendmode.SendMode{}, a.err
	}
	m, ok := a.modes[id]
	if !ok {
		return sendmode.SendMode{}, liberr.Internal("GET send mode %s: unexpected status 404", id)
	}
	return m, nil
}

func (a *fakeAPI) GetSendModesByAggregateID(_ context.Context, aggregateID string) ([]sendmode.SendMode, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	var out []sendmode.SendMode
	for _, m := range a.modes {
		if m.AggregateID == aggregateID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (a *fakeAPI) Heartbeat(_ context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.heartbeats = append(a.heartbeats, id)
	return nil
}

func (a *fakeAPI) DeleteSendMode(_ context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	delete(a.modes, id)
	return nil
}

type passTx struct{ calls int }

func (t *passTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type memTemplates struct {
	mu    sync.Mutex
	byKey map[string]notification.Template
	finds int
}

func (r *memTemplates) Find(_ context.Context, bank string, kind sendmode.Kind, searchBy string) (notification.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	t, ok := r.byKey[TemplateKey(bank, kind, searchBy)]
	if !ok {
		return notification.Template{}, liberr.NotFound("notification template")
	}
	return t, nil
}

func (r *memTemplates) ListByBank(_ context.Context, bank string) ([]notification.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notification.Template
	for _, t := range r.byKey {
		if t.Bank == bank {
			out = append(out, t)
		}
	}
	return out, nil
}
