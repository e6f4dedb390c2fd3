package sendmodes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NordCoder/SendModes/internal/domain/notification"
	"github.com/NordCoder/SendModes/internal/domain/sendmode"
	"github.com/NordCoder/SendModes/internal/liberr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var now = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func mode(id, agg string) sendmode.SendMode {
	return sendmode.SendMode{ID: id, AggregateID: agg, Name: "main", Kind: sendmode.KindKraft, AccessToken: "tok"}
}

type fixture struct {
	repo  *memRepo
	cache *memCache[sendmode.SendMode]
	api   *fakeAPI
	tx    *passTx
	dir   *Directory
}

func newFixture(remote ...sendmode.SendMode) *fixture {
	f := &fixture{
		repo:  newMemRepo(),
		cache: newMemCache[sendmode.SendMode](),
		api:   &fakeAPI{modes: map[string]sendmode.SendMode{}},
		tx:    &passTx{},
	}
	for _, m := range remote {
		f.api.modes[m.ID] = m
	}
	f.dir = &Directory{
		Repo:  f.repo,
		Cache: f.cache,
		API:   f.api,
		Tx:    f.tx,
		Clock: fixedClock{now},
		Log:   zap.NewNop(),
	}
	return f
}

func TestGetFallsBackToRemoteAndBackfills(t *testing.T) {
	f := newFixture(mode("sm-1", "agg"))

	m, err := f.dir.Get(context.Background(), "sm-1")
	require.NoError(t, err)
	assert.Equal(t, "sm-1", m.ID)
	assert.Equal(t, 1, f.api.gets)
	assert.Contains(t, f.repo.modes, "sm-1")
	assert.True(t, f.cache.Has(SendModeKey("sm-1")))

	_, err = f.dir.Get(context.Background(), "sm-1")
	require.NoError(t, err)
	assert.Equal(t, 1, f.api.gets, "second read must be served from cache")
}

func TestGetServesFromStoreWithoutRemote(t *testing.T) {
	f := newFixture()
	f.repo.modes["sm-1"] = mode("sm-1", "agg")

	m, err := f.dir.Get(context.Background(), "sm-1")
	require.NoError(t, err)
	assert.Equal(t, "sm-1", m.ID)
	assert.Equal(t, 0, f.api.gets)
}

func TestGetSurvivesCacheOutage(t *testing.T) {
	f := newFixture()
	f.repo.modes["sm-1"] = mode("sm-1", "agg")
	f.cache.err = liberr.Transport(errors.New("connection refused"))

	m, err := f.dir.Get(context.Background(), "sm-1")
	require.NoError(t, err)
	assert.Equal(t, "sm-1", m.ID)
}

func TestGetReturnsStoreFailure(t *testing.T) {
	f := newFixture(mode("sm-1", "agg"))
	f.repo.err = liberr.Transport(errors.New("broken pipe"))

	_, err := f.dir.Get(context.Background(), "sm-1")
	assert.ErrorIs(t, err, liberr.ErrTransport)
	assert.Equal(t, 0, f.api.gets)
}

func TestGetUnknownEverywhere(t *testing.T) {
	f := newFixture()

	_, err := f.dir.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, liberr.ErrInternal)
}

func TestCreateStoresAndCaches(t *testing.T) {
	f := newFixture()

	m, err := f.dir.Create(context.Background(), sendmode.NewSendModeRequest{
		AggregateID: "agg", Name: "main", Kind: sendmode.KindTrademo, AccessToken: "tok",
	})
	require.NoError(t, err)
	assert.Equal(t, sendmode.KindTrademo, f.repo.modes[m.ID].Kind)
	assert.True(t, f.cache.Has(SendModeKey(m.ID)))
}

func TestCreateRemoteFailureStoresNothing(t *testing.T) {
	f := newFixture()
	f.api.err = liberr.ErrTimeout

	_, err := f.dir.Create(context.Background(), sendmode.NewSendModeRequest{Kind: sendmode.KindKraft})
	assert.ErrorIs(t, err, liberr.ErrTimeout)
	assert.Empty(t, f.repo.modes)
}

func TestRenameInvalidatesCache(t *testing.T) {
	f := newFixture()
	f.repo.modes["sm-1"] = mode("sm-1", "agg")
	f.cache.data[SendModeKey("sm-1")] = mode("sm-1", "agg")

	require.NoError(t, f.dir.Rename(context.Background(), sendmode.RenameSendModeRequest{ID: "sm-1", Name: "backup"}))
	assert.Equal(t, "backup", f.repo.modes["sm-1"].Name)
	assert.False(t, f.cache.Has(SendModeKey("sm-1")))

	err := f.dir.Rename(context.Background(), sendmode.RenameSendModeRequest{ID: "ghost", Name: "x"})
	assert.ErrorIs(t, err, liberr.ErrNotFound)
}

func TestHeartbeatTouchesStore(t *testing.T) {
	f := newFixture(mode("sm-1", "agg"))
	f.repo.modes["sm-1"] = mode("sm-1", "agg")

	require.NoError(t, f.dir.Heartbeat(context.Background(), "sm-1"))
	assert.Equal(t, []string{"sm-1"}, f.api.heartbeats)
	assert.Equal(t, now, f.repo.modes["sm-1"].LastHeartbeat)

	require.NoError(t, f.dir.Heartbeat(context.Background(), "not-stored-locally"))
}

func TestDeleteRemovesEverywhere(t *testing.T) {
	f := newFixture(mode("sm-1", "agg"))
	f.repo.modes["sm-1"] = mode("sm-1", "agg")
	f.cache.data[SendModeKey("sm-1")] = mode("sm-1", "agg")

	require.NoError(t, f.dir.Delete(context.Background(), "sm-1"))
	assert.NotContains(t, f.api.modes, "sm-1")
	assert.NotContains(t, f.repo.modes, "sm-1")
	assert.False(t, f.cache.Has(SendModeKey("sm-1")))
}

func TestSyncStoresAggregateInOneTransaction(t *testing.T) {
	f := newFixture(mode("sm-1", "agg"), mode("sm-2", "agg"), mode("sm-3", "other"))
	f.cache.data[SendModeKey("sm-1")] = sendmode.SendMode{ID: "sm-1", Name: "stale"}

	ms, err := f.dir.Sync(context.Background(), "agg")
	require.NoError(t, err)
	assert.Len(t, ms, 2)
	assert.Equal(t, 1, f.tx.calls)
	assert.Len(t, f.repo.modes, 2)
	assert.False(t, f.cache.Has(SendModeKey("sm-1")))
}

func TestSyncRemovesModesGoneRemotely(t *testing.T) {
	f := newFixture(mode("sm-1", "agg"))
	f.repo.modes["sm-old"] = mode("sm-old", "agg")
	f.repo.modes["sm-keep"] = mode("sm-keep", "other")
	f.cache.data[SendModeKey("sm-old")] = mode("sm-old", "agg")

	ms, err := f.dir.Sync(context.Background(), "agg")
	require.NoError(t, err)
	assert.Len(t, ms, 1)
	assert.Equal(t, 1, f.tx.calls)
	assert.NotContains(t, f.repo.modes, "sm-old")
	assert.Contains(t, f.repo.modes, "sm-1")
	assert.Contains(t, f.repo.modes, "sm-keep")
	assert.False(t, f.cache.Has(SendModeKey("sm-old")))
}

func TestSyncEmptyRemoteClearsAggregate(t *testing.T) {
	f := newFixture()
	f.repo.modes["sm-a"] = mode("sm-a", "agg")
	f.repo.modes["sm-b"] = mode("sm-b", "agg")

	ms, err := f.dir.Sync(context.Background(), "agg")
	require.NoError(t, err)
	assert.Empty(t, ms)
	assert.Empty(t, f.repo.modes)
}

func TestTemplateDirectoryReadsThrough(t *testing.T) {
	tpl := notification.Template{Bank: "acme", SendMode: sendmode.KindKraft, SearchBy: "payment", Template: "Paid {{amount}}"}
	repo := &memTemplates{byKey: map[string]notification.Template{
		TemplateKey("acme", sendmode.KindKraft, "payment"): tpl,
	}}
	cache := newMemCache[notification.Template]()
	d := &TemplateDirectory{Repo: repo, Cache: cache, Log: zap.NewNop()}

	got, err := d.Find(context.Background(), "acme", sendmode.KindKraft, "payment")
	require.NoError(t, err)
	assert.Equal(t, tpl, got)
	_, err = d.Find(context.Background(), "acme", sendmode.KindKraft, "payment")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.finds)
	assert.True(t, cache.Has("notification_template:acme:KRAFT:payment"))

	_, err = d.Find(context.Background(), "acme", sendmode.KindTrademo, "payment")
	assert.ErrorIs(t, err, liberr.ErrNotFound)

	all, err := d.ListByBank(context.Background(), "acme")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
