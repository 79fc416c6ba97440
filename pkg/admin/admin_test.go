package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/backstage/pkg/api"
	"tableflip.dev/backstage/pkg/devserver"
	"tableflip.dev/backstage/pkg/entity"
	"tableflip.dev/backstage/pkg/resource"
	"tableflip.dev/backstage/pkg/store"
)

const monthID = "65a1b2c3d4e5f60718293a4b"

func newService(t *testing.T) (*Service, *devserver.Server, *store.Memory) {
	t.Helper()
	dev := devserver.New()
	srv := httptest.NewServer(dev.Handler())
	t.Cleanup(srv.Close)

	creds := store.NewMemory(store.Session{})
	s := &Service{Client: api.NewClient(srv.URL, creds)}
	_, err := s.Login(context.Background(), devserver.DefaultEmail, devserver.DefaultPassword)
	require.NoError(t, err)
	return s, dev, creds
}

func lookup(t *testing.T, name string) entity.Resource {
	t.Helper()
	res, err := entity.Lookup(name)
	require.NoError(t, err)
	return res
}

func TestNoClient(t *testing.T) {
	s := &Service{}
	_, err := s.List(context.Background(), lookup(t, "tickets"), resource.Query{})
	assert.Error(t, err)
}

func TestAddMonthNormalizesAndRejectsDuplicates(t *testing.T) {
	s, _, _ := newService(t)
	ctx := context.Background()

	doc, err := s.AddMonth(ctx, "jan-25")
	require.NoError(t, err)
	assert.Equal(t, "Jan-25", doc.String("month"))

	_, err = s.AddMonth(ctx, "JAN-25")
	require.Error(t, err)
	assert.Equal(t, "Month already exists", api.ErrorMessage(err, ""))

	_, err = s.AddMonth(ctx, "January")
	assert.ErrorIs(t, err, entity.ErrBadMonthCode)
}

func TestListFiltersAndSearch(t *testing.T) {
	s, dev, _ := newService(t)
	require.NoError(t, dev.Seed("releases",
		entity.Entity{"title": "Midnight Drive", "status": "LIVE"},
		entity.Entity{"title": "Morning Drive", "status": "PENDING"},
		entity.Entity{"title": "Other", "status": "LIVE"},
	))
	res := lookup(t, "releases")

	page, err := s.List(context.Background(), res, resource.Query{Search: "drive", Filters: map[string]string{"status": "LIVE"}})
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "Midnight Drive", page.Rows[0].String("title"))
	assert.Equal(t, 1, page.Pagination.TotalCount)
}

func TestToggleUsesResourceEndpoint(t *testing.T) {
	s, dev, _ := newService(t)
	require.NoError(t, dev.Seed("royalty-months", entity.Entity{"_id": monthID, "month": "Jan-25", "isActive": true}))
	res := lookup(t, "months")

	require.NoError(t, s.Toggle(context.Background(), res, monthID, "isActive", false))
	active, _ := dev.Docs("royalty-months")[0].Bool("isActive")
	assert.False(t, active)

	assert.ErrorIs(t, s.Toggle(context.Background(), res, monthID, "month", true), ErrNoToggle)
}

func TestOptimisticToggleRollsBackAgainstServer(t *testing.T) {
	s, dev, _ := newService(t)
	require.NoError(t, dev.Seed("royalty-months", entity.Entity{"_id": monthID, "month": "Jan-25", "isActive": true}))
	res := lookup(t, "royalty-months")
	rec := &resource.Recorder{}
	list := s.NewList(res, resource.WithNotifier(rec))
	ctx := context.Background()
	require.NoError(t, list.Fetch(ctx))

	dev.Fail(http.MethodPatch, res.Path, http.StatusInternalServerError, "Could not toggle month")
	m := resource.NewMutations(list)
	p, err := m.Begin(monthID, "isActive")
	require.NoError(t, err)
	row, _ := list.Row(monthID)
	active, _ := row.Bool("isActive")
	assert.False(t, active, "rendered optimistically")

	require.Error(t, m.Commit(ctx, p, s.Toggler(res, monthID, "isActive")))
	row, _ = list.Row(monthID)
	active, _ = row.Bool("isActive")
	assert.True(t, active, "rolled back")
	assert.Equal(t, []string{"Could not toggle month"}, rec.Errors())
}

func TestDeleteGuardsIDBeforeRequest(t *testing.T) {
	s, dev, _ := newService(t)
	before := dev.Stats().Requests
	err := s.Delete(context.Background(), lookup(t, "users"), "42")
	assert.ErrorIs(t, err, resource.ErrInvalidID)
	assert.Equal(t, before, dev.Stats().Requests)
}

func TestReadOnlyResources(t *testing.T) {
	s, _, _ := newService(t)
	_, err := s.Create(context.Background(), lookup(t, "report-data"), map[string]any{"month": "Jan-25"})
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestFormCreatesAndRefetches(t *testing.T) {
	s, dev, _ := newService(t)
	res := lookup(t, "tickets")
	list := s.NewList(res)
	f := resource.NewForm(s.FormSpec(res, list, nil))
	f.Open(nil)
	require.NoError(t, f.Set("subject", "Missing royalties"))
	require.NoError(t, f.Set("priority", "High"))

	_, err := f.Submit(context.Background())
	require.NoError(t, err)

	docs := dev.Docs("tickets")
	require.Len(t, docs, 1)
	assert.Equal(t, "high", docs[0].String("priority"))
	assert.Equal(t, "open", docs[0].String("status"))
	assert.Len(t, list.State().Rows, 1, "OnSaved refetched the list")
}

func TestExpiredAccessTokenRefreshes(t *testing.T) {
	s, dev, creds := newService(t)
	dev.InvalidateAccessTokens()

	_, err := s.List(context.Background(), lookup(t, "users"), resource.Query{})
	require.NoError(t, err)
	assert.Equal(t, 1, dev.Stats().Refreshes)
	session, _ := creds.Load(context.Background())
	assert.True(t, session.LoggedIn())
}

func TestRevokedRefreshExpiresSession(t *testing.T) {
	s, dev, creds := newService(t)
	dev.InvalidateAccessTokens()
	dev.RevokeRefreshTokens()

	_, err := s.List(context.Background(), lookup(t, "users"), resource.Query{})
	require.ErrorIs(t, err, api.ErrSessionExpired)
	session, _ := creds.Load(context.Background())
	assert.False(t, session.LoggedIn())
	assert.Nil(t, session.User)
}

func TestReportCountsByFilter(t *testing.T) {
	s, dev, _ := newService(t)
	require.NoError(t, dev.Seed("tickets",
		entity.Entity{"subject": "a", "status": "open"},
		entity.Entity{"subject": "b", "status": "open"},
		entity.Entity{"subject": "c", "status": "closed"},
	))
	r, err := s.Report(context.Background(), lookup(t, "tickets"), "status")
	require.NoError(t, err)
	assert.Equal(t, 3, r.Total)
	counts := map[string]int{}
	for _, c := range r.Cards {
		counts[c.Label] = c.Count
	}
	assert.Equal(t, 2, counts["Open"])
	assert.Equal(t, 1, counts["Closed"])
	assert.Equal(t, 0, counts["Resolved"])
}

func TestMe(t *testing.T) {
	s, _, _ := newService(t)
	u, err := s.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, devserver.DefaultEmail, u.Email)
	assert.Equal(t, "admin", u.Role)
}

func TestFilterChangeDuringRefreshKeepsSession(t *testing.T) {
	s, dev, creds := newService(t)
	require.NoError(t, dev.Seed("tickets", entity.Entity{"subject": "a", "status": "open"}))
	dev.InvalidateAccessTokens()
	dev.Slow(http.MethodPost, api.RefreshPath, 150*time.Millisecond)
	list := s.NewList(lookup(t, "tickets"))
	ctx := context.Background()

	first := make(chan error, 1)
	go func() { first <- list.Fetch(ctx) }()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, list.ApplyFilter(ctx, "status", "open"))
	assert.NotErrorIs(t, <-first, api.ErrSessionExpired)
	assert.Len(t, list.State().Rows, 1)
	assert.Zero(t, creds.Clears())
	session, _ := creds.Load(ctx)
	assert.True(t, session.LoggedIn())
	assert.Equal(t, 1, dev.Stats().Refreshes)
}
