package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-crm/internal/listview"
	"github.com/odyssey-erp/odyssey-crm/internal/listview/storage"
	session "github.com/odyssey-erp/odyssey-crm/internal/shared"
	"github.com/odyssey-erp/odyssey-crm/internal/view"
)

type row struct {
	Name string
}

func newLeadTable(t *testing.T, list ListFunc[row], persister listview.Persister) *Table[row] {
	t.Helper()
	engine, err := view.NewEngine()
	require.NoError(t, err)
	return NewTable(Pages{
		Templates: engine,
		Persister: func(*http.Request) listview.Persister { return persister },
	}, "leads", "Leads", "/leads", []listview.Column{
		{Key: "name", Sortable: true},
		{Key: "assignedTo"},
	}, testSpec, list, func(r row) []string { return []string{r.Name, ""} })
}

func TestTableBuildsNavigationLinks(t *testing.T) {
	table := newLeadTable(t, func(ctx context.Context, state listview.FilterState) ([]row, int, error) {
		return []row{{Name: "Acme"}}, 95, nil
	}, nil)

	m := listview.BuildModel(table.Columns, testSpec.Defaults.State().SetPage(2), listview.StatusReady,
		listview.PageResponse[TableRow]{Data: []TableRow{{Cells: []string{"Acme", ""}}}, TotalCount: 95, Page: 2, PageSize: 10, TotalPages: 10}, nil)
	page := table.page(m)

	assert.Equal(t, "/leads?column=createdAt&direction=desc&page=1&pageSize=10", page.First)
	assert.Equal(t, "/leads?column=createdAt&direction=desc&page=3&pageSize=10", page.Next)
	assert.Equal(t, "/leads?column=createdAt&direction=desc&page=10&pageSize=10", page.Last)
	require.Len(t, page.Headers, 2)
	assert.Equal(t, "/leads?column=name&direction=asc&page=1&pageSize=10", page.Headers[0].Href)
	assert.Empty(t, page.Headers[1].Href)
	require.Len(t, page.Filters, 3)
	assert.Equal(t, "assignedTo", page.Filters[0].Key)
	assert.Equal(t, []string{"new", "lost"}, page.Filters[1].Options)
}

func TestTableRejectsInvalidFilter(t *testing.T) {
	table := newLeadTable(t, func(ctx context.Context, state listview.FilterState) ([]row, int, error) {
		t.Fatal("list should not run")
		return nil, 0, nil
	}, nil)
	rec := httptest.NewRecorder()
	table.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads?status=won", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTableAppliesSingleDateBound(t *testing.T) {
	var got listview.FilterState
	table := newLeadTable(t, func(ctx context.Context, state listview.FilterState) ([]row, int, error) {
		got = state
		return nil, 0, nil
	}, nil)
	rec := httptest.NewRecorder()
	table.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads?search=&fromDate=2024-01-10&toDate=&pageSize=10", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	r := got.DateRange()
	require.NotNil(t, r)
	assert.Equal(t, "2024-01-10T00:00:00.000Z", r.From.Format(listview.DateLayout))
	assert.Equal(t, "2024-01-10T23:59:59.999Z", r.To.Format(listview.DateLayout))
	assert.Contains(t, rec.Body.String(), `value="2024-01-10"`)

	q, err := testSpec.Build(got)
	require.NoError(t, err)
	assert.Contains(t, q.Count, "created_at BETWEEN $1 AND $2")
}

func TestTableEmptyResult(t *testing.T) {
	table := newLeadTable(t, func(ctx context.Context, state listview.FilterState) ([]row, int, error) {
		return nil, 0, nil
	}, storage.NewMemory())
	rec := httptest.NewRecorder()
	table.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), listview.NoResultsText)
}

func TestTableFiltersToggleKeepsPersistedState(t *testing.T) {
	var got listview.FilterState
	table := newLeadTable(t, func(ctx context.Context, state listview.FilterState) ([]row, int, error) {
		got = state
		return []row{{Name: "Acme"}}, 1, nil
	}, storage.NewMemory())

	rec := httptest.NewRecorder()
	table.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads?search=acme&pageSize=20", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "filters expanded")
	assert.Contains(t, rec.Body.String(), "More filters")

	rec = httptest.NewRecorder()
	table.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads?filters=open", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `class="filters expanded"`)
	assert.Contains(t, body, `<input type="hidden" name="filters" value="open">`)
	assert.Contains(t, body, "Fewer filters")
	assert.Equal(t, "acme", got.Search, "the toggle does not replace the saved state")
	assert.Equal(t, 20, got.PageSize)
	assert.Nil(t, got.ExtraFilters)
}

func TestTableRecordsLastViewAndShowsFlash(t *testing.T) {
	table := newLeadTable(t, func(ctx context.Context, state listview.FilterState) ([]row, int, error) {
		return nil, 0, nil
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/leads", nil)
	sess, err := session.NewSessionManager(nil, "crm_session", time.Hour, false).Load(req.Context(), req)
	require.NoError(t, err)
	sess.AddFlash(session.FlashMessage{Kind: "success", Message: "Jane Doe assigned to sari."})
	req = req.WithContext(session.ContextWithSession(req.Context(), sess))

	rec := httptest.NewRecorder()
	table.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Jane Doe assigned to sari.")
	assert.Equal(t, "/leads", sess.Get(session.LastViewKey))
	assert.Nil(t, sess.PopFlash())
}

func TestSessionPersisterScopesBySession(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	resolve := SessionPersister(storage.NewRedis(client, "crm:listview", time.Hour))

	assert.Nil(t, resolve(httptest.NewRequest(http.MethodGet, "/leads", nil)))

	sessions := session.NewSessionManager(client, "crm_session", time.Hour, false)
	sess, err := sessions.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/leads", nil)
	req = req.WithContext(session.ContextWithSession(req.Context(), sess))

	p := resolve(req)
	require.NotNil(t, p)
	require.NoError(t, p.Save(context.Background(), "leads", []byte(`{"page":2}`)))
	assert.True(t, mr.Exists("crm:listview:"+sess.ID+":leads"))
}
