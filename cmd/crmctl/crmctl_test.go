package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// leadsAPI serves a fixed set of leads and records the queries it saw.
type leadsAPI struct {
	mu      sync.Mutex
	queries []url.Values
	status  int
}

func (a *leadsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	a.queries = append(a.queries, r.URL.Query())
	status := a.status
	a.mu.Unlock()

	if status != 0 {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"title":"Internal Error","status":500,"detail":"database unavailable"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": []map[string]any{
			{"name": "Jane Doe", "company": "Acme", "status": "new", "assignedTo": "budi", "createdAt": "2024-03-02"},
			{"name": "Budi", "company": "Globex", "status": "qualified", "assignedTo": nil, "createdAt": "2024-03-03"},
		},
		"totalCount": 42,
		"page":       2,
		"pageSize":   20,
	})
}

func (a *leadsAPI) last() url.Values {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.queries[len(a.queries)-1]
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func newAPI(t *testing.T) (*leadsAPI, *httptest.Server) {
	t.Helper()
	api := &leadsAPI{}
	mux := http.NewServeMux()
	mux.Handle("/api/leads", api)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return api, srv
}

func TestListAppliesFlagsAndPersists(t *testing.T) {
	api, srv := newAPI(t)
	stateFile := filepath.Join(t.TempDir(), "state.json")

	out, _, err := run(t, "--api", srv.URL, "--state-file", stateFile,
		"list", "leads", "--page-size", "20", "--sort=-name", "--search", "acme", "--filter", "status=new", "--page", "2")
	require.NoError(t, err)

	q := api.last()
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "20", q.Get("pageSize"))
	assert.Equal(t, "name", q.Get("column"))
	assert.Equal(t, "desc", q.Get("direction"))
	assert.Equal(t, "acme", q.Get("search"))
	assert.Equal(t, "new", q.Get("status"))

	assert.Contains(t, out, "Leads")
	assert.Contains(t, out, `search "acme", status=new`)
	assert.Contains(t, out, "Name ▼")
	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, "Page 2 of 3 · 42 total · 20 per page")

	raw, err := os.ReadFile(stateFile)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"leads"`)

	_, _, err = run(t, "--api", srv.URL, "--state-file", stateFile, "list", "leads")
	require.NoError(t, err)
	again := api.last()
	assert.Equal(t, q, again, "a bare list repeats the persisted state")
}

func TestListClearResetsToDefaults(t *testing.T) {
	api, srv := newAPI(t)
	stateFile := filepath.Join(t.TempDir(), "state.json")

	_, _, err := run(t, "--api", srv.URL, "--state-file", stateFile, "list", "leads", "--search", "acme")
	require.NoError(t, err)
	_, _, err = run(t, "--api", srv.URL, "--state-file", stateFile, "list", "leads", "--clear")
	require.NoError(t, err)

	q := api.last()
	assert.Empty(t, q.Get("search"))
	assert.Equal(t, "createdAt", q.Get("column"))
	assert.Equal(t, "desc", q.Get("direction"))
	assert.Equal(t, "1", q.Get("page"))
}

func TestListDateRange(t *testing.T) {
	api, srv := newAPI(t)
	_, _, err := run(t, "--api", srv.URL, "--state-file", filepath.Join(t.TempDir(), "s.json"),
		"list", "leads", "--from", "2024-03-31", "--to", "2024-03-01")
	require.NoError(t, err)
	q := api.last()
	assert.Contains(t, q.Get("fromDate"), "2024-03-01T00:00:00.000")
	assert.Contains(t, q.Get("toDate"), "2024-03-31T23:59:59.999")

	_, _, err = run(t, "--api", srv.URL, "--state-file", filepath.Join(t.TempDir(), "s.json"), "list", "leads", "--from", "31/03/2024")
	assert.ErrorContains(t, err, "invalid date")
}

func TestListReportsServerErrors(t *testing.T) {
	api, srv := newAPI(t)
	api.status = http.StatusInternalServerError
	_, stderr, err := run(t, "--api", srv.URL, "--state-file", filepath.Join(t.TempDir(), "s.json"), "list", "leads")
	require.Error(t, err)
	assert.Contains(t, stderr, "database unavailable")
}

func TestListUnknownViewAndBadFilter(t *testing.T) {
	_, _, err := run(t, "--state-file", filepath.Join(t.TempDir(), "s.json"), "list", "invoices")
	assert.ErrorContains(t, err, `unknown view "invoices"`)

	_, srv := newAPI(t)
	_, _, err = run(t, "--api", srv.URL, "--state-file", filepath.Join(t.TempDir(), "s.json"), "list", "leads", "--filter", "status")
	assert.ErrorContains(t, err, "want key=value")
}

func TestViewsCommand(t *testing.T) {
	out, _, err := run(t, "views")
	require.NoError(t, err)
	assert.Equal(t, "leads\nopportunities\nproducts\nvendors\n", out)
}

func TestStatusCommand(t *testing.T) {
	_, srv := newAPI(t)
	stateFile := filepath.Join(t.TempDir(), "s.json")

	out, _, err := run(t, "--api", srv.URL, "--state-file", stateFile, "status")
	require.Error(t, err, "no /healthz route on the fake API")
	assert.Contains(t, out, "unreachable")
	assert.Contains(t, out, "state  "+stateFile)
	assert.Contains(t, out, "saved  none")

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			_, _ = w.Write([]byte(`{"status":"ok"}`))
			return
		}
		(&leadsAPI{}).ServeHTTP(w, r)
	}))
	t.Cleanup(healthy.Close)

	_, _, err = run(t, "--api", healthy.URL, "--state-file", stateFile, "list", "leads", "--search", "acme")
	require.NoError(t, err)
	out, _, err = run(t, "--api", healthy.URL, "--state-file", stateFile, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "api    "+healthy.URL+" ok")
	assert.Contains(t, out, "saved  leads")
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "", formatCell(nil))
	assert.Equal(t, "42", formatCell(float64(42)))
	assert.Equal(t, "1500.50", formatCell(1500.5))
	assert.Equal(t, "yes", formatCell(true))
}
