package opportunities

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	crmshared "github.com/odyssey-erp/odyssey-crm/internal/crm/shared"
	"github.com/odyssey-erp/odyssey-crm/internal/listview"
	"github.com/odyssey-erp/odyssey-crm/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-crm/internal/view"
	"github.com/odyssey-erp/odyssey-crm/jobs"
)

type memoryStore struct {
	items     map[uuid.UUID]Opportunity
	lastState listview.FilterState
}

func (s *memoryStore) List(ctx context.Context, state listview.FilterState) ([]Opportunity, int, error) {
	s.lastState = state
	out := make([]Opportunity, 0, len(s.items))
	for _, o := range s.items {
		out = append(out, o)
	}
	return out, len(out), nil
}

func (s *memoryStore) Get(ctx context.Context, id uuid.UUID) (Opportunity, error) {
	o, ok := s.items[id]
	if !ok {
		return Opportunity{}, httpx.ErrNotFound
	}
	return o, nil
}

func (s *memoryStore) Create(ctx context.Context, o Opportunity) (Opportunity, error) {
	s.items[o.ID] = o
	return o, nil
}

func (s *memoryStore) Assign(ctx context.Context, id uuid.UUID, assignee, actor string) (Opportunity, string, error) {
	o, ok := s.items[id]
	if !ok {
		return Opportunity{}, "", httpx.ErrNotFound
	}
	prev := o.AssignedTo
	o.AssignedTo = assignee
	s.items[id] = o
	return o, prev, nil
}

type recordingNotifier struct {
	payloads []jobs.AssignmentPayload
}

func (n *recordingNotifier) NotifyAssignment(ctx context.Context, p jobs.AssignmentPayload) error {
	n.payloads = append(n.payloads, p)
	return nil
}

var vendorID int64 = 7

var renewal = Opportunity{
	ID:         uuid.MustParse("5d7a4c2e-9b1f-4e6a-8c3d-2f1e0a9b8c7d"),
	Title:      "Annual renewal",
	Stage:      StageProposal,
	Amount:     1500000.5,
	VendorID:   &vendorID,
	AssignedTo: "dewi",
	CreatedAt:  time.Date(2024, 4, 9, 0, 0, 0, 0, time.UTC),
}

func newStore(items ...Opportunity) *memoryStore {
	s := &memoryStore{items: make(map[uuid.UUID]Opportunity)}
	for _, o := range items {
		s.items[o.ID] = o
	}
	return s
}

func TestServiceCreateLinksLead(t *testing.T) {
	svc := NewService(newStore(), nil, nil)
	leadID := uuid.NewString()
	opp, err := svc.Create(context.Background(), CreateOpportunityRequest{Title: "Pilot", LeadID: leadID, Amount: 10})
	require.NoError(t, err)
	assert.Equal(t, StageProspecting, opp.Stage)
	require.NotNil(t, opp.LeadID)
	assert.Equal(t, leadID, opp.LeadID.String())
}

func TestServiceCreateRejectsBadInput(t *testing.T) {
	svc := NewService(newStore(), nil, nil)
	_, err := svc.Create(context.Background(), CreateOpportunityRequest{Title: "Pilot", LeadID: "nope", Amount: -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LeadID")
	assert.Contains(t, err.Error(), "Amount")
}

func TestServiceAssignQueuesNotification(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewService(newStore(renewal), notifier, nil)
	opp, err := svc.Assign(context.Background(), renewal.ID.String(), AssignRequest{Assignee: " rina "}, "api")
	require.NoError(t, err)
	assert.Equal(t, "rina", opp.AssignedTo)
	require.Len(t, notifier.payloads, 1)
	assert.Equal(t, "opportunity", notifier.payloads[0].Entity)
	assert.Equal(t, "dewi", notifier.payloads[0].Previous)
	assert.Equal(t, "Annual renewal", notifier.payloads[0].Title)
}

func TestListSpecVendorFilter(t *testing.T) {
	q, err := ListSpec.Build(ListSpec.Defaults.State().SetExtraFilter("vendorId", "7").SetSort("amount", listview.SortAsc))
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM opportunities WHERE vendor_id = $1", q.Count)
	assert.Equal(t, []any{int64(7)}, q.Args)
	assert.Contains(t, q.Page, "ORDER BY amount ASC, id ASC")
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1.500.000,50", formatAmount(1500000.5))
}

func newRouter(t *testing.T, store *memoryStore, notifier Notifier) http.Handler {
	t.Helper()
	engine, err := view.NewEngine()
	require.NoError(t, err)
	h := NewHandler(NewService(store, notifier, nil), crmshared.Pages{Templates: engine})
	r := chi.NewRouter()
	r.Route("/api", h.MountAPI)
	h.MountPages(r)
	return r
}

func TestHandlerListAndTable(t *testing.T) {
	store := newStore(renewal)
	router := newRouter(t, store, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/opportunities?stage=proposal&vendorId=7", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	page, err := listview.ParseResponse[Opportunity](rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, map[string]string{"stage": "proposal", "vendorId": "7"}, store.lastState.ExtraFilters)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/opportunities?vendorId=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/opportunities?column=amount&direction=desc", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Annual renewal")
	assert.Contains(t, body, "1.500.000,50")
	assert.Contains(t, body, "sort-desc")
}

func TestHandlerAssignUnknown(t *testing.T) {
	router := newRouter(t, newStore(), &recordingNotifier{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/opportunities/"+uuid.NewString()+"/assign", strings.NewReader(`{"assignee":"rina"}`))
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, http.StatusNotFound, problem.Status)
}
