package leads

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	crmshared "github.com/odyssey-erp/odyssey-crm/internal/crm/shared"
	"github.com/odyssey-erp/odyssey-crm/internal/listview"
	"github.com/odyssey-erp/odyssey-crm/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-crm/internal/shared"
)

// Columns are the data table columns, in display order.
var Columns = []listview.Column{
	{Key: "name", Sortable: true},
	{Key: "company", Sortable: true},
	{Key: "email", Sortable: true},
	{Key: "status", Sortable: true},
	{Key: "source", Sortable: true},
	{Key: "assignedTo", Sortable: true},
	{Key: "createdAt", Title: "Created", Sortable: true},
}

// Handler serves the leads API and data table.
type Handler struct {
	logger  *slog.Logger
	service *Service
	table   *crmshared.Table[Lead]
}

// NewHandler builds a Handler.
func NewHandler(service *Service, pages crmshared.Pages) *Handler {
	logger := pages.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:  logger,
		service: service,
		table:   crmshared.NewTable(pages, "leads", "Leads", "/leads", Columns, ListSpec, service.List, cells),
	}
}

func cells(l Lead) []string {
	return []string{l.Name, l.Company, l.Email, string(l.Status), l.Source, l.AssignedTo, l.CreatedAt.Format(time.DateOnly)}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	crmshared.ServeList(w, r, h.logger, ListSpec, h.service.List)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	lead, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get lead", err)
		return
	}
	httpx.JSON(w, http.StatusOK, lead)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	lead, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondError(w, "create lead", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, lead)
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	var req AssignRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	lead, err := h.service.Assign(r.Context(), chi.URLParam(r, "id"), req, actor(r))
	if err != nil {
		h.respondError(w, "assign lead", err)
		return
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: lead.Name + " assigned to " + lead.AssignedTo + "."})
	}
	httpx.JSON(w, http.StatusOK, lead)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}

func actor(r *http.Request) string {
	if id := shared.SessionID(r.Context()); id != "" {
		return "session:" + id
	}
	return "api"
}
