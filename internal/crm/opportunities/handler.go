package opportunities

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	crmshared "github.com/odyssey-erp/odyssey-crm/internal/crm/shared"
	"github.com/odyssey-erp/odyssey-crm/internal/listview"
	"github.com/odyssey-erp/odyssey-crm/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-crm/internal/shared"
)

// Columns are the data table columns, in display order.
var Columns = []listview.Column{
	{Key: "title", Sortable: true},
	{Key: "stage", Sortable: true},
	{Key: "amount", Sortable: true},
	{Key: "vendorId", Title: "Vendor"},
	{Key: "assignedTo", Sortable: true},
	{Key: "createdAt", Title: "Created", Sortable: true},
}

// Handler serves the opportunities API and data table.
type Handler struct {
	logger  *slog.Logger
	service *Service
	table   *crmshared.Table[Opportunity]
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
		table:   crmshared.NewTable(pages, "opportunities", "Opportunities", "/opportunities", Columns, ListSpec, service.List, cells),
	}
}

func cells(o Opportunity) []string {
	vendor := ""
	if o.VendorID != nil {
		vendor = strconv.FormatInt(*o.VendorID, 10)
	}
	return []string{o.Title, string(o.Stage), formatAmount(o.Amount), vendor, o.AssignedTo, o.CreatedAt.Format(time.DateOnly)}
}

func formatAmount(v float64) string {
	return message.NewPrinter(language.Indonesian).Sprintf("%.2f", v)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	crmshared.ServeList(w, r, h.logger, ListSpec, h.service.List)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	opp, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get opportunity", err)
		return
	}
	httpx.JSON(w, http.StatusOK, opp)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateOpportunityRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	opp, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondError(w, "create opportunity", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, opp)
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	var req AssignRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	actor := "api"
	if sess != nil {
		actor = "session:" + sess.ID
	}
	opp, err := h.service.Assign(r.Context(), chi.URLParam(r, "id"), req, actor)
	if err != nil {
		h.respondError(w, "assign opportunity", err)
		return
	}
	if sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: opp.Title + " assigned to " + opp.AssignedTo + "."})
	}
	httpx.JSON(w, http.StatusOK, opp)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
