package vendors

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	crmshared "github.com/odyssey-erp/odyssey-crm/internal/crm/shared"
	"github.com/odyssey-erp/odyssey-crm/internal/listview"
	"github.com/odyssey-erp/odyssey-crm/internal/platform/httpx"
)

// Columns are the data table columns, in display order.
var Columns = []listview.Column{
	{Key: "id", Title: "ID", Sortable: true},
	{Key: "name", Sortable: true},
	{Key: "email", Sortable: true},
	{Key: "phone"},
	{Key: "isActive", Title: "Active", Sortable: true},
	{Key: "createdAt", Title: "Created", Sortable: true},
}

// Handler serves the vendors API and data table.
type Handler struct {
	logger  *slog.Logger
	service *Service
	table   *crmshared.Table[Vendor]
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
		table:   crmshared.NewTable(pages, "vendors", "Vendors", "/vendors", Columns, ListSpec, service.List, cells),
	}
}

func cells(v Vendor) []string {
	active := "No"
	if v.IsActive {
		active = "Yes"
	}
	return []string{strconv.FormatInt(v.ID, 10), v.Name, v.Email, v.Phone, active, v.CreatedAt.Format(time.DateOnly)}
}

// MountAPI registers the JSON routes under /vendors.
func (h *Handler) MountAPI(r chi.Router) {
	r.Route("/vendors", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			crmshared.ServeList(w, r, h.logger, ListSpec, h.service.List)
		})
		r.Post("/", h.create)
		r.Get("/{id}", h.show)
	})
}

// MountPages registers the data table.
func (h *Handler) MountPages(r chi.Router) {
	r.Method(http.MethodGet, "/vendors", h.table)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateVendorRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	v, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Warn("create vendor", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, v)
}
