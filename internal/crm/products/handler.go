package products

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	crmshared "github.com/odyssey-erp/odyssey-crm/internal/crm/shared"
	"github.com/odyssey-erp/odyssey-crm/internal/listview"
	"github.com/odyssey-erp/odyssey-crm/internal/platform/httpx"
)

// Columns are the data table columns, in display order.
var Columns = []listview.Column{
	{Key: "code", Sortable: true},
	{Key: "name", Sortable: true},
	{Key: "vendorId", Title: "Vendor"},
	{Key: "price", Sortable: true},
	{Key: "isActive", Title: "Active"},
}

// Handler serves the products API and data table.
type Handler struct {
	logger  *slog.Logger
	service *Service
	table   *crmshared.Table[Product]
}

// NewHandler builds a Handler.
func NewHandler(service *Service, pages crmshared.Pages) *Handler {
	logger := pages.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{logger: logger, service: service}
	h.table = crmshared.NewTable(pages, "products", "Products", "/products", Columns, ListSpec, service.List, h.cells)
	return h
}

func (h *Handler) cells(p Product) []string {
	vendor := ""
	if p.VendorID != nil {
		vendor = strconv.FormatInt(*p.VendorID, 10)
	}
	active := "No"
	if p.IsActive {
		active = "Yes"
	}
	price := message.NewPrinter(language.Indonesian).Sprintf("%.2f", p.Price)
	return []string{p.Code, p.Name, vendor, price, active}
}

// MountAPI registers the JSON routes under /products.
func (h *Handler) MountAPI(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			crmshared.ServeList(w, r, h.logger, ListSpec, h.service.List)
		})
		r.Post("/", h.create)
		r.Get("/{id}", h.show)
	})
}

// MountPages registers the data table.
func (h *Handler) MountPages(r chi.Router) {
	r.Method(http.MethodGet, "/products", h.table)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Warn("create product", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}
