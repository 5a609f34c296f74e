package shared

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/odyssey-erp/odyssey-crm/internal/listview"
	session "github.com/odyssey-erp/odyssey-crm/internal/shared"
	"github.com/odyssey-erp/odyssey-crm/internal/view"
)

// DataTableTemplate renders a TablePage.
const DataTableTemplate = "pages/datatable.html"

// ParamFilters set to "open" expands the filter panel. It only affects
// rendering and never reaches the list state.
const (
	ParamFilters = "filters"
	filtersOpen  = "open"
)

// ListFunc returns one page of items and the total count.
type ListFunc[T any] func(ctx context.Context, state listview.FilterState) ([]T, int, error)

// TableRow is one rendered row.
type TableRow struct {
	Cells []string
}

// Table renders a resource as an HTML data table. A request without list
// parameters shows the state persisted for the caller; any list parameter
// replaces and persists it.
type Table[T any] struct {
	ID        string
	Title     string
	Path      string
	Columns   []listview.Column
	Spec      ListSpec
	List      ListFunc[T]
	Cells     func(T) []string
	Templates *view.Engine
	// Persister resolves the state store for a request, typically scoped to
	// the caller's session. A nil result disables persistence.
	Persister func(*http.Request) listview.Persister
	Observer  listview.FetchObserver
	Logger    *slog.Logger
}

func (t *Table[T]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var persister listview.Persister
	if t.Persister != nil {
		persister = t.Persister(r)
	}
	v := listview.NewView(ctx, listview.ViewConfig[TableRow]{
		ID:        t.ID,
		Columns:   t.Columns,
		Defaults:  t.Spec.Defaults,
		Fetcher:   listview.FetchFunc[TableRow](t.fetch),
		Persister: persister,
		Observer:  t.Observer,
		Logger:    logger,
	})
	defer v.Close()

	q := r.URL.Query()
	if q.Get(ParamFilters) == filtersOpen {
		v.ToggleFilters()
	}
	q.Del(ParamFilters)
	if len(q) > 0 {
		state, err := ParseListState(q, t.Spec)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		v.Apply(ctx, state)
	} else {
		v.Refresh(ctx)
	}
	v.Wait()

	model := v.Model()
	status := http.StatusOK
	if model.Status == listview.StatusError {
		logger.Error("load data table", slog.String("view", t.ID), slog.Any("error", model.Err))
		status = http.StatusBadGateway
	}
	data := view.TemplateData{
		Title:       t.Title,
		CurrentPath: r.URL.Path,
		Data:        t.page(model),
	}
	if sess := session.SessionFromContext(ctx); sess != nil {
		data.Flash = sess.PopFlash()
		if sess.Get(session.LastViewKey) != t.Path {
			sess.Set(session.LastViewKey, t.Path)
		}
	}
	w.WriteHeader(status)
	if err := t.Templates.Render(w, DataTableTemplate, data); err != nil {
		logger.Error("render template", slog.Any("error", err), slog.String("template", DataTableTemplate))
	}
}

func (t *Table[T]) fetch(ctx context.Context, q url.Values) (listview.PageResponse[TableRow], error) {
	state := listview.ParseQuery(q, t.Spec.Defaults)
	items, total, err := t.List(ctx, state)
	if err != nil {
		return listview.PageResponse[TableRow]{}, err
	}
	rows := make([]TableRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, TableRow{Cells: t.Cells(item)})
	}
	return listview.NewPageResponse(rows, total, state), nil
}

// HeaderLink is a column header with the link a click follows.
type HeaderLink struct {
	listview.HeaderCell
	Href string
}

// PageSizeLink is one page-size choice.
type PageSizeLink struct {
	listview.PageSizeOption
	Href string
}

// FilterField is one extra filter input.
type FilterField struct {
	Key     string
	Label   string
	Value   string
	Options []string
}

// TablePage is the template data for DataTableTemplate.
type TablePage struct {
	Path      string
	Model     listview.Model[TableRow]
	Headers   []HeaderLink
	First     string
	Prev      string
	Next      string
	Last      string
	PageSizes []PageSizeLink
	Filters   []FilterField
	Search    string
	From      string
	To        string
	Hidden    map[string]string
	ClearHref string
	// FiltersHref shows or hides the extra filters.
	FiltersHref string
}

func (t *Table[T]) page(m listview.Model[TableRow]) TablePage {
	s := m.State
	href := func(s listview.FilterState) string {
		if m.FiltersExpanded {
			return t.href(s) + "&" + ParamFilters + "=" + filtersOpen
		}
		return t.href(s)
	}
	p := TablePage{
		Path:      t.Path,
		Model:     m,
		Search:    s.Search,
		ClearHref: href(t.Spec.Defaults.State()),
		Hidden: map[string]string{
			listview.ParamPageSize: strconv.Itoa(s.PageSize),
		},
	}
	if m.FiltersExpanded {
		p.Hidden[ParamFilters] = filtersOpen
		p.FiltersHref = t.href(s)
	} else {
		p.FiltersHref = t.href(s) + "&" + ParamFilters + "=" + filtersOpen
	}
	if s.SortColumn != "" {
		p.Hidden[listview.ParamColumn] = s.SortColumn
		p.Hidden[listview.ParamDirection] = string(s.SortDirection)
	}
	if r := s.DateRange(); r != nil {
		p.From = r.From.Format("2006-01-02")
		p.To = r.To.Format("2006-01-02")
	}

	for _, h := range m.Columns {
		link := HeaderLink{HeaderCell: h}
		if h.Sortable {
			link.Href = href(s.ToggleSort(h.Key))
		}
		p.Headers = append(p.Headers, link)
	}

	c := m.Controls
	last := max(c.TotalPages, 1)
	p.First = href(s.SetPage(1))
	p.Prev = href(s.SetPage(c.Page - 1))
	p.Next = href(s.SetPage(c.Page + 1))
	p.Last = href(s.SetPage(last))
	for _, opt := range c.PageSizeOptions {
		p.PageSizes = append(p.PageSizes, PageSizeLink{PageSizeOption: opt, Href: href(s.SetPageSize(opt.Value))})
	}

	keys := make([]string, 0, len(t.Spec.Filters))
	for k := range t.Spec.Filters {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		f := t.Spec.Filters[k]
		label := f.Label
		if label == "" {
			label = listview.Humanize(k)
		}
		p.Filters = append(p.Filters, FilterField{Key: k, Label: label, Value: s.ExtraFilters[k], Options: f.Options})
	}
	return p
}

func (t *Table[T]) href(s listview.FilterState) string {
	return t.Path + "?" + listview.BuildQuery(s).Encode()
}
