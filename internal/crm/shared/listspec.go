// Package shared holds the server side of the list query contract used by
// every CRM resource: parsing list state from a request, turning it into SQL,
// and rendering it as a data table.
package shared

import (
	"fmt"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-crm/internal/listview"
	"github.com/odyssey-erp/odyssey-crm/internal/platform/httpx"
)

// MaxPageSize caps the page size a client can request.
const MaxPageSize = 100

// MaxPage caps the page number so the row offset always fits an int.
const MaxPage = math.MaxInt / MaxPageSize

// FilterColumn binds an extra filter key to a column and a value parser.
type FilterColumn struct {
	Column string
	Label  string
	// Options, when set, restricts values and feeds the filter select.
	Options []string
	Parse   func(string) (any, error)
}

// ListSpec describes how one resource answers list queries.
type ListSpec struct {
	Table         string
	Select        string
	SearchColumns []string
	DateColumn    string
	// SortColumns maps wire column keys to SQL expressions.
	SortColumns map[string]string
	// TieBreaker keeps paging stable when the sort column has duplicates.
	TieBreaker string
	Filters    map[string]FilterColumn
	Defaults   listview.Defaults
}

// ListQuery is a compiled list request.
type ListQuery struct {
	Count    string
	Page     string
	Args     []any
	PageArgs []any
}

// ParseListState reads list state from query parameters. Page and page size
// are capped, unknown sort columns fall back to the default sort and unknown extra filters
// are dropped. A known filter with an unparseable value is a validation error.
func ParseListState(q url.Values, spec ListSpec) (listview.FilterState, error) {
	state := listview.ParseQuery(q, spec.Defaults)
	if state.PageSize > MaxPageSize {
		state.PageSize = MaxPageSize
	}
	if state.Page > MaxPage {
		state.Page = MaxPage
	}
	if _, ok := spec.SortColumns[state.SortColumn]; state.SortColumn != "" && !ok {
		state.SortColumn = spec.Defaults.SortColumn
		state.SortDirection = spec.Defaults.SortDirection
		if state.SortColumn != "" && state.SortDirection == "" {
			state.SortDirection = listview.SortAsc
		}
	}
	for key, value := range state.ExtraFilters {
		f, ok := spec.Filters[key]
		if !ok {
			delete(state.ExtraFilters, key)
			continue
		}
		if _, err := f.value(value); err != nil {
			return listview.FilterState{}, fmt.Errorf("%w: %s: %v", httpx.ErrValidation, key, err)
		}
	}
	if len(state.ExtraFilters) == 0 {
		state.ExtraFilters = nil
	}
	return state, nil
}

// Build compiles state into count and page queries.
func (s ListSpec) Build(state listview.FilterState) (ListQuery, error) {
	var (
		conditions []string
		args       []any
	)
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if state.Search != "" && len(s.SearchColumns) > 0 {
		p := next("%" + escapeLike(state.Search) + "%")
		parts := make([]string, 0, len(s.SearchColumns))
		for _, col := range s.SearchColumns {
			parts = append(parts, col+" ILIKE "+p)
		}
		conditions = append(conditions, "("+strings.Join(parts, " OR ")+")")
	}
	if r := state.DateRange(); r != nil && s.DateColumn != "" {
		conditions = append(conditions, fmt.Sprintf("%s BETWEEN %s AND %s", s.DateColumn, next(r.From), next(r.To)))
	}

	keys := make([]string, 0, len(state.ExtraFilters))
	for k := range state.ExtraFilters {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, key := range keys {
		f, ok := s.Filters[key]
		if !ok {
			continue
		}
		v, err := f.value(state.ExtraFilters[key])
		if err != nil {
			return ListQuery{}, fmt.Errorf("%w: %s: %v", httpx.ErrValidation, key, err)
		}
		conditions = append(conditions, f.Column+" = "+next(v))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}
	q := ListQuery{
		Count: "SELECT COUNT(*) FROM " + s.Table + where,
		Args:  args,
	}

	pageArgs := append(slices.Clone(args), state.PageSize, state.Offset())
	q.Page = fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s LIMIT $%d OFFSET $%d",
		s.Select, s.Table, where, s.orderBy(state), len(args)+1, len(args)+2)
	q.PageArgs = pageArgs
	return q, nil
}

func (s ListSpec) orderBy(state listview.FilterState) string {
	col, ok := s.SortColumns[state.SortColumn]
	dir := "ASC"
	if !ok {
		col, ok = s.SortColumns[s.Defaults.SortColumn]
		if ok && s.Defaults.SortDirection == listview.SortDesc {
			dir = "DESC"
		}
	} else if state.SortDirection == listview.SortDesc {
		dir = "DESC"
	}
	tie := s.TieBreaker
	if tie == "" {
		tie = "id"
	}
	if !ok || col == tie {
		return tie + " " + dir
	}
	return col + " " + dir + ", " + tie + " " + dir
}

func (f FilterColumn) value(raw string) (any, error) {
	if len(f.Options) > 0 && !slices.Contains(f.Options, raw) {
		return nil, fmt.Errorf("must be one of %s", strings.Join(f.Options, ", "))
	}
	if f.Parse == nil {
		return raw, nil
	}
	return f.Parse(raw)
}

// escapeLike escapes LIKE wildcards so search text matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Text is a FilterColumn parser that accepts any value.
func Text(raw string) (any, error) {
	return raw, nil
}

// Bool parses true/false filter values.
func Bool(raw string) (any, error) {
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid boolean %q", raw)
	}
	return b, nil
}

// Int64 parses positive integer ids.
func Int64(raw string) (any, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("invalid id %q", raw)
	}
	return n, nil
}

// UUID parses uuid ids.
func UUID(raw string) (any, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid uuid %q", raw)
	}
	return id, nil
}
