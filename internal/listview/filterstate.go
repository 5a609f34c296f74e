// Package listview implements the filtering pipeline shared by every list page:
// the FilterState value, the Store that owns and persists it, the query binding
// to the REST collaborators, the Loader that keeps only the latest fetch, and the
// render model consumed by templates and the terminal client.
package listview

import (
	"maps"
	"math"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// SortDirection orders a sorted column.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

const (
	// DefaultPage is the first page; pages are 1-based.
	DefaultPage = 1
	// DefaultPageSize is used when no other size is configured.
	DefaultPageSize = 10
)

// PageSizeOptions is the fixed set offered by the page-size selector.
var PageSizeOptions = []int{10, 20, 30, 50, 100}

// DateLayout is the ISO-8601 form used on the wire, millisecond precision.
const DateLayout = "2006-01-02T15:04:05.000Z07:00"

// DateRange is an inclusive calendar-day range.
type DateRange struct {
	From time.Time
	To   time.Time
}

// FilterState describes what a list view is currently showing. Values are
// treated as immutable: every mutator returns a fresh copy.
type FilterState struct {
	Page          int               `json:"page"`
	PageSize      int               `json:"pageSize"`
	SortColumn    string            `json:"sortColumn,omitempty"`
	SortDirection SortDirection     `json:"sortDirection,omitempty"`
	Search        string            `json:"search,omitempty"`
	FromDate      *time.Time        `json:"fromDate,omitempty"`
	ToDate        *time.Time        `json:"toDate,omitempty"`
	ExtraFilters  map[string]string `json:"extraFilters,omitempty"`
}

// Defaults configures the state a view starts with and returns to on ClearAll.
type Defaults struct {
	PageSize      int
	SortColumn    string
	SortDirection SortDirection
}

// State builds the default FilterState.
func (d Defaults) State() FilterState {
	s := FilterState{Page: DefaultPage, PageSize: d.PageSize}
	if s.PageSize < 1 {
		s.PageSize = DefaultPageSize
	}
	if d.SortColumn != "" {
		s.SortColumn = d.SortColumn
		s.SortDirection = normalizeDirection(d.SortDirection)
	}
	return s
}

// SetPage moves to page n, clamped to 1. Nothing else changes.
func (s FilterState) SetPage(n int) FilterState {
	next := s.clone()
	next.Page = max(DefaultPage, n)
	return next
}

// SetPageSize changes the page size and returns to the first page.
func (s FilterState) SetPageSize(n int) FilterState {
	next := s.clone()
	next.PageSize = max(1, n)
	next.Page = DefaultPage
	return next
}

// SetSort sets the sort column and direction. An empty column clears sorting.
func (s FilterState) SetSort(column string, dir SortDirection) FilterState {
	next := s.clone()
	column = strings.TrimSpace(column)
	if column == "" {
		next.SortColumn = ""
		next.SortDirection = ""
	} else {
		next.SortColumn = column
		next.SortDirection = normalizeDirection(dir)
	}
	next.Page = DefaultPage
	return next
}

// ToggleSort applies a column-header click: a new column sorts ascending, the
// active column flips between asc and desc.
func (s FilterState) ToggleSort(column string) FilterState {
	if s.SortColumn == column && s.SortDirection == SortAsc {
		return s.SetSort(column, SortDesc)
	}
	return s.SetSort(column, SortAsc)
}

// SetSearch sets the free-text search. Blank input clears it.
func (s FilterState) SetSearch(text string) FilterState {
	next := s.clone()
	next.Search = normalizeSearch(text)
	next.Page = DefaultPage
	return next
}

// SetDateRange sets or, when r is nil, clears the date range. Bounds snap to
// the start and end of their calendar day; a reversed range is swapped and a
// range with one zero bound covers the other bound's day.
func (s FilterState) SetDateRange(r *DateRange) FilterState {
	next := s.clone()
	next.Page = DefaultPage
	if r == nil || (r.From.IsZero() && r.To.IsZero()) {
		next.FromDate, next.ToDate = nil, nil
		return next
	}
	from, to := r.From, r.To
	switch {
	case from.IsZero():
		from = to
	case to.IsZero():
		to = from
	}
	from, to = startOfDay(from), endOfDay(to)
	if from.After(to) {
		from, to = startOfDay(r.To), endOfDay(r.From)
	}
	next.FromDate, next.ToDate = &from, &to
	return next
}

// SetExtraFilter upserts a view-specific filter. An empty value removes the key.
// Keys that collide with the standard query parameters are ignored.
func (s FilterState) SetExtraFilter(key, value string) FilterState {
	key = strings.TrimSpace(key)
	if key == "" || IsReservedParam(key) {
		return s
	}
	next := s.clone()
	value = strings.TrimSpace(value)
	if value == "" {
		delete(next.ExtraFilters, key)
		if len(next.ExtraFilters) == 0 {
			next.ExtraFilters = nil
		}
	} else {
		if next.ExtraFilters == nil {
			next.ExtraFilters = make(map[string]string)
		}
		next.ExtraFilters[key] = value
	}
	next.Page = DefaultPage
	return next
}

// DateRange returns the active range, or nil.
func (s FilterState) DateRange() *DateRange {
	if s.FromDate == nil || s.ToDate == nil {
		return nil
	}
	return &DateRange{From: *s.FromDate, To: *s.ToDate}
}

// Offset is the zero-based row offset of the current page. It saturates at
// math.MaxInt instead of wrapping.
func (s FilterState) Offset() int {
	page, size := max(DefaultPage, s.Page), max(1, s.PageSize)
	if page-1 > math.MaxInt/size {
		return math.MaxInt
	}
	return (page - 1) * size
}

// Normalize repairs a state that did not come from the mutators, such as one
// decoded from storage or a query string.
func (s FilterState) Normalize() FilterState {
	next := s.clone()
	next.Page = max(DefaultPage, next.Page)
	if next.PageSize < 1 {
		next.PageSize = DefaultPageSize
	}
	next.SortColumn = strings.TrimSpace(next.SortColumn)
	if next.SortColumn == "" {
		next.SortDirection = ""
	} else {
		next.SortDirection = normalizeDirection(next.SortDirection)
	}
	next.Search = normalizeSearch(next.Search)
	if next.FromDate == nil || next.ToDate == nil {
		next.FromDate, next.ToDate = nil, nil
	} else {
		page := next.Page
		next = next.SetDateRange(&DateRange{From: *next.FromDate, To: *next.ToDate})
		next.Page = page
	}
	for k, v := range next.ExtraFilters {
		if IsReservedParam(k) || strings.TrimSpace(v) == "" {
			delete(next.ExtraFilters, k)
		}
	}
	if len(next.ExtraFilters) == 0 {
		next.ExtraFilters = nil
	}
	return next
}

func (s FilterState) clone() FilterState {
	next := s
	if s.ExtraFilters != nil {
		next.ExtraFilters = maps.Clone(s.ExtraFilters)
	}
	if s.FromDate != nil {
		from := *s.FromDate
		next.FromDate = &from
	}
	if s.ToDate != nil {
		to := *s.ToDate
		next.ToDate = &to
	}
	return next
}

func normalizeDirection(dir SortDirection) SortDirection {
	if SortDirection(strings.ToLower(string(dir))) == SortDesc {
		return SortDesc
	}
	return SortAsc
}

func normalizeSearch(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}
