package listview

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status is the render state of a list view.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusEmpty   Status = "empty"
	StatusError   Status = "error"
)

// SortIndicator is shown next to a sortable column header.
type SortIndicator string

const (
	IndicatorNone SortIndicator = "none"
	IndicatorAsc  SortIndicator = "asc"
	IndicatorDesc SortIndicator = "desc"
)

// Placeholder texts for rows that span every column.
const (
	LoadingText   = "Loading..."
	NoResultsText = "No results."
)

// Column defines one table column. Title defaults to a humanized Key.
type Column struct {
	Key      string
	Title    string
	Sortable bool
}

// HeaderCell is a column header ready to render.
type HeaderCell struct {
	Key       string
	Title     string
	Sortable  bool
	Indicator SortIndicator
}

// PageSizeOption is one entry of the page-size selector.
type PageSizeOption struct {
	Value    int
	Selected bool
}

// Controls holds the pagination bar.
type Controls struct {
	Page            int
	PageSize        int
	TotalCount      int
	TotalPages      int
	FirstDisabled   bool
	PrevDisabled    bool
	NextDisabled    bool
	LastDisabled    bool
	Label           string
	PageSizeOptions []PageSizeOption
}

// Model is everything a renderer needs to draw a list view.
type Model[T any] struct {
	Status          Status
	Columns         []HeaderCell
	Rows            []T
	ColSpan         int
	Placeholder     string
	Err             error
	Controls        Controls
	State           FilterState
	FiltersExpanded bool
}

// BuildModel assembles the render model for state and the last accepted
// response. While loading, rows from the previous response are not shown.
func BuildModel[T any](columns []Column, state FilterState, status Status, page PageResponse[T], err error) Model[T] {
	m := Model[T]{
		Status:   status,
		Columns:  Headers(columns, state),
		ColSpan:  max(1, len(columns)),
		Err:      err,
		Controls: BuildControls(state, page.TotalCount, page.TotalPages),
		State:    state,
	}
	switch status {
	case StatusLoading:
		m.Placeholder = LoadingText
	case StatusEmpty:
		m.Placeholder = NoResultsText
	case StatusError:
		if err != nil {
			m.Placeholder = err.Error()
		}
	default:
		m.Rows = page.Data
	}
	return m
}

// BuildControls computes the pagination bar for the current page.
func BuildControls(state FilterState, totalCount, totalPages int) Controls {
	page := max(DefaultPage, state.Page)
	c := Controls{
		Page:       page,
		PageSize:   state.PageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
		Label:      "Page " + strconv.Itoa(page) + " of " + strconv.Itoa(max(totalPages, 1)),
	}
	c.FirstDisabled = page <= 1
	c.PrevDisabled = page <= 1
	c.NextDisabled = totalPages <= 1 || page >= totalPages
	c.LastDisabled = c.NextDisabled
	c.PageSizeOptions = make([]PageSizeOption, 0, len(PageSizeOptions))
	for _, size := range PageSizeOptions {
		c.PageSizeOptions = append(c.PageSizeOptions, PageSizeOption{Value: size, Selected: size == state.PageSize})
	}
	return c
}

// Headers builds the header row with the sort indicator for each column.
func Headers(columns []Column, state FilterState) []HeaderCell {
	cells := make([]HeaderCell, 0, len(columns))
	for _, col := range columns {
		cell := HeaderCell{Key: col.Key, Title: col.Title, Sortable: col.Sortable}
		if cell.Title == "" {
			cell.Title = Humanize(col.Key)
		}
		if col.Sortable {
			cell.Indicator = IndicatorNone
			if state.SortColumn == col.Key {
				if state.SortDirection == SortDesc {
					cell.Indicator = IndicatorDesc
				} else {
					cell.Indicator = IndicatorAsc
				}
			}
		}
		cells = append(cells, cell)
	}
	return cells
}

// Humanize turns a camelCase or snake_case key into a title, "assignedTo" -> "Assigned To".
func Humanize(key string) string {
	var b strings.Builder
	for i, r := range key {
		switch {
		case r == '_' || r == '-':
			b.WriteRune(' ')
		case i > 0 && unicode.IsUpper(r):
			b.WriteRune(' ')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return cases.Title(language.English).String(strings.Join(strings.Fields(b.String()), " "))
}
