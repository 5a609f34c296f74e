package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/odyssey-erp/odyssey-crm/internal/listview"
)

var (
	titleColor  = color.New(color.Bold)
	headerColor = color.New(color.FgCyan, color.Bold)
	mutedColor  = color.New(color.Faint)
)

func render(w io.Writer, name string, m listview.Model[Row]) {
	titleColor.Fprintln(w, listview.Humanize(name))
	if summary := describe(m.State); summary != "" {
		mutedColor.Fprintln(w, summary)
	}

	headers := make([]string, len(m.Columns))
	for i, h := range m.Columns {
		headers[i] = h.Title + arrow(h)
	}
	rows := make([][]string, 0, len(m.Rows))
	for _, r := range m.Rows {
		cells := make([]string, len(m.Columns))
		for i, h := range m.Columns {
			cells[i] = formatCell(r[h.Key])
		}
		rows = append(rows, cells)
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range rows {
		for i, c := range r {
			widths[i] = max(widths[i], lipgloss.Width(c))
		}
	}

	for i, h := range headers {
		headerColor.Fprint(w, pad(h, widths[i]))
		if i < len(headers)-1 {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)

	if m.Placeholder != "" {
		mutedColor.Fprintln(w, m.Placeholder)
	}
	for _, r := range rows {
		cells := make([]string, len(r))
		for i, c := range r {
			cells[i] = pad(c, widths[i])
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
	}

	c := m.Controls
	fmt.Fprintf(w, "%s · %d total · %d per page\n", c.Label, c.TotalCount, c.PageSize)
}

func pad(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}

func arrow(h listview.HeaderCell) string {
	switch h.Indicator {
	case listview.IndicatorAsc:
		return " ▲"
	case listview.IndicatorDesc:
		return " ▼"
	default:
		return ""
	}
}

func formatCell(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', 2, 64)
	case bool:
		if v {
			return "yes"
		}
		return "no"
	default:
		return fmt.Sprint(v)
	}
}

// describe summarizes the active filters in one line.
func describe(s listview.FilterState) string {
	var parts []string
	if s.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", s.Search))
	}
	if r := s.DateRange(); r != nil {
		parts = append(parts, "from "+r.From.Format("2006-01-02")+" to "+r.To.Format("2006-01-02"))
	}
	for _, k := range sortedKeys(s.ExtraFilters) {
		parts = append(parts, k+"="+s.ExtraFilters[k])
	}
	return strings.Join(parts, ", ")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
