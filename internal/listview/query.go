package listview

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Query parameter names shared by the client and every list endpoint.
const (
	ParamPage      = "page"
	ParamPageSize  = "pageSize"
	ParamColumn    = "column"
	ParamDirection = "direction"
	ParamSearch    = "search"
	ParamFromDate  = "fromDate"
	ParamToDate    = "toDate"
)

var reservedParams = map[string]struct{}{
	ParamPage:      {},
	ParamPageSize:  {},
	ParamColumn:    {},
	ParamDirection: {},
	ParamSearch:    {},
	ParamFromDate:  {},
	ParamToDate:    {},
}

// IsReservedParam reports whether key is one of the standard parameters and
// therefore cannot be used as an extra filter.
func IsReservedParam(key string) bool {
	_, ok := reservedParams[key]
	return ok
}

// BuildQuery serializes s into query parameters. The output depends only on s.
func BuildQuery(s FilterState) url.Values {
	q := url.Values{}
	q.Set(ParamPage, strconv.Itoa(s.Page))
	q.Set(ParamPageSize, strconv.Itoa(s.PageSize))
	if s.SortColumn != "" {
		q.Set(ParamColumn, s.SortColumn)
		q.Set(ParamDirection, string(normalizeDirection(s.SortDirection)))
	}
	if s.Search != "" {
		q.Set(ParamSearch, s.Search)
	}
	if s.FromDate != nil && s.ToDate != nil {
		q.Set(ParamFromDate, s.FromDate.Format(DateLayout))
		q.Set(ParamToDate, s.ToDate.Format(DateLayout))
	}
	for k, v := range s.ExtraFilters {
		if IsReservedParam(k) {
			continue
		}
		q.Set(k, v)
	}
	return q
}

// ParseQuery is the inverse of BuildQuery. Missing or invalid values fall back
// to d; every other non-empty parameter becomes an extra filter.
func ParseQuery(q url.Values, d Defaults) FilterState {
	s := d.State()
	if n, err := strconv.Atoi(q.Get(ParamPage)); err == nil {
		s.Page = n
	}
	if n, err := strconv.Atoi(q.Get(ParamPageSize)); err == nil && n > 0 {
		s.PageSize = n
	}
	if col := strings.TrimSpace(q.Get(ParamColumn)); col != "" {
		s.SortColumn = col
		s.SortDirection = SortDirection(q.Get(ParamDirection))
	}
	s.Search = q.Get(ParamSearch)
	// A single bound selects that one day, the same as SetDateRange.
	from, fromOK := parseDate(q.Get(ParamFromDate))
	to, toOK := parseDate(q.Get(ParamToDate))
	if fromOK || toOK {
		page := s.Page
		s = s.SetDateRange(&DateRange{From: from, To: to})
		s.Page = page
	}
	for k, vals := range q {
		if IsReservedParam(k) || len(vals) == 0 || strings.TrimSpace(vals[0]) == "" {
			continue
		}
		if s.ExtraFilters == nil {
			s.ExtraFilters = make(map[string]string)
		}
		s.ExtraFilters[k] = strings.TrimSpace(vals[0])
	}
	return s.Normalize()
}

var dateLayouts = []string{DateLayout, time.RFC3339Nano, "2006-01-02"}

func parseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
