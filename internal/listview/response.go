package listview

import (
	"bytes"
	"encoding/json"
	"strings"
)

// PageResponse is the paginated envelope returned by list endpoints.
type PageResponse[T any] struct {
	Data       []T `json:"data"`
	TotalCount int `json:"totalCount"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// NewPageResponse wraps one page of rows for the state that produced it.
func NewPageResponse[T any](data []T, totalCount int, s FilterState) PageResponse[T] {
	if data == nil {
		data = []T{}
	}
	return PageResponse[T]{
		Data:       data,
		TotalCount: totalCount,
		Page:       s.Page,
		PageSize:   s.PageSize,
		TotalPages: TotalPages(totalCount, s.PageSize),
	}
}

// TotalPages is ceil(totalCount / pageSize), 0 when there are no rows.
func TotalPages(totalCount, pageSize int) int {
	if totalCount <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalCount + pageSize - 1) / pageSize
}

// ParseResponse decodes a collaborator response. Both the envelope and a bare
// JSON array are accepted; a bare array is a single page holding every row.
// TotalPages is always derived, never trusted from the payload.
func ParseResponse[T any](raw []byte) (PageResponse[T], error) {
	body := bytes.TrimSpace(raw)
	if len(body) == 0 {
		return PageResponse[T]{}, malformed("body", "empty")
	}
	if body[0] == '[' {
		var rows []T
		if err := json.Unmarshal(body, &rows); err != nil {
			return PageResponse[T]{}, malformed("data", err.Error())
		}
		if rows == nil {
			rows = []T{}
		}
		return PageResponse[T]{
			Data:       rows,
			TotalCount: len(rows),
			Page:       DefaultPage,
			PageSize:   len(rows),
			TotalPages: 1,
		}, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return PageResponse[T]{}, malformed("body", "expected object or array")
	}

	dataRaw, ok := envelope["data"]
	if !ok {
		return PageResponse[T]{}, malformed("data", "missing")
	}
	dataRaw = bytes.TrimSpace(dataRaw)
	if len(dataRaw) == 0 || dataRaw[0] != '[' {
		return PageResponse[T]{}, malformed("data", "not an array")
	}
	var rows []T
	if err := json.Unmarshal(dataRaw, &rows); err != nil {
		return PageResponse[T]{}, malformed("data", err.Error())
	}
	if rows == nil {
		rows = []T{}
	}

	totalCount, err := intField(envelope, "totalCount")
	if err != nil {
		return PageResponse[T]{}, err
	}
	page, err := intField(envelope, "page")
	if err != nil {
		return PageResponse[T]{}, err
	}
	pageSize, err := intField(envelope, "pageSize")
	if err != nil {
		return PageResponse[T]{}, err
	}
	if pageSize == 0 && totalCount > 0 {
		return PageResponse[T]{}, malformed("pageSize", "must be positive when totalCount is positive")
	}

	return PageResponse[T]{
		Data:       rows,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: TotalPages(totalCount, pageSize),
	}, nil
}

func intField(envelope map[string]json.RawMessage, name string) (int, error) {
	raw, ok := envelope[name]
	if !ok {
		return 0, malformed(name, "missing")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, malformed(name, err.Error())
	}
	num, ok := v.(json.Number)
	if !ok || strings.ContainsAny(num.String(), ".eE") {
		return 0, malformed(name, "not an integer")
	}
	n, err := num.Int64()
	if err != nil {
		return 0, malformed(name, "not an integer")
	}
	if n < 0 {
		return 0, malformed(name, "negative")
	}
	return int(n), nil
}
