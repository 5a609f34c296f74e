package listview

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type leadRow struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestParseResponseEnvelope(t *testing.T) {
	raw := []byte(`{"data":[{"id":"1","name":"Acme"},{"id":"2","name":"Globex"}],"totalCount":95,"page":2,"pageSize":10,"totalPages":3}`)

	got, err := ParseResponse[leadRow](raw)
	require.NoError(t, err)
	assert.Len(t, got.Data, 2)
	assert.Equal(t, "Globex", got.Data[1].Name)
	assert.Equal(t, 95, got.TotalCount)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 10, got.PageSize)
	assert.Equal(t, 10, got.TotalPages, "totalPages is derived, not copied")
}

func TestParseResponseBareArray(t *testing.T) {
	got, err := ParseResponse[leadRow]([]byte(` [{"id":"1","name":"Acme"}] `))
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalCount)
	assert.Equal(t, 1, got.TotalPages)
	assert.Equal(t, 1, got.Page)

	empty, err := ParseResponse[leadRow]([]byte(`[]`))
	require.NoError(t, err)
	assert.NotNil(t, empty.Data)
	assert.Equal(t, 0, empty.TotalCount)
	assert.Equal(t, 1, empty.TotalPages)
}

func TestParseResponseEmptyEnvelope(t *testing.T) {
	got, err := ParseResponse[leadRow]([]byte(`{"data":[],"totalCount":0,"page":1,"pageSize":10}`))
	require.NoError(t, err)
	assert.Equal(t, 0, got.TotalPages)
	assert.NotNil(t, got.Data)
}

func TestParseResponseMalformed(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		field string
	}{
		{"empty body", ``, "body"},
		{"scalar body", `"nope"`, "body"},
		{"missing data", `{"totalCount":1,"page":1,"pageSize":10}`, "data"},
		{"null data", `{"data":null,"totalCount":0,"page":1,"pageSize":10}`, "data"},
		{"object data", `{"data":{},"totalCount":0,"page":1,"pageSize":10}`, "data"},
		{"missing totalCount", `{"data":[],"page":1,"pageSize":10}`, "totalCount"},
		{"string totalCount", `{"data":[],"totalCount":"3","page":1,"pageSize":10}`, "totalCount"},
		{"negative page", `{"data":[],"totalCount":0,"page":-1,"pageSize":10}`, "page"},
		{"fractional pageSize", `{"data":[],"totalCount":0,"page":1,"pageSize":2.5}`, "pageSize"},
		{"zero pageSize", `{"data":[],"totalCount":4,"page":1,"pageSize":0}`, "pageSize"},
		{"bad row", `{"data":[{"id":1}],"totalCount":1,"page":1,"pageSize":10}`, "data"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseResponse[leadRow]([]byte(tc.raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedResponse))
			var mre *MalformedResponseError
			require.True(t, errors.As(err, &mre))
			assert.Equal(t, tc.field, mre.Field)
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 10, TotalPages(95, 10))
	assert.Equal(t, 10, TotalPages(100, 10))
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(1, 100))
}

func TestNewPageResponseEncodesEmptyData(t *testing.T) {
	resp := NewPageResponse[leadRow](nil, 0, Defaults{}.State())
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[],"totalCount":0,"page":1,"pageSize":10,"totalPages":0}`, string(raw))

	back, err := ParseResponse[leadRow](raw)
	require.NoError(t, err)
	assert.Equal(t, resp, back)
}
