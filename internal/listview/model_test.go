package listview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildControls(t *testing.T) {
	cases := []struct {
		name                        string
		page, totalPages            int
		firstDisabled, nextDisabled bool
		label                       string
	}{
		{"no rows", 1, 0, true, true, "Page 1 of 1"},
		{"single page", 1, 1, true, true, "Page 1 of 1"},
		{"first of many", 1, 10, true, false, "Page 1 of 10"},
		{"middle", 5, 10, false, false, "Page 5 of 10"},
		{"last", 10, 10, false, true, "Page 10 of 10"},
		{"past the end", 12, 10, false, true, "Page 12 of 10"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := BuildControls(FilterState{Page: tc.page, PageSize: 10}, tc.totalPages*10, tc.totalPages)
			assert.Equal(t, tc.firstDisabled, c.FirstDisabled)
			assert.Equal(t, tc.firstDisabled, c.PrevDisabled)
			assert.Equal(t, tc.nextDisabled, c.NextDisabled)
			assert.Equal(t, tc.nextDisabled, c.LastDisabled)
			assert.Equal(t, tc.label, c.Label)
		})
	}
}

func TestBuildControlsPageSizeOptions(t *testing.T) {
	c := BuildControls(FilterState{Page: 1, PageSize: 30}, 0, 0)
	values := make([]int, 0, len(c.PageSizeOptions))
	var selected []int
	for _, opt := range c.PageSizeOptions {
		values = append(values, opt.Value)
		if opt.Selected {
			selected = append(selected, opt.Value)
		}
	}
	assert.Equal(t, []int{10, 20, 30, 50, 100}, values)
	assert.Equal(t, []int{30}, selected)
}

func TestLabelFor95Rows(t *testing.T) {
	c := BuildControls(FilterState{Page: 1, PageSize: 10}, 95, TotalPages(95, 10))
	assert.Equal(t, "Page 1 of 10", c.Label)
}

func TestBuildModelLoadingHidesRows(t *testing.T) {
	page := PageResponse[leadRow]{Data: []leadRow{{ID: "1"}}, TotalCount: 30, Page: 1, PageSize: 10, TotalPages: 3}
	m := BuildModel(leadColumns, FilterState{Page: 2, PageSize: 10}, StatusLoading, page, nil)
	assert.Nil(t, m.Rows)
	assert.Equal(t, LoadingText, m.Placeholder)
	assert.Equal(t, 3, m.ColSpan)
	assert.Equal(t, "Page 2 of 3", m.Controls.Label)
}

func TestHeadersDescIndicator(t *testing.T) {
	cells := Headers(leadColumns, FilterState{SortColumn: "company", SortDirection: SortDesc})
	assert.Equal(t, IndicatorNone, cells[0].Indicator)
	assert.Equal(t, IndicatorDesc, cells[1].Indicator)
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Created At", Humanize("created_at"))
	assert.Equal(t, "Vendor Id", Humanize("vendorId"))
	assert.Equal(t, "Name", Humanize("name"))
}
