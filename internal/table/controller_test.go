package table

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type donor struct {
	ID       int64
	Name     string
	Priority string
}

func donors(n int) []donor {
	out := make([]donor, n)
	priorities := []string{"low", "mid", "high"}
	for i := range out {
		out[i] = donor{ID: int64(i + 1), Name: fmt.Sprintf("Donor %02d", i+1), Priority: priorities[i%3]}
	}
	return out
}

func ids(rows []Row[donor]) []int64 {
	out := make([]int64, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Value.ID)
	}
	return out
}

func TestPagination_TwentyThreeRows(t *testing.T) {
	c := NewController[donor](0)
	c.SetRows(donors(23))

	require.Equal(t, 3, c.PageCount())
	require.Equal(t, 2, c.SetPage(2))

	page := c.Page()
	require.Len(t, page, 3)
	require.Equal(t, 20, page[0].Index)
	require.Equal(t, 21, page[0].Number())
	require.Equal(t, []int64{21, 22, 23}, ids(page))
}

func TestPagination_LastPageSize(t *testing.T) {
	for _, n := range []int{1, 9, 10, 11, 20, 37} {
		c := NewController[donor](10)
		c.SetRows(donors(n))

		pages := (n + 9) / 10
		require.Equal(t, pages, c.PageCount(), "n=%d", n)

		c.SetPage(pages - 1)
		last := len(c.Page())
		require.Equal(t, n-10*(pages-1), last, "n=%d", n)
		require.GreaterOrEqual(t, last, 1)
		require.LessOrEqual(t, last, 10)
	}
}

func TestSetPage_Clamps(t *testing.T) {
	c := NewController[donor](10)
	c.SetRows(donors(15))

	require.Equal(t, 1, c.SetPage(99))
	require.Equal(t, 0, c.SetPage(-3))

	empty := NewController[donor](10)
	require.Equal(t, 1, empty.PageCount())
	require.Equal(t, 0, empty.SetPage(4))
	require.Empty(t, empty.Page())
}

func TestFilters_OrderIndependent(t *testing.T) {
	name := func(d donor) string { return d.Name }
	priority := func(d donor) string { return d.Priority }

	a := NewController[donor](10)
	a.SetRows(donors(30))
	a.SetFilter("name", Contains(name, "donor 1"))
	a.SetFilter("priority", Equals(priority, "MID"))

	b := NewController[donor](10)
	b.SetRows(donors(30))
	b.SetFilter("priority", Equals(priority, "mid"))
	b.SetFilter("name", Contains(name, "DONOR 1"))

	require.Equal(t, ids(a.Page()), ids(b.Page()))
	require.Equal(t, []int64{11, 14, 17}, ids(a.Page()))

	// Applying the same filter again changes nothing.
	a.SetFilter("priority", Equals(priority, "mid"))
	require.Equal(t, []int64{11, 14, 17}, ids(a.Page()))
}

func TestFilters_NonDestructive(t *testing.T) {
	c := NewController[donor](10)
	c.SetRows(donors(12))

	c.SetFilter("name", Contains(func(d donor) string { return d.Name }, "Donor 12"))
	require.Equal(t, 1, c.Len())
	require.Equal(t, 12, c.Total())
	require.Equal(t, 0, c.Page()[0].Index)

	c.ClearFilter("name")
	require.Equal(t, 12, c.Len())
}

func TestSetRows_KeepsFiltersAndResetsPage(t *testing.T) {
	c := NewController[donor](5)
	c.SetRows(donors(20))
	c.SetFilter("priority", Equals(func(d donor) string { return d.Priority }, "low"))
	c.SetPage(1)

	c.SetRows(donors(6))
	require.Equal(t, 0, c.CurrentPage())
	require.Equal(t, []int64{1, 4}, ids(c.Page()))
}

func TestContains_EmptyNeedleMatchesAll(t *testing.T) {
	c := NewController[donor](10)
	c.SetRows(donors(4))
	c.SetFilter("name", Contains(func(d donor) string { return d.Name }, "  "))
	require.Equal(t, 4, c.Len())
}
