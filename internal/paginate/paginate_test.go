package paginate

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"franchise-engine/internal/domain"
)

func listings(n int) []domain.Listing {
	out := make([]domain.Listing, n)
	for i := range out {
		out[i] = domain.Listing{ID: domain.Text(strconv.Itoa(i)), Name: "L" + strconv.Itoa(i)}
	}
	return out
}

func TestPaginateLastPartialPage(t *testing.T) {
	results := listings(20)
	p := Paginate(results, 3, 8)

	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 20, p.Total)
	require.Len(t, p.Items, 4)
	assert.Equal(t, results[16:20], p.Items)
}

func TestPaginateOutOfRange(t *testing.T) {
	results := listings(5)
	for _, page := range []int{0, -1, 2, 100} {
		p := Paginate(results, page, 8)
		assert.Empty(t, p.Items, "page %d", page)
		assert.Equal(t, 1, p.TotalPages)
	}
}

func TestPaginateEmpty(t *testing.T) {
	p := Paginate(nil, 1, 8)
	assert.Equal(t, 0, p.TotalPages)
	assert.Empty(t, p.Items)

	p = Paginate(listings(3), 1, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.Empty(t, p.Items)
}

func TestPaginateDoesNotAlias(t *testing.T) {
	results := listings(3)
	p := Paginate(results, 1, 2)
	p.Items[0].Name = "changed"
	assert.Equal(t, "L0", results[0].Name)
}

func TestPagerRejectsOutOfRange(t *testing.T) {
	p := NewPager(8)
	require.True(t, p.Go(2, 20))
	assert.Equal(t, 2, p.Current())

	assert.False(t, p.Go(0, 20))
	assert.False(t, p.Go(4, 20)) // totalPages+1
	assert.Equal(t, 2, p.Current())

	p.Reset()
	assert.Equal(t, 1, p.Current())
	assert.False(t, p.Go(1, 0), "no pages means nothing to go to")
}

func TestWindow(t *testing.T) {
	tests := []struct {
		current, total int
		want           []int
	}{
		{1, 1, []int{1}},
		{1, 3, []int{1, 2, 3}},
		{1, 10, []int{1, 2, 3, 4, 5}},
		{5, 10, []int{3, 4, 5, 6, 7}},
		{10, 10, []int{6, 7, 8, 9, 10}},
		{9, 10, []int{6, 7, 8, 9, 10}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Window(tt.current, tt.total, 5), "Window(%d, %d)", tt.current, tt.total)
	}
	assert.Nil(t, Window(1, 0, 5))
}
