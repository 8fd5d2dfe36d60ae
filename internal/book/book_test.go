package book

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func booksWithIDs(ids ...int64) []Book {
	out := make([]Book, 0, len(ids))
	for _, id := range ids {
		out = append(out, Book{
			ID:     id,
			Title:  fmt.Sprintf("Title %d", id),
			Author: fmt.Sprintf("Author %d", id),
			Rating: int(id % 6),
		})
	}
	return out
}

func idRange(from, to int64) []int64 {
	var ids []int64
	for id := from; id <= to; id++ {
		ids = append(ids, id)
	}
	return ids
}

func idsOf(books []Book) []int64 {
	ids := make([]int64, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}
	return ids
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name    string
		page    int
		total   int64
		wantIDs []int64
	}{
		{name: "first page of many", page: 1, total: 20, wantIDs: idRange(1, 8)},
		{name: "second page", page: 2, total: 20, wantIDs: idRange(9, 16)},
		{name: "partial last page", page: 3, total: 20, wantIDs: idRange(17, 20)},
		{name: "page past the end", page: 4, total: 20, wantIDs: []int64{}},
		{name: "exact boundary", page: 2, total: 16, wantIDs: idRange(9, 16)},
		{name: "start equals length", page: 3, total: 16, wantIDs: []int64{}},
		{name: "short collection", page: 1, total: 3, wantIDs: idRange(1, 3)},
		{name: "empty collection", page: 1, total: 0, wantIDs: []int64{}},
		{name: "page zero", page: 0, total: 20, wantIDs: []int64{}},
		{name: "negative page", page: -1, total: 20, wantIDs: []int64{}},
		{name: "huge page", page: math.MaxInt, total: 20, wantIDs: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window := Paginate(tt.page, booksWithIDs(idRange(1, tt.total)...))

			assert.NotNil(t, window)
			assert.Equal(t, tt.wantIDs, idsOf(window))
		})
	}
}

func TestPaginate_WindowSizeProperty(t *testing.T) {
	for n := 0; n <= 30; n++ {
		books := booksWithIDs(idRange(1, int64(n))...)
		for p := 1; p <= 5; p++ {
			want := n - (p-1)*PageSize
			if want < 0 {
				want = 0
			}
			if want > PageSize {
				want = PageSize
			}
			assert.Len(t, Paginate(p, books), want, "n=%d page=%d", n, p)
		}
	}
}

func TestPaginate_DoesNotAliasInput(t *testing.T) {
	books := booksWithIDs(1, 2, 3)

	window := Paginate(1, books)
	window[0].Rating = 99

	assert.NotEqual(t, 99, books[0].Rating)
}

func TestOrder_String(t *testing.T) {
	assert.Equal(t, "asc", Ascending.String())
	assert.Equal(t, "desc", Descending.String())
}
