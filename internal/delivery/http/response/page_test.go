package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	tests := []struct {
		name       string
		page, size int
		want       []int
		totalPages int
	}{
		{name: "first page", page: 1, size: 3, want: []int{1, 2, 3}, totalPages: 3},
		{name: "last partial page", page: 3, size: 3, want: []int{7}, totalPages: 3},
		{name: "past the end", page: 9, size: 3, want: []int{}, totalPages: 3},
		{name: "page clamped", page: 0, size: 5, want: []int{1, 2, 3, 4, 5}, totalPages: 2},
		{name: "default size", page: 1, size: 0, want: items, totalPages: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate(items, tt.page, tt.size)
			assert.Equal(t, tt.want, got.Items)
			assert.Equal(t, 7, got.Pagination.Total)
			assert.Equal(t, tt.totalPages, got.Pagination.TotalPages)
		})
	}
}

func TestPaginate_Empty(t *testing.T) {
	got := Paginate([]string(nil), 1, 10)
	assert.Empty(t, got.Items)
	assert.NotNil(t, got.Items)
	assert.Zero(t, got.Pagination.TotalPages)
}
