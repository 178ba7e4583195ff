package feeds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginate(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	tests := []struct {
		name       string
		nextOffset *int
		expected   []int
		limit      int
		offset     int
		hasMore    bool
	}{
		{name: "first page", limit: 3, offset: 0, expected: []int{0, 1, 2}, hasMore: true, nextOffset: intPtr(3)},
		{name: "middle page", limit: 3, offset: 6, expected: []int{6, 7, 8}, hasMore: true, nextOffset: intPtr(9)},
		{name: "last partial page", limit: 3, offset: 9, expected: []int{9}, hasMore: false},
		{name: "exact end", limit: 5, offset: 5, expected: []int{5, 6, 7, 8, 9}, hasMore: false},
		{name: "offset past end", limit: 5, offset: 20, expected: []int{}, hasMore: false},
		{name: "limit larger than list", limit: 100, offset: 0, expected: items, hasMore: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, info := Paginate(items, tt.limit, tt.offset)

			assert.Equal(t, tt.expected, page)
			assert.LessOrEqual(t, len(page), tt.limit)
			assert.Equal(t, len(items), info.Total)
			assert.Equal(t, tt.limit, info.Limit)
			assert.Equal(t, tt.offset, info.Offset)
			assert.Equal(t, tt.hasMore, info.HasMore)
			assert.Equal(t, tt.offset+tt.limit < info.Total, info.HasMore)
			if tt.nextOffset == nil {
				assert.Nil(t, info.NextOffset)
			} else {
				require.NotNil(t, info.NextOffset)
				assert.Equal(t, *tt.nextOffset, *info.NextOffset)
			}
		})
	}
}

func TestPaginate_Empty(t *testing.T) {
	page, info := Paginate([]string{}, 20, 0)

	assert.Empty(t, page)
	assert.Equal(t, 0, info.Total)
	assert.False(t, info.HasMore)
	assert.Nil(t, info.NextOffset)
}

func intPtr(i int) *int {
	return &i
}
