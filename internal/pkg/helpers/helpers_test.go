package helpers

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateOffsetLimit(t *testing.T) {
	tests := []struct {
		name       string
		page, size int
		wantOffset uint64
		wantLimit  int
	}{
		{"first page", 1, 10, 0, 10},
		{"third page", 3, 20, 40, 20},
		{"page below one", 0, 10, 0, 10},
		{"size too large", 2, 1000, DefaultListSize, DefaultListSize},
		{"size zero", 1, 0, 0, DefaultListSize},
		{"page beyond bigint offset", math.MaxInt, MaxPageSize, uint64(MaxPage-1) * MaxPageSize, MaxPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, limit := CalculateOffsetLimit(tt.page, tt.size)
			assert.Equal(t, tt.wantOffset, offset)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(21, 2, 10)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, int64(21), info.TotalItems)

	empty := NewPaginationInfo(0, 1, 10)
	assert.Equal(t, 1, empty.TotalPages)
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 90*time.Minute, ParseDuration("90m", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("later", time.Hour))
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2025-03-14")
	assert.True(t, ok)
	assert.Equal(t, "2025-03-14", FormatDate(d))

	for _, bad := range []string{"", "14/03/2025", "2025-3-14", "2025-02-30", "2025-03-14T00:00:00Z"} {
		_, ok := ParseDate(bad)
		assert.False(t, ok, bad)
	}
	assert.Equal(t, "", FormatDate(time.Time{}))
}
