package helpers

import (
	"math"

	"github.com/yigit/coursehub/internal/app/models/dto"
)

// Page sizes of list endpoints; pages are 1-based.
const (
	DefaultListSize = 50
	MaxPageSize     = 100
	DefaultPage     = 1
)

// MaxPage keeps (page-1)*MaxPageSize within a Postgres bigint OFFSET.
const MaxPage int64 = math.MaxInt64 / MaxPageSize

func pageSize(size int) int {
	if size < 1 || size > MaxPageSize {
		return DefaultListSize
	}
	return size
}

// CalculateOffsetLimit turns a page number and a requested size into OFFSET and LIMIT.
// Sizes outside 1..MaxPageSize fall back to DefaultListSize.
func CalculateOffsetLimit(page, size int) (offset uint64, limit int) {
	limit = pageSize(size)
	if page < DefaultPage {
		page = DefaultPage
	}
	if int64(page) > MaxPage {
		return uint64(MaxPage-1) * uint64(limit), limit
	}
	return uint64(page-1) * uint64(limit), limit
}

// NewPaginationInfo describes one page of a list of totalItems rows.
// An empty list still reports a single page.
func NewPaginationInfo(totalItems int64, page, size int) dto.PaginationInfo {
	size = pageSize(size)
	if page < DefaultPage {
		page = DefaultPage
	}
	totalPages := int((totalItems + int64(size) - 1) / int64(size))
	if totalPages == 0 {
		totalPages = 1
	}
	return dto.PaginationInfo{
		CurrentPage: page,
		TotalPages:  totalPages,
		PageSize:    size,
		TotalItems:  totalItems,
	}
}
