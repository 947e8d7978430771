package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLimit  = 20
	MaxLimit      = 100
	DefaultOffset = 0
)

// Params holds limit/offset read from the query string
type Params struct {
	Limit  int
	Offset int
}

// Meta describes a page of results in list responses
type Meta struct {
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	Page       int   `json:"page"`
	HasMore    bool  `json:"has_more"`
}

// ParseParams reads limit and offset, falling back to defaults for missing
// or invalid values and capping limit at MaxLimit.
func ParseParams(c *gin.Context) Params {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	offset, err := strconv.Atoi(c.Query("offset"))
	if err != nil || offset < 0 {
		offset = DefaultOffset
	}

	return Params{Limit: limit, Offset: offset}
}

// BuildMeta computes page metadata for a result set of total rows
func BuildMeta(limit, offset int, total int64) *Meta {
	totalPages := 0
	if limit > 0 && total > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}

	return &Meta{
		Limit:      limit,
		Offset:     offset,
		Total:      total,
		TotalPages: totalPages,
		Page:       GetCurrentPage(offset, limit),
		HasMore:    HasMore(offset, limit, total),
	}
}

// HasMore reports whether rows remain after this page
func HasMore(offset, limit int, total int64) bool {
	return int64(offset+limit) < total
}

// GetCurrentPage returns the 1-based page number for offset
func GetCurrentPage(offset, limit int) int {
	if limit <= 0 {
		return 1
	}
	return offset/limit + 1
}
