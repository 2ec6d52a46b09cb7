// ABOUTME: Pagination helpers for in-memory result sets and SOQL text
// ABOUTME: Slices results into pages and appends LIMIT/OFFSET clauses
package query

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/harperreed/sfmcp/models"
)

// Paginate returns one page of items. It never fails: non-positive sizes fall
// back to the default and the page number is clamped into the valid range.
func Paginate[T any](items []T, params models.PaginationParams) models.PaginatedResult[T] {
	p := params.Normalized()
	total := len(items)
	totalPages := (total + p.PageSize - 1) / p.PageSize

	page := min(max(p.PageNumber, 1), max(totalPages, 1))
	start := min((page-1)*p.PageSize, total)
	end := min(start+p.PageSize, total)

	results := make([]T, end-start)
	copy(results, items[start:end])

	return models.PaginatedResult[T]{
		TotalCount: total,
		PageSize:   p.PageSize,
		PageNumber: page,
		TotalPages: totalPages,
		Results:    results,
	}
}

// PageInfoFor describes where a page sits in a result set of total items.
func PageInfoFor(total int, params models.PaginationParams) models.PageInfo {
	p := params.Normalized()
	totalPages := (total + p.PageSize - 1) / p.PageSize
	page := min(max(p.PageNumber, 1), max(totalPages, 1))
	return models.PageInfo{
		CurrentPage:     page,
		TotalPages:      totalPages,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}

var (
	limitPattern  = regexp.MustCompile(`(?i)\bLIMIT\b`)
	offsetPattern = regexp.MustCompile(`(?i)\bOFFSET\b`)
)

// AddPagination appends LIMIT and OFFSET derived from params unless the query
// already carries them. A nil params leaves the query untouched.
func AddPagination(soql string, params *models.PaginationParams) string {
	if params == nil {
		return soql
	}
	p := params.Normalized()
	offset := (p.PageNumber - 1) * p.PageSize

	out := strings.TrimSpace(soql)
	if !limitPattern.MatchString(soql) {
		out += " LIMIT " + strconv.Itoa(p.PageSize)
	}
	if !offsetPattern.MatchString(soql) && offset > 0 {
		out += " OFFSET " + strconv.Itoa(offset)
	}
	return out
}
