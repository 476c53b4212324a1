// Package pagination slices in-memory result sets into 1-based pages.
package pagination

import (
	"github.com/pageza/cibaria/backend/internal/apperr"
)

// Paginate returns the page-th slice of at most size items.
//
// A page exists when page >= 1 and (page-1)*size < len(items). An empty
// collection therefore has no pages at all.
func Paginate[T any](page, size int, items []T) ([]T, error) {
	if size <= 0 {
		return nil, apperr.ErrInvalidPageSize
	}
	if page < 1 {
		return nil, apperr.Page(page)
	}
	start := (page - 1) * size
	if start >= len(items) {
		return nil, apperr.Page(page)
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], nil
}

// TotalPages returns ceil(n/size).
func TotalPages(size, n int) (int, error) {
	if size <= 0 {
		return 0, apperr.ErrInvalidPageSize
	}
	return (n + size - 1) / size, nil
}
