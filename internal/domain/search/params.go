// Package search holds the domain search request shape shared by the
// query builder and the domain services.
package search

import (
	"fmt"
	"strings"
)

// Params is one logical catalog search request. Canonicalized before it
// reaches the query builder or a cache key.
type Params struct {
	Query      string // free text; empty = match all
	Page       int    // 1-based
	Size       int    // page size, >= 1
	CategoryID string // exact-match filter, empty = no filter
	Sort       string // field name, "-" prefix = descending; empty = relevance
}

// Validate rejects out-of-range pagination. Boundary collaborators are
// expected to reject these before the core, but services re-check.
func (p Params) Validate() error {
	if p.Page < 1 {
		return fmt.Errorf("page must be >= 1, got %d", p.Page)
	}
	if p.Size < 1 {
		return fmt.Errorf("page size must be >= 1, got %d", p.Size)
	}
	return nil
}

// Offset is the zero-based result offset for the requested page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Size
}

// SortField returns the sort field name and direction parsed from Sort.
// An empty field means relevance order.
func (p Params) SortField() (field string, desc bool) {
	if p.Sort == "" {
		return "", false
	}
	if strings.HasPrefix(p.Sort, "-") {
		return strings.TrimPrefix(p.Sort, "-"), true
	}
	return p.Sort, false
}
