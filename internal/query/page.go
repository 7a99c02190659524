// internal/query/page.go
//
// One-based pagination with a uniform list envelope.  Every list endpoint
// returns items, total, and hasMore so the front end can render "load more"
// without a second round trip.
package query

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Page size limits.  The storefront grid asks for 12; anything above
// MaxPerPage is clamped rather than rejected.
const (
	DefaultPerPage = 12
	MaxPerPage     = 100
)

// Page is a normalized one-based page request.
type Page struct {
	Number  int
	PerPage int
}

// NewPage clamps raw query parameters into a valid page.  Zero and negative
// values fall back to the defaults.
func NewPage(number, perPage int) Page {
	if number < 1 {
		number = 1
	}
	switch {
	case perPage < 1:
		perPage = DefaultPerPage
	case perPage > MaxPerPage:
		perPage = MaxPerPage
	}
	return Page{Number: number, PerPage: perPage}
}

// Limit is the row count for the page query.
func (p Page) Limit() int { return p.PerPage }

// Offset is the row offset for the page query.
func (p Page) Offset() int { return (p.Number - 1) * p.PerPage }

// HasMore reports whether rows exist beyond this page given the total
// matching-row count.
func (p Page) HasMore(total int) bool { return total > p.Number*p.PerPage }

// List is the envelope every list fetch returns.
type List[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

// NewList builds the envelope.  Items is never nil so the JSON encoding is
// always an array.
func NewList[T any](items []T, total int, p Page) List[T] {
	if items == nil {
		items = []T{}
	}
	return List[T]{Items: items, Total: total, HasMore: p.HasMore(total)}
}

// CountThenPage runs the COUNT query and, when anything matched, fetches
// one page of rows into dest.  A zero total skips the page query entirely.
// A failure in either query fails the whole strategy; a partial answer
// would let total and items disagree.
func CountThenPage[R any](ctx context.Context, db *sqlx.DB, countSQL, pageSQL string, countArgs, pageArgs []any, dest *[]R) (int, error) {
	var total int
	if err := db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	if err := db.SelectContext(ctx, dest, pageSQL, pageArgs...); err != nil {
		return 0, err
	}
	return total, nil
}
