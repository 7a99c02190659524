// internal/whatson/repository.go
//
// Homepage carousel reads.
//
// Context
// -------
// The frontend view pre-filters to active rows, which makes it the one
// relation where "no rows" is itself suspect: the carousel is never
// curated down to nothing on purpose, so an empty view escalates to the
// base table instead of being taken at face value.  An empty answer from
// the base table is final.
package whatson

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/meridianmall/arcade/internal/query"
)

const (
	viewName = "whats_on_frontend_view"

	itemCols = "id, content_type, title, image_url, link_url, sort_order, is_active"
)

// Repo serves carousel reads.
type Repo struct {
	db *sqlx.DB
}

// NewRepo wires a repository onto an open pool.
func NewRepo(db *sqlx.DB) *Repo { return &Repo{db: db} }

// Items returns the active carousel cards in display order.
func (r *Repo) Items(ctx context.Context) ([]Item, error) {
	res, err := query.Resolve(ctx, "whatson.items", []query.Strategy[[]Item]{
		{
			Name:        "view",
			Retry:       query.RetryOnce,
			Run:         r.fromView,
			EmptyIsMiss: func(items []Item) bool { return len(items) == 0 },
		},
		{Name: "table", Run: r.fromTable},
	})
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

// All returns every card including inactive ones, for CMS screens.
func (r *Repo) All(ctx context.Context) ([]Item, error) {
	res, err := query.Resolve(ctx, "whatson.all", []query.Strategy[[]Item]{
		{Name: "table", Retry: query.RetryOnce, Run: func(ctx context.Context) ([]Item, error) {
			var rows []itemRow
			q := "SELECT " + itemCols + " FROM whats_on_items ORDER BY sort_order, id"
			if err := r.db.SelectContext(ctx, &rows, q); err != nil {
				return nil, err
			}
			return toItems(rows), nil
		}},
	})
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

func (r *Repo) fromView(ctx context.Context) ([]Item, error) {
	var rows []itemRow
	q := "SELECT " + itemCols + " FROM " + viewName + " ORDER BY sort_order, id"
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return toItems(rows), nil
}

func (r *Repo) fromTable(ctx context.Context) ([]Item, error) {
	var rows []itemRow
	q := "SELECT " + itemCols + " FROM whats_on_items WHERE is_active = TRUE ORDER BY sort_order, id"
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return toItems(rows), nil
}
