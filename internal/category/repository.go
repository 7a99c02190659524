// internal/category/repository.go
//
// Read access to the blog_categories table.  Categories change a few times
// a year, so the active list is cached briefly and invalidated by the
// realtime bridge when a category row changes.
package category

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/meridianmall/arcade/internal/cache"
	"github.com/meridianmall/arcade/internal/query"
)

const cacheKey = "categories.active"

// Repo serves category reads.
type Repo struct {
	db    *sqlx.DB
	cache *cache.LRU
}

// NewRepo wires a repository onto an open pool.
func NewRepo(db *sqlx.DB) *Repo {
	return &Repo{db: db, cache: cache.New(8, 5*time.Minute)}
}

// All returns active categories in navigation order.
func (r *Repo) All(ctx context.Context) ([]Category, error) {
	if v, ok := r.cache.Get(cacheKey); ok {
		return v.([]Category), nil
	}

	var out []Category
	err := query.Retry(ctx, query.RetryOnce, func(ctx context.Context) error {
		const q = `
        SELECT id, name, slug, display_order, is_active
        FROM   blog_categories
        WHERE  is_active = TRUE
        ORDER  BY display_order, name`
		var rows []Category
		if err := r.db.SelectContext(ctx, &rows, q); err != nil {
			return err
		}
		out = rows
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	if out == nil {
		out = []Category{}
	}

	r.cache.Set(cacheKey, out)
	return out, nil
}

// Invalidate drops the cached list.  Called when a change notification for
// blog_categories arrives.
func (r *Repo) Invalidate() {
	r.cache.Delete(cacheKey)
}
