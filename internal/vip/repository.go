// internal/vip/repository.go
//
// Membership-page reads.
//
// Context
// -------
// Tiers are static reference data edited a few times a year, so one cached
// load serves the whole page.  The read-optimized view aggregates each
// tier's benefits into a jsonb array; when the view is unavailable the
// same shape is assembled from the base tables in two queries.
package vip

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/meridianmall/arcade/internal/cache"
	"github.com/meridianmall/arcade/internal/query"
)

const (
	viewName = "vip_tiers_with_benefits"

	tierCols = "id, name, tier_level, card_color, minimum_spend_amount, minimum_receipt_amount"

	cacheKey = "vip.tiers"
)

// Repo serves VIP tier reads.
type Repo struct {
	db    *sqlx.DB
	cache *cache.LRU
}

// NewRepo wires a repository onto an open pool.
func NewRepo(db *sqlx.DB) *Repo {
	return &Repo{db: db, cache: cache.New(2, 10*time.Minute)}
}

// Tiers returns every tier in ascending level order, benefits attached.
func (r *Repo) Tiers(ctx context.Context) ([]Tier, error) {
	if v, ok := r.cache.Get(cacheKey); ok {
		return v.([]Tier), nil
	}

	res, err := query.Resolve(ctx, "vip.tiers", []query.Strategy[[]Tier]{
		{Name: "view", Retry: query.RetryOnce, Run: r.fromView},
		{Name: "tables", Run: r.fromTables},
	})
	if err != nil {
		return nil, err
	}

	r.cache.Set(cacheKey, res.Value)
	return res.Value, nil
}

// ByLevel returns the tier at the given level, or (nil, nil) when no tier
// holds it.
func (r *Repo) ByLevel(ctx context.Context, level int) (*Tier, error) {
	tiers, err := r.Tiers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tiers {
		if tiers[i].Level == level {
			t := tiers[i]
			return &t, nil
		}
	}
	return nil, nil
}

// Invalidate drops the cached tier list.  Called when a change
// notification for a vip_* table arrives.
func (r *Repo) Invalidate() {
	r.cache.Delete(cacheKey)
}

func (r *Repo) fromView(ctx context.Context) ([]Tier, error) {
	var rows []tierRow
	q := "SELECT " + tierCols + ", benefits FROM " + viewName + " ORDER BY tier_level"
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}

	out := make([]Tier, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toTier(parseBenefits(row.Benefits)))
	}
	return out, nil
}

func (r *Repo) fromTables(ctx context.Context) ([]Tier, error) {
	var rows []tierRow
	if err := r.db.SelectContext(ctx, &rows,
		"SELECT "+tierCols+" FROM vip_tiers ORDER BY tier_level"); err != nil {
		return nil, err
	}

	var links []linkRow
	if err := r.db.SelectContext(ctx, &links,
		"SELECT tb.tier_id, b.id, b.title, b.description, b.icon, tb.benefit_note, tb.display_order"+
			" FROM vip_tier_benefits tb JOIN vip_benefits b ON b.id = tb.benefit_id"+
			" ORDER BY tb.tier_id, tb.display_order"); err != nil {
		return nil, err
	}

	byTier := make(map[int64][]Benefit, len(rows))
	for _, l := range links {
		byTier[l.TierID] = append(byTier[l.TierID], l.toBenefit())
	}

	out := make([]Tier, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toTier(byTier[row.ID]))
	}
	return out, nil
}
