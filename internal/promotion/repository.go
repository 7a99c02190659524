// internal/promotion/repository.go
//
// Deals-page reads.
//
// Context
// -------
// Promotion queries ride the doubling retry policy rather than the single
// fixed retry the other views use: campaign launches hammer this table and
// the first retry regularly lands inside the same brownout.  Path order is
// the usual view first, manual join second.
package promotion

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/meridianmall/arcade/internal/query"
)

const (
	viewName = "promotions_with_tenant_view"

	viewCols = "id, tenant_id, title, description, image_url, start_date, end_date, status, " +
		"tenant_name, tenant_logo_url"

	joinCols = "p.id, p.tenant_id, p.title, p.description, p.image_url, p.start_date, p.end_date, p.status, " +
		"t.name AS tenant_name, t.logo_url AS tenant_logo_url"

	joinFrom = " FROM promotions p LEFT JOIN tenants t ON t.id = p.tenant_id"
)

// Repo serves promotion reads.
type Repo struct {
	db *sqlx.DB
}

// NewRepo wires a repository onto an open pool.
func NewRepo(db *sqlx.DB) *Repo { return &Repo{db: db} }

// List returns one page of promotions, newest campaign first.
func (r *Repo) List(ctx context.Context, params ListParams) (query.List[Promotion], error) {
	page := query.NewPage(params.Page, params.PerPage)

	res, err := query.Resolve(ctx, "promotions.list", []query.Strategy[query.List[Promotion]]{
		{Name: "view", Retry: query.RetryDoubling, Run: func(ctx context.Context) (query.List[Promotion], error) {
			return r.listView(ctx, params, page)
		}},
		{Name: "join", Run: func(ctx context.Context) (query.List[Promotion], error) {
			return r.listJoin(ctx, params, page)
		}},
	})
	if err != nil {
		return query.List[Promotion]{Items: []Promotion{}}, err
	}
	return res.Value, nil
}

// ByID returns one promotion, or (nil, nil) when the id is unknown.
func (r *Repo) ByID(ctx context.Context, id int64, admin bool) (*Promotion, error) {
	res, err := query.Resolve(ctx, "promotions.one", []query.Strategy[*Promotion]{
		{Name: "view", Retry: query.RetryDoubling, Run: func(ctx context.Context) (*Promotion, error) {
			return r.one(ctx, "SELECT "+viewCols+" FROM "+viewName, "", id, admin)
		}},
		{Name: "join", Run: func(ctx context.Context) (*Promotion, error) {
			return r.one(ctx, "SELECT "+joinCols+joinFrom, "p.", id, admin)
		}},
	})
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

// Featured returns running campaigns for the homepage, newest first.
func (r *Repo) Featured(ctx context.Context, limit int) ([]Promotion, error) {
	return r.bounded(ctx, "promotions.featured", ListParams{}, limit)
}

// Search returns a bounded match list across campaign titles and store
// names.
func (r *Repo) Search(ctx context.Context, term string, limit int) ([]Promotion, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []Promotion{}, nil
	}
	return r.bounded(ctx, "promotions.search", ListParams{Search: term}, limit)
}

//
// Retrieval paths
//

func (r *Repo) listView(ctx context.Context, params ListParams, page query.Page) (query.List[Promotion], error) {
	var c query.Cond
	applyFilter(&c, params, false)
	where := c.Where()
	countArgs := c.Args()

	pageSQL := "SELECT " + viewCols + " FROM " + viewName + where +
		" ORDER BY start_date DESC, id DESC" +
		" LIMIT " + c.Next(page.Limit()) + " OFFSET " + c.Next(page.Offset())

	var rows []promoRow
	total, err := query.CountThenPage(ctx, r.db,
		"SELECT COUNT(*) FROM "+viewName+where, pageSQL,
		countArgs, c.Args(), &rows)
	if err != nil {
		return query.List[Promotion]{}, err
	}
	return query.NewList(toPromotions(rows), total, page), nil
}

func (r *Repo) listJoin(ctx context.Context, params ListParams, page query.Page) (query.List[Promotion], error) {
	var c query.Cond
	applyFilter(&c, params, true)
	where := c.Where()
	countArgs := c.Args()

	pageSQL := "SELECT " + joinCols + joinFrom + where +
		" ORDER BY p.start_date DESC, p.id DESC" +
		" LIMIT " + c.Next(page.Limit()) + " OFFSET " + c.Next(page.Offset())

	var rows []promoRow
	total, err := query.CountThenPage(ctx, r.db,
		"SELECT COUNT(*)"+joinFrom+where, pageSQL,
		countArgs, c.Args(), &rows)
	if err != nil {
		return query.List[Promotion]{}, err
	}
	return query.NewList(toPromotions(rows), total, page), nil
}

func (r *Repo) one(ctx context.Context, selectSQL, prefix string, id int64, admin bool) (*Promotion, error) {
	var c query.Cond
	c.And(prefix+"id = ?", id)
	if !admin {
		c.And(prefix + "status = 'published'")
		c.And(prefix + "end_date >= CURRENT_DATE")
	}

	var row promoRow
	q := selectSQL + c.Where() + " LIMIT 1"
	if err := r.db.GetContext(ctx, &row, q, c.Args()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p := row.toPromotion()
	return &p, nil
}

func (r *Repo) bounded(ctx context.Context, op string, params ListParams, limit int) ([]Promotion, error) {
	if limit < 1 || limit > query.MaxPerPage {
		limit = 6
	}

	res, err := query.Resolve(ctx, op, []query.Strategy[[]Promotion]{
		{Name: "view", Retry: query.RetryDoubling, Run: func(ctx context.Context) ([]Promotion, error) {
			var c query.Cond
			applyFilter(&c, params, false)
			q := "SELECT " + viewCols + " FROM " + viewName + c.Where() +
				" ORDER BY start_date DESC, id DESC LIMIT " + c.Next(limit)
			var rows []promoRow
			if err := r.db.SelectContext(ctx, &rows, q, c.Args()...); err != nil {
				return nil, err
			}
			return toPromotions(rows), nil
		}},
		{Name: "join", Run: func(ctx context.Context) ([]Promotion, error) {
			var c query.Cond
			applyFilter(&c, params, true)
			q := "SELECT " + joinCols + joinFrom + c.Where() +
				" ORDER BY p.start_date DESC, p.id DESC LIMIT " + c.Next(limit)
			var rows []promoRow
			if err := r.db.SelectContext(ctx, &rows, q, c.Args()...); err != nil {
				return nil, err
			}
			return toPromotions(rows), nil
		}},
	})
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

// applyFilter translates ListParams into predicates.  Anonymous traffic is
// pinned to published campaigns that have not ended; CMS sessions may
// filter by any stored status.
func applyFilter(c *query.Cond, params ListParams, joined bool) {
	col := func(name string) string {
		if joined {
			return "p." + name
		}
		return name
	}

	if !params.Admin {
		c.And(col("status") + " = 'published'")
		c.And(col("end_date") + " >= CURRENT_DATE")
	} else if params.Status != "" {
		c.And(col("status")+" = ?", params.Status)
	}
	if params.Search != "" {
		needle := "%" + params.Search + "%"
		tenantName := "tenant_name"
		if joined {
			tenantName = "t.name"
		}
		c.And("("+col("title")+" ILIKE ? OR "+tenantName+" ILIKE ?)", needle, needle)
	}
	if params.TenantID > 0 {
		c.And(col("tenant_id")+" = ?", params.TenantID)
	}
}
