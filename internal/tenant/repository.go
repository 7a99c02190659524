// internal/tenant/repository.go
//
// Store directory reads: tenant_directory_view first, manual join against
// tenants and tenant_categories second.
package tenant

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/meridianmall/arcade/internal/query"
)

const (
	viewName = "tenant_directory_view"

	viewCols = "id, slug, tenant_code, name, description, operating_hours, main_floor, phone, " +
		"logo_url, banner_url, category_id, category_display, is_active, is_featured, is_new"

	joinCols = "t.id, t.slug, t.tenant_code, t.name, t.description, t.operating_hours, t.main_floor, t.phone, " +
		"t.logo_url, t.banner_url, t.category_id, tc.name AS category_display, " +
		"t.is_active, t.is_featured, t.is_new"

	joinFrom = " FROM tenants t LEFT JOIN tenant_categories tc ON tc.id = t.category_id"
)

// Repo serves directory reads.
type Repo struct {
	db *sqlx.DB
}

// NewRepo wires a repository onto an open pool.
func NewRepo(db *sqlx.DB) *Repo { return &Repo{db: db} }

// List returns one page of the directory, featured stores first.
func (r *Repo) List(ctx context.Context, params ListParams) (query.List[Tenant], error) {
	page := query.NewPage(params.Page, params.PerPage)

	res, err := query.Resolve(ctx, "tenants.list", []query.Strategy[query.List[Tenant]]{
		{Name: "view", Retry: query.RetryOnce, Run: func(ctx context.Context) (query.List[Tenant], error) {
			return r.listView(ctx, params, page)
		}},
		{Name: "join", Run: func(ctx context.Context) (query.List[Tenant], error) {
			return r.listJoin(ctx, params, page)
		}},
	})
	if err != nil {
		return query.List[Tenant]{Items: []Tenant{}}, err
	}
	return res.Value, nil
}

// BySlug returns one store, or (nil, nil) when no such slug exists.
func (r *Repo) BySlug(ctx context.Context, slug string, admin bool) (*Tenant, error) {
	res, err := query.Resolve(ctx, "tenants.one", []query.Strategy[*Tenant]{
		{Name: "view", Retry: query.RetryOnce, Run: func(ctx context.Context) (*Tenant, error) {
			return r.one(ctx, "SELECT "+viewCols+" FROM "+viewName, "", slug, admin)
		}},
		{Name: "join", Run: func(ctx context.Context) (*Tenant, error) {
			return r.one(ctx, "SELECT "+joinCols+joinFrom, "t.", slug, admin)
		}},
	})
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

// Featured returns the homepage spotlight strip.
func (r *Repo) Featured(ctx context.Context, limit int) ([]Tenant, error) {
	f := true
	return r.bounded(ctx, "tenants.featured", ListParams{Featured: &f}, limit)
}

// Search returns a bounded match list for the directory search box.
func (r *Repo) Search(ctx context.Context, term string, limit int) ([]Tenant, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []Tenant{}, nil
	}
	return r.bounded(ctx, "tenants.search", ListParams{Search: term}, limit)
}

//
// Retrieval paths
//

func (r *Repo) listView(ctx context.Context, params ListParams, page query.Page) (query.List[Tenant], error) {
	var c query.Cond
	applyFilter(&c, params, "")
	where := c.Where()
	countArgs := c.Args()

	pageSQL := "SELECT " + viewCols + " FROM " + viewName + where +
		" ORDER BY is_featured DESC, name" +
		" LIMIT " + c.Next(page.Limit()) + " OFFSET " + c.Next(page.Offset())

	var rows []tenantRow
	total, err := query.CountThenPage(ctx, r.db,
		"SELECT COUNT(*) FROM "+viewName+where, pageSQL,
		countArgs, c.Args(), &rows)
	if err != nil {
		return query.List[Tenant]{}, err
	}
	return query.NewList(toTenants(rows), total, page), nil
}

func (r *Repo) listJoin(ctx context.Context, params ListParams, page query.Page) (query.List[Tenant], error) {
	var c query.Cond
	applyFilter(&c, params, "t.")
	where := c.Where()
	countArgs := c.Args()

	pageSQL := "SELECT " + joinCols + joinFrom + where +
		" ORDER BY t.is_featured DESC, t.name" +
		" LIMIT " + c.Next(page.Limit()) + " OFFSET " + c.Next(page.Offset())

	var rows []tenantRow
	total, err := query.CountThenPage(ctx, r.db,
		"SELECT COUNT(*) FROM tenants t"+where, pageSQL,
		countArgs, c.Args(), &rows)
	if err != nil {
		return query.List[Tenant]{}, err
	}
	return query.NewList(toTenants(rows), total, page), nil
}

func (r *Repo) one(ctx context.Context, selectSQL, prefix, slug string, admin bool) (*Tenant, error) {
	var c query.Cond
	c.And(prefix+"slug = ?", slug)
	if !admin {
		c.And(prefix + "is_active = TRUE")
	}

	var row tenantRow
	q := selectSQL + c.Where() + " LIMIT 1"
	if err := r.db.GetContext(ctx, &row, q, c.Args()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	t := row.toTenant()
	return &t, nil
}

func (r *Repo) bounded(ctx context.Context, op string, params ListParams, limit int) ([]Tenant, error) {
	if limit < 1 || limit > query.MaxPerPage {
		limit = 6
	}

	res, err := query.Resolve(ctx, op, []query.Strategy[[]Tenant]{
		{Name: "view", Retry: query.RetryOnce, Run: func(ctx context.Context) ([]Tenant, error) {
			var c query.Cond
			applyFilter(&c, params, "")
			q := "SELECT " + viewCols + " FROM " + viewName + c.Where() +
				" ORDER BY is_featured DESC, name LIMIT " + c.Next(limit)
			var rows []tenantRow
			if err := r.db.SelectContext(ctx, &rows, q, c.Args()...); err != nil {
				return nil, err
			}
			return toTenants(rows), nil
		}},
		{Name: "join", Run: func(ctx context.Context) ([]Tenant, error) {
			var c query.Cond
			applyFilter(&c, params, "t.")
			q := "SELECT " + joinCols + joinFrom + c.Where() +
				" ORDER BY t.is_featured DESC, t.name LIMIT " + c.Next(limit)
			var rows []tenantRow
			if err := r.db.SelectContext(ctx, &rows, q, c.Args()...); err != nil {
				return nil, err
			}
			return toTenants(rows), nil
		}},
	})
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

// applyFilter translates ListParams into predicates.  prefix disambiguates
// columns on the join path.
func applyFilter(c *query.Cond, params ListParams, prefix string) {
	if !params.Admin {
		c.And(prefix + "is_active = TRUE")
	}
	if params.Search != "" {
		needle := "%" + params.Search + "%"
		c.And("("+prefix+"name ILIKE ? OR "+prefix+"description ILIKE ?)", needle, needle)
	}
	if params.CategoryID > 0 {
		c.And(prefix+"category_id = ?", params.CategoryID)
	}
	if params.Floor != "" {
		c.And(prefix+"main_floor = ?", params.Floor)
	}
	if params.Featured != nil {
		c.And(prefix+"is_featured = ?", *params.Featured)
	}
	if params.NewOnly != nil {
		c.And(prefix+"is_new = ?", *params.NewOnly)
	}
}
