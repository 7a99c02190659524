// internal/post/repository.go
//
// Blog post reads with layered fallback.
//
// Context
// -------
// The storefront must keep rendering stories even while the database is
// having a bad day.  Every read therefore walks a chain: the pre-joined
// blog_posts_with_categories view, then a manual join against the base
// tables, and finally the embedded seed dataset, which cannot fail.  The
// chain mechanics live in internal/query; this file owns the SQL and the
// seed filtering.
//
// Workflow
// --------
//  1. Build the WHERE clause once per request from ListParams.
//  2. COUNT first; a zero total skips the page query.
//  3. Scan path-specific rows, normalize them into Post, and envelope.
//
// Notes
// -----
//   - Anonymous traffic only ever sees published, non-future rows; the
//     Admin flag widens the filter for CMS preview sessions.
//   - Oxford commas, two spaces after periods.
package post

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/meridianmall/arcade/internal/metrics"
	"github.com/meridianmall/arcade/internal/query"
)

const (
	viewName = "blog_posts_with_categories"

	viewCols = "id, title, slug, summary, body, tags, image_url, is_featured, is_published, publish_at, category"

	joinCols = "p.id, p.title, p.slug, p.summary, p.body, p.tags, p.image_url, " +
		"p.is_featured, p.is_published, p.publish_at, " +
		"c.id AS category_id, c.name AS category_name, c.slug AS category_slug, " +
		"c.display_order AS category_display_order"

	joinFrom = " FROM blog_posts p LEFT JOIN blog_categories c ON c.id = p.category_id"
)

// Repo serves post reads.
type Repo struct {
	db *sqlx.DB
}

// NewRepo wires a repository onto an open pool.
func NewRepo(db *sqlx.DB) *Repo { return &Repo{db: db} }

// pageData is what each list strategy returns before enveloping.
type pageData struct {
	posts []Post
	total int
}

//
// Public operations
//

// List returns one page of posts matching params.  The result is never
// empty-handed: when both database paths fail the embedded seed answers,
// flagged through UsingFallback and Notice.
func (r *Repo) List(ctx context.Context, params ListParams) (*ListResult, error) {
	page := query.NewPage(params.Page, params.PerPage)

	res, err := query.Resolve(ctx, "posts.list", []query.Strategy[pageData]{
		{Name: "view", Retry: query.RetryOnce, Run: func(ctx context.Context) (pageData, error) {
			return r.listView(ctx, params, page)
		}},
		{Name: "join", Run: func(ctx context.Context) (pageData, error) {
			return r.listJoin(ctx, params, page)
		}},
		{Name: "seed", Run: func(ctx context.Context) (pageData, error) {
			return seedList(params, page), nil
		}},
	})
	if err != nil {
		return nil, err
	}

	out := &ListResult{
		Posts:   res.Value.posts,
		Total:   res.Value.total,
		HasMore: page.HasMore(res.Value.total),
	}
	if out.Posts == nil {
		out.Posts = []Post{}
	}
	if res.Source == "seed" {
		out.UsingFallback = true
		out.Notice = seedNotice
		metrics.SeedServedTotal.Inc()
	}
	return out, nil
}

// BySlug returns one post, or (nil, nil) when no such slug exists.  Absence
// is an answer: it never retries and never touches the fallback chain.
func (r *Repo) BySlug(ctx context.Context, slug string, admin bool) (*Post, error) {
	res, err := query.Resolve(ctx, "posts.one", []query.Strategy[*Post]{
		{Name: "view", Retry: query.RetryOnce, Run: func(ctx context.Context) (*Post, error) {
			return r.oneView(ctx, slug, admin)
		}},
		{Name: "join", Run: func(ctx context.Context) (*Post, error) {
			return r.oneJoin(ctx, slug, admin)
		}},
		{Name: "seed", Run: func(ctx context.Context) (*Post, error) {
			return seedBySlug(slug), nil
		}},
	})
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

// Featured returns the homepage carousel slice, newest first.
func (r *Repo) Featured(ctx context.Context, limit int) ([]Post, error) {
	limit = clampLimit(limit)

	res, err := query.Resolve(ctx, "posts.featured", []query.Strategy[[]Post]{
		{Name: "view", Retry: query.RetryOnce, Run: func(ctx context.Context) ([]Post, error) {
			return r.sliceView(ctx, featuredParams(), limit)
		}},
		{Name: "join", Run: func(ctx context.Context) ([]Post, error) {
			return r.sliceJoin(ctx, featuredParams(), limit)
		}},
		{Name: "seed", Run: func(ctx context.Context) ([]Post, error) {
			return seedFeatured(limit), nil
		}},
	})
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

// Search returns a bounded, unpaged result list for the navbar search box.
// A blank term short-circuits to empty without touching the database.
func (r *Repo) Search(ctx context.Context, term string, limit int) ([]Post, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []Post{}, nil
	}
	limit = clampLimit(limit)

	res, err := query.Resolve(ctx, "posts.search", []query.Strategy[[]Post]{
		{Name: "view", Retry: query.RetryOnce, Run: func(ctx context.Context) ([]Post, error) {
			return r.sliceView(ctx, ListParams{Search: term}, limit)
		}},
		{Name: "join", Run: func(ctx context.Context) ([]Post, error) {
			return r.sliceJoin(ctx, ListParams{Search: term}, limit)
		}},
		{Name: "seed", Run: func(ctx context.Context) ([]Post, error) {
			return seedSearch(term, limit), nil
		}},
	})
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

//
// View path
//

func (r *Repo) listView(ctx context.Context, params ListParams, page query.Page) (pageData, error) {
	var c query.Cond
	applyFilter(&c, params, false)
	where := c.Where()
	countArgs := c.Args()

	pageSQL := "SELECT " + viewCols + " FROM " + viewName + where +
		" ORDER BY publish_at DESC, id DESC" +
		" LIMIT " + c.Next(page.Limit()) + " OFFSET " + c.Next(page.Offset())

	var rows []viewRow
	total, err := query.CountThenPage(ctx, r.db,
		"SELECT COUNT(*) FROM "+viewName+where, pageSQL,
		countArgs, c.Args(), &rows)
	if err != nil {
		return pageData{}, err
	}
	return pageData{posts: viewPosts(rows), total: total}, nil
}

func (r *Repo) oneView(ctx context.Context, slug string, admin bool) (*Post, error) {
	var c query.Cond
	c.And("slug = ?", slug)
	applyFilter(&c, ListParams{Admin: admin}, false)

	var row viewRow
	q := "SELECT " + viewCols + " FROM " + viewName + c.Where() + " LIMIT 1"
	if err := r.db.GetContext(ctx, &row, q, c.Args()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p := row.toPost()
	return &p, nil
}

func (r *Repo) sliceView(ctx context.Context, params ListParams, limit int) ([]Post, error) {
	var c query.Cond
	applyFilter(&c, params, false)

	q := "SELECT " + viewCols + " FROM " + viewName + c.Where() +
		" ORDER BY publish_at DESC, id DESC LIMIT " + c.Next(limit)

	var rows []viewRow
	if err := r.db.SelectContext(ctx, &rows, q, c.Args()...); err != nil {
		return nil, err
	}
	return viewPosts(rows), nil
}

//
// Join path
//

func (r *Repo) listJoin(ctx context.Context, params ListParams, page query.Page) (pageData, error) {
	var c query.Cond
	applyFilter(&c, params, true)
	where := c.Where()
	countArgs := c.Args()

	pageSQL := "SELECT " + joinCols + joinFrom + where +
		" ORDER BY p.publish_at DESC, p.id DESC" +
		" LIMIT " + c.Next(page.Limit()) + " OFFSET " + c.Next(page.Offset())

	var rows []joinRow
	total, err := query.CountThenPage(ctx, r.db,
		"SELECT COUNT(*) FROM blog_posts p"+where, pageSQL,
		countArgs, c.Args(), &rows)
	if err != nil {
		return pageData{}, err
	}
	return pageData{posts: joinPosts(rows), total: total}, nil
}

func (r *Repo) oneJoin(ctx context.Context, slug string, admin bool) (*Post, error) {
	var c query.Cond
	c.And("p.slug = ?", slug)
	applyFilter(&c, ListParams{Admin: admin}, true)

	var row joinRow
	q := "SELECT " + joinCols + joinFrom + c.Where() + " LIMIT 1"
	if err := r.db.GetContext(ctx, &row, q, c.Args()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p := row.toPost()
	return &p, nil
}

func (r *Repo) sliceJoin(ctx context.Context, params ListParams, limit int) ([]Post, error) {
	var c query.Cond
	applyFilter(&c, params, true)

	q := "SELECT " + joinCols + joinFrom + c.Where() +
		" ORDER BY p.publish_at DESC, p.id DESC LIMIT " + c.Next(limit)

	var rows []joinRow
	if err := r.db.SelectContext(ctx, &rows, q, c.Args()...); err != nil {
		return nil, err
	}
	return joinPosts(rows), nil
}

//
// Filter assembly
//

// applyFilter translates ListParams into predicates.  joined switches the
// column prefix for the manual-join path, where bare names are ambiguous.
func applyFilter(c *query.Cond, params ListParams, joined bool) {
	col := func(name string) string {
		if joined {
			return "p." + name
		}
		return name
	}

	if !params.Admin {
		c.And(col("is_published") + " = TRUE")
		c.And(col("publish_at") + " <= now()")
	}
	if params.Search != "" {
		needle := "%" + params.Search + "%"
		c.And("("+col("title")+" ILIKE ? OR "+col("summary")+" ILIKE ?)", needle, needle)
	}
	if params.CategoryID > 0 {
		c.And(col("category_id")+" = ?", params.CategoryID)
	}
	if params.Featured != nil {
		c.And(col("is_featured")+" = ?", *params.Featured)
	}
	if params.From != nil {
		c.And(col("publish_at")+" >= ?", *params.From)
	}
	if params.To != nil {
		c.And(col("publish_at")+" <= ?", *params.To)
	}
	if len(params.Tags) > 0 {
		// Any-overlap: one containment test per requested tag, OR-joined.
		exprs := make([]string, 0, len(params.Tags))
		vals := make([]any, 0, len(params.Tags))
		for _, tag := range params.Tags {
			b, err := json.Marshal([]string{tag})
			if err != nil {
				continue
			}
			exprs = append(exprs, col("tags")+" @> ?::jsonb")
			vals = append(vals, string(b))
		}
		c.AndAny(exprs, vals...)
	}
}

func featuredParams() ListParams {
	f := true
	return ListParams{Featured: &f}
}

// clampLimit bounds carousel and search slices.
func clampLimit(limit int) int {
	switch {
	case limit < 1:
		return 4
	case limit > query.MaxPerPage:
		return query.MaxPerPage
	}
	return limit
}
