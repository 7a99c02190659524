// internal/event/repository.go
//
// Calendar reads.  Events have a single retrieval path (the base table),
// still driven through the resolver so logging, metrics, and retry behave
// exactly like every other module.
package event

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/meridianmall/arcade/internal/query"
)

const eventCols = "id, title, slug, description, location, start_at, end_at, images, tags, is_featured, is_published"

// Repo serves event reads.
type Repo struct {
	db *sqlx.DB
}

// NewRepo wires a repository onto an open pool.
func NewRepo(db *sqlx.DB) *Repo { return &Repo{db: db} }

// List returns one page of events, soonest first.
func (r *Repo) List(ctx context.Context, params ListParams) (query.List[Event], error) {
	page := query.NewPage(params.Page, params.PerPage)

	res, err := query.Resolve(ctx, "events.list", []query.Strategy[query.List[Event]]{
		{Name: "table", Retry: query.RetryOnce, Run: func(ctx context.Context) (query.List[Event], error) {
			return r.list(ctx, params, page)
		}},
	})
	if err != nil {
		return query.List[Event]{Items: []Event{}}, err
	}
	return res.Value, nil
}

// BySlug returns one event, or (nil, nil) when no such slug exists.
func (r *Repo) BySlug(ctx context.Context, slug string, admin bool) (*Event, error) {
	res, err := query.Resolve(ctx, "events.one", []query.Strategy[*Event]{
		{Name: "table", Retry: query.RetryOnce, Run: func(ctx context.Context) (*Event, error) {
			return r.one(ctx, slug, admin)
		}},
	})
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

// Featured returns the homepage strip, soonest first.
func (r *Repo) Featured(ctx context.Context, limit int) ([]Event, error) {
	f := true
	return r.slice(ctx, "events.featured", ListParams{Featured: &f}, limit)
}

// Search returns a bounded match list for the navbar search box.
func (r *Repo) Search(ctx context.Context, term string, limit int) ([]Event, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []Event{}, nil
	}
	return r.slice(ctx, "events.search", ListParams{Search: term}, limit)
}

func (r *Repo) slice(ctx context.Context, op string, params ListParams, limit int) ([]Event, error) {
	if limit < 1 || limit > query.MaxPerPage {
		limit = 4
	}

	res, err := query.Resolve(ctx, op, []query.Strategy[[]Event]{
		{Name: "table", Retry: query.RetryOnce, Run: func(ctx context.Context) ([]Event, error) {
			var c query.Cond
			applyFilter(&c, params)
			q := "SELECT " + eventCols + " FROM events" + c.Where() +
				" ORDER BY start_at, id LIMIT " + c.Next(limit)
			var rows []eventRow
			if err := r.db.SelectContext(ctx, &rows, q, c.Args()...); err != nil {
				return nil, err
			}
			return toEvents(rows), nil
		}},
	})
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

func (r *Repo) list(ctx context.Context, params ListParams, page query.Page) (query.List[Event], error) {
	var c query.Cond
	applyFilter(&c, params)
	where := c.Where()
	countArgs := c.Args()

	pageSQL := "SELECT " + eventCols + " FROM events" + where +
		" ORDER BY start_at, id" +
		" LIMIT " + c.Next(page.Limit()) + " OFFSET " + c.Next(page.Offset())

	var rows []eventRow
	total, err := query.CountThenPage(ctx, r.db,
		"SELECT COUNT(*) FROM events"+where, pageSQL,
		countArgs, c.Args(), &rows)
	if err != nil {
		return query.List[Event]{}, err
	}
	return query.NewList(toEvents(rows), total, page), nil
}

func (r *Repo) one(ctx context.Context, slug string, admin bool) (*Event, error) {
	var c query.Cond
	c.And("slug = ?", slug)
	if !admin {
		c.And("is_published = TRUE")
	}

	var row eventRow
	q := "SELECT " + eventCols + " FROM events" + c.Where() + " LIMIT 1"
	if err := r.db.GetContext(ctx, &row, q, c.Args()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	e := row.toEvent()
	return &e, nil
}

// applyFilter translates ListParams into predicates.  The date window
// brackets start_at, which is how the calendar widget asks for "this
// month" and "upcoming".
func applyFilter(c *query.Cond, params ListParams) {
	if !params.Admin {
		c.And("is_published = TRUE")
	}
	if params.Search != "" {
		needle := "%" + params.Search + "%"
		c.And("(title ILIKE ? OR description ILIKE ?)", needle, needle)
	}
	if params.Featured != nil {
		c.And("is_featured = ?", *params.Featured)
	}
	if params.From != nil {
		c.And("start_at >= ?", *params.From)
	}
	if params.To != nil {
		c.And("start_at <= ?", *params.To)
	}
	if len(params.Tags) > 0 {
		exprs := make([]string, 0, len(params.Tags))
		vals := make([]any, 0, len(params.Tags))
		for _, tag := range params.Tags {
			b, err := json.Marshal([]string{tag})
			if err != nil {
				continue
			}
			exprs = append(exprs, "tags @> ?::jsonb")
			vals = append(vals, string(b))
		}
		c.AndAny(exprs, vals...)
	}
}
