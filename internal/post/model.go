// internal/post/model.go
//
// Blog post projections.
//
// Context
// -------
// Posts are read through three paths (pre-joined view, manual join, and the
// embedded seed), each with its own row shape.  The public `Post` struct is
// the single projection the HTTP layer sees; the unexported row types exist
// only to absorb whatever the storage path produced before normalization.
//
// Notes
// -----
//   - JSON field names match what the storefront JavaScript consumes.
//   - Oxford commas, two spaces after periods.
package post

import (
	"database/sql"
	"time"

	"github.com/meridianmall/arcade/internal/category"
	"github.com/meridianmall/arcade/internal/normalize"
)

// Post is the public projection served to the front end.
type Post struct {
	ID        int64              `json:"id"`
	Title     string             `json:"title"`
	Slug      string             `json:"slug"`
	Summary   string             `json:"summary,omitempty"`
	Body      string             `json:"body,omitempty"`
	Tags      []string           `json:"tags"`
	ImageURL  string             `json:"imageUrl,omitempty"`
	Featured  bool               `json:"isFeatured"`
	Published bool               `json:"isPublished"`
	PublishAt time.Time          `json:"publishAt"`
	Category  *category.Category `json:"category"`
}

// ListResult is the envelope the blog grid consumes.  UsingFallback and
// Notice are only set when the embedded seed dataset answered; Notice rides
// the wire as "error" because that is the field the grid already renders as
// its degraded-mode banner.
type ListResult struct {
	Posts         []Post `json:"posts"`
	Total         int    `json:"total"`
	HasMore       bool   `json:"hasMore"`
	UsingFallback bool   `json:"usingFallback"`
	Notice        string `json:"error,omitempty"`
}

// ListParams filters and pages a post listing.  Zero values mean "no
// filter"; Page and PerPage are clamped by the query layer.
type ListParams struct {
	Search     string
	Tags       []string
	CategoryID int64
	Featured   *bool
	From       *time.Time
	To         *time.Time
	Page       int
	PerPage    int

	// Admin includes unpublished and future-dated posts for CMS preview
	// sessions.
	Admin bool
}

//
// Storage row shapes
//

// viewRow scans blog_posts_with_categories.  The category column is jsonb
// in whatever shape the view was authored: object, single-element array,
// or NULL.
type viewRow struct {
	ID        int64          `db:"id"`
	Title     string         `db:"title"`
	Slug      string         `db:"slug"`
	Summary   sql.NullString `db:"summary"`
	Body      sql.NullString `db:"body"`
	Tags      []byte         `db:"tags"`
	ImageURL  sql.NullString `db:"image_url"`
	Featured  bool           `db:"is_featured"`
	Published bool           `db:"is_published"`
	PublishAt time.Time      `db:"publish_at"`
	Category  []byte         `db:"category"`
}

func (r viewRow) toPost() Post {
	return Post{
		ID:        r.ID,
		Title:     r.Title,
		Slug:      r.Slug,
		Summary:   r.Summary.String,
		Body:      r.Body.String,
		Tags:      normalize.StringList(r.Tags),
		ImageURL:  normalize.ImageURL(r.ImageURL.String),
		Featured:  r.Featured,
		Published: r.Published,
		PublishAt: r.PublishAt,
		Category:  normalize.ToOne[category.Category](r.Category),
	}
}

// joinRow scans the manual join against the base tables.
type joinRow struct {
	ID            int64          `db:"id"`
	Title         string         `db:"title"`
	Slug          string         `db:"slug"`
	Summary       sql.NullString `db:"summary"`
	Body          sql.NullString `db:"body"`
	Tags          []byte         `db:"tags"`
	ImageURL      sql.NullString `db:"image_url"`
	Featured      bool           `db:"is_featured"`
	Published     bool           `db:"is_published"`
	PublishAt     time.Time      `db:"publish_at"`
	CategoryID    sql.NullInt64  `db:"category_id"`
	CategoryName  sql.NullString `db:"category_name"`
	CategorySlug  sql.NullString `db:"category_slug"`
	CategoryOrder sql.NullInt64  `db:"category_display_order"`
}

func (r joinRow) toPost() Post {
	p := Post{
		ID:        r.ID,
		Title:     r.Title,
		Slug:      r.Slug,
		Summary:   r.Summary.String,
		Body:      r.Body.String,
		Tags:      normalize.StringList(r.Tags),
		ImageURL:  normalize.ImageURL(r.ImageURL.String),
		Featured:  r.Featured,
		Published: r.Published,
		PublishAt: r.PublishAt,
	}
	if r.CategoryID.Valid {
		p.Category = &category.Category{
			ID:           r.CategoryID.Int64,
			Name:         r.CategoryName.String,
			Slug:         r.CategorySlug.String,
			DisplayOrder: int(r.CategoryOrder.Int64),
		}
	}
	return p
}

func viewPosts(rows []viewRow) []Post {
	out := make([]Post, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toPost())
	}
	return out
}

func joinPosts(rows []joinRow) []Post {
	out := make([]Post, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toPost())
	}
	return out
}
