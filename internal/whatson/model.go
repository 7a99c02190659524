package whatson

import (
	"database/sql"
	"strings"

	"go.uber.org/zap"

	"github.com/meridianmall/arcade/internal/normalize"
)

// Carousel item kinds.  The CMS may grow new kinds before this list does;
// anything unrecognized is served as TypeCustom so the carousel still
// renders the card.
const (
	TypeEvent     = "event"
	TypeTenant    = "tenant"
	TypePost      = "post"
	TypePromotion = "promotion"
	TypeCustom    = "custom"
)

// Item is one card in the "What's On" homepage carousel.
type Item struct {
	ID        int64  `json:"id"`
	Type      string `json:"contentType"`
	Title     string `json:"title"`
	ImageURL  string `json:"imageUrl,omitempty"`
	LinkURL   string `json:"linkUrl,omitempty"`
	SortOrder int    `json:"sortOrder"`
	Active    bool   `json:"isActive"`
}

type itemRow struct {
	ID        int64          `db:"id"`
	Type      string         `db:"content_type"`
	Title     string         `db:"title"`
	ImageURL  sql.NullString `db:"image_url"`
	LinkURL   sql.NullString `db:"link_url"`
	SortOrder int            `db:"sort_order"`
	Active    bool           `db:"is_active"`
}

func (r itemRow) toItem() Item {
	return Item{
		ID:        r.ID,
		Type:      normalizeType(r.Type),
		Title:     r.Title,
		ImageURL:  normalize.ImageURL(r.ImageURL.String),
		LinkURL:   strings.TrimSpace(r.LinkURL.String),
		SortOrder: r.SortOrder,
		Active:    r.Active,
	}
}

func toItems(rows []itemRow) []Item {
	out := make([]Item, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toItem())
	}
	return out
}

func normalizeType(t string) string {
	switch t {
	case TypeEvent, TypeTenant, TypePost, TypePromotion, TypeCustom:
		return t
	}
	zap.S().Warnw("unknown carousel content type", "type", t)
	return TypeCustom
}
