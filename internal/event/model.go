package event

import (
	"database/sql"
	"time"

	"github.com/meridianmall/arcade/internal/normalize"
)

// Event is a happening in the mall calendar: workshops, launches, seasonal
// shows.  Events read straight from the base table; there is no pre-joined
// view because nothing needs joining.
type Event struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	StartAt     time.Time  `json:"startAt"`
	EndAt       *time.Time `json:"endAt,omitempty"`
	Images      []string   `json:"images"`
	Tags        []string   `json:"tags"`
	Featured    bool       `json:"isFeatured"`
	Published   bool       `json:"isPublished"`
}

// ListParams filters and pages the calendar.
type ListParams struct {
	Search   string
	Tags     []string
	Featured *bool
	From     *time.Time
	To       *time.Time
	Page     int
	PerPage  int
	Admin    bool
}

// eventRow absorbs the raw table shape; images is jsonb and may carry the
// legacy double-encoded form.
type eventRow struct {
	ID          int64          `db:"id"`
	Title       string         `db:"title"`
	Slug        string         `db:"slug"`
	Description sql.NullString `db:"description"`
	Location    sql.NullString `db:"location"`
	StartAt     time.Time      `db:"start_at"`
	EndAt       sql.NullTime   `db:"end_at"`
	Images      []byte         `db:"images"`
	Tags        []byte         `db:"tags"`
	Featured    bool           `db:"is_featured"`
	Published   bool           `db:"is_published"`
}

func (r eventRow) toEvent() Event {
	e := Event{
		ID:          r.ID,
		Title:       r.Title,
		Slug:        r.Slug,
		Description: r.Description.String,
		Location:    r.Location.String,
		StartAt:     r.StartAt,
		Featured:    r.Featured,
		Published:   r.Published,
	}
	if r.EndAt.Valid {
		t := r.EndAt.Time
		e.EndAt = &t
	}
	e.Images = make([]string, 0, 4)
	for _, raw := range normalize.StringList(r.Images) {
		if u := normalize.ImageURL(raw); u != "" {
			e.Images = append(e.Images, u)
		}
	}
	e.Tags = normalize.StringList(r.Tags)
	return e
}

func toEvents(rows []eventRow) []Event {
	out := make([]Event, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toEvent())
	}
	return out
}
