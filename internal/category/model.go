package category

// Category is a blog taxonomy entry.  It renders inside post payloads and
// as the standalone filter list the blog sidebar uses.
type Category struct {
	ID           int64  `db:"id"            json:"id"`
	Name         string `db:"name"          json:"name"`
	Slug         string `db:"slug"          json:"slug"`
	DisplayOrder int    `db:"display_order" json:"displayOrder"`
	Active       bool   `db:"is_active"     json:"-"`
}
