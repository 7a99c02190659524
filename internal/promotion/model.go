package promotion

import (
	"database/sql"
	"time"

	"github.com/meridianmall/arcade/internal/normalize"
)

// Promotion statuses as stored.  Anonymous traffic only ever sees
// StatusPublished rows that have not ended.
const (
	StatusStaging   = "staging"
	StatusPublished = "published"
	StatusExpired   = "expired"
)

// Promotion is a store campaign shown on the deals page.  Tenant name and
// logo are denormalized so cards render without a second fetch.
type Promotion struct {
	ID          int64     `json:"id"`
	TenantID    int64     `json:"tenantId,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Status      string    `json:"status"`
	TenantName  string    `json:"tenantName,omitempty"`
	TenantLogo  string    `json:"tenantLogoUrl,omitempty"`
}

// ListParams filters and pages the deals page.
type ListParams struct {
	Search   string
	TenantID int64
	// Status narrows results for CMS screens; ignored for anonymous
	// traffic, which is always pinned to published-and-running.
	Status  string
	Page    int
	PerPage int
	Admin   bool
}

// promoRow is shared by both retrieval paths; the join aliases tenant
// columns to match the view's names.
type promoRow struct {
	ID          int64          `db:"id"`
	TenantID    sql.NullInt64  `db:"tenant_id"`
	Title       string         `db:"title"`
	Description sql.NullString `db:"description"`
	ImageURL    sql.NullString `db:"image_url"`
	StartDate   time.Time      `db:"start_date"`
	EndDate     time.Time      `db:"end_date"`
	Status      string         `db:"status"`
	TenantName  sql.NullString `db:"tenant_name"`
	TenantLogo  sql.NullString `db:"tenant_logo_url"`
}

func (r promoRow) toPromotion() Promotion {
	return Promotion{
		ID:          r.ID,
		TenantID:    r.TenantID.Int64,
		Title:       r.Title,
		Description: r.Description.String,
		ImageURL:    normalize.ImageURL(r.ImageURL.String),
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Status:      r.Status,
		TenantName:  r.TenantName.String,
		TenantLogo:  normalize.ImageURL(r.TenantLogo.String),
	}
}

func toPromotions(rows []promoRow) []Promotion {
	out := make([]Promotion, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toPromotion())
	}
	return out
}
