// internal/tenant/model.go
//
// Store directory projections.
//
// Context
// -------
// "Tenant" here is a shop in the building, not an infrastructure tenant.
// The directory view denormalizes the category name into category_display
// so the storefront can render chips without a second lookup; the manual
// join rebuilds the same column when the view is unavailable.
package tenant

import (
	"database/sql"

	"github.com/meridianmall/arcade/internal/normalize"
)

// Tenant is the public directory entry.
type Tenant struct {
	ID              int64  `json:"id"`
	Slug            string `json:"slug"`
	Code            string `json:"tenantCode,omitempty"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	OperatingHours  string `json:"operatingHours,omitempty"`
	Floor           string `json:"mainFloor,omitempty"`
	Phone           string `json:"phone,omitempty"`
	LogoURL         string `json:"logoUrl,omitempty"`
	BannerURL       string `json:"bannerUrl,omitempty"`
	CategoryID      int64  `json:"categoryId,omitempty"`
	CategoryDisplay string `json:"categoryDisplay,omitempty"`
	Active          bool   `json:"isActive"`
	Featured        bool   `json:"isFeatured"`
	New             bool   `json:"isNew"`
}

// ListParams filters and pages the directory.
type ListParams struct {
	Search     string
	CategoryID int64
	Floor      string
	Featured   *bool
	NewOnly    *bool
	Page       int
	PerPage    int

	// Admin includes closed and hidden stores for CMS preview.
	Admin bool
}

// tenantRow is shared by both retrieval paths: the view exposes
// category_display directly and the join aliases it into place.
type tenantRow struct {
	ID              int64          `db:"id"`
	Slug            string         `db:"slug"`
	Code            sql.NullString `db:"tenant_code"`
	Name            string         `db:"name"`
	Description     sql.NullString `db:"description"`
	OperatingHours  sql.NullString `db:"operating_hours"`
	Floor           sql.NullString `db:"main_floor"`
	Phone           sql.NullString `db:"phone"`
	LogoURL         sql.NullString `db:"logo_url"`
	BannerURL       sql.NullString `db:"banner_url"`
	CategoryID      sql.NullInt64  `db:"category_id"`
	CategoryDisplay sql.NullString `db:"category_display"`
	Active          bool           `db:"is_active"`
	Featured        bool           `db:"is_featured"`
	New             bool           `db:"is_new"`
}

func (r tenantRow) toTenant() Tenant {
	return Tenant{
		ID:              r.ID,
		Slug:            r.Slug,
		Code:            r.Code.String,
		Name:            r.Name,
		Description:     r.Description.String,
		OperatingHours:  r.OperatingHours.String,
		Floor:           r.Floor.String,
		Phone:           r.Phone.String,
		LogoURL:         normalize.ImageURL(r.LogoURL.String),
		BannerURL:       normalize.ImageURL(r.BannerURL.String),
		CategoryID:      r.CategoryID.Int64,
		CategoryDisplay: r.CategoryDisplay.String,
		Active:          r.Active,
		Featured:        r.Featured,
		New:             r.New,
	}
}

func toTenants(rows []tenantRow) []Tenant {
	out := make([]Tenant, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toTenant())
	}
	return out
}
