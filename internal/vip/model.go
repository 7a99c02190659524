package vip

import (
	"database/sql"
	"encoding/json"
	"sort"

	"go.uber.org/zap"
)

// Qualification bases.  A tier qualifies members either by cumulative
// spend or by a single-receipt amount, never both.
const (
	BasisSpend   = "spend"
	BasisReceipt = "receipt"
)

// Requirement is what a shopper must present to reach a tier.
type Requirement struct {
	Basis  string  `json:"basis"`
	Amount float64 `json:"amount"`
}

// Benefit is one perk attached to a tier.  Note and DisplayOrder come from
// the tier-benefit link row, the rest from the benefit itself.
type Benefit struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Icon         string `json:"icon,omitempty"`
	Note         string `json:"note,omitempty"`
	DisplayOrder int    `json:"displayOrder"`
}

// Tier is one loyalty level with its perks, ordered for the membership
// page.  Qualify is nil when the CMS row is misconfigured; the page then
// renders the tier without an enrollment threshold.
type Tier struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Level     int          `json:"tierLevel"`
	CardColor string       `json:"cardColor,omitempty"`
	Qualify   *Requirement `json:"qualifyingRequirement,omitempty"`
	Benefits  []Benefit    `json:"benefits"`
}

// tierRow is shared by both retrieval paths; Benefits is populated only by
// the view, which aggregates the link rows into a jsonb array.
type tierRow struct {
	ID         int64           `db:"id"`
	Name       string          `db:"name"`
	Level      int             `db:"tier_level"`
	CardColor  sql.NullString  `db:"card_color"`
	MinSpend   sql.NullFloat64 `db:"minimum_spend_amount"`
	MinReceipt sql.NullFloat64 `db:"minimum_receipt_amount"`
	Benefits   []byte          `db:"benefits"`
}

// linkRow is one benefit joined through vip_tier_benefits, used by the
// table-assembly path.
type linkRow struct {
	TierID       int64          `db:"tier_id"`
	ID           int64          `db:"id"`
	Title        string         `db:"title"`
	Description  sql.NullString `db:"description"`
	Icon         sql.NullString `db:"icon"`
	Note         sql.NullString `db:"benefit_note"`
	DisplayOrder int            `db:"display_order"`
}

func (l linkRow) toBenefit() Benefit {
	return Benefit{
		ID:           l.ID,
		Title:        l.Title,
		Description:  l.Description.String,
		Icon:         l.Icon.String,
		Note:         l.Note.String,
		DisplayOrder: l.DisplayOrder,
	}
}

func (r tierRow) toTier(benefits []Benefit) Tier {
	if benefits == nil {
		benefits = []Benefit{}
	}
	return Tier{
		ID:        r.ID,
		Name:      r.Name,
		Level:     r.Level,
		CardColor: r.CardColor.String,
		Qualify:   r.qualification(),
		Benefits:  benefits,
	}
}

// qualification picks the amount that drives enrollment.  Exactly one of
// the two columns should be set; rows violating that are logged and the
// spend amount wins when both are present.
func (r tierRow) qualification() *Requirement {
	switch {
	case r.MinSpend.Valid && r.MinReceipt.Valid:
		zap.S().Warnw("vip tier has both qualification amounts",
			"tier", r.Name, "using", BasisSpend)
		return &Requirement{Basis: BasisSpend, Amount: r.MinSpend.Float64}
	case r.MinSpend.Valid:
		return &Requirement{Basis: BasisSpend, Amount: r.MinSpend.Float64}
	case r.MinReceipt.Valid:
		return &Requirement{Basis: BasisReceipt, Amount: r.MinReceipt.Float64}
	default:
		zap.S().Warnw("vip tier has no qualification amount", "tier", r.Name)
		return nil
	}
}

// benefitDoc mirrors one element of the view's aggregated benefits column.
type benefitDoc struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Icon         string `json:"icon"`
	Note         string `json:"benefit_note"`
	DisplayOrder int    `json:"display_order"`
}

// parseBenefits decodes the view's jsonb aggregate.  A corrupt column
// yields an empty list rather than failing the whole tier fetch.
func parseBenefits(raw []byte) []Benefit {
	if len(raw) == 0 {
		return []Benefit{}
	}
	var docs []benefitDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		zap.S().Warnw("unreadable vip benefits column", "error", err)
		return []Benefit{}
	}
	out := make([]Benefit, 0, len(docs))
	for _, d := range docs {
		out = append(out, Benefit{
			ID:           d.ID,
			Title:        d.Title,
			Description:  d.Description,
			Icon:         d.Icon,
			Note:         d.Note,
			DisplayOrder: d.DisplayOrder,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out
}
