// internal/contact/repository.go
//
// Contact-form persistence.
//
// Context
// -------
// This is the only write the site performs.  It is never retried: a
// timeout after the row landed would duplicate the enquiry, and the
// leasing team answers duplicates by hand.  Failures go back to the form
// with the backend's message attached.
package contact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/meridianmall/arcade/internal/metrics"
)

// validate reports field names by their json tag so the UI can address
// the offending input directly.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Repo persists contact submissions.
type Repo struct {
	db *sqlx.DB
}

// NewRepo wires a repository onto an open pool.
func NewRepo(db *sqlx.DB) *Repo { return &Repo{db: db} }

// Submit validates and stores one enquiry.  An empty phone persists as
// NULL.  The returned Submission carries the server-assigned id and
// submission date.
func (r *Repo) Submit(ctx context.Context, in Input) (*Submission, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Details = strings.TrimSpace(in.Details)

	if err := validate.Struct(in); err != nil {
		metrics.ContactSubmissionsTotal.WithLabelValues("invalid").Inc()
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, &ValidationError{Field: verrs[0].Field(), Rule: verrs[0].Tag()}
		}
		return nil, err
	}

	phone := sql.NullString{String: in.Phone, Valid: in.Phone != ""}

	var row struct {
		ID            int64     `db:"id"`
		SubmittedDate time.Time `db:"submitted_date"`
	}
	const q = `
    INSERT INTO contact_submissions (full_name, email, phone, enquiry_type, enquiry_details)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id, submitted_date`
	if err := r.db.GetContext(ctx, &row, q,
		in.FullName, in.Email, phone, in.Enquiry, in.Details); err != nil {
		metrics.ContactSubmissionsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("contact submit: %w", err)
	}

	metrics.ContactSubmissionsTotal.WithLabelValues("accepted").Inc()
	return &Submission{
		ID:            row.ID,
		FullName:      in.FullName,
		Email:         in.Email,
		Phone:         in.Phone,
		Enquiry:       in.Enquiry,
		Details:       in.Details,
		SubmittedDate: row.SubmittedDate,
	}, nil
}
