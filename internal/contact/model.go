package contact

import (
	"fmt"
	"time"
)

// Enquiry types the form accepts.  The set is closed; the UI select box
// and the oneof rule below must agree.
const (
	EnquiryGeneral  = "general"
	EnquiryLeasing  = "leasing"
	EnquiryEvents   = "events"
	EnquiryFeedback = "feedback"
	EnquiryMedia    = "media"
)

// Input is a contact-form submission as posted by the site.
type Input struct {
	FullName string `json:"fullName" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Phone    string `json:"phone" validate:"omitempty,min=5,max=32"`
	Enquiry  string `json:"enquiryType" validate:"required,oneof=general leasing events feedback media"`
	Details  string `json:"enquiryDetails" validate:"required,min=10,max=4000"`
}

// Submission is the persisted row.  ID and SubmittedDate are assigned by
// the database.
type Submission struct {
	ID            int64     `json:"id"`
	FullName      string    `json:"fullName"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone,omitempty"`
	Enquiry       string    `json:"enquiryType"`
	Details       string    `json:"enquiryDetails"`
	SubmittedDate time.Time `json:"submittedDate"`
}

// ValidationError names the first field that failed and the rule it
// broke, so the form can highlight it.
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("contact: field %q fails rule %q", e.Field, e.Rule)
}
