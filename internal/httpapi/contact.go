// internal/httpapi/contact.go
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/meridianmall/arcade/internal/contact"
)

// maxContactBody caps the request body; the largest legitimate enquiry
// is a few kilobytes of text.
const maxContactBody = 64 << 10

// submitContact serves POST /v1/contact.  Submissions are written exactly
// once and never collapsed or retried; a duplicate enquiry is worse than
// a failed one the visitor can resend.
func (h *Handler) submitContact(w http.ResponseWriter, r *http.Request) {
	var in contact.Input
	r.Body = http.MaxBytesReader(w, r.Body, maxContactBody)
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		badRequest(w, "request body must be a JSON contact submission")
		return
	}
	sub, err := h.Contacts.Submit(r.Context(), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusCreated, sub)
}
