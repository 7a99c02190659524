// internal/httpapi/respond.go
//
// JSON encoding and error translation shared by every handler.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/meridianmall/arcade/internal/contact"
	"github.com/meridianmall/arcade/internal/query"
)

type errBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// respond writes v as JSON.  Encoding failures are logged; by then the
// status line is on the wire and nothing more can be done for the client.
func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorw("response encode failed", "error", err)
	}
}

// fail maps repository errors onto the wire.
//
//   - validation errors name the offending field with 422,
//   - exhausted fallbacks surface as 503 so CDNs and clients retry later,
//   - a caller that has gone away gets nothing at all.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		return
	}

	var verr *contact.ValidationError
	switch {
	case errors.As(err, &verr):
		respond(w, http.StatusUnprocessableEntity, errBody{Error: verr.Error(), Field: verr.Field})
	case query.IsExhausted(err):
		zap.S().Warnw("request exhausted all data paths", "path", r.URL.Path, "error", err)
		respond(w, http.StatusServiceUnavailable, errBody{Error: "content temporarily unavailable"})
	default:
		zap.S().Errorw("request failed", "path", r.URL.Path, "error", err)
		respond(w, http.StatusInternalServerError, errBody{Error: "internal error"})
	}
}

func notFound(w http.ResponseWriter) {
	respond(w, http.StatusNotFound, errBody{Error: "not found"})
}

func badRequest(w http.ResponseWriter, msg string) {
	respond(w, http.StatusBadRequest, errBody{Error: msg})
}

/*──────────────────────────── query params ───────────────────────────*/

// queryInt reads an integer parameter, falling back to def when the
// parameter is absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func queryInt64(r *http.Request, name string) int64 {
	n, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// queryBoolPtr distinguishes an absent flag from one set false, which
// matters for tri-state filters such as featured.
func queryBoolPtr(r *http.Request, name string) *bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &b
}

// queryTime accepts RFC 3339 or a bare 2006-01-02 date.
func queryTime(r *http.Request, name string) *time.Time {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t
	}
	return nil
}

// queryTags splits a comma-separated tags parameter, dropping blanks.
func queryTags(r *http.Request) []string {
	raw := r.URL.Query().Get("tags")
	if raw == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// queryLimit bounds the limit parameter for featured and search routes.
func queryLimit(r *http.Request, def int) int {
	n := queryInt(r, "limit", def)
	if n <= 0 {
		return def
	}
	if n > query.MaxPerPage {
		return query.MaxPerPage
	}
	return n
}
