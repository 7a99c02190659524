// internal/query/errors.go
//
// Error taxonomy for the data layer.
//
// Context
// -------
// Three kinds of failure leave a repository, and callers must be able to
// tell them apart without string matching:
//
//   - not found:   a single-row fetch matched nothing.  Repositories return
//     (nil, nil); sql.ErrNoRows never crosses a package boundary.
//   - transient:   the backend or the network hiccuped.  Worth retrying.
//   - exhausted:   every retrieval path for an operation failed.  Surfaces
//     as *ExhaustedError so the HTTP layer can degrade deliberately.
//
// Transience is decided structurally (error types and SQLSTATE classes),
// never by sniffing message text.  A missing view (42P01) is a deploy or
// migration problem: retrying cannot fix it, so it is classified permanent
// and escalates to the next retrieval path immediately.
package query

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrEmptyResult marks a primary strategy that succeeded but produced no
// usable rows where the caller declared that impossible for healthy data.
// The resolver treats it like any other failure and escalates.
var ErrEmptyResult = errors.New("result empty where data was expected")

// ExhaustedError reports that every retrieval path for an operation failed.
// Last holds the final path's error and is reachable through errors.Is and
// errors.As chains.
type ExhaustedError struct {
	Op    string
	Paths int
	Last  error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("query %s: all %d retrieval paths failed: %v", e.Op, e.Paths, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// IsExhausted reports whether err wraps an ExhaustedError.
func IsExhausted(err error) bool {
	var ex *ExhaustedError
	return errors.As(err, &ex)
}

// Transient reports whether err is worth retrying.  Cancellation is the
// caller giving up and is never transient; absence of rows is an answer,
// not a fault.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return transientPgCode(pgErr.Code)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// A connection torn down mid-response surfaces as a bare EOF from the
	// wire protocol.
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	return false
}

// transientPgCode classifies SQLSTATE codes.  Class 08 is connection
// exceptions, class 53 is insufficient resources (too many connections,
// out of memory), and the listed 57 codes are admin-initiated shutdowns
// that resolve once the server is back.
func transientPgCode(code string) bool {
	switch {
	case strings.HasPrefix(code, "08"):
		return true
	case strings.HasPrefix(code, "53"):
		return true
	case code == "57P01" || code == "57P02" || code == "57P03":
		return true
	}
	return false
}
