// internal/query/errors_test.go
package query

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "dial tcp: i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"no rows", sql.ErrNoRows, false},
		{"wrapped no rows", fmt.Errorf("posts: %w", sql.ErrNoRows), false},
		{"deadline", context.DeadlineExceeded, true},
		{"bad conn", driver.ErrBadConn, true},
		{"conn done", sql.ErrConnDone, true},
		{"pg connection failure", &pgconn.PgError{Code: "08006"}, true},
		{"pg too many connections", &pgconn.PgError{Code: "53300"}, true},
		{"pg admin shutdown", &pgconn.PgError{Code: "57P01"}, true},
		{"pg undefined table", &pgconn.PgError{Code: "42P01"}, false},
		{"pg unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"wrapped pg error", fmt.Errorf("view: %w", &pgconn.PgError{Code: "08003"}), true},
		{"net timeout", timeoutErr{}, true},
		{"eof", io.EOF, true},
		{"unexpected eof", io.ErrUnexpectedEOF, true},
		{"plain error", errors.New("boom"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Transient(tc.err); got != tc.want {
				t.Fatalf("Transient(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestExhaustedError(t *testing.T) {
	cause := &pgconn.PgError{Code: "42P01", Message: "relation does not exist"}
	var err error = &ExhaustedError{Op: "posts.list", Paths: 2, Last: cause}

	if !IsExhausted(err) {
		t.Fatal("IsExhausted returned false for ExhaustedError")
	}
	if !IsExhausted(fmt.Errorf("handler: %w", err)) {
		t.Fatal("IsExhausted returned false for wrapped ExhaustedError")
	}
	if IsExhausted(errors.New("boom")) {
		t.Fatal("IsExhausted returned true for unrelated error")
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "42P01" {
		t.Fatalf("cause not reachable through Unwrap: %v", err)
	}

	msg := err.Error()
	for _, want := range []string{"posts.list", "2", "relation does not exist"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error message %q missing %q", msg, want)
		}
	}
}
