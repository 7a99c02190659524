// internal/query/resolver_test.go
//
// Exercises the chain mechanics with plain closures; repository tests cover
// the SQL side with sqlmock.
package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestResolveFirstPathWins(t *testing.T) {
	joinCalls := 0
	res, err := Resolve(context.Background(), "posts.list", []Strategy[[]string]{
		{Name: "view", Run: func(context.Context) ([]string, error) {
			return []string{"a"}, nil
		}},
		{Name: "join", Run: func(context.Context) ([]string, error) {
			joinCalls++
			return nil, errors.New("must not run")
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Source != "view" || res.Degraded {
		t.Fatalf("res = %+v, want source view, not degraded", res)
	}
	if joinCalls != 0 {
		t.Fatal("secondary path ran after primary success")
	}
}

func TestResolveFallsBackOnFailure(t *testing.T) {
	res, err := Resolve(context.Background(), "tenants.list", []Strategy[[]string]{
		{Name: "view", Run: func(context.Context) ([]string, error) {
			return nil, &pgconn.PgError{Code: "42P01"}
		}},
		{Name: "join", Run: func(context.Context) ([]string, error) {
			return []string{"b"}, nil
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Source != "join" || !res.Degraded {
		t.Fatalf("res = %+v, want degraded join result", res)
	}
	if len(res.Value) != 1 || res.Value[0] != "b" {
		t.Fatalf("value = %v", res.Value)
	}
}

func TestResolveEmptyFirstPathEscalates(t *testing.T) {
	empty := func(v []string) bool { return len(v) == 0 }

	res, err := Resolve(context.Background(), "whatson.list", []Strategy[[]string]{
		{Name: "view", EmptyIsMiss: empty, Run: func(context.Context) ([]string, error) {
			return []string{}, nil
		}},
		{Name: "table", EmptyIsMiss: empty, Run: func(context.Context) ([]string, error) {
			return []string{}, nil
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Empty from a deeper path is a final answer, not a miss.
	if res.Source != "table" || !res.Degraded {
		t.Fatalf("res = %+v, want degraded table result", res)
	}
	if len(res.Value) != 0 {
		t.Fatalf("value = %v, want empty", res.Value)
	}
}

func TestResolveExhausted(t *testing.T) {
	viewErr := &pgconn.PgError{Code: "42P01"}
	joinErr := errors.New("join exploded")

	_, err := Resolve(context.Background(), "promotions.list", []Strategy[int]{
		{Name: "view", Run: func(context.Context) (int, error) { return 0, viewErr }},
		{Name: "join", Run: func(context.Context) (int, error) { return 0, joinErr }},
	})

	var ex *ExhaustedError
	if !errors.As(err, &ex) {
		t.Fatalf("err = %v, want *ExhaustedError", err)
	}
	if ex.Op != "promotions.list" || ex.Paths != 2 {
		t.Fatalf("exhausted = %+v", ex)
	}
	if !errors.Is(err, joinErr) {
		t.Fatal("last cause not reachable through the exhausted error")
	}
}

func TestResolveCancellationDoesNotCascade(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	joinCalls := 0
	_, err := Resolve(ctx, "posts.list", []Strategy[int]{
		{Name: "view", Run: func(ctx context.Context) (int, error) {
			cancel()
			return 0, ctx.Err()
		}},
		{Name: "join", Run: func(context.Context) (int, error) {
			joinCalls++
			return 0, nil
		}},
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if IsExhausted(err) {
		t.Fatal("cancellation surfaced as exhaustion")
	}
	if joinCalls != 0 {
		t.Fatal("chain kept walking after cancellation")
	}
}

func TestResolveRetriesWithinPath(t *testing.T) {
	attempts := 0
	res, err := Resolve(context.Background(), "posts.one", []Strategy[string]{
		{
			Name:  "view",
			Retry: Policy{Attempts: 1, Delay: time.Millisecond},
			Run: func(context.Context) (string, error) {
				attempts++
				if attempts == 1 {
					return "", &pgconn.PgError{Code: "08006"}
				}
				return "hello", nil
			},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d, want 2", attempts)
	}
	if res.Source != "view" || res.Degraded {
		t.Fatalf("res = %+v, want primary success", res)
	}
}

func TestResolveNoPaths(t *testing.T) {
	if _, err := Resolve[int](context.Background(), "posts.list", nil); err == nil {
		t.Fatal("expected error for empty strategy chain")
	}
}
