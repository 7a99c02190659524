// internal/category/repository_test.go
package category

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

func newMock(t *testing.T) (*Repo, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })
	return NewRepo(sqlx.NewDb(mockDB, "sqlmock")), mock
}

func categoryRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "slug", "display_order", "is_active"}).
		AddRow(int64(1), "News", "news", 1, true).
		AddRow(int64(2), "Dining", "dining", 2, true)
}

func TestAllCachesResult(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`SELECT id, name, slug, display_order, is_active FROM\s+blog_categories`).
		WillReturnRows(categoryRows())

	first, err := repo.All(context.Background())
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(first) != 2 || first[0].Slug != "news" {
		t.Fatalf("categories = %+v", first)
	}

	// Second call must come from the cache; no expectation is queued.
	second, err := repo.All(context.Background())
	if err != nil {
		t.Fatalf("All (cached): %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("cached categories = %+v", second)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestAllRetriesTransientFailure(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`FROM\s+blog_categories`).
		WillReturnError(&pgconn.PgError{Code: "08006"})
	mock.ExpectQuery(`FROM\s+blog_categories`).
		WillReturnRows(categoryRows())

	got, err := repo.All(context.Background())
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("categories = %+v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestAllInvalidate(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`FROM\s+blog_categories`).WillReturnRows(categoryRows())
	mock.ExpectQuery(`FROM\s+blog_categories`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "display_order", "is_active"}).
			AddRow(int64(3), "Events", "events", 1, true))

	if _, err := repo.All(context.Background()); err != nil {
		t.Fatalf("All: %v", err)
	}
	repo.Invalidate()

	got, err := repo.All(context.Background())
	if err != nil {
		t.Fatalf("All after invalidate: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "events" {
		t.Fatalf("categories = %+v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
