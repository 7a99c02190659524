// internal/tenant/repository_test.go
//
// The directory is where view loss bites hardest in practice: the view
// disappears mid-deploy and the join path must rebuild category_display.
package tenant

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/meridianmall/arcade/internal/query"
)

var tenantColumns = []string{
	"id", "slug", "tenant_code", "name", "description", "operating_hours",
	"main_floor", "phone", "logo_url", "banner_url", "category_id",
	"category_display", "is_active", "is_featured", "is_new",
}

func newMock(t *testing.T) (*Repo, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })
	return NewRepo(sqlx.NewDb(mockDB, "sqlmock")), mock
}

func TestListJoinFallbackKeepsCategoryDisplay(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM "+viewName)).
		WillReturnError(&pgconn.PgError{Code: "42P01", Message: "relation does not exist"})
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tenants t WHERE t.is_active = TRUE")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("tc.name AS category_display")).
		WithArgs(12, 0).
		WillReturnRows(sqlmock.NewRows(tenantColumns).
			AddRow(int64(41), "atlas-books", "L2-14", "Atlas Books", "Independent bookshop.",
				"10:00-22:00", "2", "+64 9 555 0141",
				"https://cdn.meridian.example/atlas-logo.png", nil,
				int64(6), "Books & Stationery", true, true, false))

	got, err := repo.List(context.Background(), ListParams{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got.Total != 1 || len(got.Items) != 1 {
		t.Fatalf("envelope = %+v", got)
	}

	store := got.Items[0]
	if store.CategoryDisplay != "Books & Stationery" {
		t.Fatalf("category_display lost on join path: %+v", store)
	}
	if store.Floor != "2" || !store.Featured {
		t.Fatalf("store = %+v", store)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestListFilterPlumbing(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"WHERE is_active = TRUE AND (name ILIKE $1 OR description ILIKE $2) AND category_id = $3 AND main_floor = $4")).
		WithArgs("%books%", "%books%", int64(6), "2").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	got, err := repo.List(context.Background(), ListParams{
		Search:     "books",
		CategoryID: 6,
		Floor:      "2",
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got.Total != 0 || got.HasMore {
		t.Fatalf("envelope = %+v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestBothPathsDownIsExhausted(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM "+viewName)).
		WillReturnError(&pgconn.PgError{Code: "42P01"})
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tenants t")).
		WillReturnError(&pgconn.PgError{Code: "42501"})

	_, err := repo.List(context.Background(), ListParams{})
	if !query.IsExhausted(err) {
		t.Fatalf("err = %v, want exhausted; the directory has no seed", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestBySlugUsesViewFirst(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM "+viewName+" WHERE slug = $1 AND is_active = TRUE LIMIT 1")).
		WithArgs("atlas-books").
		WillReturnRows(sqlmock.NewRows(tenantColumns).
			AddRow(int64(41), "atlas-books", nil, "Atlas Books", nil, nil, nil, nil,
				nil, nil, nil, nil, true, false, true))

	got, err := repo.BySlug(context.Background(), "atlas-books", false)
	if err != nil {
		t.Fatalf("BySlug: %v", err)
	}
	if got == nil || got.Name != "Atlas Books" || !got.New {
		t.Fatalf("got = %+v", got)
	}
	if got.Code != "" || got.CategoryDisplay != "" {
		t.Fatalf("null columns leaked: %+v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
