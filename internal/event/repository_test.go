// internal/event/repository_test.go
package event

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/meridianmall/arcade/internal/query"
)

var eventColumns = []string{
	"id", "title", "slug", "description", "location", "start_at", "end_at",
	"images", "tags", "is_featured", "is_published",
}

var startAt = time.Date(2026, 9, 4, 18, 0, 0, 0, time.UTC)

func newMock(t *testing.T) (*Repo, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })
	return NewRepo(sqlx.NewDb(mockDB, "sqlmock")), mock
}

func TestListNormalizesImages(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM events WHERE is_published = TRUE")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+eventCols+" FROM events")).
		WithArgs(12, 0).
		WillReturnRows(sqlmock.NewRows(eventColumns).
			AddRow(int64(11), "Night Market", "night-market", "Forty stalls.", "West Court",
				startAt, nil,
				[]byte(`["https://cdn.meridian.example/nm.jpg","https://cdn.meridian.example/nm.heic"]`),
				[]byte(`"[\"market\",\"food\"]"`),
				true, true))

	got, err := repo.List(context.Background(), ListParams{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got.Total != 1 || got.HasMore || len(got.Items) != 1 {
		t.Fatalf("envelope = %+v", got)
	}

	ev := got.Items[0]
	if len(ev.Images) != 1 || ev.Images[0] != "https://cdn.meridian.example/nm.jpg" {
		t.Fatalf("heic image survived sanitization: %v", ev.Images)
	}
	if len(ev.Tags) != 2 || ev.Tags[0] != "market" {
		t.Fatalf("double-encoded tags not normalized: %v", ev.Tags)
	}
	if ev.EndAt != nil {
		t.Fatalf("EndAt = %v, want nil", ev.EndAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestListDateWindow(t *testing.T) {
	repo, mock := newMock(t)

	from := startAt
	to := startAt.AddDate(0, 1, 0)
	mock.ExpectQuery(regexp.QuoteMeta("start_at >= $1 AND start_at <= $2")).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	got, err := repo.List(context.Background(), ListParams{From: &from, To: &to, Admin: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got.Total != 0 || len(got.Items) != 0 || got.Items == nil {
		t.Fatalf("envelope = %+v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestListExhaustedSurfacesTypedError(t *testing.T) {
	repo, mock := newMock(t)

	// Permanent failure, single path: the error must arrive typed, not as
	// canned data.  Events have no seed.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM events")).
		WillReturnError(&pgconn.PgError{Code: "42501", Message: "permission denied"})

	_, err := repo.List(context.Background(), ListParams{})
	if !query.IsExhausted(err) {
		t.Fatalf("err = %v, want exhausted", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestBySlugNotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE slug = $1 AND is_published = TRUE LIMIT 1")).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	got, err := repo.BySlug(context.Background(), "nope", false)
	if err != nil {
		t.Fatalf("BySlug: %v", err)
	}
	if got != nil {
		t.Fatalf("got = %+v, want nil", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSearchBounded(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("(title ILIKE $1 OR description ILIKE $2)")).
		WithArgs("%market%", "%market%", 4).
		WillReturnRows(sqlmock.NewRows(eventColumns).
			AddRow(int64(11), "Night Market", "night-market", "", "", startAt, nil,
				[]byte(`[]`), []byte(`[]`), false, true))

	got, err := repo.Search(context.Background(), "market", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got = %+v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
