// internal/vip/repository_test.go
package vip

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

var tierColumns = []string{
	"id", "name", "tier_level", "card_color",
	"minimum_spend_amount", "minimum_receipt_amount",
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

func TestTiersFromView(t *testing.T) {
	repo, mock := newMock(t)

	benefits := `[
		{"id":2,"title":"Lounge access","display_order":2},
		{"id":1,"title":"Free parking","benefit_note":"weekdays only","display_order":1}
	]`
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT "+tierCols+", benefits FROM vip_tiers_with_benefits ORDER BY tier_level")).
		WillReturnRows(sqlmock.NewRows(append(tierColumns, "benefits")).
			AddRow(int64(1), "Silver", 1, "#c0c0c0", 500.0, nil, []byte(benefits)).
			AddRow(int64(2), "Gold", 2, "#ffd700", nil, nil, nil))

	got, err := repo.Tiers(context.Background())
	if err != nil {
		t.Fatalf("Tiers: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("tiers = %+v", got)
	}

	silver := got[0]
	if silver.Qualify == nil || silver.Qualify.Basis != BasisSpend || silver.Qualify.Amount != 500 {
		t.Fatalf("Qualify = %+v", silver.Qualify)
	}
	if len(silver.Benefits) != 2 || silver.Benefits[0].Title != "Free parking" {
		t.Fatalf("benefits not in display order: %+v", silver.Benefits)
	}
	if silver.Benefits[0].Note != "weekdays only" {
		t.Fatalf("Note = %q", silver.Benefits[0].Note)
	}

	gold := got[1]
	if gold.Qualify != nil {
		t.Fatalf("misconfigured tier got a requirement: %+v", gold.Qualify)
	}
	if gold.Benefits == nil || len(gold.Benefits) != 0 {
		t.Fatalf("Benefits = %#v, want empty slice", gold.Benefits)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestTiersSpendWinsWhenBothSet(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("FROM vip_tiers_with_benefits").
		WillReturnRows(sqlmock.NewRows(append(tierColumns, "benefits")).
			AddRow(int64(1), "Silver", 1, nil, 500.0, 120.0, []byte(`[]`)))

	got, err := repo.Tiers(context.Background())
	if err != nil {
		t.Fatalf("Tiers: %v", err)
	}
	if got[0].Qualify == nil || got[0].Qualify.Basis != BasisSpend {
		t.Fatalf("Qualify = %+v, want spend basis", got[0].Qualify)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestTiersAssembledFromTables(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("FROM vip_tiers_with_benefits").
		WillReturnError(&pgconn.PgError{Code: "42P01", Message: "relation does not exist"})

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT "+tierCols+" FROM vip_tiers ORDER BY tier_level")).
		WillReturnRows(sqlmock.NewRows(tierColumns).
			AddRow(int64(1), "Silver", 1, nil, 500.0, nil).
			AddRow(int64(2), "Gold", 2, nil, nil, 250.0))

	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM vip_tier_benefits tb JOIN vip_benefits b ON b.id = tb.benefit_id")).
		WillReturnRows(sqlmock.NewRows([]string{
			"tier_id", "id", "title", "description", "icon", "benefit_note", "display_order",
		}).
			AddRow(int64(1), int64(1), "Free parking", nil, "car", "weekdays only", 1).
			AddRow(int64(1), int64(2), "Lounge access", "Level 3 lounge.", nil, nil, 2))

	got, err := repo.Tiers(context.Background())
	if err != nil {
		t.Fatalf("Tiers: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("tiers = %+v", got)
	}
	if len(got[0].Benefits) != 2 || got[0].Benefits[1].Description != "Level 3 lounge." {
		t.Fatalf("assembled benefits = %+v", got[0].Benefits)
	}
	if got[1].Benefits == nil || len(got[1].Benefits) != 0 {
		t.Fatalf("tier without links = %#v, want empty slice", got[1].Benefits)
	}
	if got[1].Qualify == nil || got[1].Qualify.Basis != BasisReceipt || got[1].Qualify.Amount != 250 {
		t.Fatalf("Qualify = %+v", got[1].Qualify)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestTiersCached(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("FROM vip_tiers_with_benefits").
		WillReturnRows(sqlmock.NewRows(append(tierColumns, "benefits")).
			AddRow(int64(1), "Silver", 1, nil, 500.0, nil, []byte(`[]`)))

	if _, err := repo.Tiers(context.Background()); err != nil {
		t.Fatalf("first Tiers: %v", err)
	}
	// Second call must be served from cache; sqlmock would fail the test
	// on any unexpected query.
	got, err := repo.Tiers(context.Background())
	if err != nil {
		t.Fatalf("second Tiers: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Silver" {
		t.Fatalf("cached tiers = %+v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestTiersMalformedBenefitsColumn(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("FROM vip_tiers_with_benefits").
		WillReturnRows(sqlmock.NewRows(append(tierColumns, "benefits")).
			AddRow(int64(1), "Silver", 1, nil, 500.0, nil, []byte(`{broken`)))

	got, err := repo.Tiers(context.Background())
	if err != nil {
		t.Fatalf("Tiers: %v", err)
	}
	if got[0].Benefits == nil || len(got[0].Benefits) != 0 {
		t.Fatalf("Benefits = %#v, want empty slice", got[0].Benefits)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestByLevel(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("FROM vip_tiers_with_benefits").
		WillReturnRows(sqlmock.NewRows(append(tierColumns, "benefits")).
			AddRow(int64(1), "Silver", 1, nil, 500.0, nil, []byte(`[]`)).
			AddRow(int64(2), "Gold", 2, nil, 900.0, nil, []byte(`[]`)))

	got, err := repo.ByLevel(context.Background(), 2)
	if err != nil {
		t.Fatalf("ByLevel: %v", err)
	}
	if got == nil || got.Name != "Gold" {
		t.Fatalf("got = %+v", got)
	}

	missing, err := repo.ByLevel(context.Background(), 9)
	if err != nil {
		t.Fatalf("ByLevel: %v", err)
	}
	if missing != nil {
		t.Fatalf("got = %+v, want nil", missing)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
