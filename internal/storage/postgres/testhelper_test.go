package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bobmcallan/pitfacts/internal/common"
	"github.com/bobmcallan/pitfacts/internal/models"
	tcommon "github.com/bobmcallan/pitfacts/tests/common"
)

// testDSN creates a fresh database on the shared Postgres container and returns its DSN.
func testDSN(t *testing.T) string {
	t.Helper()
	return tcommon.CreatePostgresDatabase(t)
}

// testPool returns a migrated pool on a per-test database.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pool, err := pgxpool.New(context.Background(), testDSN(t))
	if err != nil {
		t.Fatalf("connect to test database: %v", err)
	}
	if err := Migrate(context.Background(), pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func testLogger() *common.Logger {
	return common.NewSilentLogger()
}

func date(s string) time.Time {
	t, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func fval(v float64) *float64 { return &v }

func ival(v int) *int { return &v }

func testFact(ticker, field, end, filed, fp, accn string, value float64) models.NormalizedFact {
	return models.NormalizedFact{
		Ticker:        ticker,
		CIK:           "0000320193",
		EntityName:    "Apple Inc.",
		FieldName:     field,
		FieldLabel:    field,
		StatementType: models.StatementAssets,
		TemporalType:  models.PointInTime,
		PeriodEnd:     date(end),
		Value:         fval(value),
		Unit:          "USD",
		FilingDate:    date(filed),
		FiscalYear:    ival(date(end).Year()),
		FiscalPeriod:  fp,
		Form:          "10-K",
		Taxonomy:      "us-gaap",
		AccountNumber: accn,
	}
}
