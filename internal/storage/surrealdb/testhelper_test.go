package surrealdb

import (
	"context"
	"testing"
	"time"

	"github.com/bobmcallan/pitfacts/internal/common"
	"github.com/bobmcallan/pitfacts/internal/models"
	tcommon "github.com/bobmcallan/pitfacts/tests/common"
	surreal "github.com/surrealdb/surrealdb.go"
)

// testDB starts the shared SurrealDB container and returns a connected *surreal.DB
// using a unique database name per test to ensure isolation.
func testDB(t *testing.T) *surreal.DB {
	t.Helper()

	cfg := tcommon.SurrealDBConfig(t, "pitfacts_test")
	ctx := context.Background()

	db, err := surreal.New(cfg.Address)
	if err != nil {
		t.Fatalf("connect to SurrealDB: %v", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": cfg.Username,
		"pass": cfg.Password,
	}); err != nil {
		t.Fatalf("sign in to SurrealDB: %v", err)
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		t.Fatalf("select namespace/database: %v", err)
	}

	if err := defineSchema(ctx, db); err != nil {
		t.Fatalf("define schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close(context.Background())
	})

	return db
}

// testLogger returns a silent logger for tests.
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
