// Package surrealdb implements pitfacts storage on SurrealDB.
package surrealdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/bobmcallan/pitfacts/internal/common"
	"github.com/bobmcallan/pitfacts/internal/interfaces"
	"github.com/surrealdb/surrealdb.go"
)

// Table names mirror the relational schema so exports line up across backends.
const (
	tableCompanies       = "companies"
	tableFiscalYear      = "fiscal_year_metadata"
	tableFieldCatalog    = "field_catalog"
	tableFieldCategories = "field_categories"
	tableFieldPriorities = "field_priorities"
	tableFacts           = "financial_facts"
	tableEvents          = "point_in_time_events"
	tableTTM             = "ttm_metrics"
)

var schema = []string{
	"DEFINE INDEX IF NOT EXISTS facts_ticker_field ON financial_facts FIELDS ticker, field_name",
	"DEFINE INDEX IF NOT EXISTS events_ticker ON point_in_time_events FIELDS ticker",
	"DEFINE INDEX IF NOT EXISTS ttm_ticker_metric ON ttm_metrics FIELDS ticker, metric_name",
}

// Manager implements interfaces.StorageManager using SurrealDB.
type Manager struct {
	db     *surrealdb.DB
	logger *common.Logger

	companyStore *CompanyStore
	fieldStore   *FieldStore
	factStore    *FactStore
	eventStore   *EventStore
	ttmStore     *TTMStore
}

// NewManager creates a new StorageManager connected to SurrealDB.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	ctx := context.Background()
	cfg := config.Storage.SurrealDB

	// Connect to SurrealDB
	db, err := surrealdb.New(cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	// Sign in
	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": cfg.Username,
		"pass": cfg.Password,
	}); err != nil {
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	// Select namespace and database
	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	if err := defineSchema(ctx, db); err != nil {
		return nil, err
	}

	m := newManager(db, logger)

	logger.Info().
		Str("address", cfg.Address).
		Str("namespace", cfg.Namespace).
		Str("database", cfg.Database).
		Msg("SurrealDB storage manager initialized")

	return m, nil
}

func newManager(db *surrealdb.DB, logger *common.Logger) *Manager {
	return &Manager{
		db:           db,
		logger:       logger,
		companyStore: NewCompanyStore(db, logger),
		fieldStore:   NewFieldStore(db, logger),
		factStore:    NewFactStore(db, logger),
		eventStore:   NewEventStore(db, logger),
		ttmStore:     NewTTMStore(db, logger),
	}
}

// defineSchema creates every table and index. SurrealDB v3 errors on querying non-existent tables.
func defineSchema(ctx context.Context, db *surrealdb.DB) error {
	tables := []string{tableCompanies, tableFiscalYear, tableFieldCatalog, tableFieldCategories, tableFieldPriorities, tableFacts, tableEvents, tableTTM}
	for _, table := range tables {
		sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", table)
		if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
			return fmt.Errorf("failed to define table %s: %w", table, err)
		}
	}
	for _, sql := range schema {
		if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
			return fmt.Errorf("failed to define index: %w", err)
		}
	}
	return nil
}

func (m *Manager) CompanyStore() interfaces.CompanyStore {
	return m.companyStore
}

func (m *Manager) FieldStore() interfaces.FieldStore {
	return m.fieldStore
}

func (m *Manager) FactStore() interfaces.FactStore {
	return m.factStore
}

func (m *Manager) EventStore() interfaces.EventStore {
	return m.eventStore
}

func (m *Manager) TTMStore() interfaces.TTMStore {
	return m.ttmStore
}

func (m *Manager) Backend() string {
	return common.BackendSurrealDB
}

func (m *Manager) Close() error {
	m.db.Close(context.Background())
	return nil
}

// queryRows runs sql and returns the rows of its first statement.
func queryRows[T any](ctx context.Context, db *surrealdb.DB, sql string, vars map[string]any) ([]T, error) {
	results, err := surrealdb.Query[[]T](ctx, db, sql, vars)
	if err != nil {
		return nil, err
	}
	if results == nil || len(*results) == 0 {
		return nil, nil
	}
	return (*results)[0].Result, nil
}

// isNotFoundError matches the SDK's error for a missing record.
func isNotFoundError(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "not found")
}

// tickerToID converts a ticker like "BRK.B" to a safe SurrealDB record ID.
func tickerToID(ticker string) string {
	return strings.ReplaceAll(strings.ToUpper(ticker), ".", "_")
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
