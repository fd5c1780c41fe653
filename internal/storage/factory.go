// Package storage selects and constructs the configured persistence backend.
package storage

import (
	"fmt"

	"github.com/bobmcallan/pitfacts/internal/common"
	"github.com/bobmcallan/pitfacts/internal/interfaces"
	"github.com/bobmcallan/pitfacts/internal/storage/postgres"
	"github.com/bobmcallan/pitfacts/internal/storage/surrealdb"
)

// NewStorageManager creates a storage manager for config.Storage.Backend.
// Supported backends: "surrealdb" (default), "postgres".
func NewStorageManager(logger *common.Logger, config *common.Config) (interfaces.StorageManager, error) {
	backend := config.Storage.Backend
	if backend == "" {
		backend = common.BackendSurrealDB
	}

	switch backend {
	case common.BackendSurrealDB:
		mgr, err := surrealdb.NewManager(logger, config)
		if err != nil {
			return nil, err
		}
		return mgr, nil

	case common.BackendPostgres:
		mgr, err := postgres.NewManager(logger, config)
		if err != nil {
			return nil, err
		}
		return mgr, nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: %s, %s)", backend, common.BackendSurrealDB, common.BackendPostgres)
	}
}
