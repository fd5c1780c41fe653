package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/pitfacts/internal/common"
)

func TestNewStorageManager_UnknownBackend(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Storage.Backend = "badger"

	mgr, err := NewStorageManager(common.NewSilentLogger(), cfg)
	require.Error(t, err)
	assert.Nil(t, mgr)
	assert.Contains(t, err.Error(), "unknown storage backend: badger")
}

func TestNewStorageManager_PostgresBadDSN(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Storage.Backend = common.BackendPostgres
	cfg.Storage.Postgres.DSN = "://not a dsn"

	_, err := NewStorageManager(common.NewSilentLogger(), cfg)
	assert.Error(t, err)
}
