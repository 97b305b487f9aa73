// Package storage selects the feedback storage backend from configuration.
package storage

import (
	"context"
	"fmt"

	"github.com/bobmcallan/carfeed/internal/common"
	"github.com/bobmcallan/carfeed/internal/interfaces"
	"github.com/bobmcallan/carfeed/internal/storage/sqlstore"
	"github.com/bobmcallan/carfeed/internal/storage/surrealdb"
)

// NewStorageManager creates a StorageManager for the configured backend.
// Supported backends: "sqlite" (default), "postgres", "surrealdb".
func NewStorageManager(ctx context.Context, logger *common.Logger, config common.StorageConfig) (interfaces.StorageManager, error) {
	backend := config.Backend
	if backend == "" {
		backend = common.BackendSQLite
	}
	config.Backend = backend

	switch backend {
	case common.BackendSQLite, common.BackendPostgres:
		return sqlstore.NewManager(ctx, logger, config)

	case common.BackendSurrealDB:
		return surrealdb.NewManager(ctx, logger, config)

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: sqlite, postgres, surrealdb)", backend)
	}
}
