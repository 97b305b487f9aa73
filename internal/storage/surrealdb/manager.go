package surrealdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/bobmcallan/carfeed/internal/common"
	"github.com/bobmcallan/carfeed/internal/interfaces"
	"github.com/surrealdb/surrealdb.go"
)

// Manager implements interfaces.StorageManager using SurrealDB.
type Manager struct {
	db            *surrealdb.DB
	logger        *common.Logger
	feedbackStore *FeedbackStore
}

// NewManager creates a new StorageManager connected to SurrealDB.
func NewManager(ctx context.Context, logger *common.Logger, config common.StorageConfig) (*Manager, error) {
	db, err := surrealdb.New(config.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Username,
		"pass": config.Password,
	}); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, config.Namespace, config.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	if err := defineSchema(ctx, db); err != nil {
		db.Close(ctx)
		return nil, err
	}

	logger.Info().
		Str("address", config.Address).
		Str("namespace", config.Namespace).
		Str("database", config.Database).
		Msg("SurrealDB storage manager initialized")

	return &Manager{
		db:            db,
		logger:        logger,
		feedbackStore: NewFeedbackStore(db, logger),
	}, nil
}

// defineSchema creates the feedback table and the indexes used by list
// queries. SurrealDB v3 errors on querying tables that do not exist.
func defineSchema(ctx context.Context, db *surrealdb.DB) error {
	statements := []string{
		"DEFINE TABLE IF NOT EXISTS " + feedbackTable + " SCHEMALESS",
		"DEFINE INDEX IF NOT EXISTS feedback_status ON " + feedbackTable + " FIELDS status",
		"DEFINE INDEX IF NOT EXISTS feedback_created ON " + feedbackTable + " FIELDS created_at",
	}
	for _, sql := range statements {
		if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
			return fmt.Errorf("failed to define schema (%s): %w", sql, err)
		}
	}
	return nil
}

func (m *Manager) FeedbackStore() interfaces.FeedbackStore {
	return m.feedbackStore
}

func (m *Manager) Backend() string {
	return common.BackendSurrealDB
}

func (m *Manager) Close() error {
	m.db.Close(context.Background())
	return nil
}

// isNotFoundError reports whether err is SurrealDB's missing-record error.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "does not exist")
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
