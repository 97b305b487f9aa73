// Package sqlstore persists feedback in SQLite or PostgreSQL through sqlx.
package sqlstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bobmcallan/carfeed/internal/common"
	"github.com/bobmcallan/carfeed/internal/interfaces"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	_ "modernc.org/sqlite"
)

const driverSQLite = "sqlite"

func init() {
	// modernc registers as "sqlite", which sqlx does not know by name
	sqlx.BindDriver(driverSQLite, sqlx.QUESTION)
}

// Manager implements interfaces.StorageManager over a SQL database.
type Manager struct {
	db            *sqlx.DB
	backend       string
	logger        *common.Logger
	feedbackStore *FeedbackStore
}

// NewManager opens the configured database and creates the schema.
func NewManager(ctx context.Context, logger *common.Logger, config common.StorageConfig) (*Manager, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch config.Backend {
	case common.BackendPostgres:
		db, err = openPostgres(ctx, config.DSN)
	case common.BackendSQLite, "":
		db, err = openSQLite(ctx, config.DSN)
	default:
		return nil, fmt.Errorf("unsupported SQL backend: %s", config.Backend)
	}
	if err != nil {
		return nil, err
	}

	backend := config.Backend
	if backend == "" {
		backend = common.BackendSQLite
	}

	if err := createSchema(ctx, db, backend); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info().
		Str("backend", backend).
		Msg("SQL storage manager initialized")

	return &Manager{
		db:            db,
		backend:       backend,
		logger:        logger,
		feedbackStore: NewFeedbackStore(db, logger),
	}, nil
}

func openPostgres(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

func openSQLite(ctx context.Context, path string) (*sqlx.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sqlx.Open(driverSQLite, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One writer avoids SQLITE_BUSY under concurrent requests
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	return db, nil
}

func createSchema(ctx context.Context, db *sqlx.DB, backend string) error {
	timestampType := "TIMESTAMP"
	if backend == common.BackendPostgres {
		timestampType = "TIMESTAMPTZ"
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS feedback (
			id TEXT PRIMARY KEY,
			product TEXT NOT NULL,
			original_text TEXT NOT NULL,
			original_language TEXT NOT NULL DEFAULT '',
			translated_text TEXT NOT NULL DEFAULT '',
			sentiment TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'published',
			was_reviewed BOOLEAN NOT NULL DEFAULT FALSE,
			created_at ` + timestampType + ` NOT NULL,
			updated_at ` + timestampType + ` NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_product ON feedback (product)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_status ON feedback (status)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_created ON feedback (created_at)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func (m *Manager) FeedbackStore() interfaces.FeedbackStore {
	return m.feedbackStore
}

func (m *Manager) Backend() string {
	return m.backend
}

func (m *Manager) Close() error {
	return m.db.Close()
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
