package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bobmcallan/carfeed/internal/common"
	"github.com/bobmcallan/carfeed/internal/interfaces"
	"github.com/bobmcallan/carfeed/internal/storage/storagetest"
	tcommon "github.com/bobmcallan/carfeed/tests/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(context.Background(), common.NewSilentLogger(), common.StorageConfig{
		Backend: common.BackendSQLite,
		DSN:     filepath.Join(t.TempDir(), "data", "feedback.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestFeedbackStore_SQLite(t *testing.T) {
	storagetest.RunFeedbackStoreTests(t, func(t *testing.T) interfaces.FeedbackStore {
		return newSQLiteManager(t).FeedbackStore()
	})
}

func TestFeedbackStore_Postgres(t *testing.T) {
	pg := tcommon.StartPostgres(t)

	storagetest.RunFeedbackStoreTests(t, func(t *testing.T) interfaces.FeedbackStore {
		m, err := NewManager(context.Background(), common.NewSilentLogger(), common.StorageConfig{
			Backend: common.BackendPostgres,
			DSN:     pg.DSN(),
		})
		require.NoError(t, err)
		t.Cleanup(func() { m.Close() })

		// The container is shared, so start each case from an empty table
		_, err = m.db.Exec("TRUNCATE feedback")
		require.NoError(t, err)
		return m.FeedbackStore()
	})
}

func TestNewManager_SchemaIsIdempotent(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "feedback.db")
	cfg := common.StorageConfig{Backend: common.BackendSQLite, DSN: dsn}

	first, err := NewManager(context.Background(), common.NewSilentLogger(), cfg)
	require.NoError(t, err)
	require.NoError(t, first.FeedbackStore().Create(context.Background(),
		storagetest.Published("Honda", "en", "positive", "Smooth ride")))
	require.NoError(t, first.Close())

	second, err := NewManager(context.Background(), common.NewSilentLogger(), cfg)
	require.NoError(t, err)
	defer second.Close()

	_, total, err := second.FeedbackStore().List(context.Background(), interfaces.FeedbackListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, common.BackendSQLite, second.Backend())
}

func TestNewManager_UnsupportedBackend(t *testing.T) {
	_, err := NewManager(context.Background(), common.NewSilentLogger(), common.StorageConfig{Backend: "oracle"})
	assert.Error(t, err)
}

func TestListWhere(t *testing.T) {
	where, args, err := listWhere(interfaces.FeedbackListOptions{})
	require.NoError(t, err)
	assert.Equal(t, " WHERE status = ?", where)
	assert.Equal(t, []any{"published"}, args)

	where, args, err = listWhere(interfaces.FeedbackListOptions{ShowAll: true})
	require.NoError(t, err)
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, args, err = listWhere(interfaces.FeedbackListOptions{ShowAll: true, Product: "Kia", Language: "Others"})
	require.NoError(t, err)
	assert.Contains(t, where, "product = ?")
	assert.Contains(t, where, "original_language NOT IN (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	assert.Len(t, args, 12)
}
