package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/carfeed/internal/common"
	"github.com/bobmcallan/carfeed/internal/models"
)

func testConfig(t *testing.T) *common.Config {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Storage.DSN = filepath.Join(t.TempDir(), "carfeed.db")
	cfg.Clients.Gemini.APIKey = ""
	return cfg
}

func TestNewAppWithConfig_WithoutClassifierKey(t *testing.T) {
	a, err := NewAppWithConfig(context.Background(), testConfig(t), common.NewSilentLogger())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	assert.Nil(t, a.GeminiClient)
	assert.Equal(t, common.BackendSQLite, a.Storage.Backend())

	// No classifier: everything is held for moderation
	fb, err := a.FeedbackService.Submit(context.Background(), "Great car!", "Toyota")
	require.NoError(t, err)
	assert.Equal(t, models.FeedbackStatusReview, fb.Status)
}

func TestNewAppWithConfig_ProductionRequiresSecrets(t *testing.T) {
	cfg := testConfig(t)
	cfg.Environment = "production"

	_, err := NewAppWithConfig(context.Background(), cfg, common.NewSilentLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.jwt_secret")
}

func TestNewAppWithConfig_UnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Backend = "mongodb"

	_, err := NewAppWithConfig(context.Background(), cfg, common.NewSilentLogger())
	assert.Error(t, err)
}

func TestClose_Idempotent(t *testing.T) {
	a, err := NewAppWithConfig(context.Background(), testConfig(t), common.NewSilentLogger())
	require.NoError(t, err)
	a.Close()
	a.Close()
	assert.Nil(t, a.Storage)
}

func TestResolveConfigPath(t *testing.T) {
	assert.Equal(t, "explicit.toml", ResolveConfigPath("explicit.toml"))

	t.Setenv("CARFEED_CONFIG", "/etc/carfeed/carfeed.toml")
	assert.Equal(t, "/etc/carfeed/carfeed.toml", ResolveConfigPath(""))

	os.Unsetenv("CARFEED_CONFIG")
	path := ResolveConfigPath("")
	assert.True(t, path == "config/carfeed.toml" || filepath.Base(path) == "carfeed.toml")
}
