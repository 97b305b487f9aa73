package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DefaultPort(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port default = %d, want %d", cfg.Server.Port, 8000)
	}
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
}

func TestConfig_PortEnvOverride(t *testing.T) {
	t.Setenv("CARFEED_PORT", "9090")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d after env override, want %d", cfg.Server.Port, 9090)
	}
}

func TestConfig_GeminiKeyEnvPrecedence(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-gemini")
	t.Setenv("CARFEED_GEMINI_API_KEY", "from-carfeed")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	assert.Equal(t, "from-carfeed", cfg.Clients.Gemini.APIKey)
}

func TestConfig_DatabaseURLOnlyForPostgres(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/feedback_db?sslmode=disable")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)
	assert.Equal(t, "data/carfeed.db", cfg.Storage.DSN)

	cfg.Storage.Backend = BackendPostgres
	applyEnvOverrides(cfg)
	assert.Equal(t, "postgres://u:p@db:5432/feedback_db?sslmode=disable", cfg.Storage.DSN)
}

func TestConfig_StatsPublishedOnlyEnv(t *testing.T) {
	t.Setenv("CARFEED_STATS_PUBLISHED_ONLY", "true")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	assert.True(t, cfg.Stats.PublishedOnly)
}

func TestLoadConfig_MergesFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	override := filepath.Join(dir, "override.toml")

	require.NoError(t, os.WriteFile(base, []byte(`
environment = "staging"

[server]
port = 7000

[storage]
backend = "SurrealDB"
address = "ws://surreal:8000/rpc"
`), 0644))
	require.NoError(t, os.WriteFile(override, []byte(`
[server]
port = 7100
`), 0644))

	cfg, err := LoadConfig(base, override, filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, 7100, cfg.Server.Port)
	assert.Equal(t, BackendSurrealDB, cfg.Storage.Backend)
	assert.Equal(t, "ws://surreal:8000/rpc", cfg.Storage.Address)
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nport = "), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfig_ValidateRequired_AllMissing(t *testing.T) {
	cfg := &Config{
		Auth: AuthConfig{JWTSecret: devJWTSecret},
	}
	missing := cfg.ValidateRequired()
	assert.ElementsMatch(t, []string{"auth.jwt_secret", "auth.admin_password_hash", "storage.backend"}, missing)
}

func TestConfig_ValidateRequired_AllPresent(t *testing.T) {
	cfg := &Config{
		Storage: StorageConfig{Backend: BackendPostgres, DSN: "postgres://localhost/feedback"},
		Auth: AuthConfig{
			JWTSecret:         "real-secret-value",
			AdminPasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		},
	}
	assert.Empty(t, cfg.ValidateRequired())
}

func TestConfig_ValidateRequired_SurrealNeedsAddress(t *testing.T) {
	cfg := &Config{
		Storage: StorageConfig{Backend: BackendSurrealDB},
		Auth:    AuthConfig{JWTSecret: "s", AdminPasswordHash: "h"},
	}
	assert.Equal(t, []string{"storage.address"}, cfg.ValidateRequired())
}

func TestConfig_Durations(t *testing.T) {
	auth := AuthConfig{TokenExpiry: "2h"}
	assert.Equal(t, 2*time.Hour, auth.GetTokenExpiry())

	auth.TokenExpiry = "not-a-duration"
	assert.Equal(t, 24*time.Hour, auth.GetTokenExpiry())

	client := ClientConfig{}
	assert.Equal(t, 30*time.Second, client.GetTimeout())

	gemini := GeminiConfig{Timeout: "5s"}
	assert.Equal(t, 5*time.Second, gemini.GetTimeout())
}

func TestConfig_IsProduction(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.False(t, cfg.IsProduction())
	cfg.Environment = " Prod "
	assert.True(t, cfg.IsProduction())
}
