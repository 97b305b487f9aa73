// Package common provides shared utilities for Carfeed
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the Carfeed server and terminal client
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Auth        AuthConfig    `toml:"auth"`
	Stats       StatsConfig   `toml:"stats"`
	Client      ClientConfig  `toml:"client"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// StorageConfig selects and configures the feedback storage backend.
type StorageConfig struct {
	Backend   string `toml:"backend"` // sqlite, postgres, surrealdb
	DSN       string `toml:"dsn"`     // sqlite file path or postgres connection string
	Address   string `toml:"address"` // SurrealDB websocket address
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// Storage backend names.
const (
	BackendSQLite    = "sqlite"
	BackendPostgres  = "postgres"
	BackendSurrealDB = "surrealdb"
)

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Gemini GeminiConfig `toml:"gemini"`
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey    string `toml:"api_key"`
	Model     string `toml:"model"`
	Timeout   string `toml:"timeout"`
	RateLimit int    `toml:"rate_limit"`
}

// GetTimeout parses and returns the timeout duration
func (c *GeminiConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// AuthConfig holds the admin gate configuration.
type AuthConfig struct {
	JWTSecret         string `toml:"jwt_secret"`
	AdminPasswordHash string `toml:"admin_password_hash"` // bcrypt hash
	TokenExpiry       string `toml:"token_expiry"`        // duration string, default "24h"
}

// GetTokenExpiry parses and returns the token expiry duration.
func (c *AuthConfig) GetTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.TokenExpiry)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// StatsConfig scopes the dashboard aggregate.
type StatsConfig struct {
	PublishedOnly bool `toml:"published_only"`
}

// ClientConfig holds terminal client configuration
type ClientConfig struct {
	ServerURL string `toml:"server_url"`
	StatePath string `toml:"state_path"`
	Timeout   string `toml:"timeout"`
	RateLimit int    `toml:"rate_limit"`
}

// GetTimeout parses and returns the timeout duration
func (c *ClientConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // console or json
}

// devJWTSecret is the development default; ValidateRequired rejects it.
const devJWTSecret = "dev-jwt-secret-change-in-production"

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Storage: StorageConfig{
			Backend:   BackendSQLite,
			DSN:       "data/carfeed.db",
			Address:   "ws://localhost:8000/rpc",
			Namespace: "carfeed",
			Database:  "carfeed",
			Username:  "root",
			Password:  "root",
		},
		Clients: ClientsConfig{
			Gemini: GeminiConfig{
				Model:     "gemini-2.0-flash",
				Timeout:   "30s",
				RateLimit: 5,
			},
		},
		Auth: AuthConfig{
			JWTSecret:   devJWTSecret,
			TokenExpiry: "24h",
		},
		Client: ClientConfig{
			ServerURL: "http://localhost:8000",
			StatePath: defaultStatePath(),
			Timeout:   "30s",
			RateLimit: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// defaultStatePath places the client state file in the user config dir.
func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".carfeed-state.yaml"
	}
	return dir + string(os.PathSeparator) + "carfeed" + string(os.PathSeparator) + "state.yaml"
}

// LoadConfig loads configuration from files with .env and environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// .env never overrides variables already set in the process environment
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	applyEnvOverrides(config)

	config.Storage.Backend = strings.ToLower(strings.TrimSpace(config.Storage.Backend))

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("CARFEED_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("CARFEED_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("CARFEED_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("CARFEED_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	// Storage overrides
	if v := os.Getenv("CARFEED_STORAGE_BACKEND"); v != "" {
		config.Storage.Backend = v
	}
	if v := os.Getenv("CARFEED_STORAGE_DSN"); v != "" {
		config.Storage.DSN = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" && config.Storage.Backend == BackendPostgres {
		config.Storage.DSN = v
	}
	if v := os.Getenv("CARFEED_STORAGE_ADDRESS"); v != "" {
		config.Storage.Address = v
	}
	if v := os.Getenv("CARFEED_STORAGE_USERNAME"); v != "" {
		config.Storage.Username = v
	}
	if v := os.Getenv("CARFEED_STORAGE_PASSWORD"); v != "" {
		config.Storage.Password = v
	}

	// Gemini key: accept the conventional names as well as our own
	for _, name := range []string{"CARFEED_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			config.Clients.Gemini.APIKey = v
			break
		}
	}
	if v := os.Getenv("CARFEED_GEMINI_MODEL"); v != "" {
		config.Clients.Gemini.Model = v
	}

	// Auth overrides
	if v := os.Getenv("CARFEED_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
	if v := os.Getenv("CARFEED_AUTH_ADMIN_PASSWORD_HASH"); v != "" {
		config.Auth.AdminPasswordHash = v
	}
	if v := os.Getenv("CARFEED_AUTH_TOKEN_EXPIRY"); v != "" {
		config.Auth.TokenExpiry = v
	}

	if v := os.Getenv("CARFEED_STATS_PUBLISHED_ONLY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Stats.PublishedOnly = b
		}
	}

	// Client overrides
	if v := os.Getenv("CARFEED_SERVER_URL"); v != "" {
		config.Client.ServerURL = v
	}
	if v := os.Getenv("CARFEED_STATE_PATH"); v != "" {
		config.Client.StatePath = v
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ValidateRequired returns the names of settings the server cannot run
// without in production. The classifier key is optional: without it every
// submission goes to review.
func (c *Config) ValidateRequired() []string {
	var missing []string
	if c.Auth.JWTSecret == "" || c.Auth.JWTSecret == devJWTSecret {
		missing = append(missing, "auth.jwt_secret")
	}
	if c.Auth.AdminPasswordHash == "" {
		missing = append(missing, "auth.admin_password_hash")
	}
	switch c.Storage.Backend {
	case BackendSQLite, BackendPostgres:
		if c.Storage.DSN == "" {
			missing = append(missing, "storage.dsn")
		}
	case BackendSurrealDB:
		if c.Storage.Address == "" {
			missing = append(missing, "storage.address")
		}
	default:
		missing = append(missing, "storage.backend")
	}
	return missing
}
