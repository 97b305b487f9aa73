// Package app wires configuration, storage, the classifier and the feedback
// service into the shared core used by cmd/carfeed-server.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/carfeed/internal/clients/gemini"
	"github.com/bobmcallan/carfeed/internal/common"
	"github.com/bobmcallan/carfeed/internal/interfaces"
	"github.com/bobmcallan/carfeed/internal/services/classifier"
	"github.com/bobmcallan/carfeed/internal/services/feedback"
	"github.com/bobmcallan/carfeed/internal/storage"
)

// App holds all initialized services and clients.
type App struct {
	Config          *common.Config
	Logger          *common.Logger
	Storage         interfaces.StorageManager
	GeminiClient    interfaces.GeminiClient
	Classifier      interfaces.Classifier
	FeedbackService interfaces.FeedbackService
	StartupTime     time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath picks the config file: the explicit path, then
// CARFEED_CONFIG, then carfeed.toml next to the binary, then config/carfeed.toml.
func ResolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("CARFEED_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "carfeed.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/carfeed.toml" // fallback for development
		}
	}
	return configPath
}

// NewApp loads configuration and initializes everything.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	common.LoadVersionFromFile()

	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)
	return NewAppWithConfig(ctx, config, logger)
}

// NewAppWithConfig initializes the app from an already loaded config.
func NewAppWithConfig(ctx context.Context, config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()

	if config.IsProduction() {
		if missing := config.ValidateRequired(); len(missing) > 0 {
			return nil, fmt.Errorf("missing required configuration: %v", missing)
		}
	}

	storageManager, err := storage.NewStorageManager(ctx, logger, config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var geminiClient interfaces.GeminiClient
	if config.Clients.Gemini.APIKey != "" {
		client, err := gemini.NewClient(ctx, config.Clients.Gemini, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client - all feedback will go to review")
		} else {
			geminiClient = client
		}
	} else {
		logger.Warn().Msg("Gemini API key not configured - all feedback will go to review")
	}

	classifierService := classifier.NewService(geminiClient, logger)
	feedbackService := feedback.NewService(storageManager, classifierService, logger,
		feedback.WithPublishedOnlyStats(config.Stats.PublishedOnly),
	)

	if config.Auth.AdminPasswordHash == "" {
		logger.Warn().Msg("Admin password hash not configured - moderation login is disabled")
	}

	a := &App{
		Config:          config,
		Logger:          logger,
		Storage:         storageManager,
		GeminiClient:    geminiClient,
		Classifier:      classifierService,
		FeedbackService: feedbackService,
		StartupTime:     startupStart,
	}

	logger.Info().
		Str("backend", storageManager.Backend()).
		Bool("classifier", geminiClient != nil).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
		a.Storage = nil
	}
}
