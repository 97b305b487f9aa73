package common

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ternarybob/banner"
)

// storageTarget describes where feedback is persisted for the startup banner.
func storageTarget(cfg StorageConfig) string {
	switch cfg.Backend {
	case BackendSurrealDB:
		return fmt.Sprintf("%s (%s/%s)", cfg.Address, cfg.Namespace, cfg.Database)
	case BackendPostgres:
		return "postgres"
	default:
		return cfg.DSN
	}
}

// PrintBanner displays the server startup banner to stderr.
func PrintBanner(config *Config, logger *Logger) {
	printBanner(os.Stderr, config)

	logger.Info().
		Str("version", GetVersion()).
		Str("build", Build).
		Str("commit", GitCommit).
		Str("environment", config.Environment).
		Str("service_url", serviceURL(config)).
		Str("storage_backend", config.Storage.Backend).
		Bool("classifier", config.Clients.Gemini.APIKey != "").
		Msg("Application started")
}

func serviceURL(config *Config) string {
	return fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)
}

func printBanner(w io.Writer, config *Config) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	hr := lineColor + strings.Repeat("═", 64) + banner.ColorReset

	art := []string{
		`   ____    _    ____  _____ _____ _____ ____`,
		`  / ___|  / \  |  _ \|  ___| ____| ____|  _ \`,
		` | |     / _ \ | |_) | |_  |  _| |  _| | | | |`,
		` | |___ / ___ \|  _ <|  _| | |___| |___| |_| |`,
		`  \____/_/   \_\_| \_\_|   |_____|_____|____/`,
	}

	classifier := "disabled (all submissions go to review)"
	if config.Clients.Gemini.APIKey != "" {
		classifier = config.Clients.Gemini.Model
	}

	fmt.Fprintf(w, "\n%s\n\n", hr)
	for _, line := range art {
		fmt.Fprintf(w, "%s%s%s\n", textColor, line, banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s  Automotive Feedback Moderation%s\n\n", textColor, banner.ColorReset)
	fmt.Fprintf(w, "%s\n\n", hr)

	kvLines := [][2]string{
		{"Version", GetVersion()},
		{"Build", Build},
		{"Commit", GitCommit},
		{"Environment", config.Environment},
		{"Service URL", serviceURL(config)},
		{"Storage", config.Storage.Backend},
		{"Target", storageTarget(config.Storage)},
		{"Classifier", classifier},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(w, "%s  %-14s %s%s\n", textColor, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s\n\n", hr)
}

// PrintShutdownBanner displays the shutdown banner to stderr.
func PrintShutdownBanner(logger *Logger) {
	hr := banner.ColorCyan + strings.Repeat("═", 40) + banner.ColorReset
	fmt.Fprintf(os.Stderr, "\n%s\n%s  CARFEED SHUTTING DOWN%s\n%s\n\n",
		hr, banner.ColorBold+banner.ColorWhite, banner.ColorReset, hr)

	logger.Info().Msg("Application shutting down")
}
