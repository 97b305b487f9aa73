// Command carfeed-server serves the feedback API: submission, listing,
// moderation, deletion and sentiment stats.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobmcallan/carfeed/internal/app"
	"github.com/bobmcallan/carfeed/internal/common"
	"github.com/bobmcallan/carfeed/internal/server"
)

const shutdownGrace = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to carfeed.toml (default: $CARFEED_CONFIG, then next to the binary)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		common.LoadVersionFromFile()
		fmt.Println(common.GetFullVersion())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.NewApp(ctx, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "carfeed-server: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	common.PrintBanner(a.Config, a.Logger)

	srv := server.NewServer(a)
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Start() }()

	select {
	case err := <-serveErr:
		if err != nil {
			a.Logger.Error().Err(err).Str("addr", srv.Addr()).Msg("Feedback API stopped unexpectedly")
			a.Close()
			os.Exit(1)
		}
		return
	case <-ctx.Done():
	}

	common.PrintShutdownBanner(a.Logger)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warn().Err(err).Dur("grace", shutdownGrace).Msg("Shutdown did not drain in time")
	}
	a.Logger.Info().Msg("Server stopped")
}
