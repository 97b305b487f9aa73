// Command carfeed is the terminal dashboard for the Carfeed feedback server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/bobmcallan/carfeed/internal/clients/feedbackapi"
	"github.com/bobmcallan/carfeed/internal/common"
	"github.com/bobmcallan/carfeed/internal/dashboard"
	"github.com/bobmcallan/carfeed/internal/services/chart"
	"github.com/bobmcallan/carfeed/internal/storage/localstate"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "carfeed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("carfeed", flag.ContinueOnError)
	fs.SetOutput(out)
	configPath := fs.String("config", os.Getenv("CARFEED_CONFIG"), "path to carfeed.toml")
	serverURL := fs.String("server", "", "feedback server URL (overrides config)")
	statePath := fs.String("state", "", "client state file (overrides config)")
	verbose := fs.Bool("v", false, "enable debug logging")
	fs.Usage = func() {
		fmt.Fprintln(out, "usage: carfeed [flags] [repl | stats [-chart file.png] | version]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *serverURL != "" {
		cfg.Client.ServerURL = *serverURL
	}
	if *statePath != "" {
		cfg.Client.StatePath = *statePath
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger := common.NewLogger(level)

	api := feedbackapi.NewClient(
		feedbackapi.WithBaseURL(cfg.Client.ServerURL),
		feedbackapi.WithLogger(logger),
		feedbackapi.WithTimeout(cfg.Client.GetTimeout()),
		feedbackapi.WithRateLimit(cfg.Client.RateLimit),
	)

	switch cmd := fs.Arg(0); cmd {
	case "", "repl":
		return runREPL(ctx, cfg, api, logger, in, out)
	case "stats":
		return runStats(ctx, api, fs.Args()[1:], out)
	case "version":
		common.LoadVersionFromFile()
		fmt.Fprintln(out, common.GetFullVersion())
		return nil
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func runREPL(ctx context.Context, cfg *common.Config, api *feedbackapi.Client, logger *common.Logger, in io.Reader, out io.Writer) error {
	store, err := localstate.Open(cfg.Client.StatePath)
	if err != nil {
		return err
	}

	ctrl := dashboard.New(api, store, dashboard.WithLogger(logger))
	ctrl.Start(ctx)
	defer ctrl.Close()

	return NewREPL(ctrl, in, out).Run(ctx)
}

// runStats prints the sentiment aggregate once and optionally writes the
// pie chart.
func runStats(ctx context.Context, api *feedbackapi.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(out)
	chartPath := fs.String("chart", "", "write a sentiment pie chart PNG to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	stats, err := api.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch stats: %w", err)
	}
	fmt.Fprint(out, formatStats(stats, true))

	if *chartPath != "" {
		png, err := chart.RenderSentimentPie(stats)
		if err != nil {
			return err
		}
		if err := os.WriteFile(*chartPath, png, 0644); err != nil {
			return fmt.Errorf("failed to write chart: %w", err)
		}
		fmt.Fprintf(out, "Chart written to %s\n", *chartPath)
	}
	return nil
}
