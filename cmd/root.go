// Package cmd implements the trendguard CLI command tree.
// This file defines the root command and registers all global persistent flags.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/trendguard/trendguard/internal/app"
	"github.com/trendguard/trendguard/internal/config"
	"github.com/trendguard/trendguard/internal/render"
)

// globalFlags holds the parsed values of all persistent (global) flags.
// Commands read from this struct via the deps they receive.
var globalFlags struct {
	BaseURL     string
	Format      string
	Out         string
	Timeout     string
	Concurrency int
	Rate        float64
	Retries     int
	LogFile     string
	Quiet       bool
	Verbose     bool
	Debug       bool
}

// rootCmd is the base command. Running `trendguard` with no subcommand
// prints help.
var rootCmd = &cobra.Command{
	Use:   "trendguard",
	Short: "trendguard — social-media campaign and trend lifecycle analysis",
	Long: `trendguard is a command-line client for the TrendGuard analysis service.

It scores planned campaigns for viability, explains why a trend is
declining (velocity, fatigue, retention) and surfaces Google Trends and
Reddit signals alongside the service's own analysis.

Quick start:
  trendguard config init                     # create a config.json
  trendguard health                          # check the service is up
  trendguard trends list                     # browse the trend catalogue
  trendguard trends analyze "ice bucket"     # explain a trend's lifecycle
  trendguard campaign analyze --topic "Summer skincare" \
      --hashtags "#skincare,#summer" --platform tiktok`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main. SIGINT and SIGTERM cancel the
// command context so in-flight requests return promptly.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// buildDeps resolves config and constructs the dependency container.
// Called at the start of each command's RunE; callers must Close the result.
func buildDeps() (*app.Deps, error) {
	cfg, err := config.Load(globalFlags.BaseURL)
	if err != nil {
		return nil, err
	}

	// Apply CLI flag overrides
	cfg.Quiet = globalFlags.Quiet
	cfg.Verbose = globalFlags.Verbose
	cfg.Debug = globalFlags.Debug

	if globalFlags.Format != "" {
		cfg.Format = globalFlags.Format
	}
	if globalFlags.Timeout != "" {
		d, err := time.ParseDuration(globalFlags.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid --timeout %q: %w", globalFlags.Timeout, err)
		}
		cfg.Timeout = d
	}
	if globalFlags.Concurrency > 0 {
		cfg.Concurrency = globalFlags.Concurrency
	}
	if globalFlags.Rate > 0 {
		cfg.Rate = globalFlags.Rate
	}
	if rootCmd.PersistentFlags().Changed("retries") {
		cfg.Retries = globalFlags.Retries
	}
	if globalFlags.LogFile != "" {
		cfg.LogFile = globalFlags.LogFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !render.ValidFormat(cfg.Format) {
		return nil, fmt.Errorf("unknown format %q (expected table|json|jsonl|csv|tsv|md)", cfg.Format)
	}
	return app.New(cfg)
}

func init() {
	pf := rootCmd.PersistentFlags()

	pf.StringVar(&globalFlags.BaseURL, "base-url", "",
		"analysis service URL (overrides env TRENDGUARD_BASE_URL and config.json)")
	pf.StringVar(&globalFlags.Format, "format", "",
		"output format: table|json|jsonl|csv|tsv|md (default: table)")
	pf.StringVar(&globalFlags.Out, "out", "",
		"write output to file instead of stdout")
	pf.StringVar(&globalFlags.Timeout, "timeout", "",
		"HTTP request timeout (e.g. 30s, 2m)")
	pf.IntVar(&globalFlags.Concurrency, "concurrency", 0,
		"max parallel requests for batch operations (default: 4)")
	pf.Float64Var(&globalFlags.Rate, "rate", 0,
		"max API requests per second (default: 5.0)")
	pf.IntVar(&globalFlags.Retries, "retries", 0,
		"retry attempts on 429 and 5xx responses (default: 0)")
	pf.StringVar(&globalFlags.LogFile, "log-file", "",
		"append JSON logs to this file (rotated)")
	pf.BoolVar(&globalFlags.Quiet, "quiet", false,
		"suppress warnings and status lines")
	pf.BoolVar(&globalFlags.Verbose, "verbose", false,
		"show timing stats after output")
	pf.BoolVar(&globalFlags.Debug, "debug", false,
		"log HTTP requests, responses and workflow transitions")
}
