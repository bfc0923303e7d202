// Package app wires together configuration, logging, the API client and the
// workflow controller into a single Deps struct that commands receive at
// runtime.
package app

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/trendguard/trendguard/internal/api"
	"github.com/trendguard/trendguard/internal/config"
	"github.com/trendguard/trendguard/internal/logging"
	"github.com/trendguard/trendguard/internal/orchestrator"
)

// Deps holds all runtime dependencies injected into command Run functions.
type Deps struct {
	Config *config.Config
	Client *api.Client
	Logger *zap.Logger

	closeLog func() error
}

// Option adjusts the logger options New derives from config.
type Option func(*logging.Options)

// WithConsole sends human-readable log output to w instead of stderr.
func WithConsole(w io.Writer) Option {
	return func(o *logging.Options) { o.Console = w }
}

// New builds a Deps from resolved config. --debug forces debug logging.
func New(cfg *config.Config, opts ...Option) (*Deps, error) {
	lo := logging.DefaultOptions()
	lo.Level = cfg.LogLevel
	lo.File = cfg.LogFile
	if cfg.Debug {
		lo.Level = "debug"
	}
	for _, o := range opts {
		o(&lo)
	}
	logger, closeLog, err := logging.New(lo)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(api.Options{
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout,
		RatePerSec: cfg.Rate,
		Retries:    cfg.Retries,
		Logger:     logger.Named("api"),
	})
	return &Deps{
		Config:   cfg,
		Client:   client,
		Logger:   logger,
		closeLog: closeLog,
	}, nil
}

// NewController starts a workflow controller over the API client. The caller
// must Stop it.
func (d *Deps) NewController(ctx context.Context, opts ...orchestrator.Option) *orchestrator.Controller {
	opts = append([]orchestrator.Option{orchestrator.WithLogger(d.Logger.Named("controller"))}, opts...)
	return orchestrator.New(ctx, d.Client, opts...)
}

// Close flushes the logger and closes the log file.
func (d *Deps) Close() error {
	if d.closeLog == nil {
		return nil
	}
	return d.closeLog()
}
