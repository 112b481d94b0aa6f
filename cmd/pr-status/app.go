package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/marcin-skalski/pr-status/internal/config"
	"github.com/marcin-skalski/pr-status/internal/github"
	"github.com/marcin-skalski/pr-status/internal/logging"
	"github.com/marcin-skalski/pr-status/internal/status"
	"github.com/marcin-skalski/pr-status/internal/telemetry"
	"github.com/marcin-skalski/pr-status/internal/tracker"
)

type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	tracker *tracker.Tracker
	closers []func()
}

func newApp(configPath string, quiet bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, logCloser, err := logging.Setup(logging.Options{
		File:  cfg.LogFile,
		Level: cfg.Log.Level,
		Quiet: quiet,
	})
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}
	a.closers = append(a.closers, closeFunc(logCloser))
	a.closers = append(a.closers, telemetry.Init("pr-status", cfg.Tracing.Enabled, logger))

	gh, err := github.NewClient(github.Options{
		APIKey:          cfg.APIKey,
		BaseURL:         cfg.APIURL,
		Timeout:         cfg.RequestTimeout,
		BreakerFailures: cfg.Breaker.Failures,
		BreakerCooldown: cfg.Breaker.Cooldown,
	}, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("github client: %w", err)
	}

	classifier := status.NewClassifier(gh, gh, logger)
	a.tracker = tracker.New(gh, classifier, tracker.Options{Concurrency: cfg.MaxConcurrency}, logger)
	return a, nil
}

// close runs closers in reverse so the log file outlives the tracer.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func closeFunc(c io.Closer) func() {
	return func() { _ = c.Close() }
}
