package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/marcin-skalski/pr-status/internal/config"
	"github.com/marcin-skalski/pr-status/internal/signal"
	"github.com/marcin-skalski/pr-status/internal/status"
	"github.com/marcin-skalski/pr-status/internal/tui"
)

var tracer = otel.Tracer("github.com/marcin-skalski/pr-status/internal/daemon")

type Tracker interface {
	MyPRStatuses(ctx context.Context, limit int) ([]status.Result, error)
	PRStatusByIndex(ctx context.Context, n int) (status.Result, bool, error)
}

type Daemon struct {
	cfg     *config.Config
	tracker Tracker
	sink    signal.Sink
	logger  *slog.Logger

	mu       sync.Mutex
	snapshot tui.Snapshot
	cycles   int
}

func New(cfg *config.Config, tracker Tracker, sink signal.Sink, logger *slog.Logger) *Daemon {
	return &Daemon{
		cfg:     cfg,
		tracker: tracker,
		sink:    sink,
		logger:  logger,
		snapshot: tui.Snapshot{
			Mode:   mode(cfg),
			Signal: signal.FromResults(nil, cfg.Keys()),
		},
	}
}

// Run polls once immediately and then on every tick until ctx is done.
// Cycles run on this goroutine, so they never overlap.
func (d *Daemon) Run(ctx context.Context) error {
	d.logger.Info("daemon started", "poll_interval", d.cfg.PollInterval, "mode", mode(d.cfg), "keys", d.cfg.Keys())

	d.poll(ctx)

	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("shutting down")
			return nil
		case <-ticker.C:
			d.poll(ctx)
		}
	}
}

func (d *Daemon) poll(ctx context.Context) {
	cycleID := ulid.Make().String()
	logger := d.logger.With("cycle", cycleID)

	ctx, span := tracer.Start(ctx, "daemon.cycle")
	span.SetAttributes(attribute.String("cycle.id", cycleID))
	defer span.End()

	started := time.Now()
	results, sig, err := d.Cycle(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("cycle failed", "err", err)
	} else {
		logger.Info("cycle done", "prs", len(results), "duration", time.Since(started).Round(time.Millisecond))
		for _, r := range results {
			logger.Debug("pr status", "pr", r.Message, "status", r.Status, "link", r.Link, "error", r.Error)
		}
	}

	if pubErr := d.sink.Publish(ctx, sig); pubErr != nil {
		logger.Error("publish signal failed", "err", pubErr)
	}

	d.mu.Lock()
	d.cycles++
	d.snapshot = tui.Snapshot{
		Timestamp: time.Now(),
		CycleID:   cycleID,
		Cycles:    d.cycles,
		Mode:      mode(d.cfg),
		Results:   results,
		Signal:    sig,
	}
	if err != nil {
		d.snapshot.Err = err.Error()
	}
	d.mu.Unlock()
}

// Cycle fetches and classifies once. On failure the returned signal is the
// error signal, so callers always have something to render.
func (d *Daemon) Cycle(ctx context.Context) ([]status.Result, signal.Signal, error) {
	keys := d.cfg.Keys()

	if d.cfg.PRIndex != nil {
		res, ok, err := d.tracker.PRStatusByIndex(ctx, *d.cfg.PRIndex)
		if err != nil {
			return nil, signal.FromError(err, keys), fmt.Errorf("get PR %d: %w", *d.cfg.PRIndex, err)
		}
		if !ok {
			return []status.Result{}, signal.FromResults(nil, keys), nil
		}
		results := []status.Result{res}
		return results, signal.FromResults(results, keys), nil
	}

	results, err := d.tracker.MyPRStatuses(ctx, d.cfg.Limit)
	if err != nil {
		return nil, signal.FromError(err, keys), fmt.Errorf("get PR statuses: %w", err)
	}
	return results, signal.FromResults(results, keys), nil
}

func (d *Daemon) GetSnapshot() tui.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	snap := d.snapshot
	snap.Results = append([]status.Result(nil), d.snapshot.Results...)
	return snap
}

func mode(cfg *config.Config) string {
	if cfg.PRIndex != nil {
		return fmt.Sprintf("index %d", *cfg.PRIndex)
	}
	return fmt.Sprintf("top %d", cfg.Limit)
}
