// Package tracker aggregates the classified status of the authenticated
// user's open pull requests.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/marcin-skalski/pr-status/internal/status"
)

var ErrInvalidLimit = errors.New("limit must be at least 1")

var tracer = otel.Tracer("github.com/marcin-skalski/pr-status/internal/tracker")

// Source lists open PRs and resolves search hits to full PR objects.
type Source interface {
	SearchMyOpenPRs(ctx context.Context) ([]status.Ref, error)
	GetPRByURL(ctx context.Context, url string) (status.PullRequest, error)
}

type Classifier interface {
	Classify(ctx context.Context, pr status.PullRequest) status.Result
}

type Options struct {
	// Concurrency bounds the PRs resolved and classified at once; <= 0 means unbounded.
	Concurrency int
}

type Tracker struct {
	source     Source
	classifier Classifier
	opts       Options
	logger     *slog.Logger
}

func New(source Source, classifier Classifier, opts Options, logger *slog.Logger) *Tracker {
	return &Tracker{source: source, classifier: classifier, opts: opts, logger: logger}
}

// MyPRStatuses returns at most limit results in search order.
func (t *Tracker) MyPRStatuses(ctx context.Context, limit int) ([]status.Result, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}

	results, err := t.all(ctx)
	if err != nil {
		return nil, err
	}
	if len(results) > limit {
		t.logger.Debug("dropping PRs beyond limit", "open_prs", len(results), "limit", limit)
		results = results[:limit]
	}
	return results, nil
}

// PRStatusByIndex returns the n-th (1-based) result. ok is false when n is
// out of range.
func (t *Tracker) PRStatusByIndex(ctx context.Context, n int) (res status.Result, ok bool, err error) {
	if n < 1 {
		return status.Result{}, false, nil
	}

	results, err := t.all(ctx)
	if err != nil {
		return status.Result{}, false, err
	}
	if n > len(results) {
		return status.Result{}, false, nil
	}
	return results[n-1], true, nil
}

func (t *Tracker) all(ctx context.Context) ([]status.Result, error) {
	ctx, span := tracer.Start(ctx, "tracker.collect")
	defer span.End()

	refs, err := t.source.SearchMyOpenPRs(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list open PRs: %w", err)
	}
	span.SetAttributes(attribute.Int("open_prs", len(refs)))
	t.logger.Debug("found open PRs", "count", len(refs))

	results := make([]status.Result, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	if t.opts.Concurrency > 0 {
		g.SetLimit(t.opts.Concurrency)
	}

	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			res, err := t.resolveAndClassify(gctx, ref)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return results, nil
}

func (t *Tracker) resolveAndClassify(ctx context.Context, ref status.Ref) (status.Result, error) {
	ctx, span := tracer.Start(ctx, "tracker.classify")
	defer span.End()
	span.SetAttributes(attribute.Int("pr.number", ref.Number), attribute.String("pr.url", ref.HTMLURL))

	pr, err := t.source.GetPRByURL(ctx, ref.APIURL)
	if err != nil {
		span.RecordError(err)
		return status.Result{}, fmt.Errorf("resolve PR #%d: %w", ref.Number, err)
	}

	res := t.classifier.Classify(ctx, pr)
	span.SetAttributes(attribute.String("pr.status", res.Status.String()))
	return res, nil
}
