package status

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

const (
	reasonChecksFailed     = "Checks have failed"
	reasonChangesRequested = "Changes requested"
	reasonScriptError      = "Error in script"
)

// ErrMalformed marks a PR payload that lacks the fields classification needs.
var ErrMalformed = errors.New("malformed pull request")

type ChecksFetcher interface {
	LatestCheckRuns(ctx context.Context, repo, ref string) ([]CheckRun, error)
}

type ReviewsFetcher interface {
	Reviews(ctx context.Context, repo string, number int) ([]Review, error)
}

type Classifier struct {
	checks  ChecksFetcher
	reviews ReviewsFetcher
	logger  *slog.Logger
}

func NewClassifier(checks ChecksFetcher, reviews ReviewsFetcher, logger *slog.Logger) *Classifier {
	return &Classifier{checks: checks, reviews: reviews, logger: logger}
}

// Classify derives the Status of pr. It never panics and never returns an
// error: any failure while classifying yields ERROR with a generic reason.
func (c *Classifier) Classify(ctx context.Context, pr PullRequest) (res Result) {
	logger := c.logger.With("pr", pr.slug())

	defer func() {
		if r := recover(); r != nil {
			logger.Error("classification panicked", "panic", r)
			res = c.scriptError(pr)
		}
	}()

	s, reason, err := c.evaluate(ctx, pr)
	if err != nil {
		logger.Error("classification failed", "err", err)
		return c.scriptError(pr)
	}

	logger.Debug("classified", "status", s)
	return Result{
		Status:  s,
		Link:    pr.HTMLURL,
		Error:   reason,
		Title:   pr.Title,
		Message: pr.slug(),
	}
}

// evaluate walks the rules in order; the first match wins.
func (c *Classifier) evaluate(ctx context.Context, pr PullRequest) (Status, string, error) {
	if pr.Mergeable != nil && *pr.Mergeable && pr.MergeableState == "clean" {
		return Ready, "", nil
	}

	if pr.Repo == "" || pr.HeadRef == "" {
		return Unknown, "", fmt.Errorf("%w: missing head repository or ref", ErrMalformed)
	}

	checks, err := c.checks.LatestCheckRuns(ctx, pr.Repo, pr.HeadRef)
	if err != nil {
		return Unknown, "", fmt.Errorf("fetch checks: %w", err)
	}
	if ChecksFailed(checks) {
		return Error, reasonChecksFailed, nil
	}
	if ChecksRunning(checks) {
		return Pending, "", nil
	}

	reviews, err := c.reviews.Reviews(ctx, pr.Repo, pr.Number)
	if err != nil {
		return Unknown, "", fmt.Errorf("fetch reviews: %w", err)
	}
	if !HasEvaluation(reviews) {
		return NeedsReview, "", nil
	}
	if ChangesRequested(reviews) {
		return NeedsWork, reasonChangesRequested, nil
	}

	// The required approval count is not visible here, so ask for more review.
	return NeedsReview, "", nil
}

func (c *Classifier) scriptError(pr PullRequest) Result {
	return Result{
		Status:  Error,
		Link:    pr.HTMLURL,
		Error:   reasonScriptError,
		Title:   pr.Title,
		Message: pr.slug(),
	}
}

// ChecksFailed reports whether any run concluded in a failing state.
func ChecksFailed(checks []CheckRun) bool {
	for _, c := range checks {
		switch c.Conclusion {
		case ConclusionFailure, ConclusionCancelled, ConclusionTimedOut, ConclusionActionRequired:
			return true
		}
	}
	return false
}

func ChecksRunning(checks []CheckRun) bool {
	for _, c := range checks {
		if c.Status == CheckInProgress {
			return true
		}
	}
	return false
}

// HasEvaluation reports whether at least one review is more than a comment.
func HasEvaluation(reviews []Review) bool {
	for _, r := range reviews {
		if r.State != ReviewCommented {
			return true
		}
	}
	return false
}

func ChangesRequested(reviews []Review) bool {
	for _, r := range reviews {
		if r.State == ReviewChangesRequested {
			return true
		}
	}
	return false
}
