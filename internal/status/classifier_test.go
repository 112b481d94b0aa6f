package status

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecks struct {
	runs  []CheckRun
	err   error
	panic bool
	calls int
	repo  string
	ref   string
}

func (f *fakeChecks) LatestCheckRuns(_ context.Context, repo, ref string) ([]CheckRun, error) {
	f.calls++
	f.repo, f.ref = repo, ref
	if f.panic {
		panic("boom")
	}
	return f.runs, f.err
}

type fakeReviews struct {
	reviews []Review
	err     error
	calls   int
	number  int
}

func (f *fakeReviews) Reviews(_ context.Context, _ string, number int) ([]Review, error) {
	f.calls++
	f.number = number
	return f.reviews, f.err
}

func boolPtr(b bool) *bool { return &b }

func testPR() PullRequest {
	return PullRequest{
		Number:         42,
		Title:          "Add widgets",
		Repo:           "octo/widgets",
		HeadRef:        "feature/widgets",
		Mergeable:      boolPtr(false),
		MergeableState: "blocked",
		HTMLURL:        "https://github.com/octo/widgets/pull/42",
	}
}

func newTestClassifier(checks *fakeChecks, reviews *fakeReviews) *Classifier {
	return NewClassifier(checks, reviews, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClassify_ReadyShortCircuits(t *testing.T) {
	checks := &fakeChecks{runs: []CheckRun{{Conclusion: ConclusionFailure}}}
	reviews := &fakeReviews{reviews: []Review{{State: ReviewChangesRequested}}}

	pr := testPR()
	pr.Mergeable = boolPtr(true)
	pr.MergeableState = "clean"

	res := newTestClassifier(checks, reviews).Classify(context.Background(), pr)

	assert.Equal(t, Ready, res.Status)
	assert.Equal(t, pr.HTMLURL, res.Link)
	assert.Empty(t, res.Error)
	assert.Equal(t, 0, checks.calls)
	assert.Equal(t, 0, reviews.calls)
}

func TestClassify_MergeableButNotClean(t *testing.T) {
	for _, tc := range []struct {
		name      string
		mergeable *bool
		state     string
	}{
		{"unknown mergeable", nil, "clean"},
		{"mergeable unstable", boolPtr(true), "unstable"},
		{"not mergeable clean", boolPtr(false), "clean"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			checks := &fakeChecks{}
			reviews := &fakeReviews{}
			pr := testPR()
			pr.Mergeable = tc.mergeable
			pr.MergeableState = tc.state

			res := newTestClassifier(checks, reviews).Classify(context.Background(), pr)

			assert.Equal(t, NeedsReview, res.Status)
			assert.Equal(t, 1, checks.calls)
			assert.Equal(t, 1, reviews.calls)
		})
	}
}

func TestClassify_Rules(t *testing.T) {
	tests := []struct {
		name        string
		checks      []CheckRun
		reviews     []Review
		want        Status
		wantError   string
		wantReviews int
	}{
		{
			name:      "failed check wins over approval",
			checks:    []CheckRun{{Name: "ci", Status: CheckCompleted, Conclusion: ConclusionFailure}},
			reviews:   []Review{{State: ReviewApproved}},
			want:      Error,
			wantError: "Checks have failed",
		},
		{
			name:      "cancelled check",
			checks:    []CheckRun{{Status: CheckCompleted, Conclusion: ConclusionSuccess}, {Status: CheckCompleted, Conclusion: ConclusionCancelled}},
			want:      Error,
			wantError: "Checks have failed",
		},
		{
			name:      "timed out check beats in progress",
			checks:    []CheckRun{{Status: CheckInProgress}, {Status: CheckCompleted, Conclusion: ConclusionTimedOut}},
			want:      Error,
			wantError: "Checks have failed",
		},
		{
			name:      "action required",
			checks:    []CheckRun{{Status: CheckCompleted, Conclusion: ConclusionActionRequired}},
			want:      Error,
			wantError: "Checks have failed",
		},
		{
			name:   "in progress",
			checks: []CheckRun{{Status: CheckCompleted, Conclusion: ConclusionSuccess}, {Status: CheckInProgress}},
			want:   Pending,
		},
		{
			name:        "queued is not pending",
			checks:      []CheckRun{{Status: CheckQueued}},
			want:        NeedsReview,
			wantReviews: 1,
		},
		{
			name:        "neutral and skipped pass",
			checks:      []CheckRun{{Status: CheckCompleted, Conclusion: ConclusionNeutral}, {Status: CheckCompleted, Conclusion: ConclusionSkipped}},
			reviews:     []Review{{State: ReviewApproved}},
			want:        NeedsReview,
			wantReviews: 1,
		},
		{
			name:        "no reviews",
			want:        NeedsReview,
			wantReviews: 1,
		},
		{
			name:        "only comments",
			reviews:     []Review{{State: ReviewCommented}, {State: ReviewCommented}},
			want:        NeedsReview,
			wantReviews: 1,
		},
		{
			name:        "changes requested despite approval",
			reviews:     []Review{{State: ReviewApproved}, {State: ReviewChangesRequested}},
			want:        NeedsWork,
			wantError:   "Changes requested",
			wantReviews: 1,
		},
		{
			name:        "comment then changes requested",
			reviews:     []Review{{State: ReviewCommented}, {State: ReviewChangesRequested}},
			want:        NeedsWork,
			wantError:   "Changes requested",
			wantReviews: 1,
		},
		{
			name:        "approved falls back to needs review",
			reviews:     []Review{{State: ReviewApproved}},
			want:        NeedsReview,
			wantReviews: 1,
		},
		{
			name:        "approved and dismissed",
			reviews:     []Review{{State: ReviewDismissed}, {State: ReviewApproved}, {State: ReviewCommented}},
			want:        NeedsReview,
			wantReviews: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checks := &fakeChecks{runs: tt.checks}
			reviews := &fakeReviews{reviews: tt.reviews}
			pr := testPR()

			res := newTestClassifier(checks, reviews).Classify(context.Background(), pr)

			assert.Equal(t, tt.want, res.Status)
			assert.Equal(t, tt.wantError, res.Error)
			assert.Equal(t, pr.HTMLURL, res.Link)
			assert.Equal(t, 1, checks.calls)
			assert.Equal(t, tt.wantReviews, reviews.calls)
		})
	}
}

func TestClassify_FetchesByHeadRepoAndRef(t *testing.T) {
	checks := &fakeChecks{}
	reviews := &fakeReviews{}

	newTestClassifier(checks, reviews).Classify(context.Background(), testPR())

	assert.Equal(t, "octo/widgets", checks.repo)
	assert.Equal(t, "feature/widgets", checks.ref)
	assert.Equal(t, 42, reviews.number)
}

func TestClassify_FailedChecksScenario(t *testing.T) {
	checks := &fakeChecks{runs: []CheckRun{{Status: CheckCompleted, Conclusion: ConclusionFailure}}}
	reviews := &fakeReviews{}

	res := newTestClassifier(checks, reviews).Classify(context.Background(), testPR())

	assert.Equal(t, Result{
		Status:  Error,
		Link:    "https://github.com/octo/widgets/pull/42",
		Error:   "Checks have failed",
		Title:   "Add widgets",
		Message: "octo/widgets#42",
	}, res)
	assert.Equal(t, 0, reviews.calls)
}

func TestClassify_ChangesRequestedScenario(t *testing.T) {
	checks := &fakeChecks{}
	reviews := &fakeReviews{reviews: []Review{{State: ReviewChangesRequested}, {State: ReviewApproved}}}

	res := newTestClassifier(checks, reviews).Classify(context.Background(), testPR())

	assert.Equal(t, NeedsWork, res.Status)
	assert.Equal(t, "Changes requested", res.Error)
}

func TestClassify_DegradesToScriptError(t *testing.T) {
	tests := []struct {
		name    string
		pr      func() PullRequest
		checks  *fakeChecks
		reviews *fakeReviews
	}{
		{
			name:    "checks fetch fails",
			pr:      testPR,
			checks:  &fakeChecks{err: errors.New("connection reset")},
			reviews: &fakeReviews{},
		},
		{
			name:    "reviews fetch fails",
			pr:      testPR,
			checks:  &fakeChecks{},
			reviews: &fakeReviews{err: errors.New("bad json")},
		},
		{
			name:    "fetcher panics",
			pr:      testPR,
			checks:  &fakeChecks{panic: true},
			reviews: &fakeReviews{},
		},
		{
			name: "head repository missing",
			pr: func() PullRequest {
				pr := testPR()
				pr.Repo = ""
				return pr
			},
			checks:  &fakeChecks{},
			reviews: &fakeReviews{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr := tt.pr()
			var res Result
			require.NotPanics(t, func() {
				res = newTestClassifier(tt.checks, tt.reviews).Classify(context.Background(), pr)
			})
			assert.Equal(t, Error, res.Status)
			assert.Equal(t, "Error in script", res.Error)
			assert.Equal(t, pr.HTMLURL, res.Link)
		})
	}
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "UNKNOWN", Unknown.String())
	assert.Equal(t, "NEEDS_WORK", NeedsWork.String())
}
