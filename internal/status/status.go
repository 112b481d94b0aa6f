package status

import "fmt"

// Status is the workflow state derived for one pull request.
type Status string

const (
	Unknown     Status = ""
	Ready       Status = "READY"
	Error       Status = "ERROR"
	Pending     Status = "PENDING"
	NeedsReview Status = "NEEDS_REVIEW"
	NeedsWork   Status = "NEEDS_WORK"
)

func (s Status) String() string {
	if s == Unknown {
		return "UNKNOWN"
	}
	return string(s)
}

type CheckStatus string

const (
	CheckQueued     CheckStatus = "queued"
	CheckInProgress CheckStatus = "in_progress"
	CheckCompleted  CheckStatus = "completed"
)

type CheckConclusion string

const (
	ConclusionSuccess        CheckConclusion = "success"
	ConclusionFailure        CheckConclusion = "failure"
	ConclusionCancelled      CheckConclusion = "cancelled"
	ConclusionTimedOut       CheckConclusion = "timed_out"
	ConclusionActionRequired CheckConclusion = "action_required"
	ConclusionNeutral        CheckConclusion = "neutral"
	ConclusionSkipped        CheckConclusion = "skipped"
)

type ReviewState string

const (
	ReviewApproved         ReviewState = "APPROVED"
	ReviewChangesRequested ReviewState = "CHANGES_REQUESTED"
	ReviewCommented        ReviewState = "COMMENTED"
	ReviewDismissed        ReviewState = "DISMISSED"
	ReviewPending          ReviewState = "PENDING"
)

// PullRequest is a snapshot of one PR as returned by the PR endpoint.
type PullRequest struct {
	Number         int
	Title          string
	Repo           string // head repository full name, owner/name
	HeadRef        string
	Mergeable      *bool // nil while GitHub is still computing it
	MergeableState string
	HTMLURL        string
}

// Ref is one search hit, a partial projection of a PR.
type Ref struct {
	Number  int
	Title   string
	HTMLURL string
	APIURL  string
}

type CheckRun struct {
	Name       string
	Status     CheckStatus
	Conclusion CheckConclusion
}

type Review struct {
	State ReviewState
}

// Result is the classification outcome handed to renderers.
type Result struct {
	Status  Status `json:"status"`
	Link    string `json:"link"`
	Error   string `json:"error,omitempty"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
}

func (pr PullRequest) slug() string {
	if pr.Repo == "" {
		return fmt.Sprintf("#%d", pr.Number)
	}
	return fmt.Sprintf("%s#%d", pr.Repo, pr.Number)
}
