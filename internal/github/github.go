package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/marcin-skalski/pr-status/internal/status"
)

const (
	acceptHeader  = "application/vnd.github+json"
	myOpenPRQuery = "author:@me is:open is:pr"
	userAgent     = "pr-status"
	pageSize      = 100
)

var ErrMissingAPIKey = errors.New("github api key is required")

type Options struct {
	APIKey  string
	BaseURL string // defaults to https://api.github.com/
	Timeout time.Duration

	BreakerFailures uint32
	BreakerCooldown time.Duration

	// Transport is the innermost round tripper; http.DefaultTransport when nil.
	Transport http.RoundTripper
}

type Client struct {
	api    *gh.Client
	logger *slog.Logger
}

func NewClient(opts Options, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	httpClient := &http.Client{
		Timeout: opts.Timeout,
		Transport: &oauth2.Transport{
			// TokenType "token" yields "Authorization: token <key>".
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.APIKey, TokenType: "token"}),
			Base: &headerTransport{
				next: newBreakerTransport(base, opts.BreakerFailures, opts.BreakerCooldown, logger),
			},
		},
	}

	api := gh.NewClient(httpClient)
	api.UserAgent = userAgent
	if opts.BaseURL != "" {
		u, err := url.Parse(strings.TrimRight(opts.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse base url %q: %w", opts.BaseURL, err)
		}
		api.BaseURL = u
	}

	return &Client{api: api, logger: logger}, nil
}

// SearchMyOpenPRs lists the authenticated user's open pull requests,
// following pagination until the last page.
func (c *Client) SearchMyOpenPRs(ctx context.Context) ([]status.Ref, error) {
	opts := &gh.SearchOptions{ListOptions: gh.ListOptions{PerPage: pageSize}}

	refs := []status.Ref{}
	for {
		c.logger.Debug("github", "op", "search", "q", myOpenPRQuery, "page", opts.Page)
		res, resp, err := c.api.Search.Issues(ctx, myOpenPRQuery, opts)
		if err != nil {
			return nil, newNetworkError("search open PRs", "search/issues", resp, err)
		}

		for _, issue := range res.Issues {
			refs = append(refs, status.Ref{
				Number:  issue.GetNumber(),
				Title:   issue.GetTitle(),
				HTMLURL: issue.GetHTMLURL(),
				APIURL:  issue.GetPullRequestLinks().GetURL(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return refs, nil
}

func (c *Client) GetPR(ctx context.Context, repo string, number int) (status.PullRequest, error) {
	owner, name, err := ParseOwnerRepo(repo)
	if err != nil {
		return status.PullRequest{}, err
	}

	c.logger.Debug("github", "op", "get PR", "repo", repo, "number", number)
	pr, resp, err := c.api.PullRequests.Get(ctx, owner, name, number)
	if err != nil {
		return status.PullRequest{}, newNetworkError(fmt.Sprintf("get PR #%d", number), repo, resp, err)
	}
	return toPullRequest(pr), nil
}

// GetPRByURL fetches a pull request from an absolute API URL, as found in
// search results.
func (c *Client) GetPRByURL(ctx context.Context, prURL string) (status.PullRequest, error) {
	if prURL == "" {
		return status.PullRequest{}, &NetworkError{Op: "get PR by url", Err: errors.New("empty url")}
	}

	c.logger.Debug("github", "op", "get PR by url", "url", prURL)
	req, err := c.api.NewRequest(http.MethodGet, prURL, nil)
	if err != nil {
		return status.PullRequest{}, &NetworkError{Op: "get PR by url", URL: prURL, Err: err}
	}

	var pr gh.PullRequest
	resp, err := c.api.Do(ctx, req, &pr)
	if err != nil {
		return status.PullRequest{}, newNetworkError("get PR by url", prURL, resp, err)
	}
	return toPullRequest(&pr), nil
}

func (c *Client) Reviews(ctx context.Context, repo string, number int) ([]status.Review, error) {
	owner, name, err := ParseOwnerRepo(repo)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("github", "op", "list reviews", "repo", repo, "number", number)
	reviews, resp, err := c.api.PullRequests.ListReviews(ctx, owner, name, number, &gh.ListOptions{PerPage: pageSize})
	if err != nil {
		return nil, newNetworkError(fmt.Sprintf("list reviews PR #%d", number), repo, resp, err)
	}
	return toReviews(reviews), nil
}

// LatestCheckRuns lists check runs for ref, keeping only the latest run per
// check name.
func (c *Client) LatestCheckRuns(ctx context.Context, repo, ref string) ([]status.CheckRun, error) {
	owner, name, err := ParseOwnerRepo(repo)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("github", "op", "list check runs", "repo", repo, "ref", ref)
	res, resp, err := c.api.Checks.ListCheckRunsForRef(ctx, owner, name, ref, &gh.ListCheckRunsOptions{
		Filter:      gh.String("latest"),
		ListOptions: gh.ListOptions{PerPage: pageSize},
	})
	if err != nil {
		return nil, newNetworkError("list check runs "+ref, repo, resp, err)
	}
	return toCheckRuns(res.CheckRuns), nil
}

func toPullRequest(pr *gh.PullRequest) status.PullRequest {
	return status.PullRequest{
		Number:         pr.GetNumber(),
		Title:          pr.GetTitle(),
		Repo:           pr.GetHead().GetRepo().GetFullName(),
		HeadRef:        pr.GetHead().GetRef(),
		Mergeable:      pr.Mergeable,
		MergeableState: strings.ToLower(pr.GetMergeableState()),
		HTMLURL:        pr.GetHTMLURL(),
	}
}

func toCheckRuns(runs []*gh.CheckRun) []status.CheckRun {
	checks := make([]status.CheckRun, 0, len(runs))
	for _, r := range runs {
		checks = append(checks, status.CheckRun{
			Name:       r.GetName(),
			Status:     status.CheckStatus(strings.ToLower(r.GetStatus())),
			Conclusion: status.CheckConclusion(strings.ToLower(r.GetConclusion())),
		})
	}
	return checks
}

func toReviews(reviews []*gh.PullRequestReview) []status.Review {
	out := make([]status.Review, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, status.Review{State: status.ReviewState(strings.ToUpper(r.GetState()))})
	}
	return out
}

// ParseOwnerRepo splits "owner/repository" into its parts.
func ParseOwnerRepo(repo string) (owner, name string, err error) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository format: %q", repo)
	}
	return parts[0], parts[1], nil
}

type headerTransport struct {
	next http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Accept", acceptHeader)
	return t.next.RoundTrip(req)
}
