package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// perPage is the page size requested from list endpoints.
const perPage = 100

// Client wraps the go-github client with rate limiting and paging.
type Client struct {
	gh       *gh.Client
	throttle *Throttle
}

// NewClient creates a GitHub API client. An empty token makes
// unauthenticated requests.
func NewClient(ctx context.Context, token string) *Client {
	if token == "" {
		c := NewClientWithHTTPClient(&http.Client{Timeout: DefaultTimeout})
		// 60 requests per hour leaves no room for a reserve.
		c.throttle.reserve = 0
		return c
	}
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	hc.Timeout = DefaultTimeout
	return NewClientWithHTTPClient(hc)
}

// NewClientWithHTTPClient creates a GitHub client with a custom http.Client.
func NewClientWithHTTPClient(httpClient *http.Client) *Client {
	return &Client{
		gh:       gh.NewClient(httpClient),
		throttle: NewThrottle(requestsPerSecond),
	}
}

// SetBaseURL points the client at a GitHub Enterprise or test server.
func (c *Client) SetBaseURL(base string) error {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	c.gh.BaseURL = u
	return nil
}

// Quota is the request quota GitHub last reported.
func (c *Client) Quota() gh.Rate {
	return c.throttle.Quota()
}

// ListIssues lists every issue of a repository, following pagination.
// The issues endpoint also returns pull requests.
func (c *Client) ListIssues(ctx context.Context, owner, repo string) ([]*gh.Issue, error) {
	opts := &gh.IssueListByRepoOptions{
		State:       "all",
		Sort:        "created",
		Direction:   "asc",
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	var all []*gh.Issue
	for {
		if err := c.throttle.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		issues, resp, err := c.gh.Issues.ListByRepo(ctx, owner, repo, opts)
		if err != nil {
			return nil, wrapError("list issues", err)
		}
		c.throttle.Observe(resp)
		all = append(all, issues...)

		if resp.NextPage == 0 {
			break
		}
		opts.ListOptions.Page = resp.NextPage
	}
	return all, nil
}

// ListPullRequests lists every pull request of a repository.
func (c *Client) ListPullRequests(ctx context.Context, owner, repo string) ([]*gh.PullRequest, error) {
	opts := &gh.PullRequestListOptions{
		State:       "all",
		Sort:        "created",
		Direction:   "asc",
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	var all []*gh.PullRequest
	for {
		if err := c.throttle.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		prs, resp, err := c.gh.PullRequests.List(ctx, owner, repo, opts)
		if err != nil {
			return nil, wrapError("list pull requests", err)
		}
		c.throttle.Observe(resp)
		all = append(all, prs...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}
