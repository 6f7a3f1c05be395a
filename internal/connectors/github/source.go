package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/gridview/internal/core/domain"
	"github.com/custodia-labs/gridview/internal/core/ports/driven"
	"github.com/custodia-labs/gridview/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.RecordSource = (*Source)(nil)

// Source loads issues or pull requests of a repository.
type Source struct {
	client *Client
}

// NewSource creates a GitHub record source.
func NewSource(client *Client) *Source {
	return &Source{client: client}
}

// Scheme returns "github".
func (s *Source) Scheme() string {
	return domain.SchemeGitHub
}

// Load reads "owner/repo", "owner/repo/issues" or "owner/repo/pulls".
func (s *Source) Load(ctx context.Context, path string) (domain.RecordSet, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
		return domain.RecordSet{}, fmt.Errorf("%w: github location must be owner/repo[/issues|/pulls], got %q",
			domain.ErrInvalidInput, path)
	}
	owner, repo := parts[0], parts[1]
	kind := "issues"
	if len(parts) == 3 {
		kind = parts[2]
	}

	switch kind {
	case "issues":
		return s.issues(ctx, owner, repo)
	case "pulls":
		return s.pulls(ctx, owner, repo)
	}
	return domain.RecordSet{}, fmt.Errorf("%w: github content %q", domain.ErrUnsupportedType, kind)
}

func (s *Source) issues(ctx context.Context, owner, repo string) (domain.RecordSet, error) {
	issues, err := s.client.ListIssues(ctx, owner, repo)
	if err != nil {
		return domain.RecordSet{}, err
	}
	set := domain.RecordSet{Columns: IssueColumns, Records: make([]domain.Record, 0, len(issues))}
	for _, issue := range issues {
		if issue.IsPullRequest() {
			continue
		}
		set.Records = append(set.Records, issueRecord(issue))
	}
	logger.Debug("github %s/%s: %d issues (%d remaining requests)",
		owner, repo, len(set.Records), s.client.Quota().Remaining)
	return set, nil
}

func (s *Source) pulls(ctx context.Context, owner, repo string) (domain.RecordSet, error) {
	prs, err := s.client.ListPullRequests(ctx, owner, repo)
	if err != nil {
		return domain.RecordSet{}, err
	}
	set := domain.RecordSet{Columns: PullColumns, Records: make([]domain.Record, 0, len(prs))}
	for _, pr := range prs {
		set.Records = append(set.Records, pullRecord(pr))
	}
	return set, nil
}
