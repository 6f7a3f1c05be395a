package github

import (
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/gridview/internal/core/domain"
)

// IssueColumns is the column order of issue rows.
var IssueColumns = []string{
	"id", "title", "state", "author", "labels", "assignees",
	"milestone", "comments", "created_at", "updated_at", "closed_at", "url",
}

// issueRecord flattens an issue into a row. Labels and assignees are joined
// with ", " so they filter as text.
func issueRecord(issue *gh.Issue) domain.Record {
	labels := make([]string, len(issue.Labels))
	for i, l := range issue.Labels {
		labels[i] = l.GetName()
	}
	assignees := make([]string, len(issue.Assignees))
	for i, a := range issue.Assignees {
		assignees[i] = a.GetLogin()
	}

	var milestone any
	if issue.Milestone != nil {
		milestone = issue.Milestone.GetTitle()
	}

	return domain.Record{
		"id":         float64(issue.GetNumber()),
		"title":      issue.GetTitle(),
		"state":      issue.GetState(),
		"author":     issue.GetUser().GetLogin(),
		"labels":     strings.Join(labels, ", "),
		"assignees":  strings.Join(assignees, ", "),
		"milestone":  milestone,
		"comments":   float64(issue.GetComments()),
		"created_at": timestamp(issue.CreatedAt),
		"updated_at": timestamp(issue.UpdatedAt),
		"closed_at":  timestamp(issue.ClosedAt),
		"url":        issue.GetHTMLURL(),
	}
}

// timestamp renders an optional GitHub time as RFC 3339, or nil.
func timestamp(ts *gh.Timestamp) any {
	if ts == nil || ts.IsZero() {
		return nil
	}
	return ts.UTC().Format(time.RFC3339)
}
