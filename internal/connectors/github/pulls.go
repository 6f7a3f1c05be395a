package github

import (
	"strings"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/gridview/internal/core/domain"
)

// PullColumns is the column order of pull request rows.
var PullColumns = []string{
	"id", "title", "state", "author", "draft", "merged", "head", "base",
	"labels", "reviewers", "created_at", "updated_at", "merged_at", "url",
}

func pullRecord(pr *gh.PullRequest) domain.Record {
	labels := make([]string, len(pr.Labels))
	for i, l := range pr.Labels {
		labels[i] = l.GetName()
	}
	reviewers := make([]string, len(pr.RequestedReviewers))
	for i, r := range pr.RequestedReviewers {
		reviewers[i] = r.GetLogin()
	}

	// The list endpoint leaves "merged" unset; merged_at is reliable.
	merged := pr.GetMerged() || pr.MergedAt != nil

	return domain.Record{
		"id":         float64(pr.GetNumber()),
		"title":      pr.GetTitle(),
		"state":      pr.GetState(),
		"author":     pr.GetUser().GetLogin(),
		"draft":      pr.GetDraft(),
		"merged":     merged,
		"head":       pr.GetHead().GetRef(),
		"base":       pr.GetBase().GetRef(),
		"labels":     strings.Join(labels, ", "),
		"reviewers":  strings.Join(reviewers, ", "),
		"created_at": timestamp(pr.CreatedAt),
		"updated_at": timestamp(pr.UpdatedAt),
		"merged_at":  timestamp(pr.MergedAt),
		"url":        pr.GetHTMLURL(),
	}
}
