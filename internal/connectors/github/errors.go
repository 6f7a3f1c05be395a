package github

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/gridview/internal/core/domain"
)

// Error is a failed GitHub API call. Kind is the domain error it maps to,
// or nil when the status has no domain meaning.
type Error struct {
	Op      string
	Status  int
	Message string
	URL     string

	// ResetAt is when the exhausted quota refills; zero unless rate limited.
	ResetAt time.Time

	Kind error
}

func (e *Error) Error() string {
	if !e.ResetAt.IsZero() {
		return fmt.Sprintf("github: %s: rate limited until %s", e.Op, e.ResetAt.Format(time.RFC3339))
	}
	if e.URL != "" {
		return fmt.Sprintf("github: %s: %d %s (%s)", e.Op, e.Status, e.Message, e.URL)
	}
	return fmt.Sprintf("github: %s: %d %s", e.Op, e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// IsRateLimited reports whether err came from an exhausted primary or
// secondary rate limit.
func IsRateLimited(err error) bool {
	return errors.Is(err, domain.ErrRateLimited)
}

// statusKind maps HTTP statuses onto domain errors.
func statusKind(status int) error {
	switch status {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusUnauthorized:
		return domain.ErrAuthInvalid
	case http.StatusForbidden:
		return domain.ErrAuthRequired
	case http.StatusTooManyRequests:
		return domain.ErrRateLimited
	}
	return nil
}

// wrapError converts go-github errors into *Error. Other errors, such as
// transport failures, are wrapped with op as they are.
func wrapError(op string, err error) error {
	var limited *gh.RateLimitError
	if errors.As(err, &limited) {
		return &Error{
			Op:      op,
			Status:  http.StatusForbidden,
			Message: limited.Message,
			ResetAt: limited.Rate.Reset.Time,
			Kind:    domain.ErrRateLimited,
		}
	}

	var abuse *gh.AbuseRateLimitError
	if errors.As(err, &abuse) {
		e := &Error{Op: op, Status: http.StatusForbidden, Message: abuse.Message, Kind: domain.ErrRateLimited}
		e.ResetAt = time.Now().Add(abuse.GetRetryAfter())
		return e
	}

	var resp *gh.ErrorResponse
	if errors.As(err, &resp) && resp.Response != nil {
		e := &Error{
			Op:      op,
			Status:  resp.Response.StatusCode,
			Message: resp.Message,
			Kind:    statusKind(resp.Response.StatusCode),
		}
		if resp.Response.Request != nil {
			e.URL = resp.Response.Request.URL.String()
		}
		return e
	}

	return fmt.Errorf("github: %s: %w", op, err)
}
