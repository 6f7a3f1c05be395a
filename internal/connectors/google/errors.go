package google

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/gridview/internal/core/domain"
)

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests
	}
	return errors.Is(err, domain.ErrRateLimited)
}

// retryAfter reads the Retry-After header of a rate limited response.
// It returns zero when the header is absent or not a number of seconds.
func retryAfter(err error) time.Duration {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Header == nil {
		return 0
	}
	secs, _ := strconv.Atoi(gerr.Header.Get("Retry-After"))
	return time.Duration(secs) * time.Second
}

// WrapError maps a Google API error onto the matching domain error while
// keeping the API message.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	var kind error
	switch gerr.Code {
	case http.StatusBadRequest:
		kind = domain.ErrInvalidInput
	case http.StatusUnauthorized:
		kind = domain.ErrAuthInvalid
	case http.StatusForbidden:
		kind = domain.ErrAuthRequired
	case http.StatusNotFound:
		kind = domain.ErrNotFound
	case http.StatusTooManyRequests:
		kind = domain.ErrRateLimited
	default:
		return err
	}
	return fmt.Errorf("google: %s: %w", gerr.Message, kind)
}
