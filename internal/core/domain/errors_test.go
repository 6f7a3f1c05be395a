package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func allErrors() []error {
	return []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrNotImplemented,
		ErrUnsupportedType,
		ErrAuthRequired,
		ErrAuthInvalid,
		ErrRateLimited,
		ErrInvalidFilterSpec,
		ErrMissingRowKey,
		ErrDuplicateID,
		ErrUnknownField,
		ErrNotSortable,
		ErrNotFilterable,
	}
}

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	for _, err := range allErrors() {
		t.Run(err.Error(), func(t *testing.T) {
			assert.NotNil(t, err)
			assert.NotEmpty(t, err.Error())
		})
	}
}

// TestErrors_Uniqueness tests that all errors are distinct
func TestErrors_Uniqueness(t *testing.T) {
	errs := allErrors()
	for i, err1 := range errs {
		for j, err2 := range errs {
			if i != j {
				assert.False(t, errors.Is(err1, err2),
					"Error %v should not match error %v", err1, err2)
			}
		}
	}
}

// TestErrors_ErrorMessages tests that error messages are descriptive
func TestErrors_ErrorMessages(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{ErrNotFound, "not found"},
		{ErrInvalidInput, "invalid input"},
		{ErrUnknownField, "unknown field"},
		{ErrNotSortable, "field is not sortable"},
		{ErrNotFilterable, "field is not filterable"},
		{ErrDuplicateID, "duplicate record id"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

// TestErrors_WithWrapping tests error wrapping behavior
func TestErrors_WithWrapping(t *testing.T) {
	wrapped := fmt.Errorf("sort %s: %w", "owner", ErrNotSortable)
	assert.True(t, errors.Is(wrapped, ErrNotSortable))
	assert.False(t, errors.Is(wrapped, ErrNotFilterable))
	assert.Equal(t, "sort owner: field is not sortable", wrapped.Error())

	joined := errors.Join(errors.New("context"), ErrInvalidInput)
	assert.True(t, errors.Is(joined, ErrInvalidInput))
}
