package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not available, such as
	// watching without a change notifier.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates an unknown location scheme or file format.
	ErrUnsupportedType = errors.New("unsupported type")

	// Source Errors.

	// ErrAuthRequired indicates the source requires credentials but none are configured.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthInvalid indicates the credentials were rejected.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// Dataset engine errors.
var (
	// ErrInvalidFilterSpec indicates an unknown filter kind. It is a
	// programming error and aborts the operation.
	ErrInvalidFilterSpec = errors.New("invalid filter spec")

	// ErrMissingRowKey indicates a record without a row key value.
	ErrMissingRowKey = errors.New("record missing row key")

	// ErrDuplicateID indicates two records share a row key value.
	ErrDuplicateID = errors.New("duplicate record id")

	// ErrUnknownField indicates a field absent from the dataset schema.
	ErrUnknownField = errors.New("unknown field")

	// ErrNotSortable indicates a field that does not accept sorting.
	ErrNotSortable = errors.New("field is not sortable")

	// ErrNotFilterable indicates a field that does not accept filtering.
	ErrNotFilterable = errors.New("field is not filterable")
)
