package domain

import "errors"

var (
	// ErrItemNotFound is returned by surfaces that address an item explicitly.
	// The store itself treats missing ids as no-ops.
	ErrItemNotFound = errors.New("item not found")
	// ErrMalformedState marks a persisted value that exists but cannot be decoded.
	ErrMalformedState = errors.New("malformed persisted state")
	// ErrNotConfirmed is returned when the user declines a guarded action.
	ErrNotConfirmed     = errors.New("action not confirmed")
	ErrTaskNotFound     = errors.New("task not found")
	ErrEmptyTask        = errors.New("task text is empty")
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrInvalidInput     = errors.New("invalid input")
)
