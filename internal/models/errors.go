package models

import "errors"

// Error taxonomy shared by the stores and services. Implementations wrap
// these sentinels so callers can branch with errors.Is.
var (
	// ErrNotFound means the backing store or a named entity does not exist.
	// Reads treat it as "empty result"; writes treat it as "create".
	ErrNotFound = errors.New("not found")

	// ErrConflict means the store's version marker changed between read and
	// write. The whole operation may be retried.
	ErrConflict = errors.New("version conflict")

	// ErrPersistence covers every other read or write failure against the
	// backing store. Surfaced to the user, never silently dropped.
	ErrPersistence = errors.New("persistence failure")

	// ErrValidation means the input was rejected before any persistence
	// attempt was made.
	ErrValidation = errors.New("validation failed")
)
