package model

import "errors"

// Sentinel error kinds shared by the matching engine. Callers use errors.Is.
var (
	// ErrInvalidInput marks malformed caller input: empty text, negative
	// experience, bad skill entries, non-unit vectors.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMissingEntity marks a referenced team, project or employee that does not exist.
	ErrMissingEntity = errors.New("missing entity")
	// ErrModelUnavailable marks an embedding model that is not loaded, failed or timed out.
	ErrModelUnavailable = errors.New("embedding model unavailable")
	// ErrStaleDerivedState marks team derived fields awaiting recomputation.
	// It never leaves the team package.
	ErrStaleDerivedState = errors.New("stale derived state")
)
