package queue

import "errors"

// Sentinel kinds for enqueue failures.
var (
	ErrFull   = errors.New("task queue full")
	ErrClosed = errors.New("task queue closed")
)
