package service

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrBackpressure means the embedding task queue is full.
	ErrBackpressure = errors.New("embedding queue full")
	// ErrNotStarted means the service has not been started or was stopped.
	ErrNotStarted = errors.New("service not started")
)
