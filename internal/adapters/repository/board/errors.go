package board

import "errors"

// Sentinel kinds for board errors.
var (
	ErrNotFound     = errors.New("evaluation not found")
	ErrInvalidLimit = errors.New("invalid standings limit")
)
