package skills

import "errors"

// ErrInvalidSkill is returned for skill entries that cannot be normalized.
var ErrInvalidSkill = errors.New("invalid skill")
