package activity

import "errors"

// ErrInvalidInput indicates an activity entry was missing.
var ErrInvalidInput = errors.New("invalid activity input")
