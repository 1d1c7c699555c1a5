package run

import "errors"

// Sentinel kinds for request validation errors.
var (
	ErrInvalidRequest = errors.New("invalid run request")
)
