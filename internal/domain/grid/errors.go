package grid

import "errors"

// Sentinel kinds for grid construction errors.
var (
	ErrInvalidRange   = errors.New("invalid range")
	ErrEmptyDimension = errors.New("empty grid dimension")
	ErrUnknownValue   = errors.New("unknown candidate value")
)
