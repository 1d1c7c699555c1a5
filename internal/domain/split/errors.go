package split

import "errors"

// Sentinel kinds for partitioning errors.
var (
	ErrTooFewRows   = errors.New("too few rows")
	ErrBadRatio     = errors.New("invalid split ratio")
	ErrBadFoldCount = errors.New("invalid fold count")
)
