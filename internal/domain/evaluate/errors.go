package evaluate

import "errors"

// Sentinel kinds for evaluation errors.
var (
	ErrNoSamples     = errors.New("no test samples")
	ErrShapeMismatch = errors.New("shape mismatch")
	ErrUnknownClass  = errors.New("unknown class")
)
