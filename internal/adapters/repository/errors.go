package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound    = errors.New("run not found")
	ErrBadReport   = errors.New("invalid report")
	ErrDuplicateID = errors.New("duplicate report id")
)
