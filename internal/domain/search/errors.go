package search

import "errors"

// Sentinel kinds for search configuration errors. These surface to the
// user before any model fitting happens.
var (
	ErrBadParams = errors.New("invalid search parameters")
)
