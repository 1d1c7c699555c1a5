package forest

import "errors"

// Sentinel kinds for classifier errors.
var (
	ErrEmptyTrainingSet  = errors.New("empty training set")
	ErrShapeMismatch     = errors.New("shape mismatch")
	ErrBadHyperparameter = errors.New("invalid hyperparameter")
	ErrNotFitted         = errors.New("classifier not fitted")
)
