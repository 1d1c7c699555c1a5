package dataset

import "errors"

// Sentinel kinds for dataset loading errors. All of these are fatal:
// the service refuses to start without a usable dataset.
var (
	ErrOpenFailed        = errors.New("dataset open failed")
	ErrMalformedCSV      = errors.New("malformed csv")
	ErrEmptyDataset      = errors.New("empty dataset")
	ErrMissingTarget     = errors.New("missing target column")
	ErrBadLabel          = errors.New("non-integer target label")
	ErrNonNumericFeature = errors.New("non-numeric feature")
	ErrTooFewClasses     = errors.New("too few classes")
)
