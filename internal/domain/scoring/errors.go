package scoring

import "errors"

// Sentinel errors for aggregation.
var (
	ErrEmptyInput           = errors.New("no fights observed")
	ErrInvalidConfiguration = errors.New("invalid scoring configuration")
)
