package ranking

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrUnknownItem   = errors.New("unknown item")
	ErrNotRanked     = errors.New("item not ranked")
	ErrNothingRanked = errors.New("nothing is ranked")
)
