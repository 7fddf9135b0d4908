package prepare

import "errors"

// Sentinel kinds for preparation errors.
var (
	ErrEmptyGraph    = errors.New("property graph has no relations")
	ErrPrepareFailed = errors.New("edit preparation failed")
)
