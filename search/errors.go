package search

import "errors"

var (
	// ErrRebuildFailed wraps any error returned by a Source during Rebuild.
	// The previously installed index stays in service when it is returned.
	ErrRebuildFailed = errors.New("search: rebuild failed")

	// ErrNilSource is returned by Rebuild when called without a Source.
	ErrNilSource = errors.New("search: nil source")
)
