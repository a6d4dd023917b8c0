package types

import "errors"

// Domain errors shared by all comparison components
var (
	// ErrInvalidConfiguration rejects a request before any hashing starts
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInternalInconsistency marks a broken invariant, such as a reversed line range
	ErrInternalInconsistency = errors.New("internal inconsistency")
)
