package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors at the edge.
//
// - ErrNotFound: entity does not exist in the store
// - ErrConflict: optimistic version check failed on write
//
// For validation errors (bad input, missing fields), use pkg/domain-errors
// directly.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)
