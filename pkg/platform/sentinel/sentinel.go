package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally wrapped)
// so services can translate them into domain errors.
//
// These represent factual states about the store, not validation failures:
//   - ErrNotFound: the list, or the item inside the list, does not exist
//   - ErrUnavailable: the store could not be reached (network, timeout, server selection)
//   - ErrInvariantViolation: the store returned a document that does not have the persisted shape
//
// For validation errors (bad input, malformed identifiers), use pkg/domain-errors directly.
var (
	ErrNotFound           = errors.New("not found")
	ErrUnavailable        = errors.New("unavailable")
	ErrInvariantViolation = errors.New("store invariant violation")
)
