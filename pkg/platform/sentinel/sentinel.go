// Package sentinel holds the errors stores return. Services translate them
// into domain errors at the boundary.
package sentinel

import "errors"

var (
	// ErrNotFound means no row or entry has the requested id.
	ErrNotFound = errors.New("not found")
	// ErrConflict means the id or settlement key is already taken.
	ErrConflict = errors.New("conflict")
)
