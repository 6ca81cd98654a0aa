// Package storage defines the sentinel errors shared by every store
// implementation and provides an in-memory store.  Higher layers match
// these sentinels to translate storage failures into the typed engine
// errors; for example ErrConflict becomes a retryable ConcurrencyError
// while ErrNotFound becomes a NotFoundError.
package storage

import "errors"

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert or update violates a
// uniqueness constraint, such as a duplicate hall name.
var ErrDuplicate = errors.New("duplicate record")

// ErrConflict is returned on transient serialization failures
// (deadlock, lock wait timeout).  Callers should retry the whole
// operation from validation.
var ErrConflict = errors.New("storage conflict")
