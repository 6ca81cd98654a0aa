// Package engine implements the screening scheduler and seat-inventory
// core: the hall registry, the screening scheduler with its per-hall
// no-overlap invariant, the per-occurrence booking engine and the
// append-only purchase ledger.  The HTTP layer is a thin collaborator;
// every business invariant is enforced here regardless of caller.
//
// This file defines the error taxonomy.  All failures a single request
// can produce are typed so the transport layer can map each to a
// distinct user-facing response; none are fatal to the process.
package engine

import (
	"fmt"

	"github.com/mycinema/screening-engine/internal/model"
)

// ValidationError reports malformed input.  The caller can recover by
// correcting the named field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports that a referenced entity or occurrence does
// not exist.  Entity is a lowercase noun such as "hall" or
// "screening"; Ref identifies the missing record.
type NotFoundError struct {
	Entity string
	Ref    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Ref)
}

// OverlapError reports that a screening interval collides with an
// existing screening in the same hall.  The conflicting screening is
// named so callers can display or resolve the clash.
type OverlapError struct {
	HallID      uint64
	Conflicting *model.Screening
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("screening overlaps screening %d in hall %d (%s–%s, %s..%s)",
		e.Conflicting.ID, e.HallID,
		e.Conflicting.StartTime, e.Conflicting.FinishTime,
		e.Conflicting.DateStart, e.Conflicting.DateEnd)
}

// ImmutableError reports a mutation attempt on a hall or screening
// that is locked by sold tickets.  The locked state is derived from
// the ledger, never stored.
type ImmutableError struct {
	Entity string
	ID     uint64
}

func (e *ImmutableError) Error() string {
	return fmt.Sprintf("%s %d has sold tickets and cannot be modified", e.Entity, e.ID)
}

// ConflictError reports that dependent records block an operation,
// such as deleting a hall that screenings still reference.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

// SoldOutError reports that a purchase asked for more seats than the
// occurrence has left.  Available lets the caller render "only K left"
// or a hard sold-out notice when K is zero.
type SoldOutError struct {
	ScreeningID uint64
	Date        model.Date
	Requested   uint32
	Available   uint32
}

func (e *SoldOutError) Error() string {
	return fmt.Sprintf("screening %d on %s: requested %d seats, %d available",
		e.ScreeningID, e.Date, e.Requested, e.Available)
}

// ConcurrencyError reports transient contention.  Unlike the terminal
// SoldOutError and OverlapError, the caller should retry the whole
// operation from validation.
type ConcurrencyError struct {
	Op string
}

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("%s: transient conflict, retry the operation", e.Op)
}
