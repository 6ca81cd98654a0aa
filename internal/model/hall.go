package model

import "time"

// Hall represents a screening hall with a fixed seat capacity.
// This struct corresponds to a row in the `halls` table.
//
// Fields:
//
//	ID         – primary key identifier.
//	Name       – globally unique hall name.
//	TotalSeats – seat capacity; always positive.
//	CreatedAt  – timestamp when the hall was created.
//	UpdatedAt  – timestamp of last update.
//
// A hall's name and capacity become immutable once any screening in
// the hall has at least one sold ticket.  That state is derived from
// the purchase ledger, not stored on the row.
type Hall struct {
	ID         uint64    // halls.id
	Name       string    // halls.name
	TotalSeats uint32    // halls.total_seats
	CreatedAt  time.Time // halls.created_at
	UpdatedAt  time.Time // halls.updated_at
}
