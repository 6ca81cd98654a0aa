package model

import "time"

// Film represents a movie that screenings are scheduled for.
// This struct corresponds to a row in the `films` table.
//
// Fields:
//
//	ID          – primary key identifier.
//	Title       – film title; unique together with ReleaseDate.
//	Description – optional synopsis text.
//	ReleaseDate – earliest calendar date a screening may start on.
//	DurationMin – running time in minutes; always positive.
//	CreatedAt   – timestamp when the film was created.
//	UpdatedAt   – timestamp of last update.
type Film struct {
	ID          uint64    // films.id
	Title       string    // films.title
	Description string    // films.description
	ReleaseDate Date      // films.release_date
	DurationMin uint32    // films.duration_min
	CreatedAt   time.Time // films.created_at
	UpdatedAt   time.Time // films.updated_at
}
