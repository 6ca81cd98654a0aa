package model

import "time"

// Screening status values.  A screening is ACTIVE from creation and
// may only be deactivated, never deleted, once tickets exist.
const (
	ScreeningActive   = "ACTIVE"
	ScreeningInactive = "INACTIVE"
)

// Screening represents a film screening that recurs daily in one hall
// across an inclusive date range.  Each calendar date in
// [DateStart, DateEnd] is a separate occurrence with its own seat
// inventory.  This struct corresponds to a row in the `screenings`
// table.
//
// Fields:
//
//	ID         – primary key identifier.
//	HallID     – hall the screening runs in.
//	FilmID     – film being screened.
//	StartTime  – daily start time of day.
//	FinishTime – daily finish time of day; strictly after StartTime.
//	DateStart  – first occurrence date.
//	DateEnd    – last occurrence date (inclusive); never before DateStart.
//	PriceCents – ticket price per seat in cents.
//	Status     – ACTIVE or INACTIVE.
//	CreatedAt  – creation timestamp.
//	UpdatedAt  – last update timestamp.
type Screening struct {
	ID         uint64    // screenings.id
	HallID     uint64    // screenings.hall_id
	FilmID     uint64    // screenings.film_id
	StartTime  Clock     // screenings.start_time
	FinishTime Clock     // screenings.finish_time
	DateStart  Date      // screenings.date_start
	DateEnd    Date      // screenings.date_end
	PriceCents uint32    // screenings.price_cents
	Status     string    // screenings.status
	CreatedAt  time.Time // screenings.created_at
	UpdatedAt  time.Time // screenings.updated_at
}

// ScreeningFilter narrows screening listings.  Zero-valued fields are
// ignored.  Date selects screenings with an occurrence on that day,
// which is how a screening spanning today and tomorrow shows up in
// both day views.
type ScreeningFilter struct {
	HallID uint64
	FilmID uint64
	Date   *Date
}

// Matches reports whether the screening satisfies every set filter
// field.
func (f ScreeningFilter) Matches(s *Screening) bool {
	if f.HallID != 0 && s.HallID != f.HallID {
		return false
	}
	if f.FilmID != 0 && s.FilmID != f.FilmID {
		return false
	}
	if f.Date != nil && !s.RunsOn(*f.Date) {
		return false
	}
	return true
}

// Active reports whether the screening accepts purchases.
func (s *Screening) Active() bool { return s.Status == ScreeningActive }

// RunsOn reports whether the screening has an occurrence on the given
// date, i.e. DateStart <= d <= DateEnd.
func (s *Screening) RunsOn(d Date) bool {
	return !d.Before(s.DateStart) && !d.After(s.DateEnd)
}

// Overlaps reports whether two screenings collide in the same hall.
// The intervals span two independent dimensions: the screenings clash
// only when their date ranges share at least one calendar day AND
// their daily time windows intersect on such a day.  The time test is
// half-open so a 10:00–12:00 screening and a 12:00–14:00 screening can
// share a hall.
func (s *Screening) Overlaps(o *Screening) bool {
	if s.HallID != o.HallID {
		return false
	}
	if !DateRangesIntersect(s.DateStart, s.DateEnd, o.DateStart, o.DateEnd) {
		return false
	}
	return ClockRangesIntersect(s.StartTime, s.FinishTime, o.StartTime, o.FinishTime)
}
