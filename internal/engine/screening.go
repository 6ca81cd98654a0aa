package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mycinema/screening-engine/internal/model"
	"github.com/mycinema/screening-engine/internal/storage"
)

// ScreeningInput carries the fields for a new screening.  FinishTime
// may be nil, in which case it defaults to StartTime plus the film's
// running time.
type ScreeningInput struct {
	HallID     uint64
	FilmID     uint64
	StartTime  model.Clock
	FinishTime *model.Clock
	DateStart  model.Date
	DateEnd    model.Date
	PriceCents int64
}

// ScreeningUpdate carries the mutable screening fields for a partial
// update.  Nil fields are left unchanged.
type ScreeningUpdate struct {
	StartTime  *model.Clock
	FinishTime *model.Clock
	DateStart  *model.Date
	DateEnd    *model.Date
	PriceCents *int64
}

// Sort keys and directions accepted by ListScreenings.
const (
	SortByStartTime = "start_time"
	SortByPrice     = "price"
	SortAsc         = "asc"
	SortDesc        = "desc"
)

// ScreeningQuery combines a filter with an ordering for listings.
type ScreeningQuery struct {
	Filter model.ScreeningFilter
	SortBy string
	Dir    string

	// IncludeInactive also returns deactivated screenings.  Public
	// day views leave it unset.
	IncludeInactive bool
}

// CreateScreening validates and stores a new screening.  The overlap
// check and the insert run under the hall's lock so that no two
// concurrent creates on the same hall can both pass validation against
// each other; creates on different halls proceed independently.
//
// now determines "today" for the rule that a screening cannot start in
// the past; callers pass wall clock, tests pass a fixture.
func (e *Engine) CreateScreening(ctx context.Context, now time.Time, in ScreeningInput) (*model.Screening, error) {
	hall, err := e.GetHall(ctx, in.HallID)
	if err != nil {
		return nil, err
	}
	film, err := e.GetFilm(ctx, in.FilmID)
	if err != nil {
		return nil, err
	}

	finish := in.StartTime.Add(int(film.DurationMin))
	if in.FinishTime != nil {
		finish = *in.FinishTime
	}
	s := &model.Screening{
		HallID:     hall.ID,
		FilmID:     film.ID,
		StartTime:  in.StartTime,
		FinishTime: finish,
		DateStart:  in.DateStart,
		DateEnd:    in.DateEnd,
		Status:     model.ScreeningActive,
	}
	if err := validateScreeningTimes(s, in.PriceCents); err != nil {
		return nil, err
	}
	if s.DateStart.Before(model.DateOf(now)) {
		return nil, &ValidationError{Field: "date_start", Reason: "must not be in the past"}
	}
	if s.DateStart.Before(film.ReleaseDate) {
		return nil, &ValidationError{Field: "date_start", Reason: fmt.Sprintf("precedes film release date %s", film.ReleaseDate)}
	}
	s.PriceCents = uint32(in.PriceCents)

	unlock := e.locks.acquire(hallKey(hall.ID))
	defer unlock()

	if err := e.checkOverlap(ctx, s, 0); err != nil {
		return nil, err
	}
	if err := e.screenings.CreateScreening(ctx, s); err != nil {
		return nil, storeFailure("create screening", err)
	}
	e.log.Info("screening created",
		zap.Uint64("screening_id", s.ID),
		zap.Uint64("hall_id", s.HallID),
		zap.String("start", s.StartTime.String()),
		zap.String("dates", s.DateStart.String()+".."+s.DateEnd.String()))
	return s, nil
}

// UpdateScreening changes a screening's times, date range and/or
// price.  It fails with ImmutableError as soon as any occurrence has a
// sold ticket, and otherwise re-runs the full overlap validation
// against all other screenings in the hall before committing.
func (e *Engine) UpdateScreening(ctx context.Context, now time.Time, id uint64, upd ScreeningUpdate) (*model.Screening, error) {
	s, err := e.GetScreening(ctx, id)
	if err != nil {
		return nil, err
	}
	film, err := e.GetFilm(ctx, s.FilmID)
	if err != nil {
		return nil, err
	}

	unlock := e.locks.acquire(hallKey(s.HallID))
	defer unlock()
	// Exclusive screening key: waits out in-flight purchases so a
	// first sale cannot land between the ledger check and the commit.
	unfence := e.locks.acquire(screeningKey(id))
	defer unfence()

	sold, err := e.ledger.ScreeningHasSales(ctx, id)
	if err != nil {
		return nil, storeFailure("check screening sales", err)
	}
	if sold {
		return nil, &ImmutableError{Entity: "screening", ID: id}
	}

	if upd.StartTime != nil {
		s.StartTime = *upd.StartTime
	}
	if upd.FinishTime != nil {
		s.FinishTime = *upd.FinishTime
	}
	if upd.DateStart != nil {
		s.DateStart = *upd.DateStart
		if s.DateStart.Before(model.DateOf(now)) {
			return nil, &ValidationError{Field: "date_start", Reason: "must not be in the past"}
		}
		if s.DateStart.Before(film.ReleaseDate) {
			return nil, &ValidationError{Field: "date_start", Reason: fmt.Sprintf("precedes film release date %s", film.ReleaseDate)}
		}
	}
	if upd.DateEnd != nil {
		s.DateEnd = *upd.DateEnd
	}
	price := int64(s.PriceCents)
	if upd.PriceCents != nil {
		price = *upd.PriceCents
	}
	if err := validateScreeningTimes(s, price); err != nil {
		return nil, err
	}
	s.PriceCents = uint32(price)

	if err := e.checkOverlap(ctx, s, s.ID); err != nil {
		return nil, err
	}
	if err := e.screenings.UpdateScreening(ctx, s); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &NotFoundError{Entity: "screening", Ref: fmt.Sprint(id)}
		}
		return nil, storeFailure("update screening", err)
	}
	e.log.Info("screening updated", zap.Uint64("screening_id", s.ID))
	return s, nil
}

// DeactivateScreening takes a screening out of sale.  Deactivation is
// the only way to retire a screening once tickets exist; the rows stay
// behind as the ledger's referent.  Deactivating an already inactive
// screening is a no-op.
func (e *Engine) DeactivateScreening(ctx context.Context, id uint64) (*model.Screening, error) {
	s, err := e.GetScreening(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.Active() {
		return s, nil
	}
	s.Status = model.ScreeningInactive
	if err := e.screenings.UpdateScreening(ctx, s); err != nil {
		return nil, storeFailure("deactivate screening", err)
	}
	e.log.Info("screening deactivated", zap.Uint64("screening_id", id))
	return s, nil
}

// DeleteScreening removes a screening that has never sold a ticket.
// With sales present it fails with a ConflictError; use
// DeactivateScreening instead.
func (e *Engine) DeleteScreening(ctx context.Context, id uint64) error {
	if _, err := e.GetScreening(ctx, id); err != nil {
		return err
	}
	unfence := e.locks.acquire(screeningKey(id))
	defer unfence()
	sold, err := e.ledger.ScreeningHasSales(ctx, id)
	if err != nil {
		return storeFailure("check screening sales", err)
	}
	if sold {
		return &ConflictError{Reason: fmt.Sprintf("screening %d has sold tickets; deactivate it instead", id)}
	}
	if err := e.screenings.DeleteScreening(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &NotFoundError{Entity: "screening", Ref: fmt.Sprint(id)}
		}
		return storeFailure("delete screening", err)
	}
	e.log.Info("screening deleted", zap.Uint64("screening_id", id))
	return nil
}

// GetScreening returns a screening by ID.
func (e *Engine) GetScreening(ctx context.Context, id uint64) (*model.Screening, error) {
	s, err := e.screenings.GetScreening(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &NotFoundError{Entity: "screening", Ref: fmt.Sprint(id)}
		}
		return nil, storeFailure("get screening", err)
	}
	return s, nil
}

// ListScreenings returns screenings matching the query.  Results are a
// point-in-time snapshot; the purchase path re-validates, so serving
// listings without the write locks is fine.
func (e *Engine) ListScreenings(ctx context.Context, q ScreeningQuery) ([]model.Screening, error) {
	switch q.SortBy {
	case "", SortByStartTime, SortByPrice:
	default:
		return nil, &ValidationError{Field: "sort", Reason: "must be start_time or price"}
	}
	switch q.Dir {
	case "", SortAsc, SortDesc:
	default:
		return nil, &ValidationError{Field: "dir", Reason: "must be asc or desc"}
	}

	list, err := e.screenings.ListScreenings(ctx, q.Filter)
	if err != nil {
		return nil, storeFailure("list screenings", err)
	}
	if !q.IncludeInactive {
		active := list[:0]
		for _, s := range list {
			if s.Active() {
				active = append(active, s)
			}
		}
		list = active
	}

	desc := q.Dir == SortDesc
	switch q.SortBy {
	case SortByPrice:
		sort.SliceStable(list, func(i, j int) bool {
			if desc {
				return list[i].PriceCents > list[j].PriceCents
			}
			return list[i].PriceCents < list[j].PriceCents
		})
	default:
		sort.SliceStable(list, func(i, j int) bool {
			if desc {
				return list[i].StartTime > list[j].StartTime
			}
			return list[i].StartTime < list[j].StartTime
		})
	}
	return list, nil
}

// checkOverlap scans the hall's screenings for an interval collision
// with the candidate, skipping the candidate itself (excludeID) on
// updates and any deactivated screening.  Callers must hold the hall
// lock so the scan and the subsequent insert form one atomic step.
func (e *Engine) checkOverlap(ctx context.Context, candidate *model.Screening, excludeID uint64) error {
	existing, err := e.screenings.ListByHall(ctx, candidate.HallID)
	if err != nil {
		return storeFailure("scan hall screenings", err)
	}
	for i := range existing {
		other := &existing[i]
		if other.ID == excludeID || !other.Active() {
			continue
		}
		if candidate.Overlaps(other) {
			e.metrics.RecordOverlapRejection()
			return &OverlapError{HallID: candidate.HallID, Conflicting: other}
		}
	}
	return nil
}

func validateScreeningTimes(s *model.Screening, priceCents int64) error {
	if s.FinishTime <= s.StartTime {
		return &ValidationError{Field: "finish_time", Reason: "must be after start_time"}
	}
	if s.DateStart.IsZero() || s.DateEnd.IsZero() {
		return &ValidationError{Field: "date_start", Reason: "date range must be set"}
	}
	if s.DateEnd.Before(s.DateStart) {
		return &ValidationError{Field: "date_end", Reason: "must not precede date_start"}
	}
	if priceCents < 0 {
		return &ValidationError{Field: "price_cents", Reason: "must not be negative"}
	}
	if priceCents > math.MaxUint32 {
		return &ValidationError{Field: "price_cents", Reason: fmt.Sprintf("must not exceed %d", uint64(math.MaxUint32))}
	}
	return nil
}
