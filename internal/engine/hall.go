package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mycinema/screening-engine/internal/model"
	"github.com/mycinema/screening-engine/internal/storage"
)

// HallUpdate carries the mutable hall fields for a partial update.
// Nil fields are left unchanged.
type HallUpdate struct {
	Name       *string
	TotalSeats *uint32
}

// CreateHall registers a new hall.  The name must be non-empty and
// unique and the capacity positive.
func (e *Engine) CreateHall(ctx context.Context, name string, totalSeats uint32) (*model.Hall, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if totalSeats == 0 {
		return nil, &ValidationError{Field: "total_seats", Reason: "must be positive"}
	}
	h := &model.Hall{Name: name, TotalSeats: totalSeats}
	if err := e.halls.CreateHall(ctx, h); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, &ValidationError{Field: "name", Reason: "already in use by another hall"}
		}
		return nil, storeFailure("create hall", err)
	}
	e.log.Info("hall created", zap.Uint64("hall_id", h.ID), zap.String("name", h.Name), zap.Uint32("total_seats", h.TotalSeats))
	return h, nil
}

// GetHall returns a hall by ID.
func (e *Engine) GetHall(ctx context.Context, id uint64) (*model.Hall, error) {
	h, err := e.halls.GetHall(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &NotFoundError{Entity: "hall", Ref: fmt.Sprint(id)}
		}
		return nil, storeFailure("get hall", err)
	}
	return h, nil
}

// UpdateHall changes a hall's name and/or capacity.  It fails with
// ImmutableError once any screening in the hall has a sold ticket; the
// lock is recomputed from the ledger on every call rather than read
// from a flag.
func (e *Engine) UpdateHall(ctx context.Context, id uint64, upd HallUpdate) (*model.Hall, error) {
	h, err := e.GetHall(ctx, id)
	if err != nil {
		return nil, err
	}

	// Hall key first so no new screening appears mid-update, then the
	// exclusive key of every screening in the hall so no first sale
	// can land between the ledger check and the commit.  Keys are
	// taken in ID order, the same order every holder uses.
	unlock := e.locks.acquire(hallKey(id))
	defer unlock()
	unfence, err := e.fenceHallScreenings(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unfence()

	sold, err := e.ledger.HallHasSales(ctx, id)
	if err != nil {
		return nil, storeFailure("check hall sales", err)
	}
	if sold {
		return nil, &ImmutableError{Entity: "hall", ID: id}
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
		}
		h.Name = name
	}
	if upd.TotalSeats != nil {
		if *upd.TotalSeats == 0 {
			return nil, &ValidationError{Field: "total_seats", Reason: "must be positive"}
		}
		h.TotalSeats = *upd.TotalSeats
	}
	if err := e.halls.UpdateHall(ctx, h); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, &ValidationError{Field: "name", Reason: "already in use by another hall"}
		}
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &NotFoundError{Entity: "hall", Ref: fmt.Sprint(id)}
		}
		return nil, storeFailure("update hall", err)
	}
	e.log.Info("hall updated", zap.Uint64("hall_id", h.ID))
	return h, nil
}

// DeleteHall removes a hall.  Any screening referencing the hall, with
// or without sales, blocks deletion with a ConflictError.
func (e *Engine) DeleteHall(ctx context.Context, id uint64) error {
	if _, err := e.GetHall(ctx, id); err != nil {
		return err
	}
	// Under the hall key a concurrent CreateScreening cannot slip a
	// new screening in between the count and the delete.
	unlock := e.locks.acquire(hallKey(id))
	defer unlock()
	n, err := e.halls.CountScreenings(ctx, id)
	if err != nil {
		return storeFailure("count hall screenings", err)
	}
	if n > 0 {
		return &ConflictError{Reason: fmt.Sprintf("hall %d is referenced by %d screening(s)", id, n)}
	}
	if err := e.halls.DeleteHall(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &NotFoundError{Entity: "hall", Ref: fmt.Sprint(id)}
		}
		return storeFailure("delete hall", err)
	}
	e.log.Info("hall deleted", zap.Uint64("hall_id", id))
	return nil
}

// fenceHallScreenings takes the exclusive screening key of every
// screening in the hall, ascending by ID, and returns one release for
// all of them.  Callers hold the hall key, so the set cannot grow
// underneath the fence.
func (e *Engine) fenceHallScreenings(ctx context.Context, hallID uint64) (func(), error) {
	list, err := e.screenings.ListByHall(ctx, hallID)
	if err != nil {
		return nil, storeFailure("scan hall screenings", err)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	releases := make([]func(), 0, len(list))
	for i := range list {
		releases = append(releases, e.locks.acquire(screeningKey(list[i].ID)))
	}
	return func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}, nil
}
