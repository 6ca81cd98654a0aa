package repository

import (
	"context"
	"database/sql"

	"github.com/mycinema/screening-engine/internal/model"
)

// HallRepo provides persistence for halls.  It implements the
// engine.HallStore interface.
type HallRepo struct {
	db *sql.DB
}

// NewHallRepo constructs a HallRepo with the given DB handle.
func NewHallRepo(db *sql.DB) *HallRepo {
	return &HallRepo{db: db}
}

// CreateHall inserts a new hall and populates the generated ID and the
// DB-default timestamps on the given struct.  A duplicate name comes
// back as storage.ErrDuplicate via the unique index on halls.name.
func (r *HallRepo) CreateHall(ctx context.Context, h *model.Hall) error {
	const q = `INSERT INTO halls (name, total_seats) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, q, h.Name, h.TotalSeats)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	return r.reload(ctx, h)
}

// GetHall retrieves a hall by its ID.
func (r *HallRepo) GetHall(ctx context.Context, id uint64) (*model.Hall, error) {
	const q = `SELECT id, name, total_seats, created_at, updated_at FROM halls WHERE id = ?`
	var (
		h                  model.Hall
		createdAt, updated string
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(&h.ID, &h.Name, &h.TotalSeats, &createdAt, &updated)
	if err != nil {
		return nil, translate(err)
	}
	if h.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if h.UpdatedAt, err = parseTimestamp(updated); err != nil {
		return nil, err
	}
	return &h, nil
}

// UpdateHall writes the hall's mutable fields.  The engine has already
// verified the ledger allows the mutation.
func (r *HallRepo) UpdateHall(ctx context.Context, h *model.Hall) error {
	const q = `UPDATE halls SET name = ?, total_seats = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, h.Name, h.TotalSeats, h.ID); err != nil {
		return translate(err)
	}
	// RowsAffected is zero both when the row is gone and when the
	// values are unchanged; the reload settles which.
	return r.reload(ctx, h)
}

// DeleteHall removes a hall row.  Referential checks are the engine's
// responsibility; the FK on screenings.hall_id is a backstop.
func (r *HallRepo) DeleteHall(ctx context.Context, id uint64) error {
	const q = `DELETE FROM halls WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return translate(sql.ErrNoRows)
	}
	return nil
}

// CountScreenings returns how many screenings reference the hall,
// regardless of status.
func (r *HallRepo) CountScreenings(ctx context.Context, hallID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM screenings WHERE hall_id = ?`
	var n int
	if err := r.db.QueryRowContext(ctx, q, hallID).Scan(&n); err != nil {
		return 0, translate(err)
	}
	return n, nil
}

// reload refreshes the struct from the row so DB-maintained fields
// (timestamps) stay accurate after writes.
func (r *HallRepo) reload(ctx context.Context, h *model.Hall) error {
	fresh, err := r.GetHall(ctx, h.ID)
	if err != nil {
		return err
	}
	*h = *fresh
	return nil
}
