package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mycinema/screening-engine/internal/model"
)

// ScreeningRepo provides persistence for screenings.  It implements
// the engine.ScreeningStore interface.  Date ranges are stored as DATE
// columns and the daily time window as TIME columns; the engine works
// with model.Date and model.Clock values throughout.
type ScreeningRepo struct {
	db *sql.DB
}

// NewScreeningRepo constructs a ScreeningRepo with the given DB handle.
func NewScreeningRepo(db *sql.DB) *ScreeningRepo {
	return &ScreeningRepo{db: db}
}

const screeningColumns = `id, hall_id, film_id, start_time, finish_time, date_start, date_end, price_cents, status, created_at, updated_at`

// CreateScreening inserts a new screening and populates the generated
// ID, DB-default status and timestamps on the given struct.
func (r *ScreeningRepo) CreateScreening(ctx context.Context, s *model.Screening) error {
	const q = `INSERT INTO screenings (hall_id, film_id, start_time, finish_time, date_start, date_end, price_cents)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		s.HallID, s.FilmID,
		clockColumn(s.StartTime), clockColumn(s.FinishTime),
		s.DateStart.String(), s.DateEnd.String(),
		s.PriceCents,
	)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return r.reload(ctx, s)
}

// GetScreening retrieves a screening by its ID.
func (r *ScreeningRepo) GetScreening(ctx context.Context, id uint64) (*model.Screening, error) {
	q := `SELECT ` + screeningColumns + ` FROM screenings WHERE id = ?`
	row := r.db.QueryRowContext(ctx, q, id)
	s, err := scanScreening(row.Scan)
	if err != nil {
		return nil, translate(err)
	}
	return s, nil
}

// UpdateScreening writes the screening's mutable fields.  The overlap
// and immutability checks have already run in the engine under the
// hall lock.
func (r *ScreeningRepo) UpdateScreening(ctx context.Context, s *model.Screening) error {
	const q = `UPDATE screenings
	           SET start_time = ?, finish_time = ?, date_start = ?, date_end = ?, price_cents = ?, status = ?
	           WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q,
		clockColumn(s.StartTime), clockColumn(s.FinishTime),
		s.DateStart.String(), s.DateEnd.String(),
		s.PriceCents, s.Status,
		s.ID,
	)
	if err != nil {
		return translate(err)
	}
	return r.reload(ctx, s)
}

// DeleteScreening removes a screening row.
func (r *ScreeningRepo) DeleteScreening(ctx context.Context, id uint64) error {
	const q = `DELETE FROM screenings WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return translate(sql.ErrNoRows)
	}
	return nil
}

// ListByHall returns every screening in the hall regardless of status,
// ordered by daily start time.  The scheduler scans this list for
// interval collisions.
func (r *ScreeningRepo) ListByHall(ctx context.Context, hallID uint64) ([]model.Screening, error) {
	q := `SELECT ` + screeningColumns + ` FROM screenings WHERE hall_id = ? ORDER BY start_time ASC, id ASC`
	return r.list(ctx, q, hallID)
}

// ListScreenings returns screenings matching the filter, ordered by
// daily start time.  A date filter selects screenings whose inclusive
// date range covers that day.
func (r *ScreeningRepo) ListScreenings(ctx context.Context, f model.ScreeningFilter) ([]model.Screening, error) {
	var (
		conds []string
		args  []any
	)
	if f.HallID != 0 {
		conds = append(conds, "hall_id = ?")
		args = append(args, f.HallID)
	}
	if f.FilmID != 0 {
		conds = append(conds, "film_id = ?")
		args = append(args, f.FilmID)
	}
	if f.Date != nil {
		conds = append(conds, "date_start <= ? AND date_end >= ?")
		args = append(args, f.Date.String(), f.Date.String())
	}
	q := `SELECT ` + screeningColumns + ` FROM screenings`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY start_time ASC, id ASC`
	return r.list(ctx, q, args...)
}

func (r *ScreeningRepo) list(ctx context.Context, q string, args ...any) ([]model.Screening, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	result := make([]model.Screening, 0)
	for rows.Next() {
		s, err := scanScreening(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *ScreeningRepo) reload(ctx context.Context, s *model.Screening) error {
	fresh, err := r.GetScreening(ctx, s.ID)
	if err != nil {
		return err
	}
	*s = *fresh
	return nil
}

func scanScreening(scan func(dest ...any) error) (*model.Screening, error) {
	var (
		s                     model.Screening
		startTime, finishTime string
		dateStart, dateEnd    string
		createdAt, updatedAt  string
	)
	if err := scan(
		&s.ID, &s.HallID, &s.FilmID,
		&startTime, &finishTime,
		&dateStart, &dateEnd,
		&s.PriceCents, &s.Status,
		&createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	var err error
	if s.StartTime, err = parseTimeColumn(startTime); err != nil {
		return nil, err
	}
	if s.FinishTime, err = parseTimeColumn(finishTime); err != nil {
		return nil, err
	}
	if s.DateStart, err = parseDateColumn(dateStart); err != nil {
		return nil, err
	}
	if s.DateEnd, err = parseDateColumn(dateEnd); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
