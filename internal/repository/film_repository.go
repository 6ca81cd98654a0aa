package repository

import (
	"context"
	"database/sql"

	"github.com/mycinema/screening-engine/internal/model"
)

// FilmRepo provides persistence for the film catalog.  It implements
// the engine.FilmStore interface.
type FilmRepo struct {
	db *sql.DB
}

// NewFilmRepo constructs a FilmRepo with the given DB handle.
func NewFilmRepo(db *sql.DB) *FilmRepo {
	return &FilmRepo{db: db}
}

// CreateFilm inserts a new film and populates the generated ID and
// timestamps.  The unique (title, release_date) index surfaces as
// storage.ErrDuplicate.
func (r *FilmRepo) CreateFilm(ctx context.Context, f *model.Film) error {
	const q = `INSERT INTO films (title, description, release_date, duration_min) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, f.Title, f.Description, f.ReleaseDate.String(), f.DurationMin)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	fresh, err := r.GetFilm(ctx, f.ID)
	if err != nil {
		return err
	}
	*f = *fresh
	return nil
}

// GetFilm retrieves a film by its ID.
func (r *FilmRepo) GetFilm(ctx context.Context, id uint64) (*model.Film, error) {
	const q = `SELECT id, title, description, release_date, duration_min, created_at, updated_at
	           FROM films WHERE id = ?`
	row := r.db.QueryRowContext(ctx, q, id)
	f, err := scanFilm(row.Scan)
	if err != nil {
		return nil, translate(err)
	}
	return f, nil
}

// ListFilms returns the whole catalog ordered by title.
func (r *FilmRepo) ListFilms(ctx context.Context) ([]model.Film, error) {
	const q = `SELECT id, title, description, release_date, duration_min, created_at, updated_at
	           FROM films ORDER BY title ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	films := make([]model.Film, 0)
	for rows.Next() {
		f, err := scanFilm(rows.Scan)
		if err != nil {
			return nil, err
		}
		films = append(films, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return films, nil
}

func scanFilm(scan func(dest ...any) error) (*model.Film, error) {
	var (
		f                               model.Film
		releaseDate, createdAt, updated string
	)
	if err := scan(&f.ID, &f.Title, &f.Description, &releaseDate, &f.DurationMin, &createdAt, &updated); err != nil {
		return nil, err
	}
	var err error
	if f.ReleaseDate, err = parseDateColumn(releaseDate); err != nil {
		return nil, err
	}
	if f.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if f.UpdatedAt, err = parseTimestamp(updated); err != nil {
		return nil, err
	}
	return &f, nil
}
