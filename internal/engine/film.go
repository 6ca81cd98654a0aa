package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mycinema/screening-engine/internal/model"
	"github.com/mycinema/screening-engine/internal/storage"
)

// FilmInput carries the fields for a new catalog entry.
type FilmInput struct {
	Title       string
	Description string
	ReleaseDate model.Date
	DurationMin uint32
}

// CreateFilm adds a film to the catalog.  The (title, release date)
// pair must be unique and the duration positive.  The duration later
// supplies the default finish time for screenings created without one.
func (e *Engine) CreateFilm(ctx context.Context, in FilmInput) (*model.Film, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if in.DurationMin == 0 {
		return nil, &ValidationError{Field: "duration_min", Reason: "must be positive"}
	}
	if in.ReleaseDate.IsZero() {
		return nil, &ValidationError{Field: "release_date", Reason: "must be set"}
	}
	f := &model.Film{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		ReleaseDate: in.ReleaseDate,
		DurationMin: in.DurationMin,
	}
	if err := e.films.CreateFilm(ctx, f); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, &ValidationError{Field: "title", Reason: "film with this title and release date already exists"}
		}
		return nil, storeFailure("create film", err)
	}
	e.log.Info("film created", zap.Uint64("film_id", f.ID), zap.String("title", f.Title))
	return f, nil
}

// GetFilm returns a film by ID.
func (e *Engine) GetFilm(ctx context.Context, id uint64) (*model.Film, error) {
	f, err := e.films.GetFilm(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &NotFoundError{Entity: "film", Ref: fmt.Sprint(id)}
		}
		return nil, storeFailure("get film", err)
	}
	return f, nil
}

// ListFilms returns the catalog ordered by title.
func (e *Engine) ListFilms(ctx context.Context) ([]model.Film, error) {
	films, err := e.films.ListFilms(ctx)
	if err != nil {
		return nil, storeFailure("list films", err)
	}
	return films, nil
}
