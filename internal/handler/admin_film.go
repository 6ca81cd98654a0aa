package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mycinema/screening-engine/internal/engine"
	"github.com/mycinema/screening-engine/internal/model"
)

// CreateFilm handles POST /v1/admin/films.
func (h *Handler) CreateFilm(c echo.Context) error {
	var body struct {
		Title       string `json:"title" validate:"required"`
		Description string `json:"description"`
		ReleaseDate string `json:"release_date" validate:"required"`
		DurationMin uint32 `json:"duration_min" validate:"required,gt=0"`
	}
	if err := h.bind(c, &body); err != nil {
		return err
	}
	release, err := model.ParseDate(body.ReleaseDate)
	if err != nil {
		return respondError(c, &engine.ValidationError{Field: "release_date", Reason: "must be YYYY-MM-DD"})
	}
	film, err := h.engine.CreateFilm(c.Request().Context(), engine.FilmInput{
		Title:       body.Title,
		Description: body.Description,
		ReleaseDate: release,
		DurationMin: body.DurationMin,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, newFilmView(film))
}

// GetFilm handles GET /v1/films/:id.
func (h *Handler) GetFilm(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	film, err := h.engine.GetFilm(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newFilmView(film))
}

// ListFilms handles GET /v1/films.
func (h *Handler) ListFilms(c echo.Context) error {
	films, err := h.engine.ListFilms(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]filmView, 0, len(films))
	for i := range films {
		out = append(out, newFilmView(&films[i]))
	}
	return c.JSON(http.StatusOK, out)
}
