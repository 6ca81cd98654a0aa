package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mycinema/screening-engine/internal/engine"
	"github.com/mycinema/screening-engine/internal/model"
)

// ListScreenings handles GET /v1/screenings.  Query parameters:
// hall_id, film_id, date (the day view), sort (start_time|price) and
// dir (asc|desc).  Deactivated screenings never appear here.
func (h *Handler) ListScreenings(c echo.Context) error {
	// Absent parameters leave their filter fields zero, which the
	// engine reads as "no constraint"; sort key and direction are
	// validated there as well.
	q := engine.ScreeningQuery{
		SortBy: c.QueryParam("sort"),
		Dir:    c.QueryParam("dir"),
	}
	if v := c.QueryParam("hall_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return respondError(c, &engine.ValidationError{Field: "hall_id", Reason: "must be numeric"})
		}
		q.Filter.HallID = id
	}
	if v := c.QueryParam("film_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return respondError(c, &engine.ValidationError{Field: "film_id", Reason: "must be numeric"})
		}
		q.Filter.FilmID = id
	}
	if v := c.QueryParam("date"); v != "" {
		d, err := model.ParseDate(v)
		if err != nil {
			return respondError(c, &engine.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"})
		}
		q.Filter.Date = &d
	}

	list, err := h.engine.ListScreenings(c.Request().Context(), q)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]screeningView, 0, len(list))
	for i := range list {
		out = append(out, newScreeningView(&list[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// GetScreening handles GET /v1/screenings/:id.
func (h *Handler) GetScreening(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	s, err := h.engine.GetScreening(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newScreeningView(s))
}

// GetAvailability handles GET /v1/screenings/:id/availability?date=...
// and returns the remaining seats for that occurrence.
func (h *Handler) GetAvailability(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	date, err := model.ParseDate(c.QueryParam("date"))
	if err != nil {
		return respondError(c, &engine.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"})
	}
	avail, err := h.engine.GetAvailableSeats(c.Request().Context(), id, date)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"screening_id":    id,
		"date":            date.String(),
		"available_seats": avail,
	})
}
