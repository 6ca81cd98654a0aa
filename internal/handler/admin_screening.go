package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mycinema/screening-engine/internal/engine"
	"github.com/mycinema/screening-engine/internal/model"
)

// parseDateField turns a wire date into a model.Date, naming the
// offending field in the validation error so the client sees which
// input to fix.
func parseDateField(s, field string) (model.Date, error) {
	d, err := model.ParseDate(s)
	if err != nil {
		return model.Date{}, &engine.ValidationError{Field: field, Reason: "must be YYYY-MM-DD"}
	}
	return d, nil
}

// parseClockField does the same for times of day.
func parseClockField(s, field string) (model.Clock, error) {
	t, err := model.ParseClock(s)
	if err != nil {
		return 0, &engine.ValidationError{Field: field, Reason: "must be HH:MM"}
	}
	return t, nil
}

// CreateScreening handles POST /v1/admin/screenings.  finish_time is
// optional and defaults to start_time plus the film's running time.
func (h *Handler) CreateScreening(c echo.Context) error {
	var body struct {
		HallID     uint64  `json:"hall_id" validate:"required"`
		FilmID     uint64  `json:"film_id" validate:"required"`
		StartTime  string  `json:"start_time" validate:"required"`
		FinishTime *string `json:"finish_time"`
		DateStart  string  `json:"date_start" validate:"required"`
		DateEnd    string  `json:"date_end" validate:"required"`
		PriceCents int64   `json:"price_cents" validate:"gte=0"`
	}
	if err := h.bind(c, &body); err != nil {
		return err
	}

	// Dates and clocks travel as strings; convert them one by one so
	// the error names the exact field.  Range and overlap rules are
	// the engine's business.
	in := engine.ScreeningInput{
		HallID:     body.HallID,
		FilmID:     body.FilmID,
		PriceCents: body.PriceCents,
	}
	var err error
	if in.StartTime, err = parseClockField(body.StartTime, "start_time"); err != nil {
		return respondError(c, err)
	}
	if body.FinishTime != nil {
		finish, err := parseClockField(*body.FinishTime, "finish_time")
		if err != nil {
			return respondError(c, err)
		}
		in.FinishTime = &finish
	}
	if in.DateStart, err = parseDateField(body.DateStart, "date_start"); err != nil {
		return respondError(c, err)
	}
	if in.DateEnd, err = parseDateField(body.DateEnd, "date_end"); err != nil {
		return respondError(c, err)
	}

	s, err := h.engine.CreateScreening(c.Request().Context(), time.Now(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, newScreeningView(s))
}

// UpdateScreening handles PATCH /v1/admin/screenings/:id.  Every body
// field is optional; absent fields keep their stored values, which is
// why the struct binds into pointers rather than zero values.
func (h *Handler) UpdateScreening(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var body struct {
		StartTime  *string `json:"start_time"`
		FinishTime *string `json:"finish_time"`
		DateStart  *string `json:"date_start"`
		DateEnd    *string `json:"date_end"`
		PriceCents *int64  `json:"price_cents" validate:"omitempty,gte=0"`
	}
	if err := h.bind(c, &body); err != nil {
		return err
	}

	upd := engine.ScreeningUpdate{PriceCents: body.PriceCents}
	if body.StartTime != nil {
		t, err := parseClockField(*body.StartTime, "start_time")
		if err != nil {
			return respondError(c, err)
		}
		upd.StartTime = &t
	}
	if body.FinishTime != nil {
		t, err := parseClockField(*body.FinishTime, "finish_time")
		if err != nil {
			return respondError(c, err)
		}
		upd.FinishTime = &t
	}
	if body.DateStart != nil {
		d, err := parseDateField(*body.DateStart, "date_start")
		if err != nil {
			return respondError(c, err)
		}
		upd.DateStart = &d
	}
	if body.DateEnd != nil {
		d, err := parseDateField(*body.DateEnd, "date_end")
		if err != nil {
			return respondError(c, err)
		}
		upd.DateEnd = &d
	}

	s, err := h.engine.UpdateScreening(c.Request().Context(), time.Now(), id, upd)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newScreeningView(s))
}

// DeactivateScreening handles POST /v1/admin/screenings/:id/deactivate.
// It is idempotent.
func (h *Handler) DeactivateScreening(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	s, err := h.engine.DeactivateScreening(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newScreeningView(s))
}

// DeleteScreening handles DELETE /v1/admin/screenings/:id.  Screenings
// with sold tickets cannot be deleted, only deactivated.
func (h *Handler) DeleteScreening(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.engine.DeleteScreening(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
