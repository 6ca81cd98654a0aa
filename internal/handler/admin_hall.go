package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mycinema/screening-engine/internal/engine"
)

// CreateHall handles POST /v1/admin/halls.
func (h *Handler) CreateHall(c echo.Context) error {
	var body struct {
		Name       string `json:"name" validate:"required"`
		TotalSeats uint32 `json:"total_seats" validate:"required,gt=0"`
	}
	if err := h.bind(c, &body); err != nil {
		return err
	}
	hall, err := h.engine.CreateHall(c.Request().Context(), body.Name, body.TotalSeats)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, newHallView(hall))
}

// GetHall handles GET /v1/admin/halls/:id.
func (h *Handler) GetHall(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	hall, err := h.engine.GetHall(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newHallView(hall))
}

// UpdateHall handles PATCH /v1/admin/halls/:id.  Omitted fields keep
// their current values; once the hall has sold tickets the engine
// rejects the whole update.
func (h *Handler) UpdateHall(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var body struct {
		Name       *string `json:"name" validate:"omitempty,min=1"`
		TotalSeats *uint32 `json:"total_seats" validate:"omitempty,gt=0"`
	}
	if err := h.bind(c, &body); err != nil {
		return err
	}
	hall, err := h.engine.UpdateHall(c.Request().Context(), id, engine.HallUpdate{
		Name:       body.Name,
		TotalSeats: body.TotalSeats,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newHallView(hall))
}

// DeleteHall handles DELETE /v1/admin/halls/:id.
func (h *Handler) DeleteHall(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.engine.DeleteHall(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
