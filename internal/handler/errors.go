package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mycinema/screening-engine/internal/engine"
)

// respondError maps the engine's typed errors onto HTTP responses.
// Validation problems are 400, missing records 404, every rule
// conflict (overlap, immutability, dependent records, sold out) is
// 409, and transient contention is 503 with a Retry-After hint.
func respondError(c echo.Context, err error) error {
	var (
		validation  *engine.ValidationError
		notFound    *engine.NotFoundError
		overlap     *engine.OverlapError
		immutable   *engine.ImmutableError
		conflict    *engine.ConflictError
		soldOut     *engine.SoldOutError
		concurrency *engine.ConcurrencyError
	)
	switch {
	case errors.As(err, &validation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validation.Error()})
	case errors.As(err, &notFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": notFound.Error()})
	case errors.As(err, &overlap):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":                 overlap.Error(),
			"conflicting_screening": overlap.Conflicting.ID,
		})
	case errors.As(err, &immutable):
		return c.JSON(http.StatusConflict, echo.Map{"error": immutable.Error()})
	case errors.As(err, &conflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": conflict.Error()})
	case errors.As(err, &soldOut):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     soldOut.Error(),
			"available": soldOut.Available,
		})
	case errors.As(err, &concurrency):
		c.Response().Header().Set("Retry-After", "1")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": concurrency.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
