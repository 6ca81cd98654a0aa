package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mycinema/screening-engine/internal/engine"
	"github.com/mycinema/screening-engine/internal/model"
)

// PurchaseTickets handles POST /v1/screenings/:id/purchase.  The body
// names the occurrence date and seat quantity; the user comes from the
// access token.
func (h *Handler) PurchaseTickets(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}
	screeningID, err := pathID(c)
	if err != nil {
		return err
	}
	var body struct {
		Date     string `json:"date" validate:"required"`
		Quantity uint32 `json:"quantity" validate:"required,gt=0"`
	}
	if err := h.bind(c, &body); err != nil {
		return err
	}
	// Parse the occurrence date up front so a malformed date reads as
	// a validation problem rather than a not-found occurrence.
	date, err := model.ParseDate(body.Date)
	if err != nil {
		return respondError(c, &engine.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"})
	}

	// The wall clock is passed explicitly; the engine takes no time
	// of its own.
	p, err := h.engine.PurchaseTickets(c.Request().Context(), time.Now(), userID, screeningID, date, body.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, newPurchaseView(p))
}

// GetPurchase handles GET /v1/me/purchases/:ref and returns one
// purchase by the public reference handed out at purchase time.  Refs
// belonging to other users answer 404.
func (h *Handler) GetPurchase(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}
	p, err := h.engine.GetPurchase(c.Request().Context(), userID, c.Param("ref"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newPurchaseView(p))
}

// MyPurchases handles GET /v1/me/purchases and returns the caller's
// purchase history plus the total spent.
func (h *Handler) MyPurchases(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}
	hist, err := h.engine.ListUserPurchases(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]purchaseView, 0, len(hist.Purchases))
	for i := range hist.Purchases {
		out = append(out, newPurchaseView(&hist.Purchases[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"purchases":         out,
		"total_spent_cents": hist.TotalSpentCents,
	})
}
