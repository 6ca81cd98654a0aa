// Package handler contains the HTTP handlers.  Handlers bind and
// validate the request, call the engine and translate its typed errors
// into status codes; no business rule lives here.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/mycinema/screening-engine/internal/engine"
	"github.com/mycinema/screening-engine/internal/model"
)

// Handler serves every route group.  The admin, public and customer
// surfaces differ only in middleware, so one receiver is enough.
type Handler struct {
	engine   *engine.Engine
	validate *validator.Validate
}

// New builds a Handler around the engine.
func New(e *engine.Engine) *Handler {
	return &Handler{
		engine:   e,
		validate: validator.New(),
	}
}

// bind decodes the JSON body into v and runs struct validation.
func (h *Handler) bind(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// getUserID reads the authenticated user injected by the JWT
// middleware.
func getUserID(c echo.Context) (uint64, error) {
	uid, ok := c.Get("user_id").(uint64)
	if !ok || uid == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return uid, nil
}

// Response shapes.  Dates render as "2006-01-02", times of day as
// "15:04" and timestamps as RFC 3339.

type hallView struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	TotalSeats uint32 `json:"total_seats"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func newHallView(h *model.Hall) hallView {
	return hallView{
		ID:         h.ID,
		Name:       h.Name,
		TotalSeats: h.TotalSeats,
		CreatedAt:  h.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  h.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type filmView struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ReleaseDate string `json:"release_date"`
	DurationMin uint32 `json:"duration_min"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func newFilmView(f *model.Film) filmView {
	return filmView{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		ReleaseDate: f.ReleaseDate.String(),
		DurationMin: f.DurationMin,
		CreatedAt:   f.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   f.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type screeningView struct {
	ID         uint64 `json:"id"`
	HallID     uint64 `json:"hall_id"`
	FilmID     uint64 `json:"film_id"`
	StartTime  string `json:"start_time"`
	FinishTime string `json:"finish_time"`
	DateStart  string `json:"date_start"`
	DateEnd    string `json:"date_end"`
	PriceCents uint32 `json:"price_cents"`
	Status     string `json:"status"`
}

func newScreeningView(s *model.Screening) screeningView {
	return screeningView{
		ID:         s.ID,
		HallID:     s.HallID,
		FilmID:     s.FilmID,
		StartTime:  s.StartTime.String(),
		FinishTime: s.FinishTime.String(),
		DateStart:  s.DateStart.String(),
		DateEnd:    s.DateEnd.String(),
		PriceCents: s.PriceCents,
		Status:     s.Status,
	}
}

type purchaseView struct {
	Ref            string `json:"ref"`
	ScreeningID    uint64 `json:"screening_id"`
	Date           string `json:"date"`
	Quantity       uint32 `json:"quantity"`
	UnitPriceCents uint32 `json:"unit_price_cents"`
	TotalCents     uint64 `json:"total_cents"`
	PurchasedAt    string `json:"purchased_at"`
}

func newPurchaseView(p *model.TicketPurchase) purchaseView {
	return purchaseView{
		Ref:            p.Ref,
		ScreeningID:    p.ScreeningID,
		Date:           p.Date.String(),
		Quantity:       p.Quantity,
		UnitPriceCents: p.UnitPriceCents,
		TotalCents:     p.TotalCents(),
		PurchasedAt:    p.PurchasedAt.UTC().Format(time.RFC3339),
	}
}
