package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mycinema/screening-engine/internal/metrics"
	"github.com/mycinema/screening-engine/internal/model"
	"github.com/mycinema/screening-engine/internal/queue"
	"github.com/mycinema/screening-engine/internal/storage"
)

// PurchaseHistory is a user's ledger slice: purchases newest first and
// the total amount spent across them.
type PurchaseHistory struct {
	Purchases       []model.TicketPurchase
	TotalSpentCents uint64
}

// GetAvailableSeats returns the remaining seats for one occurrence:
// the hall capacity minus the quantities already sold against
// (screening, date).  It fails with NotFoundError when the date falls
// outside the screening's range or the screening is inactive.
//
// The result is a snapshot and may be served from cache; it can be
// stale by a moment, which is acceptable for display since the
// purchase path re-validates under the occurrence lock.
func (e *Engine) GetAvailableSeats(ctx context.Context, screeningID uint64, date model.Date) (uint32, error) {
	s, err := e.GetScreening(ctx, screeningID)
	if err != nil {
		return 0, err
	}
	if !s.Active() || !s.RunsOn(date) {
		return 0, occurrenceNotFound(screeningID, date)
	}
	if e.cache != nil {
		if avail, ok := e.cache.Get(ctx, screeningID, date); ok {
			return avail, nil
		}
	}
	avail, err := e.availability(ctx, s, date)
	if err != nil {
		return 0, err
	}
	if e.cache != nil {
		e.cache.Set(ctx, screeningID, date, avail)
	}
	return avail, nil
}

// PurchaseTickets buys quantity seats for one occurrence on behalf of
// userID.  The availability check and the ledger append run as one
// critical section under the occurrence lock, so concurrent purchases
// for the same occurrence can never jointly oversell it; purchases for
// other occurrences proceed fully in parallel.  The append itself is a
// single insert, so an abandoned request leaves no observable partial
// state.
//
// now supplies "today" for the elapsed-occurrence rule: an occurrence
// whose start time has already passed today is no longer purchasable.
func (e *Engine) PurchaseTickets(ctx context.Context, now time.Time, userID, screeningID uint64, date model.Date, quantity uint32) (*model.TicketPurchase, error) {
	if userID == 0 {
		e.metrics.RecordPurchase(metrics.OutcomeRejected)
		return nil, &ValidationError{Field: "user_id", Reason: "must be set"}
	}
	if quantity == 0 {
		e.metrics.RecordPurchase(metrics.OutcomeRejected)
		return nil, &ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}
	s, err := e.GetScreening(ctx, screeningID)
	if err != nil {
		e.metrics.RecordPurchase(metrics.OutcomeRejected)
		return nil, err
	}
	if !s.Active() || !s.RunsOn(date) {
		e.metrics.RecordPurchase(metrics.OutcomeRejected)
		return nil, occurrenceNotFound(screeningID, date)
	}
	today := model.DateOf(now)
	if date.Before(today) || (date == today && s.StartTime <= model.ClockOf(now)) {
		e.metrics.RecordPurchase(metrics.OutcomeRejected)
		return nil, &ValidationError{Field: "date", Reason: "occurrence has already started"}
	}

	p, err := e.purchaseLocked(ctx, now, userID, s, date, quantity)
	if err != nil {
		switch err.(type) {
		case *SoldOutError:
			e.metrics.RecordPurchase(metrics.OutcomeSoldOut)
		case *ConcurrencyError:
			e.metrics.RecordPurchase(metrics.OutcomeConflict)
		default:
			e.metrics.RecordPurchase(metrics.OutcomeError)
		}
		return nil, err
	}

	e.metrics.RecordPurchase(metrics.OutcomeSuccess)
	e.metrics.RecordSeatsSold(quantity)
	if e.cache != nil {
		e.cache.Invalidate(ctx, screeningID, date)
	}
	e.publishPurchase(ctx, s, p)
	e.log.Info("tickets purchased",
		zap.String("ref", p.Ref),
		zap.Uint64("user_id", userID),
		zap.Uint64("screening_id", screeningID),
		zap.String("date", date.String()),
		zap.Uint32("quantity", quantity))
	return p, nil
}

// purchaseLocked is the critical section: recompute availability from
// the ledger and append, all under the occurrence lock.  The screening
// key is held shared for the same span, so a screening or hall
// mutation checking the ledger cannot interleave with an append while
// purchases on different occurrences still run in parallel.
func (e *Engine) purchaseLocked(ctx context.Context, now time.Time, userID uint64, s *model.Screening, date model.Date, quantity uint32) (*model.TicketPurchase, error) {
	unfence := e.locks.acquireShared(screeningKey(s.ID))
	defer unfence()
	unlock := e.locks.acquire(occurrenceKey(s.ID, date))
	defer unlock()

	avail, err := e.availability(ctx, s, date)
	if err != nil {
		return nil, err
	}
	if quantity > avail {
		return nil, &SoldOutError{ScreeningID: s.ID, Date: date, Requested: quantity, Available: avail}
	}
	p := &model.TicketPurchase{
		Ref:            uuid.NewString(),
		UserID:         userID,
		ScreeningID:    s.ID,
		Date:           date,
		Quantity:       quantity,
		UnitPriceCents: s.PriceCents,
		PurchasedAt:    now.UTC(),
	}
	if err := e.ledger.AppendPurchase(ctx, p); err != nil {
		return nil, storeFailure("append purchase", err)
	}
	return p, nil
}

// GetPurchase dereferences a purchase by its public ref on behalf of
// userID.  A ref belonging to another user reads as NotFoundError, so
// the endpoint does not reveal whether a foreign ref exists.
func (e *Engine) GetPurchase(ctx context.Context, userID uint64, ref string) (*model.TicketPurchase, error) {
	if userID == 0 {
		return nil, &ValidationError{Field: "user_id", Reason: "must be set"}
	}
	if _, err := uuid.Parse(ref); err != nil {
		return nil, &ValidationError{Field: "ref", Reason: "must be a valid purchase reference"}
	}
	p, err := e.ledger.GetPurchaseByRef(ctx, ref)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &NotFoundError{Entity: "purchase", Ref: ref}
		}
		return nil, storeFailure("get purchase", err)
	}
	if p.UserID != userID {
		return nil, &NotFoundError{Entity: "purchase", Ref: ref}
	}
	return p, nil
}

// ListUserPurchases returns the user's full purchase history, newest
// first, together with the total spent.  Unit prices are the ones
// captured at purchase time, so later price changes do not move the
// total.
func (e *Engine) ListUserPurchases(ctx context.Context, userID uint64) (*PurchaseHistory, error) {
	if userID == 0 {
		return nil, &ValidationError{Field: "user_id", Reason: "must be set"}
	}
	purchases, err := e.ledger.ListPurchasesByUser(ctx, userID)
	if err != nil {
		return nil, storeFailure("list purchases", err)
	}
	h := &PurchaseHistory{Purchases: purchases}
	for i := range purchases {
		h.TotalSpentCents += purchases[i].TotalCents()
	}
	return h, nil
}

// availability derives the remaining seats for an occurrence from the
// hall capacity and the ledger.  The seat count is never stored as a
// mutable counter; the ledger stays the single source of truth.
func (e *Engine) availability(ctx context.Context, s *model.Screening, date model.Date) (uint32, error) {
	hall, err := e.GetHall(ctx, s.HallID)
	if err != nil {
		return 0, err
	}
	sold, err := e.ledger.SoldQuantity(ctx, s.ID, date)
	if err != nil {
		return 0, storeFailure("sum sold quantity", err)
	}
	if sold >= hall.TotalSeats {
		return 0, nil
	}
	return hall.TotalSeats - sold, nil
}

// publishPurchase emits the ticket.purchased event.  Failures are
// logged and swallowed; the purchase has already committed.
func (e *Engine) publishPurchase(ctx context.Context, s *model.Screening, p *model.TicketPurchase) {
	if e.publisher == nil {
		return
	}
	title := ""
	if film, err := e.GetFilm(ctx, s.FilmID); err == nil {
		title = film.Title
	}
	ev := queue.TicketPurchasedEvent{
		PurchaseRef:      p.Ref,
		UserID:           p.UserID,
		ScreeningID:      p.ScreeningID,
		HallID:           s.HallID,
		FilmTitle:        title,
		OccurrenceDate:   p.Date.String(),
		StartTime:        s.StartTime.String(),
		Quantity:         p.Quantity,
		UnitPriceCents:   p.UnitPriceCents,
		TotalAmountCents: p.TotalCents(),
		PurchasedAt:      p.PurchasedAt.Format(time.RFC3339),
	}
	if err := e.publisher.PublishTicketPurchased(ctx, ev); err != nil {
		e.log.Warn("publish ticket.purchased failed", zap.String("ref", p.Ref), zap.Error(err))
	}
}

func occurrenceNotFound(screeningID uint64, date model.Date) error {
	return &NotFoundError{Entity: "occurrence", Ref: fmt.Sprintf("%d/%s", screeningID, date)}
}
