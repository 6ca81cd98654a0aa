// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketPurchasedQueue is the durable queue purchase events are
// published to.
const TicketPurchasedQueue = "ticket.purchased"

// TicketPurchasedEvent is published after a ticket purchase commits to
// the ledger.  It carries enough information for downstream consumers
// to log, audit, or trigger analytics without querying the primary
// database.
type TicketPurchasedEvent struct {
	PurchaseRef      string `json:"purchase_ref"`
	UserID           uint64 `json:"user_id"`
	ScreeningID      uint64 `json:"screening_id"`
	HallID           uint64 `json:"hall_id"`
	FilmTitle        string `json:"film_title"`
	OccurrenceDate   string `json:"occurrence_date"`
	StartTime        string `json:"start_time"`
	Quantity         uint32 `json:"quantity"`
	UnitPriceCents   uint32 `json:"unit_price_cents"`
	TotalAmountCents uint64 `json:"total_amount_cents"`
	PurchasedAt      string `json:"purchased_at"`
}
