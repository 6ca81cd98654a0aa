package model

import "time"

// TicketPurchase is one append-only ledger entry: a user bought
// Quantity seats for a single screening occurrence.  Rows are never
// updated or deleted; seat availability and the locked state of halls
// and screenings are derived from this ledger.  This struct
// corresponds to a row in the `ticket_purchases` table.
//
// Fields:
//
//	ID             – primary key identifier.
//	Ref            – opaque public reference (UUID) returned to callers.
//	UserID         – purchasing user.
//	ScreeningID    – screening the seats were bought for.
//	Date           – occurrence date the seats belong to.
//	Quantity       – number of seats; at least 1.
//	UnitPriceCents – screening price captured at purchase time.  Later
//	                 price changes never rewrite sold tickets.
//	PurchasedAt    – commit timestamp.
type TicketPurchase struct {
	ID             uint64    // ticket_purchases.id
	Ref            string    // ticket_purchases.ref
	UserID         uint64    // ticket_purchases.user_id
	ScreeningID    uint64    // ticket_purchases.screening_id
	Date           Date      // ticket_purchases.occurrence_date
	Quantity       uint32    // ticket_purchases.quantity
	UnitPriceCents uint32    // ticket_purchases.unit_price_cents
	PurchasedAt    time.Time // ticket_purchases.purchased_at
}

// TotalCents returns the amount paid for this purchase.
func (p *TicketPurchase) TotalCents() uint64 {
	return uint64(p.Quantity) * uint64(p.UnitPriceCents)
}
