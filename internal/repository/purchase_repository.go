package repository

import (
	"context"
	"database/sql"

	"github.com/mycinema/screening-engine/internal/model"
)

// PurchaseRepo is the MySQL purchase ledger.  It implements the
// engine.LedgerStore interface.  Rows are append-only: the repository
// exposes no update or delete, and sold counts are always summed from
// the rows rather than maintained as counters.
type PurchaseRepo struct {
	db *sql.DB
}

// NewPurchaseRepo constructs a PurchaseRepo with the given DB handle.
func NewPurchaseRepo(db *sql.DB) *PurchaseRepo {
	return &PurchaseRepo{db: db}
}

// AppendPurchase inserts one ledger entry.  The insert is a single
// statement, so a cancelled request can never leave partial state
// behind.  PurchasedAt is supplied by the engine to keep "now"
// explicit.
func (r *PurchaseRepo) AppendPurchase(ctx context.Context, p *model.TicketPurchase) error {
	const q = `INSERT INTO ticket_purchases
	           (ref, user_id, screening_id, occurrence_date, quantity, unit_price_cents, purchased_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		p.Ref, p.UserID, p.ScreeningID,
		p.Date.String(), p.Quantity, p.UnitPriceCents,
		p.PurchasedAt.UTC().Format(timestampFormat),
	)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetPurchaseByRef returns the purchase with the given public ref.
// The ref column carries a unique index, so at most one row matches.
func (r *PurchaseRepo) GetPurchaseByRef(ctx context.Context, ref string) (*model.TicketPurchase, error) {
	const q = `SELECT id, ref, user_id, screening_id, occurrence_date, quantity, unit_price_cents, purchased_at
	           FROM ticket_purchases WHERE ref = ?`
	var (
		p               model.TicketPurchase
		date, purchased string
	)
	err := r.db.QueryRowContext(ctx, q, ref).Scan(
		&p.ID, &p.Ref, &p.UserID, &p.ScreeningID, &date, &p.Quantity, &p.UnitPriceCents, &purchased)
	if err != nil {
		return nil, translate(err)
	}
	if p.Date, err = parseDateColumn(date); err != nil {
		return nil, err
	}
	if p.PurchasedAt, err = parseTimestamp(purchased); err != nil {
		return nil, err
	}
	return &p, nil
}

// SoldQuantity sums the ticket quantities sold for one occurrence.
func (r *PurchaseRepo) SoldQuantity(ctx context.Context, screeningID uint64, date model.Date) (uint32, error) {
	const q = `SELECT COALESCE(SUM(quantity), 0) FROM ticket_purchases
	           WHERE screening_id = ? AND occurrence_date = ?`
	var sum uint32
	if err := r.db.QueryRowContext(ctx, q, screeningID, date.String()).Scan(&sum); err != nil {
		return 0, translate(err)
	}
	return sum, nil
}

// ScreeningHasSales reports whether any occurrence of the screening
// has at least one sold ticket.
func (r *PurchaseRepo) ScreeningHasSales(ctx context.Context, screeningID uint64) (bool, error) {
	const q = `SELECT 1 FROM ticket_purchases WHERE screening_id = ? LIMIT 1`
	var one int
	err := r.db.QueryRowContext(ctx, q, screeningID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, translate(err)
	}
	return true, nil
}

// HallHasSales reports whether any screening in the hall has sales.
// The join goes through screenings since the ledger does not record
// hall IDs.
func (r *PurchaseRepo) HallHasSales(ctx context.Context, hallID uint64) (bool, error) {
	const q = `SELECT 1 FROM ticket_purchases tp
	           JOIN screenings s ON s.id = tp.screening_id
	           WHERE s.hall_id = ? LIMIT 1`
	var one int
	err := r.db.QueryRowContext(ctx, q, hallID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, translate(err)
	}
	return true, nil
}

// ListPurchasesByUser returns the user's purchases, newest first.
func (r *PurchaseRepo) ListPurchasesByUser(ctx context.Context, userID uint64) ([]model.TicketPurchase, error) {
	const q = `SELECT id, ref, user_id, screening_id, occurrence_date, quantity, unit_price_cents, purchased_at
	           FROM ticket_purchases WHERE user_id = ?
	           ORDER BY purchased_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	purchases := make([]model.TicketPurchase, 0)
	for rows.Next() {
		var (
			p               model.TicketPurchase
			date, purchased string
		)
		if err := rows.Scan(&p.ID, &p.Ref, &p.UserID, &p.ScreeningID, &date, &p.Quantity, &p.UnitPriceCents, &purchased); err != nil {
			return nil, err
		}
		if p.Date, err = parseDateColumn(date); err != nil {
			return nil, err
		}
		if p.PurchasedAt, err = parseTimestamp(purchased); err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return purchases, nil
}
