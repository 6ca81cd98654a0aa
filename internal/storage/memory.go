package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mycinema/screening-engine/internal/model"
)

// Memory is an in-process store keeping all records in maps guarded by
// a single RWMutex.  It implements every store interface the engine
// consumes and returns the same sentinel errors as the MySQL
// repositories, so the engine behaves identically on either backend.
// It backs the test suite and serves as a fallback when no database is
// configured.
type Memory struct {
	mu sync.RWMutex

	halls      map[uint64]model.Hall
	films      map[uint64]model.Film
	screenings map[uint64]model.Screening
	purchases  []model.TicketPurchase

	nextHall      uint64
	nextFilm      uint64
	nextScreening uint64
	nextPurchase  uint64
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		halls:      make(map[uint64]model.Hall),
		films:      make(map[uint64]model.Film),
		screenings: make(map[uint64]model.Screening),
	}
}

// CreateHall inserts a hall, assigning its ID and timestamps.  It
// returns ErrDuplicate when another hall already uses the name.
func (m *Memory) CreateHall(_ context.Context, h *model.Hall) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.halls {
		if existing.Name == h.Name {
			return ErrDuplicate
		}
	}
	m.nextHall++
	h.ID = m.nextHall
	now := time.Now().UTC()
	h.CreatedAt = now
	h.UpdatedAt = now
	m.halls[h.ID] = *h
	return nil
}

// GetHall returns a copy of the hall or ErrNotFound.
func (m *Memory) GetHall(_ context.Context, id uint64) (*model.Hall, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.halls[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &h, nil
}

// UpdateHall persists a modified hall.  The name must stay unique.
func (m *Memory) UpdateHall(_ context.Context, h *model.Hall) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.halls[h.ID]; !ok {
		return ErrNotFound
	}
	for id, existing := range m.halls {
		if id != h.ID && existing.Name == h.Name {
			return ErrDuplicate
		}
	}
	h.UpdatedAt = time.Now().UTC()
	m.halls[h.ID] = *h
	return nil
}

// DeleteHall removes a hall.  Referential checks are the engine's job.
func (m *Memory) DeleteHall(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.halls[id]; !ok {
		return ErrNotFound
	}
	delete(m.halls, id)
	return nil
}

// CountScreenings returns how many screenings reference the hall.
func (m *Memory) CountScreenings(_ context.Context, hallID uint64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, s := range m.screenings {
		if s.HallID == hallID {
			n++
		}
	}
	return n, nil
}

// CreateFilm inserts a film, assigning its ID and timestamps.  The
// (title, release date) pair must be unique.
func (m *Memory) CreateFilm(_ context.Context, f *model.Film) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.films {
		if existing.Title == f.Title && existing.ReleaseDate == f.ReleaseDate {
			return ErrDuplicate
		}
	}
	m.nextFilm++
	f.ID = m.nextFilm
	now := time.Now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now
	m.films[f.ID] = *f
	return nil
}

// GetFilm returns a copy of the film or ErrNotFound.
func (m *Memory) GetFilm(_ context.Context, id uint64) (*model.Film, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.films[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &f, nil
}

// ListFilms returns all films ordered by title.
func (m *Memory) ListFilms(_ context.Context) ([]model.Film, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Film, 0, len(m.films))
	for _, f := range m.films {
		out = append(out, f)
	}
	sortFilms(out)
	return out, nil
}

// CreateScreening inserts a screening, assigning its ID and
// timestamps.  Overlap validation is the engine's job.
func (m *Memory) CreateScreening(_ context.Context, s *model.Screening) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextScreening++
	s.ID = m.nextScreening
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	m.screenings[s.ID] = *s
	return nil
}

// GetScreening returns a copy of the screening or ErrNotFound.
func (m *Memory) GetScreening(_ context.Context, id uint64) (*model.Screening, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.screenings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

// UpdateScreening persists a modified screening.
func (m *Memory) UpdateScreening(_ context.Context, s *model.Screening) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.screenings[s.ID]; !ok {
		return ErrNotFound
	}
	s.UpdatedAt = time.Now().UTC()
	m.screenings[s.ID] = *s
	return nil
}

// DeleteScreening removes a screening.
func (m *Memory) DeleteScreening(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.screenings[id]; !ok {
		return ErrNotFound
	}
	delete(m.screenings, id)
	return nil
}

// ListByHall returns every screening in the hall, any status, ordered
// by start time.
func (m *Memory) ListByHall(_ context.Context, hallID uint64) ([]model.Screening, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Screening
	for _, s := range m.screenings {
		if s.HallID == hallID {
			out = append(out, s)
		}
	}
	sortScreenings(out)
	return out, nil
}

// ListScreenings returns screenings matching the filter, ordered by
// start time.
func (m *Memory) ListScreenings(_ context.Context, f model.ScreeningFilter) ([]model.Screening, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Screening
	for _, s := range m.screenings {
		if f.Matches(&s) {
			out = append(out, s)
		}
	}
	sortScreenings(out)
	return out, nil
}

// AppendPurchase appends a ledger entry, assigning its ID.  The
// PurchasedAt timestamp is set by the engine so that "now" stays an
// explicit parameter.
func (m *Memory) AppendPurchase(_ context.Context, p *model.TicketPurchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextPurchase++
	p.ID = m.nextPurchase
	m.purchases = append(m.purchases, *p)
	return nil
}

// GetPurchaseByRef returns a copy of the purchase with the given
// public ref, or ErrNotFound.
func (m *Memory) GetPurchaseByRef(_ context.Context, ref string) (*model.TicketPurchase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.purchases {
		if m.purchases[i].Ref == ref {
			p := m.purchases[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

// SoldQuantity sums ticket quantities for one occurrence.
func (m *Memory) SoldQuantity(_ context.Context, screeningID uint64, date model.Date) (uint32, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum uint32
	for _, p := range m.purchases {
		if p.ScreeningID == screeningID && p.Date == date {
			sum += p.Quantity
		}
	}
	return sum, nil
}

// ScreeningHasSales reports whether any occurrence of the screening
// has at least one sold ticket.
func (m *Memory) ScreeningHasSales(_ context.Context, screeningID uint64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.purchases {
		if p.ScreeningID == screeningID {
			return true, nil
		}
	}
	return false, nil
}

// HallHasSales reports whether any screening in the hall has sales.
func (m *Memory) HallHasSales(_ context.Context, hallID uint64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.purchases {
		if s, ok := m.screenings[p.ScreeningID]; ok && s.HallID == hallID {
			return true, nil
		}
	}
	return false, nil
}

// ListPurchasesByUser returns the user's purchases, newest first.
func (m *Memory) ListPurchasesByUser(_ context.Context, userID uint64) ([]model.TicketPurchase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.TicketPurchase
	for i := len(m.purchases) - 1; i >= 0; i-- {
		if m.purchases[i].UserID == userID {
			out = append(out, m.purchases[i])
		}
	}
	return out, nil
}

func sortFilms(films []model.Film) {
	sort.Slice(films, func(i, j int) bool { return films[i].Title < films[j].Title })
}

func sortScreenings(ss []model.Screening) {
	sort.Slice(ss, func(i, j int) bool {
		if ss[i].StartTime != ss[j].StartTime {
			return ss[i].StartTime < ss[j].StartTime
		}
		return ss[i].ID < ss[j].ID
	})
}
