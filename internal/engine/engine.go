package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mycinema/screening-engine/internal/metrics"
	"github.com/mycinema/screening-engine/internal/model"
	"github.com/mycinema/screening-engine/internal/queue"
	"github.com/mycinema/screening-engine/internal/storage"
)

// HallStore persists halls.  Implementations return the storage
// sentinel errors; the engine translates them into the typed taxonomy.
type HallStore interface {
	CreateHall(ctx context.Context, h *model.Hall) error
	GetHall(ctx context.Context, id uint64) (*model.Hall, error)
	UpdateHall(ctx context.Context, h *model.Hall) error
	DeleteHall(ctx context.Context, id uint64) error
	CountScreenings(ctx context.Context, hallID uint64) (int, error)
}

// FilmStore persists the film catalog.
type FilmStore interface {
	CreateFilm(ctx context.Context, f *model.Film) error
	GetFilm(ctx context.Context, id uint64) (*model.Film, error)
	ListFilms(ctx context.Context) ([]model.Film, error)
}

// ScreeningStore persists screenings.  ListByHall returns screenings
// of every status; the scheduler decides which ones participate in the
// overlap check.
type ScreeningStore interface {
	CreateScreening(ctx context.Context, s *model.Screening) error
	GetScreening(ctx context.Context, id uint64) (*model.Screening, error)
	UpdateScreening(ctx context.Context, s *model.Screening) error
	DeleteScreening(ctx context.Context, id uint64) error
	ListByHall(ctx context.Context, hallID uint64) ([]model.Screening, error)
	ListScreenings(ctx context.Context, f model.ScreeningFilter) ([]model.Screening, error)
}

// LedgerStore is the append-only purchase ledger.  It is the single
// source of truth for sold counts and for the derived locked state of
// halls and screenings.
type LedgerStore interface {
	AppendPurchase(ctx context.Context, p *model.TicketPurchase) error
	GetPurchaseByRef(ctx context.Context, ref string) (*model.TicketPurchase, error)
	SoldQuantity(ctx context.Context, screeningID uint64, date model.Date) (uint32, error)
	ScreeningHasSales(ctx context.Context, screeningID uint64) (bool, error)
	HallHasSales(ctx context.Context, hallID uint64) (bool, error)
	ListPurchasesByUser(ctx context.Context, userID uint64) ([]model.TicketPurchase, error)
}

// AvailabilityCache is an optional read-through cache for seat
// availability.  Misses and errors are equivalent: the engine simply
// recomputes from the ledger.  The purchase path never trusts the
// cache; it recomputes under the occurrence lock and invalidates the
// entry after commit.  A reader racing that invalidation can still
// re-install its pre-purchase figure, so cached values are stale by at
// most the implementation's TTL; Set may decline to overwrite an
// existing entry to narrow that window.
type AvailabilityCache interface {
	Get(ctx context.Context, screeningID uint64, date model.Date) (uint32, bool)
	Set(ctx context.Context, screeningID uint64, date model.Date, available uint32)
	Invalidate(ctx context.Context, screeningID uint64, date model.Date)
}

// Publisher emits domain events after a purchase commits.  Publish
// failures are logged and never fail the purchase.
type Publisher interface {
	PublishTicketPurchased(ctx context.Context, ev queue.TicketPurchasedEvent) error
}

// Engine wires the four core components over their stores.  All
// methods are safe for concurrent use; serialization happens on keyed
// in-process locks scoped to one hall, one screening or one
// occurrence, so unrelated operations never contend.
type Engine struct {
	halls      HallStore
	films      FilmStore
	screenings ScreeningStore
	ledger     LedgerStore

	locks     *keyedLocks
	log       *zap.Logger
	metrics   *metrics.Metrics
	cache     AvailabilityCache
	publisher Publisher
}

// Option configures optional collaborators on the Engine.
type Option func(*Engine)

// WithLogger attaches a zap logger.  Without it the engine is silent.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithMetrics attaches prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithAvailabilityCache attaches a seat availability cache.
func WithAvailabilityCache(c AvailabilityCache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithPublisher attaches an event publisher.
func WithPublisher(p Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// New constructs an Engine.  All four stores are required.
func New(halls HallStore, films FilmStore, screenings ScreeningStore, ledger LedgerStore, opts ...Option) *Engine {
	if halls == nil || films == nil || screenings == nil || ledger == nil {
		panic("nil store passed to engine.New")
	}
	e := &Engine{
		halls:      halls,
		films:      films,
		screenings: screenings,
		ledger:     ledger,
		locks:      newKeyedLocks(),
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// storeFailure translates low-level store errors that can surface from
// any operation.  Serialization conflicts become retryable
// ConcurrencyErrors; everything else is wrapped with the operation
// name.  Sentinels with operation-specific meaning (not found,
// duplicate) are handled at the call sites.
func storeFailure(op string, err error) error {
	if errors.Is(err, storage.ErrConflict) {
		return &ConcurrencyError{Op: op}
	}
	return fmt.Errorf("%s: %w", op, err)
}
