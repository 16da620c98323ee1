package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/domain"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/events"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/localstore"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/metrics"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/remote"
)

const historyLimit = 50

var (
	// ErrNoActiveTable: an operation needs a selected table session first.
	ErrNoActiveTable = errors.New("no active table session")
	// ErrNoSession: the named table has no cart session.
	ErrNoSession = errors.New("no cart session for table")
	// ErrStockExceeded: the mutation would push a line past its stock ceiling.
	ErrStockExceeded = errors.New("stock limit reached")
	// ErrOutOfStock: the product cannot be added at all.
	ErrOutOfStock = errors.New("product out of stock")
	// ErrEmptyCart: persist/finalize needs at least one item.
	ErrEmptyCart = errors.New("cart is empty")
)

// Options tune the engine. Zero values get production defaults.
type Options struct {
	Debounce time.Duration // quiet window before a remote snapshot upsert
	Expiry   time.Duration // age after which a never-persisted cart is swept
	Now      func() time.Time
}

// Engine owns the table -> cart session mapping. Every mutation is applied
// locally and persisted to the local store synchronously; remote snapshot
// sync for persisted sessions (comandas) is debounced per table and
// fire-and-forget. Local state is the source of truth.
type Engine struct {
	mu          sync.Mutex
	sessions    map[string]*domain.CartSession
	activeTable string
	timers      map[string]*time.Timer
	syncing     int

	local     localstore.Store
	snapshots remote.SnapshotStore
	publisher events.Publisher
	metrics   *metrics.Registry

	debounce time.Duration
	expiry   time.Duration
	now      func() time.Time
}

func NewEngine(local localstore.Store, snapshots remote.SnapshotStore, publisher events.Publisher, m *metrics.Registry, opts Options) (*Engine, error) {
	if opts.Debounce == 0 {
		opts.Debounce = time.Second
	}
	if opts.Expiry == 0 {
		opts.Expiry = 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	e := &Engine{
		sessions:  make(map[string]*domain.CartSession),
		timers:    make(map[string]*time.Timer),
		local:     local,
		snapshots: snapshots,
		publisher: publisher,
		metrics:   m,
		debounce:  opts.Debounce,
		expiry:    opts.Expiry,
		now:       opts.Now,
	}
	if err := e.restore(); err != nil {
		return nil, err
	}
	e.metrics.ActiveCarts.Set(float64(len(e.sessions)))
	return e, nil
}

// restore reloads the cart mapping and the active-table pointer from the
// local store. A corrupt carts blob is a hard error: silently dropping open
// comandas is worse than refusing to start.
func (e *Engine) restore() error {
	blob, err := e.local.Load(localstore.KeyCarts)
	switch {
	case errors.Is(err, localstore.ErrKeyNotFound):
		// fresh install
	case err != nil:
		log.Error().Err(err).Msg("failed to load carts from local store")
	default:
		if err := json.Unmarshal(blob, &e.sessions); err != nil {
			return fmt.Errorf("corrupt local cart data: %w", err)
		}
		for id, s := range e.sessions {
			normalizeSession(id, s)
		}
	}

	active, err := e.local.Load(localstore.KeyActiveTable)
	if err == nil && len(active) > 0 {
		e.activeTable = string(active)
	}
	return nil
}

// normalizeSession repairs a deserialized session so engine invariants hold
// no matter what the blob contained: no zero-quantity lines, discount back in
// bounds, table id consistent with its map key.
func normalizeSession(tableID string, s *domain.CartSession) {
	s.TableID = tableID
	if s.Items == nil {
		s.Items = []domain.CartLineItem{}
	}
	kept := s.Items[:0]
	for _, li := range s.Items {
		if li.Quantity >= 1 {
			kept = append(kept, li)
		}
	}
	s.Items = kept
	if s.DiscountType != domain.DiscountAbsolute {
		s.DiscountType = domain.DiscountPercentage
	}
	if s.DiscountValue < 0 {
		s.DiscountValue = 0
	}
	if s.DiscountType == domain.DiscountPercentage && s.DiscountValue > 100 {
		s.DiscountValue = 100
	}
	if s.SelectedPayment == "" {
		s.SelectedPayment = domain.PaymentCash
	}
	if len(s.History) > historyLimit {
		s.History = s.History[len(s.History)-historyLimit:]
	}
}

// persistLocked writes the whole mapping plus the active pointer to the local
// store. Failures are logged and swallowed; the in-memory state stays
// authoritative for this process lifetime.
func (e *Engine) persistLocked() {
	blob, err := json.Marshal(e.sessions)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal carts")
		return
	}
	if err := e.local.Save(localstore.KeyCarts, blob); err != nil {
		log.Error().Err(err).Msg("failed to persist carts locally")
	}
	if err := e.local.Save(localstore.KeyActiveTable, []byte(e.activeTable)); err != nil {
		log.Error().Err(err).Msg("failed to persist active table pointer")
	}
	e.metrics.ActiveCarts.Set(float64(len(e.sessions)))
}

func (e *Engine) recordLocked(s *domain.CartSession, action, details, actor string) {
	s.History = append(s.History, domain.HistoryEntry{
		ID:        uuid.NewString(),
		Timestamp: e.now(),
		Action:    action,
		Details:   details,
		ActorID:   actor,
	})
	if len(s.History) > historyLimit {
		s.History = s.History[len(s.History)-historyLimit:]
	}
}

// scheduleSyncLocked (re)starts the debounce timer for one table. Timers are
// keyed per table: two tables syncing in quick succession must not cancel
// each other's upsert.
func (e *Engine) scheduleSyncLocked(s *domain.CartSession) {
	if !s.IsPersisted {
		return
	}
	tableID := s.TableID
	if t, ok := e.timers[tableID]; ok {
		t.Stop()
	}
	e.metrics.SyncScheduled.Inc()
	e.timers[tableID] = time.AfterFunc(e.debounce, func() {
		e.syncTable(tableID)
	})
}

// syncTable pushes the current snapshot for a table to the remote store.
// Fire-and-forget: a failure is logged, local state stays authoritative, and
// the next mutation schedules another attempt.
func (e *Engine) syncTable(tableID string) {
	e.mu.Lock()
	delete(e.timers, tableID)
	s, ok := e.sessions[tableID]
	if !ok || !s.IsPersisted {
		e.mu.Unlock()
		return
	}
	snap := s.Snapshot(e.now())
	e.syncing++
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.syncing--
		e.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := e.snapshots.UpsertSnapshot(ctx, snap); err != nil {
		e.metrics.SyncFailed.Inc()
		log.Error().Err(err).Str("table_id", tableID).Msg("remote cart sync failed")
		return
	}
	e.metrics.SyncSucceeded.Inc()
	log.Debug().Str("table_id", tableID).Float64("total", snap.Total).Msg("cart synced remotely")
}

// Syncing reports whether a remote snapshot upsert is currently in flight.
func (e *Engine) Syncing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.syncing > 0
}

func (e *Engine) publish(eventType string, snap *domain.CartSnapshot) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.publisher.Publish(ctx, eventType, snap); err != nil {
			log.Error().Err(err).Str("event", eventType).Str("table_id", snap.TableID).Msg("failed to publish cart event")
			return
		}
		e.metrics.EventsPublished.Inc()
	}()
}

// CleanExpiredCarts removes sessions that were never opened as a comanda and
// are older than the expiry threshold. Comandas are never swept by age.
func (e *Engine) CleanExpiredCarts() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := e.now().Add(-e.expiry)
	removed := 0
	for id, s := range e.sessions {
		if s.IsPersisted || s.CreatedAt.After(cutoff) {
			continue
		}
		if t, ok := e.timers[id]; ok {
			t.Stop()
			delete(e.timers, id)
		}
		delete(e.sessions, id)
		if e.activeTable == id {
			e.activeTable = ""
		}
		removed++
		log.Info().Str("table_id", id).Time("created_at", s.CreatedAt).Msg("expired cart swept")
	}
	if removed > 0 {
		e.metrics.CartsExpired.Add(float64(removed))
		e.persistLocked()
	}
	return removed
}

// StartSweeper runs the expiration sweep once immediately and then on every
// tick until the context is canceled.
func (e *Engine) StartSweeper(ctx context.Context, interval time.Duration) {
	e.CleanExpiredCarts()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			e.CleanExpiredCarts()
		case <-ctx.Done():
			return
		}
	}
}

// Close stops all pending debounce timers. In-flight syncs finish on their
// own.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, t := range e.timers {
		t.Stop()
		delete(e.timers, id)
	}
}
