package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/domain"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/events"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/localstore"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/remote"
)

// CartData is the read-only view handed to the UI layer: a copy of the
// session plus the derived totals.
type CartData struct {
	TableID         string                `json:"table_id"`
	Items           []domain.CartLineItem `json:"items"`
	DiscountType    domain.DiscountType   `json:"discount_type"`
	DiscountValue   float64               `json:"discount_value"`
	SelectedPayment string                `json:"selected_payment"`
	IsPersisted     bool                  `json:"is_persisted"`
	Subtotal        float64               `json:"subtotal"`
	DiscountAmount  float64               `json:"discount_amount"`
	Total           float64               `json:"total"`
	History         []domain.HistoryEntry `json:"history"`
}

// InitializeTable selects the table and makes sure it has a session. If a
// local session already exists it wins: remote data never clobbers unsynced
// local edits. Otherwise the engine tries to recover an open comanda from the
// remote store, and falls back to a fresh empty session.
func (e *Engine) InitializeTable(ctx context.Context, tableID, actor string) {
	e.mu.Lock()
	if _, ok := e.sessions[tableID]; ok {
		e.activeTable = tableID
		e.persistLocked()
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	snap, err := e.snapshots.FetchSnapshot(ctx, tableID)
	if err != nil && !errors.Is(err, remote.ErrSnapshotNotFound) {
		// Hydration is best-effort; offline start still gets a working cart.
		log.Warn().Err(err).Str("table_id", tableID).Msg("snapshot hydration failed, starting fresh")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.sessions[tableID]; !ok {
		if err == nil && snap != nil {
			e.sessions[tableID] = domain.SessionFromSnapshot(snap, e.now())
			log.Info().Str("table_id", tableID).Str("actor", actor).Msg("comanda recovered from remote snapshot")
		} else {
			e.sessions[tableID] = domain.NewCartSession(tableID, e.now())
		}
	}
	e.activeTable = tableID
	e.persistLocked()
}

// AddItem puts one unit of the product into the active cart. The stock
// ceiling comes from the catalog snapshot the caller passes in.
func (e *Engine) AddItem(product domain.Product, actor string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.activeSessionLocked()
	if s == nil {
		return ErrNoActiveTable
	}

	if li := s.FindItem(product.ID); li != nil {
		if li.Quantity >= product.Stock {
			return ErrStockExceeded
		}
		li.Quantity++
		e.recordLocked(s, domain.ActionItemAdded, fmt.Sprintf("%s x%d", li.Product.Name, li.Quantity), actor)
	} else {
		if product.Stock <= 0 {
			return ErrOutOfStock
		}
		s.Items = append(s.Items, domain.CartLineItem{
			Product:  product,
			Quantity: 1,
			AddedAt:  e.now(),
			AddedBy:  actor,
		})
		e.recordLocked(s, domain.ActionItemAdded, fmt.Sprintf("%s x1", product.Name), actor)
	}

	e.persistLocked()
	e.scheduleSyncLocked(s)
	return nil
}

// RemoveItem drops the product's line entirely. Removing an absent product is
// a no-op, not an error.
func (e *Engine) RemoveItem(productID int64, actor string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.activeSessionLocked()
	if s == nil {
		return ErrNoActiveTable
	}
	e.removeItemLocked(s, productID, actor)
	return nil
}

func (e *Engine) removeItemLocked(s *domain.CartSession, productID int64, actor string) {
	for i, li := range s.Items {
		if li.Product.ID == productID {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			e.recordLocked(s, domain.ActionItemRemoved, li.Product.Name, actor)
			e.persistLocked()
			e.scheduleSyncLocked(s)
			return
		}
	}
}

// SetQuantity sets the line to an absolute quantity. Zero or less removes the
// line; anything past the snapshotted stock ceiling is rejected unchanged.
func (e *Engine) SetQuantity(productID int64, quantity int, actor string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.activeSessionLocked()
	if s == nil {
		return ErrNoActiveTable
	}

	li := s.FindItem(productID)
	if li == nil {
		return nil
	}
	if quantity <= 0 {
		e.removeItemLocked(s, productID, actor)
		return nil
	}
	if quantity > li.Product.Stock {
		return ErrStockExceeded
	}

	prev := li.Quantity
	li.Quantity = quantity
	e.recordLocked(s, domain.ActionQuantityChange, fmt.Sprintf("%s %d->%d", li.Product.Name, prev, quantity), actor)
	e.persistLocked()
	e.scheduleSyncLocked(s)
	return nil
}

// IncreaseQuantity bumps the line by one, bounded by its stock ceiling.
func (e *Engine) IncreaseQuantity(productID int64, actor string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.activeSessionLocked()
	if s == nil {
		return ErrNoActiveTable
	}
	li := s.FindItem(productID)
	if li == nil {
		return nil
	}
	if li.Quantity >= li.Product.Stock {
		return ErrStockExceeded
	}
	li.Quantity++
	e.recordLocked(s, domain.ActionQuantityChange, fmt.Sprintf("%s x%d", li.Product.Name, li.Quantity), actor)
	e.persistLocked()
	e.scheduleSyncLocked(s)
	return nil
}

// DecreaseQuantity drops the line by one; from one it removes the line.
func (e *Engine) DecreaseQuantity(productID int64, actor string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.activeSessionLocked()
	if s == nil {
		return ErrNoActiveTable
	}
	li := s.FindItem(productID)
	if li == nil {
		return nil
	}
	if li.Quantity <= 1 {
		e.removeItemLocked(s, productID, actor)
		return nil
	}
	li.Quantity--
	e.recordLocked(s, domain.ActionQuantityChange, fmt.Sprintf("%s x%d", li.Product.Name, li.Quantity), actor)
	e.persistLocked()
	e.scheduleSyncLocked(s)
	return nil
}

// SetDiscount stores the discount, silently clamping the value into
// [0, 100] for percentages and [0, subtotal] for absolute amounts.
func (e *Engine) SetDiscount(discountType domain.DiscountType, value float64, actor string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.activeSessionLocked()
	if s == nil {
		return ErrNoActiveTable
	}

	if value < 0 {
		value = 0
	}
	switch discountType {
	case domain.DiscountAbsolute:
		if subtotal := s.Subtotal(); value > subtotal {
			value = subtotal
		}
	default:
		discountType = domain.DiscountPercentage
		if value > 100 {
			value = 100
		}
	}

	s.DiscountType = discountType
	s.DiscountValue = value
	e.recordLocked(s, domain.ActionDiscountSet, fmt.Sprintf("%s %.2f", discountType, value), actor)
	e.persistLocked()
	e.scheduleSyncLocked(s)
	return nil
}

// SetPaymentMethod stores the method as given. Validation, if any, belongs to
// order submission.
func (e *Engine) SetPaymentMethod(method, actor string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.activeSessionLocked()
	if s == nil {
		return ErrNoActiveTable
	}
	s.SelectedPayment = method
	e.recordLocked(s, domain.ActionPaymentSet, method, actor)
	e.persistLocked()
	e.scheduleSyncLocked(s)
	return nil
}

// PersistCart promotes the active cart to a comanda, making it eligible for
// remote sync and exempt from the expiration sweep. Repeat calls are no-ops
// that keep the original OpenedAt.
func (e *Engine) PersistCart(actor string) error {
	e.mu.Lock()

	s := e.activeSessionLocked()
	if s == nil {
		e.mu.Unlock()
		return ErrNoActiveTable
	}
	if s.IsEmpty() {
		e.mu.Unlock()
		return ErrEmptyCart
	}
	if s.IsPersisted {
		e.mu.Unlock()
		return nil
	}

	s.IsPersisted = true
	s.OpenedAt = e.now()
	e.recordLocked(s, domain.ActionComandaOpened, "", actor)
	e.persistLocked()
	e.scheduleSyncLocked(s)
	snap := s.Snapshot(e.now())
	e.mu.Unlock()

	e.publish(events.EventComandaOpened, snap)
	return nil
}

// ClearCart empties the active session without destroying it: items gone,
// discount zeroed, payment back to default, comanda flag dropped. History is
// kept.
func (e *Engine) ClearCart(actor string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.activeSessionLocked()
	if s == nil {
		return ErrNoActiveTable
	}
	wasPersisted := s.IsPersisted
	s.Items = []domain.CartLineItem{}
	s.DiscountType = domain.DiscountPercentage
	s.DiscountValue = 0
	s.SelectedPayment = domain.PaymentCash
	s.IsPersisted = false
	e.recordLocked(s, domain.ActionCartCleared, "", actor)
	e.persistLocked()
	if wasPersisted {
		if t, ok := e.timers[s.TableID]; ok {
			t.Stop()
			delete(e.timers, s.TableID)
		}
		// The session is no longer a comanda; drop the remote snapshot so
		// other devices stop showing stale items. Best-effort.
		tableID := s.TableID
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := e.snapshots.DeleteSnapshot(ctx, tableID); err != nil {
				log.Error().Err(err).Str("table_id", tableID).Msg("remote snapshot delete failed")
			}
		}()
	}
	return nil
}

// FinalizeAfterPayment closes out the table: best-effort remote snapshot
// delete, unconditional local removal. It returns the closing snapshot so the
// caller can submit the order. This is the single exit point of a session's
// lifecycle.
func (e *Engine) FinalizeAfterPayment(ctx context.Context, tableID, actor string) (*domain.CartSnapshot, error) {
	e.mu.Lock()
	s, ok := e.sessions[tableID]
	if !ok {
		e.mu.Unlock()
		return nil, ErrNoSession
	}
	if s.IsEmpty() {
		e.mu.Unlock()
		return nil, ErrEmptyCart
	}

	snap := s.Snapshot(e.now())
	wasPersisted := s.IsPersisted
	if t, tok := e.timers[tableID]; tok {
		t.Stop()
		delete(e.timers, tableID)
	}
	delete(e.sessions, tableID)
	if e.activeTable == tableID {
		e.activeTable = ""
	}
	e.persistLocked()
	e.mu.Unlock()

	if wasPersisted {
		if err := e.snapshots.DeleteSnapshot(ctx, tableID); err != nil {
			// Local removal already happened; the orphan snapshot is cleaned
			// up by the next finalize or a manual sweep.
			log.Error().Err(err).Str("table_id", tableID).Msg("remote snapshot delete failed")
		}
	}

	log.Info().Str("table_id", tableID).Str("actor", actor).Float64("total", snap.Total).Msg("table finalized")
	e.publish(events.EventOrderFinalized, snap)
	return snap, nil
}

// ClearAllCarts wipes every session and the active pointer, locally and in
// the local store. Used by the cash-register closing flow.
func (e *Engine) ClearAllCarts() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for id, t := range e.timers {
		t.Stop()
		delete(e.timers, id)
	}
	e.sessions = make(map[string]*domain.CartSession)
	e.activeTable = ""
	if err := e.local.Delete(localstore.KeyCarts); err != nil {
		log.Error().Err(err).Msg("failed to clear carts from local store")
	}
	if err := e.local.Delete(localstore.KeyActiveTable); err != nil {
		log.Error().Err(err).Msg("failed to clear active table pointer")
	}
	e.metrics.ActiveCarts.Set(0)
}

func (e *Engine) activeSessionLocked() *domain.CartSession {
	if e.activeTable == "" {
		return nil
	}
	return e.sessions[e.activeTable]
}

// ActiveTable returns the currently selected table id, or empty.
func (e *Engine) ActiveTable() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activeTable
}

// GetCartData derives the full read view of the active cart. The second
// return is false when there is no active session or the cart is empty.
func (e *Engine) GetCartData() (*CartData, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.activeSessionLocked()
	if s == nil || s.IsEmpty() {
		return nil, false
	}
	return viewOf(s), true
}

// GetCartByTable derives the read view for an explicit table, empty carts
// included. False when the table has no session at all.
func (e *Engine) GetCartByTable(tableID string) (*CartData, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[tableID]
	if !ok {
		return nil, false
	}
	return viewOf(s), true
}

// HasOpenOrder reports whether the table has a persisted comanda.
func (e *Engine) HasOpenOrder(tableID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[tableID]
	return ok && s.IsPersisted
}

// ItemCount sums the quantities in the active cart.
func (e *Engine) ItemCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.activeSessionLocked()
	if s == nil {
		return 0
	}
	return s.ItemCount()
}

// TableIDs lists every table that currently has a session.
func (e *Engine) TableIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]string, 0, len(e.sessions))
	for id := range e.sessions {
		ids = append(ids, id)
	}
	return ids
}

func viewOf(s *domain.CartSession) *CartData {
	items := make([]domain.CartLineItem, len(s.Items))
	copy(items, s.Items)
	history := make([]domain.HistoryEntry, len(s.History))
	copy(history, s.History)
	return &CartData{
		TableID:         s.TableID,
		Items:           items,
		DiscountType:    s.DiscountType,
		DiscountValue:   s.DiscountValue,
		SelectedPayment: s.SelectedPayment,
		IsPersisted:     s.IsPersisted,
		Subtotal:        s.Subtotal(),
		DiscountAmount:  s.DiscountAmount(),
		Total:           s.Total(),
		History:         history,
	}
}
