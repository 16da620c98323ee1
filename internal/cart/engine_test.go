package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/domain"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/localstore"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/metrics"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/remote"
)

type fakeSnapshots struct {
	mu        sync.Mutex
	snaps     map[string]*domain.CartSnapshot
	upserts   int
	deletes   int
	upsertErr error
	deleteErr error
	fetchErr  error
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{snaps: make(map[string]*domain.CartSnapshot)}
}

func (f *fakeSnapshots) FetchSnapshot(_ context.Context, tableID string) (*domain.CartSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	snap, ok := f.snaps[tableID]
	if !ok {
		return nil, remote.ErrSnapshotNotFound
	}
	return snap, nil
}

func (f *fakeSnapshots) UpsertSnapshot(_ context.Context, snap *domain.CartSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.snaps[snap.TableID] = snap
	f.upserts++
	return nil
}

func (f *fakeSnapshots) DeleteSnapshot(_ context.Context, tableID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.snaps, tableID)
	return nil
}

func (f *fakeSnapshots) upsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upserts
}

func (f *fakeSnapshots) deleteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deletes
}

func (f *fakeSnapshots) snapshot(tableID string) *domain.CartSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snaps[tableID]
}

type fakePublisher struct {
	mu     sync.Mutex
	events []string
}

func (f *fakePublisher) Publish(_ context.Context, eventType string, _ *domain.CartSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventType)
	return nil
}

func (f *fakePublisher) published() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

func newTestEngine(t *testing.T, opts Options) (*Engine, *fakeSnapshots, localstore.Store) {
	t.Helper()
	store := localstore.NewMemoryStore()
	snaps := newFakeSnapshots()
	if opts.Debounce == 0 {
		opts.Debounce = 10 * time.Millisecond
	}
	e, err := NewEngine(store, snaps, &fakePublisher{}, metrics.NewRegistry(), opts)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e, snaps, store
}

func espetinho() domain.Product {
	return domain.Product{ID: 9, Name: "Espetinho", Price: 8.0, Stock: 2}
}

func TestInitializeTable_CreatesFreshSession(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})
	ctx := context.Background()

	e.InitializeTable(ctx, "3", "ana")

	assert.Equal(t, "3", e.ActiveTable())
	data, ok := e.GetCartByTable("3")
	require.True(t, ok)
	assert.Empty(t, data.Items)
	assert.False(t, data.IsPersisted)
}

func TestInitializeTable_Idempotent_LocalStateWins(t *testing.T) {
	e, snaps, _ := newTestEngine(t, Options{})
	ctx := context.Background()

	e.InitializeTable(ctx, "3", "ana")
	require.NoError(t, e.AddItem(espetinho(), "ana"))

	// A remote snapshot appears for the same table; re-initializing must not
	// clobber the unsynced local edits.
	snaps.snaps["3"] = &domain.CartSnapshot{TableID: "3", Total: 99}
	e.InitializeTable(ctx, "3", "ana")

	data, ok := e.GetCartData()
	require.True(t, ok)
	require.Len(t, data.Items, 1)
	assert.Equal(t, int64(9), data.Items[0].Product.ID)
}

func TestInitializeTable_HydratesFromRemote(t *testing.T) {
	e, snaps, _ := newTestEngine(t, Options{})
	ctx := context.Background()

	snaps.snaps["7"] = &domain.CartSnapshot{
		TableID: "7",
		Items: []domain.SnapshotItem{
			{ProductID: 9, Name: "Espetinho", UnitPrice: 8, Quantity: 2, Subtotal: 16},
		},
		DiscountType:    domain.DiscountPercentage,
		SelectedPayment: domain.PaymentPix,
		Subtotal:        16,
		Total:           16,
		UpdatedAt:       time.Now(),
	}

	e.InitializeTable(ctx, "7", "ana")

	data, ok := e.GetCartByTable("7")
	require.True(t, ok)
	assert.True(t, data.IsPersisted)
	assert.Empty(t, data.History)
	require.Len(t, data.Items, 1)
	assert.Equal(t, 2, data.Items[0].Quantity)
	assert.Equal(t, domain.PaymentPix, data.SelectedPayment)
	assert.True(t, e.HasOpenOrder("7"))
}

func TestInitializeTable_RemoteFailureFallsBackToFresh(t *testing.T) {
	e, snaps, _ := newTestEngine(t, Options{})
	snaps.fetchErr = errors.New("backend down")

	e.InitializeTable(context.Background(), "4", "ana")

	data, ok := e.GetCartByTable("4")
	require.True(t, ok)
	assert.False(t, data.IsPersisted)
	assert.Empty(t, data.Items)
}

func TestAddItem_NoActiveTable(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})
	assert.ErrorIs(t, e.AddItem(espetinho(), "ana"), ErrNoActiveTable)
}

func TestAddItem_StockScenario(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})
	e.InitializeTable(context.Background(), "3", "ana")

	require.NoError(t, e.AddItem(espetinho(), "ana"))
	data, ok := e.GetCartData()
	require.True(t, ok)
	assert.Equal(t, 1, data.Items[0].Quantity)
	assert.Equal(t, 8.0, data.Subtotal)

	require.NoError(t, e.AddItem(espetinho(), "ana"))
	data, _ = e.GetCartData()
	assert.Equal(t, 2, data.Items[0].Quantity)
	assert.Equal(t, 16.0, data.Subtotal)

	// stock ceiling is 2: third add is rejected without mutation
	assert.ErrorIs(t, e.AddItem(espetinho(), "ana"), ErrStockExceeded)
	data, _ = e.GetCartData()
	assert.Equal(t, 2, data.Items[0].Quantity)
	assert.Equal(t, 16.0, data.Subtotal)
}

func TestAddItem_OutOfStockProduct(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})
	e.InitializeTable(context.Background(), "3", "ana")

	p := domain.Product{ID: 1, Name: "Caldinho", Price: 5, Stock: 0}
	assert.ErrorIs(t, e.AddItem(p, "ana"), ErrOutOfStock)
	_, ok := e.GetCartData()
	assert.False(t, ok)
}

func TestQuantityInvariants(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})
	e.InitializeTable(context.Background(), "3", "ana")

	p := domain.Product{ID: 2, Name: "Cerveja", Price: 6, Stock: 10}
	require.NoError(t, e.AddItem(p, "ana"))

	require.NoError(t, e.SetQuantity(2, 10, "ana"))
	assert.ErrorIs(t, e.SetQuantity(2, 11, "ana"), ErrStockExceeded)
	data, _ := e.GetCartData()
	assert.Equal(t, 10, data.Items[0].Quantity)

	assert.ErrorIs(t, e.IncreaseQuantity(2, "ana"), ErrStockExceeded)

	// zero quantity removes the line instead of keeping a zero-quantity item
	require.NoError(t, e.SetQuantity(2, 0, "ana"))
	_, ok := e.GetCartData()
	assert.False(t, ok)
}

func TestDecreaseQuantity_RemovesLineAtOne(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})
	e.InitializeTable(context.Background(), "3", "ana")
	require.NoError(t, e.AddItem(espetinho(), "ana"))

	require.NoError(t, e.DecreaseQuantity(9, "ana"))
	_, ok := e.GetCartData()
	assert.False(t, ok)
}

func TestRemoveItem_AbsentIsNoop(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})
	e.InitializeTable(context.Background(), "3", "ana")

	require.NoError(t, e.RemoveItem(42, "ana"))
}

func TestSetDiscount_ClampsPercentage(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})
	e.InitializeTable(context.Background(), "3", "ana")
	require.NoError(t, e.AddItem(espetinho(), "ana"))

	require.NoError(t, e.SetDiscount(domain.DiscountPercentage, 150, "ana"))
	data, _ := e.GetCartData()
	assert.Equal(t, 100.0, data.DiscountValue)
	assert.Equal(t, 0.0, data.Total)
}

func TestSetDiscount_ClampsAbsoluteToSubtotal(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})
	e.InitializeTable(context.Background(), "3", "ana")
	require.NoError(t, e.AddItem(espetinho(), "ana")) // subtotal 8

	require.NoError(t, e.SetDiscount(domain.DiscountAbsolute, 50, "ana"))
	data, _ := e.GetCartData()
	assert.Equal(t, 8.0, data.DiscountValue)
	assert.Equal(t, 8.0, data.DiscountAmount)
	assert.Equal(t, 0.0, data.Total)
}

func TestTotal_NeverNegative(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})
	e.InitializeTable(context.Background(), "3", "ana")

	p := domain.Product{ID: 2, Name: "Cerveja", Price: 6, Stock: 10}
	require.NoError(t, e.AddItem(p, "ana"))
	require.NoError(t, e.SetQuantity(2, 5, "ana")) // subtotal 30
	require.NoError(t, e.SetDiscount(domain.DiscountAbsolute, 30, "ana"))

	// shrinking the cart afterwards must not push total below zero
	require.NoError(t, e.SetQuantity(2, 1, "ana")) // subtotal 6, discount still 30
	data, _ := e.GetCartData()
	assert.Equal(t, 0.0, data.Total)
}

func TestSetPaymentMethod_AcceptsAnyString(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})
	e.InitializeTable(context.Background(), "3", "ana")
	require.NoError(t, e.AddItem(espetinho(), "ana"))

	require.NoError(t, e.SetPaymentMethod("fiado", "ana"))
	data, _ := e.GetCartData()
	assert.Equal(t, "fiado", data.SelectedPayment)
}

func TestPersistCart_EmptyCartFails(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})
	e.InitializeTable(context.Background(), "3", "ana")

	assert.ErrorIs(t, e.PersistCart("ana"), ErrEmptyCart)
	data, ok := e.GetCartByTable("3")
	require.True(t, ok)
	assert.False(t, data.IsPersisted)
}

func TestPersistCart_IdempotentPreservesOpenedAt(t *testing.T) {
	current := time.Date(2026, 8, 1, 19, 0, 0, 0, time.UTC)
	now := func() time.Time { return current }
	e, _, _ := newTestEngine(t, Options{Now: now})
	e.InitializeTable(context.Background(), "3", "ana")
	require.NoError(t, e.AddItem(espetinho(), "ana"))

	require.NoError(t, e.PersistCart("ana"))
	first := current

	current = current.Add(2 * time.Hour)
	require.NoError(t, e.PersistCart("ana"))

	e.mu.Lock()
	opened := e.sessions["3"].OpenedAt
	e.mu.Unlock()
	assert.Equal(t, first, opened)
}

func TestDebouncedSync_CoalescesBurst(t *testing.T) {
	e, snaps, _ := newTestEngine(t, Options{Debounce: 30 * time.Millisecond})
	e.InitializeTable(context.Background(), "3", "ana")

	p := domain.Product{ID: 2, Name: "Cerveja", Price: 6, Stock: 10}
	require.NoError(t, e.AddItem(p, "ana"))
	require.NoError(t, e.PersistCart("ana"))
	require.NoError(t, e.IncreaseQuantity(2, "ana"))
	require.NoError(t, e.IncreaseQuantity(2, "ana"))
	require.NoError(t, e.IncreaseQuantity(2, "ana"))

	require.Eventually(t, func() bool {
		return snaps.upsertCount() > 0
	}, time.Second, 5*time.Millisecond)

	// the burst collapsed into a single upsert carrying the final state
	assert.Equal(t, 1, snaps.upsertCount())
	snap := snaps.snapshot("3")
	require.NotNil(t, snap)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 4, snap.Items[0].Quantity)
	assert.Equal(t, 24.0, snap.Total)
}

func TestDebouncedSync_PerTableTimers(t *testing.T) {
	e, snaps, _ := newTestEngine(t, Options{Debounce: 20 * time.Millisecond})
	ctx := context.Background()

	e.InitializeTable(ctx, "1", "ana")
	require.NoError(t, e.AddItem(espetinho(), "ana"))
	require.NoError(t, e.PersistCart("ana"))

	// switching tables right away must not cancel table 1's pending sync
	e.InitializeTable(ctx, "2", "ana")
	require.NoError(t, e.AddItem(espetinho(), "ana"))
	require.NoError(t, e.PersistCart("ana"))

	require.Eventually(t, func() bool {
		return snaps.snapshot("1") != nil && snaps.snapshot("2") != nil
	}, time.Second, 5*time.Millisecond)
}

func TestSync_NonPersistedNeverSynced(t *testing.T) {
	e, snaps, _ := newTestEngine(t, Options{Debounce: 10 * time.Millisecond})
	e.InitializeTable(context.Background(), "3", "ana")
	require.NoError(t, e.AddItem(espetinho(), "ana"))

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, snaps.upsertCount())
}

func TestSync_FailureDoesNotRollBackLocalState(t *testing.T) {
	e, snaps, _ := newTestEngine(t, Options{Debounce: 10 * time.Millisecond})
	snaps.upsertErr = errors.New("backend down")

	e.InitializeTable(context.Background(), "3", "ana")
	require.NoError(t, e.AddItem(espetinho(), "ana"))
	require.NoError(t, e.PersistCart("ana"))

	time.Sleep(60 * time.Millisecond)
	data, ok := e.GetCartData()
	require.True(t, ok)
	assert.Len(t, data.Items, 1)
	assert.True(t, data.IsPersisted)
}

func TestFinalize_RemovesLocalEvenWhenRemoteDeleteFails(t *testing.T) {
	e, snaps, _ := newTestEngine(t, Options{})
	e.InitializeTable(context.Background(), "5", "ana")
	require.NoError(t, e.AddItem(espetinho(), "ana"))
	require.NoError(t, e.PersistCart("ana"))

	snaps.deleteErr = errors.New("backend down")
	snap, err := e.FinalizeAfterPayment(context.Background(), "5", "ana")
	require.NoError(t, err)
	assert.Equal(t, 8.0, snap.Total)

	_, ok := e.GetCartByTable("5")
	assert.False(t, ok)
	assert.Equal(t, "", e.ActiveTable())
	assert.Equal(t, 1, snaps.deleteCount())
}

func TestFinalize_UnknownTable(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})
	_, err := e.FinalizeAfterPayment(context.Background(), "77", "ana")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestFinalize_EmptyCart(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})
	e.InitializeTable(context.Background(), "5", "ana")

	_, err := e.FinalizeAfterPayment(context.Background(), "5", "ana")
	assert.ErrorIs(t, err, ErrEmptyCart)
	_, ok := e.GetCartByTable("5")
	assert.True(t, ok, "empty session must survive a refused finalize")
}

func TestFinalize_PublishesEvent(t *testing.T) {
	store := localstore.NewMemoryStore()
	snaps := newFakeSnapshots()
	pub := &fakePublisher{}
	e, err := NewEngine(store, snaps, pub, metrics.NewRegistry(), Options{Debounce: 10 * time.Millisecond})
	require.NoError(t, err)
	defer e.Close()

	e.InitializeTable(context.Background(), "5", "ana")
	require.NoError(t, e.AddItem(espetinho(), "ana"))
	require.NoError(t, e.PersistCart("ana"))
	_, err = e.FinalizeAfterPayment(context.Background(), "5", "ana")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(pub.published()) == 2
	}, time.Second, 5*time.Millisecond)
	assert.ElementsMatch(t, []string{"comanda_opened", "order_finalized"}, pub.published())
}

func TestClearCart_ResetsWithoutDestroying(t *testing.T) {
	e, snaps, _ := newTestEngine(t, Options{})
	e.InitializeTable(context.Background(), "3", "ana")
	require.NoError(t, e.AddItem(espetinho(), "ana"))
	require.NoError(t, e.SetDiscount(domain.DiscountPercentage, 10, "ana"))
	require.NoError(t, e.SetPaymentMethod(domain.PaymentPix, "ana"))
	require.NoError(t, e.PersistCart("ana"))

	require.NoError(t, e.ClearCart("ana"))

	data, ok := e.GetCartByTable("3")
	require.True(t, ok)
	assert.Empty(t, data.Items)
	assert.Equal(t, 0.0, data.DiscountValue)
	assert.Equal(t, domain.PaymentCash, data.SelectedPayment)
	assert.False(t, data.IsPersisted)
	assert.NotEmpty(t, data.History)

	require.Eventually(t, func() bool {
		return snaps.deleteCount() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestHistory_CappedAtFifty(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})
	e.InitializeTable(context.Background(), "3", "ana")

	p := domain.Product{ID: 2, Name: "Cerveja", Price: 6, Stock: 1000}
	require.NoError(t, e.AddItem(p, "ana"))
	for i := 0; i < 59; i++ {
		require.NoError(t, e.IncreaseQuantity(2, "ana"))
	}

	data, _ := e.GetCartData()
	require.Len(t, data.History, 50)
	// the retained entries are the most recent ones, oldest evicted first
	assert.Equal(t, "Cerveja x60", data.History[49].Details)
	assert.Equal(t, "Cerveja x11", data.History[0].Details)
	for i := 1; i < 50; i++ {
		assert.False(t, data.History[i].Timestamp.Before(data.History[i-1].Timestamp))
	}
}

func TestRoundTrip_LocalPersistence(t *testing.T) {
	store := localstore.NewMemoryStore()
	snaps := newFakeSnapshots()

	e, err := NewEngine(store, snaps, &fakePublisher{}, metrics.NewRegistry(), Options{})
	require.NoError(t, err)
	e.InitializeTable(context.Background(), "5", "ana")
	require.NoError(t, e.AddItem(espetinho(), "ana"))
	require.NoError(t, e.SetDiscount(domain.DiscountAbsolute, 2, "ana"))
	require.NoError(t, e.SetPaymentMethod(domain.PaymentPix, "ana"))
	e.Close()

	reloaded, err := NewEngine(store, snaps, &fakePublisher{}, metrics.NewRegistry(), Options{})
	require.NoError(t, err)
	defer reloaded.Close()

	assert.Equal(t, "5", reloaded.ActiveTable())
	data, ok := reloaded.GetCartByTable("5")
	require.True(t, ok)
	require.Len(t, data.Items, 1)
	assert.Equal(t, int64(9), data.Items[0].Product.ID)
	assert.Equal(t, 1, data.Items[0].Quantity)
	assert.Equal(t, domain.DiscountAbsolute, data.DiscountType)
	assert.Equal(t, 2.0, data.DiscountValue)
	assert.Equal(t, domain.PaymentPix, data.SelectedPayment)
	assert.Equal(t, 6.0, data.Total)
}

func TestNewEngine_CorruptBlobFails(t *testing.T) {
	store := localstore.NewMemoryStore()
	require.NoError(t, store.Save(localstore.KeyCarts, []byte("{broken")))

	_, err := NewEngine(store, newFakeSnapshots(), &fakePublisher{}, metrics.NewRegistry(), Options{})
	assert.ErrorContains(t, err, "corrupt local cart data")
}

func TestRestore_NormalizesInvalidSessions(t *testing.T) {
	store := localstore.NewMemoryStore()
	blob := []byte(`{"3":{"table_id":"3","items":[` +
		`{"product":{"id":1,"name":"Caldinho","price":5,"stock":5},"quantity":0},` +
		`{"product":{"id":2,"name":"Cerveja","price":6,"stock":5},"quantity":2}],` +
		`"discount_type":"percentage","discount_value":400,"selected_payment":""}}`)
	require.NoError(t, store.Save(localstore.KeyCarts, blob))

	e, err := NewEngine(store, newFakeSnapshots(), &fakePublisher{}, metrics.NewRegistry(), Options{})
	require.NoError(t, err)
	defer e.Close()

	data, ok := e.GetCartByTable("3")
	require.True(t, ok)
	require.Len(t, data.Items, 1, "zero-quantity line dropped on load")
	assert.Equal(t, int64(2), data.Items[0].Product.ID)
	assert.Equal(t, 100.0, data.DiscountValue)
	assert.Equal(t, domain.PaymentCash, data.SelectedPayment)
}

func TestCleanExpiredCarts(t *testing.T) {
	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return current }
	e, _, _ := newTestEngine(t, Options{Now: now, Expiry: 24 * time.Hour})
	ctx := context.Background()

	e.InitializeTable(ctx, "old", "ana")
	e.InitializeTable(ctx, "comanda", "ana")
	require.NoError(t, e.AddItem(espetinho(), "ana"))
	require.NoError(t, e.PersistCart("ana"))

	current = current.Add(25 * time.Hour)
	e.InitializeTable(ctx, "new", "ana")

	removed := e.CleanExpiredCarts()
	assert.Equal(t, 1, removed)

	_, ok := e.GetCartByTable("old")
	assert.False(t, ok)
	_, ok = e.GetCartByTable("comanda")
	assert.True(t, ok, "persisted comandas are never swept")
	_, ok = e.GetCartByTable("new")
	assert.True(t, ok)
}

func TestCleanExpiredCarts_ClearsActivePointer(t *testing.T) {
	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	e, _, _ := newTestEngine(t, Options{Now: func() time.Time { return current }})

	e.InitializeTable(context.Background(), "9", "ana")
	current = current.Add(48 * time.Hour)

	require.Equal(t, 1, e.CleanExpiredCarts())
	assert.Equal(t, "", e.ActiveTable())
}

func TestItemCount(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})
	e.InitializeTable(context.Background(), "3", "ana")

	p := domain.Product{ID: 2, Name: "Cerveja", Price: 6, Stock: 10}
	require.NoError(t, e.AddItem(p, "ana"))
	require.NoError(t, e.AddItem(espetinho(), "ana"))
	require.NoError(t, e.IncreaseQuantity(2, "ana"))

	assert.Equal(t, 3, e.ItemCount())
}

func TestGetCartData_EmptyCart(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})
	e.InitializeTable(context.Background(), "3", "ana")

	_, ok := e.GetCartData()
	assert.False(t, ok)
}

func TestClearAllCarts(t *testing.T) {
	e, _, store := newTestEngine(t, Options{})
	ctx := context.Background()
	e.InitializeTable(ctx, "1", "ana")
	e.InitializeTable(ctx, "2", "ana")

	e.ClearAllCarts()

	assert.Empty(t, e.TableIDs())
	assert.Equal(t, "", e.ActiveTable())
	_, err := store.Load(localstore.KeyCarts)
	assert.ErrorIs(t, err, localstore.ErrKeyNotFound)
}
