package stores

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/domain"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/localstore"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/metrics"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/syncqueue"
)

type fakeCollections struct {
	mu      sync.Mutex
	writes  []domain.PendingOperation
	records map[string][]map[string]interface{}
}

func (f *fakeCollections) Write(_ context.Context, op domain.PendingOperation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, op)
	return nil
}

func (f *fakeCollections) ReadAll(_ context.Context, collection string) ([]map[string]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[collection], nil
}

func (f *fakeCollections) written() []domain.PendingOperation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.PendingOperation(nil), f.writes...)
}

func setup(t *testing.T) (*syncqueue.Queue, *fakeCollections) {
	t.Helper()
	backend := &fakeCollections{records: make(map[string][]map[string]interface{})}
	queue := syncqueue.NewQueue(localstore.NewMemoryStore(), backend, metrics.NewRegistry())
	return queue, backend
}

func TestTableStore_UpdateStatus(t *testing.T) {
	queue, backend := setup(t)
	ts := NewTableStore(queue, backend)

	require.NoError(t, ts.UpdateStatus(context.Background(), "t1", TableOccupied))

	rec, ok := ts.Get("t1")
	require.True(t, ok)
	assert.Equal(t, TableOccupied, rec["status"])

	writes := backend.written()
	require.Len(t, writes, 1)
	assert.Equal(t, CollectionTables, writes[0].Collection)
	assert.Equal(t, domain.OpUpdate, writes[0].Type)
}

func TestTableStore_RejectsUnknownStatus(t *testing.T) {
	queue, backend := setup(t)
	ts := NewTableStore(queue, backend)

	assert.Error(t, ts.UpdateStatus(context.Background(), "t1", "flooded"))
	assert.Empty(t, backend.written())
}

func TestTableStore_OfflineUpdateFlagsPendingSync(t *testing.T) {
	queue, backend := setup(t)
	queue.SetOnline(false)
	ts := NewTableStore(queue, backend)

	require.NoError(t, ts.UpdateStatus(context.Background(), "t1", TableReserved))

	rec, _ := ts.Get("t1")
	assert.Equal(t, true, rec["pending_sync"])
	assert.Empty(t, backend.written())
	assert.Equal(t, 1, queue.PendingCount())
	assert.Equal(t, StatusOffline, ts.ConnectionStatus())
}

func TestMirror_FetchReplacesCache(t *testing.T) {
	queue, backend := setup(t)
	backend.records[CollectionProducts] = []map[string]interface{}{
		{"id": "p1", "name": "Espetinho", "stock": float64(3), "active": true},
		{"id": "p2", "name": "Caldinho", "stock": float64(0), "active": true},
	}
	ps := NewProductStore(queue, backend)

	require.NoError(t, ps.Fetch(context.Background()))
	assert.Len(t, ps.All(), 2)

	available := ps.Available()
	require.Len(t, available, 1)
	assert.Equal(t, "p1", available[0]["id"])
}

func TestMirror_FetchSkippedOffline(t *testing.T) {
	queue, backend := setup(t)
	queue.SetOnline(false)
	ps := NewProductStore(queue, backend)

	require.NoError(t, ps.Fetch(context.Background()))
	assert.Empty(t, ps.All())
}

func TestProductStore_SetStockClampsAtZero(t *testing.T) {
	queue, backend := setup(t)
	ps := NewProductStore(queue, backend)

	require.NoError(t, ps.SetStock(context.Background(), "p1", -3))
	rec, _ := ps.Get("p1")
	assert.Equal(t, 0, rec["stock"])
}

func TestOrderStore_SubmitFromSnapshot(t *testing.T) {
	queue, backend := setup(t)
	os := NewOrderStore(queue, backend)

	snap := &domain.CartSnapshot{
		TableID: "5",
		Items: []domain.SnapshotItem{
			{ProductID: 9, Name: "Espetinho", UnitPrice: 8, Quantity: 2, Subtotal: 16},
		},
		DiscountType:    domain.DiscountAbsolute,
		DiscountValue:   2,
		SelectedPayment: domain.PaymentPix,
		Subtotal:        16,
		Total:           14,
	}

	order, err := os.SubmitFromSnapshot(context.Background(), snap, "ana")
	require.NoError(t, err)
	assert.Equal(t, "5", order["table_id"])
	assert.Equal(t, 14.0, order["total"])
	assert.NotEmpty(t, order["id"])

	writes := backend.written()
	require.Len(t, writes, 1)
	assert.Equal(t, CollectionOrders, writes[0].Collection)
	assert.Equal(t, domain.OpInsert, writes[0].Type)
}

func TestOrderStore_SubmitOfflineQueues(t *testing.T) {
	queue, backend := setup(t)
	queue.SetOnline(false)
	os := NewOrderStore(queue, backend)

	snap := &domain.CartSnapshot{TableID: "5", Total: 10}
	order, err := os.SubmitFromSnapshot(context.Background(), snap, "ana")
	require.NoError(t, err)
	assert.Equal(t, true, order["pending_sync"])
	assert.Equal(t, StatusOffline, os.ConnectionStatus())

	// back online with the insert still queued: the UI shows "syncing"
	queue.SetOnline(true)
	assert.Equal(t, StatusSyncing, os.ConnectionStatus())
}
