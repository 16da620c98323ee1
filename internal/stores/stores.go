package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/domain"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/remote"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/syncqueue"
)

// Table lifecycle states.
const (
	TableAvailable = "available"
	TableOccupied  = "occupied"
	TableReserved  = "reserved"
)

// TableStore mirrors the floor plan.
type TableStore struct {
	*Mirror
}

func NewTableStore(queue *syncqueue.Queue, backend remote.CollectionStore) *TableStore {
	return &TableStore{Mirror: NewMirror(CollectionTables, queue, backend)}
}

func (s *TableStore) UpdateStatus(ctx context.Context, tableID, status string) error {
	switch status {
	case TableAvailable, TableOccupied, TableReserved:
	default:
		return fmt.Errorf("unknown table status: %s", status)
	}
	return s.Update(ctx, tableID, map[string]interface{}{"status": status})
}

func (s *TableStore) ByStatus(status string) []map[string]interface{} {
	var out []map[string]interface{}
	for _, rec := range s.All() {
		if rec["status"] == status {
			out = append(out, rec)
		}
	}
	return out
}

// ProductStore mirrors the catalog and carries the stock adjustments made
// when an order closes.
type ProductStore struct {
	*Mirror
}

func NewProductStore(queue *syncqueue.Queue, backend remote.CollectionStore) *ProductStore {
	return &ProductStore{Mirror: NewMirror(CollectionProducts, queue, backend)}
}

func (s *ProductStore) SetStock(ctx context.Context, productID string, stock int) error {
	if stock < 0 {
		stock = 0
	}
	return s.Update(ctx, productID, map[string]interface{}{"stock": stock})
}

// Available lists products that can still be sold.
func (s *ProductStore) Available() []map[string]interface{} {
	var out []map[string]interface{}
	for _, rec := range s.All() {
		stock, _ := rec["stock"].(float64)
		active, _ := rec["active"].(bool)
		if stock > 0 && active {
			out = append(out, rec)
		}
	}
	return out
}

// OrderStore mirrors submitted orders.
type OrderStore struct {
	*Mirror
}

func NewOrderStore(queue *syncqueue.Queue, backend remote.CollectionStore) *OrderStore {
	return &OrderStore{Mirror: NewMirror(CollectionOrders, queue, backend)}
}

// SubmitFromSnapshot turns a finalized cart snapshot into an order record.
// Works offline: the insert is queued and the returned record carries the
// pending_sync flag.
func (s *OrderStore) SubmitFromSnapshot(ctx context.Context, snap *domain.CartSnapshot, actor string) (map[string]interface{}, error) {
	items := make([]map[string]interface{}, 0, len(snap.Items))
	for _, it := range snap.Items {
		items = append(items, map[string]interface{}{
			"product_id": it.ProductID,
			"name":       it.Name,
			"unit_price": it.UnitPrice,
			"quantity":   it.Quantity,
			"subtotal":   it.Subtotal,
		})
	}

	payload := map[string]interface{}{
		"id":             uuid.NewString(),
		"table_id":       snap.TableID,
		"items":          items,
		"discount_type":  string(snap.DiscountType),
		"discount_value": snap.DiscountValue,
		"payment":        snap.SelectedPayment,
		"subtotal":       snap.Subtotal,
		"total":          snap.Total,
		"status":         "paid",
		"created_by":     actor,
		"created_at":     time.Now().UTC(),
	}
	return s.Insert(ctx, payload)
}
