package domain

import "time"

type SnapshotItem struct {
	ProductID int64   `json:"product_id" bson:"product_id"`
	Name      string  `json:"name" bson:"name"`
	UnitPrice float64 `json:"unit_price" bson:"unit_price"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	Subtotal  float64 `json:"subtotal" bson:"subtotal"`
}

// CartSnapshot is the wire shape persisted remotely per table so another
// device can recover an open comanda. It carries computed totals so dashboard
// readers never have to re-derive them.
type CartSnapshot struct {
	TableID         string         `json:"table_id" bson:"table_id"`
	Items           []SnapshotItem `json:"items" bson:"items"`
	DiscountType    DiscountType   `json:"discount_type" bson:"discount_type"`
	DiscountValue   float64        `json:"discount_value" bson:"discount_value"`
	SelectedPayment string         `json:"selected_payment" bson:"selected_payment"`
	Subtotal        float64        `json:"subtotal" bson:"subtotal"`
	Total           float64        `json:"total" bson:"total"`
	UpdatedAt       time.Time      `json:"updated_at" bson:"updated_at"`
}

// Snapshot flattens the session into its wire shape.
func (s *CartSession) Snapshot(now time.Time) *CartSnapshot {
	items := make([]SnapshotItem, 0, len(s.Items))
	for _, li := range s.Items {
		items = append(items, SnapshotItem{
			ProductID: li.Product.ID,
			Name:      li.Product.Name,
			UnitPrice: li.Product.Price,
			Quantity:  li.Quantity,
			Subtotal:  li.Subtotal(),
		})
	}
	return &CartSnapshot{
		TableID:         s.TableID,
		Items:           items,
		DiscountType:    s.DiscountType,
		DiscountValue:   s.DiscountValue,
		SelectedPayment: s.SelectedPayment,
		Subtotal:        s.Subtotal(),
		Total:           s.Total(),
		UpdatedAt:       now,
	}
}

// SessionFromSnapshot materializes a session recovered from the remote store.
// Recovered sessions are comandas already: persisted, empty history, and the
// snapshot items carry no provenance beyond the snapshot itself.
func SessionFromSnapshot(snap *CartSnapshot, now time.Time) *CartSession {
	session := NewCartSession(snap.TableID, now)
	session.IsPersisted = true
	session.OpenedAt = snap.UpdatedAt
	session.DiscountType = snap.DiscountType
	session.DiscountValue = snap.DiscountValue
	if snap.SelectedPayment != "" {
		session.SelectedPayment = snap.SelectedPayment
	}
	for _, it := range snap.Items {
		session.Items = append(session.Items, CartLineItem{
			// The wire shape does not carry the stock ceiling, so a recovered
			// line is capped at its recovered quantity until the next AddItem
			// brings a fresh catalog snapshot.
			Product: Product{
				ID:    it.ProductID,
				Name:  it.Name,
				Price: it.UnitPrice,
				Stock: it.Quantity,
			},
			Quantity: it.Quantity,
			AddedAt:  snap.UpdatedAt,
		})
	}
	return session
}
