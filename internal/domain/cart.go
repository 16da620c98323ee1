package domain

import "time"

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountAbsolute   DiscountType = "absolute"
)

// Payment methods accepted at the register. The cart layer stores whatever
// string it is given; validation belongs to order submission.
const (
	PaymentCash     = "cash"
	PaymentPix      = "pix"
	PaymentDebit    = "debit"
	PaymentCredit   = "credit"
	PaymentTransfer = "transfer"
)

// Product is the catalog record as seen at add-to-cart time. Line items keep
// a copy of it, so later stock or price changes never rewrite an open cart.
type Product struct {
	ID    int64   `json:"id" bson:"id"`
	Name  string  `json:"name" bson:"name"`
	Price float64 `json:"price" bson:"price"`
	Stock int     `json:"stock" bson:"stock"`
}

type CartLineItem struct {
	Product  Product   `json:"product" bson:"product"`
	Quantity int       `json:"quantity" bson:"quantity"`
	AddedAt  time.Time `json:"added_at" bson:"added_at"`
	AddedBy  string    `json:"added_by" bson:"added_by"`
}

func (li CartLineItem) Subtotal() float64 {
	return li.Product.Price * float64(li.Quantity)
}

type HistoryEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	ActorID   string    `json:"actor_id"`
}

// History actions recorded per table.
const (
	ActionItemAdded      = "item_added"
	ActionItemRemoved    = "item_removed"
	ActionQuantityChange = "quantity_changed"
	ActionDiscountSet    = "discount_set"
	ActionPaymentSet     = "payment_set"
	ActionComandaOpened  = "comanda_opened"
	ActionCartCleared    = "cart_cleared"
	ActionFinalized      = "finalized"
)

// CartSession is the per-table cart state. At most one session exists per
// table id. A session becomes a comanda (standing order) once IsPersisted is
// set; only then is it synced remotely and exempt from the expiration sweep.
type CartSession struct {
	TableID         string         `json:"table_id"`
	Items           []CartLineItem `json:"items"`
	DiscountType    DiscountType   `json:"discount_type"`
	DiscountValue   float64        `json:"discount_value"`
	SelectedPayment string         `json:"selected_payment"`
	IsPersisted     bool           `json:"is_persisted"`
	CreatedAt       time.Time      `json:"created_at"`
	OpenedAt        time.Time      `json:"opened_at,omitempty"`
	History         []HistoryEntry `json:"history,omitempty"`
}

func NewCartSession(tableID string, now time.Time) *CartSession {
	return &CartSession{
		TableID:         tableID,
		Items:           []CartLineItem{},
		DiscountType:    DiscountPercentage,
		DiscountValue:   0,
		SelectedPayment: PaymentCash,
		CreatedAt:       now,
	}
}

func (s *CartSession) IsEmpty() bool {
	return len(s.Items) == 0
}

func (s *CartSession) ItemCount() int {
	count := 0
	for _, li := range s.Items {
		count += li.Quantity
	}
	return count
}

func (s *CartSession) Subtotal() float64 {
	total := 0.0
	for _, li := range s.Items {
		total += li.Subtotal()
	}
	return total
}

// DiscountAmount derives the monetary discount from the stored discount
// fields. The stored value is clamped at set-time, not here.
func (s *CartSession) DiscountAmount() float64 {
	if s.DiscountType == DiscountPercentage {
		return s.Subtotal() * s.DiscountValue / 100
	}
	return s.DiscountValue
}

func (s *CartSession) Total() float64 {
	total := s.Subtotal() - s.DiscountAmount()
	if total < 0 {
		return 0
	}
	return total
}

// FindItem returns the line item holding productID, or nil.
func (s *CartSession) FindItem(productID int64) *CartLineItem {
	for i := range s.Items {
		if s.Items[i].Product.ID == productID {
			return &s.Items[i]
		}
	}
	return nil
}
