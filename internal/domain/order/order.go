package order

import (
	"time"

	"github.com/feedbridge/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the fulfillment status of an order
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Item represents a line item on an order.
// ProductID may be a placeholder sentinel when the source SKU could not be
// resolved against the catalog; uuid.Nil means unresolved.
type Item struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	SKU         string
	Variation   string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewItem creates a new order line item. Quantity floors at 1; the line total
// is unit price times quantity rounded to 2 decimal places.
func NewItem(orderID, productID uuid.UUID, productName, sku, variation string, quantity int, unitPrice decimal.Decimal) Item {
	if quantity < 1 {
		quantity = 1
	}
	now := time.Now()
	return Item{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   productID,
		ProductName: productName,
		SKU:         sku,
		Variation:   variation,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		LineTotal:   unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Note is an audit note appended to an order
type Note struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Text      string
	CreatedAt time.Time
}

// Order is the aggregate root for a fulfillable order created or repaired
// from a marketplace feed.
type Order struct {
	shared.BaseAggregateRoot
	Status     Status
	Currency   string
	CreatedVia string
	Billing    Address
	Shipping   Address
	Items      []Item
	Total      decimal.Decimal
	Metadata   map[string]string
	Notes      []Note
}

// New creates a new order in the given status and currency
func New(status Status, currency string) (*Order, error) {
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	}
	if currency == "" {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency cannot be empty")
	}
	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Status:            status,
		Currency:          currency,
		Items:             make([]Item, 0),
		Total:             decimal.Zero,
		Metadata:          make(map[string]string),
	}, nil
}

// SetCreatedVia records the channel that created the order
func (o *Order) SetCreatedVia(via string) {
	o.CreatedVia = via
	o.UpdatedAt = time.Now()
}

// SetAddresses applies the billing address and mirrors it onto shipping.
// The feed carries a single recipient, so the two are always identical.
func (o *Order) SetAddresses(billing Address) {
	o.Billing = billing
	o.Shipping = billing
	o.UpdatedAt = time.Now()
}

// AddItem appends a line item and recalculates the total
func (o *Order) AddItem(item Item) {
	item.OrderID = o.ID
	o.Items = append(o.Items, item)
	o.RecalculateTotal()
	o.UpdatedAt = time.Now()
}

// ReplaceItems swaps the order's line items for a new set and recalculates
// the total. Used by repair mode.
func (o *Order) ReplaceItems(items []Item) {
	o.Items = make([]Item, 0, len(items))
	for _, item := range items {
		item.OrderID = o.ID
		o.Items = append(o.Items, item)
	}
	o.RecalculateTotal()
	o.UpdatedAt = time.Now()
}

// RecalculateTotal sets the order total to the exact sum of line totals.
// Source file totals are never trusted.
func (o *Order) RecalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal)
	}
	o.Total = total.Round(2)
}

// SetMetadata stores a key/value metadata pair on the order
func (o *Order) SetMetadata(key, value string) {
	if o.Metadata == nil {
		o.Metadata = make(map[string]string)
	}
	o.Metadata[key] = value
	o.UpdatedAt = time.Now()
}

// GetMetadata returns the metadata value for a key
func (o *Order) GetMetadata(key string) (string, bool) {
	v, ok := o.Metadata[key]
	return v, ok
}

// AddNote appends an audit note to the order
func (o *Order) AddNote(text string) {
	o.Notes = append(o.Notes, Note{
		ID:        uuid.New(),
		OrderID:   o.ID,
		Text:      text,
		CreatedAt: time.Now(),
	})
}

// ItemCount returns the number of line items
func (o *Order) ItemCount() int {
	return len(o.Items)
}
