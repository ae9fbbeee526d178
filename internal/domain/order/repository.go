package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository is the storage contract for orders. The import engine creates
// and repairs orders exclusively through this interface.
type Repository interface {
	// FindByID loads an order with its items, metadata and notes.
	// Returns shared.ErrNotFound if no order exists.
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindIDByMetadata returns the ID of the order carrying the given
	// metadata key/value pair. At most one order matches; shared.ErrNotFound
	// is a normal outcome, not an error condition.
	FindIDByMetadata(ctx context.Context, key, value string) (uuid.UUID, error)

	// Save persists the order aggregate, including items, metadata and notes.
	Save(ctx context.Context, o *Order) error

	// ReplaceItems removes the order's current line items and persists the
	// given set in their place.
	ReplaceItems(ctx context.Context, orderID uuid.UUID, items []Item) error

	// AppendNote appends an audit note to a persisted order.
	AppendNote(ctx context.Context, orderID uuid.UUID, text string) error
}

// RequiredField names an address field the fulfillment pipeline refuses to
// accept blank. The finalizer backfills these with a sentinel.
type RequiredField string

const (
	FieldShippingAddress1 RequiredField = "shipping_address_1"
	FieldShippingCity     RequiredField = "shipping_city"
	FieldShippingPostcode RequiredField = "shipping_postcode"
	FieldShippingCountry  RequiredField = "shipping_country"
	FieldBillingEmail     RequiredField = "billing_email"
)

// RequiredFields lists every field the finalizer guarantees non-empty, in a
// fixed order.
var RequiredFields = []RequiredField{
	FieldShippingAddress1,
	FieldShippingCity,
	FieldShippingPostcode,
	FieldShippingCountry,
	FieldBillingEmail,
}

// MetadataRepair is the narrow consistency-repair contract used only by the
// finalizer. It bypasses the aggregate's normal mutation path to fix
// invariants directly at the storage layer, and is deliberately kept apart
// from Repository so domain logic cannot reach it by accident.
type MetadataRepair interface {
	// ForceStatus sets the order status and refreshes its modification
	// timestamp regardless of the aggregate's state rules.
	ForceStatus(ctx context.Context, orderID uuid.UUID, status Status) error

	// EnsureMetadata inserts the key/value pair only if no row for the key
	// exists. An existing value is never overwritten.
	EnsureMetadata(ctx context.Context, orderID uuid.UUID, key, value string) error

	// ListItems returns the order's persisted line items.
	ListItems(ctx context.Context, orderID uuid.UUID) ([]Item, error)

	// RepairItem overwrites a line item's product reference, quantity and
	// line total in place.
	RepairItem(ctx context.Context, itemID, productID uuid.UUID, quantity int, lineTotal decimal.Decimal) error

	// SetTotal replaces the order's stored total.
	SetTotal(ctx context.Context, orderID uuid.UUID, total decimal.Decimal) error

	// ReadRequiredFields returns the current value of every required
	// address field for the order.
	ReadRequiredFields(ctx context.Context, orderID uuid.UUID) (map[RequiredField]string, error)

	// BackfillField sets a required address field and mirrors the value into
	// the order's metadata annotations.
	BackfillField(ctx context.Context, orderID uuid.UUID, field RequiredField, value string) error
}
