package models

import (
	"time"

	"github.com/feedbridge/backend/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate root.
// Billing and shipping addresses are flattened into prefixed columns.
type OrderModel struct {
	AggregateModel
	Status             order.Status         `gorm:"type:varchar(20);not null;default:'pending';index"`
	Currency           string               `gorm:"type:varchar(3);not null"`
	CreatedVia         string               `gorm:"type:varchar(50)"`
	BillingFirstName   string               `gorm:"type:varchar(100)"`
	BillingLastName    string               `gorm:"type:varchar(100)"`
	BillingAddress1    string               `gorm:"type:varchar(255)"`
	BillingAddress2    string               `gorm:"type:varchar(255)"`
	BillingCity        string               `gorm:"type:varchar(100)"`
	BillingState       string               `gorm:"type:varchar(100)"`
	BillingPostcode    string               `gorm:"type:varchar(20)"`
	BillingCountry     string               `gorm:"type:varchar(2)"`
	BillingEmail       string               `gorm:"type:varchar(255)"`
	BillingPhone       string               `gorm:"type:varchar(30)"`
	ShippingFirstName  string               `gorm:"type:varchar(100)"`
	ShippingLastName   string               `gorm:"type:varchar(100)"`
	ShippingAddress1   string               `gorm:"type:varchar(255)"`
	ShippingAddress2   string               `gorm:"type:varchar(255)"`
	ShippingCity       string               `gorm:"type:varchar(100)"`
	ShippingState      string               `gorm:"type:varchar(100)"`
	ShippingPostcode   string               `gorm:"type:varchar(20)"`
	ShippingCountry    string               `gorm:"type:varchar(2)"`
	ShippingEmail      string               `gorm:"type:varchar(255)"`
	ShippingPhone      string               `gorm:"type:varchar(30)"`
	Total              decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	Items              []OrderItemModel     `gorm:"foreignKey:OrderID;references:ID"`
	Metadata           []OrderMetadataModel `gorm:"foreignKey:OrderID;references:ID"`
	Notes              []OrderNoteModel     `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order aggregate.
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		Status:     m.Status,
		Currency:   m.Currency,
		CreatedVia: m.CreatedVia,
		Billing: order.Address{
			FirstName:    m.BillingFirstName,
			LastName:     m.BillingLastName,
			AddressLine1: m.BillingAddress1,
			AddressLine2: m.BillingAddress2,
			City:         m.BillingCity,
			State:        m.BillingState,
			PostalCode:   m.BillingPostcode,
			Country:      m.BillingCountry,
			Email:        m.BillingEmail,
			Phone:        m.BillingPhone,
		},
		Shipping: order.Address{
			FirstName:    m.ShippingFirstName,
			LastName:     m.ShippingLastName,
			AddressLine1: m.ShippingAddress1,
			AddressLine2: m.ShippingAddress2,
			City:         m.ShippingCity,
			State:        m.ShippingState,
			PostalCode:   m.ShippingPostcode,
			Country:      m.ShippingCountry,
			Email:        m.ShippingEmail,
			Phone:        m.ShippingPhone,
		},
		Total:    m.Total,
		Items:    make([]order.Item, len(m.Items)),
		Metadata: make(map[string]string, len(m.Metadata)),
		Notes:    make([]order.Note, len(m.Notes)),
	}
	m.PopulateAggregateRoot(&o.BaseAggregateRoot)
	for i, item := range m.Items {
		o.Items[i] = item.ToDomain()
	}
	for _, meta := range m.Metadata {
		o.Metadata[meta.MetaKey] = meta.MetaValue
	}
	for i, note := range m.Notes {
		o.Notes[i] = note.ToDomain()
	}
	return o
}

// FromDomain populates the persistence model from a domain Order aggregate.
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.Status = o.Status
	m.Currency = o.Currency
	m.CreatedVia = o.CreatedVia
	m.BillingFirstName = o.Billing.FirstName
	m.BillingLastName = o.Billing.LastName
	m.BillingAddress1 = o.Billing.AddressLine1
	m.BillingAddress2 = o.Billing.AddressLine2
	m.BillingCity = o.Billing.City
	m.BillingState = o.Billing.State
	m.BillingPostcode = o.Billing.PostalCode
	m.BillingCountry = o.Billing.Country
	m.BillingEmail = o.Billing.Email
	m.BillingPhone = o.Billing.Phone
	m.ShippingFirstName = o.Shipping.FirstName
	m.ShippingLastName = o.Shipping.LastName
	m.ShippingAddress1 = o.Shipping.AddressLine1
	m.ShippingAddress2 = o.Shipping.AddressLine2
	m.ShippingCity = o.Shipping.City
	m.ShippingState = o.Shipping.State
	m.ShippingPostcode = o.Shipping.PostalCode
	m.ShippingCountry = o.Shipping.Country
	m.ShippingEmail = o.Shipping.Email
	m.ShippingPhone = o.Shipping.Phone
	m.Total = o.Total
	m.Items = make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		m.Items[i] = OrderItemModelFromDomain(item)
	}
	m.Metadata = make([]OrderMetadataModel, 0, len(o.Metadata))
	for key, value := range o.Metadata {
		m.Metadata = append(m.Metadata, OrderMetadataModel{
			ID:        uuid.New(),
			OrderID:   o.ID,
			MetaKey:   key,
			MetaValue: value,
		})
	}
	m.Notes = make([]OrderNoteModel, len(o.Notes))
	for i, note := range o.Notes {
		m.Notes[i] = OrderNoteModelFromDomain(note)
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order aggregate.
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is the persistence model for an order line item.
type OrderItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(255);not null"`
	SKU         string          `gorm:"type:varchar(100);index"`
	Variation   string          `gorm:"type:varchar(255)"`
	Quantity    int             `gorm:"not null;default:1"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Item.
func (m OrderItemModel) ToDomain() order.Item {
	return order.Item{
		ID:          m.ID,
		OrderID:     m.OrderID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		SKU:         m.SKU,
		Variation:   m.Variation,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		LineTotal:   m.LineTotal,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// OrderItemModelFromDomain creates a persistence model from a domain Item.
func OrderItemModelFromDomain(item order.Item) OrderItemModel {
	return OrderItemModel{
		ID:          item.ID,
		OrderID:     item.OrderID,
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		SKU:         item.SKU,
		Variation:   item.Variation,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		LineTotal:   item.LineTotal,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

// OrderMetadataModel is the persistence model for an order metadata pair.
// One row per key per order. The partial unique index on the external order
// ID value is what makes concurrent imports of the same feed order safe; it
// is keyed on the default import.external_id_meta_key and must be recreated
// if that setting is changed.
type OrderMetadataModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_order_metadata_order_key,priority:1"`
	MetaKey   string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_order_metadata_order_key,priority:2;index:idx_order_metadata_key_value,priority:1"`
	MetaValue string    `gorm:"type:text;index:idx_order_metadata_key_value,priority:2;uniqueIndex:idx_order_metadata_external_id,where:meta_key = '_tiktok_order_id'"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderMetadataModel) TableName() string {
	return "order_metadata"
}

// OrderNoteModel is the persistence model for an order audit note.
type OrderNoteModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Note      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderNoteModel) TableName() string {
	return "order_notes"
}

// ToDomain converts the persistence model to a domain Note.
func (m OrderNoteModel) ToDomain() order.Note {
	return order.Note{
		ID:        m.ID,
		OrderID:   m.OrderID,
		Text:      m.Note,
		CreatedAt: m.CreatedAt,
	}
}

// OrderNoteModelFromDomain creates a persistence model from a domain Note.
func OrderNoteModelFromDomain(note order.Note) OrderNoteModel {
	return OrderNoteModel{
		ID:        note.ID,
		OrderID:   note.OrderID,
		Note:      note.Text,
		CreatedAt: note.CreatedAt,
	}
}
