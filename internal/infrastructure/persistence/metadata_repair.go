package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/feedbridge/backend/internal/domain/order"
	"github.com/feedbridge/backend/internal/domain/shared"
	"github.com/feedbridge/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMetadataRepair implements order.MetadataRepair using GORM. It writes
// directly to order rows and their child tables, bypassing the aggregate, so
// the finalizer can restore invariants on records it did not create.
type GormMetadataRepair struct {
	db *gorm.DB
}

// NewGormMetadataRepair creates a new GormMetadataRepair
func NewGormMetadataRepair(db *gorm.DB) *GormMetadataRepair {
	return &GormMetadataRepair{db: db}
}

// ForceStatus sets the order status and refreshes the modification timestamp
func (r *GormMetadataRepair) ForceStatus(ctx context.Context, orderID uuid.UUID, status order.Status) error {
	result := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// EnsureMetadata inserts the key/value pair only if no row for the key exists
func (r *GormMetadataRepair) EnsureMetadata(ctx context.Context, orderID uuid.UUID, key, value string) error {
	now := time.Now()
	meta := models.OrderMetadataModel{
		ID:        uuid.New(),
		OrderID:   orderID,
		MetaKey:   key,
		MetaValue: value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "meta_key"}},
			DoNothing: true,
		}).
		Create(&meta).Error
}

// ListItems returns the order's persisted line items
func (r *GormMetadataRepair) ListItems(ctx context.Context, orderID uuid.UUID) ([]order.Item, error) {
	var itemModels []models.OrderItemModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&itemModels).Error; err != nil {
		return nil, err
	}
	items := make([]order.Item, len(itemModels))
	for i, m := range itemModels {
		items[i] = m.ToDomain()
	}
	return items, nil
}

// RepairItem overwrites a line item's product reference, quantity and line total
func (r *GormMetadataRepair) RepairItem(ctx context.Context, itemID, productID uuid.UUID, quantity int, lineTotal decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&models.OrderItemModel{}).
		Where("id = ?", itemID).
		Updates(map[string]any{
			"product_id": productID,
			"quantity":   quantity,
			"line_total": lineTotal,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetTotal replaces the order's stored total
func (r *GormMetadataRepair) SetTotal(ctx context.Context, orderID uuid.UUID, total decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"total":      total,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// requiredFieldColumns maps required fields to their order table columns.
var requiredFieldColumns = map[order.RequiredField]string{
	order.FieldShippingAddress1: "shipping_address1",
	order.FieldShippingCity:     "shipping_city",
	order.FieldShippingPostcode: "shipping_postcode",
	order.FieldShippingCountry:  "shipping_country",
	order.FieldBillingEmail:     "billing_email",
}

// ReadRequiredFields returns the current value of every required address field
func (r *GormMetadataRepair) ReadRequiredFields(ctx context.Context, orderID uuid.UUID) (map[order.RequiredField]string, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Select("shipping_address1", "shipping_city", "shipping_postcode", "shipping_country", "billing_email").
		First(&model, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return map[order.RequiredField]string{
		order.FieldShippingAddress1: model.ShippingAddress1,
		order.FieldShippingCity:     model.ShippingCity,
		order.FieldShippingPostcode: model.ShippingPostcode,
		order.FieldShippingCountry:  model.ShippingCountry,
		order.FieldBillingEmail:     model.BillingEmail,
	}, nil
}

// BackfillField sets a required address field and mirrors the value into the
// order's metadata under the field name
func (r *GormMetadataRepair) BackfillField(ctx context.Context, orderID uuid.UUID, field order.RequiredField, value string) error {
	column, ok := requiredFieldColumns[field]
	if !ok {
		return shared.NewDomainError("UNKNOWN_FIELD", "Unknown required field")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.OrderModel{}).
			Where("id = ?", orderID).
			Updates(map[string]any{
				column:       value,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		now := time.Now()
		meta := models.OrderMetadataModel{
			ID:        uuid.New(),
			OrderID:   orderID,
			MetaKey:   "_" + string(field),
			MetaValue: value,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "meta_key"}},
			DoUpdates: clause.Assignments(map[string]any{"meta_value": value, "updated_at": now}),
		}).Create(&meta).Error
	})
}

// Ensure GormMetadataRepair implements order.MetadataRepair
var _ order.MetadataRepair = (*GormMetadataRepair)(nil)
