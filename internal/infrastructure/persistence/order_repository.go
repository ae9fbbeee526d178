package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/feedbridge/backend/internal/domain/order"
	"github.com/feedbridge/backend/internal/domain/shared"
	"github.com/feedbridge/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID, including items, metadata and notes
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Metadata").
		Preload("Notes").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindIDByMetadata finds the order carrying the given metadata key/value pair
func (r *GormOrderRepository) FindIDByMetadata(ctx context.Context, key, value string) (uuid.UUID, error) {
	var meta models.OrderMetadataModel
	if err := r.db.WithContext(ctx).
		Where("meta_key = ? AND meta_value = ?", key, value).
		First(&meta).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, shared.ErrNotFound
		}
		return uuid.Nil, err
	}
	return meta.OrderID, nil
}

// Save persists the order aggregate with its items, metadata and notes in one
// transaction. A concurrent insert of the same external order ID trips the
// metadata unique index; that surfaces as shared.ErrAlreadyExists so the
// import engine can treat the order as already imported.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	model := models.OrderModelFromDomain(o)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items", "Metadata", "Notes").Save(model).Error; err != nil {
			return err
		}
		if len(model.Items) > 0 {
			if err := tx.Save(&model.Items).Error; err != nil {
				return err
			}
		}
		for i := range model.Metadata {
			if err := tx.Save(&model.Metadata[i]).Error; err != nil {
				return err
			}
		}
		if len(model.Notes) > 0 {
			if err := tx.Save(&model.Notes).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// ReplaceItems removes the order's line items and persists the given set
func (r *GormOrderRepository) ReplaceItems(ctx context.Context, orderID uuid.UUID, items []order.Item) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItemModel{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		itemModels := make([]models.OrderItemModel, len(items))
		for i, item := range items {
			item.OrderID = orderID
			itemModels[i] = models.OrderItemModelFromDomain(item)
		}
		return tx.Create(&itemModels).Error
	})
}

// AppendNote appends an audit note to a persisted order
func (r *GormOrderRepository) AppendNote(ctx context.Context, orderID uuid.UUID, text string) error {
	note := models.OrderNoteModel{
		ID:        uuid.New(),
		OrderID:   orderID,
		Note:      text,
		CreatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).Create(&note).Error
}

// isUniqueViolation reports whether the error is a unique constraint
// violation, either translated by GORM or raw from pgx (SQLSTATE 23505)
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Ensure GormOrderRepository implements order.Repository
var _ order.Repository = (*GormOrderRepository)(nil)
