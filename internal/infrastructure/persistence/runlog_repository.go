package persistence

import (
	"context"
	"errors"

	"github.com/feedbridge/backend/internal/domain/order"
	"github.com/feedbridge/backend/internal/domain/shared"
	"github.com/feedbridge/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRunLogRepository implements order.RunLogRepository using GORM
type GormRunLogRepository struct {
	db *gorm.DB
}

// NewGormRunLogRepository creates a new GormRunLogRepository
func NewGormRunLogRepository(db *gorm.DB) *GormRunLogRepository {
	return &GormRunLogRepository{db: db}
}

// ReplaceLatest discards any previous run log and persists this one. Delete
// and insert happen in one transaction so a crash never leaves zero logs
// after a run completed.
func (r *GormRunLogRepository) ReplaceLatest(ctx context.Context, log *order.ImportRunLog) error {
	model := models.ImportRunLogModelFromDomain(log)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.ImportRunLogModel{}).Error; err != nil {
			return err
		}
		return tx.Create(model).Error
	})
}

// Latest returns the most recent run log
func (r *GormRunLogRepository) Latest(ctx context.Context) (*order.ImportRunLog, error) {
	var model models.ImportRunLogModel
	if err := r.db.WithContext(ctx).
		Order("started_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure GormRunLogRepository implements order.RunLogRepository
var _ order.RunLogRepository = (*GormRunLogRepository)(nil)
