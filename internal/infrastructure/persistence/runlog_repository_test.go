package persistence

import (
	"context"
	"testing"

	"github.com/feedbridge/backend/internal/domain/order"
	"github.com/feedbridge/backend/internal/domain/shared"
	"github.com/feedbridge/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRunLogTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.ImportRunLogModel{})
	require.NoError(t, err)

	return db
}

func TestGormRunLogRepository_ReplaceLatest(t *testing.T) {
	db := setupRunLogTestDB(t)
	repo := NewGormRunLogRepository(db)
	ctx := context.Background()

	t.Run("Latest returns ErrNotFound before any run", func(t *testing.T) {
		_, err := repo.Latest(ctx)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("persists a run log with its lines", func(t *testing.T) {
		log := order.NewImportRunLog("orders.csv", false, false)
		log.Append("Created TikTok 576461234567890123 -> order abc")
		log.Append("Skip TikTok 576461234567890124 (already imported)")
		log.Created = 1
		log.Skipped = 1
		log.Finish()

		require.NoError(t, repo.ReplaceLatest(ctx, log))

		found, err := repo.Latest(ctx)
		require.NoError(t, err)
		assert.Equal(t, "orders.csv", found.FileName)
		assert.Equal(t, 1, found.Created)
		assert.Equal(t, 1, found.Skipped)
		require.Len(t, found.Lines, 2)
		assert.Contains(t, found.Lines[1], "already imported")
	})

	t.Run("each run replaces the previous log", func(t *testing.T) {
		log := order.NewImportRunLog("orders-2.csv", true, true)
		log.Append("DRY RUN CREATE | TikTok 576461234567890125")
		log.Finish()

		require.NoError(t, repo.ReplaceLatest(ctx, log))

		found, err := repo.Latest(ctx)
		require.NoError(t, err)
		assert.Equal(t, "orders-2.csv", found.FileName)
		assert.True(t, found.DryRun)
		assert.True(t, found.RepairMode)

		var count int64
		require.NoError(t, db.Model(&models.ImportRunLogModel{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}
