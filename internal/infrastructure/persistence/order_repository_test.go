package persistence

import (
	"context"
	"testing"

	"github.com/feedbridge/backend/internal/domain/order"
	"github.com/feedbridge/backend/internal/domain/shared"
	"github.com/feedbridge/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOrderTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.OrderModel{},
		&models.OrderItemModel{},
		&models.OrderMetadataModel{},
		&models.OrderNoteModel{},
	)
	require.NoError(t, err)

	return db
}

func newTestOrder(t *testing.T) *order.Order {
	o, err := order.New(order.StatusProcessing, "USD")
	require.NoError(t, err)
	o.SetCreatedVia("feed-import")
	o.SetAddresses(order.Address{
		FirstName:    "Jane",
		LastName:     "Doe",
		AddressLine1: "123 Main St",
		City:         "Austin",
		State:        "TX",
		PostalCode:   "78701",
		Country:      "US",
		Email:        "jane@example.com",
		Phone:        "5125551234",
	})
	o.AddItem(order.NewItem(o.ID, uuid.New(), "Blue T-Shirt M", "BLUE-TEE-M", "Size: M", 2, decimal.NewFromFloat(12.50)))
	o.SetMetadata("_tiktok_order_id", "576461234567890123")
	o.AddNote("Imported from feed")
	return o
}

func TestGormOrderRepository_SaveAndFindByID(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	t.Run("round-trips a full aggregate", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, repo.Save(ctx, o))

		found, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)

		assert.Equal(t, o.ID, found.ID)
		assert.Equal(t, order.StatusProcessing, found.Status)
		assert.Equal(t, "USD", found.Currency)
		assert.Equal(t, "feed-import", found.CreatedVia)
		assert.Equal(t, "123 Main St", found.Billing.AddressLine1)
		assert.Equal(t, found.Billing, found.Shipping)
		require.Len(t, found.Items, 1)
		assert.Equal(t, "BLUE-TEE-M", found.Items[0].SKU)
		assert.Equal(t, 2, found.Items[0].Quantity)
		assert.True(t, found.Items[0].LineTotal.Equal(decimal.NewFromFloat(25.00)))
		assert.True(t, found.Total.Equal(decimal.NewFromFloat(25.00)))

		externalID, ok := found.GetMetadata("_tiktok_order_id")
		assert.True(t, ok)
		assert.Equal(t, "576461234567890123", externalID)

		require.Len(t, found.Notes, 1)
		assert.Equal(t, "Imported from feed", found.Notes[0].Text)
	})

	t.Run("returns ErrNotFound for unknown ID", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormOrderRepository_Save_DuplicateExternalID(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	first := newTestOrder(t)
	require.NoError(t, repo.Save(ctx, first))

	second := newTestOrder(t)
	err := repo.Save(ctx, second)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	// The losing save rolls back entirely.
	_, err = repo.FindByID(ctx, second.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	id, err := repo.FindIDByMetadata(ctx, "_tiktok_order_id", "576461234567890123")
	require.NoError(t, err)
	assert.Equal(t, first.ID, id)
}

func TestGormOrderRepository_FindIDByMetadata(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	o := newTestOrder(t)
	require.NoError(t, repo.Save(ctx, o))

	t.Run("finds order by external ID pair", func(t *testing.T) {
		id, err := repo.FindIDByMetadata(ctx, "_tiktok_order_id", "576461234567890123")
		require.NoError(t, err)
		assert.Equal(t, o.ID, id)
	})

	t.Run("returns ErrNotFound for unseen value", func(t *testing.T) {
		id, err := repo.FindIDByMetadata(ctx, "_tiktok_order_id", "000000000000000000")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, uuid.Nil, id)
	})

	t.Run("key and value must both match", func(t *testing.T) {
		_, err := repo.FindIDByMetadata(ctx, "_other_key", "576461234567890123")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormOrderRepository_ReplaceItems(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	o := newTestOrder(t)
	require.NoError(t, repo.Save(ctx, o))

	replacement := []order.Item{
		order.NewItem(o.ID, uuid.New(), "Red Hoodie L", "RED-HOOD-L", "", 1, decimal.NewFromFloat(39.99)),
		order.NewItem(o.ID, uuid.New(), "Socks", "SOCKS-3PK", "", 3, decimal.NewFromFloat(4.99)),
	}
	require.NoError(t, repo.ReplaceItems(ctx, o.ID, replacement))

	found, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 2)

	skus := []string{found.Items[0].SKU, found.Items[1].SKU}
	assert.ElementsMatch(t, []string{"RED-HOOD-L", "SOCKS-3PK"}, skus)
}

func TestGormOrderRepository_AppendNote(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	o := newTestOrder(t)
	require.NoError(t, repo.Save(ctx, o))

	require.NoError(t, repo.AppendNote(ctx, o.ID, "Repaired 2 line items"))

	found, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, found.Notes, 2)
}
