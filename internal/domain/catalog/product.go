package catalog

import (
	"context"

	"github.com/feedbridge/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductStatus represents the lifecycle status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product is a catalog entry line items resolve against. The import engine
// only reads products; catalog maintenance happens elsewhere.
type Product struct {
	shared.BaseEntity
	SKU    string
	Name   string
	Status ProductStatus
}

// NewProduct creates a new active product
func NewProduct(sku, name string) (*Product, error) {
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	return &Product{
		BaseEntity: shared.NewBaseEntity(),
		SKU:        sku,
		Name:       name,
		Status:     ProductStatusActive,
	}, nil
}

// Finder resolves SKUs to product IDs. A SKU with no match returns
// shared.ErrNotFound; absence is a normal outcome for feed imports, never a
// failure of the row.
type Finder interface {
	// FindIDBySKU matches the SKU exactly but case-insensitively.
	FindIDBySKU(ctx context.Context, sku string) (uuid.UUID, error)
}

// Repository is the full storage contract for products
type Repository interface {
	Finder
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	Save(ctx context.Context, p *Product) error
}
