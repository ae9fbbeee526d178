package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/feedbridge/backend/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// minLineTotal is the floor every persisted line total is clamped to.
var minLineTotal = decimal.NewFromFloat(0.01)

// Finalizer is the post-write invariant pass that makes a persisted order
// fulfillment-ready. It runs once after each create or repair, working
// through the narrow repair interface rather than the aggregate, and is
// idempotent: a second pass converges to the same values.
type Finalizer struct {
	repair order.MetadataRepair
	cfg    Config
	logger *zap.Logger
}

// NewFinalizer creates a Finalizer
func NewFinalizer(repair order.MetadataRepair, cfg Config, logger *zap.Logger) *Finalizer {
	return &Finalizer{
		repair: repair,
		cfg:    cfg,
		logger: logger,
	}
}

// Finalize enforces the fulfillment invariants on one persisted order:
// status forced to processing, a paid-date marker ensured, every line item
// clamped to a valid product reference, quantity and line total, the order
// total replaced with the exact sum of clamped line totals, and blank
// required address fields backfilled with the sentinel.
func (f *Finalizer) Finalize(ctx context.Context, orderID uuid.UUID) error {
	if err := f.repair.ForceStatus(ctx, orderID, order.StatusProcessing); err != nil {
		return fmt.Errorf("failed to force status: %w", err)
	}

	paidDate := time.Now().UTC().Format("2006-01-02 15:04:05")
	if err := f.repair.EnsureMetadata(ctx, orderID, f.cfg.PaidDateMetaKey, paidDate); err != nil {
		return fmt.Errorf("failed to ensure paid date: %w", err)
	}

	items, err := f.repair.ListItems(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}

	sum := decimal.Zero
	for _, item := range items {
		productID := item.ProductID
		if productID == uuid.Nil {
			productID = f.cfg.PlaceholderProductID
		}
		quantity := item.Quantity
		if quantity < 1 {
			quantity = 1
		}
		lineTotal := item.LineTotal
		if lineTotal.LessThan(minLineTotal) {
			lineTotal = minLineTotal
		}
		sum = sum.Add(lineTotal)

		if err := f.repair.RepairItem(ctx, item.ID, productID, quantity, lineTotal); err != nil {
			return fmt.Errorf("failed to repair item %s: %w", item.ID, err)
		}
	}

	if err := f.repair.SetTotal(ctx, orderID, sum.Round(2)); err != nil {
		return fmt.Errorf("failed to set total: %w", err)
	}

	fields, err := f.repair.ReadRequiredFields(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to read required fields: %w", err)
	}
	for _, field := range order.RequiredFields {
		if strings.TrimSpace(fields[field]) != "" {
			continue
		}
		if err := f.repair.BackfillField(ctx, orderID, field, f.cfg.MissingFieldSentinel); err != nil {
			return fmt.Errorf("failed to backfill %s: %w", field, err)
		}
		f.logger.Debug("backfilled required field",
			zap.String("order_id", orderID.String()),
			zap.String("field", string(field)))
	}

	return nil
}
