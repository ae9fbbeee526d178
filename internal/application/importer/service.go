package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/feedbridge/backend/internal/domain/catalog"
	"github.com/feedbridge/backend/internal/domain/order"
	"github.com/feedbridge/backend/internal/domain/shared"
	"github.com/feedbridge/backend/internal/infrastructure/csvfeed"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options are the per-run flags of the operator trigger
type Options struct {
	FileName   string
	DryRun     bool
	RepairMode bool
}

// Service is the reconciliation engine. One run parses a feed file, folds it
// into logical orders, and per order decides CREATE, SKIP or REPAIR against
// the store. Runs are synchronous and assumed serialized by the caller; the
// metadata unique index is the backstop against double-creates.
type Service struct {
	orders    order.Repository
	products  catalog.Finder
	runLogs   order.RunLogRepository
	finalizer *Finalizer
	cfg       Config
	logger    *zap.Logger
}

// NewService creates a reconciliation engine
func NewService(
	orders order.Repository,
	products catalog.Finder,
	runLogs order.RunLogRepository,
	finalizer *Finalizer,
	cfg Config,
	logger *zap.Logger,
) *Service {
	return &Service{
		orders:    orders,
		products:  products,
		runLogs:   runLogs,
		finalizer: finalizer,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run executes one import run. Fatal pre-flight failures (unreadable or
// empty file, missing required columns) abort before any writes and leave
// the previous run log untouched. Otherwise the run always completes and
// persists a new log, even when individual orders failed.
func (s *Service) Run(ctx context.Context, file io.Reader, opts Options) (*order.ImportRunLog, error) {
	parser, err := csvfeed.NewFeedParser(file)
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}
	cols, err := parser.ResolveColumns()
	if err != nil {
		return nil, err
	}
	rows, err := parser.ReadAllRows()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, csvfeed.ErrNoDataRows
	}

	groups := GroupRows(rows, cols, s.cfg.DefaultItemName)
	s.logger.Info("feed parsed",
		zap.String("file", opts.FileName),
		zap.Int("rows", len(rows)),
		zap.Int("orders", len(groups)),
		zap.Bool("dry_run", opts.DryRun),
		zap.Bool("repair_mode", opts.RepairMode))

	runLog := order.NewImportRunLog(opts.FileName, opts.DryRun, opts.RepairMode)
	for _, fo := range groups {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		s.processOrder(ctx, fo, opts, runLog)
	}
	runLog.Finish()

	if err := s.runLogs.ReplaceLatest(ctx, runLog); err != nil {
		return nil, fmt.Errorf("failed to persist run log: %w", err)
	}
	return runLog, nil
}

// processOrder reconciles one logical order and appends exactly one outcome
// line. Per-order failures are logged, never fatal to the run.
func (s *Service) processOrder(ctx context.Context, fo *FeedOrder, opts Options, runLog *order.ImportRunLog) {
	existingID, err := s.orders.FindIDByMetadata(ctx, s.cfg.ExternalIDMetaKey, fo.ExternalID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		runLog.Append(fmt.Sprintf("Lookup failed TikTok %s: %v", fo.ExternalID, err))
		runLog.Failed++
		return
	}
	exists := err == nil

	if opts.DryRun {
		s.reportDryRun(ctx, fo, exists, opts.RepairMode, runLog)
		return
	}

	switch {
	case exists && !opts.RepairMode:
		runLog.Append(fmt.Sprintf("Skip TikTok %s (already imported)", fo.ExternalID))
		runLog.Skipped++
	case exists && opts.RepairMode:
		s.repairOrder(ctx, fo, existingID, runLog)
	default:
		s.createOrder(ctx, fo, runLog)
	}
}

// reportDryRun reports the intended action and every SKU that fails to
// resolve against the catalog, without persisting anything. A catalog
// storage error marks the order failed instead of reporting its SKUs as
// resolved.
func (s *Service) reportDryRun(ctx context.Context, fo *FeedOrder, exists, repairMode bool, runLog *order.ImportRunLog) {
	action := "CREATE"
	if exists {
		action = "SKIP"
		if repairMode {
			action = "REPAIR"
		}
	}

	var missing []string
	for _, draft := range fo.Items {
		if _, err := s.products.FindIDBySKU(ctx, draft.SKU); err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				runLog.Append(fmt.Sprintf("Lookup failed TikTok %s SKU %s: %v", fo.ExternalID, draft.SKU, err))
				runLog.Failed++
				return
			}
			missing = append(missing, draft.SKU)
		}
	}
	runLog.Append(fmt.Sprintf("DRY RUN %s | TikTok %s | missing SKUs: %s",
		action, fo.ExternalID, strings.Join(missing, ",")))
}

// createOrder builds and persists a new order from the feed order
func (s *Service) createOrder(ctx context.Context, fo *FeedOrder, runLog *order.ImportRunLog) {
	o, err := order.New(order.StatusProcessing, s.cfg.Currency)
	if err != nil {
		runLog.Append(fmt.Sprintf("Create failed TikTok %s: %v", fo.ExternalID, err))
		runLog.Failed++
		return
	}
	o.SetCreatedVia("feed_csv_import")

	addr := BuildAddress(fo)
	o.SetAddresses(addr)
	AnnotateAddress(o, addr)

	items, err := s.buildItems(ctx, o.ID, fo.Items)
	if err != nil {
		runLog.Append(fmt.Sprintf("Create failed TikTok %s: %v", fo.ExternalID, err))
		runLog.Failed++
		return
	}
	for _, item := range items {
		o.AddItem(item)
	}

	o.SetMetadata(s.cfg.ExternalIDMetaKey, fo.ExternalID)
	o.AddNote(fmt.Sprintf("Imported via feed import (CSV %s)", fo.ExternalID))

	if err := s.orders.Save(ctx, o); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			// A concurrent run won the race; the order exists now.
			runLog.Append(fmt.Sprintf("Skip TikTok %s (already imported)", fo.ExternalID))
			runLog.Skipped++
			return
		}
		runLog.Append(fmt.Sprintf("Create failed TikTok %s: %v", fo.ExternalID, err))
		runLog.Failed++
		return
	}

	if err := s.finalizer.Finalize(ctx, o.ID); err != nil {
		s.logger.Warn("finalize failed after create",
			zap.String("external_id", fo.ExternalID),
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
	}

	runLog.Append(fmt.Sprintf("Created TikTok %s -> order %s", fo.ExternalID, o.ID))
	runLog.Created++
}

// repairOrder refreshes an existing order's line items from the feed. The
// address and any shipping or tax charges stay untouched; repair is
// items-only.
func (s *Service) repairOrder(ctx context.Context, fo *FeedOrder, orderID uuid.UUID, runLog *order.ImportRunLog) {
	if _, err := s.orders.FindByID(ctx, orderID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// Deleted out-of-band between lookup and repair.
			runLog.Append(fmt.Sprintf("Repair failed TikTok %s: order missing", fo.ExternalID))
		} else {
			runLog.Append(fmt.Sprintf("Repair failed TikTok %s: %v", fo.ExternalID, err))
		}
		runLog.Failed++
		return
	}

	items, err := s.buildItems(ctx, orderID, fo.Items)
	if err != nil {
		runLog.Append(fmt.Sprintf("Repair failed TikTok %s: %v", fo.ExternalID, err))
		runLog.Failed++
		return
	}

	if err := s.orders.ReplaceItems(ctx, orderID, items); err != nil {
		runLog.Append(fmt.Sprintf("Repair failed TikTok %s: %v", fo.ExternalID, err))
		runLog.Failed++
		return
	}

	if err := s.orders.AppendNote(ctx, orderID, "Repaired via feed import"); err != nil {
		s.logger.Warn("failed to append repair note",
			zap.String("external_id", fo.ExternalID),
			zap.Error(err))
	}

	if err := s.finalizer.Finalize(ctx, orderID); err != nil {
		s.logger.Warn("finalize failed after repair",
			zap.String("external_id", fo.ExternalID),
			zap.String("order_id", orderID.String()),
			zap.Error(err))
	}

	runLog.Append(fmt.Sprintf("Repaired TikTok %s -> order %s", fo.ExternalID, orderID))
	runLog.Repaired++
}

// buildItems resolves each draft against the catalog and builds line items.
// An unresolved SKU gets the placeholder product reference rather than
// failing the row; only storage errors propagate.
func (s *Service) buildItems(ctx context.Context, orderID uuid.UUID, drafts []LineItemDraft) ([]order.Item, error) {
	items := make([]order.Item, 0, len(drafts))
	for _, draft := range drafts {
		productID, err := s.products.FindIDBySKU(ctx, draft.SKU)
		if err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				return nil, fmt.Errorf("failed to resolve SKU %q: %w", draft.SKU, err)
			}
			productID = s.cfg.PlaceholderProductID
		}
		items = append(items, order.NewItem(
			orderID, productID,
			draft.ProductName, draft.SKU, draft.Variation,
			draft.Quantity, draft.UnitPrice,
		))
	}
	return items, nil
}
