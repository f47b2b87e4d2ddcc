package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/erp/core/internal/domain/inventory"
	"github.com/erp/core/internal/domain/shared"
	"github.com/erp/core/internal/infrastructure/telemetry"
)

// ReceivingService books received goods against purchase orders. One receive
// call is one transaction: the purchase order lines, the receipt record, the
// ledger entries, and the balance rows all move together or not at all.
type ReceivingService struct {
	txScope     TransactionScope
	receiptRepo inventory.ReceiptRepository
	balanceRepo inventory.BalanceRepository
	ledgerRepo  inventory.LedgerRepository
	products    inventory.ProductReader
	idemStore   shared.IdempotencyStore
	idemConfig  shared.IdempotencyConfig
	publisher   shared.EventPublisher
	metrics     *telemetry.BusinessMetrics
	logger      *zap.Logger
}

// NewReceivingService creates a receiving service
func NewReceivingService(
	txScope TransactionScope,
	receiptRepo inventory.ReceiptRepository,
	balanceRepo inventory.BalanceRepository,
	ledgerRepo inventory.LedgerRepository,
	products inventory.ProductReader,
	idemStore shared.IdempotencyStore,
	idemConfig shared.IdempotencyConfig,
	publisher shared.EventPublisher,
	metrics *telemetry.BusinessMetrics,
	logger *zap.Logger,
) *ReceivingService {
	return &ReceivingService{
		txScope:     txScope,
		receiptRepo: receiptRepo,
		balanceRepo: balanceRepo,
		ledgerRepo:  ledgerRepo,
		products:    products,
		idemStore:   idemStore,
		idemConfig:  idemConfig,
		publisher:   publisher,
		metrics:     metrics,
		logger:      logger,
	}
}

// Receive books the command's lines against the purchase order. When the
// command carries an idempotency key that matches an earlier receipt, the
// earlier receipt is returned and no stock moves.
func (s *ReceivingService) Receive(ctx context.Context, cmd ReceiveCommand) (*ReceiveResult, error) {
	productTotals, err := s.validateLines(cmd.Lines)
	if err != nil {
		return nil, err
	}

	if cmd.IdempotencyKey != "" {
		if existing, err := s.findReplay(ctx, cmd.TenantID, cmd.IdempotencyKey); err != nil {
			return nil, err
		} else if existing != nil {
			s.logger.Info("receive replayed by idempotency key",
				zap.String("receipt_no", existing.ReceiptNo),
				zap.String("idempotency_key", cmd.IdempotencyKey))
			return replayResult(existing), nil
		}
	}

	for productID := range productTotals {
		active, err := s.products.Active(ctx, cmd.TenantID, productID)
		if err != nil {
			return nil, err
		}
		if !active {
			return nil, shared.NewDomainError(shared.KindNotFound, "PRODUCT_NOT_FOUND",
				"product "+productID.String()+" does not exist or is not active")
		}
	}

	var receipt *inventory.GoodsReceipt
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.PurchaseOrders.FindByIDForUpdate(ctx, cmd.TenantID, cmd.PurchaseOrderID)
		if err != nil {
			return err
		}

		resolved, err := resolveLines(order.WarehouseID, cmd.Lines)
		if err != nil {
			return err
		}

		if err := order.ApplyReceipt(productTotals); err != nil {
			return err
		}
		if err := repos.PurchaseOrders.Save(ctx, order); err != nil {
			return err
		}

		receipt, err = inventory.NewGoodsReceipt(cmd.TenantID, newReceiptNo(), order.ID, order.WarehouseID, cmd.ActorID, resolved)
		if err != nil {
			return err
		}
		receipt.WithIdempotencyKey(cmd.IdempotencyKey)
		receipt.Remark = cmd.Remark
		if err := repos.Receipts.Save(ctx, receipt); err != nil {
			// A unique violation on the key means a concurrent retry won
			// the race; surface it as retryable so the caller re-reads.
			return err
		}

		for _, line := range resolved {
			balance, err := repos.Balances.FindByKeyForUpdate(ctx, cmd.TenantID, line.Key)
			if err != nil {
				return err
			}
			if err := balance.Apply(line.Quantity); err != nil {
				return err
			}

			entry, err := inventory.NewLedgerEntry(cmd.TenantID, line.Key,
				inventory.MovementTypeReceipt, line.Quantity, balance.OnHand, cmd.ActorID)
			if err != nil {
				return err
			}
			entry.WithReference("goods_receipt", receipt.ID)

			if err := repos.Ledger.Append(ctx, entry); err != nil {
				return err
			}
			if err := repos.Balances.SaveWithVersion(ctx, balance, balance.Version); err != nil {
				return err
			}
			receipt.AddDomainEvent(inventory.NewStockMovedEvent(cmd.TenantID, entry))
		}

		receipt.AddDomainEvent(inventory.NewGoodsReceivedEvent(receipt))
		return nil
	})
	if err != nil {
		s.logger.Warn("receive rejected",
			zap.String("purchase_order_id", cmd.PurchaseOrderID.String()),
			zap.String("kind", string(shared.KindOf(err))),
			zap.Error(err))
		if s.metrics != nil {
			s.metrics.RecordReceive(ctx, 0, false)
		}
		return nil, err
	}

	s.markProcessed(ctx, cmd.TenantID, cmd.IdempotencyKey)

	events := receipt.GetDomainEvents()
	receipt.ClearDomainEvents()
	if s.publisher != nil && len(events) > 0 {
		if pubErr := s.publisher.Publish(ctx, events...); pubErr != nil {
			s.logger.Error("failed to publish receiving events", zap.Error(pubErr))
		}
	}
	if s.metrics != nil {
		total := decimal.Zero
		for _, qty := range productTotals {
			total = total.Add(qty)
		}
		s.metrics.RecordReceive(ctx, total.InexactFloat64(), true)
	}
	s.logger.Info("goods received",
		zap.String("receipt_no", receipt.ReceiptNo),
		zap.String("purchase_order_id", cmd.PurchaseOrderID.String()),
		zap.Int("lines", len(receipt.Items)))

	return &ReceiveResult{
		ReceiptID:  receipt.ID,
		ReceiptNo:  receipt.ReceiptNo,
		LineCount:  len(receipt.Items),
		ReceivedAt: receipt.ReceivedAt,
	}, nil
}

// RecomputeBalance rebuilds one balance row from its ledger history. Reserved
// is untouched; only OnHand is a projection of the ledger. Returns the
// corrected position and whether drift was found.
func (s *ReceivingService) RecomputeBalance(ctx context.Context, tenantID uuid.UUID, key inventory.StockKey) (*BalanceDTO, bool, error) {
	var dto BalanceDTO
	var drifted bool

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		balance, err := repos.Balances.FindByKeyForUpdate(ctx, tenantID, key)
		if err != nil {
			return err
		}
		sum, err := repos.Ledger.SumDeltas(ctx, tenantID, key)
		if err != nil {
			return err
		}
		if !balance.OnHand.Equal(sum) {
			drifted = true
			s.logger.Error("balance drift detected",
				zap.String("product_id", key.ProductID.String()),
				zap.String("warehouse_id", key.WarehouseID.String()),
				zap.String("projected", balance.OnHand.String()),
				zap.String("ledger_sum", sum.String()))
			balance.OnHand = sum
			if err := repos.Balances.Save(ctx, balance); err != nil {
				return err
			}
		}
		dto = toBalanceDTO(balance)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &dto, drifted, nil
}

// History returns the movement ledger for one stock key, newest first
func (s *ReceivingService) History(ctx context.Context, tenantID uuid.UUID, key inventory.StockKey, filter shared.Filter) (*shared.Paginated[LedgerEntryDTO], error) {
	page, err := s.ledgerRepo.FindByKey(ctx, tenantID, key, filter)
	if err != nil {
		return nil, err
	}
	items := make([]LedgerEntryDTO, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, toLedgerEntryDTO(&page.Items[i]))
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result, nil
}

// Balance returns the current stock position for one stock key
func (s *ReceivingService) Balance(ctx context.Context, tenantID uuid.UUID, key inventory.StockKey) (*BalanceDTO, error) {
	balance, err := s.balanceRepo.FindByKey(ctx, tenantID, key)
	if err != nil {
		return nil, err
	}
	dto := toBalanceDTO(balance)
	return &dto, nil
}

// validateLines checks every line and folds quantities per product for the
// purchase order update. The same product may appear on several lines when
// they target different stock keys.
func (s *ReceivingService) validateLines(lines []ReceiveLine) (map[uuid.UUID]decimal.Decimal, error) {
	if len(lines) == 0 {
		return nil, shared.NewValidationError("EMPTY_RECEIPT", "receive request contains no lines")
	}
	totals := make(map[uuid.UUID]decimal.Decimal, len(lines))
	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return nil, shared.NewValidationError("INVALID_PRODUCT", "line product id cannot be empty")
		}
		if line.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewValidationError("INVALID_QUANTITY", "line quantity must be positive")
		}
		totals[line.ProductID] = totals[line.ProductID].Add(line.Quantity)
	}
	return totals, nil
}

// resolveLines fills in the order's warehouse where a line names none and
// rejects two lines landing on the same stock key; the balance row for each
// key is locked and saved exactly once per call.
func resolveLines(orderWarehouseID uuid.UUID, lines []ReceiveLine) ([]inventory.ReceiptLine, error) {
	seen := make(map[inventory.StockKey]struct{}, len(lines))
	out := make([]inventory.ReceiptLine, 0, len(lines))
	for _, line := range lines {
		warehouseID := orderWarehouseID
		if line.WarehouseID != nil && *line.WarehouseID != uuid.Nil {
			warehouseID = *line.WarehouseID
		}
		key := inventory.StockKey{
			ProductID:   line.ProductID,
			WarehouseID: warehouseID,
			SubLocation: line.SubLocation,
		}
		if _, dup := seen[key]; dup {
			return nil, shared.NewValidationError("DUPLICATE_LINE",
				"product "+line.ProductID.String()+" appears twice for the same location")
		}
		seen[key] = struct{}{}
		out = append(out, inventory.ReceiptLine{Key: key, Quantity: line.Quantity})
	}
	return out, nil
}

// findReplay checks the idempotency fast path first, then the database, which
// stays the authority via its unique constraint on the key.
func (s *ReceivingService) findReplay(ctx context.Context, tenantID uuid.UUID, key string) (*inventory.GoodsReceipt, error) {
	if s.idemStore != nil && s.idemConfig.Enabled {
		processed, err := s.idemStore.IsProcessed(ctx, idemCacheKey(tenantID, key))
		if err != nil {
			s.logger.Warn("idempotency store check failed, falling back to database", zap.Error(err))
		} else if !processed {
			return nil, nil
		}
	}
	existing, err := s.receiptRepo.FindByIdempotencyKey(ctx, tenantID, key)
	if err != nil {
		if shared.KindOf(err) == shared.KindNotFound {
			return nil, nil
		}
		return nil, err
	}
	return existing, nil
}

func (s *ReceivingService) markProcessed(ctx context.Context, tenantID uuid.UUID, key string) {
	if key == "" || s.idemStore == nil || !s.idemConfig.Enabled {
		return
	}
	if _, err := s.idemStore.MarkProcessed(ctx, idemCacheKey(tenantID, key), s.idemConfig.TTL); err != nil {
		s.logger.Warn("failed to mark idempotency key", zap.Error(err))
	}
}

func replayResult(receipt *inventory.GoodsReceipt) *ReceiveResult {
	return &ReceiveResult{
		ReceiptID:  receipt.ID,
		ReceiptNo:  receipt.ReceiptNo,
		LineCount:  len(receipt.Items),
		ReceivedAt: receipt.ReceivedAt,
		Replayed:   true,
	}
}

func idemCacheKey(tenantID uuid.UUID, key string) string {
	return tenantID.String() + ":" + key
}

func newReceiptNo() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("GR-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}
