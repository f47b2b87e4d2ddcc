package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/erp/core/internal/domain/inventory"
	"github.com/erp/core/internal/domain/shared"
	"github.com/erp/core/internal/domain/trade"
)

type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*trade.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*trade.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Save(ctx context.Context, order *trade.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

type MockReceiptRepository struct {
	mock.Mock
}

func (m *MockReceiptRepository) Save(ctx context.Context, receipt *inventory.GoodsReceipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

func (m *MockReceiptRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.GoodsReceipt, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.GoodsReceipt), args.Error(1)
}

func (m *MockReceiptRepository) FindByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (*inventory.GoodsReceipt, error) {
	args := m.Called(ctx, tenantID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.GoodsReceipt), args.Error(1)
}

func (m *MockReceiptRepository) FindByPurchaseOrder(ctx context.Context, tenantID, purchaseOrderID uuid.UUID) ([]inventory.GoodsReceipt, error) {
	args := m.Called(ctx, tenantID, purchaseOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.GoodsReceipt), args.Error(1)
}

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Append(ctx context.Context, entry *inventory.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) FindByKey(ctx context.Context, tenantID uuid.UUID, key inventory.StockKey, filter shared.Filter) (*shared.Paginated[inventory.LedgerEntry], error) {
	args := m.Called(ctx, tenantID, key, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[inventory.LedgerEntry]), args.Error(1)
}

func (m *MockLedgerRepository) SumDeltas(ctx context.Context, tenantID uuid.UUID, key inventory.StockKey) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, key)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) FindByKey(ctx context.Context, tenantID uuid.UUID, key inventory.StockKey) (*inventory.StockBalance, error) {
	args := m.Called(ctx, tenantID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockBalance), args.Error(1)
}

func (m *MockBalanceRepository) FindByKeyForUpdate(ctx context.Context, tenantID uuid.UUID, key inventory.StockKey) (*inventory.StockBalance, error) {
	args := m.Called(ctx, tenantID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockBalance), args.Error(1)
}

func (m *MockBalanceRepository) Save(ctx context.Context, balance *inventory.StockBalance) error {
	args := m.Called(ctx, balance)
	return args.Error(0)
}

func (m *MockBalanceRepository) SaveWithVersion(ctx context.Context, balance *inventory.StockBalance, expectedVersion int) error {
	args := m.Called(ctx, balance, expectedVersion)
	return args.Error(0)
}

func (m *MockBalanceRepository) ListByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID, filter shared.Filter) (*shared.Paginated[inventory.StockBalance], error) {
	args := m.Called(ctx, tenantID, warehouseID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[inventory.StockBalance]), args.Error(1)
}

type MockProductReader struct {
	mock.Mock
}

func (m *MockProductReader) Active(ctx context.Context, tenantID, productID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, productID)
	return args.Bool(0), args.Error(1)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

type receivingFixture struct {
	service   *ReceivingService
	poRepo    *MockPurchaseOrderRepository
	receipts  *MockReceiptRepository
	ledger    *MockLedgerRepository
	balances  *MockBalanceRepository
	products  *MockProductReader
	idemStore *MockIdempotencyStore
}

func newReceivingFixture() *receivingFixture {
	poRepo := new(MockPurchaseOrderRepository)
	receipts := new(MockReceiptRepository)
	ledger := new(MockLedgerRepository)
	balances := new(MockBalanceRepository)
	products := new(MockProductReader)
	idemStore := new(MockIdempotencyStore)

	scope := &NoOpTransactionScope{Repos: TransactionalRepositories{
		PurchaseOrders: poRepo,
		Receipts:       receipts,
		Ledger:         ledger,
		Balances:       balances,
	}}

	service := NewReceivingService(scope, receipts, balances, ledger, products,
		idemStore, shared.DefaultIdempotencyConfig(), nil, nil, zap.NewNop())
	return &receivingFixture{
		service:   service,
		poRepo:    poRepo,
		receipts:  receipts,
		ledger:    ledger,
		balances:  balances,
		products:  products,
		idemStore: idemStore,
	}
}

func confirmedPurchaseOrder(tenantID uuid.UUID, productID uuid.UUID, qty int64) *trade.PurchaseOrder {
	return &trade.PurchaseOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderNo:             "PO-2026-0100",
		SupplierID:          uuid.New(),
		WarehouseID:         uuid.New(),
		Status:              trade.PurchaseOrderStatusConfirmed,
		Items: []trade.PurchaseOrderItem{{
			BaseEntity: shared.NewBaseEntity(),
			ProductID:  productID,
			Quantity:   decimal.NewFromInt(qty),
		}},
	}
}

func TestReceivingService_Receive(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	actorID := uuid.New()

	t.Run("books stock, ledger, and receipt together", func(t *testing.T) {
		f := newReceivingFixture()
		productID := uuid.New()
		po := confirmedPurchaseOrder(tenantID, productID, 10)
		key := inventory.StockKey{ProductID: productID, WarehouseID: po.WarehouseID}
		balance := inventory.NewStockBalance(tenantID, key)

		f.products.On("Active", ctx, tenantID, productID).Return(true, nil)
		f.poRepo.On("FindByIDForUpdate", ctx, tenantID, po.ID).Return(po, nil)
		f.poRepo.On("Save", ctx, po).Return(nil)
		f.receipts.On("Save", ctx, mock.AnythingOfType("*inventory.GoodsReceipt")).Return(nil)
		f.balances.On("FindByKeyForUpdate", ctx, tenantID, key).Return(balance, nil)
		f.ledger.On("Append", ctx, mock.MatchedBy(func(e *inventory.LedgerEntry) bool {
			return e.QuantityDelta.Equal(decimal.NewFromInt(4)) &&
				e.MovementType == inventory.MovementTypeReceipt &&
				e.BalanceAfter.Equal(decimal.NewFromInt(4))
		})).Return(nil)
		f.balances.On("SaveWithVersion", ctx, balance, 1).Return(nil)
		f.idemStore.On("MarkProcessed", ctx, mock.Anything, mock.Anything).Return(true, nil).Maybe()

		result, err := f.service.Receive(ctx, ReceiveCommand{
			TenantID:        tenantID,
			PurchaseOrderID: po.ID,
			ActorID:         actorID,
			Lines:           []ReceiveLine{{ProductID: productID, Quantity: decimal.NewFromInt(4)}},
		})
		require.NoError(t, err)
		assert.False(t, result.Replayed)
		assert.Equal(t, 1, result.LineCount)
		assert.True(t, balance.OnHand.Equal(decimal.NewFromInt(4)))
		assert.Equal(t, trade.PurchaseOrderStatusPartialReceived, po.Status)
		f.ledger.AssertExpectations(t)
		f.balances.AssertExpectations(t)
	})

	t.Run("draft purchase order is rejected", func(t *testing.T) {
		f := newReceivingFixture()
		productID := uuid.New()
		po := confirmedPurchaseOrder(tenantID, productID, 10)
		po.Status = trade.PurchaseOrderStatusDraft

		f.products.On("Active", ctx, tenantID, productID).Return(true, nil)
		f.poRepo.On("FindByIDForUpdate", ctx, tenantID, po.ID).Return(po, nil)

		_, err := f.service.Receive(ctx, ReceiveCommand{
			TenantID:        tenantID,
			PurchaseOrderID: po.ID,
			ActorID:         actorID,
			Lines:           []ReceiveLine{{ProductID: productID, Quantity: decimal.NewFromInt(1)}},
		})
		require.Error(t, err)
		assert.Equal(t, shared.KindPreconditionFailed, shared.KindOf(err))
		f.ledger.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("unknown product is not found", func(t *testing.T) {
		f := newReceivingFixture()
		productID := uuid.New()

		f.products.On("Active", ctx, tenantID, productID).Return(false, nil)

		_, err := f.service.Receive(ctx, ReceiveCommand{
			TenantID:        tenantID,
			PurchaseOrderID: uuid.New(),
			ActorID:         actorID,
			Lines:           []ReceiveLine{{ProductID: productID, Quantity: decimal.NewFromInt(1)}},
		})
		require.Error(t, err)
		assert.Equal(t, shared.KindNotFound, shared.KindOf(err))
	})

	t.Run("inactive product is not found", func(t *testing.T) {
		f := newReceivingFixture()
		productID := uuid.New()

		// discontinued products answer false the same way missing ones do
		f.products.On("Active", ctx, tenantID, productID).Return(false, nil)

		_, err := f.service.Receive(ctx, ReceiveCommand{
			TenantID:        tenantID,
			PurchaseOrderID: uuid.New(),
			ActorID:         actorID,
			Lines:           []ReceiveLine{{ProductID: productID, Quantity: decimal.NewFromInt(1)}},
		})
		require.Error(t, err)
		assert.Equal(t, shared.KindNotFound, shared.KindOf(err))
		f.poRepo.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("line validation", func(t *testing.T) {
		f := newReceivingFixture()
		productID := uuid.New()

		cases := []struct {
			name  string
			lines []ReceiveLine
		}{
			{"empty lines", nil},
			{"zero quantity", []ReceiveLine{{ProductID: productID, Quantity: decimal.Zero}}},
			{"negative quantity", []ReceiveLine{{ProductID: productID, Quantity: decimal.NewFromInt(-1)}}},
			{"nil product", []ReceiveLine{{Quantity: decimal.NewFromInt(1)}}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := f.service.Receive(ctx, ReceiveCommand{
					TenantID: tenantID, PurchaseOrderID: uuid.New(), ActorID: actorID, Lines: tc.lines,
				})
				require.Error(t, err)
				assert.Equal(t, shared.KindValidationFailed, shared.KindOf(err))
			})
		}
	})

	t.Run("two lines on the same stock key are rejected", func(t *testing.T) {
		f := newReceivingFixture()
		productID := uuid.New()
		po := confirmedPurchaseOrder(tenantID, productID, 10)

		f.products.On("Active", ctx, tenantID, productID).Return(true, nil)
		f.poRepo.On("FindByIDForUpdate", ctx, tenantID, po.ID).Return(po, nil)

		_, err := f.service.Receive(ctx, ReceiveCommand{
			TenantID:        tenantID,
			PurchaseOrderID: po.ID,
			ActorID:         actorID,
			Lines: []ReceiveLine{
				{ProductID: productID, Quantity: decimal.NewFromInt(1)},
				{ProductID: productID, Quantity: decimal.NewFromInt(2)},
			},
		})
		require.Error(t, err)
		assert.Equal(t, shared.KindValidationFailed, shared.KindOf(err))
		f.ledger.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("one product split across sub locations books two positions", func(t *testing.T) {
		f := newReceivingFixture()
		productID := uuid.New()
		po := confirmedPurchaseOrder(tenantID, productID, 10)
		keyA := inventory.StockKey{ProductID: productID, WarehouseID: po.WarehouseID, SubLocation: "A-01"}
		keyB := inventory.StockKey{ProductID: productID, WarehouseID: po.WarehouseID, SubLocation: "A-02"}
		balanceA := inventory.NewStockBalance(tenantID, keyA)
		balanceB := inventory.NewStockBalance(tenantID, keyB)

		f.products.On("Active", ctx, tenantID, productID).Return(true, nil)
		f.poRepo.On("FindByIDForUpdate", ctx, tenantID, po.ID).Return(po, nil)
		f.poRepo.On("Save", ctx, po).Return(nil)
		f.receipts.On("Save", ctx, mock.AnythingOfType("*inventory.GoodsReceipt")).Return(nil)
		f.balances.On("FindByKeyForUpdate", ctx, tenantID, keyA).Return(balanceA, nil)
		f.balances.On("FindByKeyForUpdate", ctx, tenantID, keyB).Return(balanceB, nil)
		f.ledger.On("Append", ctx, mock.AnythingOfType("*inventory.LedgerEntry")).Return(nil)
		f.balances.On("SaveWithVersion", ctx, balanceA, 1).Return(nil)
		f.balances.On("SaveWithVersion", ctx, balanceB, 1).Return(nil)

		result, err := f.service.Receive(ctx, ReceiveCommand{
			TenantID:        tenantID,
			PurchaseOrderID: po.ID,
			ActorID:         actorID,
			Lines: []ReceiveLine{
				{ProductID: productID, Quantity: decimal.NewFromInt(4), SubLocation: "A-01"},
				{ProductID: productID, Quantity: decimal.NewFromInt(6), SubLocation: "A-02"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, result.LineCount)
		assert.True(t, balanceA.OnHand.Equal(decimal.NewFromInt(4)))
		assert.True(t, balanceB.OnHand.Equal(decimal.NewFromInt(6)))
		assert.Equal(t, trade.PurchaseOrderStatusCompleted, po.Status)
		f.balances.AssertExpectations(t)
	})

	t.Run("line warehouse overrides the order default", func(t *testing.T) {
		f := newReceivingFixture()
		productID := uuid.New()
		po := confirmedPurchaseOrder(tenantID, productID, 10)
		otherWh := uuid.New()
		key := inventory.StockKey{ProductID: productID, WarehouseID: otherWh}
		balance := inventory.NewStockBalance(tenantID, key)

		f.products.On("Active", ctx, tenantID, productID).Return(true, nil)
		f.poRepo.On("FindByIDForUpdate", ctx, tenantID, po.ID).Return(po, nil)
		f.poRepo.On("Save", ctx, po).Return(nil)
		f.receipts.On("Save", ctx, mock.AnythingOfType("*inventory.GoodsReceipt")).Return(nil)
		f.balances.On("FindByKeyForUpdate", ctx, tenantID, key).Return(balance, nil)
		f.ledger.On("Append", ctx, mock.AnythingOfType("*inventory.LedgerEntry")).Return(nil)
		f.balances.On("SaveWithVersion", ctx, balance, 1).Return(nil)

		_, err := f.service.Receive(ctx, ReceiveCommand{
			TenantID:        tenantID,
			PurchaseOrderID: po.ID,
			ActorID:         actorID,
			Lines:           []ReceiveLine{{ProductID: productID, Quantity: decimal.NewFromInt(3), WarehouseID: &otherWh}},
		})
		require.NoError(t, err)
		assert.True(t, balance.OnHand.Equal(decimal.NewFromInt(3)))
		f.balances.AssertExpectations(t)
	})

	t.Run("repeat receive accumulates on hand and ledger", func(t *testing.T) {
		f := newReceivingFixture()
		productID := uuid.New()
		po := confirmedPurchaseOrder(tenantID, productID, 20)
		key := inventory.StockKey{ProductID: productID, WarehouseID: po.WarehouseID}
		balance := inventory.NewStockBalance(tenantID, key)

		var appended []*inventory.LedgerEntry
		f.products.On("Active", ctx, tenantID, productID).Return(true, nil)
		f.poRepo.On("FindByIDForUpdate", ctx, tenantID, po.ID).Return(po, nil)
		f.poRepo.On("Save", ctx, po).Return(nil)
		f.receipts.On("Save", ctx, mock.AnythingOfType("*inventory.GoodsReceipt")).Return(nil)
		f.balances.On("FindByKeyForUpdate", ctx, tenantID, key).Return(balance, nil)
		f.ledger.On("Append", ctx, mock.AnythingOfType("*inventory.LedgerEntry")).
			Run(func(args mock.Arguments) {
				appended = append(appended, args.Get(1).(*inventory.LedgerEntry))
			}).Return(nil)
		f.balances.On("SaveWithVersion", ctx, balance, mock.AnythingOfType("int")).Return(nil)

		receive := func(qty int64) {
			_, err := f.service.Receive(ctx, ReceiveCommand{
				TenantID:        tenantID,
				PurchaseOrderID: po.ID,
				ActorID:         actorID,
				Lines:           []ReceiveLine{{ProductID: productID, Quantity: decimal.NewFromInt(qty)}},
			})
			require.NoError(t, err)
		}
		receive(10)
		receive(5)

		assert.True(t, balance.OnHand.Equal(decimal.NewFromInt(15)))
		require.Len(t, appended, 2)
		assert.True(t, appended[0].QuantityDelta.Equal(decimal.NewFromInt(10)))
		assert.True(t, appended[0].BalanceAfter.Equal(decimal.NewFromInt(10)))
		assert.True(t, appended[1].QuantityDelta.Equal(decimal.NewFromInt(5)))
		assert.True(t, appended[1].BalanceAfter.Equal(decimal.NewFromInt(15)))
		sum := appended[0].QuantityDelta.Add(appended[1].QuantityDelta)
		assert.True(t, sum.Equal(balance.OnHand))
	})

	t.Run("idempotency key replays earlier receipt", func(t *testing.T) {
		f := newReceivingFixture()
		productID := uuid.New()
		priorWh := uuid.New()
		prior, err := inventory.NewGoodsReceipt(tenantID, "GR-20260831-AAAA0001", uuid.New(), priorWh, actorID,
			[]inventory.ReceiptLine{{
				Key:      inventory.StockKey{ProductID: productID, WarehouseID: priorWh},
				Quantity: decimal.NewFromInt(4),
			}})
		require.NoError(t, err)
		prior.WithIdempotencyKey("req-42")

		f.idemStore.On("IsProcessed", ctx, tenantID.String()+":req-42").Return(true, nil)
		f.receipts.On("FindByIdempotencyKey", ctx, tenantID, "req-42").Return(prior, nil)

		result, err := f.service.Receive(ctx, ReceiveCommand{
			TenantID:        tenantID,
			PurchaseOrderID: prior.PurchaseOrderID,
			ActorID:         actorID,
			Lines:           []ReceiveLine{{ProductID: productID, Quantity: decimal.NewFromInt(4)}},
			IdempotencyKey:  "req-42",
		})
		require.NoError(t, err)
		assert.True(t, result.Replayed)
		assert.Equal(t, prior.ID, result.ReceiptID)
		f.poRepo.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything, mock.Anything)
		f.ledger.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("idempotency store outage falls back to database", func(t *testing.T) {
		f := newReceivingFixture()
		productID := uuid.New()
		po := confirmedPurchaseOrder(tenantID, productID, 10)
		key := inventory.StockKey{ProductID: productID, WarehouseID: po.WarehouseID}
		balance := inventory.NewStockBalance(tenantID, key)

		f.idemStore.On("IsProcessed", ctx, mock.Anything).Return(false, assert.AnError)
		f.receipts.On("FindByIdempotencyKey", ctx, tenantID, "req-77").Return(nil, shared.ErrNotFound)
		f.products.On("Active", ctx, tenantID, productID).Return(true, nil)
		f.poRepo.On("FindByIDForUpdate", ctx, tenantID, po.ID).Return(po, nil)
		f.poRepo.On("Save", ctx, po).Return(nil)
		f.receipts.On("Save", ctx, mock.AnythingOfType("*inventory.GoodsReceipt")).Return(nil)
		f.balances.On("FindByKeyForUpdate", ctx, tenantID, key).Return(balance, nil)
		f.ledger.On("Append", ctx, mock.AnythingOfType("*inventory.LedgerEntry")).Return(nil)
		f.balances.On("SaveWithVersion", ctx, balance, 1).Return(nil)
		f.idemStore.On("MarkProcessed", ctx, tenantID.String()+":req-77", mock.Anything).Return(true, nil)

		result, err := f.service.Receive(ctx, ReceiveCommand{
			TenantID:        tenantID,
			PurchaseOrderID: po.ID,
			ActorID:         actorID,
			Lines:           []ReceiveLine{{ProductID: productID, Quantity: decimal.NewFromInt(2)}},
			IdempotencyKey:  "req-77",
		})
		require.NoError(t, err)
		assert.False(t, result.Replayed)
	})

	t.Run("balance version conflict aborts the receive", func(t *testing.T) {
		f := newReceivingFixture()
		productID := uuid.New()
		po := confirmedPurchaseOrder(tenantID, productID, 10)
		key := inventory.StockKey{ProductID: productID, WarehouseID: po.WarehouseID}
		balance := inventory.NewStockBalance(tenantID, key)

		f.products.On("Active", ctx, tenantID, productID).Return(true, nil)
		f.poRepo.On("FindByIDForUpdate", ctx, tenantID, po.ID).Return(po, nil)
		f.poRepo.On("Save", ctx, po).Return(nil)
		f.receipts.On("Save", ctx, mock.AnythingOfType("*inventory.GoodsReceipt")).Return(nil)
		f.balances.On("FindByKeyForUpdate", ctx, tenantID, key).Return(balance, nil)
		f.ledger.On("Append", ctx, mock.AnythingOfType("*inventory.LedgerEntry")).Return(nil)
		f.balances.On("SaveWithVersion", ctx, balance, 1).Return(shared.ErrConcurrencyConflict)

		_, err := f.service.Receive(ctx, ReceiveCommand{
			TenantID:        tenantID,
			PurchaseOrderID: po.ID,
			ActorID:         actorID,
			Lines:           []ReceiveLine{{ProductID: productID, Quantity: decimal.NewFromInt(2)}},
		})
		require.Error(t, err)
		assert.True(t, shared.KindOf(err).IsRetryable())
	})

	t.Run("over receipt rejected", func(t *testing.T) {
		f := newReceivingFixture()
		productID := uuid.New()
		po := confirmedPurchaseOrder(tenantID, productID, 3)

		f.products.On("Active", ctx, tenantID, productID).Return(true, nil)
		f.poRepo.On("FindByIDForUpdate", ctx, tenantID, po.ID).Return(po, nil)

		_, err := f.service.Receive(ctx, ReceiveCommand{
			TenantID:        tenantID,
			PurchaseOrderID: po.ID,
			ActorID:         actorID,
			Lines:           []ReceiveLine{{ProductID: productID, Quantity: decimal.NewFromInt(5)}},
		})
		require.Error(t, err)
		assert.Equal(t, shared.KindValidationFailed, shared.KindOf(err))
	})
}

func TestReceivingService_RecomputeBalance(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	key := inventory.StockKey{ProductID: uuid.New(), WarehouseID: uuid.New()}

	t.Run("no drift leaves balance untouched", func(t *testing.T) {
		f := newReceivingFixture()
		balance := inventory.NewStockBalance(tenantID, key)
		require.NoError(t, balance.Apply(decimal.NewFromInt(7)))

		f.balances.On("FindByKeyForUpdate", ctx, tenantID, key).Return(balance, nil)
		f.ledger.On("SumDeltas", ctx, tenantID, key).Return(decimal.NewFromInt(7), nil)

		dto, drifted, err := f.service.RecomputeBalance(ctx, tenantID, key)
		require.NoError(t, err)
		assert.False(t, drifted)
		assert.True(t, dto.OnHand.Equal(decimal.NewFromInt(7)))
		f.balances.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("drift is corrected from the ledger", func(t *testing.T) {
		f := newReceivingFixture()
		balance := inventory.NewStockBalance(tenantID, key)
		require.NoError(t, balance.Apply(decimal.NewFromInt(7)))

		f.balances.On("FindByKeyForUpdate", ctx, tenantID, key).Return(balance, nil)
		f.ledger.On("SumDeltas", ctx, tenantID, key).Return(decimal.NewFromInt(9), nil)
		f.balances.On("Save", ctx, balance).Return(nil)

		dto, drifted, err := f.service.RecomputeBalance(ctx, tenantID, key)
		require.NoError(t, err)
		assert.True(t, drifted)
		assert.True(t, dto.OnHand.Equal(decimal.NewFromInt(9)))
	})

	t.Run("reserved survives recompute", func(t *testing.T) {
		f := newReceivingFixture()
		balance := inventory.NewStockBalance(tenantID, key)
		require.NoError(t, balance.Apply(decimal.NewFromInt(10)))
		require.NoError(t, balance.Reserve(decimal.NewFromInt(3)))

		f.balances.On("FindByKeyForUpdate", ctx, tenantID, key).Return(balance, nil)
		f.ledger.On("SumDeltas", ctx, tenantID, key).Return(decimal.NewFromInt(8), nil)
		f.balances.On("Save", ctx, balance).Return(nil)

		dto, drifted, err := f.service.RecomputeBalance(ctx, tenantID, key)
		require.NoError(t, err)
		assert.True(t, drifted)
		assert.True(t, dto.Reserved.Equal(decimal.NewFromInt(3)))
		assert.True(t, dto.Available.Equal(decimal.NewFromInt(5)))
	})
}

func TestReceivingService_History(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	key := inventory.StockKey{ProductID: uuid.New(), WarehouseID: uuid.New(), SubLocation: "C-07"}

	f := newReceivingFixture()
	entry, err := inventory.NewLedgerEntry(tenantID, key,
		inventory.MovementTypeReceipt, decimal.NewFromInt(5), decimal.NewFromInt(5), uuid.New())
	require.NoError(t, err)
	page := shared.NewPaginated([]inventory.LedgerEntry{*entry}, 1, 1, 20)

	f.ledger.On("FindByKey", ctx, tenantID, key, mock.Anything).Return(&page, nil)

	result, err := f.service.History(ctx, tenantID, key, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, inventory.MovementTypeReceipt, result.Items[0].MovementType)
	assert.True(t, result.Items[0].QuantityDelta.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, "C-07", result.Items[0].SubLocation)
}
