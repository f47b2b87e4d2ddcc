package trade

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/core/internal/domain/shared"
)

func newTestOrder(t *testing.T) *SalesOrder {
	t.Helper()
	order, err := NewSalesOrder(uuid.New(), "SO-2026-0001", uuid.New())
	require.NoError(t, err)
	return order
}

func TestNewSalesOrder(t *testing.T) {
	t.Run("starts in draft", func(t *testing.T) {
		order := newTestOrder(t)
		assert.Equal(t, OrderStatusDraft, order.Status)
		assert.Equal(t, 1, order.Version)
		assert.True(t, order.TotalAmount.IsZero())
	})

	t.Run("rejects empty order number", func(t *testing.T) {
		_, err := NewSalesOrder(uuid.New(), "", uuid.New())
		require.Error(t, err)
		assert.Equal(t, shared.KindValidationFailed, shared.KindOf(err))
	})

	t.Run("rejects nil customer", func(t *testing.T) {
		_, err := NewSalesOrder(uuid.New(), "SO-2026-0002", uuid.Nil)
		require.Error(t, err)
		assert.Equal(t, shared.KindValidationFailed, shared.KindOf(err))
	})
}

func TestSalesOrder_ApplyTransition(t *testing.T) {
	actor := uuid.New()

	t.Run("legal transition updates status and timestamp", func(t *testing.T) {
		order := newTestOrder(t)
		err := order.ApplyTransition(OrderStatusConfirmed, actor, "")
		require.NoError(t, err)
		assert.Equal(t, OrderStatusConfirmed, order.Status)
		require.NotNil(t, order.ConfirmedAt)
		require.NotNil(t, order.LastActorID)
		assert.Equal(t, actor, *order.LastActorID)
	})

	t.Run("illegal transition leaves order untouched", func(t *testing.T) {
		order := newTestOrder(t)
		err := order.ApplyTransition(OrderStatusCompleted, actor, "")
		require.Error(t, err)
		assert.Equal(t, shared.KindIllegalTransition, shared.KindOf(err))
		assert.True(t, errors.Is(err, shared.ErrIllegalTransition))
		assert.Equal(t, OrderStatusDraft, order.Status)
		assert.Nil(t, order.CompletedAt)
		assert.Empty(t, order.GetDomainEvents())
	})

	t.Run("unknown target is a validation failure", func(t *testing.T) {
		order := newTestOrder(t)
		err := order.ApplyTransition(OrderStatus("ARCHIVED"), actor, "")
		require.Error(t, err)
		assert.Equal(t, shared.KindValidationFailed, shared.KindOf(err))
	})

	t.Run("cancellation records the reason", func(t *testing.T) {
		order := newTestOrder(t)
		err := order.ApplyTransition(OrderStatusCancelled, actor, "customer withdrew")
		require.NoError(t, err)
		assert.Equal(t, "customer withdrew", order.CancelReason)
		require.NotNil(t, order.CancelledAt)
	})

	t.Run("terminal states reject all transitions", func(t *testing.T) {
		order := newTestOrder(t)
		require.NoError(t, order.ApplyTransition(OrderStatusCancelled, actor, "dup"))
		err := order.ApplyTransition(OrderStatusConfirmed, actor, "")
		require.Error(t, err)
		assert.Equal(t, shared.KindIllegalTransition, shared.KindOf(err))
	})

	t.Run("emits a status changed event", func(t *testing.T) {
		order := newTestOrder(t)
		require.NoError(t, order.ApplyTransition(OrderStatusConfirmed, actor, ""))
		events := order.GetDomainEvents()
		require.Len(t, events, 1)
		evt, ok := events[0].(*SalesOrderStatusChangedEvent)
		require.True(t, ok)
		assert.Equal(t, OrderStatusDraft, evt.FromStatus)
		assert.Equal(t, OrderStatusConfirmed, evt.ToStatus)
		assert.Equal(t, actor, evt.ActorID)
		assert.Equal(t, order.ID, evt.AggregateID())
	})

	t.Run("full happy path", func(t *testing.T) {
		order := newTestOrder(t)
		wh := uuid.New()
		order.WarehouseID = &wh
		require.NoError(t, order.ApplyTransition(OrderStatusConfirmed, actor, ""))
		require.NoError(t, order.ApplyTransition(OrderStatusShipped, actor, ""))
		require.NoError(t, order.ApplyTransition(OrderStatusCompleted, actor, ""))
		assert.Equal(t, OrderStatusCompleted, order.Status)
		assert.NotNil(t, order.ConfirmedAt)
		assert.NotNil(t, order.ShippedAt)
		assert.NotNil(t, order.CompletedAt)
	})
}

func TestSalesOrder_RecalculateTotal(t *testing.T) {
	order := newTestOrder(t)
	order.Items = []SalesOrderItem{
		{Amount: decimal.NewFromInt(100)},
		{Amount: decimal.NewFromFloat(25.50)},
	}
	order.RecalculateTotal()
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromFloat(125.50)))
}

func TestPurchaseOrder_ApplyReceipt(t *testing.T) {
	newPO := func(status PurchaseOrderStatus) (*PurchaseOrder, uuid.UUID) {
		productID := uuid.New()
		po := &PurchaseOrder{
			TenantAggregateRoot: shared.NewTenantAggregateRoot(uuid.New()),
			OrderNo:             "PO-2026-0001",
			SupplierID:          uuid.New(),
			WarehouseID:         uuid.New(),
			Status:              status,
			Items: []PurchaseOrderItem{
				{
					BaseEntity: shared.NewBaseEntity(),
					ProductID:  productID,
					Quantity:   decimal.NewFromInt(10),
				},
			},
		}
		return po, productID
	}

	t.Run("partial receipt", func(t *testing.T) {
		po, productID := newPO(PurchaseOrderStatusConfirmed)
		err := po.ApplyReceipt(map[uuid.UUID]decimal.Decimal{productID: decimal.NewFromInt(4)})
		require.NoError(t, err)
		assert.Equal(t, PurchaseOrderStatusPartialReceived, po.Status)
		assert.True(t, po.Items[0].RemainingQuantity().Equal(decimal.NewFromInt(6)))
	})

	t.Run("full receipt completes the order", func(t *testing.T) {
		po, productID := newPO(PurchaseOrderStatusConfirmed)
		err := po.ApplyReceipt(map[uuid.UUID]decimal.Decimal{productID: decimal.NewFromInt(10)})
		require.NoError(t, err)
		assert.Equal(t, PurchaseOrderStatusCompleted, po.Status)
	})

	t.Run("draft order cannot receive", func(t *testing.T) {
		po, productID := newPO(PurchaseOrderStatusDraft)
		err := po.ApplyReceipt(map[uuid.UUID]decimal.Decimal{productID: decimal.NewFromInt(1)})
		require.Error(t, err)
		assert.Equal(t, shared.KindPreconditionFailed, shared.KindOf(err))
	})

	t.Run("over receipt is rejected without mutation", func(t *testing.T) {
		po, productID := newPO(PurchaseOrderStatusConfirmed)
		err := po.ApplyReceipt(map[uuid.UUID]decimal.Decimal{productID: decimal.NewFromInt(11)})
		require.Error(t, err)
		assert.Equal(t, shared.KindValidationFailed, shared.KindOf(err))
		assert.True(t, po.Items[0].ReceivedQuantity.IsZero())
		assert.Equal(t, PurchaseOrderStatusConfirmed, po.Status)
	})

	t.Run("unknown product is rejected", func(t *testing.T) {
		po, _ := newPO(PurchaseOrderStatusConfirmed)
		err := po.ApplyReceipt(map[uuid.UUID]decimal.Decimal{uuid.New(): decimal.NewFromInt(1)})
		require.Error(t, err)
		assert.Equal(t, shared.KindValidationFailed, shared.KindOf(err))
	})

	t.Run("non positive quantity is rejected", func(t *testing.T) {
		po, productID := newPO(PurchaseOrderStatusConfirmed)
		err := po.ApplyReceipt(map[uuid.UUID]decimal.Decimal{productID: decimal.Zero})
		require.Error(t, err)
		assert.Equal(t, shared.KindValidationFailed, shared.KindOf(err))
	})
}
