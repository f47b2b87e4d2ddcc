package trade

import (
	"context"

	"go.uber.org/zap"

	"github.com/erp/core/internal/domain/inventory"
	"github.com/erp/core/internal/domain/trade"
)

// Effect runs inside the transition transaction after the order update and
// audit event are staged. A failing effect aborts the whole transition.
type Effect func(ctx context.Context, repos TransactionalRepositories, order *trade.SalesOrder) error

// effectRegistry binds each target status to its post-transition effects.
// Effects run in registration order inside the same transaction.
var effectRegistry = map[trade.OrderStatus][]Effect{
	trade.OrderStatusConfirmed: {reserveOrderStock, touchCustomer},
	trade.OrderStatusCancelled: {releaseOrderStock, touchCustomer},
}

func touchCustomer(ctx context.Context, repos TransactionalRepositories, order *trade.SalesOrder) error {
	return repos.Customers.TouchLastActivity(ctx, order.TenantID, order.CustomerID)
}

// reserveOrderStock commits available stock to every confirmed line. The
// balance rows are loaded under row locks so two confirmations racing for the
// same stock serialize.
func reserveOrderStock(ctx context.Context, repos TransactionalRepositories, order *trade.SalesOrder) error {
	if order.WarehouseID == nil {
		return nil
	}
	for _, item := range order.Items {
		key := inventory.StockKey{ProductID: item.ProductID, WarehouseID: *order.WarehouseID}
		balance, err := repos.Balances.FindByKeyForUpdate(ctx, order.TenantID, key)
		if err != nil {
			return err
		}
		if err := balance.Reserve(item.Quantity); err != nil {
			return err
		}
		if err := repos.Balances.Save(ctx, balance); err != nil {
			return err
		}
	}
	return nil
}

// releaseOrderStock returns reservations held by a cancelled order. Orders
// cancelled from DRAFT never reserved anything, so a missing or short
// reservation is not an error here.
func releaseOrderStock(ctx context.Context, repos TransactionalRepositories, order *trade.SalesOrder) error {
	if order.WarehouseID == nil || order.ConfirmedAt == nil {
		return nil
	}
	for _, item := range order.Items {
		key := inventory.StockKey{ProductID: item.ProductID, WarehouseID: *order.WarehouseID}
		balance, err := repos.Balances.FindByKeyForUpdate(ctx, order.TenantID, key)
		if err != nil {
			return err
		}
		qty := item.Quantity
		if qty.GreaterThan(balance.Reserved) {
			zap.L().Warn("reservation shortfall during release",
				zap.String("order_no", order.OrderNo),
				zap.String("product_id", item.ProductID.String()),
				zap.String("reserved", balance.Reserved.String()),
				zap.String("requested", qty.String()))
			qty = balance.Reserved
		}
		if qty.IsZero() {
			continue
		}
		if err := balance.Release(qty); err != nil {
			return err
		}
		if err := repos.Balances.Save(ctx, balance); err != nil {
			return err
		}
	}
	return nil
}

// applyEffects runs every effect registered for the order's new status
func applyEffects(ctx context.Context, repos TransactionalRepositories, order *trade.SalesOrder) error {
	for _, effect := range effectRegistry[order.Status] {
		if err := effect(ctx, repos, order); err != nil {
			return err
		}
	}
	return nil
}
