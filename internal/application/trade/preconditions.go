package trade

import (
	"context"

	"github.com/erp/core/internal/domain/shared"
	"github.com/erp/core/internal/domain/trade"
)

// Precondition is a business-rule check a transition must pass after the
// matrix and permission checks. Checks are side-effect free.
type Precondition func(ctx context.Context, order *trade.SalesOrder, cmd TransitionCommand) error

// preconditionRegistry binds each target status to its checks. Registration
// happens at init time only; the map is read-only afterwards.
var preconditionRegistry = map[trade.OrderStatus][]Precondition{
	trade.OrderStatusConfirmed: {requireOrderLines},
	trade.OrderStatusShipped:   {requireWarehouse},
	trade.OrderStatusCompleted: {requireShipmentRecorded},
	trade.OrderStatusCancelled: {requireCancelReason},
}

func requireOrderLines(_ context.Context, order *trade.SalesOrder, _ TransitionCommand) error {
	if !order.HasItems() {
		return shared.NewPreconditionError("ORDER_HAS_NO_LINES",
			"cannot confirm sales order "+order.OrderNo+" without lines")
	}
	return nil
}

func requireWarehouse(_ context.Context, order *trade.SalesOrder, _ TransitionCommand) error {
	if order.WarehouseID == nil {
		return shared.NewPreconditionError("WAREHOUSE_NOT_ASSIGNED",
			"cannot ship sales order "+order.OrderNo+" without a warehouse")
	}
	return nil
}

func requireShipmentRecorded(_ context.Context, order *trade.SalesOrder, _ TransitionCommand) error {
	if order.ShippedAt == nil {
		return shared.NewPreconditionError("SHIPMENT_NOT_RECORDED",
			"cannot complete sales order "+order.OrderNo+" before shipment bookkeeping exists")
	}
	return nil
}

func requireCancelReason(_ context.Context, _ *trade.SalesOrder, cmd TransitionCommand) error {
	if cmd.Reason == "" {
		return shared.NewPreconditionError("CANCEL_REASON_REQUIRED",
			"cancellation requires a reason")
	}
	return nil
}

// checkPreconditions runs every check registered for the target status
func checkPreconditions(ctx context.Context, order *trade.SalesOrder, cmd TransitionCommand) error {
	for _, check := range preconditionRegistry[cmd.Target] {
		if err := check(ctx, order, cmd); err != nil {
			return err
		}
	}
	return nil
}
