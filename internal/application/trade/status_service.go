package trade

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/core/internal/domain/shared"
	"github.com/erp/core/internal/domain/trade"
	"github.com/erp/core/internal/infrastructure/telemetry"
)

// SalesOrderStatusService drives the sales order lifecycle. Every transition
// runs as one transaction: matrix check, permission check, preconditions,
// order update, audit event, registered side effects.
type SalesOrderStatusService struct {
	txScope     TransactionScope
	gate        PermissionGate
	orderRepo   trade.SalesOrderRepository
	eventRepo   trade.StatusEventRepository
	publisher   shared.EventPublisher
	metrics     *telemetry.BusinessMetrics
	logger      *zap.Logger
}

// NewSalesOrderStatusService creates a sales order status service
func NewSalesOrderStatusService(
	txScope TransactionScope,
	gate PermissionGate,
	orderRepo trade.SalesOrderRepository,
	eventRepo trade.StatusEventRepository,
	publisher shared.EventPublisher,
	metrics *telemetry.BusinessMetrics,
	logger *zap.Logger,
) *SalesOrderStatusService {
	return &SalesOrderStatusService{
		txScope:   txScope,
		gate:      gate,
		orderRepo: orderRepo,
		eventRepo: eventRepo,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Transition moves one sales order to the target status. The checks run in a
// fixed order so callers get stable error kinds: unknown target, then order
// lookup, then matrix, then permission, then preconditions.
func (s *SalesOrderStatusService) Transition(ctx context.Context, cmd TransitionCommand) (*TransitionResult, error) {
	if !cmd.Target.IsValid() {
		return nil, shared.NewValidationError("INVALID_STATUS", "unknown target status: "+cmd.Target.String())
	}

	var result *TransitionResult
	var events []shared.DomainEvent

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.SalesOrders.FindByIDForUpdate(ctx, cmd.TenantID, cmd.OrderID)
		if err != nil {
			return err
		}

		if !order.Status.CanTransitionTo(cmd.Target) {
			return shared.NewDomainError(shared.KindIllegalTransition, "ILLEGAL_TRANSITION",
				"cannot transition sales order "+order.OrderNo+" from "+order.Status.String()+" to "+cmd.Target.String())
		}

		allowed, err := s.gate.HasPermission(ctx, cmd.TenantID, cmd.ActorID, trade.PermissionForTarget(cmd.Target))
		if err != nil {
			return err
		}
		if !allowed {
			return shared.NewDomainError(shared.KindForbidden, "FORBIDDEN",
				"actor lacks permission "+trade.PermissionForTarget(cmd.Target))
		}

		if err := checkPreconditions(ctx, order, cmd); err != nil {
			return err
		}

		from := order.Status
		expectedVersion := order.Version
		if err := order.ApplyTransition(cmd.Target, cmd.ActorID, cmd.Reason); err != nil {
			return err
		}

		if err := repos.SalesOrders.SaveWithVersion(ctx, order, expectedVersion); err != nil {
			return err
		}

		event := trade.NewStatusEvent(cmd.TenantID, order.ID, from, cmd.Target, cmd.ActorID, cmd.Reason, cmd.Client)
		if err := repos.StatusEvents.Append(ctx, event); err != nil {
			return err
		}

		if err := applyEffects(ctx, repos, order); err != nil {
			return err
		}

		events = order.GetDomainEvents()
		order.ClearDomainEvents()
		result = &TransitionResult{
			OrderID:      order.ID,
			FromStatus:   from,
			ToStatus:     cmd.Target,
			AuditEventID: event.ID,
			OccurredAt:   event.OccurredAt,
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("sales order transition rejected",
			zap.String("order_id", cmd.OrderID.String()),
			zap.String("target", cmd.Target.String()),
			zap.String("kind", string(shared.KindOf(err))),
			zap.Error(err))
		if s.metrics != nil {
			s.metrics.RecordTransition(ctx, cmd.Target.String(), false)
		}
		return nil, err
	}

	// Events publish after commit; a publish failure must not undo the
	// transition, so it is logged and swallowed.
	if s.publisher != nil && len(events) > 0 {
		if pubErr := s.publisher.Publish(ctx, events...); pubErr != nil {
			s.logger.Error("failed to publish status events", zap.Error(pubErr))
		}
	}
	if s.metrics != nil {
		s.metrics.RecordTransition(ctx, cmd.Target.String(), true)
	}
	s.logger.Info("sales order transitioned",
		zap.String("order_id", result.OrderID.String()),
		zap.String("from", result.FromStatus.String()),
		zap.String("to", result.ToStatus.String()))
	return result, nil
}

// AvailableTransitions returns the targets reachable from the order's current
// status, filtered to those the actor is permitted to perform.
func (s *SalesOrderStatusService) AvailableTransitions(ctx context.Context, tenantID, orderID, actorID uuid.UUID) ([]trade.OrderStatus, error) {
	order, err := s.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	targets := trade.AllowedTargets(order.Status)
	permitted := make([]trade.OrderStatus, 0, len(targets))
	for _, target := range targets {
		allowed, err := s.gate.HasPermission(ctx, tenantID, actorID, trade.PermissionForTarget(target))
		if err != nil {
			return nil, err
		}
		if allowed {
			permitted = append(permitted, target)
		}
	}
	return permitted, nil
}

// History returns the order's status audit trail, most recent first
func (s *SalesOrderStatusService) History(ctx context.Context, tenantID, orderID uuid.UUID) ([]StatusEventDTO, error) {
	if _, err := s.orderRepo.FindByID(ctx, tenantID, orderID); err != nil {
		return nil, err
	}
	events, err := s.eventRepo.FindByOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	out := make([]StatusEventDTO, 0, len(events))
	for i := range events {
		out = append(out, toStatusEventDTO(&events[i]))
	}
	return out, nil
}

// TransitionBatch applies the same transition to several orders. Each order
// gets its own transaction so one failure never rolls back its siblings.
// The per-order transitions run as trade.SystemActorID so the audit trail
// distinguishes batch automation from manual operator actions.
func (s *SalesOrderStatusService) TransitionBatch(ctx context.Context, cmd BatchTransitionCommand) (*BatchTransitionResult, error) {
	if !cmd.Target.IsValid() {
		return nil, shared.NewValidationError("INVALID_STATUS", "unknown target status: "+cmd.Target.String())
	}
	if len(cmd.OrderIDs) == 0 {
		return nil, shared.NewValidationError("EMPTY_BATCH", "batch contains no orders")
	}

	s.logger.Info("batch transition requested",
		zap.String("target", cmd.Target.String()),
		zap.Int("orders", len(cmd.OrderIDs)),
		zap.String("requested_by", cmd.RequestedBy.String()))

	result := &BatchTransitionResult{Items: make([]BatchItemResult, 0, len(cmd.OrderIDs))}
	for _, orderID := range cmd.OrderIDs {
		item := BatchItemResult{OrderID: orderID}
		res, err := s.Transition(ctx, TransitionCommand{
			TenantID: cmd.TenantID,
			OrderID:  orderID,
			Target:   cmd.Target,
			ActorID:  trade.SystemActorID,
			Reason:   cmd.Reason,
			Client:   cmd.Client,
		})
		if err != nil {
			item.Error = err.Error()
			item.Kind = string(shared.KindOf(err))
			result.Failed++
		} else {
			item.Result = res
			result.Succeeded++
		}
		result.Items = append(result.Items, item)
	}
	return result, nil
}
