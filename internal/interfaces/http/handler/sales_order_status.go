package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apptrade "github.com/erp/core/internal/application/trade"
	"github.com/erp/core/internal/domain/trade"
)

// SalesOrderStatusHandler exposes the sales order lifecycle endpoints
type SalesOrderStatusHandler struct {
	service *apptrade.SalesOrderStatusService
}

// NewSalesOrderStatusHandler creates a SalesOrderStatusHandler
func NewSalesOrderStatusHandler(service *apptrade.SalesOrderStatusService) *SalesOrderStatusHandler {
	return &SalesOrderStatusHandler{service: service}
}

type transitionRequest struct {
	Target string `json:"target" binding:"required"`
	Reason string `json:"reason"`
}

type batchTransitionRequest struct {
	OrderIDs []uuid.UUID `json:"order_ids" binding:"required,min=1"`
	Target   string      `json:"target" binding:"required"`
	Reason   string      `json:"reason"`
}

// Transition handles POST /sales-orders/:id/transition
func (h *SalesOrderStatusHandler) Transition(c *gin.Context) {
	identity, ok := BindIdentity(c)
	if !ok {
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		BadRequest(c, "malformed order id")
		return
	}
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Transition(c.Request.Context(), apptrade.TransitionCommand{
		TenantID: identity.TenantID,
		OrderID:  orderID,
		Target:   trade.OrderStatus(req.Target),
		ActorID:  identity.ActorID,
		Reason:   req.Reason,
		Client:   clientContext(c),
	})
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, result)
}

func clientContext(c *gin.Context) trade.ClientContext {
	return trade.ClientContext{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// AvailableTransitions handles GET /sales-orders/:id/transitions
func (h *SalesOrderStatusHandler) AvailableTransitions(c *gin.Context) {
	identity, ok := BindIdentity(c)
	if !ok {
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		BadRequest(c, "malformed order id")
		return
	}

	targets, err := h.service.AvailableTransitions(c.Request.Context(), identity.TenantID, orderID, identity.ActorID)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"targets": targets})
}

// History handles GET /sales-orders/:id/status-history
func (h *SalesOrderStatusHandler) History(c *gin.Context) {
	identity, ok := BindIdentity(c)
	if !ok {
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		BadRequest(c, "malformed order id")
		return
	}

	trail, err := h.service.History(c.Request.Context(), identity.TenantID, orderID)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"events": trail})
}

// TransitionBatch handles POST /sales-orders/transitions
func (h *SalesOrderStatusHandler) TransitionBatch(c *gin.Context) {
	identity, ok := BindIdentity(c)
	if !ok {
		return
	}
	var req batchTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	result, err := h.service.TransitionBatch(c.Request.Context(), apptrade.BatchTransitionCommand{
		TenantID:    identity.TenantID,
		OrderIDs:    req.OrderIDs,
		Target:      trade.OrderStatus(req.Target),
		RequestedBy: identity.ActorID,
		Reason:      req.Reason,
		Client:      clientContext(c),
	})
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, result)
}
