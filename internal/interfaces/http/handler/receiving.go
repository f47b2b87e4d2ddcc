package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appinv "github.com/erp/core/internal/application/inventory"
	"github.com/erp/core/internal/domain/inventory"
	"github.com/erp/core/internal/domain/shared"
)

// ReceivingHandler exposes the goods receiving and stock query endpoints
type ReceivingHandler struct {
	service *appinv.ReceivingService
}

// NewReceivingHandler creates a ReceivingHandler
func NewReceivingHandler(service *appinv.ReceivingService) *ReceivingHandler {
	return &ReceivingHandler{service: service}
}

type receiveLineRequest struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	WarehouseID *uuid.UUID      `json:"warehouse_id"`
	SubLocation string          `json:"sub_location"`
}

type receiveRequest struct {
	Lines  []receiveLineRequest `json:"lines" binding:"required,min=1"`
	Remark string               `json:"remark"`
}

// Receive handles POST /purchase-orders/:id/receipts
func (h *ReceivingHandler) Receive(c *gin.Context) {
	identity, ok := BindIdentity(c)
	if !ok {
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		BadRequest(c, "malformed purchase order id")
		return
	}
	var req receiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	lines := make([]appinv.ReceiveLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, appinv.ReceiveLine{
			ProductID:   line.ProductID,
			Quantity:    line.Quantity,
			WarehouseID: line.WarehouseID,
			SubLocation: line.SubLocation,
		})
	}

	result, err := h.service.Receive(c.Request.Context(), appinv.ReceiveCommand{
		TenantID:        identity.TenantID,
		PurchaseOrderID: orderID,
		ActorID:         identity.ActorID,
		Lines:           lines,
		IdempotencyKey:  c.GetHeader("Idempotency-Key"),
		Remark:          req.Remark,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, result)
}

// Balance handles GET /stock/:productID/:warehouseID
func (h *ReceivingHandler) Balance(c *gin.Context) {
	identity, ok := BindIdentity(c)
	if !ok {
		return
	}
	key, ok := bindStockKey(c)
	if !ok {
		return
	}

	balance, err := h.service.Balance(c.Request.Context(), identity.TenantID, key)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, balance)
}

// History handles GET /stock/:productID/:warehouseID/ledger
func (h *ReceivingHandler) History(c *gin.Context) {
	identity, ok := BindIdentity(c)
	if !ok {
		return
	}
	key, ok := bindStockKey(c)
	if !ok {
		return
	}

	filter := shared.DefaultFilter()
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil && size > 0 && size <= 100 {
		filter.PageSize = size
	}

	result, err := h.service.History(c.Request.Context(), identity.TenantID, key, filter)
	if err != nil {
		Fail(c, err)
		return
	}
	OKWithMeta(c, result.Items, result.Total, result.Page, result.PageSize, result.TotalPages)
}

// Recompute handles POST /stock/:productID/:warehouseID/recompute
func (h *ReceivingHandler) Recompute(c *gin.Context) {
	identity, ok := BindIdentity(c)
	if !ok {
		return
	}
	key, ok := bindStockKey(c)
	if !ok {
		return
	}

	balance, drifted, err := h.service.RecomputeBalance(c.Request.Context(), identity.TenantID, key)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"balance": balance, "drift_corrected": drifted})
}

// bindStockKey reads the product and warehouse path params plus the optional
// sub_location query param. No sub_location addresses the warehouse-level
// position.
func bindStockKey(c *gin.Context) (inventory.StockKey, bool) {
	productID, err := uuid.Parse(c.Param("productID"))
	if err != nil {
		BadRequest(c, "malformed product id")
		return inventory.StockKey{}, false
	}
	warehouseID, err := uuid.Parse(c.Param("warehouseID"))
	if err != nil {
		BadRequest(c, "malformed warehouse id")
		return inventory.StockKey{}, false
	}
	return inventory.StockKey{
		ProductID:   productID,
		WarehouseID: warehouseID,
		SubLocation: c.Query("sub_location"),
	}, true
}
