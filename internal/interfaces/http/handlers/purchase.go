// internal/interfaces/http/handlers/purchase.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/seller-dashboard-backend/internal/config"
	"github.com/your-org/seller-dashboard-backend/internal/domain/inventory"
	"github.com/your-org/seller-dashboard-backend/internal/domain/purchase"
	"github.com/your-org/seller-dashboard-backend/internal/interfaces/http/middleware"
	"github.com/your-org/seller-dashboard-backend/internal/pkg/email"
	"gorm.io/gorm"
)

// PurchaseOrderHandler handles purchase order endpoints
type PurchaseOrderHandler struct {
	service *purchase.Service
	config  *config.Config
}

// NewPurchaseOrderHandler creates a new purchase order handler
func NewPurchaseOrderHandler(db *gorm.DB, cfg *config.Config) *PurchaseOrderHandler {
	alerts := inventory.NewAlertManager(db, cfg, email.NewEmailService(cfg), nil)
	applier := inventory.NewApplier(db, cfg, alerts)
	return &PurchaseOrderHandler{
		service: purchase.NewService(db, applier, cfg),
		config:  cfg,
	}
}

// CreateOrder handles POST /purchase-orders
func (h *PurchaseOrderHandler) CreateOrder(c *gin.Context) {
	var req purchase.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	req.SellerID = middleware.SellerID(c)
	req.CreatedBy = middleware.UserID(c)

	order, err := h.service.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		h.writePurchaseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Purchase order created successfully",
		"data":    order,
	})
}

// GetOrders handles GET /purchase-orders
func (h *PurchaseOrderHandler) GetOrders(c *gin.Context) {
	limit := 50
	if limitParam := c.Query("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	status := purchase.OrderStatus(c.Query("status"))

	orders, err := h.service.GetOrders(c.Request.Context(), middleware.SellerID(c), status, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve purchase orders",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Purchase orders retrieved successfully",
		"data":    orders,
	})
}

// GetOrder handles GET /purchase-orders/:id
func (h *PurchaseOrderHandler) GetOrder(c *gin.Context) {
	orderID, ok := h.parseOrderID(c)
	if !ok {
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), middleware.SellerID(c), orderID)
	if err != nil {
		h.writePurchaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Purchase order retrieved successfully",
		"data":    order,
	})
}

// UpdateStatus handles PUT /purchase-orders/:id/status
func (h *PurchaseOrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := h.parseOrderID(c)
	if !ok {
		return
	}

	var req struct {
		Status purchase.OrderStatus `json:"status" binding:"required,oneof=ordered cancelled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	var order *purchase.PurchaseOrder
	var err error
	switch req.Status {
	case purchase.OrderStatusOrdered:
		order, err = h.service.MarkOrdered(c.Request.Context(), middleware.SellerID(c), orderID)
	case purchase.OrderStatusCancelled:
		order, err = h.service.Cancel(c.Request.Context(), middleware.SellerID(c), orderID)
	}
	if err != nil {
		h.writePurchaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Purchase order status updated successfully",
		"data":    order,
	})
}

// ReceiveOrder handles POST /purchase-orders/:id/receive
func (h *PurchaseOrderHandler) ReceiveOrder(c *gin.Context) {
	orderID, ok := h.parseOrderID(c)
	if !ok {
		return
	}

	result, err := h.service.Receive(c.Request.Context(), middleware.SellerID(c), orderID, middleware.UserID(c))
	if err != nil {
		h.writePurchaseError(c, err)
		return
	}

	message := "Purchase order received successfully"
	if result.AlreadyReceived {
		message = "Purchase order was already received"
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data":    result,
	})
}

func (h *PurchaseOrderHandler) parseOrderID(c *gin.Context) (uint, bool) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid purchase order ID",
		})
		return 0, false
	}
	return uint(orderID), true
}

func (h *PurchaseOrderHandler) writePurchaseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, purchase.ErrOrderNotFound),
		errors.Is(err, inventory.ErrVariantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, purchase.ErrInvalidStateTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, inventory.ErrLedgerLocked):
		c.JSON(http.StatusLocked, gin.H{"error": err.Error()})
	case errors.Is(err, purchase.ErrNoItems),
		errors.Is(err, purchase.ErrInvalidItemQuantity),
		errors.Is(err, purchase.ErrVariantNotPurchasable),
		errors.Is(err, purchase.ErrDuplicateItem):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to process purchase order request",
		})
	}
}
