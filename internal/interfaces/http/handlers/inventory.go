// internal/interfaces/http/handlers/inventory.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/seller-dashboard-backend/internal/config"
	"github.com/your-org/seller-dashboard-backend/internal/domain/inventory"
	"github.com/your-org/seller-dashboard-backend/internal/interfaces/http/middleware"
	"github.com/your-org/seller-dashboard-backend/internal/pkg/email"
	"gorm.io/gorm"
)

// InventoryHandler handles stock movement and ledger endpoints
type InventoryHandler struct {
	applier  *inventory.Applier
	resolver *inventory.Resolver
	ledger   *inventory.Ledger
	config   *config.Config
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(db *gorm.DB, cfg *config.Config) *InventoryHandler {
	alerts := inventory.NewAlertManager(db, cfg, email.NewEmailService(cfg), nil)
	return &InventoryHandler{
		applier:  inventory.NewApplier(db, cfg, alerts),
		resolver: inventory.NewResolver(db),
		ledger:   inventory.NewLedger(db),
		config:   cfg,
	}
}

// MOVEMENT ENDPOINTS

// ApplyMovement handles POST /inventory/movements
func (h *InventoryHandler) ApplyMovement(c *gin.Context) {
	var req inventory.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	req.SellerID = middleware.SellerID(c)
	req.CreatedBy = middleware.UserID(c)

	result, err := h.applier.Apply(c.Request.Context(), &req)
	if err != nil {
		h.writeInventoryError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Movement applied successfully",
		"data":    result,
	})
}

// ApplyAdjustment handles POST /inventory/adjustments
func (h *InventoryHandler) ApplyAdjustment(c *gin.Context) {
	var req struct {
		VariantID uint   `json:"variant_id" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required"`
		Reason    string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	result, err := h.applier.Apply(c.Request.Context(), &inventory.ApplyRequest{
		SellerID:  middleware.SellerID(c),
		VariantID: req.VariantID,
		Type:      inventory.MovementTypeAdjustment,
		Quantity:  req.Quantity,
		Note:      req.Reason,
		CreatedBy: middleware.UserID(c),
	})
	if err != nil {
		h.writeInventoryError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Adjustment applied successfully",
		"data":    result,
	})
}

// RESOLUTION ENDPOINTS

// GetAvailableStock handles GET /inventory/stock/:sku
func (h *InventoryHandler) GetAvailableStock(c *gin.Context) {
	sku := c.Param("sku")
	sellerID := middleware.SellerID(c)

	resolution, err := h.resolver.AvailableStock(c.Request.Context(), sellerID, sku)
	if err != nil {
		if errors.Is(err, inventory.ErrVariantNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to resolve available stock",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Available stock resolved successfully",
		"data":    resolution,
	})
}

// LEDGER ENDPOINTS

// GetMovements handles GET /inventory/movements/:variantId
func (h *InventoryHandler) GetMovements(c *gin.Context) {
	variantID, ok := h.parseVariantID(c)
	if !ok {
		return
	}

	limit := 50
	if limitParam := c.Query("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	movements, err := h.ledger.Movements(c.Request.Context(), middleware.SellerID(c), variantID, limit)
	if err != nil {
		h.writeInventoryError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Movements retrieved successfully",
		"data":    movements,
	})
}

// ReplayBalance handles GET /inventory/replay/:variantId
func (h *InventoryHandler) ReplayBalance(c *gin.Context) {
	variantID, ok := h.parseVariantID(c)
	if !ok {
		return
	}

	balance, err := h.ledger.Replay(c.Request.Context(), middleware.SellerID(c), variantID)
	if err != nil {
		h.writeInventoryError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ledger replayed successfully",
		"data": gin.H{
			"variant_id":     variantID,
			"ledger_balance": balance,
		},
	})
}

// VerifyBalance handles GET /inventory/verify/:variantId
func (h *InventoryHandler) VerifyBalance(c *gin.Context) {
	variantID, ok := h.parseVariantID(c)
	if !ok {
		return
	}

	result, err := h.ledger.Verify(c.Request.Context(), middleware.SellerID(c), variantID)
	if err != nil {
		h.writeInventoryError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ledger verified",
		"data":    result,
	})
}

// ReconcileBalance handles POST /inventory/reconcile/:variantId
func (h *InventoryHandler) ReconcileBalance(c *gin.Context) {
	variantID, ok := h.parseVariantID(c)
	if !ok {
		return
	}

	result, err := h.ledger.Reconcile(c.Request.Context(), middleware.SellerID(c), variantID)
	if err != nil {
		h.writeInventoryError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Balance reconciled from ledger",
		"data":    result,
	})
}

// UnlockLedger handles POST /inventory/unlock/:variantId
func (h *InventoryHandler) UnlockLedger(c *gin.Context) {
	variantID, ok := h.parseVariantID(c)
	if !ok {
		return
	}

	result, err := h.ledger.Unlock(c.Request.Context(), middleware.SellerID(c), variantID)
	if err != nil {
		if errors.Is(err, inventory.ErrLedgerLocked) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "Ledger still inconsistent; reconcile before unlocking",
			})
			return
		}
		h.writeInventoryError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ledger unlocked",
		"data":    result,
	})
}

func (h *InventoryHandler) parseVariantID(c *gin.Context) (uint, bool) {
	variantID, err := strconv.ParseUint(c.Param("variantId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid variant ID",
		})
		return 0, false
	}
	return uint(variantID), true
}

func (h *InventoryHandler) writeInventoryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, inventory.ErrVariantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, inventory.ErrLedgerLocked):
		c.JSON(http.StatusLocked, gin.H{"error": err.Error()})
	case errors.Is(err, inventory.ErrConcurrencyConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, inventory.ErrInvalidMovement),
		errors.Is(err, inventory.ErrNotSimpleVariant):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to process inventory request",
		})
	}
}
