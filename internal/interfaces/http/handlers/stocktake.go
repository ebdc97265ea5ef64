// internal/interfaces/http/handlers/stocktake.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/seller-dashboard-backend/internal/config"
	"github.com/your-org/seller-dashboard-backend/internal/domain/inventory"
	"github.com/your-org/seller-dashboard-backend/internal/domain/stocktake"
	"github.com/your-org/seller-dashboard-backend/internal/interfaces/http/middleware"
	"github.com/your-org/seller-dashboard-backend/internal/pkg/email"
	"github.com/your-org/seller-dashboard-backend/internal/pkg/pdf"
	"gorm.io/gorm"
)

// StockTakeHandler handles stock take session endpoints
type StockTakeHandler struct {
	service    *stocktake.Service
	pdfService *pdf.Service
	config     *config.Config
}

// NewStockTakeHandler creates a new stock take handler
func NewStockTakeHandler(db *gorm.DB, cfg *config.Config) *StockTakeHandler {
	alerts := inventory.NewAlertManager(db, cfg, email.NewEmailService(cfg), nil)
	applier := inventory.NewApplier(db, cfg, alerts)
	return &StockTakeHandler{
		service:    stocktake.NewService(db, applier, cfg),
		pdfService: pdf.NewService(cfg),
		config:     cfg,
	}
}

// StartSession handles POST /stock-takes
func (h *StockTakeHandler) StartSession(c *gin.Context) {
	var req struct {
		Notes string `json:"notes"`
	}
	// Body is optional; a bare POST starts a session without notes
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"details": err.Error(),
			})
			return
		}
	}

	session, err := h.service.StartSession(c.Request.Context(), middleware.SellerID(c), req.Notes, middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to start stock take session",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Stock take session started successfully",
		"data":    session,
	})
}

// GetSessions handles GET /stock-takes
func (h *StockTakeHandler) GetSessions(c *gin.Context) {
	limit := 50
	if limitParam := c.Query("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	sessions, err := h.service.GetSessions(c.Request.Context(), middleware.SellerID(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve stock take sessions",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock take sessions retrieved successfully",
		"data":    sessions,
	})
}

// GetSession handles GET /stock-takes/:id
func (h *StockTakeHandler) GetSession(c *gin.Context) {
	sessionID, ok := h.parseSessionID(c)
	if !ok {
		return
	}

	session, err := h.service.GetSession(c.Request.Context(), middleware.SellerID(c), sessionID)
	if err != nil {
		h.writeStockTakeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock take session retrieved successfully",
		"data":    session,
	})
}

// RecordCount handles PUT /stock-takes/:id/counts
func (h *StockTakeHandler) RecordCount(c *gin.Context) {
	sessionID, ok := h.parseSessionID(c)
	if !ok {
		return
	}

	var req stocktake.CountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	req.SellerID = middleware.SellerID(c)
	req.SessionID = sessionID
	req.CountedBy = middleware.UserID(c)

	item, err := h.service.RecordCount(c.Request.Context(), &req)
	if err != nil {
		h.writeStockTakeError(c, err)
		return
	}

	if item == nil {
		c.JSON(http.StatusOK, gin.H{
			"message": "Count removed successfully",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Count recorded successfully",
		"data":    item,
	})
}

// GetVariance handles GET /stock-takes/:id/variance
func (h *StockTakeHandler) GetVariance(c *gin.Context) {
	sessionID, ok := h.parseSessionID(c)
	if !ok {
		return
	}

	report, err := h.service.Variance(c.Request.Context(), middleware.SellerID(c), sessionID)
	if err != nil {
		h.writeStockTakeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Variance report generated successfully",
		"data":    report,
	})
}

// GetVarianceForVariant handles GET /stock-takes/:id/variance/:variantId
func (h *StockTakeHandler) GetVarianceForVariant(c *gin.Context) {
	sessionID, ok := h.parseSessionID(c)
	if !ok {
		return
	}

	variantID, err := strconv.ParseUint(c.Param("variantId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid variant ID",
		})
		return
	}

	variance, err := h.service.VarianceFor(c.Request.Context(), middleware.SellerID(c), sessionID, uint(variantID))
	if err != nil {
		h.writeStockTakeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Variance retrieved successfully",
		"data": gin.H{
			"session_id": sessionID,
			"variant_id": variantID,
			"counted":    variance != nil,
			"variance":   variance,
		},
	})
}

// CompleteSession handles POST /stock-takes/:id/complete
func (h *StockTakeHandler) CompleteSession(c *gin.Context) {
	sessionID, ok := h.parseSessionID(c)
	if !ok {
		return
	}

	result, err := h.service.CompleteSession(c.Request.Context(), middleware.SellerID(c), sessionID, middleware.UserID(c))
	if err != nil {
		h.writeStockTakeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock take session completed successfully",
		"data":    result,
	})
}

// CancelSession handles POST /stock-takes/:id/cancel
func (h *StockTakeHandler) CancelSession(c *gin.Context) {
	sessionID, ok := h.parseSessionID(c)
	if !ok {
		return
	}

	session, err := h.service.CancelSession(c.Request.Context(), middleware.SellerID(c), sessionID)
	if err != nil {
		h.writeStockTakeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock take session cancelled successfully",
		"data":    session,
	})
}

// DownloadVarianceReport handles GET /stock-takes/:id/report
func (h *StockTakeHandler) DownloadVarianceReport(c *gin.Context) {
	sessionID, ok := h.parseSessionID(c)
	if !ok {
		return
	}

	report, err := h.service.Variance(c.Request.Context(), middleware.SellerID(c), sessionID)
	if err != nil {
		h.writeStockTakeError(c, err)
		return
	}

	buf, err := h.pdfService.GenerateVarianceReport(report)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate variance report PDF",
		})
		return
	}

	filename := fmt.Sprintf("variance-%s.pdf", report.Session.Code)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (h *StockTakeHandler) parseSessionID(c *gin.Context) (uint, bool) {
	sessionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid session ID",
		})
		return 0, false
	}
	return uint(sessionID), true
}

func (h *StockTakeHandler) writeStockTakeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, stocktake.ErrSessionNotFound),
		errors.Is(err, inventory.ErrVariantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, stocktake.ErrSessionNotActive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, inventory.ErrLedgerLocked):
		c.JSON(http.StatusLocked, gin.H{"error": err.Error()})
	case errors.Is(err, stocktake.ErrNothingCounted),
		errors.Is(err, stocktake.ErrVariantNotCountable),
		errors.Is(err, stocktake.ErrInvalidCount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to process stock take request",
		})
	}
}
