// internal/interfaces/http/handlers/catalog.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/seller-dashboard-backend/internal/config"
	"github.com/your-org/seller-dashboard-backend/internal/domain/catalog"
	"github.com/your-org/seller-dashboard-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// CatalogHandler handles variant and composition endpoints
type CatalogHandler struct {
	service *catalog.Service
	config  *config.Config
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(db *gorm.DB, cfg *config.Config) *CatalogHandler {
	return &CatalogHandler{
		service: catalog.NewService(db, cfg),
		config:  cfg,
	}
}

// VARIANT ENDPOINTS

// UpsertVariant handles POST /variants
func (h *CatalogHandler) UpsertVariant(c *gin.Context) {
	var req catalog.UpsertVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	variant, err := h.service.UpsertVariant(middleware.SellerID(c), &req)
	if err != nil {
		h.writeCatalogError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Variant saved successfully",
		"data":    variant,
	})
}

// GetVariants handles GET /variants
func (h *CatalogHandler) GetVariants(c *gin.Context) {
	variants, err := h.service.GetVariants(middleware.SellerID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve variants",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Variants retrieved successfully",
		"data":    variants,
	})
}

// GetVariant handles GET /variants/:id
func (h *CatalogHandler) GetVariant(c *gin.Context) {
	variantID, ok := h.parseVariantID(c)
	if !ok {
		return
	}

	variant, err := h.service.GetVariant(middleware.SellerID(c), variantID)
	if err != nil {
		h.writeCatalogError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Variant retrieved successfully",
		"data":    variant,
	})
}

// GetVariantBySKU handles GET /variants/sku/:sku
func (h *CatalogHandler) GetVariantBySKU(c *gin.Context) {
	variant, err := h.service.GetVariantBySKU(middleware.SellerID(c), c.Param("sku"))
	if err != nil {
		h.writeCatalogError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Variant retrieved successfully",
		"data":    variant,
	})
}

// DeleteVariant handles DELETE /variants/:id
func (h *CatalogHandler) DeleteVariant(c *gin.Context) {
	variantID, ok := h.parseVariantID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteVariant(middleware.SellerID(c), variantID); err != nil {
		h.writeCatalogError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Variant deleted successfully",
	})
}

// COMPOSITION ENDPOINTS

// GetCompositions handles GET /variants/:id/compositions
func (h *CatalogHandler) GetCompositions(c *gin.Context) {
	variantID, ok := h.parseVariantID(c)
	if !ok {
		return
	}

	compositions, err := h.service.GetCompositions(middleware.SellerID(c), variantID)
	if err != nil {
		h.writeCatalogError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Compositions retrieved successfully",
		"data":    compositions,
	})
}

// SetComposition handles POST /compositions
func (h *CatalogHandler) SetComposition(c *gin.Context) {
	var req catalog.CompositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	composition, err := h.service.SetComposition(middleware.SellerID(c), &req)
	if err != nil {
		h.writeCatalogError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Composition saved successfully",
		"data":    composition,
	})
}

// RemoveComposition handles DELETE /compositions
func (h *CatalogHandler) RemoveComposition(c *gin.Context) {
	bundleSKU := c.Query("bundle_sku")
	componentSKU := c.Query("component_sku")
	if bundleSKU == "" || componentSKU == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "bundle_sku and component_sku query parameters are required",
		})
		return
	}

	if err := h.service.RemoveComposition(middleware.SellerID(c), bundleSKU, componentSKU); err != nil {
		h.writeCatalogError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Composition removed successfully",
	})
}

func (h *CatalogHandler) parseVariantID(c *gin.Context) (uint, bool) {
	variantID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid variant ID",
		})
		return 0, false
	}
	return uint(variantID), true
}

func (h *CatalogHandler) writeCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrVariantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, catalog.ErrVariantInUse),
		errors.Is(err, catalog.ErrKindChangeBlocked):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, catalog.ErrComponentIsBundle),
		errors.Is(err, catalog.ErrNotBundle),
		errors.Is(err, catalog.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to process catalog request",
		})
	}
}
