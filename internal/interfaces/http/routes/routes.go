// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/seller-dashboard-backend/internal/config"
	"github.com/your-org/seller-dashboard-backend/internal/interfaces/http/handlers"
	"github.com/your-org/seller-dashboard-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// SetupRoutes wires every API route group. All routes are tenant-scoped:
// the JWT seller claim decides which ledger a request touches.
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	rg.Use(middleware.TenantMiddleware(cfg))

	setupCatalogRoutes(rg, db, cfg)
	setupInventoryRoutes(rg, db, cfg)
	setupStockTakeRoutes(rg, db, cfg)
	setupPurchaseOrderRoutes(rg, db, cfg)
}

// setupCatalogRoutes sets up variant and composition routes
func setupCatalogRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	catalogHandler := handlers.NewCatalogHandler(db, cfg)

	variants := rg.Group("/variants")
	{
		variants.GET("", catalogHandler.GetVariants)
		variants.POST("", catalogHandler.UpsertVariant)
		variants.GET("/sku/:sku", catalogHandler.GetVariantBySKU)
		variants.GET("/:id", catalogHandler.GetVariant)
		variants.DELETE("/:id", catalogHandler.DeleteVariant)
		variants.GET("/:id/compositions", catalogHandler.GetCompositions)
	}

	compositions := rg.Group("/compositions")
	{
		compositions.POST("", catalogHandler.SetComposition)
		compositions.DELETE("", catalogHandler.RemoveComposition)
	}
}

// setupInventoryRoutes sets up movement and ledger routes
func setupInventoryRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	inventoryHandler := handlers.NewInventoryHandler(db, cfg)

	inv := rg.Group("/inventory")
	{
		inv.POST("/movements", inventoryHandler.ApplyMovement)
		inv.POST("/adjustments", inventoryHandler.ApplyAdjustment)
		inv.GET("/movements/:variantId", inventoryHandler.GetMovements)
		inv.GET("/stock/:sku", inventoryHandler.GetAvailableStock)
		inv.GET("/replay/:variantId", inventoryHandler.ReplayBalance)
		inv.GET("/verify/:variantId", inventoryHandler.VerifyBalance)
		inv.POST("/reconcile/:variantId", inventoryHandler.ReconcileBalance)
		inv.POST("/unlock/:variantId", inventoryHandler.UnlockLedger)
	}
}

// setupStockTakeRoutes sets up stock take session routes
func setupStockTakeRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	stockTakeHandler := handlers.NewStockTakeHandler(db, cfg)

	stockTakes := rg.Group("/stock-takes")
	{
		stockTakes.POST("", stockTakeHandler.StartSession)
		stockTakes.GET("", stockTakeHandler.GetSessions)
		stockTakes.GET("/:id", stockTakeHandler.GetSession)
		stockTakes.PUT("/:id/counts", stockTakeHandler.RecordCount)
		stockTakes.GET("/:id/variance", stockTakeHandler.GetVariance)
		stockTakes.GET("/:id/variance/:variantId", stockTakeHandler.GetVarianceForVariant)
		stockTakes.POST("/:id/complete", stockTakeHandler.CompleteSession)
		stockTakes.POST("/:id/cancel", stockTakeHandler.CancelSession)
		stockTakes.GET("/:id/report", stockTakeHandler.DownloadVarianceReport)
	}
}

// setupPurchaseOrderRoutes sets up purchase order routes
func setupPurchaseOrderRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	purchaseHandler := handlers.NewPurchaseOrderHandler(db, cfg)

	orders := rg.Group("/purchase-orders")
	{
		orders.POST("", purchaseHandler.CreateOrder)
		orders.GET("", purchaseHandler.GetOrders)
		orders.GET("/:id", purchaseHandler.GetOrder)
		orders.PUT("/:id/status", purchaseHandler.UpdateStatus)
		orders.POST("/:id/receive", purchaseHandler.ReceiveOrder)
	}
}
