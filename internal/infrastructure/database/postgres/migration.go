// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/your-org/seller-dashboard-backend/internal/domain/catalog"
	"github.com/your-org/seller-dashboard-backend/internal/domain/inventory"
	"github.com/your-org/seller-dashboard-backend/internal/domain/purchase"
	"github.com/your-org/seller-dashboard-backend/internal/domain/stocktake"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		// Catalog domain - base tables
		&catalog.Variant{},
		&catalog.Composition{},

		// Inventory domain - ledger tables
		&inventory.Movement{},
		&inventory.StockAdjustment{},
		&inventory.StockAlert{},

		// Stock take domain
		&stocktake.Session{},
		&stocktake.Item{},

		// Purchasing domain
		&purchase.PurchaseOrder{},
		&purchase.PurchaseOrderItem{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// Variant indexes
		"CREATE INDEX IF NOT EXISTS idx_variants_seller_active ON variants(seller_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_variants_seller_kind ON variants(seller_id, kind)",
		"CREATE INDEX IF NOT EXISTS idx_variants_ledger_locked ON variants(ledger_locked) WHERE ledger_locked",

		// Movement indexes - the ledger is append-only and read by variant
		"CREATE INDEX IF NOT EXISTS idx_movements_seller_variant ON movements(seller_id, variant_id, id DESC)",
		"CREATE INDEX IF NOT EXISTS idx_movements_reference ON movements(seller_id, type, reference_type, reference_id)",
		// One credit per originating order, per variant: the database-level
		// backstop for cancellation/restock idempotency
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_movements_idempotent_ref ON movements(seller_id, variant_id, type, reference_type, reference_id) WHERE type IN ('cancellation', 'restock_cancelled') AND reference_id <> 0",
		"CREATE INDEX IF NOT EXISTS idx_movements_created_at ON movements(created_at DESC)",

		// Adjustment audit indexes
		"CREATE INDEX IF NOT EXISTS idx_stock_adjustments_variant ON stock_adjustments(seller_id, variant_id)",

		// Alert indexes
		"CREATE INDEX IF NOT EXISTS idx_stock_alerts_unresolved ON stock_alerts(seller_id, variant_id) WHERE NOT is_resolved",

		// Stock take indexes
		"CREATE INDEX IF NOT EXISTS idx_stock_take_sessions_status ON stock_take_sessions(seller_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_stock_take_items_session ON stock_take_items(session_id)",

		// Purchase order indexes
		"CREATE INDEX IF NOT EXISTS idx_purchase_orders_seller_status ON purchase_orders(seller_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_purchase_order_items_order ON purchase_order_items(purchase_order_id)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts development fixtures: one demo seller with a
// couple of simple variants and a bundle.
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	const demoSellerID = 1

	var count int64
	if err := m.db.Model(&catalog.Variant{}).
		Where("seller_id = ?", demoSellerID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check existing variants: %w", err)
	}
	if count > 0 {
		log.Println("Seed data already present, skipping")
		return nil
	}

	widget := catalog.Variant{
		SellerID: demoSellerID, SKU: "WIDGET-STD", Name: "Standard Widget",
		Kind: catalog.VariantKindSimple, ReorderLevel: 10, IsActive: true,
	}
	gadget := catalog.Variant{
		SellerID: demoSellerID, SKU: "GADGET-STD", Name: "Standard Gadget",
		Kind: catalog.VariantKindSimple, ReorderLevel: 5, IsActive: true,
	}
	bundle := catalog.Variant{
		SellerID: demoSellerID, SKU: "KIT-WIDGET-GADGET", Name: "Widget + Gadget Kit",
		Kind: catalog.VariantKindBundle, IsActive: true,
	}

	for _, v := range []*catalog.Variant{&widget, &gadget, &bundle} {
		if err := m.db.Create(v).Error; err != nil {
			return fmt.Errorf("failed to seed variant %s: %w", v.SKU, err)
		}
	}

	edges := []catalog.Composition{
		{SellerID: demoSellerID, BundleID: bundle.ID, ComponentID: widget.ID, Quantity: 2},
		{SellerID: demoSellerID, BundleID: bundle.ID, ComponentID: gadget.ID, Quantity: 1},
	}
	for _, edge := range edges {
		if err := m.db.Create(&edge).Error; err != nil {
			return fmt.Errorf("failed to seed composition: %w", err)
		}
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

// GetTableInfo logs row counts per table for development visibility
func (m *Migration) GetTableInfo() {
	tables := []string{
		"variants", "compositions", "movements", "stock_adjustments",
		"stock_alerts", "stock_take_sessions", "stock_take_items",
		"purchase_orders", "purchase_order_items",
	}

	log.Println("📊 Table row counts:")
	for _, table := range tables {
		var count int64
		if err := m.db.Table(table).Count(&count).Error; err != nil {
			log.Printf("  %s: error (%v)", table, err)
			continue
		}
		log.Printf("  %s: %d", table, count)
	}
}
