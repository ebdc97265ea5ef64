// internal/domain/inventory/entity.go
package inventory

import (
	"time"

	"github.com/your-org/seller-dashboard-backend/internal/domain/catalog"
)

// MovementType represents the business event behind a ledger entry
type MovementType string

const (
	MovementTypeSale             MovementType = "sale"              // outbound, negative delta
	MovementTypeCancellation     MovementType = "cancellation"      // order cancelled before shipping, positive delta
	MovementTypeAdjustment       MovementType = "adjustment"        // manual correction, signed delta
	MovementTypePurchase         MovementType = "purchase"          // purchase-order receipt, positive delta
	MovementTypeRestockCancelled MovementType = "restock_cancelled" // returned goods from a cancelled order, positive delta
)

// Reference types recorded against movements
const (
	ReferenceTypeOrder         = "order"
	ReferenceTypePurchaseOrder = "purchase_order"
	ReferenceTypeStockTake     = "stock_take"
)

// Movement is one immutable ledger entry: a signed quantity delta applied to
// a variant's balance. Movements are never updated or deleted; a correction
// is a new movement with the opposite sign and a note linking the original.
type Movement struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	SellerID  uint         `gorm:"not null;index" json:"seller_id"`
	VariantID uint         `gorm:"not null;index" json:"variant_id"`
	Type      MovementType `gorm:"not null;size:30" json:"type"`
	// Quantity is the signed delta. Never zero.
	Quantity      int    `gorm:"not null" json:"quantity"`
	BalanceBefore int    `gorm:"not null" json:"balance_before"`
	BalanceAfter  int    `gorm:"not null" json:"balance_after"`
	ReferenceType string `gorm:"size:50;index:idx_movements_reference" json:"reference_type"`
	ReferenceID   uint   `gorm:"index:idx_movements_reference" json:"reference_id"`
	Note          string `gorm:"type:text" json:"note"`
	CreatedBy     uint   `gorm:"index" json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`

	// Relationships
	Variant catalog.Variant `gorm:"foreignKey:VariantID" json:"variant,omitempty"`
}

// StockAdjustment is the audit record paired 1:1 with every adjustment
// movement, capturing the before/after snapshot and the operator's reason.
type StockAdjustment struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	SellerID         uint      `gorm:"not null;index" json:"seller_id"`
	VariantID        uint      `gorm:"not null;index" json:"variant_id"`
	MovementID       uint      `gorm:"not null;uniqueIndex" json:"movement_id"`
	StockBefore      int       `gorm:"not null" json:"stock_before"`
	QuantityAdjusted int       `gorm:"not null" json:"quantity_adjusted"`
	StockAfter       int       `gorm:"not null" json:"stock_after"`
	Reason           string    `gorm:"type:text" json:"reason"`
	CreatedBy        uint      `gorm:"index" json:"created_by"`
	CreatedAt        time.Time `json:"created_at"`

	// Relationships
	Movement Movement `gorm:"foreignKey:MovementID" json:"movement,omitempty"`
}

// StockAlert represents low stock alerts
type StockAlert struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	SellerID   uint       `gorm:"not null;index" json:"seller_id"`
	VariantID  uint       `gorm:"not null;index" json:"variant_id"`
	AlertType  string     `gorm:"not null" json:"alert_type"` // "low_stock", "out_of_stock"
	Message    string     `gorm:"type:text" json:"message"`
	IsResolved bool       `gorm:"default:false" json:"is_resolved"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Entity methods

// IsInbound reports whether the movement type credits stock
func (t MovementType) IsInbound() bool {
	switch t {
	case MovementTypeCancellation, MovementTypePurchase, MovementTypeRestockCancelled:
		return true
	}
	return false
}

// Valid reports whether t is a known movement type
func (t MovementType) Valid() bool {
	switch t {
	case MovementTypeSale, MovementTypeCancellation, MovementTypeAdjustment,
		MovementTypePurchase, MovementTypeRestockCancelled:
		return true
	}
	return false
}
