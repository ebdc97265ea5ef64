// internal/domain/purchase/entity.go
package purchase

import (
	"time"
)

// OrderStatus represents the purchase order lifecycle
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusOrdered   OrderStatus = "ordered"
	OrderStatusReceived  OrderStatus = "received"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PurchaseOrder represents replenishment stock ordered from a supplier.
// Status machine: draft -> ordered -> received | cancelled. Receiving is the
// only path that touches balances, one purchase movement per line item.
type PurchaseOrder struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	SellerID     uint        `json:"seller_id" gorm:"not null;index"`
	Number       string      `json:"number" gorm:"uniqueIndex;not null;size:32"`
	Status       OrderStatus `json:"status" gorm:"not null;default:'draft';size:20"`
	SupplierName string      `json:"supplier_name" gorm:"size:255"`
	Notes        string      `json:"notes" gorm:"type:text"`
	CreatedBy    uint        `json:"created_by"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	OrderedAt    *time.Time  `json:"ordered_at,omitempty"`
	ReceivedAt   *time.Time  `json:"received_at,omitempty"`

	Items []PurchaseOrderItem `json:"items,omitempty" gorm:"foreignKey:PurchaseOrderID"`
}

// TableName returns the table name for PurchaseOrder model
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// PurchaseOrderItem is one ordered line: a simple variant and a quantity
type PurchaseOrderItem struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	SellerID        uint      `json:"seller_id" gorm:"not null;index"`
	PurchaseOrderID uint      `json:"purchase_order_id" gorm:"not null;uniqueIndex:idx_po_variant"`
	VariantID       uint      `json:"variant_id" gorm:"not null;uniqueIndex:idx_po_variant"`
	SKU             string    `json:"sku" gorm:"not null;size:100"`
	Quantity        int       `json:"quantity" gorm:"not null"`
	UnitCost        float64   `json:"unit_cost" gorm:"type:decimal(10,2)"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName returns the table name for PurchaseOrderItem model
func (PurchaseOrderItem) TableName() string {
	return "purchase_order_items"
}

// TotalCost is the order value across all lines
func (po *PurchaseOrder) TotalCost() float64 {
	total := 0.0
	for i := range po.Items {
		total += float64(po.Items[i].Quantity) * po.Items[i].UnitCost
	}
	return total
}

// TotalQuantity is the unit count across all lines
func (po *PurchaseOrder) TotalQuantity() int {
	total := 0
	for i := range po.Items {
		total += po.Items[i].Quantity
	}
	return total
}
