// internal/domain/catalog/entity.go
package catalog

import (
	"time"

	"gorm.io/gorm"
)

// VariantKind distinguishes independently stocked SKUs from composite ones
type VariantKind string

const (
	// VariantKindSimple is a SKU with its own physical, ledger-tracked stock
	VariantKindSimple VariantKind = "simple"
	// VariantKindBundle is a SKU sold as a fixed combination of simple SKUs;
	// its availability is always computed, never stored
	VariantKindBundle VariantKind = "bundle"
)

// Variant represents a purchasable unit owned by a seller
type Variant struct {
	ID       uint        `gorm:"primaryKey" json:"id"`
	SellerID uint        `gorm:"not null;uniqueIndex:idx_variants_seller_sku;index" json:"seller_id"`
	SKU      string      `gorm:"not null;size:100;uniqueIndex:idx_variants_seller_sku" json:"sku"`
	Name     string      `gorm:"not null;size:255" json:"name"`
	Kind     VariantKind `gorm:"not null;default:'simple'" json:"kind"`

	// WarehouseStock is the cached ledger balance. It is meaningful for
	// simple variants only and is mutated exclusively by the movement
	// applier; bundles keep it at zero.
	WarehouseStock int `gorm:"not null;default:0" json:"warehouse_stock"`
	// ReservedStock is quantity earmarked for orders but not yet shipped.
	ReservedStock int `gorm:"not null;default:0" json:"reserved_stock"`
	// ReorderLevel triggers low-stock alerts; 0 falls back to the
	// configured default.
	ReorderLevel int `gorm:"not null;default:0" json:"reorder_level"`

	// LedgerLocked blocks further movement writes after a replay mismatch
	// until the balance is manually reconciled.
	LedgerLocked bool `gorm:"not null;default:false" json:"ledger_locked"`

	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Components []Composition `gorm:"foreignKey:BundleID" json:"components,omitempty"`
}

// Composition is a directed edge bundle -> component with a per-set quantity.
// Components are always simple variants; the graph is a single level deep.
type Composition struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SellerID    uint      `gorm:"not null;index" json:"seller_id"`
	BundleID    uint      `gorm:"not null;uniqueIndex:idx_compositions_bundle_component" json:"bundle_id"`
	ComponentID uint      `gorm:"not null;uniqueIndex:idx_compositions_bundle_component" json:"component_id"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Bundle    Variant `gorm:"foreignKey:BundleID" json:"bundle,omitempty"`
	Component Variant `gorm:"foreignKey:ComponentID" json:"component,omitempty"`
}

// Entity methods

// Valid reports whether the kind is one of the known values
func (k VariantKind) Valid() bool {
	return k == VariantKindSimple || k == VariantKindBundle
}

// IsBundle reports whether the variant is a composite SKU
func (v *Variant) IsBundle() bool {
	return v.Kind == VariantKindBundle
}

// AvailableStock is the sellable on-hand quantity for a simple variant:
// warehouse stock minus reservations, never negative. Bundles have no
// stored balance; use the resolver instead.
func (v *Variant) AvailableStock() int {
	available := v.WarehouseStock - v.ReservedStock
	if available < 0 {
		return 0
	}
	return available
}

// EffectiveReorderLevel returns the variant's reorder level, falling back
// to the given default when unset
func (v *Variant) EffectiveReorderLevel(defaultLevel int) int {
	if v.ReorderLevel > 0 {
		return v.ReorderLevel
	}
	return defaultLevel
}
