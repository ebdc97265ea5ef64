// internal/domain/catalog/service.go
package catalog

import (
	"errors"
	"fmt"

	"github.com/your-org/seller-dashboard-backend/internal/config"
	"gorm.io/gorm"
)

// Sentinel errors surfaced by catalog operations
var (
	ErrVariantNotFound   = errors.New("variant not found")
	ErrComponentIsBundle = errors.New("bundle components must be simple variants")
	ErrNotBundle         = errors.New("variant is not a bundle")
	ErrInvalidQuantity   = errors.New("composition quantity must be at least 1")
	ErrVariantInUse      = errors.New("variant is referenced by bundle compositions")
	ErrKindChangeBlocked = errors.New("variant kind cannot change while stock, ledger history or recipe edges exist")
)

// Service handles catalog business logic. The catalog owns variants and the
// composition graph; the inventory core consumes both read-only.
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new catalog service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// UpsertVariantRequest represents variant import data
type UpsertVariantRequest struct {
	SKU          string      `json:"sku" binding:"required"`
	Name         string      `json:"name" binding:"required"`
	Kind         VariantKind `json:"kind" binding:"required,oneof=simple bundle"`
	ReorderLevel int         `json:"reorder_level"`
}

// CompositionRequest represents a bundle recipe edge
type CompositionRequest struct {
	BundleSKU    string `json:"bundle_sku" binding:"required"`
	ComponentSKU string `json:"component_sku" binding:"required"`
	Quantity     int    `json:"quantity" binding:"required"`
}

// UpsertVariant creates a variant or updates an existing one by seller+SKU.
// The stock columns are never touched here; only the movement applier
// mutates balances.
func (s *Service) UpsertVariant(sellerID uint, req *UpsertVariantRequest) (*Variant, error) {
	var variant Variant
	err := s.db.Where("seller_id = ? AND sku = ?", sellerID, req.SKU).First(&variant).Error
	if err == gorm.ErrRecordNotFound {
		variant = Variant{
			SellerID:     sellerID,
			SKU:          req.SKU,
			Name:         req.Name,
			Kind:         req.Kind,
			ReorderLevel: req.ReorderLevel,
			IsActive:     true,
		}
		if err := s.db.Create(&variant).Error; err != nil {
			return nil, fmt.Errorf("failed to create variant: %w", err)
		}
		return &variant, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to check variant: %w", err)
	}

	if req.Kind != variant.Kind {
		if err := s.checkKindChange(sellerID, &variant); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{
		"name":          req.Name,
		"kind":          req.Kind,
		"reorder_level": req.ReorderLevel,
	}
	if err := s.db.Model(&variant).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update variant: %w", err)
	}
	return &variant, nil
}

// kindChangeAllowed is the kind-change policy: a simple variant with cached
// stock or ledger history cannot become a bundle (bundles never persist a
// balance), and a bundle with recipe edges cannot become simple.
func kindChangeAllowed(v *Variant, movements, recipeEdges int64) bool {
	if v.Kind == VariantKindSimple {
		return v.WarehouseStock == 0 && v.ReservedStock == 0 && movements == 0
	}
	return recipeEdges == 0
}

func (s *Service) checkKindChange(sellerID uint, variant *Variant) error {
	var movements, recipeEdges int64
	if variant.Kind == VariantKindSimple {
		// The ledger lives in the inventory package; count via the table to
		// keep the catalog free of an import cycle.
		if err := s.db.Table("movements").
			Where("seller_id = ? AND variant_id = ?", sellerID, variant.ID).
			Count(&movements).Error; err != nil {
			return fmt.Errorf("failed to check ledger history: %w", err)
		}
	} else {
		if err := s.db.Model(&Composition{}).
			Where("seller_id = ? AND bundle_id = ?", sellerID, variant.ID).
			Count(&recipeEdges).Error; err != nil {
			return fmt.Errorf("failed to check recipe edges: %w", err)
		}
	}
	if !kindChangeAllowed(variant, movements, recipeEdges) {
		return ErrKindChangeBlocked
	}
	return nil
}

// GetVariant retrieves a variant by ID scoped to a seller
func (s *Service) GetVariant(sellerID, variantID uint) (*Variant, error) {
	var variant Variant
	if err := s.db.Where("id = ? AND seller_id = ?", variantID, sellerID).First(&variant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVariantNotFound
		}
		return nil, fmt.Errorf("failed to retrieve variant: %w", err)
	}
	return &variant, nil
}

// GetVariantBySKU retrieves a variant by SKU scoped to a seller
func (s *Service) GetVariantBySKU(sellerID uint, sku string) (*Variant, error) {
	var variant Variant
	if err := s.db.Where("seller_id = ? AND sku = ?", sellerID, sku).First(&variant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVariantNotFound
		}
		return nil, fmt.Errorf("failed to retrieve variant: %w", err)
	}
	return &variant, nil
}

// GetVariants lists a seller's variants
func (s *Service) GetVariants(sellerID uint) ([]Variant, error) {
	var variants []Variant
	if err := s.db.Where("seller_id = ?", sellerID).Order("sku").Find(&variants).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve variants: %w", err)
	}
	return variants, nil
}

// DeleteVariant soft-deletes a variant. Movements referencing the variant
// are retained forever; the row becomes a tombstone, never a cascade.
// Deleting a component still referenced by a bundle recipe is rejected.
func (s *Service) DeleteVariant(sellerID, variantID uint) error {
	variant, err := s.GetVariant(sellerID, variantID)
	if err != nil {
		return err
	}

	var refs int64
	if err := s.db.Model(&Composition{}).
		Where("seller_id = ? AND component_id = ?", sellerID, variantID).
		Count(&refs).Error; err != nil {
		return fmt.Errorf("failed to check composition references: %w", err)
	}
	if refs > 0 {
		return ErrVariantInUse
	}

	if variant.IsBundle() {
		// A bundle's own recipe goes with it
		if err := s.db.Where("seller_id = ? AND bundle_id = ?", sellerID, variantID).
			Delete(&Composition{}).Error; err != nil {
			return fmt.Errorf("failed to remove bundle recipe: %w", err)
		}
	}

	if err := s.db.Delete(variant).Error; err != nil {
		return fmt.Errorf("failed to delete variant: %w", err)
	}
	return nil
}

// SetComposition creates or updates a bundle -> component edge. The bundle
// must be of bundle kind and the component must be simple (the composition
// graph is a single level deep).
func (s *Service) SetComposition(sellerID uint, req *CompositionRequest) (*Composition, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	bundle, err := s.GetVariantBySKU(sellerID, req.BundleSKU)
	if err != nil {
		return nil, err
	}
	if !bundle.IsBundle() {
		return nil, ErrNotBundle
	}

	component, err := s.GetVariantBySKU(sellerID, req.ComponentSKU)
	if err != nil {
		return nil, err
	}
	if component.IsBundle() {
		return nil, ErrComponentIsBundle
	}

	var edge Composition
	err = s.db.Where("seller_id = ? AND bundle_id = ? AND component_id = ?",
		sellerID, bundle.ID, component.ID).First(&edge).Error
	if err == gorm.ErrRecordNotFound {
		edge = Composition{
			SellerID:    sellerID,
			BundleID:    bundle.ID,
			ComponentID: component.ID,
			Quantity:    req.Quantity,
		}
		if err := s.db.Create(&edge).Error; err != nil {
			return nil, fmt.Errorf("failed to create composition: %w", err)
		}
		return &edge, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to check composition: %w", err)
	}

	if err := s.db.Model(&edge).Update("quantity", req.Quantity).Error; err != nil {
		return nil, fmt.Errorf("failed to update composition: %w", err)
	}
	return &edge, nil
}

// RemoveComposition deletes a bundle -> component edge
func (s *Service) RemoveComposition(sellerID uint, bundleSKU, componentSKU string) error {
	bundle, err := s.GetVariantBySKU(sellerID, bundleSKU)
	if err != nil {
		return err
	}
	component, err := s.GetVariantBySKU(sellerID, componentSKU)
	if err != nil {
		return err
	}

	result := s.db.Where("seller_id = ? AND bundle_id = ? AND component_id = ?",
		sellerID, bundle.ID, component.ID).Delete(&Composition{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove composition: %w", result.Error)
	}
	return nil
}

// GetCompositions retrieves the recipe for a bundle
func (s *Service) GetCompositions(sellerID, bundleID uint) ([]Composition, error) {
	var edges []Composition
	if err := s.db.Where("seller_id = ? AND bundle_id = ?", sellerID, bundleID).
		Find(&edges).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve compositions: %w", err)
	}
	return edges, nil
}
