// internal/domain/inventory/resolver.go
package inventory

import (
	"context"

	"github.com/your-org/seller-dashboard-backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// Resolver computes virtual availability for composite SKUs. It is a pure
// read over the composition graph and component balances: no bundle-level
// value is ever persisted or cached, so the result always reflects the
// component balances at the instant of the call.
type Resolver struct {
	store Store
}

// NewResolver creates a bundle resolver backed by the database
func NewResolver(db *gorm.DB) *Resolver {
	return newResolver(NewStore(db))
}

func newResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolution explains how an availability figure was computed
type Resolution struct {
	VariantID uint                `json:"variant_id"`
	SKU       string              `json:"sku"`
	Kind      catalog.VariantKind `json:"kind"`
	Available int                 `json:"available"`
	// NoComposition marks a bundle without a recipe: availability 0 by
	// definition, not an error.
	NoComposition bool                    `json:"no_composition,omitempty"`
	Components    []ComponentAvailability `json:"components,omitempty"`
}

// ComponentAvailability is the per-component breakdown of a bundle resolution
type ComponentAvailability struct {
	VariantID        uint   `json:"variant_id"`
	SKU              string `json:"sku"`
	RequiredQuantity int    `json:"required_quantity"`
	AvailableStock   int    `json:"available_stock"`
	PossibleSets     int    `json:"possible_sets"`
}

// AvailableStock resolves the sellable quantity for a SKU, transparently
// handling bundles. The reads run inside one repeatable-read transaction
// so the component balances form a consistent snapshot without locking
// the rows against concurrent sales.
func (r *Resolver) AvailableStock(ctx context.Context, sellerID uint, sku string) (*Resolution, error) {
	var resolution *Resolution
	err := r.store.InSnapshot(ctx, func(tx Store) error {
		variant, err := tx.GetVariantBySKU(sellerID, sku)
		if err != nil {
			return err
		}

		if !variant.IsBundle() {
			resolution = &Resolution{
				VariantID: variant.ID,
				SKU:       variant.SKU,
				Kind:      variant.Kind,
				Available: variant.AvailableStock(),
			}
			return nil
		}

		edges, err := tx.GetCompositions(sellerID, variant.ID)
		if err != nil {
			return err
		}
		edges = validEdges(edges)

		resolution = &Resolution{
			VariantID: variant.ID,
			SKU:       variant.SKU,
			Kind:      variant.Kind,
		}
		if len(edges) == 0 {
			resolution.NoComposition = true
			return nil
		}

		available := -1
		for _, edge := range edges {
			component, err := tx.GetVariant(sellerID, edge.ComponentID)
			if err != nil {
				return err
			}
			sets := possibleSets(component.AvailableStock(), edge.Quantity)
			resolution.Components = append(resolution.Components, ComponentAvailability{
				VariantID:        component.ID,
				SKU:              component.SKU,
				RequiredQuantity: edge.Quantity,
				AvailableStock:   component.AvailableStock(),
				PossibleSets:     sets,
			})
			if available < 0 || sets < available {
				available = sets
			}
		}
		if available < 0 {
			available = 0
		}
		resolution.Available = available
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resolution, nil
}

// Pure bundle math, shared with the movement applier.

// possibleSets is floor(balance / required), never negative
func possibleSets(balance, required int) int {
	if required <= 0 || balance <= 0 {
		return 0
	}
	return balance / required
}

// availableSets is the bundle availability over locked component rows:
// the minimum of floor(available / required) across all components.
func availableSets(components []catalog.Variant, required map[uint]int) int {
	available := -1
	for i := range components {
		sets := possibleSets(components[i].AvailableStock(), required[components[i].ID])
		if available < 0 || sets < available {
			available = sets
		}
	}
	if available < 0 {
		return 0
	}
	return available
}

// validEdges drops malformed composition rows (quantity below 1) instead of
// letting them zero out the whole bundle
func validEdges(edges []catalog.Composition) []catalog.Composition {
	valid := edges[:0:0]
	for _, edge := range edges {
		if edge.Quantity >= 1 {
			valid = append(valid, edge)
		}
	}
	return valid
}
