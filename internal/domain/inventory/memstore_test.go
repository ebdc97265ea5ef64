// internal/domain/inventory/memstore_test.go
package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/your-org/seller-dashboard-backend/internal/config"
	"github.com/your-org/seller-dashboard-backend/internal/domain/catalog"
)

// memStore is an in-memory Store used to exercise the ledger engine's
// policies without a database. InTx serializes transactions behind one
// mutex and rolls the state back when fn fails, mirroring the atomicity
// the gorm store gets from real transactions.
type memStore struct {
	mu           sync.Mutex
	variants     map[uint]*catalog.Variant
	compositions []catalog.Composition
	movements    []Movement
	adjustments  []StockAdjustment
	alerts       []StockAlert
	nextID       uint
}

func newMemStore() *memStore {
	return &memStore{
		variants: make(map[uint]*catalog.Variant),
		nextID:   1,
	}
}

func (s *memStore) addVariant(v catalog.Variant) *catalog.Variant {
	s.variants[v.ID] = &v
	return s.variants[v.ID]
}

func (s *memStore) addComposition(sellerID, bundleID, componentID uint, qty int) {
	s.compositions = append(s.compositions, catalog.Composition{
		SellerID:    sellerID,
		BundleID:    bundleID,
		ComponentID: componentID,
		Quantity:    qty,
	})
}

func (s *memStore) snapshot() *memStore {
	clone := &memStore{
		variants:     make(map[uint]*catalog.Variant, len(s.variants)),
		compositions: append([]catalog.Composition(nil), s.compositions...),
		movements:    append([]Movement(nil), s.movements...),
		adjustments:  append([]StockAdjustment(nil), s.adjustments...),
		alerts:       append([]StockAlert(nil), s.alerts...),
		nextID:       s.nextID,
	}
	for id, v := range s.variants {
		copied := *v
		clone.variants[id] = &copied
	}
	return clone
}

func (s *memStore) restore(from *memStore) {
	s.variants = from.variants
	s.compositions = from.compositions
	s.movements = from.movements
	s.adjustments = from.adjustments
	s.alerts = from.alerts
	s.nextID = from.nextID
}

func (s *memStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(before)
		return err
	}
	return nil
}

// InSnapshot is equivalent to InTx here: the mutex already gives every
// in-memory transaction a stable view of the state.
func (s *memStore) InSnapshot(ctx context.Context, fn func(tx Store) error) error {
	return s.InTx(ctx, fn)
}

func (s *memStore) GetVariantForUpdate(sellerID, variantID uint) (*catalog.Variant, error) {
	return s.GetVariant(sellerID, variantID)
}

func (s *memStore) GetVariantsForUpdate(sellerID uint, variantIDs []uint) ([]catalog.Variant, error) {
	variants := make([]catalog.Variant, 0, len(variantIDs))
	for _, id := range variantIDs {
		v, err := s.GetVariant(sellerID, id)
		if err != nil {
			return nil, err
		}
		variants = append(variants, *v)
	}
	return variants, nil
}

func (s *memStore) GetVariant(sellerID, variantID uint) (*catalog.Variant, error) {
	v, ok := s.variants[variantID]
	if !ok || v.SellerID != sellerID {
		return nil, ErrVariantNotFound
	}
	copied := *v
	return &copied, nil
}

func (s *memStore) GetVariantBySKU(sellerID uint, sku string) (*catalog.Variant, error) {
	for _, v := range s.variants {
		if v.SellerID == sellerID && v.SKU == sku {
			copied := *v
			return &copied, nil
		}
	}
	return nil, ErrVariantNotFound
}

func (s *memStore) GetCompositions(sellerID, bundleID uint) ([]catalog.Composition, error) {
	var edges []catalog.Composition
	for _, edge := range s.compositions {
		if edge.SellerID == sellerID && edge.BundleID == bundleID {
			edges = append(edges, edge)
		}
	}
	return edges, nil
}

func (s *memStore) AddToBalance(sellerID, variantID uint, delta int) error {
	v, ok := s.variants[variantID]
	if !ok || v.SellerID != sellerID {
		return ErrVariantNotFound
	}
	v.WarehouseStock += delta
	return nil
}

func (s *memStore) SetLedgerLocked(sellerID, variantID uint, locked bool) error {
	v, ok := s.variants[variantID]
	if !ok || v.SellerID != sellerID {
		return ErrVariantNotFound
	}
	v.LedgerLocked = locked
	return nil
}

func (s *memStore) CreateMovement(m *Movement) error {
	m.ID = s.nextID
	s.nextID++
	m.CreatedAt = time.Now()
	s.movements = append(s.movements, *m)
	return nil
}

func (s *memStore) CreateAdjustment(a *StockAdjustment) error {
	a.ID = s.nextID
	s.nextID++
	s.adjustments = append(s.adjustments, *a)
	return nil
}

func (s *memStore) HasMovementForRef(sellerID uint, movementType MovementType, refType string, refID uint) (bool, error) {
	for _, m := range s.movements {
		if m.SellerID == sellerID && m.Type == movementType &&
			m.ReferenceType == refType && m.ReferenceID == refID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) SumMovements(sellerID, variantID uint) (int, error) {
	sum := 0
	for _, m := range s.movements {
		if m.SellerID == sellerID && m.VariantID == variantID {
			sum += m.Quantity
		}
	}
	return sum, nil
}

func (s *memStore) ListMovements(sellerID, variantID uint, limit int) ([]Movement, error) {
	var movements []Movement
	for i := len(s.movements) - 1; i >= 0; i-- {
		m := s.movements[i]
		if m.SellerID == sellerID && m.VariantID == variantID {
			movements = append(movements, m)
			if limit > 0 && len(movements) == limit {
				break
			}
		}
	}
	return movements, nil
}

func (s *memStore) HasUnresolvedAlert(sellerID, variantID uint) (bool, error) {
	for _, a := range s.alerts {
		if a.SellerID == sellerID && a.VariantID == variantID && !a.IsResolved {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) CreateAlert(a *StockAlert) error {
	a.ID = s.nextID
	s.nextID++
	s.alerts = append(s.alerts, *a)
	return nil
}

// movementsFor reads the committed movements for a variant, oldest first
func (s *memStore) movementsFor(variantID uint) []Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var movements []Movement
	for _, m := range s.movements {
		if m.VariantID == variantID {
			movements = append(movements, m)
		}
	}
	return movements
}

func testConfig() *config.Config {
	return &config.Config{
		Inventory: config.InventoryConfig{
			ApplyMaxRetries:     3,
			ApplyRetryBackoff:   time.Millisecond,
			StockTakeAutoAdjust: true,
			DefaultReorderLevel: 10,
		},
	}
}
