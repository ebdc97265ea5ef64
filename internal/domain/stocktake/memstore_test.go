// internal/domain/stocktake/memstore_test.go
package stocktake

import (
	"context"
	"time"

	"github.com/your-org/seller-dashboard-backend/internal/config"
	"github.com/your-org/seller-dashboard-backend/internal/domain/catalog"
	"github.com/your-org/seller-dashboard-backend/internal/domain/inventory"
)

// memInv is a minimal in-memory inventory.Store for exercising the
// completion path without a database.
type memInv struct {
	variants    map[uint]*catalog.Variant
	movements   []inventory.Movement
	adjustments []inventory.StockAdjustment
	alerts      []inventory.StockAlert
	nextID      uint
}

func newMemInv() *memInv {
	return &memInv{variants: map[uint]*catalog.Variant{}, nextID: 1}
}

func (s *memInv) addVariant(v catalog.Variant) {
	copied := v
	s.variants[v.ID] = &copied
}

func (s *memInv) InTx(ctx context.Context, fn func(tx inventory.Store) error) error {
	return fn(s)
}

func (s *memInv) InSnapshot(ctx context.Context, fn func(tx inventory.Store) error) error {
	return fn(s)
}

func (s *memInv) GetVariantForUpdate(sellerID, variantID uint) (*catalog.Variant, error) {
	return s.GetVariant(sellerID, variantID)
}

func (s *memInv) GetVariantsForUpdate(sellerID uint, variantIDs []uint) ([]catalog.Variant, error) {
	var variants []catalog.Variant
	for _, id := range variantIDs {
		v, err := s.GetVariant(sellerID, id)
		if err != nil {
			return nil, err
		}
		variants = append(variants, *v)
	}
	return variants, nil
}

func (s *memInv) GetVariant(sellerID, variantID uint) (*catalog.Variant, error) {
	v, ok := s.variants[variantID]
	if !ok || v.SellerID != sellerID {
		return nil, inventory.ErrVariantNotFound
	}
	copied := *v
	return &copied, nil
}

func (s *memInv) GetVariantBySKU(sellerID uint, sku string) (*catalog.Variant, error) {
	for _, v := range s.variants {
		if v.SellerID == sellerID && v.SKU == sku {
			copied := *v
			return &copied, nil
		}
	}
	return nil, inventory.ErrVariantNotFound
}

func (s *memInv) GetCompositions(sellerID, bundleID uint) ([]catalog.Composition, error) {
	return nil, nil
}

func (s *memInv) AddToBalance(sellerID, variantID uint, delta int) error {
	v, ok := s.variants[variantID]
	if !ok || v.SellerID != sellerID {
		return inventory.ErrVariantNotFound
	}
	v.WarehouseStock += delta
	return nil
}

func (s *memInv) SetLedgerLocked(sellerID, variantID uint, locked bool) error {
	v, ok := s.variants[variantID]
	if !ok || v.SellerID != sellerID {
		return inventory.ErrVariantNotFound
	}
	v.LedgerLocked = locked
	return nil
}

func (s *memInv) CreateMovement(m *inventory.Movement) error {
	m.ID = s.nextID
	s.nextID++
	s.movements = append(s.movements, *m)
	return nil
}

func (s *memInv) CreateAdjustment(a *inventory.StockAdjustment) error {
	a.ID = s.nextID
	s.nextID++
	s.adjustments = append(s.adjustments, *a)
	return nil
}

func (s *memInv) HasMovementForRef(sellerID uint, movementType inventory.MovementType, refType string, refID uint) (bool, error) {
	for _, m := range s.movements {
		if m.SellerID == sellerID && m.Type == movementType &&
			m.ReferenceType == refType && m.ReferenceID == refID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memInv) SumMovements(sellerID, variantID uint) (int, error) {
	sum := 0
	for _, m := range s.movements {
		if m.SellerID == sellerID && m.VariantID == variantID {
			sum += m.Quantity
		}
	}
	return sum, nil
}

func (s *memInv) ListMovements(sellerID, variantID uint, limit int) ([]inventory.Movement, error) {
	var movements []inventory.Movement
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

func (s *memInv) HasUnresolvedAlert(sellerID, variantID uint) (bool, error) {
	return false, nil
}

func (s *memInv) CreateAlert(a *inventory.StockAlert) error {
	s.alerts = append(s.alerts, *a)
	return nil
}

// memStore is an in-memory Store for session and item state
type memStore struct {
	inv      *memInv
	sessions map[uint]*Session
	items    []Item
	nextID   uint
}

func newMemStore() *memStore {
	return &memStore{inv: newMemInv(), sessions: map[uint]*Session{}, nextID: 1}
}

func (s *memStore) InTx(ctx context.Context, fn func(tx Store, inv inventory.Store) error) error {
	return fn(s, s.inv)
}

func (s *memStore) CreateSession(session *Session) error {
	session.ID = s.nextID
	s.nextID++
	session.CreatedAt = time.Now()
	copied := *session
	s.sessions[session.ID] = &copied
	return nil
}

func (s *memStore) GetSession(sellerID, sessionID uint) (*Session, error) {
	session, ok := s.sessions[sessionID]
	if !ok || session.SellerID != sellerID {
		return nil, ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (s *memStore) GetSessionForUpdate(sellerID, sessionID uint) (*Session, error) {
	return s.GetSession(sellerID, sessionID)
}

func (s *memStore) ListSessions(sellerID uint, limit int) ([]Session, error) {
	var sessions []Session
	for id := s.nextID; id > 0; id-- {
		session, ok := s.sessions[id]
		if !ok || session.SellerID != sellerID {
			continue
		}
		sessions = append(sessions, *session)
		if limit > 0 && len(sessions) == limit {
			break
		}
	}
	return sessions, nil
}

func (s *memStore) SaveSession(session *Session) error {
	copied := *session
	s.sessions[session.ID] = &copied
	return nil
}

func (s *memStore) UpsertItem(item *Item) error {
	for i := range s.items {
		if s.items[i].SessionID == item.SessionID && s.items[i].VariantID == item.VariantID {
			item.ID = s.items[i].ID
			s.items[i] = *item
			return nil
		}
	}
	item.ID = s.nextID
	s.nextID++
	s.items = append(s.items, *item)
	return nil
}

func (s *memStore) DeleteItem(sellerID, sessionID, variantID uint) error {
	for i := range s.items {
		if s.items[i].SellerID == sellerID && s.items[i].SessionID == sessionID &&
			s.items[i].VariantID == variantID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *memStore) GetItems(sellerID, sessionID uint) ([]Item, error) {
	var items []Item
	for _, item := range s.items {
		if item.SellerID == sellerID && item.SessionID == sessionID {
			items = append(items, item)
		}
	}
	return items, nil
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
