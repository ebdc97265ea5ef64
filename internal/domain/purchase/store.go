// internal/domain/purchase/store.go
package purchase

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/seller-dashboard-backend/internal/domain/inventory"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the persistence surface for purchase orders. As with stock takes,
// InTx exposes a transaction-bound inventory store so receiving can post its
// purchase movements atomically with the status change.
type Store interface {
	InTx(ctx context.Context, fn func(tx Store, inv inventory.Store) error) error

	CreateOrder(po *PurchaseOrder) error
	GetOrder(sellerID, orderID uint) (*PurchaseOrder, error)
	// GetOrderForUpdate locks the order row so two receives cannot race
	GetOrderForUpdate(sellerID, orderID uint) (*PurchaseOrder, error)
	ListOrders(sellerID uint, status OrderStatus, limit int) ([]PurchaseOrder, error)
	SaveOrder(po *PurchaseOrder) error
	GetItems(sellerID, orderID uint) ([]PurchaseOrderItem, error)
}

type gormStore struct {
	db *gorm.DB
}

// NewStore creates the gorm-backed store
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) InTx(ctx context.Context, fn func(tx Store, inv inventory.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx}, inventory.NewStore(tx))
	})
}

func (s *gormStore) CreateOrder(po *PurchaseOrder) error {
	if err := s.db.Create(po).Error; err != nil {
		return fmt.Errorf("failed to create purchase order: %w", err)
	}
	return nil
}

func (s *gormStore) GetOrder(sellerID, orderID uint) (*PurchaseOrder, error) {
	var po PurchaseOrder
	err := s.db.Preload("Items").
		Where("id = ? AND seller_id = ?", orderID, sellerID).
		First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to retrieve purchase order: %w", err)
	}
	return &po, nil
}

func (s *gormStore) GetOrderForUpdate(sellerID, orderID uint) (*PurchaseOrder, error) {
	var po PurchaseOrder
	err := s.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND seller_id = ?", orderID, sellerID).
		First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to lock purchase order: %w", err)
	}
	return &po, nil
}

func (s *gormStore) ListOrders(sellerID uint, status OrderStatus, limit int) ([]PurchaseOrder, error) {
	var orders []PurchaseOrder
	query := s.db.Where("seller_id = ?", sellerID).Order("id DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve purchase orders: %w", err)
	}
	return orders, nil
}

func (s *gormStore) SaveOrder(po *PurchaseOrder) error {
	if err := s.db.Omit("Items").Save(po).Error; err != nil {
		return fmt.Errorf("failed to save purchase order: %w", err)
	}
	return nil
}

func (s *gormStore) GetItems(sellerID, orderID uint) ([]PurchaseOrderItem, error) {
	var items []PurchaseOrderItem
	err := s.db.Where("seller_id = ? AND purchase_order_id = ?", sellerID, orderID).
		Order("variant_id").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve purchase order items: %w", err)
	}
	return items, nil
}
