// internal/domain/inventory/store.go
package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/your-org/seller-dashboard-backend/internal/domain/catalog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the persistence surface the ledger engine runs against. The gorm
// implementation below is the production path; tests substitute an in-memory
// fake. Methods that read balances for mutation take row locks and are only
// meaningful inside InTx.
type Store interface {
	// InTx runs fn inside one database transaction; the Store passed to fn
	// is bound to that transaction. The ledger append and the balance update
	// commit together or not at all.
	InTx(ctx context.Context, fn func(tx Store) error) error
	// InSnapshot runs fn inside a read-only repeatable-read transaction:
	// every read sees the same committed state, without taking row locks.
	// Multi-row reads that must be mutually consistent (bundle resolution)
	// go through here.
	InSnapshot(ctx context.Context, fn func(tx Store) error) error

	// GetVariantForUpdate loads a variant row under an exclusive lock,
	// serializing concurrent balance mutations per variant.
	GetVariantForUpdate(sellerID, variantID uint) (*catalog.Variant, error)
	// GetVariantsForUpdate locks several variants in ascending id order so
	// concurrent bundle operations sharing components cannot deadlock.
	GetVariantsForUpdate(sellerID uint, variantIDs []uint) ([]catalog.Variant, error)
	GetVariant(sellerID, variantID uint) (*catalog.Variant, error)
	GetVariantBySKU(sellerID uint, sku string) (*catalog.Variant, error)
	GetCompositions(sellerID, bundleID uint) ([]catalog.Composition, error)

	// AddToBalance applies a single-statement atomic increment to the cached
	// balance. Only the movement applier calls this.
	AddToBalance(sellerID, variantID uint, delta int) error
	SetLedgerLocked(sellerID, variantID uint, locked bool) error

	CreateMovement(m *Movement) error
	CreateAdjustment(a *StockAdjustment) error
	// HasMovementForRef reports whether any movement of the given type
	// already references (refType, refID): the idempotency lookup for
	// cancellations, restocks and purchase receipts.
	HasMovementForRef(sellerID uint, movementType MovementType, refType string, refID uint) (bool, error)
	SumMovements(sellerID, variantID uint) (int, error)
	ListMovements(sellerID, variantID uint, limit int) ([]Movement, error)

	HasUnresolvedAlert(sellerID, variantID uint) (bool, error)
	CreateAlert(a *StockAlert) error
}

// gormStore implements Store on top of *gorm.DB
type gormStore struct {
	db *gorm.DB
}

// NewStore creates the gorm-backed store
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func (s *gormStore) InSnapshot(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
}

func (s *gormStore) GetVariantForUpdate(sellerID, variantID uint) (*catalog.Variant, error) {
	var variant catalog.Variant
	err := s.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND seller_id = ?", variantID, sellerID).
		First(&variant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVariantNotFound
		}
		return nil, fmt.Errorf("failed to lock variant: %w", err)
	}
	return &variant, nil
}

func (s *gormStore) GetVariantsForUpdate(sellerID uint, variantIDs []uint) ([]catalog.Variant, error) {
	var variants []catalog.Variant
	err := s.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("seller_id = ? AND id IN ?", sellerID, variantIDs).
		Order("id").
		Find(&variants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock variants: %w", err)
	}
	if len(variants) != len(variantIDs) {
		return nil, ErrVariantNotFound
	}
	return variants, nil
}

func (s *gormStore) GetVariant(sellerID, variantID uint) (*catalog.Variant, error) {
	var variant catalog.Variant
	err := s.db.Where("id = ? AND seller_id = ?", variantID, sellerID).First(&variant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVariantNotFound
		}
		return nil, fmt.Errorf("failed to retrieve variant: %w", err)
	}
	return &variant, nil
}

func (s *gormStore) GetVariantBySKU(sellerID uint, sku string) (*catalog.Variant, error) {
	var variant catalog.Variant
	err := s.db.Where("seller_id = ? AND sku = ?", sellerID, sku).First(&variant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVariantNotFound
		}
		return nil, fmt.Errorf("failed to retrieve variant: %w", err)
	}
	return &variant, nil
}

func (s *gormStore) GetCompositions(sellerID, bundleID uint) ([]catalog.Composition, error) {
	var edges []catalog.Composition
	err := s.db.Where("seller_id = ? AND bundle_id = ?", sellerID, bundleID).
		Order("component_id").
		Find(&edges).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve compositions: %w", err)
	}
	return edges, nil
}

func (s *gormStore) AddToBalance(sellerID, variantID uint, delta int) error {
	result := s.db.Model(&catalog.Variant{}).
		Where("id = ? AND seller_id = ?", variantID, sellerID).
		UpdateColumn("warehouse_stock", gorm.Expr("warehouse_stock + ?", delta))
	if result.Error != nil {
		return fmt.Errorf("failed to update balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrVariantNotFound
	}
	return nil
}

func (s *gormStore) SetLedgerLocked(sellerID, variantID uint, locked bool) error {
	result := s.db.Model(&catalog.Variant{}).
		Where("id = ? AND seller_id = ?", variantID, sellerID).
		UpdateColumn("ledger_locked", locked)
	if result.Error != nil {
		return fmt.Errorf("failed to update ledger lock: %w", result.Error)
	}
	return nil
}

func (s *gormStore) CreateMovement(m *Movement) error {
	if err := s.db.Create(m).Error; err != nil {
		return fmt.Errorf("failed to record movement: %w", err)
	}
	return nil
}

func (s *gormStore) CreateAdjustment(a *StockAdjustment) error {
	if err := s.db.Create(a).Error; err != nil {
		return fmt.Errorf("failed to record adjustment: %w", err)
	}
	return nil
}

func (s *gormStore) HasMovementForRef(sellerID uint, movementType MovementType, refType string, refID uint) (bool, error) {
	var count int64
	err := s.db.Model(&Movement{}).
		Where("seller_id = ? AND type = ? AND reference_type = ? AND reference_id = ?",
			sellerID, movementType, refType, refID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check movement reference: %w", err)
	}
	return count > 0, nil
}

func (s *gormStore) SumMovements(sellerID, variantID uint) (int, error) {
	var total int64
	err := s.db.Model(&Movement{}).
		Where("seller_id = ? AND variant_id = ?", sellerID, variantID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum movements: %w", err)
	}
	return int(total), nil
}

func (s *gormStore) ListMovements(sellerID, variantID uint, limit int) ([]Movement, error) {
	var movements []Movement
	query := s.db.Where("seller_id = ? AND variant_id = ?", sellerID, variantID).
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&movements).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve movements: %w", err)
	}
	return movements, nil
}

func (s *gormStore) HasUnresolvedAlert(sellerID, variantID uint) (bool, error) {
	var count int64
	err := s.db.Model(&StockAlert{}).
		Where("seller_id = ? AND variant_id = ? AND is_resolved = ?", sellerID, variantID, false).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check alerts: %w", err)
	}
	return count > 0, nil
}

func (s *gormStore) CreateAlert(a *StockAlert) error {
	if err := s.db.Create(a).Error; err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}
