// internal/domain/stocktake/store.go
package stocktake

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/seller-dashboard-backend/internal/domain/inventory"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the persistence surface for counting sessions. InTx hands the
// callback a transaction-bound inventory store as well, so completing a
// session can post its adjustments atomically with the status change.
type Store interface {
	InTx(ctx context.Context, fn func(tx Store, inv inventory.Store) error) error

	CreateSession(s *Session) error
	GetSession(sellerID, sessionID uint) (*Session, error)
	// GetSessionForUpdate locks the session row so two completions cannot
	// race each other.
	GetSessionForUpdate(sellerID, sessionID uint) (*Session, error)
	ListSessions(sellerID uint, limit int) ([]Session, error)
	SaveSession(s *Session) error

	UpsertItem(item *Item) error
	DeleteItem(sellerID, sessionID, variantID uint) error
	GetItems(sellerID, sessionID uint) ([]Item, error)
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

func (s *gormStore) CreateSession(session *Session) error {
	if err := s.db.Create(session).Error; err != nil {
		return fmt.Errorf("failed to create stock take session: %w", err)
	}
	return nil
}

func (s *gormStore) GetSession(sellerID, sessionID uint) (*Session, error) {
	var session Session
	err := s.db.Preload("Items").
		Where("id = ? AND seller_id = ?", sessionID, sellerID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to retrieve stock take session: %w", err)
	}
	return &session, nil
}

func (s *gormStore) GetSessionForUpdate(sellerID, sessionID uint) (*Session, error) {
	var session Session
	err := s.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND seller_id = ?", sessionID, sellerID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to lock stock take session: %w", err)
	}
	return &session, nil
}

func (s *gormStore) ListSessions(sellerID uint, limit int) ([]Session, error) {
	var sessions []Session
	query := s.db.Where("seller_id = ?", sellerID).Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve stock take sessions: %w", err)
	}
	return sessions, nil
}

func (s *gormStore) SaveSession(session *Session) error {
	if err := s.db.Save(session).Error; err != nil {
		return fmt.Errorf("failed to save stock take session: %w", err)
	}
	return nil
}

func (s *gormStore) UpsertItem(item *Item) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}, {Name: "variant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"system_stock", "counted_stock", "notes", "counted_by", "updated_at",
		}),
	}).Create(item).Error
	if err != nil {
		return fmt.Errorf("failed to record count: %w", err)
	}
	return nil
}

func (s *gormStore) DeleteItem(sellerID, sessionID, variantID uint) error {
	err := s.db.Where("seller_id = ? AND session_id = ? AND variant_id = ?",
		sellerID, sessionID, variantID).
		Delete(&Item{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete count: %w", err)
	}
	return nil
}

func (s *gormStore) GetItems(sellerID, sessionID uint) ([]Item, error) {
	var items []Item
	err := s.db.Where("seller_id = ? AND session_id = ?", sellerID, sessionID).
		Order("variant_id").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve counts: %w", err)
	}
	return items, nil
}
