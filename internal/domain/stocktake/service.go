// internal/domain/stocktake/service.go
package stocktake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/your-org/seller-dashboard-backend/internal/config"
	"github.com/your-org/seller-dashboard-backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// Stock take errors
var (
	ErrSessionNotFound     = errors.New("stock take session not found")
	ErrSessionNotActive    = errors.New("stock take session is no longer active")
	ErrNothingCounted      = errors.New("stock take session has no recorded counts")
	ErrVariantNotCountable = errors.New("bundles hold no physical stock and cannot be counted")
	ErrInvalidCount        = errors.New("counted stock cannot be negative")
)

// Service handles stock take business logic: session lifecycle, count
// capture and the reconciliation against system balances on completion.
type Service struct {
	store   Store
	applier *inventory.Applier
	config  *config.Config
}

// NewService creates a new stock take service
func NewService(db *gorm.DB, applier *inventory.Applier, cfg *config.Config) *Service {
	return newService(NewStore(db), applier, cfg)
}

func newService(store Store, applier *inventory.Applier, cfg *config.Config) *Service {
	return &Service{
		store:   store,
		applier: applier,
		config:  cfg,
	}
}

// CountRequest records or clears one physical count within a session.
// A nil CountedStock removes a previously recorded count.
type CountRequest struct {
	SellerID     uint   `json:"seller_id"`
	SessionID    uint   `json:"session_id"`
	VariantID    uint   `json:"variant_id"`
	CountedStock *int   `json:"counted_stock"`
	Notes        string `json:"notes,omitempty"`
	CountedBy    uint   `json:"counted_by,omitempty"`
}

// VarianceLine is one variant's counted-versus-system comparison
type VarianceLine struct {
	VariantID    uint   `json:"variant_id"`
	SKU          string `json:"sku"`
	SystemStock  int    `json:"system_stock"`
	CountedStock int    `json:"counted_stock"`
	Variance     int    `json:"variance"`
	Notes        string `json:"notes,omitempty"`
}

// VarianceReport summarizes a session's counts against system balances
type VarianceReport struct {
	Session           *Session       `json:"session"`
	Lines             []VarianceLine `json:"lines"`
	ItemsCounted      int            `json:"items_counted"`
	ItemsWithVariance int            `json:"items_with_variance"`
	TotalVariance     int            `json:"total_variance"`
}

// CompletionResult reports what completing a session changed
type CompletionResult struct {
	Session            *Session `json:"session"`
	AdjustmentsApplied int      `json:"adjustments_applied"`
	MovementIDs        []uint   `json:"movement_ids,omitempty"`
}

// StartSession opens a new counting session
func (s *Service) StartSession(ctx context.Context, sellerID uint, notes string, createdBy uint) (*Session, error) {
	session := &Session{
		SellerID:  sellerID,
		Code:      generateSessionCode(),
		Status:    SessionStatusInProgress,
		Notes:     notes,
		CreatedBy: createdBy,
	}
	err := s.store.InTx(ctx, func(tx Store, _ inventory.Store) error {
		return tx.CreateSession(session)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// RecordCount captures a physical count for one variant. The system balance
// is snapshotted at record time; re-counting the same variant overwrites the
// earlier figure, and a nil count removes it.
func (s *Service) RecordCount(ctx context.Context, req *CountRequest) (*Item, error) {
	if req.CountedStock != nil && *req.CountedStock < 0 {
		return nil, ErrInvalidCount
	}

	var item *Item
	err := s.store.InTx(ctx, func(tx Store, inv inventory.Store) error {
		session, err := tx.GetSessionForUpdate(req.SellerID, req.SessionID)
		if err != nil {
			return err
		}
		if !session.IsActive() {
			return ErrSessionNotActive
		}

		if req.CountedStock == nil {
			return tx.DeleteItem(req.SellerID, req.SessionID, req.VariantID)
		}

		variant, err := inv.GetVariant(req.SellerID, req.VariantID)
		if err != nil {
			return err
		}
		if variant.IsBundle() {
			return ErrVariantNotCountable
		}

		item = &Item{
			SellerID:     req.SellerID,
			SessionID:    req.SessionID,
			VariantID:    variant.ID,
			SKU:          variant.SKU,
			SystemStock:  variant.WarehouseStock,
			CountedStock: *req.CountedStock,
			Notes:        req.Notes,
			CountedBy:    req.CountedBy,
		}
		return tx.UpsertItem(item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Variance builds the counted-versus-system report for a session
func (s *Service) Variance(ctx context.Context, sellerID, sessionID uint) (*VarianceReport, error) {
	var report *VarianceReport
	err := s.store.InTx(ctx, func(tx Store, _ inventory.Store) error {
		session, err := tx.GetSession(sellerID, sessionID)
		if err != nil {
			return err
		}
		items, err := tx.GetItems(sellerID, sessionID)
		if err != nil {
			return err
		}
		report = buildVarianceReport(session, items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// VarianceFor returns the variance for a single variant, or nil when the
// variant has not been counted in this session.
func (s *Service) VarianceFor(ctx context.Context, sellerID, sessionID, variantID uint) (*int, error) {
	var variance *int
	err := s.store.InTx(ctx, func(tx Store, _ inventory.Store) error {
		if _, err := tx.GetSession(sellerID, sessionID); err != nil {
			return err
		}
		items, err := tx.GetItems(sellerID, sessionID)
		if err != nil {
			return err
		}
		for i := range items {
			if items[i].VariantID == variantID {
				v := items[i].Variance()
				variance = &v
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return variance, nil
}

// CompleteSession closes a session. When auto-adjust is enabled, every
// counted variance is posted as a ledger adjustment in the same transaction
// as the status change: either all corrections land or none do.
func (s *Service) CompleteSession(ctx context.Context, sellerID, sessionID, completedBy uint) (*CompletionResult, error) {
	var result *CompletionResult
	err := s.store.InTx(ctx, func(tx Store, inv inventory.Store) error {
		session, err := tx.GetSessionForUpdate(sellerID, sessionID)
		if err != nil {
			return err
		}
		if !session.IsActive() {
			return ErrSessionNotActive
		}

		items, err := tx.GetItems(sellerID, sessionID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrNothingCounted
		}

		result = &CompletionResult{}
		if s.config.Inventory.StockTakeAutoAdjust {
			for i := range items {
				item := &items[i]
				variance := item.Variance()
				if variance == 0 {
					continue
				}
				applied, err := s.applier.ApplyInTx(inv, &inventory.ApplyRequest{
					SellerID:      sellerID,
					VariantID:     item.VariantID,
					Type:          inventory.MovementTypeAdjustment,
					Quantity:      variance,
					ReferenceType: inventory.ReferenceTypeStockTake,
					ReferenceID:   session.ID,
					Note: fmt.Sprintf("stock take %s: counted %d, system %d",
						session.Code, item.CountedStock, item.SystemStock),
					CreatedBy: completedBy,
				})
				if err != nil {
					return err
				}
				result.AdjustmentsApplied++
				result.MovementIDs = append(result.MovementIDs, applied.MovementIDs...)
			}
		}

		now := time.Now()
		session.Status = SessionStatusCompleted
		session.CompletedAt = &now
		if err := tx.SaveSession(session); err != nil {
			return err
		}
		result.Session = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CancelSession abandons a session without touching any balances
func (s *Service) CancelSession(ctx context.Context, sellerID, sessionID uint) (*Session, error) {
	var session *Session
	err := s.store.InTx(ctx, func(tx Store, _ inventory.Store) error {
		var err error
		session, err = tx.GetSessionForUpdate(sellerID, sessionID)
		if err != nil {
			return err
		}
		if !session.IsActive() {
			return ErrSessionNotActive
		}
		session.Status = SessionStatusCancelled
		return tx.SaveSession(session)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession retrieves a session with its recorded counts
func (s *Service) GetSession(ctx context.Context, sellerID, sessionID uint) (*Session, error) {
	var session *Session
	err := s.store.InTx(ctx, func(tx Store, _ inventory.Store) error {
		var err error
		session, err = tx.GetSession(sellerID, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// GetSessions lists a seller's sessions, newest first
func (s *Service) GetSessions(ctx context.Context, sellerID uint, limit int) ([]Session, error) {
	var sessions []Session
	err := s.store.InTx(ctx, func(tx Store, _ inventory.Store) error {
		var err error
		sessions, err = tx.ListSessions(sellerID, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func buildVarianceReport(session *Session, items []Item) *VarianceReport {
	report := &VarianceReport{
		Session:      session,
		ItemsCounted: len(items),
	}
	for i := range items {
		item := &items[i]
		variance := item.Variance()
		report.Lines = append(report.Lines, VarianceLine{
			VariantID:    item.VariantID,
			SKU:          item.SKU,
			SystemStock:  item.SystemStock,
			CountedStock: item.CountedStock,
			Variance:     variance,
			Notes:        item.Notes,
		})
		if variance != 0 {
			report.ItemsWithVariance++
			report.TotalVariance += variance
		}
	}
	return report
}

// generateSessionCode builds a human-readable session code, e.g.
// ST-20260115-4F2A9C01
func generateSessionCode() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("ST-%s-%s", time.Now().Format("20060102"), suffix)
}
