// internal/domain/inventory/ledger.go
package inventory

import (
	"context"

	"gorm.io/gorm"
)

// Ledger provides read and audit access to the append-only movement log.
// The core correctness property of the engine: replaying the log from empty
// must reproduce the cached warehouse balance exactly.
type Ledger struct {
	store Store
}

// NewLedger creates a ledger reader backed by the database
func NewLedger(db *gorm.DB) *Ledger {
	return newLedger(NewStore(db))
}

func newLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// VerifyResult reports a replay check against the cached balance
type VerifyResult struct {
	VariantID     uint `json:"variant_id"`
	CachedBalance int  `json:"cached_balance"`
	LedgerBalance int  `json:"ledger_balance"`
	Consistent    bool `json:"consistent"`
	// LedgerLocked reports whether the variant is now blocked for writes
	LedgerLocked bool `json:"ledger_locked"`
}

// Replay recomputes a variant's balance purely from the movement log
func (l *Ledger) Replay(ctx context.Context, sellerID, variantID uint) (int, error) {
	var sum int
	err := l.store.InTx(ctx, func(tx Store) error {
		if _, err := tx.GetVariant(sellerID, variantID); err != nil {
			return err
		}
		var err error
		sum, err = tx.SumMovements(sellerID, variantID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return sum, nil
}

// Verify replays the ledger under the variant's row lock and compares it to
// the cached balance. A mismatch is a data-integrity violation: the variant
// is locked against further writes until manually reconciled.
func (l *Ledger) Verify(ctx context.Context, sellerID, variantID uint) (*VerifyResult, error) {
	var result *VerifyResult
	err := l.store.InTx(ctx, func(tx Store) error {
		variant, err := tx.GetVariantForUpdate(sellerID, variantID)
		if err != nil {
			return err
		}
		sum, err := tx.SumMovements(sellerID, variantID)
		if err != nil {
			return err
		}

		result = &VerifyResult{
			VariantID:     variantID,
			CachedBalance: variant.WarehouseStock,
			LedgerBalance: sum,
			Consistent:    variant.WarehouseStock == sum,
			LedgerLocked:  variant.LedgerLocked,
		}
		if !result.Consistent && !variant.LedgerLocked {
			if err := tx.SetLedgerLocked(sellerID, variantID, true); err != nil {
				return err
			}
			result.LedgerLocked = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Unlock re-verifies a locked variant and lifts the write block when the
// cached balance matches the ledger again (after a manual correction).
func (l *Ledger) Unlock(ctx context.Context, sellerID, variantID uint) (*VerifyResult, error) {
	var result *VerifyResult
	err := l.store.InTx(ctx, func(tx Store) error {
		variant, err := tx.GetVariantForUpdate(sellerID, variantID)
		if err != nil {
			return err
		}
		sum, err := tx.SumMovements(sellerID, variantID)
		if err != nil {
			return err
		}

		result = &VerifyResult{
			VariantID:     variantID,
			CachedBalance: variant.WarehouseStock,
			LedgerBalance: sum,
			Consistent:    variant.WarehouseStock == sum,
			LedgerLocked:  variant.LedgerLocked,
		}
		if result.Consistent && variant.LedgerLocked {
			if err := tx.SetLedgerLocked(sellerID, variantID, false); err != nil {
				return err
			}
			result.LedgerLocked = false
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reconcile restores a locked variant by resetting the cached balance to
// the ledger sum (the ledger is the source of truth) and lifting the write
// block. This is the manual reconciliation path for drifted variants.
func (l *Ledger) Reconcile(ctx context.Context, sellerID, variantID uint) (*VerifyResult, error) {
	var result *VerifyResult
	err := l.store.InTx(ctx, func(tx Store) error {
		variant, err := tx.GetVariantForUpdate(sellerID, variantID)
		if err != nil {
			return err
		}
		sum, err := tx.SumMovements(sellerID, variantID)
		if err != nil {
			return err
		}

		if drift := sum - variant.WarehouseStock; drift != 0 {
			if err := tx.AddToBalance(sellerID, variantID, drift); err != nil {
				return err
			}
		}
		if variant.LedgerLocked {
			if err := tx.SetLedgerLocked(sellerID, variantID, false); err != nil {
				return err
			}
		}
		result = &VerifyResult{
			VariantID:     variantID,
			CachedBalance: sum,
			LedgerBalance: sum,
			Consistent:    true,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Movements lists recent ledger entries for a variant, newest first
func (l *Ledger) Movements(ctx context.Context, sellerID, variantID uint, limit int) ([]Movement, error) {
	var movements []Movement
	err := l.store.InTx(ctx, func(tx Store) error {
		if _, err := tx.GetVariant(sellerID, variantID); err != nil {
			return err
		}
		var err error
		movements, err = tx.ListMovements(sellerID, variantID, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return movements, nil
}
