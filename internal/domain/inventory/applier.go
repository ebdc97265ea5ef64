// internal/domain/inventory/applier.go
package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/your-org/seller-dashboard-backend/internal/config"
	"github.com/your-org/seller-dashboard-backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// Applier is the single authorized mutation path for variant balances. Every
// apply runs as one transaction: lock the variant row, append the ledger
// movement, bump the cached balance, commit. Recomputing the balance from
// the ledger must always reproduce the cached value.
type Applier struct {
	store  Store
	config *config.Config
	alerts *AlertManager
}

// NewApplier creates a movement applier backed by the database
func NewApplier(db *gorm.DB, cfg *config.Config, alerts *AlertManager) *Applier {
	return newApplier(NewStore(db), cfg, alerts)
}

func newApplier(store Store, cfg *config.Config, alerts *AlertManager) *Applier {
	return &Applier{
		store:  store,
		config: cfg,
		alerts: alerts,
	}
}

// ApplyRequest represents a typed movement request
type ApplyRequest struct {
	SellerID  uint         `json:"seller_id"`
	VariantID uint         `json:"variant_id"`
	Type      MovementType `json:"type"`
	// Quantity is the signed delta: negative for sales, positive for
	// cancellations, restocks and purchases, either sign for adjustments.
	Quantity      int    `json:"quantity"`
	ReferenceType string `json:"reference_type,omitempty"`
	ReferenceID   uint   `json:"reference_id,omitempty"`
	Note          string `json:"note,omitempty"`
	CreatedBy     uint   `json:"created_by,omitempty"`
}

// ApplyResult reports what was actually applied
type ApplyResult struct {
	VariantID         uint   `json:"variant_id"`
	RequestedQuantity int    `json:"requested_quantity"`
	AppliedQuantity   int    `json:"applied_quantity"`
	// NewBalance is the cached balance for simple variants and the computed
	// availability for bundles.
	NewBalance int `json:"new_balance"`
	// Clamped signals partial fulfillment: the requested sale quantity
	// exceeded availability and was reduced. A business outcome, not an error.
	Clamped     bool `json:"clamped"`
	// AlreadyApplied signals an idempotent no-op: a movement for the same
	// reference and type already exists.
	AlreadyApplied bool   `json:"already_applied"`
	MovementIDs    []uint `json:"movement_ids"`
}

// Apply applies a movement in its own transaction, retrying bounded times on
// lock or serialization contention before surfacing ErrConcurrencyConflict.
func (a *Applier) Apply(ctx context.Context, req *ApplyRequest) (*ApplyResult, error) {
	if err := validateApplyRequest(req); err != nil {
		return nil, err
	}

	var result *ApplyResult
	var touched []uint

	var lastErr error
	for attempt := 0; attempt < a.config.Inventory.ApplyMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(a.config.Inventory.ApplyRetryBackoff):
			}
		}

		err := a.store.InTx(ctx, func(tx Store) error {
			var txErr error
			result, touched, txErr = a.applyOnce(tx, req)
			return txErr
		})
		if err == nil {
			a.checkAlerts(ctx, req.SellerID, touched)
			return result, nil
		}
		if !isRetryableTxError(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%w: %v", ErrConcurrencyConflict, lastErr)
}

// ApplyInTx applies a movement inside the caller's transaction. Used by
// flows that must commit several movements atomically, such as receiving a
// multi-line purchase order. The caller owns retries and alert checks.
func (a *Applier) ApplyInTx(tx Store, req *ApplyRequest) (*ApplyResult, error) {
	if err := validateApplyRequest(req); err != nil {
		return nil, err
	}
	result, _, err := a.applyOnce(tx, req)
	return result, err
}

// applyOnce executes the movement policy against a transaction-bound store.
// It returns the ids of variants whose balance went down, for alerting.
func (a *Applier) applyOnce(tx Store, req *ApplyRequest) (*ApplyResult, []uint, error) {
	variant, err := tx.GetVariant(req.SellerID, req.VariantID)
	if err != nil {
		return nil, nil, err
	}

	if variant.IsBundle() {
		switch req.Type {
		case MovementTypeSale, MovementTypeCancellation, MovementTypeRestockCancelled:
			return a.applyBundle(tx, req, variant)
		default:
			// Bundles carry no balance of their own; purchases and manual
			// adjustments target the physical components directly.
			return nil, nil, ErrNotSimpleVariant
		}
	}
	return a.applySimple(tx, req)
}

// applySimple serializes on the variant row and applies the per-type policy
func (a *Applier) applySimple(tx Store, req *ApplyRequest) (*ApplyResult, []uint, error) {
	variant, err := tx.GetVariantForUpdate(req.SellerID, req.VariantID)
	if err != nil {
		return nil, nil, err
	}
	if variant.LedgerLocked {
		return nil, nil, ErrLedgerLocked
	}

	// Idempotency guard: a second restock or cancellation for the same
	// originating order must not double-credit. Checked under the row lock
	// so a concurrent retry that committed first is visible here.
	if isIdempotentRef(req) {
		exists, err := tx.HasMovementForRef(req.SellerID, req.Type, req.ReferenceType, req.ReferenceID)
		if err != nil {
			return nil, nil, err
		}
		if exists {
			return &ApplyResult{
				VariantID:         variant.ID,
				RequestedQuantity: req.Quantity,
				NewBalance:        variant.WarehouseStock,
				AlreadyApplied:    true,
			}, nil, nil
		}
	}

	result := &ApplyResult{
		VariantID:         variant.ID,
		RequestedQuantity: req.Quantity,
	}

	delta := req.Quantity
	if req.Type == MovementTypeSale {
		requested := -req.Quantity
		applied, clamped := clampSale(requested, variant.AvailableStock())
		result.Clamped = clamped
		if applied == 0 {
			// Nothing available: no zero-quantity ledger rows
			result.NewBalance = variant.WarehouseStock
			return result, nil, nil
		}
		delta = -applied
	}

	movement := &Movement{
		SellerID:      req.SellerID,
		VariantID:     variant.ID,
		Type:          req.Type,
		Quantity:      delta,
		BalanceBefore: variant.WarehouseStock,
		BalanceAfter:  variant.WarehouseStock + delta,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		Note:          req.Note,
		CreatedBy:     req.CreatedBy,
	}
	if err := tx.CreateMovement(movement); err != nil {
		return nil, nil, err
	}
	if err := tx.AddToBalance(req.SellerID, variant.ID, delta); err != nil {
		return nil, nil, err
	}

	if req.Type == MovementTypeAdjustment {
		adjustment := &StockAdjustment{
			SellerID:         req.SellerID,
			VariantID:        variant.ID,
			MovementID:       movement.ID,
			StockBefore:      movement.BalanceBefore,
			QuantityAdjusted: delta,
			StockAfter:       movement.BalanceAfter,
			Reason:           req.Note,
			CreatedBy:        req.CreatedBy,
		}
		if err := tx.CreateAdjustment(adjustment); err != nil {
			return nil, nil, err
		}
	}

	result.AppliedQuantity = delta
	result.NewBalance = movement.BalanceAfter
	result.MovementIDs = []uint{movement.ID}

	var touched []uint
	if delta < 0 {
		touched = []uint{variant.ID}
	}
	return result, touched, nil
}

// applyBundle decomposes a bundle sale or restock into component movements.
// Components are locked in ascending id order so two bundles sharing a
// component cannot deadlock each other.
func (a *Applier) applyBundle(tx Store, req *ApplyRequest, bundle *catalog.Variant) (*ApplyResult, []uint, error) {
	edges, err := tx.GetCompositions(req.SellerID, bundle.ID)
	if err != nil {
		return nil, nil, err
	}
	edges = validEdges(edges)

	result := &ApplyResult{
		VariantID:         bundle.ID,
		RequestedQuantity: req.Quantity,
	}

	if len(edges) == 0 {
		// A bundle without a recipe cannot be fulfilled; availability is 0
		if req.Type == MovementTypeSale {
			result.Clamped = true
		}
		return result, nil, nil
	}

	ids := make([]uint, 0, len(edges))
	required := make(map[uint]int, len(edges))
	for _, edge := range edges {
		ids = append(ids, edge.ComponentID)
		required[edge.ComponentID] = edge.Quantity
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	components, err := tx.GetVariantsForUpdate(req.SellerID, ids)
	if err != nil {
		return nil, nil, err
	}
	for i := range components {
		if components[i].LedgerLocked {
			return nil, nil, ErrLedgerLocked
		}
	}

	// Dedupe under the component locks, same as the simple path
	if isIdempotentRef(req) {
		exists, err := tx.HasMovementForRef(req.SellerID, req.Type, req.ReferenceType, req.ReferenceID)
		if err != nil {
			return nil, nil, err
		}
		if exists {
			result.NewBalance = availableSets(components, required)
			result.AlreadyApplied = true
			return result, nil, nil
		}
	}

	sets := req.Quantity
	if req.Type == MovementTypeSale {
		requested := -req.Quantity
		available := availableSets(components, required)
		applied, clamped := clampSale(requested, available)
		result.Clamped = clamped
		if applied == 0 {
			return result, nil, nil
		}
		sets = -applied
	}

	note := req.Note
	if note == "" {
		note = fmt.Sprintf("bundle %s x%d", bundle.SKU, abs(sets))
	} else {
		note = fmt.Sprintf("%s (bundle %s)", note, bundle.SKU)
	}

	var touched []uint
	for i := range components {
		component := &components[i]
		delta := sets * required[component.ID]

		movement := &Movement{
			SellerID:      req.SellerID,
			VariantID:     component.ID,
			Type:          req.Type,
			Quantity:      delta,
			BalanceBefore: component.WarehouseStock,
			BalanceAfter:  component.WarehouseStock + delta,
			ReferenceType: req.ReferenceType,
			ReferenceID:   req.ReferenceID,
			Note:          note,
			CreatedBy:     req.CreatedBy,
		}
		if err := tx.CreateMovement(movement); err != nil {
			return nil, nil, err
		}
		if err := tx.AddToBalance(req.SellerID, component.ID, delta); err != nil {
			return nil, nil, err
		}
		component.WarehouseStock += delta
		result.MovementIDs = append(result.MovementIDs, movement.ID)
		if delta < 0 {
			touched = append(touched, component.ID)
		}
	}

	result.AppliedQuantity = sets
	result.NewBalance = availableSets(components, required)
	return result, touched, nil
}

// isIdempotentRef reports whether the request carries a reference the
// ledger deduplicates on: one credit per originating order, ever.
func isIdempotentRef(req *ApplyRequest) bool {
	return req.ReferenceID != 0 &&
		(req.Type == MovementTypeCancellation || req.Type == MovementTypeRestockCancelled)
}

func (a *Applier) checkAlerts(ctx context.Context, sellerID uint, variantIDs []uint) {
	if a.alerts == nil {
		return
	}
	for _, id := range variantIDs {
		a.alerts.CheckVariant(ctx, sellerID, id)
	}
}

// validateApplyRequest rejects malformed deltas before any write
func validateApplyRequest(req *ApplyRequest) error {
	if !req.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidMovement, req.Type)
	}
	if req.Quantity == 0 {
		return ErrInvalidMovement
	}
	switch req.Type {
	case MovementTypeSale:
		if req.Quantity > 0 {
			return fmt.Errorf("%w: sale quantity must be negative", ErrInvalidMovement)
		}
	case MovementTypeCancellation, MovementTypePurchase, MovementTypeRestockCancelled:
		if req.Quantity < 0 {
			return fmt.Errorf("%w: %s quantity must be positive", ErrInvalidMovement, req.Type)
		}
	}
	return nil
}

// clampSale reduces a requested sale quantity to what is available instead
// of overselling. Both arguments and results are non-negative.
func clampSale(requested, available int) (applied int, clamped bool) {
	if available < 0 {
		available = 0
	}
	if requested > available {
		return available, true
	}
	return requested, false
}

// isRetryableTxError reports whether the transaction failed on lock or
// serialization contention worth retrying (postgres 40001 / 40P01).
func isRetryableTxError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "could not serialize access")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
