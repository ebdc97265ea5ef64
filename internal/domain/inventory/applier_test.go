// internal/domain/inventory/applier_test.go
package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/seller-dashboard-backend/internal/domain/catalog"
)

const testSellerID = uint(7)

func simpleVariant(id uint, sku string, stock int) catalog.Variant {
	return catalog.Variant{
		ID:             id,
		SellerID:       testSellerID,
		SKU:            sku,
		Name:           sku,
		Kind:           catalog.VariantKindSimple,
		WarehouseStock: stock,
		IsActive:       true,
	}
}

func bundleVariant(id uint, sku string) catalog.Variant {
	return catalog.Variant{
		ID:       id,
		SellerID: testSellerID,
		SKU:      sku,
		Name:     sku,
		Kind:     catalog.VariantKindBundle,
		IsActive: true,
	}
}

func TestValidateApplyRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     ApplyRequest
		wantErr bool
	}{
		{"zero quantity", ApplyRequest{Type: MovementTypeSale, Quantity: 0}, true},
		{"unknown type", ApplyRequest{Type: "transfer", Quantity: 1}, true},
		{"positive sale", ApplyRequest{Type: MovementTypeSale, Quantity: 5}, true},
		{"negative purchase", ApplyRequest{Type: MovementTypePurchase, Quantity: -5}, true},
		{"negative cancellation", ApplyRequest{Type: MovementTypeCancellation, Quantity: -1}, true},
		{"negative restock", ApplyRequest{Type: MovementTypeRestockCancelled, Quantity: -1}, true},
		{"valid sale", ApplyRequest{Type: MovementTypeSale, Quantity: -5}, false},
		{"valid purchase", ApplyRequest{Type: MovementTypePurchase, Quantity: 5}, false},
		{"negative adjustment", ApplyRequest{Type: MovementTypeAdjustment, Quantity: -3}, false},
		{"positive adjustment", ApplyRequest{Type: MovementTypeAdjustment, Quantity: 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateApplyRequest(&tt.req)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMovement)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplySaleClampsToAvailable(t *testing.T) {
	store := newMemStore()
	store.addVariant(simpleVariant(1, "SKU-A", 7))
	applier := newApplier(store, testConfig(), nil)

	result, err := applier.Apply(context.Background(), &ApplyRequest{
		SellerID:  testSellerID,
		VariantID: 1,
		Type:      MovementTypeSale,
		Quantity:  -10,
	})
	require.NoError(t, err)

	assert.True(t, result.Clamped)
	assert.Equal(t, -7, result.AppliedQuantity)
	assert.Equal(t, 0, result.NewBalance)

	movements := store.movementsFor(1)
	require.Len(t, movements, 1)
	assert.Equal(t, -7, movements[0].Quantity)
	assert.Equal(t, 7, movements[0].BalanceBefore)
	assert.Equal(t, 0, movements[0].BalanceAfter)
}

func TestApplySaleWithinAvailability(t *testing.T) {
	store := newMemStore()
	store.addVariant(simpleVariant(1, "SKU-A", 10))
	applier := newApplier(store, testConfig(), nil)

	result, err := applier.Apply(context.Background(), &ApplyRequest{
		SellerID:  testSellerID,
		VariantID: 1,
		Type:      MovementTypeSale,
		Quantity:  -4,
	})
	require.NoError(t, err)

	assert.False(t, result.Clamped)
	assert.Equal(t, -4, result.AppliedQuantity)
	assert.Equal(t, 6, result.NewBalance)
}

func TestApplySaleAgainstEmptyStockWritesNothing(t *testing.T) {
	store := newMemStore()
	store.addVariant(simpleVariant(1, "SKU-A", 0))
	applier := newApplier(store, testConfig(), nil)

	result, err := applier.Apply(context.Background(), &ApplyRequest{
		SellerID:  testSellerID,
		VariantID: 1,
		Type:      MovementTypeSale,
		Quantity:  -3,
	})
	require.NoError(t, err)

	assert.True(t, result.Clamped)
	assert.Equal(t, 0, result.AppliedQuantity)
	assert.Empty(t, result.MovementIDs)
	assert.Empty(t, store.movementsFor(1))
}

func TestApplySaleRespectsReservedStock(t *testing.T) {
	store := newMemStore()
	variant := simpleVariant(1, "SKU-A", 10)
	variant.ReservedStock = 4
	store.addVariant(variant)
	applier := newApplier(store, testConfig(), nil)

	result, err := applier.Apply(context.Background(), &ApplyRequest{
		SellerID:  testSellerID,
		VariantID: 1,
		Type:      MovementTypeSale,
		Quantity:  -10,
	})
	require.NoError(t, err)

	// Only warehouse minus reserved is sellable
	assert.True(t, result.Clamped)
	assert.Equal(t, -6, result.AppliedQuantity)
	assert.Equal(t, 4, result.NewBalance)
}

func TestApplyCancellationIsIdempotentPerOrder(t *testing.T) {
	store := newMemStore()
	store.addVariant(simpleVariant(1, "SKU-A", 10))
	applier := newApplier(store, testConfig(), nil)
	ctx := context.Background()

	_, err := applier.Apply(ctx, &ApplyRequest{
		SellerID: testSellerID, VariantID: 1, Type: MovementTypeSale,
		Quantity: -5, ReferenceType: ReferenceTypeOrder, ReferenceID: 42,
	})
	require.NoError(t, err)

	first, err := applier.Apply(ctx, &ApplyRequest{
		SellerID: testSellerID, VariantID: 1, Type: MovementTypeRestockCancelled,
		Quantity: 5, ReferenceType: ReferenceTypeOrder, ReferenceID: 42,
	})
	require.NoError(t, err)
	assert.False(t, first.AlreadyApplied)
	assert.Equal(t, 10, first.NewBalance)

	second, err := applier.Apply(ctx, &ApplyRequest{
		SellerID: testSellerID, VariantID: 1, Type: MovementTypeRestockCancelled,
		Quantity: 5, ReferenceType: ReferenceTypeOrder, ReferenceID: 42,
	})
	require.NoError(t, err)
	assert.True(t, second.AlreadyApplied)
	assert.Equal(t, 10, second.NewBalance)
	assert.Empty(t, second.MovementIDs)

	// One sale plus exactly one restock, no double credit
	assert.Len(t, store.movementsFor(1), 2)
}

func TestApplyAdjustmentRecordsAudit(t *testing.T) {
	store := newMemStore()
	store.addVariant(simpleVariant(1, "SKU-A", 12))
	applier := newApplier(store, testConfig(), nil)

	result, err := applier.Apply(context.Background(), &ApplyRequest{
		SellerID:  testSellerID,
		VariantID: 1,
		Type:      MovementTypeAdjustment,
		Quantity:  -3,
		Note:      "damaged in storage",
		CreatedBy: 9,
	})
	require.NoError(t, err)
	assert.Equal(t, 9, result.NewBalance)

	require.Len(t, store.adjustments, 1)
	audit := store.adjustments[0]
	assert.Equal(t, 12, audit.StockBefore)
	assert.Equal(t, -3, audit.QuantityAdjusted)
	assert.Equal(t, 9, audit.StockAfter)
	assert.Equal(t, "damaged in storage", audit.Reason)
	assert.Equal(t, result.MovementIDs[0], audit.MovementID)
}

func TestApplyPurchaseCreditsBalance(t *testing.T) {
	store := newMemStore()
	store.addVariant(simpleVariant(1, "SKU-A", 2))
	applier := newApplier(store, testConfig(), nil)

	result, err := applier.Apply(context.Background(), &ApplyRequest{
		SellerID: testSellerID, VariantID: 1, Type: MovementTypePurchase,
		Quantity: 5, ReferenceType: ReferenceTypePurchaseOrder, ReferenceID: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, result.NewBalance)
	assert.Equal(t, 5, result.AppliedQuantity)
}

func TestApplyRefusesLockedLedger(t *testing.T) {
	store := newMemStore()
	variant := simpleVariant(1, "SKU-A", 5)
	variant.LedgerLocked = true
	store.addVariant(variant)
	applier := newApplier(store, testConfig(), nil)

	_, err := applier.Apply(context.Background(), &ApplyRequest{
		SellerID: testSellerID, VariantID: 1, Type: MovementTypeSale, Quantity: -1,
	})
	assert.ErrorIs(t, err, ErrLedgerLocked)
	assert.Empty(t, store.movementsFor(1))
}

func TestApplyBundleSaleDecomposesIntoComponents(t *testing.T) {
	store := newMemStore()
	store.addVariant(simpleVariant(1, "COMP-A", 5))
	store.addVariant(simpleVariant(2, "COMP-B", 2))
	store.addVariant(bundleVariant(10, "BUNDLE-AB"))
	store.addComposition(testSellerID, 10, 1, 2) // two of A per set
	store.addComposition(testSellerID, 10, 2, 1) // one of B per set
	applier := newApplier(store, testConfig(), nil)

	// availability = min(floor(5/2), floor(2/1)) = 2
	result, err := applier.Apply(context.Background(), &ApplyRequest{
		SellerID: testSellerID, VariantID: 10, Type: MovementTypeSale, Quantity: -2,
	})
	require.NoError(t, err)

	assert.False(t, result.Clamped)
	assert.Equal(t, -2, result.AppliedQuantity)
	assert.Equal(t, 0, result.NewBalance)
	require.Len(t, result.MovementIDs, 2)

	movementsA := store.movementsFor(1)
	require.Len(t, movementsA, 1)
	assert.Equal(t, -4, movementsA[0].Quantity)

	movementsB := store.movementsFor(2)
	require.Len(t, movementsB, 1)
	assert.Equal(t, -2, movementsB[0].Quantity)

	// The bundle itself never gets a ledger row
	assert.Empty(t, store.movementsFor(10))
}

func TestApplyBundleSaleClampsToWeakestComponent(t *testing.T) {
	store := newMemStore()
	store.addVariant(simpleVariant(1, "COMP-A", 5))
	store.addVariant(simpleVariant(2, "COMP-B", 2))
	store.addVariant(bundleVariant(10, "BUNDLE-AB"))
	store.addComposition(testSellerID, 10, 1, 2)
	store.addComposition(testSellerID, 10, 2, 1)
	applier := newApplier(store, testConfig(), nil)

	result, err := applier.Apply(context.Background(), &ApplyRequest{
		SellerID: testSellerID, VariantID: 10, Type: MovementTypeSale, Quantity: -5,
	})
	require.NoError(t, err)

	assert.True(t, result.Clamped)
	assert.Equal(t, -2, result.AppliedQuantity)
}

func TestApplyBundleWithoutRecipeSellsNothing(t *testing.T) {
	store := newMemStore()
	store.addVariant(bundleVariant(10, "BUNDLE-EMPTY"))
	applier := newApplier(store, testConfig(), nil)

	result, err := applier.Apply(context.Background(), &ApplyRequest{
		SellerID: testSellerID, VariantID: 10, Type: MovementTypeSale, Quantity: -1,
	})
	require.NoError(t, err)

	assert.True(t, result.Clamped)
	assert.Equal(t, 0, result.AppliedQuantity)
	assert.Empty(t, result.MovementIDs)
}

func TestApplyBundleRejectsAdjustmentAndPurchase(t *testing.T) {
	store := newMemStore()
	store.addVariant(bundleVariant(10, "BUNDLE-AB"))
	applier := newApplier(store, testConfig(), nil)
	ctx := context.Background()

	_, err := applier.Apply(ctx, &ApplyRequest{
		SellerID: testSellerID, VariantID: 10, Type: MovementTypeAdjustment, Quantity: 5,
	})
	assert.ErrorIs(t, err, ErrNotSimpleVariant)

	_, err = applier.Apply(ctx, &ApplyRequest{
		SellerID: testSellerID, VariantID: 10, Type: MovementTypePurchase, Quantity: 5,
	})
	assert.ErrorIs(t, err, ErrNotSimpleVariant)
}

func TestApplyBundleCancellationRestoresComponents(t *testing.T) {
	store := newMemStore()
	store.addVariant(simpleVariant(1, "COMP-A", 6))
	store.addVariant(simpleVariant(2, "COMP-B", 3))
	store.addVariant(bundleVariant(10, "BUNDLE-AB"))
	store.addComposition(testSellerID, 10, 1, 2)
	store.addComposition(testSellerID, 10, 2, 1)
	applier := newApplier(store, testConfig(), nil)
	ctx := context.Background()

	_, err := applier.Apply(ctx, &ApplyRequest{
		SellerID: testSellerID, VariantID: 10, Type: MovementTypeSale,
		Quantity: -3, ReferenceType: ReferenceTypeOrder, ReferenceID: 77,
	})
	require.NoError(t, err)

	restock, err := applier.Apply(ctx, &ApplyRequest{
		SellerID: testSellerID, VariantID: 10, Type: MovementTypeRestockCancelled,
		Quantity: 3, ReferenceType: ReferenceTypeOrder, ReferenceID: 77,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, restock.NewBalance)

	variantA, err := store.GetVariant(testSellerID, 1)
	require.NoError(t, err)
	assert.Equal(t, 6, variantA.WarehouseStock)

	// Retrying the restock is a no-op
	again, err := applier.Apply(ctx, &ApplyRequest{
		SellerID: testSellerID, VariantID: 10, Type: MovementTypeRestockCancelled,
		Quantity: 3, ReferenceType: ReferenceTypeOrder, ReferenceID: 77,
	})
	require.NoError(t, err)
	assert.True(t, again.AlreadyApplied)
	assert.Len(t, store.movementsFor(1), 2)
}

func TestLedgerConservation(t *testing.T) {
	store := newMemStore()
	store.addVariant(simpleVariant(1, "SKU-A", 0))
	applier := newApplier(store, testConfig(), nil)
	ctx := context.Background()

	requests := []*ApplyRequest{
		{Type: MovementTypePurchase, Quantity: 20, ReferenceType: ReferenceTypePurchaseOrder, ReferenceID: 1},
		{Type: MovementTypeSale, Quantity: -8, ReferenceType: ReferenceTypeOrder, ReferenceID: 2},
		{Type: MovementTypeAdjustment, Quantity: -1, Note: "breakage"},
		{Type: MovementTypeSale, Quantity: -30, ReferenceType: ReferenceTypeOrder, ReferenceID: 3}, // clamps
		{Type: MovementTypeRestockCancelled, Quantity: 8, ReferenceType: ReferenceTypeOrder, ReferenceID: 2},
	}
	for _, req := range requests {
		req.SellerID = testSellerID
		req.VariantID = 1
		_, err := applier.Apply(ctx, req)
		require.NoError(t, err)
	}

	variant, err := store.GetVariant(testSellerID, 1)
	require.NoError(t, err)
	sum, err := store.SumMovements(testSellerID, 1)
	require.NoError(t, err)
	assert.Equal(t, variant.WarehouseStock, sum,
		"replaying the ledger must reproduce the cached balance")
	assert.Equal(t, 8, variant.WarehouseStock)
}

func TestConcurrentSalesNeverOversell(t *testing.T) {
	store := newMemStore()
	store.addVariant(simpleVariant(1, "SKU-HOT", 10))
	applier := newApplier(store, testConfig(), nil)
	ctx := context.Background()

	const workers = 25
	var wg sync.WaitGroup
	applied := make([]int, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			result, err := applier.Apply(ctx, &ApplyRequest{
				SellerID: testSellerID, VariantID: 1,
				Type: MovementTypeSale, Quantity: -1,
			})
			if err == nil {
				applied[n] = -result.AppliedQuantity
			}
		}(i)
	}
	wg.Wait()

	total := 0
	for _, n := range applied {
		total += n
	}
	assert.Equal(t, 10, total, "post-clamp applied quantities must never exceed the initial balance")

	variant, err := store.GetVariant(testSellerID, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, variant.WarehouseStock)

	sum, err := store.SumMovements(testSellerID, 1)
	require.NoError(t, err)
	assert.Equal(t, variant.WarehouseStock, sum)
}

// tracingStore records the order of row-lock and dedupe calls so tests can
// pin down where the idempotency check runs relative to locking.
type tracingStore struct {
	*memStore
	calls *[]string
}

func (s *tracingStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	return s.memStore.InTx(ctx, func(Store) error {
		return fn(s)
	})
}

func (s *tracingStore) GetVariantForUpdate(sellerID, variantID uint) (*catalog.Variant, error) {
	*s.calls = append(*s.calls, "lock")
	return s.memStore.GetVariantForUpdate(sellerID, variantID)
}

func (s *tracingStore) GetVariantsForUpdate(sellerID uint, variantIDs []uint) ([]catalog.Variant, error) {
	*s.calls = append(*s.calls, "lock")
	return s.memStore.GetVariantsForUpdate(sellerID, variantIDs)
}

func (s *tracingStore) HasMovementForRef(sellerID uint, movementType MovementType, refType string, refID uint) (bool, error) {
	*s.calls = append(*s.calls, "dedupe")
	return s.memStore.HasMovementForRef(sellerID, movementType, refType, refID)
}

// The dedupe lookup must run after the variant row lock is taken: a
// concurrent retry that committed first becomes visible once the lock is
// acquired, so checking earlier would let both inserts through.
func TestRestockDedupeChecksUnderRowLock(t *testing.T) {
	t.Run("simple variant", func(t *testing.T) {
		mem := newMemStore()
		mem.addVariant(simpleVariant(1, "SKU-A", 10))
		var calls []string
		applier := newApplier(&tracingStore{memStore: mem, calls: &calls}, testConfig(), nil)

		_, err := applier.Apply(context.Background(), &ApplyRequest{
			SellerID: testSellerID, VariantID: 1, Type: MovementTypeRestockCancelled,
			Quantity: 5, ReferenceType: ReferenceTypeOrder, ReferenceID: 42,
		})
		require.NoError(t, err)

		require.Equal(t, []string{"lock", "dedupe"}, calls)
	})

	t.Run("bundle components", func(t *testing.T) {
		mem := newMemStore()
		mem.addVariant(simpleVariant(1, "SKU-A", 10))
		mem.addVariant(simpleVariant(2, "SKU-B", 10))
		mem.addVariant(bundleVariant(3, "BUNDLE-AB"))
		mem.addComposition(testSellerID, 3, 1, 2)
		mem.addComposition(testSellerID, 3, 2, 1)
		var calls []string
		applier := newApplier(&tracingStore{memStore: mem, calls: &calls}, testConfig(), nil)

		_, err := applier.Apply(context.Background(), &ApplyRequest{
			SellerID: testSellerID, VariantID: 3, Type: MovementTypeCancellation,
			Quantity: 2, ReferenceType: ReferenceTypeOrder, ReferenceID: 43,
		})
		require.NoError(t, err)

		require.Equal(t, []string{"lock", "dedupe"}, calls)
	})
}
