// internal/domain/inventory/ledger_test.go
package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerReplayMatchesBalance(t *testing.T) {
	store := newMemStore()
	store.addVariant(simpleVariant(1, "SKU-A", 0))
	applier := newApplier(store, testConfig(), nil)
	ledger := newLedger(store)
	ctx := context.Background()

	_, err := applier.Apply(ctx, &ApplyRequest{
		SellerID: testSellerID, VariantID: 1, Type: MovementTypePurchase,
		Quantity: 15, ReferenceType: ReferenceTypePurchaseOrder, ReferenceID: 1,
	})
	require.NoError(t, err)
	_, err = applier.Apply(ctx, &ApplyRequest{
		SellerID: testSellerID, VariantID: 1, Type: MovementTypeSale,
		Quantity: -6, ReferenceType: ReferenceTypeOrder, ReferenceID: 2,
	})
	require.NoError(t, err)

	sum, err := ledger.Replay(ctx, testSellerID, 1)
	require.NoError(t, err)
	assert.Equal(t, 9, sum)

	variant, err := store.GetVariant(testSellerID, 1)
	require.NoError(t, err)
	assert.Equal(t, variant.WarehouseStock, sum)
}

func TestLedgerReplayUnknownVariant(t *testing.T) {
	ledger := newLedger(newMemStore())

	_, err := ledger.Replay(context.Background(), testSellerID, 99)
	assert.ErrorIs(t, err, ErrVariantNotFound)
}

func TestLedgerVerifyConsistent(t *testing.T) {
	store := newMemStore()
	store.addVariant(simpleVariant(1, "SKU-A", 0))
	applier := newApplier(store, testConfig(), nil)
	ledger := newLedger(store)
	ctx := context.Background()

	_, err := applier.Apply(ctx, &ApplyRequest{
		SellerID: testSellerID, VariantID: 1, Type: MovementTypePurchase,
		Quantity: 5, ReferenceType: ReferenceTypePurchaseOrder, ReferenceID: 1,
	})
	require.NoError(t, err)

	result, err := ledger.Verify(ctx, testSellerID, 1)
	require.NoError(t, err)

	assert.True(t, result.Consistent)
	assert.False(t, result.LedgerLocked)
	assert.Equal(t, 5, result.CachedBalance)
	assert.Equal(t, 5, result.LedgerBalance)
}

func TestLedgerVerifyMismatchLocksVariant(t *testing.T) {
	store := newMemStore()
	store.addVariant(simpleVariant(1, "SKU-A", 0))
	applier := newApplier(store, testConfig(), nil)
	ledger := newLedger(store)
	ctx := context.Background()

	_, err := applier.Apply(ctx, &ApplyRequest{
		SellerID: testSellerID, VariantID: 1, Type: MovementTypePurchase,
		Quantity: 5, ReferenceType: ReferenceTypePurchaseOrder, ReferenceID: 1,
	})
	require.NoError(t, err)

	// Drift the cache behind the ledger's back
	require.NoError(t, store.AddToBalance(testSellerID, 1, 3))

	result, err := ledger.Verify(ctx, testSellerID, 1)
	require.NoError(t, err)

	assert.False(t, result.Consistent)
	assert.True(t, result.LedgerLocked)
	assert.Equal(t, 8, result.CachedBalance)
	assert.Equal(t, 5, result.LedgerBalance)

	// The locked variant refuses further movements
	_, err = applier.Apply(ctx, &ApplyRequest{
		SellerID: testSellerID, VariantID: 1, Type: MovementTypeSale, Quantity: -1,
	})
	assert.ErrorIs(t, err, ErrLedgerLocked)
}

func TestLedgerReconcileRestoresLockedVariant(t *testing.T) {
	store := newMemStore()
	store.addVariant(simpleVariant(1, "SKU-A", 0))
	applier := newApplier(store, testConfig(), nil)
	ledger := newLedger(store)
	ctx := context.Background()

	_, err := applier.Apply(ctx, &ApplyRequest{
		SellerID: testSellerID, VariantID: 1, Type: MovementTypePurchase,
		Quantity: 5, ReferenceType: ReferenceTypePurchaseOrder, ReferenceID: 1,
	})
	require.NoError(t, err)

	require.NoError(t, store.AddToBalance(testSellerID, 1, 3))
	_, err = ledger.Verify(ctx, testSellerID, 1)
	require.NoError(t, err)

	result, err := ledger.Reconcile(ctx, testSellerID, 1)
	require.NoError(t, err)

	assert.True(t, result.Consistent)
	assert.False(t, result.LedgerLocked)
	assert.Equal(t, 5, result.CachedBalance)

	variant, err := store.GetVariant(testSellerID, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, variant.WarehouseStock)
	assert.False(t, variant.LedgerLocked)

	// Writes work again after reconciliation
	_, err = applier.Apply(ctx, &ApplyRequest{
		SellerID: testSellerID, VariantID: 1, Type: MovementTypeSale, Quantity: -2,
	})
	assert.NoError(t, err)
}

func TestLedgerUnlockRequiresConsistency(t *testing.T) {
	store := newMemStore()
	variant := simpleVariant(1, "SKU-A", 4)
	variant.LedgerLocked = true
	store.addVariant(variant)
	ledger := newLedger(store)
	ctx := context.Background()

	// Cache says 4 but the ledger is empty: stays locked
	result, err := ledger.Unlock(ctx, testSellerID, 1)
	require.NoError(t, err)
	assert.False(t, result.Consistent)
	assert.True(t, result.LedgerLocked)

	// Correct the cache manually, then unlock succeeds
	require.NoError(t, store.AddToBalance(testSellerID, 1, -4))
	result, err = ledger.Unlock(ctx, testSellerID, 1)
	require.NoError(t, err)
	assert.True(t, result.Consistent)
	assert.False(t, result.LedgerLocked)
}

func TestLedgerMovementsNewestFirst(t *testing.T) {
	store := newMemStore()
	store.addVariant(simpleVariant(1, "SKU-A", 0))
	applier := newApplier(store, testConfig(), nil)
	ledger := newLedger(store)
	ctx := context.Background()

	_, err := applier.Apply(ctx, &ApplyRequest{
		SellerID: testSellerID, VariantID: 1, Type: MovementTypePurchase,
		Quantity: 10, ReferenceType: ReferenceTypePurchaseOrder, ReferenceID: 1,
	})
	require.NoError(t, err)
	_, err = applier.Apply(ctx, &ApplyRequest{
		SellerID: testSellerID, VariantID: 1, Type: MovementTypeSale,
		Quantity: -2, ReferenceType: ReferenceTypeOrder, ReferenceID: 2,
	})
	require.NoError(t, err)

	movements, err := ledger.Movements(ctx, testSellerID, 1, 10)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, MovementTypeSale, movements[0].Type)
	assert.Equal(t, MovementTypePurchase, movements[1].Type)

	limited, err := ledger.Movements(ctx, testSellerID, 1, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
