// internal/domain/inventory/alerts_test.go
package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/seller-dashboard-backend/internal/domain/catalog"
)

type recordingNotifier struct {
	sent []StockAlert
}

func (n *recordingNotifier) SendStockAlert(ctx context.Context, alert *StockAlert, variant *catalog.Variant) error {
	n.sent = append(n.sent, *alert)
	return nil
}

func TestAlertOnLowStock(t *testing.T) {
	store := newMemStore()
	variant := simpleVariant(1, "SKU-A", 8)
	variant.ReorderLevel = 5
	store.addVariant(variant)
	manager := newAlertManager(store, testConfig(), nil, nil)

	manager.CheckVariant(context.Background(), testSellerID, 1)

	require.Len(t, store.alerts, 1)
	assert.Equal(t, "low_stock", store.alerts[0].AlertType)
	assert.Equal(t, uint(1), store.alerts[0].VariantID)
}

func TestAlertOnOutOfStock(t *testing.T) {
	store := newMemStore()
	variant := simpleVariant(1, "SKU-A", 0)
	variant.ReorderLevel = 5
	store.addVariant(variant)
	manager := newAlertManager(store, testConfig(), nil, nil)

	manager.CheckVariant(context.Background(), testSellerID, 1)

	require.Len(t, store.alerts, 1)
	assert.Equal(t, "out_of_stock", store.alerts[0].AlertType)
}

func TestNoAlertAboveReorderLevel(t *testing.T) {
	store := newMemStore()
	variant := simpleVariant(1, "SKU-A", 50)
	variant.ReorderLevel = 5
	store.addVariant(variant)
	manager := newAlertManager(store, testConfig(), nil, nil)

	manager.CheckVariant(context.Background(), testSellerID, 1)

	assert.Empty(t, store.alerts)
}

func TestAlertUsesDefaultReorderLevel(t *testing.T) {
	store := newMemStore()
	// ReorderLevel 0 falls back to the configured default of 10
	store.addVariant(simpleVariant(1, "SKU-A", 9))
	manager := newAlertManager(store, testConfig(), nil, nil)

	manager.CheckVariant(context.Background(), testSellerID, 1)

	require.Len(t, store.alerts, 1)
	assert.Equal(t, "low_stock", store.alerts[0].AlertType)
}

func TestAlertDedupesUnresolved(t *testing.T) {
	store := newMemStore()
	variant := simpleVariant(1, "SKU-A", 2)
	variant.ReorderLevel = 5
	store.addVariant(variant)
	manager := newAlertManager(store, testConfig(), nil, nil)
	ctx := context.Background()

	manager.CheckVariant(ctx, testSellerID, 1)
	manager.CheckVariant(ctx, testSellerID, 1)

	assert.Len(t, store.alerts, 1)
}

func TestAlertSkipsBundles(t *testing.T) {
	store := newMemStore()
	store.addVariant(bundleVariant(10, "BUNDLE-AB"))
	manager := newAlertManager(store, testConfig(), nil, nil)

	manager.CheckVariant(context.Background(), testSellerID, 10)

	assert.Empty(t, store.alerts)
}

func TestAlertNotifiesWhenEnabled(t *testing.T) {
	store := newMemStore()
	variant := simpleVariant(1, "SKU-A", 1)
	variant.ReorderLevel = 5
	store.addVariant(variant)

	notifier := &recordingNotifier{}
	cfg := testConfig()
	cfg.Inventory.AlertEmails = true
	manager := newAlertManager(store, cfg, notifier, nil)

	manager.CheckVariant(context.Background(), testSellerID, 1)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "low_stock", notifier.sent[0].AlertType)
}

func TestSaleTriggersAlertCheck(t *testing.T) {
	store := newMemStore()
	variant := simpleVariant(1, "SKU-A", 12)
	variant.ReorderLevel = 5
	store.addVariant(variant)

	manager := newAlertManager(store, testConfig(), nil, nil)
	applier := newApplier(store, testConfig(), manager)

	_, err := applier.Apply(context.Background(), &ApplyRequest{
		SellerID: testSellerID, VariantID: 1, Type: MovementTypeSale, Quantity: -8,
	})
	require.NoError(t, err)

	require.Len(t, store.alerts, 1)
	assert.Equal(t, "low_stock", store.alerts[0].AlertType)
}

func TestBundleSaleChecksComponents(t *testing.T) {
	store := newMemStore()
	componentA := simpleVariant(1, "COMP-A", 10)
	componentA.ReorderLevel = 3
	store.addVariant(componentA)
	componentB := simpleVariant(2, "COMP-B", 50)
	componentB.ReorderLevel = 3
	store.addVariant(componentB)
	store.addVariant(bundleVariant(10, "BUNDLE-AB"))
	store.addComposition(testSellerID, 10, 1, 2)
	store.addComposition(testSellerID, 10, 2, 1)

	manager := newAlertManager(store, testConfig(), nil, nil)
	applier := newApplier(store, testConfig(), manager)

	_, err := applier.Apply(context.Background(), &ApplyRequest{
		SellerID: testSellerID, VariantID: 10, Type: MovementTypeSale, Quantity: -4,
	})
	require.NoError(t, err)

	// A fell to 2 (below its reorder level of 3), B stayed at 46
	require.Len(t, store.alerts, 1)
	assert.Equal(t, uint(1), store.alerts[0].VariantID)
	assert.Equal(t, "low_stock", store.alerts[0].AlertType)
}

func TestPurchaseDoesNotTriggerAlertCheck(t *testing.T) {
	store := newMemStore()
	variant := simpleVariant(1, "SKU-A", 1)
	variant.ReorderLevel = 5
	store.addVariant(variant)

	manager := newAlertManager(store, testConfig(), nil, nil)
	applier := newApplier(store, testConfig(), manager)

	_, err := applier.Apply(context.Background(), &ApplyRequest{
		SellerID: testSellerID, VariantID: 1, Type: MovementTypePurchase,
		Quantity: 2, ReferenceType: ReferenceTypePurchaseOrder, ReferenceID: 1,
	})
	require.NoError(t, err)

	assert.Empty(t, store.alerts, "alerts fire on balance drops only")
}
