// internal/domain/inventory/alerts.go
package inventory

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/seller-dashboard-backend/internal/config"
	"github.com/your-org/seller-dashboard-backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// AlertNotifier delivers stock alerts out of band (email)
type AlertNotifier interface {
	SendStockAlert(ctx context.Context, alert *StockAlert, variant *catalog.Variant) error
}

// AlertManager checks variants against their reorder levels after balance
// drops and records low-stock / out-of-stock alerts, at most one unresolved
// alert per variant.
type AlertManager struct {
	store    Store
	config   *config.Config
	notifier AlertNotifier
	logger   *logrus.Logger
}

// NewAlertManager creates an alert manager; notifier may be nil to disable
// out-of-band notification.
func NewAlertManager(db *gorm.DB, cfg *config.Config, notifier AlertNotifier, logger *logrus.Logger) *AlertManager {
	return newAlertManager(NewStore(db), cfg, notifier, logger)
}

func newAlertManager(store Store, cfg *config.Config, notifier AlertNotifier, logger *logrus.Logger) *AlertManager {
	if logger == nil {
		logger = logrus.New()
	}
	return &AlertManager{
		store:    store,
		config:   cfg,
		notifier: notifier,
		logger:   logger,
	}
}

// CheckVariant creates an alert if the variant dropped to or below its
// reorder level. Alerting is best-effort: failures are logged, never
// propagated into the movement path.
func (m *AlertManager) CheckVariant(ctx context.Context, sellerID, variantID uint) {
	if err := m.checkVariant(ctx, sellerID, variantID); err != nil {
		m.logger.WithFields(logrus.Fields{
			"seller_id":  sellerID,
			"variant_id": variantID,
		}).WithError(err).Warn("stock alert check failed")
	}
}

func (m *AlertManager) checkVariant(ctx context.Context, sellerID, variantID uint) error {
	var alert *StockAlert
	var variant *catalog.Variant

	err := m.store.InTx(ctx, func(tx Store) error {
		var err error
		variant, err = tx.GetVariant(sellerID, variantID)
		if err != nil {
			return err
		}
		if variant.IsBundle() {
			return nil
		}

		hasExisting, err := tx.HasUnresolvedAlert(sellerID, variantID)
		if err != nil || hasExisting {
			return err
		}

		available := variant.AvailableStock()
		reorderLevel := variant.EffectiveReorderLevel(m.config.Inventory.DefaultReorderLevel)

		switch {
		case available <= 0:
			alert = &StockAlert{
				SellerID:  sellerID,
				VariantID: variantID,
				AlertType: "out_of_stock",
				Message:   fmt.Sprintf("Variant %s is out of stock", variant.SKU),
			}
		case available <= reorderLevel:
			alert = &StockAlert{
				SellerID:  sellerID,
				VariantID: variantID,
				AlertType: "low_stock",
				Message: fmt.Sprintf("Variant %s is running low (Available: %d, Reorder Level: %d)",
					variant.SKU, available, reorderLevel),
			}
		default:
			return nil
		}
		return tx.CreateAlert(alert)
	})
	if err != nil || alert == nil {
		return err
	}

	if m.notifier != nil && m.config.Inventory.AlertEmails {
		if err := m.notifier.SendStockAlert(ctx, alert, variant); err != nil {
			m.logger.WithField("variant_id", variantID).
				WithError(err).Warn("stock alert notification failed")
		}
	}
	return nil
}
