// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/your-org/seller-dashboard-backend/internal/config"
	"github.com/your-org/seller-dashboard-backend/internal/domain/catalog"
	"github.com/your-org/seller-dashboard-backend/internal/domain/inventory"
)

const stockAlertTemplate = `
<html>
<body style="font-family: Arial, sans-serif;">
  <h2>{{.CompanyName}} - Stock Alert</h2>
  <p><strong>{{.AlertType}}</strong> for <strong>{{.SKU}}</strong> ({{.VariantName}})</p>
  <p>{{.Message}}</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><td>Available</td><td><strong>{{.Available}}</strong></td></tr>
    <tr><td>Reorder level</td><td>{{.ReorderLevel}}</td></tr>
  </table>
</body>
</html>`

// EmailService delivers operational notifications. It implements
// inventory.AlertNotifier for low-stock alerts.
type EmailService struct {
	config   *config.Config
	template *template.Template
	client   *http.Client
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		config:   cfg,
		template: template.Must(template.New("stock_alert").Parse(stockAlertTemplate)),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SendEmail sends an email using the configured provider
func (s *EmailService) SendEmail(ctx context.Context, email *Email) error {
	switch s.config.Email.Provider {
	case "smtp":
		return s.sendSMTPEmail(email)
	case "resend":
		return s.sendResendEmail(ctx, email)
	default:
		return fmt.Errorf("unsupported email provider: %s", s.config.Email.Provider)
	}
}

// SendStockAlert notifies the configured recipients about a low-stock or
// out-of-stock condition.
func (s *EmailService) SendStockAlert(ctx context.Context, alert *inventory.StockAlert, variant *catalog.Variant) error {
	if len(s.config.Email.AlertsTo) == 0 {
		return fmt.Errorf("no alert recipients configured")
	}

	data := StockAlertData{
		CompanyName:  s.config.App.CompanyName,
		AlertType:    alert.AlertType,
		SKU:          variant.SKU,
		VariantName:  variant.Name,
		Message:      alert.Message,
		Available:    variant.AvailableStock(),
		ReorderLevel: variant.EffectiveReorderLevel(s.config.Inventory.DefaultReorderLevel),
	}

	var body bytes.Buffer
	if err := s.template.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render stock alert template: %w", err)
	}

	return s.SendEmail(ctx, &Email{
		To:          s.config.Email.AlertsTo,
		Subject:     fmt.Sprintf("[%s] %s: %s", s.config.App.CompanyName, alert.AlertType, variant.SKU),
		HTMLContent: body.String(),
	})
}
