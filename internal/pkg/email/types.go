// internal/pkg/email/types.go
package email

// Email represents an email message
type Email struct {
	To          []string `json:"to"`
	Subject     string   `json:"subject"`
	HTMLContent string   `json:"html_content"`
}

// StockAlertData contains data for the stock alert template
type StockAlertData struct {
	CompanyName  string
	AlertType    string
	SKU          string
	VariantName  string
	Message      string
	Available    int
	ReorderLevel int
}
