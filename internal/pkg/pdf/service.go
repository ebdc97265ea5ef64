// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/seller-dashboard-backend/internal/config"
	"github.com/your-org/seller-dashboard-backend/internal/domain/stocktake"
)

// Service handles PDF generation
type Service struct {
	config *config.Config
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// GenerateVarianceReport renders a stock take variance report as a PDF
func (s *Service) GenerateVarianceReport(report *stocktake.VarianceReport) (*bytes.Buffer, error) {
	data := VarianceReportData{
		Report:     report,
		ReportDate: time.Now().Format("January 2, 2006"),
		Company: CompanyInfo{
			Name:    s.config.App.CompanyName,
			Address: s.config.App.CompanyAddress,
			Email:   s.config.App.CompanyEmail,
		},
	}

	htmlContent, err := s.generateHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// generateHTML generates HTML content from template
func (s *Service) generateHTML(data VarianceReportData) (string, error) {
	tmpl := template.Must(template.New("variance_report").Parse(varianceReportTemplate))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// VarianceReportData represents the data passed to the report template
type VarianceReportData struct {
	Report     *stocktake.VarianceReport `json:"report"`
	ReportDate string                    `json:"report_date"`
	Company    CompanyInfo               `json:"company"`
}

// CompanyInfo represents company information
type CompanyInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Email   string `json:"email"`
}

// Variance report HTML template
const varianceReportTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Stock Take {{.Report.Session.Code}}</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            margin: 0;
            padding: 20px;
            color: #333;
        }
        .header {
            display: flex;
            justify-content: space-between;
            margin-bottom: 30px;
            border-bottom: 2px solid #eee;
            padding-bottom: 20px;
        }
        .report-title {
            font-size: 28px;
            font-weight: bold;
            color: #2563eb;
            margin-bottom: 10px;
        }
        .summary {
            margin-bottom: 30px;
        }
        .summary td {
            padding: 5px 15px 5px 0;
        }
        table.lines {
            width: 100%;
            border-collapse: collapse;
        }
        table.lines th, table.lines td {
            border: 1px solid #ddd;
            padding: 8px;
            text-align: left;
        }
        table.lines th {
            background-color: #f3f4f6;
        }
        .variance-negative {
            color: #dc2626;
            font-weight: bold;
        }
        .variance-positive {
            color: #16a34a;
            font-weight: bold;
        }
    </style>
</head>
<body>
    <div class="header">
        <div>
            <div class="report-title">Stock Take Report</div>
            <div>{{.Company.Name}}</div>
            <div>{{.Company.Address}}</div>
            <div>{{.Company.Email}}</div>
        </div>
        <div>
            <div><strong>Session:</strong> {{.Report.Session.Code}}</div>
            <div><strong>Status:</strong> {{.Report.Session.Status}}</div>
            <div><strong>Date:</strong> {{.ReportDate}}</div>
        </div>
    </div>

    <table class="summary">
        <tr>
            <td><strong>Items counted</strong></td><td>{{.Report.ItemsCounted}}</td>
            <td><strong>Items with variance</strong></td><td>{{.Report.ItemsWithVariance}}</td>
            <td><strong>Total variance</strong></td><td>{{.Report.TotalVariance}}</td>
        </tr>
    </table>

    <table class="lines">
        <thead>
            <tr>
                <th>SKU</th>
                <th>System</th>
                <th>Counted</th>
                <th>Variance</th>
                <th>Notes</th>
            </tr>
        </thead>
        <tbody>
            {{range .Report.Lines}}
            <tr>
                <td>{{.SKU}}</td>
                <td>{{.SystemStock}}</td>
                <td>{{.CountedStock}}</td>
                <td class="{{if lt .Variance 0}}variance-negative{{else if gt .Variance 0}}variance-positive{{end}}">{{.Variance}}</td>
                <td>{{.Notes}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>
</body>
</html>`
