package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// BuildReportPDF renders the report: cover, baseline/EnPI table,
// monthly series, then the narrative split into paragraphs. Headings
// are detected by markdown prefixes or short known section titles.
func BuildReportPDF(ds Dataset, narrative string, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Energy Management Report (ISO 50001)")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Organization: %s", ds.Site.Organization))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Site: %s", ds.Site.SiteName))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generatedAt.Format("2006-01-02 15:04")))
	pdf.Ln(5)
	if ds.Site.BaselineFrom != "" || ds.Site.BaselineTo != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Declared baseline window: %s to %s", ds.Site.BaselineFrom, ds.Site.BaselineTo))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Baseline and EnPIs")
	pdf.Ln(9)
	pdf.SetFont("Arial", "", 10)
	b := ds.Baseline
	if !b.PeriodStart.IsZero() {
		pdf.Cell(0, 6, fmt.Sprintf("Observed period: %s to %s", b.PeriodStart.Format("2006-01"), b.PeriodEnd.Format("2006-01")))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("kWh/year (equivalent): %.0f", b.KWhYearEquivalent))
	pdf.Ln(5)
	pdf.Cell(0, 6, "Cost per kWh: "+formatOptional(b.CostPerKWh, "%.4f"))
	pdf.Ln(5)
	pdf.Cell(0, 6, "kWh/m2-year: "+formatOptional(b.KWhPerM2Year, "%.1f"))
	pdf.Ln(5)
	pdf.Cell(0, 6, "kWh/user-year: "+formatOptional(b.KWhPerUserYear, "%.0f"))
	pdf.Ln(8)

	if len(ds.Summary.MonthlySeries) > 0 {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(35, 6, "Month", "1", 0, "C", false, 0, "")
		pdf.CellFormat(45, 6, "kWh", "1", 0, "C", false, 0, "")
		pdf.CellFormat(45, 6, "Cost", "1", 0, "C", false, 0, "")
		pdf.CellFormat(45, 6, "Peak demand (kW)", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		for _, m := range ds.Summary.MonthlySeries {
			pdf.CellFormat(35, 6, m.Month.Format("2006-01"), "1", 0, "C", false, 0, "")
			pdf.CellFormat(45, 6, fmt.Sprintf("%.0f", m.KWh), "1", 0, "R", false, 0, "")
			pdf.CellFormat(45, 6, fmt.Sprintf("%.2f", m.Cost), "1", 0, "R", false, 0, "")
			pdf.CellFormat(45, 6, formatOptional(m.DemandKW, "%.1f"), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	for _, note := range ds.Summary.Notes {
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(0, 5, "Note: "+note, "", "L", false)
	}
	pdf.Ln(4)

	writeNarrative(pdf, narrative)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeNarrative(pdf *gofpdf.Fpdf, narrative string) {
	for _, raw := range strings.Split(narrative, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "### "):
			pdf.SetFont("Arial", "B", 10)
			pdf.MultiCell(0, 6, strings.TrimPrefix(line, "### "), "", "L", false)
		case strings.HasPrefix(line, "## "):
			pdf.Ln(2)
			pdf.SetFont("Arial", "B", 12)
			pdf.MultiCell(0, 7, strings.TrimPrefix(line, "## "), "", "L", false)
		case strings.HasPrefix(line, "# "):
			pdf.Ln(2)
			pdf.SetFont("Arial", "B", 13)
			pdf.MultiCell(0, 7, strings.TrimPrefix(line, "# "), "", "L", false)
		default:
			pdf.SetFont("Arial", "", 10)
			pdf.MultiCell(0, 5, line, "", "L", false)
			pdf.Ln(1)
		}
	}
}

func formatOptional(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}
