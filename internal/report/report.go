// Package report builds the energy-management report: an LLM-written
// narrative grounded in the derived baseline and EnPIs, rendered to an
// A4 PDF. The exact wording is the model's; the numeric payload and
// the section skeleton are ours.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	analytics "greenledger/internal/analytics/domain"
	"greenledger/internal/observability/metrics"
	"greenledger/internal/site"
)

const systemPrompt = "You are a senior energy-management consultant working under ISO 50001. " +
	"Write an institutional report in a clear professional tone. " +
	"You MUST use the baseline and EnPI values provided in the dataset " +
	"(kWh/year equivalent, cost per kWh, kWh/m2-year, kWh/user-year) as the numeric reference, " +
	"citing the baseline with its observed period (period_start to period_end). " +
	"If values are missing, state that as a data limitation. " +
	"Include these sections with explicit headings: Executive Summary; Scope and Context; " +
	"Energy Review; Baseline and EnPIs; Opportunities and Measures; " +
	"Savings Estimate (kWh/year, %, cost, simple payback); Implementation Plan; " +
	"Monitoring and Verification (M&V); Risks and Recommendations."

var detailGuidance = map[int]string{
	1: "Very short executive summary, at most 300 words.",
	2: "Short summary plus key findings (about 500 words).",
	3: "Standard report with full sections and basic figures (about 900 words).",
	4: "Extended report with technical justification and inline tables (about 1400 words).",
	5: "Exhaustive technical report with assumptions, risks, simple formulas and detailed M&V (about 2000 words).",
}

// TextService produces the narrative body of a report.
type TextService interface {
	Narrative(ctx context.Context, system, user string) (string, error)
}

// Dataset is the payload handed to the narrative service: everything
// the model is allowed to cite.
type Dataset struct {
	Site     site.Context             `json:"site"`
	Summary  analytics.InvoiceSummary `json:"summary"`
	Baseline analytics.Baseline       `json:"baseline"`
}

// Generator builds reports.
type Generator struct {
	text   TextService
	logger *log.Logger
}

// NewGenerator constructs a report generator.
func NewGenerator(text TextService, logger *log.Logger) (*Generator, error) {
	if text == nil {
		return nil, errors.New("report: nil text service")
	}
	if logger == nil {
		return nil, errors.New("report: nil logger")
	}
	return &Generator{text: text, logger: logger}, nil
}

// Narrative asks the text service for the report body at the given
// detail level (1-5, clamped).
func (g *Generator) Narrative(ctx context.Context, ds Dataset, detail int) (string, error) {
	if detail < 1 {
		detail = 1
	}
	if detail > 5 {
		detail = 5
	}
	payload, err := json.Marshal(ds)
	if err != nil {
		return "", fmt.Errorf("report: marshal dataset: %w", err)
	}
	user := fmt.Sprintf("WRITING PARAMETERS: %s\n\nDATA (JSON):\n%s", detailGuidance[detail], payload)

	start := time.Now()
	text, err := g.text.Narrative(ctx, systemPrompt, user)
	outcome := metrics.ResultSuccess
	if err != nil {
		outcome = metrics.ResultError
	}
	metrics.ObserveReport(outcome, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("report: narrative generation: %w", err)
	}
	g.logger.Printf("report narrative generated: site=%s detail=%d chars=%d", ds.Site.ID(), detail, len(text))
	return text, nil
}

// Generate produces the full PDF report for a dataset.
func (g *Generator) Generate(ctx context.Context, ds Dataset, detail int) ([]byte, error) {
	narrative, err := g.Narrative(ctx, ds, detail)
	if err != nil {
		return nil, err
	}
	return BuildReportPDF(ds, narrative, time.Now().UTC())
}
