// Package llm implements the text and image extraction strategies on
// top of an external row-extraction service with a strict JSON
// contract. Both strategies share one retry policy; a source whose
// retry budget is exhausted yields zero rows and a warning, never an
// error that aborts the batch.
package llm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	extract "greenledger/internal/extract/domain"
)

const (
	textPrompt = "From the text of one or more energy invoices, return valid JSON with a " +
		"'rows' list of monthly records: year_month (YYYY-MM), kwh (number), cost (number), " +
		"demand_kw (number or null), currency (short text, e.g. ARS/USD). " +
		"Do not include anything outside the JSON."
	imagePrompt = "Extract data from the energy invoice in the image. Return JSON with a " +
		"'rows' list. Each element must have: year_month (YYYY-MM), kwh (number), cost (number), " +
		"demand_kw (number or null), currency (short text, e.g. ARS/USD). " +
		"If the image shows several invoices or months, return several rows. " +
		"Do not include anything outside the JSON."

	// Documents are truncated before the call; invoices never need more.
	maxTextLen = 16000
)

// callWithRetry drives the service under the shared policy. Valid JSON
// with an empty rows list still counts as a failed attempt: the
// service is contracted to find rows, and an empty answer on a
// non-empty document is most often a transient misread.
func callWithRetry(ctx context.Context, service extract.RowService, policy extract.RetryPolicy, req extract.RowRequest, name, debugDir string) (extract.Result, error) {
	var (
		rows    []extract.CandidateRow
		lastRaw string
	)
	err := policy.Do(ctx, func(ctx context.Context) error {
		got, raw, err := service.Rows(ctx, req)
		if raw != "" {
			lastRaw = raw
		}
		if err != nil {
			return err
		}
		if len(got) == 0 {
			return fmt.Errorf("llm: no rows extracted from %s", name)
		}
		rows = got
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return extract.Result{}, ctx.Err()
		}
		warning := fmt.Sprintf("%s: extraction service gave no usable rows after %d attempts (%v)", name, policy.Attempts(), err)
		if path := saveRaw(debugDir, lastRaw); path != "" {
			warning += ", raw response saved to " + path
		}
		return extract.Result{Warnings: []string{warning}}, nil
	}
	return extract.Result{Rows: rows}, nil
}

// saveRaw keeps the last service response for postmortem inspection.
func saveRaw(debugDir, raw string) string {
	if debugDir == "" || raw == "" {
		return ""
	}
	path := filepath.Join(debugDir, "last_extract_raw.json")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		return ""
	}
	return path
}
