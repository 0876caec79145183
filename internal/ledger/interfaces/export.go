// Package interfaces holds the ledger's durable user-facing codecs:
// CSV export/import with a fixed column contract, and an XLSX export
// for spreadsheet consumers. Export then import reproduces the same
// ledger state; the merge's idempotency absorbs repeats.
package interfaces

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	extract "greenledger/internal/extract/domain"
	ledger "greenledger/internal/ledger/domain"
)

// ledgerColumns is the canonical column order of the export format.
var ledgerColumns = []string{"period", "kwh", "cost", "demand_kw", "currency", "source"}

const periodLayout = "2006-01-02"

// WriteCSV serializes the ledger in the canonical column order.
// Periods are written as the first of the month; nil demand and
// currency become empty cells, not zeros.
func WriteCSV(entries []ledger.Entry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(ledgerColumns); err != nil {
		return nil, fmt.Errorf("interfaces: write header: %w", err)
	}
	for _, e := range entries {
		record := []string{
			e.Period.Format(periodLayout),
			formatFloat(e.KWh),
			formatFloat(e.Cost),
			"",
			"",
			e.Source,
		}
		if e.DemandKW != nil {
			record[3] = formatFloat(*e.DemandKW)
		}
		if e.Currency != nil {
			record[4] = *e.Currency
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("interfaces: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("interfaces: flush: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadCSV parses ledger CSV bytes under the same column contract.
// Dates parse day-first with the usual month fallbacks; rows whose
// period cannot be resolved are skipped and reported as warnings.
func ReadCSV(data []byte) (entries []ledger.Entry, warnings []string, err error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("interfaces: read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"period", "kwh", "cost", "source"} {
		if _, ok := cols[required]; !ok {
			return nil, nil, fmt.Errorf("interfaces: missing column %q", required)
		}
	}

	for i, record := range records[1:] {
		get := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		period, ok := extract.ParseMonth(get("period"))
		if !ok {
			warnings = append(warnings, fmt.Sprintf("row %d: unparsable period %q skipped", i+2, get("period")))
			continue
		}
		kwh, _ := strconv.ParseFloat(get("kwh"), 64)
		cost, _ := strconv.ParseFloat(get("cost"), 64)

		var demand *float64
		if v := get("demand_kw"); v != "" {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				demand = &parsed
			}
		}
		var currency *string
		if v := get("currency"); v != "" {
			currency = &v
		}

		source := get("source")
		if source == "" {
			source = "ledger import"
		}
		entry, err := ledger.NewEntry(period, kwh, cost, demand, currency, source)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		entries = append(entries, entry)
	}
	return entries, warnings, nil
}

// BuildLedgerXLSX renders the ledger as a single-sheet workbook with
// the same columns as the CSV export.
func BuildLedgerXLSX(entries []ledger.Entry) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "ledger"
	f.SetSheetName("Sheet1", sheet)

	for i, name := range ledgerColumns {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(sheet, col+"1", name)
	}
	for i, e := range entries {
		row := i + 2
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), e.Period.Format(periodLayout))
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), e.KWh)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), e.Cost)
		if e.DemandKW != nil {
			_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), *e.DemandKW)
		}
		if e.Currency != nil {
			_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), *e.Currency)
		}
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), e.Source)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
