package tabular

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	extract "greenledger/internal/extract/domain"
)

// ErrUnsupportedFormat is returned for file types the tabular strategy
// cannot decode. The source is rejected immediately and consumes no
// retry budget.
var ErrUnsupportedFormat = errors.New("tabular: unsupported file format")

// Column synonyms are matched case-insensitively against trimmed
// headers, mirroring the vocabulary seen on real utility exports.
var (
	dateColumns     = []string{"fecha", "date", "periodo", "period", "billing_period", "mes", "month"}
	kwhColumns      = []string{"kwh", "consumo_kwh", "consumption_kwh", "energy_kwh", "active_energy_kwh"}
	costColumns     = []string{"costo", "cost", "importe", "monto", "amount", "total"}
	demandColumns   = []string{"demanda_kw", "kw", "peak_kw", "dem_kw"}
	currencyColumns = []string{"moneda", "currency"}
)

// Extractor maps spreadsheet columns onto candidate rows.
type Extractor struct{}

// New constructs a tabular extractor.
func New() *Extractor { return &Extractor{} }

// Extract decodes a CSV or XLSX source into candidate rows. Rows whose
// date cannot be read keep an empty period and are rejected later by
// the normalizer. Numeric cells that fail to parse coerce to 0; a
// warning names every required column that could not be mapped at all,
// so zeroed values are visible rather than silent.
func (e *Extractor) Extract(_ context.Context, src extract.RawSource) (extract.Result, error) {
	records, err := decode(src)
	if err != nil {
		return extract.Result{}, err
	}
	if len(records) < 2 {
		return extract.Result{Warnings: []string{fmt.Sprintf("%s: no data rows", src.Name)}}, nil
	}

	header := records[0]
	cols := mapColumns(header)
	var warnings []string
	if cols.date < 0 {
		warnings = append(warnings, fmt.Sprintf("%s: no date/period column found", src.Name))
	}
	if cols.kwh < 0 {
		warnings = append(warnings, fmt.Sprintf("%s: no kWh column found, energy values default to 0", src.Name))
	}
	if cols.cost < 0 {
		warnings = append(warnings, fmt.Sprintf("%s: no cost column found, cost values default to 0", src.Name))
	}

	rows := make([]extract.CandidateRow, 0, len(records)-1)
	for _, record := range records[1:] {
		if blank(record) {
			continue
		}
		row := extract.CandidateRow{
			KWh:  numberAt(record, cols.kwh),
			Cost: numberAt(record, cols.cost),
		}
		if cols.date >= 0 {
			if month, ok := extract.ParseMonth(cell(record, cols.date)); ok {
				row.YearMonth = month.Format("2006-01")
			} else {
				row.YearMonth = cell(record, cols.date)
			}
		}
		if cols.demand >= 0 {
			if v, err := parseNumber(cell(record, cols.demand)); err == nil {
				demand := v
				row.DemandKW = &demand
			}
		}
		if cols.currency >= 0 {
			if c := strings.TrimSpace(cell(record, cols.currency)); c != "" {
				currency := c
				row.Currency = &currency
			}
		}
		rows = append(rows, row)
	}
	return extract.Result{Rows: rows, Warnings: warnings}, nil
}

type columnIndexes struct {
	date, kwh, cost, demand, currency int
}

func mapColumns(header []string) columnIndexes {
	byName := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, exists := byName[key]; !exists {
			byName[key] = i
		}
	}
	pick := func(candidates []string) int {
		for _, c := range candidates {
			if i, ok := byName[c]; ok {
				return i
			}
		}
		return -1
	}
	return columnIndexes{
		date:     pick(dateColumns),
		kwh:      pick(kwhColumns),
		cost:     pick(costColumns),
		demand:   pick(demandColumns),
		currency: pick(currencyColumns),
	}
}

func decode(src extract.RawSource) ([][]string, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(src.Name), ".")) {
	case "csv", "txt":
		reader := csv.NewReader(bytes.NewReader(src.Data))
		reader.FieldsPerRecord = -1
		reader.TrimLeadingSpace = true
		records, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("tabular: read csv %s: %w", src.Name, err)
		}
		return records, nil
	case "xlsx", "xlsm", "xls":
		f, err := excelize.OpenReader(bytes.NewReader(src.Data))
		if err != nil {
			return nil, fmt.Errorf("tabular: open workbook %s: %w", src.Name, err)
		}
		defer f.Close()
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("tabular: workbook %s has no sheets", src.Name)
		}
		records, err := f.GetRows(sheets[0])
		if err != nil {
			return nil, fmt.Errorf("tabular: read workbook %s: %w", src.Name, err)
		}
		return records, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, src.Name)
	}
}

func cell(record []string, index int) string {
	if index < 0 || index >= len(record) {
		return ""
	}
	return record[index]
}

// numberAt coerces missing or unparsable numeric cells to 0 so partial
// invoices survive; the column-level warning above flags the risk.
func numberAt(record []string, index int) float64 {
	v, err := parseNumber(cell(record, index))
	if err != nil {
		return 0
	}
	return v
}

func parseNumber(value string) (float64, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0, errors.New("empty")
	}
	s = strings.ReplaceAll(s, ",", "")
	return strconv.ParseFloat(s, 64)
}

func blank(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
