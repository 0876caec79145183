package application

import (
	"fmt"
	"time"

	extract "greenledger/internal/extract/domain"
	ledger "greenledger/internal/ledger/domain"
)

// Normalize converts candidate rows into canonical ledger entries.
// A row whose period does not parse as YYYY-MM is rejected and
// reported as a warning; the remaining rows go through. Nil demand and
// currency pass through untouched so "unknown" never turns into 0.
func Normalize(rows []extract.CandidateRow, source string) (entries []ledger.Entry, rejected int, warnings []string) {
	for _, row := range rows {
		period, ok := parseYearMonth(row.YearMonth)
		if !ok {
			rejected++
			warnings = append(warnings, fmt.Sprintf("%s: row with unparsable period %q dropped", source, row.YearMonth))
			continue
		}
		entry, err := ledger.NewEntry(period, row.KWh, row.Cost, row.DemandKW, row.Currency, source)
		if err != nil {
			rejected++
			warnings = append(warnings, fmt.Sprintf("%s: row dropped: %v", source, err))
			continue
		}
		entries = append(entries, entry)
	}
	return entries, rejected, warnings
}

func parseYearMonth(value string) (time.Time, bool) {
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return time.Time{}, false
	}
	return ledger.MonthStart(t), true
}
