package analytics

import (
	"testing"
	"time"

	ledger "greenledger/internal/ledger/domain"
)

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func entry(t *testing.T, period time.Time, kwh, cost float64, demand *float64) ledger.Entry {
	t.Helper()
	e, err := ledger.NewEntry(period, kwh, cost, demand, nil, "test.csv")
	if err != nil {
		t.Fatalf("new entry: %v", err)
	}
	return e
}

func hasNote(notes []string, want string) bool {
	for _, n := range notes {
		if n == want {
			return true
		}
	}
	return false
}

func TestSummarizeEmptyLedger(t *testing.T) {
	summary := Summarize(nil, 100, 10)
	if !hasNote(summary.Notes, NoteNoRows) {
		t.Fatalf("expected %q note, got %v", NoteNoRows, summary.Notes)
	}
	if summary.MonthsCovered != 0 || summary.TotalKWh != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestSummarizeAnnualizesPartialYear(t *testing.T) {
	var entries []ledger.Entry
	for m := time.January; m <= time.June; m++ {
		entries = append(entries, entry(t, month(2025, m), 100, 150, nil))
	}
	summary := Summarize(entries, 0, 0)
	if summary.MonthsCovered != 6 {
		t.Fatalf("expected 6 months covered, got %d", summary.MonthsCovered)
	}
	if summary.TotalKWh != 600 {
		t.Fatalf("expected total 600, got %v", summary.TotalKWh)
	}
	if summary.KWhYearEquivalent != 1200 {
		t.Fatalf("expected year equivalent 1200, got %v", summary.KWhYearEquivalent)
	}
	if hasNote(summary.Notes, NoteShortBaseline) {
		t.Fatalf("6 months should not carry the short-baseline note: %v", summary.Notes)
	}
}

func TestSummarizeFullYearIsNotScaled(t *testing.T) {
	var entries []ledger.Entry
	for m := time.January; m <= time.December; m++ {
		entries = append(entries, entry(t, month(2025, m), 100, 150, nil))
	}
	summary := Summarize(entries, 0, 0)
	if summary.KWhYearEquivalent != 1200 {
		t.Fatalf("12 months must stay unscaled, got %v", summary.KWhYearEquivalent)
	}
}

func TestSummarizeShortCoverageNote(t *testing.T) {
	entries := []ledger.Entry{
		entry(t, month(2025, time.January), 1000, 1500, nil),
		entry(t, month(2025, time.February), 1100, 1600, nil),
	}
	summary := Summarize(entries, 0, 0)
	if summary.MonthsCovered != 2 {
		t.Fatalf("expected 2 months, got %d", summary.MonthsCovered)
	}
	if summary.TotalKWh != 2100 {
		t.Fatalf("expected total 2100, got %v", summary.TotalKWh)
	}
	if summary.KWhYearEquivalent != 12600 {
		t.Fatalf("expected year equivalent 12600, got %v", summary.KWhYearEquivalent)
	}
	if !hasNote(summary.Notes, NoteShortBaseline) {
		t.Fatalf("expected short-baseline note, got %v", summary.Notes)
	}
}

func TestSummarizeMonthlyAggregation(t *testing.T) {
	d40, d55 := 40.0, 55.0
	entries := []ledger.Entry{
		entry(t, month(2025, time.January), 400, 600, &d40),
		entry(t, month(2025, time.January), 600, 900, &d55),
		entry(t, month(2025, time.February), 1100, 1600, nil),
	}
	summary := Summarize(entries, 0, 0)
	if len(summary.MonthlySeries) != 2 {
		t.Fatalf("expected 2 aggregated months, got %d", len(summary.MonthlySeries))
	}
	jan := summary.MonthlySeries[0]
	if jan.KWh != 1000 || jan.Cost != 1500 {
		t.Fatalf("kwh and cost must sum per month: %+v", jan)
	}
	if jan.DemandKW == nil || *jan.DemandKW != 55 {
		t.Fatalf("demand must be the month's peak, got %v", jan.DemandKW)
	}
	feb := summary.MonthlySeries[1]
	if feb.DemandKW != nil {
		t.Fatalf("month without demand readings must stay nil, got %v", *feb.DemandKW)
	}
}

func TestSummarizeDivisionGuards(t *testing.T) {
	entries := []ledger.Entry{entry(t, month(2025, time.January), 0, 100, nil)}
	summary := Summarize(entries, 0, 0)
	if summary.UnitCost != nil {
		t.Fatalf("zero kWh must leave unit cost nil, got %v", *summary.UnitCost)
	}
	if summary.KWhPerM2Year != nil || summary.KWhPerUserYear != nil {
		t.Fatalf("zero area and users must leave per-unit indicators nil: %+v", summary)
	}
	if !hasNote(summary.Notes, NoteNoUsableEnergy) {
		t.Fatalf("expected zero-energy note, got %v", summary.Notes)
	}
}

func TestSummarizePerUnitIndicators(t *testing.T) {
	var entries []ledger.Entry
	for m := time.January; m <= time.December; m++ {
		entries = append(entries, entry(t, month(2025, m), 100, 150, nil))
	}
	summary := Summarize(entries, 100, 10)
	if summary.KWhPerM2Year == nil || *summary.KWhPerM2Year != 12 {
		t.Fatalf("expected 12 kWh/m2-year, got %v", summary.KWhPerM2Year)
	}
	if summary.KWhPerUserYear == nil || *summary.KWhPerUserYear != 120 {
		t.Fatalf("expected 120 kWh/user-year, got %v", summary.KWhPerUserYear)
	}
	if summary.UnitCost == nil || *summary.UnitCost != 1.5 {
		t.Fatalf("expected unit cost 1.5, got %v", summary.UnitCost)
	}
}

func TestSummarizeObservedPeriod(t *testing.T) {
	entries := []ledger.Entry{
		entry(t, month(2025, time.March), 1, 1, nil),
		entry(t, month(2024, time.November), 1, 1, nil),
	}
	summary := Summarize(entries, 0, 0)
	if !summary.PeriodStart.Equal(month(2024, time.November)) || !summary.PeriodEnd.Equal(month(2025, time.March)) {
		t.Fatalf("unexpected observed period %v to %v", summary.PeriodStart, summary.PeriodEnd)
	}
}
