package analytics

import "time"

// Baseline is a read-only projection of an InvoiceSummary plus site
// context. PeriodStart and PeriodEnd reflect the observed ledger span;
// a user-declared baseline window is descriptive metadata kept on the
// site context and never filters which rows count here.
type Baseline struct {
	PeriodStart       time.Time `json:"period_start"`
	PeriodEnd         time.Time `json:"period_end"`
	KWhYearEquivalent float64   `json:"kwh_year_equivalent"`
	UnitCost          *float64  `json:"unit_cost"`
	KWhPerM2Year      *float64  `json:"kwh_per_m2_year"`
	KWhPerUserYear    *float64  `json:"kwh_per_user_year"`
	CostPerKWh        *float64  `json:"cost_per_kwh"`
	Notes             []string  `json:"notes"`
}

// DeriveBaseline projects the summary into baseline EnPIs. Per-unit
// indicators missing from the summary are recomputed from the site
// context when it allows; zero area or zero users leave them nil.
func DeriveBaseline(summary InvoiceSummary, areaM2 float64, userCount int) Baseline {
	b := Baseline{
		PeriodStart:       summary.PeriodStart,
		PeriodEnd:         summary.PeriodEnd,
		KWhYearEquivalent: summary.KWhYearEquivalent,
		UnitCost:          summary.UnitCost,
		KWhPerM2Year:      summary.KWhPerM2Year,
		KWhPerUserYear:    summary.KWhPerUserYear,
		CostPerKWh:        summary.UnitCost,
	}
	if b.KWhPerM2Year == nil && areaM2 > 0 {
		perM2 := summary.KWhYearEquivalent / areaM2
		b.KWhPerM2Year = &perM2
	}
	if b.KWhPerUserYear == nil && userCount > 0 {
		perUser := summary.KWhYearEquivalent / float64(userCount)
		b.KWhPerUserYear = &perUser
	}
	b.Notes = append(b.Notes, summary.Notes...)
	return b
}
