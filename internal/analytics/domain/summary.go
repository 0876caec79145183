// Package analytics derives monthly aggregates, summary statistics,
// and baseline EnPIs from a site's ledger. Everything here is a pure
// function of its inputs and is recomputed on demand.
package analytics

import (
	"sort"
	"time"

	ledger "greenledger/internal/ledger/domain"
)

// Advisory notes carried on summaries. They travel with the data all
// the way into reports, so the wording is part of the contract.
const (
	NoteNoRows         = "no invoice rows available"
	NoteShortBaseline  = "less than 6 months of data: annualization may be unrepresentative"
	NoteNoUsableEnergy = "total kWh is 0: no usable energy data"
)

// MonthlyAggregate is the consolidated usage for one calendar month.
// KWh and cost are summed across entries; demand is the month's peak,
// not an average, and stays nil when no entry reported one.
type MonthlyAggregate struct {
	Month    time.Time `json:"month"`
	KWh      float64   `json:"kwh"`
	Cost     float64   `json:"cost"`
	DemandKW *float64  `json:"demand_kw"`
}

// InvoiceSummary is the derived view of a ledger plus site context.
//
// KWhYearEquivalent extrapolates a partial year flat: with 1 to 11
// distinct months covered, total kWh scales by 12/months. That is a
// deliberate simplification, not a seasonal model, and summaries with
// thin coverage carry NoteShortBaseline to say so.
type InvoiceSummary struct {
	MonthlySeries     []MonthlyAggregate `json:"monthly_series"`
	TotalKWh          float64            `json:"total_kwh"`
	TotalCost         float64            `json:"total_cost"`
	UnitCost          *float64           `json:"unit_cost"`
	MonthsCovered     int                `json:"months_covered"`
	KWhYearEquivalent float64            `json:"kwh_year_equivalent"`
	KWhPerM2Year      *float64           `json:"kwh_per_m2_year"`
	KWhPerUserYear    *float64           `json:"kwh_per_user_year"`
	PeriodStart       time.Time          `json:"observed_period_start"`
	PeriodEnd         time.Time          `json:"observed_period_end"`
	Notes             []string           `json:"notes"`
}

// Summarize groups ledger entries by month and computes totals and
// per-unit indicators. MonthsCovered counts distinct periods present;
// gaps are not interpolated. All division guards resolve to nil.
func Summarize(entries []ledger.Entry, areaM2 float64, userCount int) InvoiceSummary {
	summary := InvoiceSummary{}
	if len(entries) == 0 {
		summary.Notes = append(summary.Notes, NoteNoRows)
		return summary
	}

	byMonth := make(map[time.Time]*MonthlyAggregate)
	for _, e := range entries {
		agg, ok := byMonth[e.Period]
		if !ok {
			agg = &MonthlyAggregate{Month: e.Period}
			byMonth[e.Period] = agg
		}
		agg.KWh += e.KWh
		agg.Cost += e.Cost
		if e.DemandKW != nil {
			if agg.DemandKW == nil || *e.DemandKW > *agg.DemandKW {
				demand := *e.DemandKW
				agg.DemandKW = &demand
			}
		}
	}

	series := make([]MonthlyAggregate, 0, len(byMonth))
	for _, agg := range byMonth {
		series = append(series, *agg)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Month.Before(series[j].Month) })

	summary.MonthlySeries = series
	summary.MonthsCovered = len(series)
	summary.PeriodStart = series[0].Month
	summary.PeriodEnd = series[len(series)-1].Month
	for _, agg := range series {
		summary.TotalKWh += agg.KWh
		summary.TotalCost += agg.Cost
	}

	if summary.TotalKWh > 0 {
		unitCost := summary.TotalCost / summary.TotalKWh
		summary.UnitCost = &unitCost
	}

	summary.KWhYearEquivalent = summary.TotalKWh
	if summary.MonthsCovered >= 1 && summary.MonthsCovered < 12 {
		summary.KWhYearEquivalent = summary.TotalKWh * 12 / float64(summary.MonthsCovered)
	}

	if areaM2 > 0 {
		perM2 := summary.KWhYearEquivalent / areaM2
		summary.KWhPerM2Year = &perM2
	}
	if userCount > 0 {
		perUser := summary.KWhYearEquivalent / float64(userCount)
		summary.KWhPerUserYear = &perUser
	}

	if summary.MonthsCovered < 6 {
		summary.Notes = append(summary.Notes, NoteShortBaseline)
	}
	if summary.TotalKWh == 0 {
		summary.Notes = append(summary.Notes, NoteNoUsableEnergy)
	}
	return summary
}
