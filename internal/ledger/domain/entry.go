package ledger

import (
	"strconv"
	"strings"
	"time"
)

// MonthStart truncates t to the first day of its calendar month in UTC.
func MonthStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Entry is one canonical monthly usage record.
// Period is always the first day of a calendar month in UTC; rows whose
// period cannot be resolved are rejected before they reach the ledger.
// DemandKW and Currency stay nil when unknown, never defaulted, so a
// missing reading is distinguishable from a true zero.
type Entry struct {
	Period   time.Time `json:"period"`
	KWh      float64   `json:"kwh"`
	Cost     float64   `json:"cost"`
	DemandKW *float64  `json:"demand_kw"`
	Currency *string   `json:"currency"`
	Source   string    `json:"source"`
}

// NewEntry validates and canonicalizes an entry.
func NewEntry(period time.Time, kwh, cost float64, demandKW *float64, currency *string, source string) (Entry, error) {
	if period.IsZero() {
		return Entry{}, ErrInvalidPeriod
	}
	if strings.TrimSpace(source) == "" {
		return Entry{}, ErrEmptySource
	}
	return Entry{
		Period:   MonthStart(period),
		KWh:      kwh,
		Cost:     cost,
		DemandKW: demandKW,
		Currency: currency,
		Source:   source,
	}, nil
}

// identity is the structural-equality key used for deduplication.
func (e Entry) identity() string {
	var b strings.Builder
	b.WriteString(e.Period.Format("2006-01"))
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(e.KWh, 'g', -1, 64))
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(e.Cost, 'g', -1, 64))
	b.WriteByte('|')
	if e.DemandKW != nil {
		b.WriteString(strconv.FormatFloat(*e.DemandKW, 'g', -1, 64))
	}
	b.WriteByte('|')
	if e.Currency != nil {
		b.WriteString(*e.Currency)
	}
	b.WriteByte('|')
	b.WriteString(e.Source)
	return b.String()
}
