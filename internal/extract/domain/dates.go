package extract

import (
	"regexp"
	"strings"
	"time"
)

// Invoice dates arrive in whatever shape the utility prints them.
// Day-first layouts are tried before month-first ones because the
// source material is predominantly day-first.
var monthLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"2006-01-02",
	"2006/01/02",
	"01/2006",
	"1/2006",
	"Jan 2006",
	"January 2006",
	"2006-01",
}

var yearMonthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// ParseMonth parses a heterogeneous invoice date with day-first
// preference and returns the start of its calendar month in UTC. When
// direct parsing fails it falls back to matching "YYYY-MM" and
// synthesizing the first of the month.
func ParseMonth(value string) (time.Time, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), true
		}
	}
	if yearMonthPattern.MatchString(s) {
		if t, err := time.Parse("2006-01-02", s+"-01"); err == nil {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
