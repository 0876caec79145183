package extract

import (
	"testing"
	"time"
)

func TestParseMonthDayFirst(t *testing.T) {
	cases := []struct {
		in    string
		year  int
		month time.Month
	}{
		{"15/01/2025", 2025, time.January},
		{"5/3/2025", 2025, time.March},
		{"31-12-2024", 2024, time.December},
		{"02.07.2025", 2025, time.July},
		{"2025-01-15", 2025, time.January},
		{"2025/06/01", 2025, time.June},
		{"01/2025", 2025, time.January},
		{"Jan 2025", 2025, time.January},
		{"January 2025", 2025, time.January},
		{"2025-03", 2025, time.March},
	}
	for _, c := range cases {
		got, ok := ParseMonth(c.in)
		if !ok {
			t.Fatalf("%q: expected parse to succeed", c.in)
		}
		want := time.Date(c.year, c.month, 1, 0, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Fatalf("%q: got %v, want %v", c.in, got, want)
		}
	}
}

func TestParseMonthRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "not-a-date", "2025", "13/13/2025"} {
		if _, ok := ParseMonth(in); ok {
			t.Fatalf("%q: expected parse to fail", in)
		}
	}
}
