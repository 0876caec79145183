package ledger

import "time"

// Ledger is the append-only, deduplicated collection of monthly usage
// records for one site. Entries keep their arrival order; re-merging
// data already present is a no-op, so imports are idempotent.
type Ledger struct {
	entries []Entry
	seen    map[string]struct{}
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{seen: make(map[string]struct{})}
}

// Merge appends entries not already present and reports how many were added.
func (l *Ledger) Merge(entries []Entry) int {
	added := 0
	for _, e := range entries {
		key := e.identity()
		if _, ok := l.seen[key]; ok {
			continue
		}
		l.seen[key] = struct{}{}
		l.entries = append(l.entries, e)
		added++
	}
	return added
}

// Replace discards the current contents and merges the given entries.
// This is the only way a ledger shrinks.
func (l *Ledger) Replace(entries []Entry) {
	l.entries = nil
	l.seen = make(map[string]struct{})
	l.Merge(entries)
}

// Entries returns a copy of the stored entries in arrival order.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of distinct entries.
func (l *Ledger) Len() int { return len(l.entries) }

// Span returns the earliest and latest period present.
func (l *Ledger) Span() (start, end time.Time, ok bool) {
	for _, e := range l.entries {
		if !ok {
			start, end, ok = e.Period, e.Period, true
			continue
		}
		if e.Period.Before(start) {
			start = e.Period
		}
		if e.Period.After(end) {
			end = e.Period
		}
	}
	return start, end, ok
}
