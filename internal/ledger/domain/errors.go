package ledger

import "errors"

var (
	// ErrInvalidPeriod is returned when a period timestamp is zero.
	ErrInvalidPeriod = errors.New("ledger: invalid period")
	// ErrEmptySource is returned when an entry carries no source label.
	ErrEmptySource = errors.New("ledger: empty source label")
)
