package results

import "errors"

var (
	// ErrNoPoints is returned when a series would be built from zero points;
	// the period cannot be derived without at least one observation.
	ErrNoPoints = errors.New("results: series has no points")
	// ErrMissingColumn is returned when a result row lacks a required column.
	ErrMissingColumn = errors.New("results: missing column")
	// ErrBadColumnValue is returned when a result-row value cannot be parsed.
	ErrBadColumnValue = errors.New("results: bad column value")
)
