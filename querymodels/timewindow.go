/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package querymodels

import (
	"time"
)

// Time-window helpers restructure date-arithmetic predicates into
// pushdown-compatible boundary comparisons. A predicate like "rows newer
// than 30 days" cannot be evaluated natively by stores without date
// functions; comparing a timestamp field against a precomputed RFC3339
// boundary can.

// InLastHours returns a predicate matching rows whose time field falls in
// the last N hours.
func InLastHours(field string, hours int) *Predicate {
	boundary := time.Now().Add(-time.Duration(hours) * time.Hour)
	return After(field, boundary)
}

// InLastDays returns a predicate matching rows whose time field falls in
// the last N days.
func InLastDays(field string, days int) *Predicate {
	boundary := time.Now().AddDate(0, 0, -days)
	return After(field, boundary)
}

// After returns a predicate matching rows whose time field is after the
// given timestamp.
func After(field string, t time.Time) *Predicate {
	return &Predicate{
		Field:  field,
		Op:     OpGreaterThan,
		Values: []interface{}{t.Format(time.RFC3339)},
	}
}

// Before returns a predicate matching rows whose time field is before the
// given timestamp.
func Before(field string, t time.Time) *Predicate {
	return &Predicate{
		Field:  field,
		Op:     OpLessThan,
		Values: []interface{}{t.Format(time.RFC3339)},
	}
}

// BetweenTimes returns a predicate matching rows whose time field lies
// between start and end.
func BetweenTimes(field string, start, end time.Time) *Predicate {
	return &Predicate{
		Field:  field,
		Op:     OpBetween,
		Values: []interface{}{start.Format(time.RFC3339), end.Format(time.RFC3339)},
	}
}
