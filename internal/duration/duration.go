// Package duration provides parsing for scan window start times: either
// an absolute date or a human-readable duration in the past.
package duration

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Parse parses a scan window start. Absolute dates use "YYYY-MM-DD" and are
// interpreted as midnight UTC. Relative forms like "1w", "30d", "6mo" return
// the time that far in the past from now.
func Parse(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t.UTC(), nil
	}

	now := time.Now()

	var d time.Duration
	var n int
	var unit string

	if _, err := fmt.Sscanf(s, "%d%s", &n, &unit); err != nil {
		return time.Time{}, fmt.Errorf("invalid since value: %s (use e.g., 2023-01-01, 1w, 30d, 6mo)", s)
	}

	switch unit {
	case "m", "min", "mins":
		d = time.Duration(n) * time.Minute
	case "h", "hr", "hrs", "hour", "hours":
		d = time.Duration(n) * time.Hour
	case "d", "day", "days":
		d = time.Duration(n) * 24 * time.Hour
	case "w", "wk", "wks", "week", "weeks":
		d = time.Duration(n) * 7 * 24 * time.Hour
	case "mo", "month", "months":
		d = time.Duration(n) * 30 * 24 * time.Hour
	case "y", "yr", "yrs", "year", "years":
		d = time.Duration(n) * 365 * 24 * time.Hour
	default:
		return time.Time{}, fmt.Errorf("unknown duration unit: %s", unit)
	}

	return now.Add(-d), nil
}
