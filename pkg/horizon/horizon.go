// Package horizon turns a picked interview date into the number of days left
// to prepare.
package horizon

import (
	"time"
)

const day = 24 * time.Hour

// DaysUntil returns the whole calendar days from now to selected, never
// negative. A zero selected means no date was picked and yields 0.
//
// selected is read as a calendar date (its own year/month/day); now is read in
// its own location. Both are pinned to UTC midnight before subtracting.
func DaysUntil(selected, now time.Time) int {
	if selected.IsZero() {
		return 0
	}

	sy, sm, sd := selected.Date()
	ny, nm, nd := now.Date()
	target := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)

	days := int(target.Sub(today) / day)
	if days < 0 {
		return 0
	}
	return days
}

// ParseDate reads a picked date in YYYY-MM-DD form. An empty string is the
// unset date.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, s)
}
