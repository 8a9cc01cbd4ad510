package utils

import (
	"time"
)

// TimeNowIn returns the current time in the named IANA location, falling back to UTC
// when the location cannot be loaded.
func TimeNowIn(location string) time.Time {
	if location == "" {
		return time.Now().UTC()
	}
	loc, err := time.LoadLocation(location)
	if err != nil {
		return time.Now().UTC()
	}
	return time.Now().In(loc)
}

// DaysBetween returns the fractional number of days from then to now, never negative.
func DaysBetween(then, now time.Time) float64 {
	days := now.Sub(then).Hours() / 24
	if days < 0 {
		return 0
	}
	return days
}

// PrettyDate renders t as "Mon, 02 Jan 2006 15:04 MST".
func PrettyDate(t time.Time) string {
	return t.Format("Mon, 02 Jan 2006 15:04 MST")
}
