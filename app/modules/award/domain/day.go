package awarddomain

import (
	"fmt"
	"strings"
	"time"
)

// TargetDay is the calendar day before now in loc, as UTC midnight.
func TargetDay(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := now.In(loc).AddDate(0, 0, -1).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay reads a day written as DD.MM.YYYY or YYYY-MM-DD.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{summaryDateLayout, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid day %q: want DD.MM.YYYY or YYYY-MM-DD", s)
}
