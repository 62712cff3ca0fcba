package awardqueue

import "time"

// DailySchedule fires once a day at a wall clock time in Location.
type DailySchedule struct {
	Hour     int
	Minute   int
	Location *time.Location
}

// Next returns the first run strictly after current.
func (s DailySchedule) Next(current time.Time) time.Time {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	t := current.In(loc)
	next := time.Date(t.Year(), t.Month(), t.Day(), s.Hour, s.Minute, 0, 0, loc)
	if !next.After(t) {
		next = time.Date(t.Year(), t.Month(), t.Day()+1, s.Hour, s.Minute, 0, 0, loc)
	}
	return next
}
