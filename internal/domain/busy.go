package domain

import "time"

// BusyInterval a period reported busy by an external calendar
type BusyInterval struct {
	Start  time.Time
	End    time.Time
	AllDay bool
	Source string
}

// Window returns the interval used for conflict tests.
// All-day intervals cover whole local days: start snaps back to midnight, end forward to the next midnight.
func (b BusyInterval) Window(loc *time.Location) TimeWindow {
	if !b.AllDay {
		return TimeWindow{Start: b.Start, End: b.End}
	}

	start := StartOfDay(b.Start, loc)
	end := StartOfDay(b.End, loc)
	if end.Before(b.End.In(loc)) {
		end = end.AddDate(0, 0, 1)
	}
	if !end.After(start) {
		end = start.AddDate(0, 0, 1)
	}
	return TimeWindow{Start: start, End: end}
}

// StartOfDay local midnight of t's calendar day in loc
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
