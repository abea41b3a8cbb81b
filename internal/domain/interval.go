package domain

import "time"

// TimeWindow half-open interval [Start, End)
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// NewTimeWindow builds a window starting at start and lasting d
func NewTimeWindow(start time.Time, d time.Duration) TimeWindow {
	return TimeWindow{Start: start, End: start.Add(d)}
}

// Valid reports whether End is strictly after Start
func (w TimeWindow) Valid() bool {
	return w.End.After(w.Start)
}

// Overlaps is the half-open overlap test: a.Start < b.End && a.End > b.Start
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start.Before(other.End) && w.End.After(other.Start)
}

// Protect pads the window on both sides by buffer + travel minutes
func (w TimeWindow) Protect(bufferMinutes, travelMinutes int) TimeWindow {
	pad := time.Duration(bufferMinutes+travelMinutes) * time.Minute
	return TimeWindow{
		Start: w.Start.Add(-pad),
		End:   w.End.Add(pad),
	}
}
