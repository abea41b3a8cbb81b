package domain

import "time"

// AvailableSlot a bookable start instant. Date and Time are rendered in the scheduling zone
type AvailableSlot struct {
	Date     string
	Time     string
	Datetime time.Time
}

// NewAvailableSlot formats start in its own location
func NewAvailableSlot(start time.Time) AvailableSlot {
	return AvailableSlot{
		Date:     start.Format(DateFormat),
		Time:     start.Format(TimeFormat),
		Datetime: start,
	}
}
