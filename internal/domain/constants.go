package domain

import "time"

// Default booking configuration values
const (
	DefaultLeadTimeMinutes      = 30
	DefaultBufferMinutes        = 15
	DefaultTravelMinutes        = 30
	DefaultServiceDurationHours = 3
	DefaultSlotIntervalMinutes  = 30
)

// Default working hours (minutes from local midnight)
const (
	DefaultDayStartMinutes   = 8 * 60
	DefaultDayEndMinutes     = 18 * 60
	DefaultBreakStartMinutes = 12 * 60
	DefaultBreakEndMinutes   = 13 * 60
	MinutesPerDay            = 24 * 60
)

// DefaultWorkingDays Monday through Saturday
var DefaultWorkingDays = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
}

// Business validation constants
const (
	MaxCancellationReasonLength = 500
	MaxExpenseDetailsLength     = 2000
	// BookingLookaroundDays widens the bookings query so protected intervals bleeding into the range are caught
	BookingLookaroundDays = 7
	// MaxAvailabilityRangeDays bounds a single availability query
	MaxAvailabilityRangeDays = 62
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
