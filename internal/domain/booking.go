package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExistingBooking a ticket as seen by the availability engine
type ExistingBooking struct {
	ID             uuid.UUID
	ScheduledStart time.Time
	DurationHours  decimal.Decimal
	BufferMinutes  *int // nil means tenant default
	TravelMinutes  *int // nil means tenant default
	Status         TicketStatus
	TechnicianID   *uuid.UUID
}

// Window the unpadded scheduled interval. Non-positive durations fall back to the default service duration
func (b ExistingBooking) Window() TimeWindow {
	return NewTimeWindow(b.ScheduledStart, HoursToDuration(b.DurationHours))
}

// ProtectedWindow pads the booking with its own buffer and travel, falling back to the tenant defaults
func (b ExistingBooking) ProtectedWindow(defaultBuffer, defaultTravel int) TimeWindow {
	return b.Window().Protect(
		minutesOrDefault(b.BufferMinutes, defaultBuffer),
		minutesOrDefault(b.TravelMinutes, defaultTravel),
	)
}

// Blocking reports whether the booking takes part in conflict checks
func (b ExistingBooking) Blocking() bool {
	return b.Status != TicketStatusCancelled
}

// HoursToDuration converts decimal hours to a duration truncated to whole seconds.
// Zero or negative hours count as the default service block so the booking still occupies the technician.
func HoursToDuration(hours decimal.Decimal) time.Duration {
	if !hours.IsPositive() {
		hours = decimal.NewFromInt(DefaultServiceDurationHours)
	}
	secs := hours.Mul(decimal.NewFromInt(3600)).IntPart()
	return time.Duration(secs) * time.Second
}

func minutesOrDefault(v *int, def int) int {
	if v == nil || *v < 0 {
		return def
	}
	return *v
}
