package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CalendarStatus connection state of the external calendar integration
type CalendarStatus string

const (
	CalendarStatusNotConnected CalendarStatus = "not_connected"
	CalendarStatusConnected    CalendarStatus = "connected"
	CalendarStatusError        CalendarStatus = "error"
)

// PrimaryCalendarID queries every calendar of the connected account
const PrimaryCalendarID = "primary"

// IntegrationSettings per-tenant booking and integration configuration.
// Nil numeric fields mean "use the default"; an explicit zero is honoured.
type IntegrationSettings struct {
	TenantID uuid.UUID

	LeadTimeMinutes      *int
	BufferMinutes        *int
	TravelMinutes        *int
	DefaultDurationHours *decimal.Decimal
	SlotIntervalMinutes  *int

	// Raw stored values, normalised by WeeklySchedule
	WorkingDays  json.RawMessage
	WorkingHours json.RawMessage

	CalendarStatus  CalendarStatus
	CalendarEnabled *bool
	CalendarID      string
	CalendarEmail   string

	UpdatedAt time.Time
}

// BookingConstraints resolved scheduling parameters for one availability query
type BookingConstraints struct {
	DurationMinutes     int
	LeadTimeMinutes     int
	BufferMinutes       int
	TravelMinutes       int
	SlotIntervalMinutes int
}

// Duration of the service as time.Duration
func (c BookingConstraints) Duration() time.Duration {
	return time.Duration(c.DurationMinutes) * time.Minute
}

// DefaultBookingConstraints values used when a tenant has no settings row
func DefaultBookingConstraints() BookingConstraints {
	return BookingConstraints{
		DurationMinutes:     DefaultServiceDurationHours * 60,
		LeadTimeMinutes:     DefaultLeadTimeMinutes,
		BufferMinutes:       DefaultBufferMinutes,
		TravelMinutes:       DefaultTravelMinutes,
		SlotIntervalMinutes: DefaultSlotIntervalMinutes,
	}
}

// BookingConstraints resolves the tenant's constraints, substituting defaults for missing or
// negative values. fallbackSlotInterval applies when the tenant has no interval of its own.
func (s *IntegrationSettings) BookingConstraints(fallbackSlotInterval int) BookingConstraints {
	c := DefaultBookingConstraints()
	if fallbackSlotInterval > 0 {
		c.SlotIntervalMinutes = fallbackSlotInterval
	}
	if s == nil {
		return c
	}

	c.LeadTimeMinutes = minutesOrDefault(s.LeadTimeMinutes, c.LeadTimeMinutes)
	c.BufferMinutes = minutesOrDefault(s.BufferMinutes, c.BufferMinutes)
	c.TravelMinutes = minutesOrDefault(s.TravelMinutes, c.TravelMinutes)
	if s.SlotIntervalMinutes != nil && *s.SlotIntervalMinutes > 0 {
		c.SlotIntervalMinutes = *s.SlotIntervalMinutes
	}
	if s.DefaultDurationHours != nil && s.DefaultDurationHours.IsPositive() {
		c.DurationMinutes = int(HoursToDuration(*s.DefaultDurationHours) / time.Minute)
	}
	return c
}

// WithDurationHours overrides the duration with a service duration; non-positive values are ignored
func (c BookingConstraints) WithDurationHours(hours decimal.Decimal) BookingConstraints {
	if hours.IsPositive() {
		if minutes := int(HoursToDuration(hours) / time.Minute); minutes > 0 {
			c.DurationMinutes = minutes
		}
	}
	return c
}

// WeeklySchedule normalised schedule derived from the stored working hours
func (s *IntegrationSettings) WeeklySchedule(slotInterval int) WeeklySchedule {
	if s == nil {
		return BuildWeeklySchedule(nil, nil, slotInterval)
	}
	return BuildWeeklySchedule(s.WorkingHours, s.WorkingDays, slotInterval)
}

// CalendarSyncActive true when the calendar is connected and the integration is not switched off
func (s *IntegrationSettings) CalendarSyncActive() bool {
	if s == nil || s.CalendarStatus != CalendarStatusConnected {
		return false
	}
	return s.CalendarEnabled == nil || *s.CalendarEnabled
}

// CalendarIDOrPrimary configured calendar or "primary"
func (s *IntegrationSettings) CalendarIDOrPrimary() string {
	if s == nil || s.CalendarID == "" {
		return PrimaryCalendarID
	}
	return s.CalendarID
}

// Service a bookable service offered by a tenant
type Service struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	Name          string
	DurationHours decimal.Decimal
	Price         decimal.Decimal
	Active        bool
}
