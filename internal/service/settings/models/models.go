package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-FieldService/internal/domain"
)

// BookingSettingsResponse итоговые параметры записи тенанта после подстановки значений по умолчанию
type BookingSettingsResponse struct {
	TenantID            uuid.UUID     `json:"tenantId"`
	IsDefault           bool          `json:"isDefault"` // У тенанта нет собственных настроек
	DurationMinutes     int           `json:"durationMinutes"`
	LeadTimeMinutes     int           `json:"leadTimeMinutes"`
	BufferMinutes       int           `json:"bufferMinutes"`
	TravelMinutes       int           `json:"travelMinutes"`
	SlotIntervalMinutes int           `json:"slotIntervalMinutes"`
	TimeZone            string        `json:"timeZone"`
	WorkingDays         []int         `json:"workingDays"`
	Schedule            []DayResponse `json:"schedule"`
	Calendar            CalendarInfo  `json:"calendar"`
}

// DayResponse расписание одного дня недели
type DayResponse struct {
	Weekday    int     `json:"weekday"` // 0 = воскресенье
	Enabled    bool    `json:"enabled"`
	Start      string  `json:"start"`                // "08:00"
	End        string  `json:"end"`                  // "18:00"
	BreakStart *string `json:"breakStart,omitempty"` // "12:00"
	BreakEnd   *string `json:"breakEnd,omitempty"`   // "13:00"
}

// CalendarInfo состояние интеграции с календарём
type CalendarInfo struct {
	Status     string `json:"status"`
	Active     bool   `json:"active"`
	CalendarID string `json:"calendarId"`
	Email      string `json:"email,omitempty"`
}

// FromDomain собирает ответ из настроек (nil означает настройки по умолчанию)
func FromDomain(
	tenantID uuid.UUID,
	s *domain.IntegrationSettings,
	c domain.BookingConstraints,
	week domain.WeeklySchedule,
	loc *time.Location,
) *BookingSettingsResponse {
	resp := &BookingSettingsResponse{
		TenantID:            tenantID,
		IsDefault:           s == nil,
		DurationMinutes:     c.DurationMinutes,
		LeadTimeMinutes:     c.LeadTimeMinutes,
		BufferMinutes:       c.BufferMinutes,
		TravelMinutes:       c.TravelMinutes,
		SlotIntervalMinutes: c.SlotIntervalMinutes,
		TimeZone:            loc.String(),
		WorkingDays:         make([]int, 0, 7),
		Schedule:            make([]DayResponse, 0, 7),
		Calendar: CalendarInfo{
			Status:     string(domain.CalendarStatusNotConnected),
			Active:     s.CalendarSyncActive(),
			CalendarID: s.CalendarIDOrPrimary(),
		},
	}

	if s != nil {
		if s.CalendarStatus != "" {
			resp.Calendar.Status = string(s.CalendarStatus)
		}
		resp.Calendar.Email = s.CalendarEmail
	}

	for day := time.Sunday; day <= time.Saturday; day++ {
		ds := week.Day(day)
		if ds.Enabled {
			resp.WorkingDays = append(resp.WorkingDays, int(day))
		}

		d := DayResponse{
			Weekday: int(day),
			Enabled: ds.Enabled,
			Start:   domain.FormatClock(ds.StartMinutes),
			End:     domain.FormatClock(ds.EndMinutes),
		}
		if ds.HasBreak() {
			bs := domain.FormatClock(*ds.BreakStartMinutes)
			be := domain.FormatClock(*ds.BreakEndMinutes)
			d.BreakStart = &bs
			d.BreakEnd = &be
		}
		resp.Schedule = append(resp.Schedule, d)
	}

	return resp
}
