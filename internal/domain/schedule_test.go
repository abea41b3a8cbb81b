package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-FieldService/pkg/ptr"
)

func TestBuildWeeklySchedule_NothingStored(t *testing.T) {
	week := BuildWeeklySchedule(nil, nil, DefaultSlotIntervalMinutes)

	assert.False(t, week.Day(time.Sunday).Enabled)
	for day := time.Monday; day <= time.Saturday; day++ {
		d := week.Day(day)
		assert.True(t, d.Enabled, day)
		assert.Equal(t, 8*60, d.StartMinutes)
		assert.Equal(t, 18*60, d.EndMinutes)
		assert.False(t, d.HasBreak())
		assert.True(t, d.Valid())
	}
}

func TestBuildWeeklySchedule_DaysObject(t *testing.T) {
	hours := json.RawMessage(`{"days": {
		"1": {"enabled": true, "start": "09:10", "end": "17:00", "breakEnabled": true, "breakStart": "12:00", "breakEnd": "13:00"},
		"2": {"enabled": true, "start": "18:00", "end": "08:00"},
		"3": {"enabled": true, "start": "10:00", "end": "16:00", "breakEnabled": true, "breakStart": "07:00", "breakEnd": "11:00"},
		"4": {"enabled": true, "start": "10:00", "end": "16:00", "breakEnabled": true, "breakStart": "17:00", "breakEnd": "18:00"},
		"6": {"enabled": false}
	}}`)

	week := BuildWeeklySchedule(hours, json.RawMessage(`[1,2,3,4,5,6]`), 30)

	monday := week.Day(time.Monday)
	assert.Equal(t, 9*60, monday.StartMinutes, "rounded down to slot interval")
	assert.Equal(t, 17*60, monday.EndMinutes)
	require.True(t, monday.HasBreak())
	assert.Equal(t, 12*60, *monday.BreakStartMinutes)
	assert.Equal(t, 13*60, *monday.BreakEndMinutes)

	tuesday := week.Day(time.Tuesday)
	assert.Equal(t, DefaultDayStartMinutes, tuesday.StartMinutes, "inverted window resets")
	assert.Equal(t, DefaultDayEndMinutes, tuesday.EndMinutes)

	wednesday := week.Day(time.Wednesday)
	require.True(t, wednesday.HasBreak())
	assert.Equal(t, 10*60, *wednesday.BreakStartMinutes, "break clamped into window")
	assert.Equal(t, 11*60, *wednesday.BreakEndMinutes)

	thursday := week.Day(time.Thursday)
	assert.False(t, thursday.HasBreak(), "break outside window collapses and is dropped")

	// day missing from config takes working_days
	assert.True(t, week.Day(time.Friday).Enabled)
	assert.Equal(t, DefaultDayStartMinutes, week.Day(time.Friday).StartMinutes)
	assert.False(t, week.Day(time.Saturday).Enabled)
	assert.False(t, week.Day(time.Sunday).Enabled)

	for day := time.Sunday; day <= time.Saturday; day++ {
		assert.True(t, week.Day(day).Valid(), day)
	}
}

func TestBuildWeeklySchedule_StringEncodedJSON(t *testing.T) {
	inner := `{"days":{"0":{"enabled":true,"start":"10:00","end":"14:00"}}}`
	encoded, err := json.Marshal(inner)
	require.NoError(t, err)

	week := BuildWeeklySchedule(encoded, nil, 30)

	sunday := week.Day(time.Sunday)
	assert.True(t, sunday.Enabled)
	assert.Equal(t, 10*60, sunday.StartMinutes)
	assert.Equal(t, 14*60, sunday.EndMinutes)
}

func TestBuildWeeklySchedule_SlotList(t *testing.T) {
	hours := json.RawMessage(`["09:00", "10:00", "09:00", "bogus", "15:30"]`)

	week := BuildWeeklySchedule(hours, json.RawMessage(`"1,3"`), 30)

	monday := week.Day(time.Monday)
	assert.True(t, monday.Enabled)
	assert.Equal(t, 9*60, monday.StartMinutes)
	assert.Equal(t, 16*60, monday.EndMinutes)
	assert.False(t, monday.HasBreak())
	assert.False(t, week.Day(time.Tuesday).Enabled)
	assert.True(t, week.Day(time.Wednesday).Enabled)
}

func TestBuildWeeklySchedule_MalformedFallsBack(t *testing.T) {
	week := BuildWeeklySchedule(json.RawMessage(`{not json`), json.RawMessage(`[]`), 30)

	assert.Equal(t, BuildWeeklySchedule(nil, nil, 30), week)
}

func TestParseWorkingDays(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []time.Weekday
		ok   bool
	}{
		{"numbers", `[1,2,3]`, []time.Weekday{1, 2, 3}, true},
		{"strings", `["0","6","7"]`, []time.Weekday{0, 6}, true},
		{"json in string", `"[1,5]"`, []time.Weekday{1, 5}, true},
		{"csv", `"1, 2 ,x,9"`, []time.Weekday{1, 2}, true},
		{"empty array", `[]`, []time.Weekday{}, true},
		{"null", `null`, nil, false},
		{"object", `{"a":1}`, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseWorkingDays(json.RawMessage(tc.raw))
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseClock(t *testing.T) {
	m, ok := ParseClock("08:30")
	assert.True(t, ok)
	assert.Equal(t, 510, m)

	_, ok = ParseClock("24:00")
	assert.False(t, ok)
	_, ok = ParseClock("8h")
	assert.False(t, ok)

	assert.Equal(t, "23:59", FormatClock(MinutesPerDay))
	assert.Equal(t, "07:05", FormatClock(425))
}

func TestDaySchedule_OverlapsBreak(t *testing.T) {
	d := DaySchedule{
		Enabled:           true,
		StartMinutes:      8 * 60,
		EndMinutes:        18 * 60,
		BreakStartMinutes: ptr.Ptr(12 * 60),
		BreakEndMinutes:   ptr.Ptr(13 * 60),
	}

	assert.True(t, d.OverlapsBreak(11*60, 12*60+1))
	assert.False(t, d.OverlapsBreak(11*60, 12*60))
	assert.False(t, d.OverlapsBreak(13*60, 14*60))
	assert.False(t, DaySchedule{}.OverlapsBreak(0, 100))
}

func TestIntegrationSettings_BookingConstraints(t *testing.T) {
	var missing *IntegrationSettings
	assert.Equal(t, DefaultBookingConstraints(), missing.BookingConstraints(0))

	s := &IntegrationSettings{
		LeadTimeMinutes:      ptr.Ptr(0),
		BufferMinutes:        ptr.Ptr(-5),
		TravelMinutes:        ptr.Ptr(10),
		DefaultDurationHours: ptr.Ptr(decimal.RequireFromString("1.5")),
	}
	c := s.BookingConstraints(15)

	assert.Equal(t, 0, c.LeadTimeMinutes, "explicit zero honoured")
	assert.Equal(t, DefaultBufferMinutes, c.BufferMinutes, "negative falls back")
	assert.Equal(t, 10, c.TravelMinutes)
	assert.Equal(t, 90, c.DurationMinutes)
	assert.Equal(t, 15, c.SlotIntervalMinutes)

	c = c.WithDurationHours(decimal.NewFromInt(2))
	assert.Equal(t, 120, c.DurationMinutes)
	c = c.WithDurationHours(decimal.Zero)
	assert.Equal(t, 120, c.DurationMinutes)
}

func TestIntegrationSettings_CalendarSyncActive(t *testing.T) {
	var missing *IntegrationSettings
	assert.False(t, missing.CalendarSyncActive())

	s := &IntegrationSettings{CalendarStatus: CalendarStatusConnected}
	assert.True(t, s.CalendarSyncActive())
	assert.Equal(t, PrimaryCalendarID, s.CalendarIDOrPrimary())

	s.CalendarEnabled = ptr.Ptr(false)
	assert.False(t, s.CalendarSyncActive())

	s = &IntegrationSettings{CalendarStatus: CalendarStatusError, CalendarID: "team@example.com"}
	assert.False(t, s.CalendarSyncActive())
	assert.Equal(t, "team@example.com", s.CalendarIDOrPrimary())
}
