package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DaySchedule working window of one weekday in minutes from local midnight.
// A break is present only when both break fields are set.
type DaySchedule struct {
	Enabled           bool
	StartMinutes      int
	EndMinutes        int
	BreakStartMinutes *int
	BreakEndMinutes   *int
}

func (d DaySchedule) HasBreak() bool {
	return d.BreakStartMinutes != nil && d.BreakEndMinutes != nil
}

// OverlapsBreak half-open test of [startMinutes, endMinutes) against the break
func (d DaySchedule) OverlapsBreak(startMinutes, endMinutes int) bool {
	if !d.HasBreak() {
		return false
	}
	return startMinutes < *d.BreakEndMinutes && endMinutes > *d.BreakStartMinutes
}

// Valid checks 0 <= start < end <= 1440 and that a break lies inside the window
func (d DaySchedule) Valid() bool {
	if d.StartMinutes < 0 || d.StartMinutes >= d.EndMinutes || d.EndMinutes > MinutesPerDay {
		return false
	}
	if d.BreakStartMinutes == nil && d.BreakEndMinutes == nil {
		return true
	}
	if !d.HasBreak() {
		return false
	}
	bs, be := *d.BreakStartMinutes, *d.BreakEndMinutes
	return d.StartMinutes <= bs && bs < be && be <= d.EndMinutes
}

// WeeklySchedule one DaySchedule per time.Weekday (0 = Sunday)
type WeeklySchedule [7]DaySchedule

func (w WeeklySchedule) Day(weekday time.Weekday) DaySchedule {
	return w[weekday]
}

// WorkingDayConfig stored per-day configuration; times are "HH:MM"
type WorkingDayConfig struct {
	Enabled      *bool  `json:"enabled,omitempty"`
	Start        string `json:"start,omitempty"`
	End          string `json:"end,omitempty"`
	BreakEnabled *bool  `json:"breakEnabled,omitempty"`
	BreakStart   string `json:"breakStart,omitempty"`
	BreakEnd     string `json:"breakEnd,omitempty"`
}

// WorkingHoursConfig stored working hours keyed by weekday number ("0".."6")
type WorkingHoursConfig struct {
	Days map[string]WorkingDayConfig `json:"days"`
}

// BuildWeeklySchedule derives a complete, normalised schedule from the stored working_hours and
// working_days values. Missing days are filled in, times are rounded down to the slot interval,
// inverted windows reset to 08:00-18:00 and breaks are clamped into the window or dropped.
// workingHours may be a {"days": {...}} object, an array of "HH:MM" slot starts, or either encoded as a JSON string.
func BuildWeeklySchedule(workingHours, workingDays json.RawMessage, slotInterval int) WeeklySchedule {
	if slotInterval <= 0 {
		slotInterval = DefaultSlotIntervalMinutes
	}

	enabledDays, ok := ParseWorkingDays(workingDays)
	if !ok || len(enabledDays) == 0 {
		enabledDays = DefaultWorkingDays
	}
	enabled := make(map[time.Weekday]bool, len(enabledDays))
	for _, d := range enabledDays {
		enabled[d] = true
	}

	raw := unwrapJSONString(workingHours)

	var cfg WorkingHoursConfig
	if err := json.Unmarshal(raw, &cfg); err == nil && cfg.Days != nil {
		var week WeeklySchedule
		for day := time.Sunday; day <= time.Saturday; day++ {
			dayCfg, found := cfg.Days[strconv.Itoa(int(day))]
			if !found {
				week[day] = normalizeDay(nil, enabled[day], slotInterval)
				continue
			}
			week[day] = normalizeDay(&dayCfg, enabled[day], slotInterval)
		}
		return week
	}

	var slots []string
	if err := json.Unmarshal(raw, &slots); err == nil {
		return scheduleFromSlotList(slots, enabled, slotInterval)
	}

	var week WeeklySchedule
	for day := time.Sunday; day <= time.Saturday; day++ {
		week[day] = normalizeDay(nil, enabled[day], slotInterval)
	}
	return week
}

func normalizeDay(cfg *WorkingDayConfig, fallbackEnabled bool, slotInterval int) DaySchedule {
	if cfg == nil {
		cfg = &WorkingDayConfig{}
	}

	enabled := fallbackEnabled
	if cfg.Enabled != nil {
		enabled = *cfg.Enabled
	}

	start := roundToSlot(minutesOr(cfg.Start, DefaultDayStartMinutes), slotInterval)
	end := roundToSlot(minutesOr(cfg.End, DefaultDayEndMinutes), slotInterval)
	if end <= start {
		start, end = DefaultDayStartMinutes, DefaultDayEndMinutes
	}

	day := DaySchedule{
		Enabled:      enabled,
		StartMinutes: start,
		EndMinutes:   end,
	}

	if cfg.BreakEnabled == nil || !*cfg.BreakEnabled {
		return day
	}

	breakStart := roundToSlot(minutesOr(cfg.BreakStart, DefaultBreakStartMinutes), slotInterval)
	breakEnd := roundToSlot(minutesOr(cfg.BreakEnd, DefaultBreakEndMinutes), slotInterval)
	if breakStart < start {
		breakStart = start
	}
	if breakEnd > end {
		breakEnd = end
	}
	if breakEnd <= breakStart {
		return day
	}

	day.BreakStartMinutes = &breakStart
	day.BreakEndMinutes = &breakEnd
	return day
}

// scheduleFromSlotList legacy format: a flat list of allowed start times shared by every enabled day
func scheduleFromSlotList(slots []string, enabled map[time.Weekday]bool, slotInterval int) WeeklySchedule {
	seen := make(map[int]struct{})
	starts := make([]int, 0, len(slots))
	for _, s := range slots {
		m, ok := ParseClock(s)
		if !ok {
			continue
		}
		m = roundToSlot(m, slotInterval)
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		starts = append(starts, m)
	}
	sort.Ints(starts)

	start, end := DefaultDayStartMinutes, DefaultDayEndMinutes
	if len(starts) > 0 {
		start = starts[0]
		end = starts[len(starts)-1] + slotInterval
		if limit := MinutesPerDay - slotInterval; end > limit {
			end = limit
		}
	}

	var week WeeklySchedule
	for day := time.Sunday; day <= time.Saturday; day++ {
		on := enabled[day]
		week[day] = normalizeDay(&WorkingDayConfig{
			Enabled: &on,
			Start:   FormatClock(start),
			End:     FormatClock(end),
		}, on, slotInterval)
	}
	return week
}

// ParseWorkingDays accepts a JSON array of numbers or numeric strings, a JSON-encoded array inside a
// string, or a comma separated string. Values outside 0..6 are dropped.
// The second return value is false when raw holds no recognisable value.
func ParseWorkingDays(raw json.RawMessage) ([]time.Weekday, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, false
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		return sanitizeDays(items), true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}

	if err := json.Unmarshal([]byte(s), &items); err == nil {
		return sanitizeDays(items), true
	}

	days := make([]time.Weekday, 0, 7)
	for _, part := range strings.Split(s, ",") {
		if d, ok := parseDay(strings.TrimSpace(part)); ok {
			days = append(days, d)
		}
	}
	return days, true
}

func sanitizeDays(items []json.RawMessage) []time.Weekday {
	days := make([]time.Weekday, 0, len(items))
	for _, item := range items {
		var n json.Number
		if err := json.Unmarshal(item, &n); err == nil {
			if d, ok := parseDay(n.String()); ok {
				days = append(days, d)
			}
			continue
		}
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if d, ok := parseDay(strings.TrimSpace(s)); ok {
				days = append(days, d)
			}
		}
	}
	return days
}

func parseDay(s string) (time.Weekday, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) || f < 0 || f > 6 {
		return 0, false
	}
	return time.Weekday(int(f)), true
}

var clockRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// ParseClock parses "HH:MM" into minutes from midnight
func ParseClock(s string) (int, bool) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	if h > 23 || mins > 59 {
		return 0, false
	}
	return h*60 + mins, true
}

// FormatClock renders minutes from midnight as "HH:MM", clamped to 00:00..23:59
func FormatClock(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	if minutes > MinutesPerDay-1 {
		minutes = MinutesPerDay - 1
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func minutesOr(s string, def int) int {
	if m, ok := ParseClock(s); ok {
		return m
	}
	return def
}

func roundToSlot(minutes, slotInterval int) int {
	return minutes / slotInterval * slotInterval
}

// unwrapJSONString returns the inner document when raw is a JSON string containing JSON
func unwrapJSONString(raw json.RawMessage) json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return raw
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return raw
	}
	return json.RawMessage(s)
}
