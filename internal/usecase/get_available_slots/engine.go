package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-FieldService/internal/domain"
)

// calendarDays возвращает локальные полуночи каждого дня от start до end включительно
func calendarDays(start, end time.Time, loc *time.Location) []time.Time {
	first := domain.StartOfDay(start, loc)
	last := domain.StartOfDay(end, loc)

	days := make([]time.Time, 0)
	for i := 0; ; i++ {
		// time.Date на каждый день, чтобы переходы на летнее время не сдвигали полночь
		day := time.Date(first.Year(), first.Month(), first.Day()+i, 0, 0, 0, 0, loc)
		if day.After(last) {
			break
		}
		days = append(days, day)
	}
	return days
}

// generateCandidates генерирует начала слотов дня с шагом slotInterval.
// Слот должен целиком помещаться в рабочее окно, не пересекать перерыв и полночь
// и начинаться не раньше earliest.
func generateCandidates(day time.Time, schedule domain.DaySchedule, c domain.BookingConstraints, earliest time.Time) []time.Time {
	if !schedule.Enabled || c.SlotIntervalMinutes <= 0 || c.DurationMinutes <= 0 {
		return nil
	}

	nextMidnight := time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, day.Location())
	duration := c.Duration()

	candidates := make([]time.Time, 0)
	for m := schedule.StartMinutes; m+c.DurationMinutes <= schedule.EndMinutes; m += c.SlotIntervalMinutes {
		if schedule.OverlapsBreak(m, m+c.DurationMinutes) {
			continue
		}

		start := time.Date(day.Year(), day.Month(), day.Day(), 0, m, 0, 0, day.Location())
		if start.Before(earliest) {
			continue
		}
		if start.Add(duration).After(nextMidnight) {
			continue
		}

		candidates = append(candidates, start)
	}
	return candidates
}

// conflictDetector проверяет слот против заявок и занятости календаря
type conflictDetector struct {
	bookings []domain.TimeWindow // защищённые интервалы заявок
	busy     []domain.TimeWindow // занятость календаря, целодневные уже растянуты до полуночей
}

func newConflictDetector(
	bookings []domain.ExistingBooking,
	busy []domain.BusyInterval,
	c domain.BookingConstraints,
	loc *time.Location,
) conflictDetector {
	d := conflictDetector{
		bookings: make([]domain.TimeWindow, 0, len(bookings)),
		busy:     make([]domain.TimeWindow, 0, len(busy)),
	}

	for _, b := range bookings {
		if !b.Blocking() {
			continue
		}
		d.bookings = append(d.bookings, b.ProtectedWindow(c.BufferMinutes, c.TravelMinutes))
	}

	for _, b := range busy {
		w := b.Window(loc)
		if !w.Valid() {
			continue
		}
		d.busy = append(d.busy, w)
	}

	return d
}

// conflicts true, если слот с началом start недоступен.
// С заявками сравнивается защищённый интервал слота, с календарём исходный.
func (d conflictDetector) conflicts(start time.Time, c domain.BookingConstraints) bool {
	window := domain.NewTimeWindow(start, c.Duration())
	protected := window.Protect(c.BufferMinutes, c.TravelMinutes)

	for _, b := range d.bookings {
		if protected.Overlaps(b) {
			return true
		}
	}
	for _, b := range d.busy {
		if window.Overlaps(b) {
			return true
		}
	}
	return false
}

// computeSlots собирает доступные слоты по дням в хронологическом порядке
func computeSlots(
	days []time.Time,
	schedule domain.WeeklySchedule,
	c domain.BookingConstraints,
	detector conflictDetector,
	now time.Time,
) []domain.AvailableSlot {
	earliest := now.Add(time.Duration(c.LeadTimeMinutes) * time.Minute)

	slots := make([]domain.AvailableSlot, 0)
	for _, day := range days {
		for _, start := range generateCandidates(day, schedule.Day(day.Weekday()), c, earliest) {
			if detector.conflicts(start, c) {
				continue
			}
			slots = append(slots, domain.NewAvailableSlot(start))
		}
	}
	return slots
}
