package get_available_slots

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-FieldService/internal/domain"
	serviceRepo "github.com/m04kA/SMC-FieldService/internal/infra/storage/servicecatalog"
	settingsRepo "github.com/m04kA/SMC-FieldService/internal/infra/storage/settings"
	"github.com/m04kA/SMC-FieldService/pkg/ptr"
)

var testLoc = time.FixedZone("BRT", -3*60*60)

// Mocks

type mockBookingRepo struct{ mock.Mock }

func (m *mockBookingRepo) ListBookingsInRange(ctx context.Context, tenantID uuid.UUID, start, end time.Time, technicianID *uuid.UUID) ([]domain.ExistingBooking, error) {
	args := m.Called(ctx, tenantID, start, end, technicianID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExistingBooking), args.Error(1)
}

type mockSettingsRepo struct{ mock.Mock }

func (m *mockSettingsRepo) GetIntegrationSettings(ctx context.Context, tenantID uuid.UUID) (*domain.IntegrationSettings, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IntegrationSettings), args.Error(1)
}

type mockServiceRepo struct{ mock.Mock }

func (m *mockServiceRepo) GetService(ctx context.Context, tenantID, serviceID uuid.UUID) (*domain.Service, error) {
	args := m.Called(ctx, tenantID, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

type mockCalendar struct{ mock.Mock }

func (m *mockCalendar) ListBusyIntervals(ctx context.Context, tenantID uuid.UUID, start, end time.Time, calendarID string) ([]domain.BusyInterval, error) {
	args := m.Called(ctx, tenantID, start, end, calendarID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BusyInterval), args.Error(1)
}

type fakeMetrics struct {
	slotsReturned []int
	degraded      map[string]int
}

func (f *fakeMetrics) RecordSlotsReturned(count int) {
	f.slotsReturned = append(f.slotsReturned, count)
}

func (f *fakeMetrics) IncCalendarDegraded(provider string) {
	if f.degraded == nil {
		f.degraded = map[string]int{}
	}
	f.degraded[provider]++
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// Fixtures

type fixture struct {
	bookings *mockBookingRepo
	settings *mockSettingsRepo
	services *mockServiceRepo
	calendar *mockCalendar
	metrics  *fakeMetrics
	uc       *UseCase
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		bookings: &mockBookingRepo{},
		settings: &mockSettingsRepo{},
		services: &mockServiceRepo{},
		calendar: &mockCalendar{},
		metrics:  &fakeMetrics{},
	}
	f.uc = NewUseCase(f.bookings, f.settings, f.services, f.calendar, f.metrics, testLoc, domain.DefaultSlotIntervalMinutes, nopLogger{})
	f.uc.timeProvider = fixedTime{now: now}
	return f
}

func at(day, hour, minute int) time.Time {
	return time.Date(2025, time.November, day, hour, minute, 0, 0, testLoc)
}

func weekdaySettings(tenantID uuid.UUID) *domain.IntegrationSettings {
	return &domain.IntegrationSettings{
		TenantID:       tenantID,
		BufferMinutes:  ptr.Ptr(0),
		TravelMinutes:  ptr.Ptr(0),
		WorkingDays:    json.RawMessage(`[1,2,3,4,5]`),
		CalendarStatus: domain.CalendarStatusNotConnected,
	}
}

func slotTimes(slots []domain.AvailableSlot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Date+" "+s.Time)
	}
	return out
}

// Tests

func TestExecute_ExistingBookingProtectedInterval(t *testing.T) {
	f := newFixture(at(17, 8, 0))
	tenantID := uuid.New()
	serviceID := uuid.New()

	f.settings.On("GetIntegrationSettings", mock.Anything, tenantID).Return(weekdaySettings(tenantID), nil)
	f.services.On("GetService", mock.Anything, tenantID, serviceID).Return(&domain.Service{
		ID:            serviceID,
		TenantID:      tenantID,
		DurationHours: decimal.NewFromInt(2),
		Active:        true,
	}, nil)
	f.bookings.On("ListBookingsInRange", mock.Anything, tenantID, mock.Anything, mock.Anything, (*uuid.UUID)(nil)).
		Return([]domain.ExistingBooking{{
			ID:             uuid.New(),
			ScheduledStart: at(18, 10, 0),
			DurationHours:  decimal.NewFromInt(2),
			BufferMinutes:  ptr.Ptr(15),
			TravelMinutes:  ptr.Ptr(30),
			Status:         domain.TicketStatusPending,
		}}, nil)

	resp, err := f.uc.Execute(context.Background(), &Request{
		TenantID:   tenantID,
		ServiceID:  &serviceID,
		RangeStart: at(18, 0, 0),
		RangeEnd:   at(18, 0, 0),
	})
	require.NoError(t, err)

	got := slotTimes(resp.Slots)
	assert.NotContains(t, got, "2025-11-18 11:00")
	assert.Contains(t, got, "2025-11-18 13:00")
	assert.Equal(t, []string{
		"2025-11-18 13:00",
		"2025-11-18 13:30",
		"2025-11-18 14:00",
		"2025-11-18 14:30",
		"2025-11-18 15:00",
		"2025-11-18 15:30",
		"2025-11-18 16:00",
	}, got)
	assert.Equal(t, 120, resp.DurationMinutes)
	assert.False(t, resp.CalendarChecked)
	f.calendar.AssertNotCalled(t, "ListBusyIntervals", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, []int{7}, f.metrics.slotsReturned)
}

func TestExecute_AllDayBusyBlocksWholeDay(t *testing.T) {
	f := newFixture(at(10, 8, 0))
	tenantID := uuid.New()

	settings := weekdaySettings(tenantID)
	settings.CalendarStatus = domain.CalendarStatusConnected
	f.settings.On("GetIntegrationSettings", mock.Anything, tenantID).Return(settings, nil)
	f.bookings.On("ListBookingsInRange", mock.Anything, tenantID, mock.Anything, mock.Anything, (*uuid.UUID)(nil)).
		Return([]domain.ExistingBooking{}, nil)
	f.calendar.On("ListBusyIntervals", mock.Anything, tenantID, at(19, 0, 0), at(22, 0, 0), domain.PrimaryCalendarID).
		Return([]domain.BusyInterval{{
			Start:  at(20, 0, 0),
			End:    at(21, 0, 0),
			AllDay: true,
		}}, nil)

	resp, err := f.uc.Execute(context.Background(), &Request{
		TenantID:   tenantID,
		RangeStart: at(19, 0, 0),
		RangeEnd:   at(21, 0, 0),
	})
	require.NoError(t, err)
	assert.True(t, resp.CalendarChecked)

	perDay := map[string]int{}
	for _, s := range resp.Slots {
		perDay[s.Date]++
	}
	assert.Zero(t, perDay["2025-11-20"])
	assert.Positive(t, perDay["2025-11-19"])
	assert.Positive(t, perDay["2025-11-21"])
	f.calendar.AssertExpectations(t)
}

func TestExecute_LeadTime(t *testing.T) {
	f := newFixture(at(18, 9, 50))
	tenantID := uuid.New()

	settings := weekdaySettings(tenantID)
	settings.LeadTimeMinutes = ptr.Ptr(30)
	f.settings.On("GetIntegrationSettings", mock.Anything, tenantID).Return(settings, nil)
	f.bookings.On("ListBookingsInRange", mock.Anything, tenantID, mock.Anything, mock.Anything, (*uuid.UUID)(nil)).
		Return([]domain.ExistingBooking{}, nil)

	resp, err := f.uc.Execute(context.Background(), &Request{
		TenantID:   tenantID,
		RangeStart: at(18, 0, 0),
		RangeEnd:   at(18, 0, 0),
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Slots)

	assert.Equal(t, "10:30", resp.Slots[0].Time)
	for _, s := range resp.Slots {
		assert.False(t, s.Datetime.Before(at(18, 10, 20)), "slot %s before lead time", s.Time)
	}
}

func TestExecute_DefaultsWhenSettingsMissing(t *testing.T) {
	f := newFixture(at(1, 0, 0))
	tenantID := uuid.New()

	f.settings.On("GetIntegrationSettings", mock.Anything, tenantID).Return(nil, settingsRepo.ErrSettingsNotFound)
	f.bookings.On("ListBookingsInRange", mock.Anything, tenantID, mock.Anything, mock.Anything, (*uuid.UUID)(nil)).
		Return([]domain.ExistingBooking{}, nil)

	// 2025-11-16 воскресенье, 2025-11-18 вторник
	resp, err := f.uc.Execute(context.Background(), &Request{
		TenantID:   tenantID,
		RangeStart: at(16, 0, 0),
		RangeEnd:   at(18, 0, 0),
	})
	require.NoError(t, err)

	perDay := map[string][]string{}
	for _, s := range resp.Slots {
		perDay[s.Date] = append(perDay[s.Date], s.Time)
	}
	assert.Empty(t, perDay["2025-11-16"])
	// 08:00..15:00 с шагом 30 минут для услуги 3 часа
	require.Len(t, perDay["2025-11-18"], 15)
	assert.Equal(t, "08:00", perDay["2025-11-18"][0])
	assert.Equal(t, "15:00", perDay["2025-11-18"][14])
	assert.Equal(t, domain.DefaultServiceDurationHours*60, resp.DurationMinutes)
}

func TestExecute_SlotsEndWithinWorkingDay(t *testing.T) {
	f := newFixture(at(1, 0, 0))
	tenantID := uuid.New()

	settings := weekdaySettings(tenantID)
	settings.DefaultDurationHours = ptr.Ptr(decimal.RequireFromString("1.5"))
	settings.WorkingHours = json.RawMessage(`{"days":{"2":{"enabled":true,"start":"09:00","end":"17:00","breakEnabled":true,"breakStart":"12:00","breakEnd":"13:00"}}}`)
	f.settings.On("GetIntegrationSettings", mock.Anything, tenantID).Return(settings, nil)
	f.bookings.On("ListBookingsInRange", mock.Anything, tenantID, mock.Anything, mock.Anything, (*uuid.UUID)(nil)).
		Return([]domain.ExistingBooking{}, nil)

	resp, err := f.uc.Execute(context.Background(), &Request{
		TenantID:   tenantID,
		RangeStart: at(18, 0, 0),
		RangeEnd:   at(18, 0, 0),
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Slots)

	dayEnd := at(18, 17, 0)
	breakStart, breakEnd := at(18, 12, 0), at(18, 13, 0)
	for _, s := range resp.Slots {
		end := s.Datetime.Add(90 * time.Minute)
		assert.False(t, end.After(dayEnd), "slot %s ends after working day", s.Time)
		assert.False(t, s.Datetime.Before(breakEnd) && end.After(breakStart), "slot %s overlaps break", s.Time)
	}
	assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30", "13:00", "13:30", "14:00", "14:30", "15:00", "15:30"},
		func() []string {
			out := make([]string, 0)
			for _, s := range resp.Slots {
				out = append(out, s.Time)
			}
			return out
		}())
}

func TestExecute_BusyIntervalComparedUnpadded(t *testing.T) {
	f := newFixture(at(1, 0, 0))
	tenantID := uuid.New()

	settings := weekdaySettings(tenantID)
	settings.BufferMinutes = nil
	settings.TravelMinutes = nil
	settings.DefaultDurationHours = ptr.Ptr(decimal.NewFromInt(1))
	settings.CalendarStatus = domain.CalendarStatusConnected
	settings.CalendarID = "work@example.com"
	f.settings.On("GetIntegrationSettings", mock.Anything, tenantID).Return(settings, nil)
	f.bookings.On("ListBookingsInRange", mock.Anything, tenantID, mock.Anything, mock.Anything, (*uuid.UUID)(nil)).
		Return([]domain.ExistingBooking{}, nil)
	f.calendar.On("ListBusyIntervals", mock.Anything, tenantID, mock.Anything, mock.Anything, "work@example.com").
		Return([]domain.BusyInterval{{Start: at(18, 13, 0), End: at(18, 14, 0)}}, nil)

	resp, err := f.uc.Execute(context.Background(), &Request{
		TenantID:   tenantID,
		RangeStart: at(18, 0, 0),
		RangeEnd:   at(18, 0, 0),
	})
	require.NoError(t, err)

	got := slotTimes(resp.Slots)
	assert.Contains(t, got, "2025-11-18 12:00")
	assert.NotContains(t, got, "2025-11-18 12:30")
	assert.NotContains(t, got, "2025-11-18 13:30")
	assert.Contains(t, got, "2025-11-18 14:00")
}

func TestExecute_CalendarFailureDegrades(t *testing.T) {
	f := newFixture(at(1, 0, 0))
	tenantID := uuid.New()

	settings := weekdaySettings(tenantID)
	settings.CalendarStatus = domain.CalendarStatusConnected
	f.settings.On("GetIntegrationSettings", mock.Anything, tenantID).Return(settings, nil)
	f.bookings.On("ListBookingsInRange", mock.Anything, tenantID, mock.Anything, mock.Anything, (*uuid.UUID)(nil)).
		Return([]domain.ExistingBooking{}, nil)
	f.calendar.On("ListBusyIntervals", mock.Anything, tenantID, mock.Anything, mock.Anything, domain.PrimaryCalendarID).
		Return(nil, errors.New("googleapi: 503"))

	resp, err := f.uc.Execute(context.Background(), &Request{
		TenantID:   tenantID,
		RangeStart: at(18, 0, 0),
		RangeEnd:   at(18, 0, 0),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Slots)
	assert.Equal(t, 1, f.metrics.degraded[calendarProviderName])
}

func TestExecute_CalendarDisabledIsNotQueried(t *testing.T) {
	f := newFixture(at(1, 0, 0))
	tenantID := uuid.New()

	settings := weekdaySettings(tenantID)
	settings.CalendarStatus = domain.CalendarStatusConnected
	settings.CalendarEnabled = ptr.Ptr(false)
	f.settings.On("GetIntegrationSettings", mock.Anything, tenantID).Return(settings, nil)
	f.bookings.On("ListBookingsInRange", mock.Anything, tenantID, mock.Anything, mock.Anything, (*uuid.UUID)(nil)).
		Return([]domain.ExistingBooking{}, nil)

	resp, err := f.uc.Execute(context.Background(), &Request{
		TenantID:   tenantID,
		RangeStart: at(18, 0, 0),
		RangeEnd:   at(18, 0, 0),
	})
	require.NoError(t, err)
	assert.False(t, resp.CalendarChecked)
	f.calendar.AssertNotCalled(t, "ListBusyIntervals", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_UnknownOrInactiveServiceReturnsEmpty(t *testing.T) {
	tenantID := uuid.New()

	tests := []struct {
		name    string
		service *domain.Service
		err     error
	}{
		{name: "not found", err: serviceRepo.ErrServiceNotFound},
		{name: "inactive", service: &domain.Service{ID: uuid.New(), DurationHours: decimal.NewFromInt(1), Active: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(at(1, 0, 0))
			serviceID := uuid.New()

			f.settings.On("GetIntegrationSettings", mock.Anything, tenantID).Return(weekdaySettings(tenantID), nil)
			if tt.service != nil {
				f.services.On("GetService", mock.Anything, tenantID, serviceID).Return(tt.service, nil)
			} else {
				f.services.On("GetService", mock.Anything, tenantID, serviceID).Return(nil, tt.err)
			}

			resp, err := f.uc.Execute(context.Background(), &Request{
				TenantID:   tenantID,
				ServiceID:  &serviceID,
				RangeStart: at(18, 0, 0),
				RangeEnd:   at(18, 0, 0),
			})
			require.NoError(t, err)
			assert.Empty(t, resp.Slots)
			f.bookings.AssertNotCalled(t, "ListBookingsInRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestExecute_BookingWindowAndTechnicianFilter(t *testing.T) {
	f := newFixture(at(1, 0, 0))
	tenantID := uuid.New()
	technicianID := uuid.New()

	f.settings.On("GetIntegrationSettings", mock.Anything, tenantID).Return(weekdaySettings(tenantID), nil)
	f.bookings.On("ListBookingsInRange", mock.Anything, tenantID, at(11, 0, 0), at(27, 0, 0), &technicianID).
		Return([]domain.ExistingBooking{}, nil)

	_, err := f.uc.Execute(context.Background(), &Request{
		TenantID:     tenantID,
		TechnicianID: &technicianID,
		RangeStart:   at(18, 0, 0),
		RangeEnd:     at(19, 0, 0),
	})
	require.NoError(t, err)
	f.bookings.AssertExpectations(t)
}

func TestExecute_CancelledBookingDoesNotBlock(t *testing.T) {
	f := newFixture(at(1, 0, 0))
	tenantID := uuid.New()

	f.settings.On("GetIntegrationSettings", mock.Anything, tenantID).Return(weekdaySettings(tenantID), nil)
	f.bookings.On("ListBookingsInRange", mock.Anything, tenantID, mock.Anything, mock.Anything, (*uuid.UUID)(nil)).
		Return([]domain.ExistingBooking{{
			ID:             uuid.New(),
			ScheduledStart: at(18, 8, 0),
			DurationHours:  decimal.NewFromInt(3),
			Status:         domain.TicketStatusCancelled,
		}}, nil)

	resp, err := f.uc.Execute(context.Background(), &Request{
		TenantID:   tenantID,
		RangeStart: at(18, 0, 0),
		RangeEnd:   at(18, 0, 0),
	})
	require.NoError(t, err)
	assert.Contains(t, slotTimes(resp.Slots), "2025-11-18 08:00")
}

func TestExecute_Errors(t *testing.T) {
	tenantID := uuid.New()

	t.Run("validation", func(t *testing.T) {
		f := newFixture(at(1, 0, 0))

		_, err := f.uc.Execute(context.Background(), &Request{RangeStart: at(18, 0, 0), RangeEnd: at(18, 0, 0)})
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = f.uc.Execute(context.Background(), &Request{TenantID: tenantID, RangeStart: at(18, 0, 0), RangeEnd: at(17, 0, 0)})
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = f.uc.Execute(context.Background(), &Request{
			TenantID:   tenantID,
			RangeStart: at(1, 0, 0),
			RangeEnd:   at(1, 0, 0).AddDate(0, 0, domain.MaxAvailabilityRangeDays),
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("settings storage failure", func(t *testing.T) {
		f := newFixture(at(1, 0, 0))
		f.settings.On("GetIntegrationSettings", mock.Anything, tenantID).Return(nil, errors.New("connection refused"))

		_, err := f.uc.Execute(context.Background(), &Request{TenantID: tenantID, RangeStart: at(18, 0, 0), RangeEnd: at(18, 0, 0)})
		assert.ErrorIs(t, err, ErrInternal)
	})

	t.Run("bookings storage failure", func(t *testing.T) {
		f := newFixture(at(1, 0, 0))
		f.settings.On("GetIntegrationSettings", mock.Anything, tenantID).Return(weekdaySettings(tenantID), nil)
		f.bookings.On("ListBookingsInRange", mock.Anything, tenantID, mock.Anything, mock.Anything, (*uuid.UUID)(nil)).
			Return(nil, errors.New("timeout"))

		_, err := f.uc.Execute(context.Background(), &Request{TenantID: tenantID, RangeStart: at(18, 0, 0), RangeEnd: at(18, 0, 0)})
		assert.ErrorIs(t, err, ErrInternal)
	})
}
