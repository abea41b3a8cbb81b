package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-FieldService/internal/domain"
	serviceRepo "github.com/m04kA/SMC-FieldService/internal/infra/storage/servicecatalog"
	settingsRepo "github.com/m04kA/SMC-FieldService/internal/infra/storage/settings"
)

const calendarProviderName = "google_calendar"

// UseCase use case для вычисления доступных слотов
type UseCase struct {
	bookingRepo         BookingRepository
	settingsRepo        SettingsRepository
	serviceRepo         ServiceRepository
	calendar            CalendarProvider
	metrics             MetricsRecorder
	loc                 *time.Location
	defaultSlotInterval int
	timeProvider        TimeProvider
	logger              Logger
}

// NewUseCase создает новый экземпляр use case.
// calendar может быть nil, если интеграция с календарём не настроена.
func NewUseCase(
	bookingRepo BookingRepository,
	settingsRepo SettingsRepository,
	serviceRepo ServiceRepository,
	calendar CalendarProvider,
	metrics MetricsRecorder,
	loc *time.Location,
	defaultSlotInterval int,
	logger Logger,
) *UseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &UseCase{
		bookingRepo:         bookingRepo,
		settingsRepo:        settingsRepo,
		serviceRepo:         serviceRepo,
		calendar:            calendar,
		metrics:             metrics,
		loc:                 loc,
		defaultSlotInterval: defaultSlotInterval,
		timeProvider:        &RealTimeProvider{},
		logger:              logger,
	}
}

// Execute выполняет use case вычисления доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	days := calendarDays(req.RangeStart, req.RangeEnd, uc.loc)
	if err := validateRangeLength(len(days)); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	uc.logger.Info("GetAvailableSlots: tenant=%s, range=%s..%s, days=%d",
		req.TenantID, days[0].Format(domain.DateFormat), days[len(days)-1].Format(domain.DateFormat), len(days))

	now := uc.timeProvider.Now()

	// 2. Получаем настройки тенанта; отсутствие строки означает значения по умолчанию
	settings, err := uc.settingsRepo.GetIntegrationSettings(ctx, req.TenantID)
	if err != nil {
		if !errors.Is(err, settingsRepo.ErrSettingsNotFound) {
			uc.logger.Error("GetAvailableSlots: failed to get settings for tenant=%s: %v", req.TenantID, err)
			return nil, fmt.Errorf("%w: failed to get settings: %v", ErrInternal, err)
		}
		uc.logger.Info("GetAvailableSlots: no settings for tenant=%s, using defaults", req.TenantID)
		settings = nil
	}

	constraints := settings.BookingConstraints(uc.defaultSlotInterval)
	schedule := settings.WeeklySchedule(constraints.SlotIntervalMinutes)

	// 3. Длительность из услуги; неизвестная или неактивная услуга даёт пустой результат
	if req.ServiceID != nil {
		service, err := uc.serviceRepo.GetService(ctx, req.TenantID, *req.ServiceID)
		if err != nil {
			if errors.Is(err, serviceRepo.ErrServiceNotFound) {
				uc.logger.Warn("GetAvailableSlots: service id=%s not found for tenant=%s", *req.ServiceID, req.TenantID)
				return uc.emptyResponse(req, constraints), nil
			}
			uc.logger.Error("GetAvailableSlots: failed to get service id=%s: %v", *req.ServiceID, err)
			return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
		}
		if !service.Active {
			uc.logger.Warn("GetAvailableSlots: service id=%s is inactive", service.ID)
			return uc.emptyResponse(req, constraints), nil
		}
		constraints = constraints.WithDurationHours(service.DurationHours)
	}

	// 4. Параллельно загружаем заявки и занятость календаря
	windowStart := days[0]
	windowEnd := days[len(days)-1].AddDate(0, 0, 1)
	calendarChecked := uc.calendar != nil && settings.CalendarSyncActive()

	var (
		bookings []domain.ExistingBooking
		busy     []domain.BusyInterval
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bookings, err = uc.bookingRepo.ListBookingsInRange(
			gctx,
			req.TenantID,
			windowStart.AddDate(0, 0, -domain.BookingLookaroundDays),
			windowEnd.AddDate(0, 0, domain.BookingLookaroundDays),
			req.TechnicianID,
		)
		if err != nil {
			return fmt.Errorf("%w: failed to list bookings: %v", ErrInternal, err)
		}
		return nil
	})
	if calendarChecked {
		g.Go(func() error {
			busy = uc.loadBusyIntervals(gctx, req, settings, windowStart, windowEnd)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		uc.logger.Error("GetAvailableSlots: tenant=%s: %v", req.TenantID, err)
		return nil, err
	}

	// 5. Генерируем кандидатов и отбрасываем конфликтующие
	detector := newConflictDetector(bookings, busy, constraints, uc.loc)
	slots := computeSlots(days, schedule, constraints, detector, now)

	uc.metrics.RecordSlotsReturned(len(slots))
	uc.logger.Info("GetAvailableSlots: tenant=%s, bookings=%d, busy=%d, slots=%d",
		req.TenantID, len(bookings), len(busy), len(slots))

	return &Response{
		TenantID:        req.TenantID,
		DurationMinutes: constraints.DurationMinutes,
		CalendarChecked: calendarChecked,
		Slots:           slots,
	}, nil
}

// loadBusyIntervals получает занятость календаря; ошибка заменяется пустым набором
func (uc *UseCase) loadBusyIntervals(
	ctx context.Context,
	req *Request,
	settings *domain.IntegrationSettings,
	start, end time.Time,
) []domain.BusyInterval {
	busy, err := uc.calendar.ListBusyIntervals(ctx, req.TenantID, start, end, settings.CalendarIDOrPrimary())
	if err != nil {
		uc.logger.Error("GetAvailableSlots: calendar unavailable for tenant=%s, continuing without it: %v", req.TenantID, err)
		uc.metrics.IncCalendarDegraded(calendarProviderName)
		return []domain.BusyInterval{}
	}
	return busy
}

func (uc *UseCase) emptyResponse(req *Request, c domain.BookingConstraints) *Response {
	uc.metrics.RecordSlotsReturned(0)
	return &Response{
		TenantID:        req.TenantID,
		DurationMinutes: c.DurationMinutes,
		Slots:           []domain.AvailableSlot{},
	}
}
