package get_available_slots

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-FieldService/internal/domain"
)

// BookingRepository интерфейс репозитория заявок
type BookingRepository interface {
	// ListBookingsInRange получает неотменённые заявки тенанта, начинающиеся в [start, end]
	ListBookingsInRange(ctx context.Context, tenantID uuid.UUID, start, end time.Time, technicianID *uuid.UUID) ([]domain.ExistingBooking, error)
}

// SettingsRepository интерфейс репозитория настроек тенанта
type SettingsRepository interface {
	GetIntegrationSettings(ctx context.Context, tenantID uuid.UUID) (*domain.IntegrationSettings, error)
}

// ServiceRepository интерфейс справочника услуг
type ServiceRepository interface {
	GetService(ctx context.Context, tenantID, serviceID uuid.UUID) (*domain.Service, error)
}

// CalendarProvider интерфейс внешнего календаря
type CalendarProvider interface {
	ListBusyIntervals(ctx context.Context, tenantID uuid.UUID, start, end time.Time, calendarID string) ([]domain.BusyInterval, error)
}

// MetricsRecorder счётчики вычисления доступности
type MetricsRecorder interface {
	RecordSlotsReturned(count int)
	IncCalendarDegraded(provider string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
