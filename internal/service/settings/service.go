package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	settingsRepo "github.com/m04kA/SMC-FieldService/internal/infra/storage/settings"
	"github.com/m04kA/SMC-FieldService/internal/service/settings/models"
)

// Service сервис чтения настроек записи тенанта
type Service struct {
	settingsRepo        SettingsRepository
	loc                 *time.Location
	defaultSlotInterval int
	logger              Logger
}

// NewService создает новый экземпляр сервиса настроек
func NewService(settingsRepo SettingsRepository, loc *time.Location, defaultSlotInterval int, logger Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		settingsRepo:        settingsRepo,
		loc:                 loc,
		defaultSlotInterval: defaultSlotInterval,
		logger:              logger,
	}
}

// GetBookingSettings возвращает параметры записи в том виде, в каком их применяет расчёт слотов.
// Публичный метод - доступен всем
func (s *Service) GetBookingSettings(ctx context.Context, tenantID uuid.UUID) (*models.BookingSettingsResponse, error) {
	s.logger.Info("GetBookingSettings: fetching settings for tenant=%s", tenantID)

	if tenantID == uuid.Nil {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	settings, err := s.settingsRepo.GetIntegrationSettings(ctx, tenantID)
	if err != nil {
		if !errors.Is(err, settingsRepo.ErrSettingsNotFound) {
			s.logger.Error("GetBookingSettings: repository error for tenant=%s: %v", tenantID, err)
			return nil, fmt.Errorf("%w: GetBookingSettings - repository error: %v", ErrInternal, err)
		}
		s.logger.Info("GetBookingSettings: no settings for tenant=%s, returning defaults", tenantID)
		settings = nil
	}

	constraints := settings.BookingConstraints(s.defaultSlotInterval)
	week := settings.WeeklySchedule(constraints.SlotIntervalMinutes)

	return models.FromDomain(tenantID, settings, constraints, week, s.loc), nil
}
