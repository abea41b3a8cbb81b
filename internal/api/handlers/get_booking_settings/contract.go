package get_booking_settings

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-FieldService/internal/service/settings/models"
)

type SettingsService interface {
	GetBookingSettings(ctx context.Context, tenantID uuid.UUID) (*models.BookingSettingsResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
