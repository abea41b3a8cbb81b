package connect_calendar

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-FieldService/internal/service/calendarauth/models"
)

type CalendarAuthService interface {
	BeginConnect(ctx context.Context, tenantID uuid.UUID) (*models.ConnectResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
