package calendar_callback

import (
	"context"

	"github.com/m04kA/SMC-FieldService/internal/service/calendarauth/models"
)

type CalendarAuthService interface {
	CompleteConnect(ctx context.Context, state, code string) (*models.CallbackResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
