package googlecalendar

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/api/calendar/v3"
)

// TokenRepository хранилище OAuth токенов тенанта
type TokenRepository interface {
	GetCalendarTokens(ctx context.Context, tenantID uuid.UUID) ([]byte, error)
}

// calendarAPI подмножество Google Calendar API, используемое клиентом
type calendarAPI interface {
	CalendarIDs(ctx context.Context) ([]string, error)
	FreeBusy(ctx context.Context, req *calendar.FreeBusyRequest) (*calendar.FreeBusyResponse, error)
	Events(ctx context.Context, calendarID, timeMin, timeMax string) ([]*calendar.Event, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
