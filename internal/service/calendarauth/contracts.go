package calendarauth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-FieldService/internal/domain"
	settingsRepo "github.com/m04kA/SMC-FieldService/internal/infra/storage/settings"
	"github.com/m04kA/SMC-FieldService/internal/integrations/googlecalendar"
)

// StateStore хранилище одноразовых OAuth state
type StateStore interface {
	Put(ctx context.Context, token string, value []byte, ttl time.Duration) error
	Take(ctx context.Context, token string) ([]byte, error)
}

// OAuthProvider интерфейс OAuth клиента календаря
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*googlecalendar.Connection, error)
}

// ConnectionRepository интерфейс хранилища подключения календаря
type ConnectionRepository interface {
	SaveCalendarConnection(ctx context.Context, tenantID uuid.UUID, conn settingsRepo.CalendarConnection) error
	SetCalendarStatus(ctx context.Context, tenantID uuid.UUID, status domain.CalendarStatus) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
