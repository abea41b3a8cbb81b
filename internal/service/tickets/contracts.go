package tickets

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-FieldService/internal/domain"
	"github.com/m04kA/SMC-FieldService/internal/integrations/events"
)

// TicketRepository интерфейс репозитория заявок
type TicketRepository interface {
	// GetByID внутри транзакции блокирует строку (FOR UPDATE)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error)
	UpdateLifecycle(ctx context.Context, ticket *domain.Ticket) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher интерфейс издателя событий жизненного цикла
type EventPublisher interface {
	PublishTicketEvent(ctx context.Context, event events.TicketEvent) error
}

// MetricsRecorder счётчики переходов заявок
type MetricsRecorder interface {
	IncTicketTransition(action, result string)
	IncTicketRecovered()
	IncEventPublished(eventType, result string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
