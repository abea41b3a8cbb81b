package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-FieldService/internal/domain"
)

// Типы событий жизненного цикла заявки
const (
	TypeTicketStarted   = "ticket.started"
	TypeTicketCompleted = "ticket.completed"
	TypeTicketCancelled = "ticket.cancelled"
)

// TicketEvent событие изменения статуса заявки
type TicketEvent struct {
	EventID            uuid.UUID           `json:"eventId"`
	Type               string              `json:"type"`
	TicketID           uuid.UUID           `json:"ticketId"`
	TenantID           uuid.UUID           `json:"tenantId"`
	TechnicianID       *uuid.UUID          `json:"technicianId,omitempty"`
	Status             domain.TicketStatus `json:"status"`
	StartedAt          *time.Time          `json:"startedAt,omitempty"`
	CompletedAt        *time.Time          `json:"completedAt,omitempty"`
	CancelledAt        *time.Time          `json:"cancelledAt,omitempty"`
	CancellationReason *string             `json:"cancellationReason,omitempty"`
	TotalAmount        *decimal.Decimal    `json:"totalAmount,omitempty"`
	OccurredAt         time.Time           `json:"occurredAt"`
}

// NewTicketEvent собирает событие из текущего состояния заявки
func NewTicketEvent(eventType string, t *domain.Ticket, occurredAt time.Time) TicketEvent {
	return TicketEvent{
		EventID:            uuid.New(),
		Type:               eventType,
		TicketID:           t.ID,
		TenantID:           t.TenantID,
		TechnicianID:       t.TechnicianID,
		Status:             t.Status,
		StartedAt:          t.StartedAt,
		CompletedAt:        t.CompletedAt,
		CancelledAt:        t.CancelledAt,
		CancellationReason: t.CancellationReason,
		TotalAmount:        t.TotalAmount,
		OccurredAt:         occurredAt,
	}
}
