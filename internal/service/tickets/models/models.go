package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-FieldService/internal/domain"
	"github.com/m04kA/SMC-FieldService/internal/service/finance"
)

// Request модели

// CompleteTicketRequest данные завершения заявки
type CompleteTicketRequest struct {
	DistanceTotal      finance.Amount  `json:"distanceTotal"`
	ExtraExpenses      finance.Amount  `json:"extraExpenses"`
	ExpenseDetails     *string         `json:"expenseDetails,omitempty"`
	TotalAmount        *finance.Amount `json:"totalAmount,omitempty"`        // Итог, посчитанный клиентом
	DistanceRate       *finance.Amount `json:"distanceRate,omitempty"`       // Переопределяет ставку заявки, если > 0
	AdditionalHourRate *finance.Amount `json:"additionalHourRate,omitempty"` // Переопределяет ставку заявки, если > 0
	ExtraHours         *finance.Amount `json:"extraHours,omitempty"`         // Иначе считается по фактическому времени
	ElapsedSeconds     *int64          `json:"elapsedSeconds,omitempty"`     // Иначе stoppedAt - startedAt
	PaymentDate        *string         `json:"paymentDate,omitempty"`        // "2025-11-30" или RFC3339
	DueDate            *string         `json:"dueDate,omitempty"`            // "2025-11-30" или RFC3339
	ArrivalTime        *time.Time      `json:"arrivalTime,omitempty"`        // Фактическое начало, если заявка не была начата
}

// CancelTicketRequest запрос на отмену заявки
type CancelTicketRequest struct {
	Reason string `json:"reason"`
	Source string `json:"source"` // client, technician или company
}

// Response модели

// TicketResponse ответ с данными заявки
type TicketResponse struct {
	ID                 uuid.UUID       `json:"id"`
	TenantID           uuid.UUID       `json:"tenantId"`
	ClientID           *uuid.UUID      `json:"clientId,omitempty"`
	ServiceID          *uuid.UUID      `json:"serviceId,omitempty"`
	TechnicianID       *uuid.UUID      `json:"technicianId,omitempty"`
	Status             string          `json:"status"`
	ScheduledStart     time.Time       `json:"scheduledStart"`
	DurationHours      finance.Amount  `json:"durationHours"`
	StartedAt          *time.Time      `json:"startedAt,omitempty"`
	StoppedAt          *time.Time      `json:"stoppedAt,omitempty"`
	CompletedAt        *time.Time      `json:"completedAt,omitempty"`
	CancelledAt        *time.Time      `json:"cancelledAt,omitempty"`
	CancellationReason *string         `json:"cancellationReason,omitempty"`
	TicketValue        finance.Amount  `json:"ticketValue"`
	DistanceTotal      finance.Amount  `json:"distanceTotal"`
	DistanceRate       finance.Amount  `json:"distanceRate"`
	ExtraExpenses      finance.Amount  `json:"extraExpenses"`
	ExpenseDetails     *string         `json:"expenseDetails,omitempty"`
	ExtraHours         finance.Amount  `json:"extraHours"`
	AdditionalHourRate finance.Amount  `json:"additionalHourRate"`
	TotalAmount        *finance.Amount `json:"totalAmount,omitempty"`
	ElapsedSeconds     *int64          `json:"elapsedSeconds,omitempty"`
	PaymentDate        *time.Time      `json:"paymentDate,omitempty"`
	DueDate            *time.Time      `json:"dueDate,omitempty"`
}

// FromDomainTicket конвертирует domain.Ticket в TicketResponse
func FromDomainTicket(t *domain.Ticket) *TicketResponse {
	resp := &TicketResponse{
		ID:                 t.ID,
		TenantID:           t.TenantID,
		ClientID:           t.ClientID,
		ServiceID:          t.ServiceID,
		TechnicianID:       t.TechnicianID,
		Status:             string(t.Status),
		ScheduledStart:     t.ScheduledStart,
		DurationHours:      finance.NewAmount(t.DurationHours),
		StartedAt:          t.StartedAt,
		StoppedAt:          t.StoppedAt,
		CompletedAt:        t.CompletedAt,
		CancelledAt:        t.CancelledAt,
		CancellationReason: t.CancellationReason,
		TicketValue:        finance.NewAmount(t.TicketValue),
		DistanceTotal:      finance.NewAmount(t.DistanceTotal),
		DistanceRate:       finance.NewAmount(t.DistanceRate),
		ExtraExpenses:      finance.NewAmount(t.ExtraExpenses),
		ExpenseDetails:     t.ExpenseDetails,
		ExtraHours:         finance.NewAmount(t.ExtraHours),
		AdditionalHourRate: finance.NewAmount(t.AdditionalHourRate),
		ElapsedSeconds:     t.ElapsedSeconds,
		PaymentDate:        t.PaymentDate,
		DueDate:            t.DueDate,
	}
	if t.TotalAmount != nil {
		total := finance.NewAmount(*t.TotalAmount)
		resp.TotalAmount = &total
	}
	return resp
}

// ParseDate принимает "YYYY-MM-DD" (полночь в loc) или RFC3339
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(domain.DateFormat, s, loc); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
