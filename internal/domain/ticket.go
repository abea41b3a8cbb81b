package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TicketStatus represents the lifecycle state of a ticket
type TicketStatus string

const (
	TicketStatusPending     TicketStatus = "PENDING"
	TicketStatusInExecution TicketStatus = "IN_EXECUTION"
	TicketStatusCompleted   TicketStatus = "COMPLETED"
	TicketStatusCancelled   TicketStatus = "CANCELLED"
)

// IsTerminal returns true for states with no outgoing transitions
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusCompleted || s == TicketStatusCancelled
}

func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusPending, TicketStatusInExecution, TicketStatusCompleted, TicketStatusCancelled:
		return true
	}
	return false
}

// TicketAction a lifecycle operation applied to a ticket
type TicketAction string

const (
	ActionStart    TicketAction = "start"
	ActionComplete TicketAction = "complete"
	ActionCancel   TicketAction = "cancel"
)

// CancellationSource who requested the cancellation
type CancellationSource string

const (
	CancellationSourceClient     CancellationSource = "client"
	CancellationSourceTechnician CancellationSource = "technician"
	CancellationSourceCompany    CancellationSource = "company"
)

func (s CancellationSource) Valid() bool {
	switch s {
	case CancellationSourceClient, CancellationSourceTechnician, CancellationSourceCompany:
		return true
	}
	return false
}

// ErrInvalidTransition is matched by every TransitionError
var ErrInvalidTransition = errors.New("invalid ticket transition")

// TransitionError an action that the current status does not allow
type TransitionError struct {
	TicketID uuid.UUID
	From     TicketStatus
	Action   TicketAction
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("ticket %s: cannot %s from status %s", e.TicketID, e.Action, e.From)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// Ticket a scheduled field-service job
type Ticket struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	ClientID     *uuid.UUID
	ServiceID    *uuid.UUID
	TechnicianID *uuid.UUID
	Status       TicketStatus

	ScheduledStart time.Time
	DurationHours  decimal.Decimal
	BufferMinutes  *int
	TravelMinutes  *int

	StartedAt          *time.Time
	StoppedAt          *time.Time
	CompletedAt        *time.Time
	CancelledAt        *time.Time
	CancellationReason *string

	// Financial fields
	TicketValue         decimal.Decimal
	DistanceTotal       decimal.Decimal
	DistanceRate        decimal.Decimal
	ExtraExpenses       decimal.Decimal
	ExpenseDetails      *string
	ExtraHours          decimal.Decimal
	AdditionalHourRate  decimal.Decimal
	TotalAmount         *decimal.Decimal
	ElapsedSeconds      *int64
	PaymentDate         *time.Time
	DueDate             *time.Time
	CalculationsEnabled bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t *Ticket) transitionError(action TicketAction) error {
	return &TransitionError{TicketID: t.ID, From: t.Status, Action: action}
}

// Start moves PENDING to IN_EXECUTION, recording at as the start instant if none is set.
// Returns false when the ticket was already running with a recorded start.
func (t *Ticket) Start(at time.Time) (bool, error) {
	switch t.Status {
	case TicketStatusPending:
	case TicketStatusInExecution:
		if t.StartedAt != nil {
			return false, nil
		}
	default:
		return false, t.transitionError(ActionStart)
	}

	t.Status = TicketStatusInExecution
	if t.StartedAt == nil {
		started := at
		t.StartedAt = &started
	}
	return true, nil
}

// MarkCompleted requires IN_EXECUTION and stamps stop and completion times.
// The stop instant never precedes a recorded start.
func (t *Ticket) MarkCompleted(now time.Time) error {
	if t.Status != TicketStatusInExecution {
		return t.transitionError(ActionComplete)
	}
	stopped := now
	if t.StartedAt != nil && t.StartedAt.After(stopped) {
		stopped = *t.StartedAt
	}
	completed := now
	t.Status = TicketStatusCompleted
	t.StoppedAt = &stopped
	t.CompletedAt = &completed
	return nil
}

// Cancel moves a non-terminal ticket to CANCELLED with an already formatted reason
func (t *Ticket) Cancel(reason string, now time.Time) error {
	if t.Status.IsTerminal() {
		return t.transitionError(ActionCancel)
	}
	cancelled := now
	t.Status = TicketStatusCancelled
	t.CancellationReason = &reason
	t.CancelledAt = &cancelled
	return nil
}

// Elapsed duration between start and stop floored to whole seconds.
// Negative spans are clamped to zero and reported via the second return value.
func Elapsed(startedAt, stoppedAt time.Time) (int64, bool) {
	secs := int64(stoppedAt.Sub(startedAt) / time.Second)
	if secs < 0 {
		return 0, true
	}
	return secs, false
}

// FormatCancellationReason folds the source into the reason and truncates it to the storage limit
func FormatCancellationReason(reason string, source CancellationSource) string {
	text := fmt.Sprintf("%s [source: %s]", strings.TrimSpace(reason), source)
	runes := []rune(text)
	if len(runes) > MaxCancellationReasonLength {
		return string(runes[:MaxCancellationReasonLength])
	}
	return text
}

// AsBooking the view of the ticket used by availability conflict checks
func (t *Ticket) AsBooking() ExistingBooking {
	return ExistingBooking{
		ID:             t.ID,
		ScheduledStart: t.ScheduledStart,
		DurationHours:  t.DurationHours,
		BufferMinutes:  t.BufferMinutes,
		TravelMinutes:  t.TravelMinutes,
		Status:         t.Status,
		TechnicianID:   t.TechnicianID,
	}
}
