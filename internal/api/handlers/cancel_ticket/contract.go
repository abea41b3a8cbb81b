package cancel_ticket

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-FieldService/internal/service/tickets/models"
)

type TicketService interface {
	Cancel(ctx context.Context, tenantID, ticketID uuid.UUID, req *models.CancelTicketRequest) (*models.TicketResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
