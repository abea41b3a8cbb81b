package complete_ticket

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-FieldService/internal/api/handlers"
	"github.com/m04kA/SMC-FieldService/internal/api/middleware"
	"github.com/m04kA/SMC-FieldService/internal/domain"
	"github.com/m04kA/SMC-FieldService/internal/service/tickets"
	"github.com/m04kA/SMC-FieldService/internal/service/tickets/models"
)

const (
	msgInvalidTicketID     = "некорректный ID заявки"
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgMissingTenantID     = "отсутствует ID тенанта"
	msgNotFound            = "заявка не найдена"
	msgCannotComplete      = "заявку в текущем статусе нельзя завершить"
	msgTotalAmountRequired = "необходимо указать итоговую сумму"
	msgMissingClient       = "у заявки нет клиента для выставления счёта"
)

type Handler struct {
	service TicketService
	logger  Logger
}

func NewHandler(service TicketService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/tickets/{ticketId}/complete
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	ticketID, err := uuid.Parse(mux.Vars(r)["ticketId"])
	if err != nil {
		h.logger.Warn("POST /tickets/{id}/complete - Invalid ticket ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTicketID)
		return
	}

	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("POST /tickets/{id}/complete - Missing tenant ID")
		handlers.RespondUnauthorized(w, msgMissingTenantID)
		return
	}

	// Декодируем body
	var req models.CompleteTicketRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /tickets/{id}/complete - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	ticket, err := h.service.Complete(r.Context(), tenantID, ticketID, &req)
	if err != nil {
		switch {
		case errors.Is(err, tickets.ErrTicketNotFound):
			h.logger.Warn("POST /tickets/{id}/complete - Ticket not found: ticket_id=%s", ticketID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, domain.ErrInvalidTransition):
			h.logger.Warn("POST /tickets/{id}/complete - Invalid transition: ticket_id=%s, error=%v", ticketID, err)
			handlers.RespondConflict(w, msgCannotComplete)

		case errors.Is(err, tickets.ErrTotalAmountRequired):
			h.logger.Warn("POST /tickets/{id}/complete - Total amount required: ticket_id=%s", ticketID)
			handlers.RespondUnprocessable(w, msgTotalAmountRequired)

		case errors.Is(err, tickets.ErrMissingBillingTarget):
			h.logger.Warn("POST /tickets/{id}/complete - Missing client: ticket_id=%s", ticketID)
			handlers.RespondUnprocessable(w, msgMissingClient)

		case errors.Is(err, tickets.ErrInvalidInput):
			h.logger.Warn("POST /tickets/{id}/complete - Invalid input: ticket_id=%s, error=%v", ticketID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /tickets/{id}/complete - Failed to complete ticket: ticket_id=%s, error=%v", ticketID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /tickets/{id}/complete - Ticket completed: ticket_id=%s", ticketID)
	handlers.RespondJSON(w, http.StatusOK, ticket)
}
