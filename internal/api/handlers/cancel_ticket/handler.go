package cancel_ticket

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-FieldService/internal/api/handlers"
	"github.com/m04kA/SMC-FieldService/internal/api/middleware"
	"github.com/m04kA/SMC-FieldService/internal/domain"
	"github.com/m04kA/SMC-FieldService/internal/service/tickets"
)

const (
	msgInvalidTicketID    = "некорректный ID заявки"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingTenantID    = "отсутствует ID тенанта"
	msgNotFound           = "заявка не найдена"
	msgCannotCancel       = "заявку в текущем статусе нельзя отменить"
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

// Handle POST /api/v1/tickets/{ticketId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	ticketID, err := uuid.Parse(mux.Vars(r)["ticketId"])
	if err != nil {
		h.logger.Warn("POST /tickets/{id}/cancel - Invalid ticket ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTicketID)
		return
	}

	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("POST /tickets/{id}/cancel - Missing tenant ID")
		handlers.RespondUnauthorized(w, msgMissingTenantID)
		return
	}

	var req CancelTicketRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /tickets/{id}/cancel - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	ticket, err := h.service.Cancel(r.Context(), tenantID, ticketID, req.ToServiceRequest())
	if err != nil {
		switch {
		case errors.Is(err, tickets.ErrTicketNotFound):
			h.logger.Warn("POST /tickets/{id}/cancel - Ticket not found: ticket_id=%s", ticketID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, domain.ErrInvalidTransition):
			h.logger.Warn("POST /tickets/{id}/cancel - Invalid transition: ticket_id=%s, error=%v", ticketID, err)
			handlers.RespondConflict(w, msgCannotCancel)

		case errors.Is(err, tickets.ErrInvalidInput):
			h.logger.Warn("POST /tickets/{id}/cancel - Invalid input: ticket_id=%s, error=%v", ticketID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /tickets/{id}/cancel - Failed to cancel ticket: ticket_id=%s, error=%v", ticketID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /tickets/{id}/cancel - Ticket cancelled: ticket_id=%s, source=%s", ticketID, req.Source)
	handlers.RespondJSON(w, http.StatusOK, ticket)
}
