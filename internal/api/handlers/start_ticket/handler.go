package start_ticket

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
	msgInvalidTicketID = "некорректный ID заявки"
	msgMissingTenantID = "отсутствует ID тенанта"
	msgNotFound        = "заявка не найдена"
	msgCannotStart     = "заявку в текущем статусе нельзя начать"
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

// Handle POST /api/v1/tickets/{ticketId}/start
// Повторный старт уже начатой заявки возвращает её без изменений
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	ticketID, err := uuid.Parse(mux.Vars(r)["ticketId"])
	if err != nil {
		h.logger.Warn("POST /tickets/{id}/start - Invalid ticket ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTicketID)
		return
	}

	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("POST /tickets/{id}/start - Missing tenant ID")
		handlers.RespondUnauthorized(w, msgMissingTenantID)
		return
	}

	ticket, err := h.service.Start(r.Context(), tenantID, ticketID)
	if err != nil {
		switch {
		case errors.Is(err, tickets.ErrTicketNotFound):
			h.logger.Warn("POST /tickets/{id}/start - Ticket not found: ticket_id=%s", ticketID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, domain.ErrInvalidTransition):
			h.logger.Warn("POST /tickets/{id}/start - Invalid transition: ticket_id=%s, error=%v", ticketID, err)
			handlers.RespondConflict(w, msgCannotStart)

		default:
			h.logger.Error("POST /tickets/{id}/start - Failed to start ticket: ticket_id=%s, error=%v", ticketID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /tickets/{id}/start - Ticket started: ticket_id=%s, status=%s", ticketID, ticket.Status)
	handlers.RespondJSON(w, http.StatusOK, ticket)
}
