package get_ticket

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-FieldService/internal/api/handlers"
	"github.com/m04kA/SMC-FieldService/internal/api/middleware"
	"github.com/m04kA/SMC-FieldService/internal/service/tickets"
)

const (
	msgInvalidTicketID = "некорректный ID заявки"
	msgMissingTenantID = "отсутствует ID тенанта"
	msgNotFound        = "заявка не найдена"
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

// Handle GET /api/v1/tickets/{ticketId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем ticketId из URL
	ticketID, err := uuid.Parse(mux.Vars(r)["ticketId"])
	if err != nil {
		h.logger.Warn("GET /tickets/{id} - Invalid ticket ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTicketID)
		return
	}

	// Получаем tenantID из контекста (через middleware Auth)
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("GET /tickets/{id} - Missing tenant ID")
		handlers.RespondUnauthorized(w, msgMissingTenantID)
		return
	}

	ticket, err := h.service.GetByID(r.Context(), tenantID, ticketID)
	if err != nil {
		switch {
		case errors.Is(err, tickets.ErrTicketNotFound):
			h.logger.Warn("GET /tickets/{id} - Ticket not found: ticket_id=%s, tenant_id=%s", ticketID, tenantID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /tickets/{id} - Failed to get ticket: ticket_id=%s, error=%v", ticketID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, ticket)
}
