package connect_calendar

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-FieldService/internal/api/handlers"
	"github.com/m04kA/SMC-FieldService/internal/api/middleware"
	"github.com/m04kA/SMC-FieldService/internal/service/calendarauth"
)

const (
	msgMissingTenantID = "отсутствует ID тенанта"
)

type Handler struct {
	service CalendarAuthService
	logger  Logger
}

func NewHandler(service CalendarAuthService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/integrations/google-calendar/connect
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("POST /integrations/google-calendar/connect - Missing tenant ID")
		handlers.RespondUnauthorized(w, msgMissingTenantID)
		return
	}

	result, err := h.service.BeginConnect(r.Context(), tenantID)
	if err != nil {
		switch {
		case errors.Is(err, calendarauth.ErrInvalidInput):
			h.logger.Warn("POST /integrations/google-calendar/connect - Invalid input: tenant_id=%s, error=%v", tenantID, err)
			handlers.RespondBadRequest(w, msgMissingTenantID)

		default:
			h.logger.Error("POST /integrations/google-calendar/connect - Failed to begin connect: tenant_id=%s, error=%v", tenantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /integrations/google-calendar/connect - Authorization URL issued: tenant_id=%s", tenantID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
