package calendar_callback

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-FieldService/internal/api/handlers"
	"github.com/m04kA/SMC-FieldService/internal/service/calendarauth"
)

const (
	msgMissingParams       = "параметры state и code обязательны"
	msgAccessDenied        = "доступ к календарю не предоставлен"
	msgInvalidState        = "ссылка авторизации недействительна или истекла"
	msgAuthorizationFailed = "не удалось подключить календарь"
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

// Handle GET /api/v1/integrations/google-calendar/callback
// Query params: state, code (или error, если пользователь отказал в доступе)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if oauthErr := query.Get("error"); oauthErr != "" {
		h.logger.Warn("GET /integrations/google-calendar/callback - Consent denied: %s", oauthErr)
		handlers.RespondForbidden(w, msgAccessDenied)
		return
	}

	state, code := query.Get("state"), query.Get("code")
	if state == "" || code == "" {
		h.logger.Warn("GET /integrations/google-calendar/callback - Missing state or code")
		handlers.RespondBadRequest(w, msgMissingParams)
		return
	}

	result, err := h.service.CompleteConnect(r.Context(), state, code)
	if err != nil {
		switch {
		case errors.Is(err, calendarauth.ErrInvalidInput):
			h.logger.Warn("GET /integrations/google-calendar/callback - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgMissingParams)

		case errors.Is(err, calendarauth.ErrInvalidState):
			h.logger.Warn("GET /integrations/google-calendar/callback - Invalid state")
			handlers.RespondBadRequest(w, msgInvalidState)

		case errors.Is(err, calendarauth.ErrAuthorizationFailed):
			h.logger.Warn("GET /integrations/google-calendar/callback - Authorization failed: %v", err)
			handlers.RespondBadRequest(w, msgAuthorizationFailed)

		default:
			h.logger.Error("GET /integrations/google-calendar/callback - Failed to complete connect: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /integrations/google-calendar/callback - Calendar connected: tenant_id=%s", result.TenantID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
