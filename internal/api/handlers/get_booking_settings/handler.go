package get_booking_settings

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-FieldService/internal/api/handlers"
	"github.com/m04kA/SMC-FieldService/internal/service/settings"
)

const (
	msgInvalidTenantID = "некорректный ID тенанта"
)

type Handler struct {
	service SettingsService
	logger  Logger
}

func NewHandler(service SettingsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/tenants/{tenantId}/booking-settings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uuid.Parse(mux.Vars(r)["tenantId"])
	if err != nil || tenantID == uuid.Nil {
		h.logger.Warn("GET /tenants/{id}/booking-settings - Invalid tenant ID: %s", mux.Vars(r)["tenantId"])
		handlers.RespondBadRequest(w, msgInvalidTenantID)
		return
	}

	result, err := h.service.GetBookingSettings(r.Context(), tenantID)
	if err != nil {
		switch {
		case errors.Is(err, settings.ErrInvalidInput):
			h.logger.Warn("GET /tenants/{id}/booking-settings - Invalid input: tenant_id=%s, error=%v", tenantID, err)
			handlers.RespondBadRequest(w, msgInvalidTenantID)

		default:
			h.logger.Error("GET /tenants/{id}/booking-settings - Failed to get settings: tenant_id=%s, error=%v", tenantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /tenants/{id}/booking-settings - Settings retrieved: tenant_id=%s, is_default=%t", tenantID, result.IsDefault)
	handlers.RespondJSON(w, http.StatusOK, result)
}
