package get_available_slots

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-FieldService/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-FieldService/internal/usecase/get_available_slots"
)

const (
	msgInvalidTenantID = "некорректный ID тенанта"
	msgMissingRange    = "параметры start и end обязательны"
	msgInvalidParams   = "некорректные параметры, ожидается start/end в формате YYYY-MM-DD и UUID для serviceId/technicianId"
	msgInvalidRange    = "некорректный диапазон дат"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	loc     *time.Location
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, loc *time.Location, logger Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		useCase: useCase,
		loc:     loc,
		logger:  logger,
	}
}

// Handle GET /api/v1/tenants/{tenantId}/available-slots
// Query params: start, end (required, YYYY-MM-DD), serviceId, technicianId (optional)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем tenantId из URL
	tenantID, err := uuid.Parse(mux.Vars(r)["tenantId"])
	if err != nil {
		h.logger.Warn("GET /tenants/{id}/available-slots - Invalid tenant ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTenantID)
		return
	}

	query := r.URL.Query()
	startStr, endStr := query.Get("start"), query.Get("end")
	if startStr == "" || endStr == "" {
		h.logger.Warn("GET /tenants/{id}/available-slots - Missing range: tenant_id=%s", tenantID)
		handlers.RespondBadRequest(w, msgMissingRange)
		return
	}

	// Формируем запрос к use case
	useCaseReq, err := ToUseCaseRequest(tenantID, startStr, endStr, query.Get("serviceId"), query.Get("technicianId"), h.loc)
	if err != nil {
		h.logger.Warn("GET /tenants/{id}/available-slots - Invalid query params: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /tenants/{id}/available-slots - Invalid range: tenant_id=%s, error=%v", tenantID, err)
			handlers.RespondBadRequest(w, msgInvalidRange)

		default:
			h.logger.Error("GET /tenants/{id}/available-slots - Failed to compute slots: tenant_id=%s, error=%v", tenantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /tenants/{id}/available-slots - Slots retrieved successfully: tenant_id=%s, slots_count=%d, calendar_checked=%t",
		tenantID, len(result.Slots), result.CalendarChecked)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
