package get_available_slots

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-FieldService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-FieldService/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	TenantID        uuid.UUID       `json:"tenantId"`
	DurationMinutes int             `json:"durationMinutes"`
	CalendarChecked bool            `json:"calendarChecked"`
	Slots           []AvailableSlot `json:"slots"`
}

// AvailableSlot модель временного слота
type AvailableSlot struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Datetime string `json:"datetime"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			Date:     slot.Date,
			Time:     slot.Time,
			Datetime: slot.Datetime.Format(time.RFC3339),
		}
	}

	return &AvailableSlotsResponse{
		TenantID:        resp.TenantID,
		DurationMinutes: resp.DurationMinutes,
		CalendarChecked: resp.CalendarChecked,
		Slots:           slots,
	}
}

// ToUseCaseRequest создает запрос use case из параметров запроса. Даты трактуются в loc
func ToUseCaseRequest(tenantID uuid.UUID, startStr, endStr, serviceIDStr, technicianIDStr string, loc *time.Location) (*getAvailableSlots.Request, error) {
	start, err := time.ParseInLocation(domain.DateFormat, startStr, loc)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	end, err := time.ParseInLocation(domain.DateFormat, endStr, loc)
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}

	req := &getAvailableSlots.Request{
		TenantID:   tenantID,
		RangeStart: start,
		RangeEnd:   end,
	}

	if serviceIDStr != "" {
		id, err := uuid.Parse(serviceIDStr)
		if err != nil {
			return nil, fmt.Errorf("serviceId: %w", err)
		}
		req.ServiceID = &id
	}

	if technicianIDStr != "" {
		id, err := uuid.Parse(technicianIDStr)
		if err != nil {
			return nil, fmt.Errorf("technicianId: %w", err)
		}
		req.TechnicianID = &id
	}

	return req, nil
}
