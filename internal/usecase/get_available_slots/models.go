package get_available_slots

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-FieldService/internal/domain"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	TenantID     uuid.UUID  // ID тенанта
	ServiceID    *uuid.UUID // ID услуги (опционально, определяет длительность)
	TechnicianID *uuid.UUID // ID техника (опционально, фильтр заявок)
	RangeStart   time.Time  // Первый день диапазона
	RangeEnd     time.Time  // Последний день диапазона (включительно)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	TenantID        uuid.UUID
	DurationMinutes int                    // Длительность услуги, под которую подбирались слоты
	CalendarChecked bool                   // Учитывался ли внешний календарь
	Slots           []domain.AvailableSlot // Слоты в хронологическом порядке
}
