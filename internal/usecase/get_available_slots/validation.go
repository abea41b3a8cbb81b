package get_available_slots

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-FieldService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request is required", ErrInvalidInput)
	}

	if req.TenantID == uuid.Nil {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	if req.RangeStart.IsZero() || req.RangeEnd.IsZero() {
		return fmt.Errorf("%w: range start and end are required", ErrInvalidInput)
	}

	if req.RangeEnd.Before(req.RangeStart) {
		return fmt.Errorf("%w: range end is before range start", ErrInvalidInput)
	}

	return nil
}

// validateRangeLength ограничивает количество дней в запросе
func validateRangeLength(days int) error {
	if days > domain.MaxAvailabilityRangeDays {
		return fmt.Errorf("%w: range exceeds %d days", ErrInvalidInput, domain.MaxAvailabilityRangeDays)
	}
	return nil
}
