package cancel_ticket

import "github.com/m04kA/SMC-FieldService/internal/service/tickets/models"

// CancelTicketRequest HTTP request model
type CancelTicketRequest struct {
	Reason string `json:"reason"`
	Source string `json:"source"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CancelTicketRequest) ToServiceRequest() *models.CancelTicketRequest {
	return &models.CancelTicketRequest{
		Reason: r.Reason,
		Source: r.Source,
	}
}
