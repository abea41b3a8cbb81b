package models

import "github.com/google/uuid"

// ConnectResponse ссылка, на которую нужно перенаправить пользователя
type ConnectResponse struct {
	AuthURL string `json:"authUrl"`
	State   string `json:"state"`
}

// CallbackResponse результат подключения календаря
type CallbackResponse struct {
	TenantID   uuid.UUID `json:"tenantId"`
	Status     string    `json:"status"`
	CalendarID string    `json:"calendarId"`
	Email      string    `json:"email,omitempty"`
}
