package googlecalendar

import "errors"

var (
	// ErrNotConnected возвращается, если у тенанта нет сохранённых токенов
	ErrNotConnected = errors.New("googlecalendar client: calendar not connected")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("googlecalendar client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе Google API
	ErrInvalidResponse = errors.New("googlecalendar client: invalid response")

	// ErrTokenExchange возвращается, если не удалось обменять код авторизации на токены
	ErrTokenExchange = errors.New("googlecalendar client: token exchange failed")
)
