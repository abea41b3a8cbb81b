package calendarauth

import "errors"

var (
	// ErrInvalidState возвращается, если state неизвестен, истёк или уже использован
	ErrInvalidState = errors.New("oauth state is invalid or expired")

	// ErrAuthorizationFailed возвращается, если Google отклонил код авторизации
	ErrAuthorizationFailed = errors.New("calendar authorization failed")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
