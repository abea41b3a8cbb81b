package tickets

import "errors"

var (
	// ErrTicketNotFound возвращается, когда заявка не найдена у тенанта
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrTotalAmountRequired возвращается, когда итог не передан, а расчёт для заявки отключён
	ErrTotalAmountRequired = errors.New("total amount is required to complete the ticket")

	// ErrMissingBillingTarget возвращается, когда у заявки нет клиента для выставления счёта
	ErrMissingBillingTarget = errors.New("ticket has no client to bill")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
