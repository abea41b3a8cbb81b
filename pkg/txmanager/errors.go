package txmanager

import "errors"

// ErrTransaction возвращается при ошибке начала или фиксации транзакции
var ErrTransaction = errors.New("txmanager: transaction error")
