package events

import "errors"

var (
	// ErrPublish возвращается, если событие не удалось записать в брокер
	ErrPublish = errors.New("events publisher: publish failed")

	// ErrEncode возвращается при ошибке сериализации события
	ErrEncode = errors.New("events publisher: encode failed")
)
