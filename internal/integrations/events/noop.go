package events

import "context"

// Noop издатель для окружений без брокера
type Noop struct{}

func (Noop) PublishTicketEvent(context.Context, TicketEvent) error { return nil }

func (Noop) Close() error { return nil }
