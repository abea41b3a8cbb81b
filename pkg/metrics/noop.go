package metrics

// Noop реализация доменных счётчиков, используемая при выключенных метриках
type Noop struct{}

func (Noop) RecordSlotsReturned(int)            {}
func (Noop) IncCalendarDegraded(string)         {}
func (Noop) IncTicketTransition(string, string) {}
func (Noop) IncTicketRecovered()                {}
func (Noop) IncEventPublished(string, string)   {}
