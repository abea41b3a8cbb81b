// Package statusmap translates ticket status spellings found in stored data into domain statuses.
package statusmap

import (
	"sort"
	"strings"

	"github.com/m04kA/SMC-FieldService/internal/domain"
)

var aliases = map[string]domain.TicketStatus{
	"pending":      domain.TicketStatusPending,
	"aberto":       domain.TicketStatusPending,
	"open":         domain.TicketStatusPending,
	"confirmed":    domain.TicketStatusPending,
	"scheduled":    domain.TicketStatusPending,
	"agendado":     domain.TicketStatusPending,
	"in_execution": domain.TicketStatusInExecution,
	"in_progress":  domain.TicketStatusInExecution,
	"iniciado":     domain.TicketStatusInExecution,
	"em_execucao":  domain.TicketStatusInExecution,
	"em_execução":  domain.TicketStatusInExecution,
	"started":      domain.TicketStatusInExecution,
	"completed":    domain.TicketStatusCompleted,
	"concluido":    domain.TicketStatusCompleted,
	"concluído":    domain.TicketStatusCompleted,
	"finalizado":   domain.TicketStatusCompleted,
	"done":         domain.TicketStatusCompleted,
	"cancelled":    domain.TicketStatusCancelled,
	"canceled":     domain.TicketStatusCancelled,
	"cancelado":    domain.TicketStatusCancelled,
	"no_show":      domain.TicketStatusCancelled,
}

// ToDomain maps a stored status to its domain value. Unknown spellings report false.
func ToDomain(raw string) (domain.TicketStatus, bool) {
	if status := domain.TicketStatus(raw); status.Valid() {
		return status, true
	}

	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	status, ok := aliases[key]
	return status, ok
}

// ToStorage canonical spelling written by this service
func ToStorage(status domain.TicketStatus) string {
	return string(status)
}

// Spellings every stored spelling of the given statuses, canonical form included.
// Used to build status filters that also match legacy rows.
func Spellings(statuses ...domain.TicketStatus) []string {
	want := make(map[domain.TicketStatus]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}

	out := make([]string, 0, len(aliases))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	for alias, status := range aliases {
		if !want[status] {
			continue
		}
		out = append(out, alias, strings.ToUpper(alias))
	}
	sort.Strings(out)
	return out
}
