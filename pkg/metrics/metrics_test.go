package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewWithRegisterer("fieldservice-test", prometheus.NewRegistry())

	m.IncTicketTransition("start", "ok")
	m.IncTicketTransition("start", "ok")
	m.IncTicketTransition("cancel", "rejected")
	m.IncTicketRecovered()
	m.IncCalendarDegraded("google")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TicketTransitions.WithLabelValues("start", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TicketTransitions.WithLabelValues("cancel", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TicketRecoveredTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CalendarDegraded.WithLabelValues("google")))
}

func TestMetrics_ObserveDBQuery_CountsErrors(t *testing.T) {
	m := NewWithRegisterer("fieldservice-test", prometheus.NewRegistry())

	m.ObserveDBQuery("select", 5*time.Millisecond, nil)
	m.ObserveDBQuery("update", 5*time.Millisecond, errors.New("boom"))

	assert.Equal(t, 0.0, testutil.ToFloat64(m.DBQueryErrors.WithLabelValues("select")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DBQueryErrors.WithLabelValues("update")))
}

func TestMetrics_ObserveHTTPRequest(t *testing.T) {
	m := NewWithRegisterer("fieldservice-test", prometheus.NewRegistry())

	m.ObserveHTTPRequest("GET", "/api/v1/tickets/{ticketId}", 200, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/tickets/{ticketId}", "200")))
}
