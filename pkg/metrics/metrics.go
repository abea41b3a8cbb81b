package metrics

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор prometheus метрик сервиса
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	DBQueryDuration    *prometheus.HistogramVec
	DBQueryErrors      *prometheus.CounterVec
	DBOpenConnections  prometheus.Gauge
	DBInUseConnections prometheus.Gauge
	DBIdleConnections  prometheus.Gauge
	DBWaitCount        prometheus.Gauge

	SlotsReturned        prometheus.Histogram
	CalendarDegraded     *prometheus.CounterVec
	TicketTransitions    *prometheus.CounterVec
	TicketRecoveredTotal prometheus.Counter
	EventsPublished      *prometheus.CounterVec
}

// New создаёт метрики и регистрирует их в prometheus.DefaultRegisterer
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer создаёт метрики и регистрирует их в указанном реестре
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	labels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
		HTTPRequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "http_requests_in_flight",
			Help:        "Number of HTTP requests being served",
			ConstLabels: labels,
		}),
		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: labels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"operation"}),
		DBQueryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_query_errors_total",
			Help:        "Total number of failed database queries",
			ConstLabels: labels,
		}, []string{"operation"}),
		DBOpenConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections",
			ConstLabels: labels,
		}),
		DBInUseConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: labels,
		}),
		DBIdleConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle connections",
			ConstLabels: labels,
		}),
		DBWaitCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: labels,
		}),
		SlotsReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "availability_slots_returned",
			Help:        "Number of slots returned per availability query",
			ConstLabels: labels,
			Buckets:     []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}),
		CalendarDegraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "calendar_degraded_total",
			Help:        "Availability queries computed without calendar busy intervals due to provider failure",
			ConstLabels: labels,
		}, []string{"provider"}),
		TicketTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "ticket_transitions_total",
			Help:        "Ticket lifecycle transitions by action and result",
			ConstLabels: labels,
		}, []string{"action", "result"}),
		TicketRecoveredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "ticket_recovered_completions_total",
			Help:        "Completions of tickets that were never started",
			ConstLabels: labels,
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "ticket_events_published_total",
			Help:        "Ticket lifecycle events published to the broker",
			ConstLabels: labels,
		}, []string{"type", "result"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.DBQueryDuration,
		m.DBQueryErrors,
		m.DBOpenConnections,
		m.DBInUseConnections,
		m.DBIdleConnections,
		m.DBWaitCount,
		m.SlotsReturned,
		m.CalendarDegraded,
		m.TicketTransitions,
		m.TicketRecoveredTotal,
		m.EventsPublished,
	)

	return m
}

// ObserveHTTPRequest учитывает завершённый HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveDBQuery учитывает выполненный запрос к БД
func (m *Metrics) ObserveDBQuery(operation string, duration time.Duration, err error) {
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) RecordSlotsReturned(count int) {
	m.SlotsReturned.Observe(float64(count))
}

func (m *Metrics) IncCalendarDegraded(provider string) {
	m.CalendarDegraded.WithLabelValues(provider).Inc()
}

func (m *Metrics) IncTicketTransition(action, result string) {
	m.TicketTransitions.WithLabelValues(action, result).Inc()
}

func (m *Metrics) IncTicketRecovered() {
	m.TicketRecoveredTotal.Inc()
}

func (m *Metrics) IncEventPublished(eventType, result string) {
	m.EventsPublished.WithLabelValues(eventType, result).Inc()
}

// SetPoolStats обновляет метрики connection pool
func (m *Metrics) SetPoolStats(stats sql.DBStats) {
	m.DBOpenConnections.Set(float64(stats.OpenConnections))
	m.DBInUseConnections.Set(float64(stats.InUse))
	m.DBIdleConnections.Set(float64(stats.Idle))
	m.DBWaitCount.Set(float64(stats.WaitCount))
}
