// Package metrics счётчики и гистограммы prometheus для записи на приём и HTTP
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "appointment_service"

// Результаты попытки записи
const (
	ResultBooked      = "booked"
	ResultUnavailable = "unavailable"
	ResultError       = "error"
)

// Metrics набор коллекторов сервиса. Nil-значение допустимо и ничего не пишет
type Metrics struct {
	registry *prometheus.Registry

	bookings     *prometheus.CounterVec
	availability *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New регистрирует коллекторы в собственном реестре
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		bookings: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointments_booked_total",
			Help:      "Booking attempts by appointment type and result.",
		}, []string{"type", "result"}),
		availability: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_queries_total",
			Help:      "Availability computations by kind.",
		}, []string{"kind"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// Booking учитывает попытку записи
func (m *Metrics) Booking(appointmentType, result string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(appointmentType, result).Inc()
}

// Availability учитывает расчёт доступности: plan, check, hybrid, window
func (m *Metrics) Availability(kind string) {
	if m == nil {
		return
	}
	m.availability.WithLabelValues(kind).Inc()
}

// ObserveHTTP записывает длительность обработки запроса
func (m *Metrics) ObserveHTTP(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, status).Observe(seconds)
}

// Gatherer реестр для тестов и экспорта
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Handler отдаёт метрики в текстовом формате
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
