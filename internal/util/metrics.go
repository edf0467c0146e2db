package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReservationsConfirmedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cafehub_reservations_confirmed_total",
		Help: "Total number of reservations paid and confirmed",
	})

	ReservationGuardRedirectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cafehub_guard_redirects_total",
		Help: "Total number of page guard redirects",
	}, []string{"route"})

	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cafehub_orders_placed_total",
		Help: "Total number of orders placed",
	})

	OrdersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cafehub_orders_cancelled_total",
		Help: "Total number of cancelled orders",
	})

	OrdersPaidTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cafehub_orders_paid_total",
		Help: "Total number of bills paid",
	})

	OrderStatusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cafehub_order_status_transitions_total",
		Help: "Total number of order status changes by target status",
	}, []string{"status"})

	PaymentProcessingLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cafehub_payment_processing_latency_seconds",
		Help:    "Latency of simulated payment submissions",
		Buckets: prometheus.DefBuckets,
	}, []string{"flow"})

	StorageErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cafehub_storage_errors_total",
		Help: "Total number of ignored local storage errors",
	}, []string{"op"})

	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cafehub_events_published_total",
		Help: "Total number of domain events written to Kafka",
	}, []string{"event_type", "result"})

	EventsConsumedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cafehub_events_consumed_total",
		Help: "Total number of domain events read from Kafka",
	}, []string{"event_type", "result"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cafehub_active_sessions",
		Help: "Number of live sessions",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
