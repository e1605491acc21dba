// Package metrics métricas Prometheus del servicio: HTTP y ledger.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
)

var _ inventory.LedgerListener = (*Metrics)(nil)

// Namespace prefijo de todas las métricas.
const Namespace = "inventory"

// Motivos de rechazo de una transacción.
const (
	RejectValidation        = "validation"
	RejectNotFound          = "not_found"
	RejectInsufficientStock = "insufficient_stock"
	RejectIdempotency       = "idempotency"
)

// Metrics registro propio (no el global) con las métricas del servicio.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	LedgerTransactions *prometheus.CounterVec
	LedgerRejections   *prometheus.CounterVec
}

// New crea el registro con los collectors estándar de Go y del proceso.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)
	m.LedgerTransactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "ledger_transactions_total",
			Help:      "Committed ledger transactions by type",
		},
		[]string{"type"},
	)
	m.LedgerRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "ledger_rejections_total",
			Help:      "Rejected ledger transactions by reason",
		},
		[]string{"reason"},
	)

	registry.MustRegister(m.HTTPRequestsTotal, m.HTTPRequestDuration, m.LedgerTransactions, m.LedgerRejections)
	return m
}

// Registry registro subyacente (tests).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler expone el registro en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Middleware cuenta peticiones y latencia por ruta registrada (no por URL, para acotar cardinalidad).
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		path := c.Route().Path
		method := c.Method()

		m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		return err
	}
}

// TransactionRecorded cuenta transacciones confirmadas.
func (m *Metrics) TransactionRecorded(_ context.Context, tx dto.TransactionResponse) {
	m.LedgerTransactions.WithLabelValues(tx.Type).Inc()
}

// LedgerRejected cuenta una transacción rechazada.
func (m *Metrics) LedgerRejected(reason string) {
	m.LedgerRejections.WithLabelValues(reason).Inc()
}
