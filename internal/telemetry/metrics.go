package telemetry

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/shaiso/Enricher/internal/domain"
	"github.com/shaiso/Enricher/internal/engine"
)

// Metrics — Prometheus метрики обогащения.
//
// Реализует orchestrator.Observer (и engine.Observer), поэтому передаётся
// оркестратору напрямую.
type Metrics struct {
	opDuration   *prometheus.HistogramVec
	opTotal      *prometheus.CounterVec
	opInFlight   *prometheus.GaugeVec
	runsTotal    *prometheus.CounterVec
	writesTotal  *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
}

// NewMetrics регистрирует метрики в reg.
// В сервисах reg = prometheus.DefaultRegisterer, в тестах — новый реестр.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		opDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "enricher_operation_duration_seconds",
			Help:    "Duration of enrichment operation calls.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"pipeline", "operation"}),
		opTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "enricher_operations_total",
			Help: "Total enrichment operation calls by status.",
		}, []string{"pipeline", "operation", "status"}),
		opInFlight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "enricher_operations_in_flight",
			Help: "Enrichment operation calls in progress.",
		}, []string{"pipeline"}),
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "enricher_runs_total",
			Help: "Total pipeline runs by result.",
		}, []string{"pipeline", "result"}),
		writesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "enricher_record_writes_total",
			Help: "Total record writes by stage.",
		}, []string{"pipeline", "stage"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "enricher_api_http_requests_total",
			Help: "Total API HTTP requests.",
		}, []string{"method", "status"}),
	}
}

// OperationStarted реализует engine.Observer.
func (m *Metrics) OperationStarted(pipeline, operation string) {
	m.opInFlight.WithLabelValues(pipeline).Inc()
}

// OperationFinished реализует engine.Observer.
func (m *Metrics) OperationFinished(pipeline, operation string, duration time.Duration, err error) {
	m.opInFlight.WithLabelValues(pipeline).Dec()
	m.opDuration.WithLabelValues(pipeline, operation).Observe(duration.Seconds())
	m.opTotal.WithLabelValues(pipeline, operation, operationStatus(err)).Inc()
}

// RunFinished учитывает завершённый запуск.
func (m *Metrics) RunFinished(pipeline string, status domain.RunStatus) {
	m.runsTotal.WithLabelValues(pipeline, string(status)).Inc()
}

// RecordWritten учитывает сохранение записи.
func (m *Metrics) RecordWritten(pipeline, stage string) {
	m.writesTotal.WithLabelValues(pipeline, stage).Inc()
}

// HTTPRequest учитывает HTTP запрос API.
func (m *Metrics) HTTPRequest(method string, status int) {
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// operationStatus возвращает метку статуса операции.
func operationStatus(err error) string {
	switch {
	case err == nil:
		return string(domain.OperationStatusSucceeded)
	case errors.Is(err, engine.ErrUnparsableResult):
		return "UNPARSABLE"
	default:
		return string(domain.OperationStatusFailed)
	}
}
