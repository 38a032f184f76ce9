// Package metrics expõe as métricas da aplicação no formato do Prometheus
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
)

const namespace = "sales_analytics"

// Resultados possíveis de uma geração de relatório
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	reports          *prometheus.CounterVec
	rows             *prometheus.CounterVec
	anomalies        *prometheus.CounterVec
	analysisDuration prometheus.Histogram
	deliveries       *prometheus.CounterVec
}

// New cria as métricas em um registry próprio
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total de requisições HTTP por rota, método e status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duração das requisições HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_generated_total",
			Help:      "Relatórios gerados por resultado.",
		}, []string{"outcome"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_processed_total",
			Help:      "Linhas de entrada processadas, separadas em válidas e rejeitadas.",
		}, []string{"status"}),
		anomalies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "anomalies_detected_total",
			Help:      "Anomalias detectadas por tipo e severidade.",
		}, []string{"kind", "severity"}),
		analysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Duração da análise de um lote de vendas.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_deliveries_total",
			Help:      "Envios de relatório por e-mail por resultado.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.reports,
		m.rows,
		m.anomalies,
		m.analysisDuration,
		m.deliveries,
	)

	return m
}

// Handler expõe o endpoint /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveReport registra um relatório gerado com sucesso
func (m *Metrics) ObserveReport(report *domain.AnalysisReport, duration time.Duration) {
	m.reports.WithLabelValues(OutcomeSuccess).Inc()
	m.analysisDuration.Observe(duration.Seconds())
	m.rows.WithLabelValues("valid").Add(float64(report.Validation.ValidCount()))
	m.rows.WithLabelValues("rejected").Add(float64(report.Validation.RejectedCount()))

	for _, anomaly := range report.Anomalies {
		m.anomalies.WithLabelValues(string(anomaly.Kind), string(anomaly.Severity)).Inc()
	}
}

func (m *Metrics) ObserveReportFailure(duration time.Duration) {
	m.reports.WithLabelValues(OutcomeFailure).Inc()
	m.analysisDuration.Observe(duration.Seconds())
}

func (m *Metrics) ObserveDelivery(err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.deliveries.WithLabelValues(outcome).Inc()
}
