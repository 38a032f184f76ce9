package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
)

func TestObserveReport(t *testing.T) {
	m := New()
	report := &domain.AnalysisReport{
		Validation: domain.ValidationOutcome{
			InputRows: 3,
			Valid:     []domain.SalesRecord{{}, {}},
			Rejected:  []domain.Rejection{{}},
		},
		Anomalies: []domain.Anomaly{
			{Kind: domain.AnomalyKindTransaction, Severity: domain.SeveritySevere},
			{Kind: domain.AnomalyKindTransaction, Severity: domain.SeveritySevere},
			{Kind: domain.AnomalyKindPeriod, Severity: domain.SeverityModerate},
		},
	}

	m.ObserveReport(report, 20*time.Millisecond)
	m.ObserveReportFailure(time.Millisecond)
	m.ObserveDelivery(nil)
	m.ObserveDelivery(errors.New("falha"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.reports.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reports.WithLabelValues(OutcomeFailure)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.rows.WithLabelValues("valid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rows.WithLabelValues("rejected")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.anomalies.WithLabelValues("transaction", "Severe")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deliveries.WithLabelValues(OutcomeFailure)))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveHTTPRequest(http.MethodGet, "/v1/reports", http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `sales_analytics_http_requests_total{method="GET",route="/v1/reports",status="200"} 1`)
}
