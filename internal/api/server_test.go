package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfg2006/sales-analytics-api/infrastructure/notifier"
	"github.com/vfg2006/sales-analytics-api/infrastructure/repository"
	"github.com/vfg2006/sales-analytics-api/internal/config"
	"github.com/vfg2006/sales-analytics-api/internal/domain"
	"github.com/vfg2006/sales-analytics-api/internal/usecases/authenticating"
	"github.com/vfg2006/sales-analytics-api/internal/usecases/reporting"
	"github.com/vfg2006/sales-analytics-api/pkg/log"
	"github.com/vfg2006/sales-analytics-api/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	adminEmail    = "admin@example.com"
	analystEmail  = "analista@example.com"
	testPassword  = "senha-forte-123"
	salesUpload   = "date,product_id,quantity,unit_amount,total_amount,category\n" +
		"2024-01-05,P1,2,10.00,20.00,Bebidas\n" +
		"2024-01-20,P2,1,35.50,35.50,Mercearia\n" +
		"2024-02-03,P1,3,10.00,30.00,Bebidas\n" +
		"2024-03-11,P3,5,4.00,20.00,Padaria\n"
)

type syncerStub struct{}

func (syncerStub) TriggerManualSync() error { return nil }

func (syncerStub) GetStatus() map[string]any { return map[string]any{"sync_enabled": false} }

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()

	hash, err := authenticating.HashPassword(testPassword)
	require.NoError(t, err)

	return &config.Config{
		Server: config.Server{MaxUploadBytes: 1 << 20},
		Auth: config.Auth{
			Secret:       "segredo-de-teste",
			TokenTTL:     time.Hour,
			AdminEmail:   adminEmail,
			AdminHash:    hash,
			AnalystEmail: analystEmail,
			AnalystHash:  hash,
			PublicPaths:  []string{"/healthcheck", "/metrics", "/v1/login"},
		},
		Analysis: config.Analysis{
			Threshold:         2,
			TopN:              5,
			Bucket:            string(domain.GranularityMonth),
			Tolerance:         0.01,
			ProjectionPeriods: 3,
		},
		ReportCache: config.ReportCache{TTL: time.Minute, CleanupInterval: time.Minute},
		Cors:        config.Cors{AllowedOrigins: []string{"*"}},
	}
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	cfg := newTestConfig(t)
	appMetrics := metrics.New()
	reporter := reporting.NewService(cfg, repository.NewMemoryReportRepository(), notifier.NewLogNotifier(log.Discard()), appMetrics)

	return NewHandler(cfg, Dependencies{
		Reporter:      reporter,
		Authenticator: authenticating.NewService(cfg),
		ReportSync:    syncerStub{},
		Metrics:       appMetrics,
	})
}

func login(t *testing.T, h http.Handler, email string) string {
	t.Helper()

	body := `{"email":"` + email + `","password":"` + testPassword + `"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/login", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])
	return resp["token"]
}

func authorized(method, target, token string, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestNewHandlerPublicPaths(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{name: "healthcheck é público", method: http.MethodGet, path: "/healthcheck", wantStatus: http.StatusOK},
		{name: "métricas são públicas", method: http.MethodGet, path: "/metrics", wantStatus: http.StatusOK},
		{name: "relatórios exigem token", method: http.MethodGet, path: "/v1/reports", wantStatus: http.StatusUnauthorized},
		{name: "cron exige token", method: http.MethodGet, path: "/v1/cron/status", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
		})
	}
}

func TestNewHandlerInvalidToken(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, authorized(http.MethodGet, "/v1/reports", "token-invalido", ""))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNewHandlerReportFlow(t *testing.T) {
	h := newTestHandler(t)
	analystToken := login(t, h, analystEmail)
	adminToken := login(t, h, adminEmail)

	rec := httptest.NewRecorder()
	req := authorized(http.MethodPost, "/v1/reports?source=vendas-q1.csv", analystToken, salesUpload  )
	req.Header.Set("Content-Type", "text/csv")
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created domain.StoredReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "vendas-q1.csv", created.SourceName)
	assert.Equal(t, 4, created.ValidRows)
	require.NotNil(t, created.Report)
	assert.Len(t, created.Report.Trends, 3)

	t.Run("analista consulta o relatório", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, authorized(http.MethodGet, "/v1/reports/"+created.ID, analystToken, ""))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("analista lista relatórios", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, authorized(http.MethodGet, "/v1/reports", analystToken, ""))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"count":1`)
	})

	t.Run("analista exporta em csv", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, authorized(http.MethodGet, "/v1/reports/"+created.ID+"/export?format=csv", analystToken, ""))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	})

	t.Run("analista não pode enviar por e-mail", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, authorized(http.MethodPost, "/v1/reports/"+created.ID+"/deliver", analystToken, `{"recipients":["ana@example.com"]}`))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("administrador envia por e-mail", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, authorized(http.MethodPost, "/v1/reports/"+created.ID+"/deliver", adminToken, `{"recipients":["ana@example.com"]}`))

		assert.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	})

	t.Run("relatório inexistente", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, authorized(http.MethodGet, "/v1/reports/naoexiste", analystToken, ""))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("métricas usam o padrão da rota", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `route="/v1/reports/:id"`)
		assert.NotContains(t, rec.Body.String(), `route="/v1/reports/`+created.ID+`"`)
		assert.Contains(t, rec.Body.String(), "sales_analytics_reports_generated_total")
	})
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(newTestConfig(t), Dependencies{})

	assert.Error(t, err)
}
