package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
	"github.com/vfg2006/sales-analytics-api/internal/scheduler"
	"github.com/vfg2006/sales-analytics-api/internal/usecases/authenticating"
	"github.com/vfg2006/sales-analytics-api/internal/usecases/authenticating/mocks"
	"github.com/vfg2006/sales-analytics-api/pkg/apiErrors"
	"github.com/vfg2006/sales-analytics-api/pkg/middleware"
)

type pingerStub struct {
	err error
}

func (p pingerStub) Ping(context.Context) error {
	return p.err
}

type syncerStub struct {
	err    error
	status map[string]any
	calls  int
}

func (s *syncerStub) TriggerManualSync() error {
	s.calls++
	return s.err
}

func (s *syncerStub) GetStatus() map[string]any {
	return s.status
}

func TestHealthcheckHandler(t *testing.T) {
	tests := []struct {
		name         string
		database     Pinger
		wantStatus   int
		wantDatabase string
	}{
		{
			name:         "banco desabilitado",
			database:     nil,
			wantStatus:   http.StatusOK,
			wantDatabase: "disabled",
		},
		{
			name:         "banco disponível",
			database:     pingerStub{},
			wantStatus:   http.StatusOK,
			wantDatabase: "ok",
		},
		{
			name:         "banco indisponível",
			database:     pingerStub{err: errors.New("connection refused")},
			wantStatus:   http.StatusServiceUnavailable,
			wantDatabase: "unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HealthcheckHandler(tt.database).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))

			require.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantDatabase, body["database"])
		})
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(m *mocks.MockAuthenticator)
		wantStatus int
		wantCode   string
	}{
		{
			name: "login com sucesso",
			body: `{"email":"admin@example.com","password":"segredo123"}`,
			setup: func(m *mocks.MockAuthenticator) {
				m.EXPECT().LoginUser("admin@example.com", "segredo123").Return("token-jwt", nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "corpo inválido",
			body:       `{"email":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apiErrors.ErrInvalidRequest,
		},
		{
			name: "senha incorreta",
			body: `{"email":"admin@example.com","password":"errada"}`,
			setup: func(m *mocks.MockAuthenticator) {
				m.EXPECT().LoginUser(gomock.Any(), gomock.Any()).Return("", authenticating.ErrInvalidCredentials)
			},
			wantStatus: http.StatusUnauthorized,
			wantCode:   apiErrors.ErrInvalidCredentials,
		},
		{
			name: "usuário inexistente recebe a mesma resposta",
			body: `{"email":"ninguem@example.com","password":"qualquer"}`,
			setup: func(m *mocks.MockAuthenticator) {
				m.EXPECT().LoginUser(gomock.Any(), gomock.Any()).Return("", authenticating.ErrUserNotFound)
			},
			wantStatus: http.StatusUnauthorized,
			wantCode:   apiErrors.ErrInvalidCredentials,
		},
		{
			name: "erro inesperado",
			body: `{"email":"admin@example.com","password":"segredo123"}`,
			setup: func(m *mocks.MockAuthenticator) {
				m.EXPECT().LoginUser(gomock.Any(), gomock.Any()).Return("", errors.New("falha ao assinar"))
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   apiErrors.ErrInternalServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			service := mocks.NewMockAuthenticator(ctrl)
			if tt.setup != nil {
				tt.setup(service)
			}

			rec := httptest.NewRecorder()
			Login(service).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/login", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeAPIError(t, rec).Code)
				return
			}
			assert.Contains(t, rec.Body.String(), `"token":"token-jwt"`)
		})
	}
}

func TestGetMe(t *testing.T) {
	t.Run("sem usuário no contexto", func(t *testing.T) {
		rec := httptest.NewRecorder()
		GetMe().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/me", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("retorna dados do token", func(t *testing.T) {
		claims := &domain.Claims{UserEmail: "ana@example.com", UserRole: domain.RoleAnalyst}
		req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
		req = req.WithContext(context.WithValue(req.Context(), middleware.ContextKeyUser, claims))

		rec := httptest.NewRecorder()
		GetMe().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"email":"ana@example.com"`)
		assert.Contains(t, rec.Body.String(), `"role":"analyst"`)
	})
}

func TestRunReportSync(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "execução iniciada",
			wantStatus: http.StatusAccepted,
		},
		{
			name:       "execução já em andamento",
			err:        scheduler.ErrSyncInProgress,
			wantStatus: http.StatusConflict,
			wantCode:   apiErrors.ErrSyncInProgress,
		},
		{
			name:       "fonte não configurada",
			err:        scheduler.ErrSourceNotConfigured,
			wantStatus: http.StatusInternalServerError,
			wantCode:   apiErrors.ErrInternalServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			syncer := &syncerStub{err: tt.err}

			rec := httptest.NewRecorder()
			RunReportSync(syncer).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/cron/report/run", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, 1, syncer.calls)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeAPIError(t, rec).Code)
			}
		})
	}
}

func TestGetCronStatus(t *testing.T) {
	syncer := &syncerStub{status: map[string]any{"sync_enabled": true, "sync_cron": "0 7 * * 1"}}

	rec := httptest.NewRecorder()
	GetCronStatus(syncer).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/cron/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body[CronJobTypeReport]["sync_enabled"])
	assert.Equal(t, "0 7 * * 1", body[CronJobTypeReport]["sync_cron"])
}
