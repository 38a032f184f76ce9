package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
)

func newMockRepository(t *testing.T) (ReportRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewReportRepository(db), mock
}

func sampleStoredReport() *domain.StoredReport {
	generatedAt := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	report := &domain.AnalysisReport{
		KPIs: domain.KPIMetrics{
			TotalRevenue:     decimal.RequireFromString("120.50"),
			TransactionCount: 2,
		},
		Trends:    []domain.TrendPoint{{Period: "2024-04", Revenue: decimal.RequireFromString("120.50")}},
		Anomalies: []domain.Anomaly{{Kind: domain.AnomalyKindPeriod, Period: "2024-04"}},
		Validation: domain.ValidationOutcome{
			InputRows: 3,
			Rejected:  []domain.Rejection{{RowIndex: 2, Reason: domain.ReasonNegativeValue}},
		},
		GeneratedAt: generatedAt,
	}
	return &domain.StoredReport{
		ID:           "abc123",
		SourceName:   "vendas.csv",
		GeneratedAt:  generatedAt,
		InputRows:    3,
		ValidRows:    2,
		RejectedRows: 1,
		TotalRevenue: decimal.RequireFromString("120.50"),
		AnomalyCount: 1,
		Report:       report,
	}
}

func TestReportRepository_Save(t *testing.T) {
	repo, mock := newMockRepository(t)
	stored := sampleStoredReport()
	createdAt := time.Date(2024, 5, 2, 10, 0, 1, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO analysis_reports (id,source_name,generated_at,input_rows,valid_rows,rejected_rows,total_revenue,anomaly_count,report) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)")).
		WithArgs("abc123", "vendas.csv", stored.GeneratedAt, 3, 2, 1, "120.5", 1, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	err := repo.Save(context.Background(), stored)

	require.NoError(t, err)
	assert.Equal(t, createdAt, stored.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_SaveError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("INSERT INTO analysis_reports").
		WillReturnError(errors.New("conexão perdida"))

	err := repo.Save(context.Background(), sampleStoredReport())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "erro ao salvar relatório")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_GetByID(t *testing.T) {
	stored := sampleStoredReport()
	payload, err := json.Marshal(stored.Report)
	require.NoError(t, err)

	columns := append(append([]string{}, reportSummaryColumns...), "report")
	createdAt := time.Date(2024, 5, 2, 10, 0, 1, 0, time.UTC)

	tests := []struct {
		name     string
		setup    func(mock sqlmock.Sqlmock)
		wantErr  bool
		validate func(t *testing.T, result *domain.StoredReport)
	}{
		{
			name: "Relatório encontrado",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT id, source_name, generated_at, input_rows, valid_rows, rejected_rows, total_revenue, anomaly_count, created_at, report FROM analysis_reports WHERE id = $1")).
					WithArgs("abc123").
					WillReturnRows(sqlmock.NewRows(columns).AddRow(
						"abc123", "vendas.csv", stored.GeneratedAt, 3, 2, 1, "120.50", 1, createdAt, payload,
					))
			},
			validate: func(t *testing.T, result *domain.StoredReport) {
				require.NotNil(t, result)
				assert.Equal(t, "vendas.csv", result.SourceName)
				assert.True(t, decimal.RequireFromString("120.50").Equal(result.TotalRevenue))
				require.NotNil(t, result.Report)
				assert.Equal(t, "2024-04", result.Report.Trends[0].Period)
				assert.Equal(t, domain.ReasonNegativeValue, result.Report.Validation.Rejected[0].Reason)
			},
		},
		{
			name: "Relatório inexistente retorna nil sem erro",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT (.+) FROM analysis_reports").
					WithArgs("abc123").
					WillReturnRows(sqlmock.NewRows(columns))
			},
			validate: func(t *testing.T, result *domain.StoredReport) {
				assert.Nil(t, result)
			},
		},
		{
			name: "Conteúdo corrompido",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT (.+) FROM analysis_reports").
					WithArgs("abc123").
					WillReturnRows(sqlmock.NewRows(columns).AddRow(
						"abc123", "vendas.csv", stored.GeneratedAt, 3, 2, 1, "120.50", 1, createdAt, []byte("{"),
					))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			tt.setup(mock)

			result, err := repo.GetByID(context.Background(), "abc123")

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				tt.validate(t, result)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestReportRepository_List(t *testing.T) {
	repo, mock := newMockRepository(t)
	generatedAt := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM analysis_reports ORDER BY created_at DESC, id ASC LIMIT 50")).
		WillReturnRows(sqlmock.NewRows(reportSummaryColumns).
			AddRow("r2", "b.csv", generatedAt, 10, 9, 1, "90.00", 0, generatedAt).
			AddRow("r1", "a.csv", generatedAt, 5, 5, 0, "10.00", 2, generatedAt))

	reports, err := repo.List(context.Background(), 0)

	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "r2", reports[0].ID)
	assert.Nil(t, reports[0].Report)
	assert.Equal(t, 2, reports[1].AnomalyCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_DeleteOlderThan(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM analysis_reports WHERE created_at < $1")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 4))

	removed, err := repo.DeleteOlderThan(context.Background(), 30)

	require.NoError(t, err)
	assert.Equal(t, int64(4), removed)
	assert.NoError(t, mock.ExpectationsWereMet())

	removed, err = repo.DeleteOlderThan(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)
}
