package analyzing

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
)

func TestAssemble_MissingParts(t *testing.T) {
	validation := &domain.ValidationOutcome{}
	kpis := &domain.KPIMetrics{}
	trends := []domain.TrendPoint{}
	anomalies := []domain.Anomaly{}

	tests := []struct {
		name       string
		validation *domain.ValidationOutcome
		kpis       *domain.KPIMetrics
		trends     []domain.TrendPoint
		anomalies  []domain.Anomaly
		missing    string
	}{
		{name: "Sem indicadores", validation: validation, trends: trends, anomalies: anomalies, missing: "kpis"},
		{name: "Sem validação", kpis: kpis, trends: trends, anomalies: anomalies, missing: "validation"},
		{name: "Sem tendências", validation: validation, kpis: kpis, anomalies: anomalies, missing: "trends"},
		{name: "Sem anomalias", validation: validation, kpis: kpis, trends: trends, missing: "anomalies"},
		{name: "Tudo ausente", missing: "validation, kpis, trends, anomalies"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := Assemble(tt.validation, tt.kpis, tt.trends, tt.anomalies)

			assert.Nil(t, report)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrIncompleteAnalysis))
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}

func TestAssemble_CopiesInputs(t *testing.T) {
	generatedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rowIndex := 3
	validation := &domain.ValidationOutcome{
		InputRows: 2,
		Valid:     []domain.SalesRecord{newRecord(0, date(2024, 1, 1), "A", 1, "10")},
		Rejected:  []domain.Rejection{{RowIndex: 1, Reason: domain.ReasonMissingField}},
	}
	kpis := &domain.KPIMetrics{
		TotalRevenue: decimal.NewFromInt(10),
		TopProducts:  []domain.ProductRevenue{{ProductID: "A"}},
	}
	trends := []domain.TrendPoint{{Period: "2024-01", PercentChange: float(10)}}
	anomalies := []domain.Anomaly{{Kind: domain.AnomalyKindTransaction, RowIndex: &rowIndex}}
	summary := &domain.TrendSummary{Direction: domain.TrendStable}
	projection := &domain.Projection{Method: domain.ProjectionMethodLinear, Points: []domain.ProjectedPoint{{Period: "2024-02"}}}

	report, err := Assemble(validation, kpis, trends, anomalies,
		WithGeneratedAt(generatedAt),
		WithTrendSummary(summary),
		WithProjection(projection),
		WithConfig(DefaultConfig()),
	)
	require.NoError(t, err)

	assert.Equal(t, generatedAt, report.GeneratedAt)
	assert.Equal(t, DefaultThreshold, report.Config.Threshold)
	require.NotNil(t, report.TrendSummary)
	require.NotNil(t, report.Projection)

	// Alterações nos dados de origem não afetam o relatório
	kpis.TopProducts[0].ProductID = "Z"
	trends[0].Period = "alterado"
	*trends[0].PercentChange = 99
	rowIndex = 42
	validation.Rejected[0].RowIndex = 7
	projection.Points[0].Period = "alterado"

	assert.Equal(t, "A", report.KPIs.TopProducts[0].ProductID)
	assert.Equal(t, "2024-01", report.Trends[0].Period)
	assert.Equal(t, 10.0, *report.Trends[0].PercentChange)
	assert.Equal(t, 3, *report.Anomalies[0].RowIndex)
	assert.Equal(t, 1, report.Validation.Rejected[0].RowIndex)
	assert.Equal(t, "2024-02", report.Projection.Points[0].Period)
}

func TestAssemble_EmptySlicesAreValid(t *testing.T) {
	report, err := Assemble(&domain.ValidationOutcome{}, &domain.KPIMetrics{}, []domain.TrendPoint{}, []domain.Anomaly{})

	require.NoError(t, err)
	assert.NotNil(t, report.Trends)
	assert.NotNil(t, report.Anomalies)
	assert.Nil(t, report.Projection)
	assert.False(t, report.GeneratedAt.IsZero())
}
