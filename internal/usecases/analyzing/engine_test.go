package analyzing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
	"github.com/vfg2006/sales-analytics-api/pkg/log"
)

func fixedClock() time.Time {
	return time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
}

func TestEngine_Analyze(t *testing.T) {
	log.SetupTestLogger()

	rows := []domain.RawRow{
		rawRow("2024-01-05", "A", 1, "10"),
		rawRow("2024-01-06", "A", 1, "10"),
		rawRow("2024-01-07", "A", 1, "10000"),
		rawRow("2024-01-08", "B", -1, "10"),
		rawRow("não é data", "C", 1, "10"),
	}

	engine := NewEngine(DefaultConfig(), WithClock(fixedClock), WithLogger(log.L))

	report, err := engine.Analyze(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, fixedClock(), report.GeneratedAt)
	assert.Equal(t, 5, report.Validation.InputRows)
	assert.Equal(t, 3, report.Validation.ValidCount())
	assert.Equal(t, 2, report.Validation.RejectedCount())

	assert.True(t, decimal.NewFromInt(3340).Equal(report.KPIs.AverageTicket))
	require.Len(t, report.Trends, 1)
	assert.Equal(t, "2024-01", report.Trends[0].Period)

	require.Len(t, report.Anomalies, 1)
	assert.Equal(t, 2, *report.Anomalies[0].RowIndex)
	assert.Equal(t, domain.SeveritySevere, report.Anomalies[0].Severity)

	require.NotNil(t, report.TrendSummary)
	require.NotNil(t, report.Projection)
	assert.Equal(t, domain.ProjectionMethodInsufficient, report.Projection.Method)
	assert.Equal(t, domain.GranularityMonth, report.Config.Bucket)
}

func TestEngine_Analyze_MonthlyScenario(t *testing.T) {
	rows := []domain.RawRow{
		rawRow("2024-01-10", "A", 1, 100),
		rawRow("2024-02-10", "A", 1, 150),
		rawRow("2024-03-10", "A", 1, 75),
	}

	report, err := NewEngine(DefaultConfig()).Analyze(context.Background(), rows)
	require.NoError(t, err)

	require.Len(t, report.Trends, 3)
	assert.Nil(t, report.Trends[0].PercentChange)
	assert.InDelta(t, 50.0, *report.Trends[1].PercentChange, 1e-9)
	assert.InDelta(t, -50.0, *report.Trends[2].PercentChange, 1e-9)

	require.NotNil(t, report.Projection)
	assert.Equal(t, domain.ProjectionMethodLinear, report.Projection.Method)
	assert.Len(t, report.Projection.Points, DefaultProjectionPeriods)
}

func TestEngine_Analyze_EmptyDataset(t *testing.T) {
	rows := []domain.RawRow{
		rawRow("2024-01-10", "A", -1, 100),
	}

	report, err := NewEngine(DefaultConfig()).Analyze(context.Background(), rows)

	assert.Nil(t, report)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncompleteAnalysis))
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestEngine_Analyze_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *domain.AnalysisConfig)
	}{
		{name: "Threshold negativo", mutate: func(cfg *domain.AnalysisConfig) { cfg.Threshold = -1 }},
		{name: "Top N zero", mutate: func(cfg *domain.AnalysisConfig) { cfg.TopN = 0 }},
		{name: "Granularidade desconhecida", mutate: func(cfg *domain.AnalysisConfig) { cfg.Bucket = "year" }},
		{name: "Tolerância negativa", mutate: func(cfg *domain.AnalysisConfig) { cfg.Tolerance = -0.1 }},
		{name: "Períodos de projeção acima do limite", mutate: func(cfg *domain.AnalysisConfig) { cfg.ProjectionPeriods = MaxProjectionPeriods + 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			report, err := NewEngine(cfg).Analyze(context.Background(), []domain.RawRow{rawRow("2024-01-10", "A", 1, 1)})

			assert.Nil(t, report)
			assert.True(t, errors.Is(err, ErrConfiguration))
		})
	}
}

func TestEngine_Analyze_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(DefaultConfig()).Analyze(ctx, []domain.RawRow{rawRow("2024-01-10", "A", 1, 1)})

	assert.True(t, errors.Is(err, context.Canceled))
}

func TestEngine_Analyze_Deterministic(t *testing.T) {
	rows := []domain.RawRow{
		rawRow("2024-01-10", "A", 2, "19.90"),
		rawRow("2024-01-17", "B", 1, "250"),
		rawRow("2024-02-03", "C", 7, "3.33"),
		rawRow("2024-03-21", "A", 1, "19.90"),
		rawRow("2024-03-22", "D", 40, "99.99"),
	}

	engine := NewEngine(DefaultConfig(), WithClock(fixedClock))

	first, err := engine.Analyze(context.Background(), rows)
	require.NoError(t, err)
	second, err := engine.Analyze(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
