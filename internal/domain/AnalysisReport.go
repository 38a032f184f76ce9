package domain

import "time"

type ProjectedPoint struct {
	Period  string  `json:"period"`
	Revenue float64 `json:"revenue"`
}

const (
	ProjectionMethodLinear       = "linear_regression"
	ProjectionMethodInsufficient = "insufficient_data"
)

// Projection é a projeção linear simples da receita por período
type Projection struct {
	Method            string           `json:"method"`
	Points            []ProjectedPoint `json:"points"`
	Slope             float64          `json:"slope"`
	Intercept         float64          `json:"intercept"`
	RSquared          float64          `json:"r_squared"`
	Confidence        float64          `json:"confidence"`
	Direction         TrendDirection   `json:"direction"`
	HistoricalPeriods int              `json:"historical_periods"`
}

// AnalysisReport é o único artefato produzido por uma análise.
// Não deve ser alterado depois de montado.
type AnalysisReport struct {
	KPIs         KPIMetrics        `json:"kpis"`
	Trends       []TrendPoint      `json:"trends"`
	TrendSummary *TrendSummary     `json:"trend_summary,omitempty"`
	Anomalies    []Anomaly         `json:"anomalies"`
	Projection   *Projection       `json:"projection,omitempty"`
	Validation   ValidationOutcome `json:"validation"`
	Config       AnalysisConfig    `json:"config"`
	GeneratedAt  time.Time         `json:"generated_at"`
}
