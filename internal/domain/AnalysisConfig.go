package domain

// AnalysisConfig é a configuração explícita passada para cada análise
type AnalysisConfig struct {
	Threshold         float64     `json:"threshold"`
	TopN              int         `json:"top_n"`
	Bucket            Granularity `json:"bucket"`
	Tolerance         float64     `json:"tolerance"`
	ProjectionPeriods int         `json:"projection_periods"`
	DateLayouts       []string    `json:"date_layouts,omitempty"`
}
