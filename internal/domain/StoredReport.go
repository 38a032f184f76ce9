package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StoredReport é um relatório de análise persistido pela aplicação
type StoredReport struct {
	ID           string          `json:"id"`
	SourceName   string          `json:"source_name"`
	GeneratedAt  time.Time       `json:"generated_at"`
	InputRows    int             `json:"input_rows"`
	ValidRows    int             `json:"valid_rows"`
	RejectedRows int             `json:"rejected_rows"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	AnomalyCount int             `json:"anomaly_count"`
	Report       *AnalysisReport `json:"report,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// NewStoredReport cria o registro persistível a partir de um relatório
func NewStoredReport(id, sourceName string, report *AnalysisReport) *StoredReport {
	return &StoredReport{
		ID:           id,
		SourceName:   sourceName,
		GeneratedAt:  report.GeneratedAt,
		InputRows:    report.Validation.InputRows,
		ValidRows:    report.Validation.ValidCount(),
		RejectedRows: report.Validation.RejectedCount(),
		TotalRevenue: report.KPIs.TotalRevenue,
		AnomalyCount: len(report.Anomalies),
		Report:       report,
	}
}
