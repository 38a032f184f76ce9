package domain

import "time"

type AnomalyKind string

const (
	AnomalyKindTransaction AnomalyKind = "transaction"
	AnomalyKindPeriod      AnomalyKind = "period"
)

type Severity string

const (
	SeverityModerate Severity = "Moderate"
	SeveritySevere   Severity = "Severe"
)

type AnomalyDirection string

const (
	AnomalyHigh AnomalyDirection = "high"
	AnomalyLow  AnomalyDirection = "low"
)

// Anomaly é uma observação estatisticamente fora do padrão.
// Para transações RowIndex e ProductID identificam a venda; para períodos, Period.
type Anomaly struct {
	Kind      AnomalyKind      `json:"kind"`
	RowIndex  *int             `json:"row_index,omitempty"`
	ProductID string           `json:"product_id,omitempty"`
	Period    string           `json:"period,omitempty"`
	Date      time.Time        `json:"date"`
	Observed  float64          `json:"observed"`
	Expected  float64          `json:"expected"`
	Score     float64          `json:"score"`
	Severity  Severity         `json:"severity"`
	Direction AnomalyDirection `json:"direction"`
}

// Subject descreve a referência da anomalia de forma legível
func (a Anomaly) Subject() string {
	if a.Kind == AnomalyKindPeriod {
		return a.Period
	}
	return a.ProductID
}
