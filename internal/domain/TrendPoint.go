package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Granularity define o tamanho do período usado para agrupar as vendas
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// IsValid indica se a granularidade é suportada
func (g Granularity) IsValid() bool {
	switch g {
	case GranularityDay, GranularityWeek, GranularityMonth:
		return true
	}
	return false
}

// TrendPoint é um período da série temporal de vendas.
// PercentChange é nil no primeiro período e quando a receita anterior é zero.
type TrendPoint struct {
	Period           string          `json:"period"`
	Start            time.Time       `json:"start"`
	Revenue          decimal.Decimal `json:"revenue"`
	TransactionCount int             `json:"transaction_count"`
	PercentChange    *float64        `json:"percent_change"`
}

type TrendDirection string

const (
	TrendGrowing   TrendDirection = "growing"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// TrendSummary resume a série de períodos
type TrendSummary struct {
	Direction            TrendDirection  `json:"direction"`
	GrowthPercent        *float64        `json:"growth_percent"`
	BestPeriod           string          `json:"best_period"`
	WorstPeriod          string          `json:"worst_period"`
	AveragePeriodRevenue decimal.Decimal `json:"average_period_revenue"`
	Periods              int             `json:"periods"`
}
