package analyzing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
)

// StableTrendBand é a variação percentual, entre o primeiro e o último período,
// dentro da qual a tendência é considerada estável
const StableTrendBand = 5.0

// MaxTrendBuckets limita a série preenchida, uma data como 0001-01-01 geraria centenas de milhares de dias
const MaxTrendBuckets = 10000

var hundred = decimal.NewFromInt(100)

// AnalyzeTrends agrupa os registros por período e calcula a variação entre períodos consecutivos.
// Períodos sem vendas entre o primeiro e o último são incluídos com receita zero.
func AnalyzeTrends(records []domain.SalesRecord, bucket domain.Granularity) ([]domain.TrendPoint, error) {
	if !bucket.IsValid() {
		return nil, NewAnalysisError(ErrConfiguration, ComponentTrend, fmt.Sprintf("granularidade desconhecida %q", bucket))
	}

	if len(records) == 0 {
		return nil, NewAnalysisError(ErrInsufficientData, ComponentTrend, "nenhum registro válido para calcular tendências")
	}

	type accumulator struct {
		revenue decimal.Decimal
		count   int
	}

	buckets := make(map[time.Time]*accumulator)
	first := bucketStart(records[0].Date, bucket)
	last := first

	for _, record := range records {
		start := bucketStart(record.Date, bucket)
		acc, ok := buckets[start]
		if !ok {
			acc = &accumulator{revenue: decimal.Zero}
			buckets[start] = acc
		}
		acc.revenue = acc.revenue.Add(record.TotalAmount)
		acc.count++

		if start.Before(first) {
			first = start
		}
		if start.After(last) {
			last = start
		}
	}

	trends := make([]domain.TrendPoint, 0)
	for start := first; !start.After(last); start = nextBucket(start, bucket) {
		if len(trends) == MaxTrendBuckets {
			return nil, NewAnalysisError(ErrConfiguration, ComponentTrend,
				fmt.Sprintf("intervalo de %s a %s excede %d períodos com granularidade %q",
					bucketLabel(first, bucket), bucketLabel(last, bucket), MaxTrendBuckets, bucket))
		}

		point := domain.TrendPoint{
			Period:  bucketLabel(start, bucket),
			Start:   start,
			Revenue: decimal.Zero,
		}
		if acc, ok := buckets[start]; ok {
			point.Revenue = acc.revenue
			point.TransactionCount = acc.count
		}

		if len(trends) > 0 {
			point.PercentChange = percentChange(trends[len(trends)-1].Revenue, point.Revenue)
		}
		trends = append(trends, point)
	}

	return trends, nil
}

// percentChange retorna nil quando a receita anterior é zero
func percentChange(previous, current decimal.Decimal) *float64 {
	if previous.IsZero() {
		return nil
	}
	change, _ := current.Sub(previous).Div(previous).Mul(hundred).Float64()
	return &change
}

func bucketStart(date time.Time, bucket domain.Granularity) time.Time {
	day := toCalendarDate(date)
	switch bucket {
	case domain.GranularityWeek:
		// Semana ISO começa na segunda-feira
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case domain.GranularityMonth:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

func nextBucket(start time.Time, bucket domain.Granularity) time.Time {
	switch bucket {
	case domain.GranularityWeek:
		return start.AddDate(0, 0, 7)
	case domain.GranularityMonth:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

func bucketLabel(start time.Time, bucket domain.Granularity) string {
	switch bucket {
	case domain.GranularityWeek:
		year, week := start.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case domain.GranularityMonth:
		return start.Format("2006-01")
	default:
		return start.Format(time.DateOnly)
	}
}

// SummarizeTrends resume a série: direção, melhor e pior período e receita média por período
func SummarizeTrends(trends []domain.TrendPoint) (*domain.TrendSummary, error) {
	if len(trends) == 0 {
		return nil, NewAnalysisError(ErrInsufficientData, ComponentTrend, "série de tendências vazia")
	}

	summary := &domain.TrendSummary{
		BestPeriod:  trends[0].Period,
		WorstPeriod: trends[0].Period,
		Periods:     len(trends),
	}

	best, worst := trends[0].Revenue, trends[0].Revenue
	total := decimal.Zero
	for _, point := range trends {
		total = total.Add(point.Revenue)
		if point.Revenue.GreaterThan(best) {
			best = point.Revenue
			summary.BestPeriod = point.Period
		}
		if point.Revenue.LessThan(worst) {
			worst = point.Revenue
			summary.WorstPeriod = point.Period
		}
	}
	summary.AveragePeriodRevenue = total.Div(decimal.NewFromInt(int64(len(trends))))

	first, last := trends[0].Revenue, trends[len(trends)-1].Revenue
	summary.GrowthPercent = percentChange(first, last)
	summary.Direction = trendDirection(summary.GrowthPercent, first, last)

	return summary, nil
}

func trendDirection(growth *float64, first, last decimal.Decimal) domain.TrendDirection {
	if growth == nil {
		if last.GreaterThan(first) {
			return domain.TrendGrowing
		}
		return domain.TrendStable
	}

	switch {
	case *growth > StableTrendBand:
		return domain.TrendGrowing
	case *growth < -StableTrendBand:
		return domain.TrendDeclining
	default:
		return domain.TrendStable
	}
}
