package analyzing

import (
	"fmt"
	"math"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
	"github.com/vfg2006/sales-analytics-api/pkg/utils"
)

// MinProjectionPeriods é o mínimo de períodos históricos para ajustar a regressão
const MinProjectionPeriods = 3

// ProjectRevenue ajusta uma regressão linear simples sobre a receita dos períodos
// e projeta os próximos periods períodos. periods igual a zero desativa a projeção.
func ProjectRevenue(trends []domain.TrendPoint, bucket domain.Granularity, periods int) (*domain.Projection, error) {
	if periods == 0 {
		return nil, nil
	}
	if periods < 0 || periods > MaxProjectionPeriods {
		return nil, configurationError("projection_periods", "deve estar entre 0 e %d, recebido %d", MaxProjectionPeriods, periods)
	}
	if !bucket.IsValid() {
		return nil, NewAnalysisError(ErrConfiguration, ComponentProjection, fmt.Sprintf("granularidade desconhecida %q", bucket))
	}

	n := len(trends)
	if n < MinProjectionPeriods {
		return &domain.Projection{
			Method:            domain.ProjectionMethodInsufficient,
			Points:            []domain.ProjectedPoint{},
			Direction:         domain.TrendStable,
			HistoricalPeriods: n,
		}, nil
	}

	ys := make([]float64, n)
	var sumX, sumY float64
	for i, point := range trends {
		ys[i], _ = point.Revenue.Float64()
		sumX += float64(i)
		sumY += ys[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var sxy, sxx float64
	for i, y := range ys {
		dx := float64(i) - meanX
		sxy += dx * (y - meanY)
		sxx += dx * dx
	}
	slope := sxy / sxx
	intercept := meanY - slope*meanX

	var ssRes, ssTot float64
	for i, y := range ys {
		predicted := intercept + slope*float64(i)
		ssRes += (y - predicted) * (y - predicted)
		ssTot += (y - meanY) * (y - meanY)
	}

	rSquared := 1.0
	if ssTot > 0 {
		rSquared = math.Max(0, math.Min(1, 1-ssRes/ssTot))
	}

	projection := &domain.Projection{
		Method:            domain.ProjectionMethodLinear,
		Points:            make([]domain.ProjectedPoint, 0, periods),
		Slope:             slope,
		Intercept:         intercept,
		RSquared:          rSquared,
		Confidence:        utils.RoundWithTwoDecimalPlace(rSquared * 100),
		Direction:         slopeDirection(slope),
		HistoricalPeriods: n,
	}

	start := trends[n-1].Start
	for step := 0; step < periods; step++ {
		start = nextBucket(start, bucket)
		revenue := intercept + slope*float64(n+step)
		projection.Points = append(projection.Points, domain.ProjectedPoint{
			Period:  bucketLabel(start, bucket),
			Revenue: utils.RoundWithTwoDecimalPlace(math.Max(0, revenue)),
		})
	}

	return projection, nil
}

func slopeDirection(slope float64) domain.TrendDirection {
	switch {
	case slope > 0:
		return domain.TrendGrowing
	case slope < 0:
		return domain.TrendDeclining
	default:
		return domain.TrendStable
	}
}
