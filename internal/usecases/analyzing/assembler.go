package analyzing

import (
	"strings"
	"time"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
)

type assembleOptions struct {
	projection   *domain.Projection
	trendSummary *domain.TrendSummary
	generatedAt  time.Time
	config       *domain.AnalysisConfig
}

// AssembleOption adiciona partes opcionais ao relatório
type AssembleOption func(*assembleOptions)

func WithProjection(projection *domain.Projection) AssembleOption {
	return func(o *assembleOptions) {
		o.projection = projection
	}
}

func WithTrendSummary(summary *domain.TrendSummary) AssembleOption {
	return func(o *assembleOptions) {
		o.trendSummary = summary
	}
}

func WithGeneratedAt(generatedAt time.Time) AssembleOption {
	return func(o *assembleOptions) {
		o.generatedAt = generatedAt
	}
}

func WithConfig(cfg domain.AnalysisConfig) AssembleOption {
	return func(o *assembleOptions) {
		o.config = &cfg
	}
}

// Assemble compõe o relatório final sem recalcular nada.
// Qualquer parte obrigatória ausente retorna ErrIncompleteAnalysis com a lista das partes.
func Assemble(
	validation *domain.ValidationOutcome,
	kpis *domain.KPIMetrics,
	trends []domain.TrendPoint,
	anomalies []domain.Anomaly,
	opts ...AssembleOption,
) (*domain.AnalysisReport, error) {
	var missing []string
	if validation == nil {
		missing = append(missing, "validation")
	}
	if kpis == nil {
		missing = append(missing, "kpis")
	}
	if trends == nil {
		missing = append(missing, "trends")
	}
	if anomalies == nil {
		missing = append(missing, "anomalies")
	}
	if len(missing) > 0 {
		return nil, NewAnalysisError(ErrIncompleteAnalysis, ComponentAssembler, "partes ausentes: "+strings.Join(missing, ", "))
	}

	options := assembleOptions{generatedAt: time.Now().UTC()}
	for _, opt := range opts {
		opt(&options)
	}

	report := &domain.AnalysisReport{
		KPIs:        copyKPIs(*kpis),
		Trends:      copyTrends(trends),
		Anomalies:   copyAnomalies(anomalies),
		Validation:  copyValidation(*validation),
		GeneratedAt: options.generatedAt,
	}

	if options.trendSummary != nil {
		summary := *options.trendSummary
		summary.GrowthPercent = copyFloat(summary.GrowthPercent)
		report.TrendSummary = &summary
	}

	if options.projection != nil {
		projection := *options.projection
		projection.Points = append([]domain.ProjectedPoint{}, options.projection.Points...)
		report.Projection = &projection
	}

	if options.config != nil {
		cfg := *options.config
		cfg.DateLayouts = append([]string(nil), options.config.DateLayouts...)
		report.Config = cfg
	}

	return report, nil
}

func copyKPIs(kpis domain.KPIMetrics) domain.KPIMetrics {
	kpis.TopProducts = append([]domain.ProductRevenue{}, kpis.TopProducts...)
	kpis.RevenueByCategory = append([]domain.CategoryRevenue{}, kpis.RevenueByCategory...)
	return kpis
}

func copyTrends(trends []domain.TrendPoint) []domain.TrendPoint {
	result := make([]domain.TrendPoint, len(trends))
	for i, point := range trends {
		point.PercentChange = copyFloat(point.PercentChange)
		result[i] = point
	}
	return result
}

func copyAnomalies(anomalies []domain.Anomaly) []domain.Anomaly {
	result := make([]domain.Anomaly, len(anomalies))
	for i, anomaly := range anomalies {
		if anomaly.RowIndex != nil {
			rowIndex := *anomaly.RowIndex
			anomaly.RowIndex = &rowIndex
		}
		result[i] = anomaly
	}
	return result
}

func copyValidation(validation domain.ValidationOutcome) domain.ValidationOutcome {
	validation.Valid = append([]domain.SalesRecord{}, validation.Valid...)
	validation.Rejected = append([]domain.Rejection{}, validation.Rejected...)
	return validation
}

func copyFloat(value *float64) *float64 {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}
