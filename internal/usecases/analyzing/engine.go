package analyzing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
	"github.com/vfg2006/sales-analytics-api/pkg/log"
)

// Analyzer executa a análise completa sobre um lote de linhas brutas
//
//go:generate mockgen -source=engine.go -destination=mocks/analyzer_mock.go -package=mocks
type Analyzer interface {
	Analyze(ctx context.Context, rows []domain.RawRow) (*domain.AnalysisReport, error)
}

// Engine encadeia normalização, indicadores, tendências, anomalias e montagem do relatório.
// Não guarda estado entre chamadas.
type Engine struct {
	config domain.AnalysisConfig
	logger log.Logger
	now    func() time.Time
}

type EngineOption func(*Engine)

func WithLogger(logger log.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock substitui o relógio usado para preencher GeneratedAt
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine cria um Engine com a configuração informada
func NewEngine(cfg domain.AnalysisConfig, opts ...EngineOption) *Engine {
	engine := &Engine{
		config: withDefaults(cfg),
		logger: log.Discard(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Config retorna a configuração efetiva do Engine
func (e *Engine) Config() domain.AnalysisConfig {
	return e.config
}

// Analyze normaliza as linhas e produz o relatório.
// Indicadores e a cadeia tendência/anomalia rodam em paralelo e são unidos antes da montagem.
func (e *Engine) Analyze(ctx context.Context, rows []domain.RawRow) (*domain.AnalysisReport, error) {
	if err := ValidateConfig(e.config); err != nil {
		return nil, err
	}

	logger := e.logger.WithContext(ctx)

	validation := Normalize(rows, e.config)
	logger.WithFields(log.Fields{
		"component":     ComponentNormalizer,
		"rows_input":    validation.InputRows,
		"rows_valid":    validation.ValidCount(),
		"rows_rejected": validation.RejectedCount(),
	}).Debug("linhas normalizadas")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		kpis      *domain.KPIMetrics
		trends    []domain.TrendPoint
		anomalies []domain.Anomaly
		kpiErr    error
		trendErr  error
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		kpis, kpiErr = ComputeKPIs(validation.Valid, e.config.TopN)
		if kpiErr != nil && errors.Is(kpiErr, ErrConfiguration) {
			return kpiErr
		}
		return nil
	})

	group.Go(func() error {
		trends, trendErr = AnalyzeTrends(validation.Valid, e.config.Bucket)
		if trendErr != nil {
			if errors.Is(trendErr, ErrConfiguration) {
				return trendErr
			}
			return nil
		}
		if err := groupCtx.Err(); err != nil {
			return err
		}

		var err error
		anomalies, err = DetectAnomalies(validation.Valid, trends, e.config.Threshold)
		return err
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	stageErr := errors.Join(kpiErr, trendErr)

	options := []AssembleOption{
		WithGeneratedAt(e.now()),
		WithConfig(e.config),
	}

	if trendErr == nil {
		summary, err := SummarizeTrends(trends)
		if err != nil {
			return nil, err
		}
		projection, err := ProjectRevenue(trends, e.config.Bucket, e.config.ProjectionPeriods)
		if err != nil {
			return nil, err
		}
		options = append(options, WithTrendSummary(summary), WithProjection(projection))
	}

	report, err := Assemble(&validation, kpis, trends, anomalies, options...)
	if err != nil {
		if stageErr != nil {
			return nil, fmt.Errorf("%w: %w", err, stageErr)
		}
		return nil, err
	}

	logger.WithFields(log.Fields{
		"component":        ComponentAssembler,
		"report_anomalies": len(report.Anomalies),
		"report_periods":   len(report.Trends),
	}).Debug("relatório montado")

	return report, nil
}
