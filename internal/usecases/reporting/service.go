package reporting

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"

	"github.com/vfg2006/sales-analytics-api/infrastructure/exporter"
	"github.com/vfg2006/sales-analytics-api/infrastructure/notifier"
	"github.com/vfg2006/sales-analytics-api/infrastructure/repository"
	"github.com/vfg2006/sales-analytics-api/internal/config"
	"github.com/vfg2006/sales-analytics-api/internal/domain"
	"github.com/vfg2006/sales-analytics-api/internal/usecases/analyzing"
	"github.com/vfg2006/sales-analytics-api/pkg/log"
	"github.com/vfg2006/sales-analytics-api/pkg/metrics"
	"github.com/vfg2006/sales-analytics-api/pkg/utils"
)

// DefaultSourceName identifica relatórios gerados sem nome de origem
const DefaultSourceName = "upload"

// Request é o pedido de geração de um relatório
type Request struct {
	SourceName string
	Rows       []domain.RawRow
	Overrides  Overrides
}

// Overrides substitui valores da configuração padrão em uma única análise
type Overrides struct {
	Threshold         *float64
	TopN              *int
	Bucket            *domain.Granularity
	Tolerance         *float64
	ProjectionPeriods *int
}

// Apply retorna uma cópia de cfg com os valores informados substituídos
func (o Overrides) Apply(cfg domain.AnalysisConfig) domain.AnalysisConfig {
	merged := cfg
	merged.DateLayouts = append([]string(nil), cfg.DateLayouts...)

	if o.Threshold != nil {
		merged.Threshold = *o.Threshold
	}
	if o.TopN != nil {
		merged.TopN = *o.TopN
	}
	if o.Bucket != nil {
		merged.Bucket = *o.Bucket
	}
	if o.Tolerance != nil {
		merged.Tolerance = *o.Tolerance
	}
	if o.ProjectionPeriods != nil {
		merged.ProjectionPeriods = *o.ProjectionPeriods
	}

	return merged
}

// AnalyzerFactory cria o analisador para a configuração de uma análise
type AnalyzerFactory func(cfg domain.AnalysisConfig) analyzing.Analyzer

//go:generate mockgen -source=service.go -destination=mocks/reporter_mock.go -package=mocks
type Reporter interface {
	Generate(ctx context.Context, req *Request) (*domain.StoredReport, error)
	Get(ctx context.Context, id string) (*domain.StoredReport, error)
	List(ctx context.Context, limit int) ([]*domain.StoredReport, error)
	Export(ctx context.Context, id string, format string, w io.Writer) error
	Deliver(ctx context.Context, id string, recipients []string) error
}

type Service struct {
	defaults    domain.AnalysisConfig
	recipients  []string
	newAnalyzer AnalyzerFactory
	repository  repository.ReportRepository
	notifier    notifier.Notifier
	metrics     *metrics.Metrics
	cache       *cache.Cache
	now         func() time.Time
}

type Option func(*Service)

func WithAnalyzerFactory(factory AnalyzerFactory) Option {
	return func(s *Service) {
		s.newAnalyzer = factory
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService cria o serviço de relatórios
func NewService(
	cfg *config.Config,
	reportRepository repository.ReportRepository,
	reportNotifier notifier.Notifier,
	appMetrics *metrics.Metrics,
	opts ...Option,
) *Service {
	s := &Service{
		defaults:   cfg.AnalysisConfig(),
		recipients: cfg.ReportSync.Recipients,
		newAnalyzer: func(analysisConfig domain.AnalysisConfig) analyzing.Analyzer {
			return analyzing.NewEngine(analysisConfig, analyzing.WithLogger(log.L.WithField("component", "analyzing")))
		},
		repository: reportRepository,
		notifier:   reportNotifier,
		metrics:    appMetrics,
		cache:      cache.New(cfg.ReportCache.TTL, cfg.ReportCache.CleanupInterval),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Generate analisa as linhas recebidas, persiste o relatório e o mantém em cache
func (s *Service) Generate(ctx context.Context, req *Request) (*domain.StoredReport, error) {
	sourceName := strings.TrimSpace(req.SourceName)
	if sourceName == "" {
		sourceName = DefaultSourceName
	}

	logger := log.ForContext(ctx).WithFields(log.Fields{
		"component":   "reporting",
		"source_name": sourceName,
		"rows_input":  len(req.Rows),
	})

	start := s.now()
	analysisConfig := req.Overrides.Apply(s.defaults)

	report, err := s.newAnalyzer(analysisConfig).Analyze(ctx, req.Rows)
	if err != nil {
		s.metrics.ObserveReportFailure(s.now().Sub(start))
		logger.WithError(err).Warn("Falha ao gerar relatório")
		return nil, errors.Wrap(err, "erro ao analisar vendas")
	}

	id, err := utils.GenerateID()
	if err != nil {
		return nil, NewReportError(ErrGenerateID, "", err.Error())
	}

	stored := domain.NewStoredReport(id, sourceName, report)
	if err := s.repository.Save(ctx, stored); err != nil {
		logger.WithError(err).Error("Erro ao salvar relatório")
		return nil, errors.Wrapf(err, "erro ao salvar relatório %s", id)
	}

	s.cache.SetDefault(id, stored)
	s.metrics.ObserveReport(report, s.now().Sub(start))

	logger.WithFields(log.Fields{
		"report_id":      id,
		"rows_valid":     stored.ValidRows,
		"rows_rejected":  stored.RejectedRows,
		"report_anomaly": stored.AnomalyCount,
	}).Info("Relatório gerado com sucesso")

	return stored, nil
}

// Get busca o relatório completo, primeiro no cache e depois no repositório
func (s *Service) Get(ctx context.Context, id string) (*domain.StoredReport, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, NewReportError(ErrReportIDRequired, "", "")
	}

	if cached, ok := s.cache.Get(id); ok {
		return cached.(*domain.StoredReport), nil
	}

	stored, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "erro ao buscar relatório %s", id)
	}
	if stored == nil || stored.Report == nil {
		return nil, NewReportError(ErrReportNotFound, id, "")
	}

	s.cache.SetDefault(id, stored)
	return stored, nil
}

// List retorna os resumos dos relatórios mais recentes
func (s *Service) List(ctx context.Context, limit int) ([]*domain.StoredReport, error) {
	reports, err := s.repository.List(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao listar relatórios")
	}
	return reports, nil
}

// Export escreve o relatório em w no formato pedido
func (s *Service) Export(ctx context.Context, id string, format string, w io.Writer) error {
	exp, err := exporter.ForFormat(format)
	if err != nil {
		return err
	}

	stored, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := exp.Export(w, stored.Report); err != nil {
		return errors.Wrapf(err, "erro ao exportar relatório %s", id)
	}

	return nil
}

// Deliver envia o resumo do relatório por e-mail.
// Sem destinatários informados usa os destinatários configurados.
func (s *Service) Deliver(ctx context.Context, id string, recipients []string) error {
	to := cleanRecipients(recipients)
	if len(to) == 0 {
		to = cleanRecipients(s.recipients)
	}
	if len(to) == 0 {
		return NewReportError(notifier.ErrNoRecipients, id, "")
	}

	stored, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.notifier.Send(ctx, notifier.Message{
		To:      to,
		Subject: SummarySubject(stored),
		Text:    SummaryText(stored),
	})
	s.metrics.ObserveDelivery(err)
	if err != nil {
		return errors.Wrapf(err, "erro ao enviar relatório %s", id)
	}

	log.ForContext(ctx).WithFields(log.Fields{
		"report_id":         id,
		"report_recipients": len(to),
	}).Info("Relatório enviado")

	return nil
}

func cleanRecipients(recipients []string) []string {
	cleaned := make([]string, 0, len(recipients))
	for _, recipient := range recipients {
		if recipient = strings.TrimSpace(recipient); recipient != "" {
			cleaned = append(cleaned, recipient)
		}
	}
	return cleaned
}
