// Package scheduler contém os serviços de agendamento da aplicação
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/vfg2006/sales-analytics-api/infrastructure/repository"
	"github.com/vfg2006/sales-analytics-api/infrastructure/source"
	"github.com/vfg2006/sales-analytics-api/internal/config"
	"github.com/vfg2006/sales-analytics-api/internal/domain"
	"github.com/vfg2006/sales-analytics-api/internal/usecases/reporting"
	"github.com/vfg2006/sales-analytics-api/pkg/log"
)

var (
	ErrSyncInProgress      = errors.New("geração de relatório agendado já está em execução")
	ErrSourceNotConfigured = errors.New("arquivo de origem do relatório agendado não configurado")
)

type ReportSyncConfig struct {
	CronSchedule  string
	SourcePath    string
	Recipients    []string
	SyncEnabled   bool
	RetentionDays int
}

// RowLoader lê as linhas brutas do arquivo de origem
type RowLoader func(ctx context.Context, path string) ([]domain.RawRow, error)

type ReportSyncService struct {
	scheduler           *gocron.Scheduler
	reporter            reporting.Reporter
	reportRepo          repository.ReportRepository
	loadRows            RowLoader
	config              ReportSyncConfig
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastReportID        string
	lastError           string
}

func NewReportSyncService(
	reporter reporting.Reporter,
	reportRepo repository.ReportRepository,
	cfg *config.Config,
) *ReportSyncService {
	syncConfig := ReportSyncConfig{
		CronSchedule:  cfg.ReportSync.CronSchedule,
		SourcePath:    cfg.ReportSync.SourcePath,
		Recipients:    cfg.ReportSync.Recipients,
		SyncEnabled:   cfg.ReportSync.Enabled,
		RetentionDays: cfg.ReportSync.RetentionDays,
	}

	log.L.WithFields(log.Fields{
		"cron_schedule": syncConfig.CronSchedule,
		"source_path":   syncConfig.SourcePath,
	}).Info("Configuração do agendador de relatórios carregada")

	return &ReportSyncService{
		scheduler:  gocron.NewScheduler(time.Local),
		reporter:   reporter,
		reportRepo: reportRepo,
		loadRows:   source.OpenFile,
		config:     syncConfig,
	}
}

func (s *ReportSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		log.L.Info("Cron de relatório agendado desabilitada por configuração")
		return nil
	}

	log.L.WithField("cron", s.config.CronSchedule).Info("Iniciando cron de relatório agendado")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		if _, err := s.RunReport(ctx); err != nil && !errors.Is(err, ErrSyncInProgress) {
			log.L.WithError(err).Error("Erro na geração do relatório agendado")
		}
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar geração de relatório: %w", err)
	}

	// Executar o cron em uma goroutine separada
	s.scheduler.StartAsync()

	// Configurar o cancelamento do cron quando o contexto for cancelado
	go func() {
		<-ctx.Done()
		log.L.Info("Parando cron de relatório agendado")
		s.scheduler.Stop()
	}()

	return nil
}

// RunReport gera o relatório do arquivo configurado, envia aos destinatários e aplica a retenção.
// Retorna ErrSyncInProgress se outra execução estiver em andamento.
func (s *ReportSyncService) RunReport(ctx context.Context) (*domain.StoredReport, error) {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		log.L.Warn("Geração de relatório agendado já está em execução")
		return nil, ErrSyncInProgress
	}
	s.syncRunning = true
	s.lastSyncStartedAt = time.Now()
	s.syncMutex.Unlock()

	ctx, correlationID := log.WithCorrelationID(ctx)
	logger := log.ForContext(ctx).WithFields(log.Fields{
		"component":      "report_sync",
		"correlation_id": correlationID,
		"source_path":    s.config.SourcePath,
	})

	stored, err := s.runReport(ctx, logger)

	s.syncMutex.Lock()
	s.syncRunning = false
	s.lastSyncCompletedAt = time.Now()
	s.lastError = ""
	if err != nil {
		s.lastError = err.Error()
	}
	if stored != nil {
		s.lastReportID = stored.ID
	}
	s.syncMutex.Unlock()

	return stored, err
}

func (s *ReportSyncService) runReport(ctx context.Context, logger log.Logger) (*domain.StoredReport, error) {
	if s.config.SourcePath == "" {
		return nil, ErrSourceNotConfigured
	}

	logger.Info("Iniciando geração do relatório agendado")

	rows, err := s.loadRows(ctx, s.config.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler arquivo de origem: %w", err)
	}

	stored, err := s.reporter.Generate(ctx, &reporting.Request{
		SourceName: filepath.Base(s.config.SourcePath),
		Rows:       rows,
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar relatório agendado: %w", err)
	}

	logger = logger.WithField("report_id", stored.ID)

	if len(s.config.Recipients) > 0 {
		if err := s.reporter.Deliver(ctx, stored.ID, s.config.Recipients); err != nil {
			return stored, fmt.Errorf("erro ao enviar relatório agendado: %w", err)
		}
	} else {
		logger.Info("Nenhum destinatário configurado, relatório não enviado")
	}

	s.applyRetention(ctx, logger)

	logger.Info("Geração do relatório agendado concluída")
	return stored, nil
}

func (s *ReportSyncService) applyRetention(ctx context.Context, logger log.Logger) {
	if s.config.RetentionDays <= 0 {
		return
	}

	removed, err := s.reportRepo.DeleteOlderThan(ctx, s.config.RetentionDays)
	if err != nil {
		logger.WithError(err).Warn("Erro ao remover relatórios antigos")
		return
	}

	if removed > 0 {
		logger.WithFields(log.Fields{
			"report_removed":        removed,
			"report_retention_days": s.config.RetentionDays,
		}).Info("Relatórios antigos removidos")
	}
}

// TriggerManualSync inicia manualmente a geração do relatório agendado
func (s *ReportSyncService) TriggerManualSync() error {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		log.L.Info("Relatório agendado já em andamento, ignorando solicitação manual")
		return ErrSyncInProgress
	}
	s.syncMutex.Unlock()

	log.L.Info("Iniciando geração manual do relatório agendado")
	go func() {
		if _, err := s.RunReport(context.Background()); err != nil && !errors.Is(err, ErrSyncInProgress) {
			log.L.WithError(err).Error("Erro na geração manual do relatório agendado")
		}
	}()

	return nil
}

// GetStatus retorna o status atual do agendador
func (s *ReportSyncService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_running":           s.syncRunning,
		"source_path":            s.config.SourcePath,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
		"last_report_id":         s.lastReportID,
		"last_error":             s.lastError,
	}
}
