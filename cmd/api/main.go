package main

import (
	"context"
	"os"
	"path"
	"runtime"

	"github.com/vfg2006/sales-analytics-api/infrastructure/database/postgres"
	"github.com/vfg2006/sales-analytics-api/infrastructure/notifier"
	"github.com/vfg2006/sales-analytics-api/infrastructure/repository"
	"github.com/vfg2006/sales-analytics-api/internal/api"
	"github.com/vfg2006/sales-analytics-api/internal/config"
	"github.com/vfg2006/sales-analytics-api/internal/scheduler"
	"github.com/vfg2006/sales-analytics-api/internal/usecases/authenticating"
	"github.com/vfg2006/sales-analytics-api/internal/usecases/reporting"
	"github.com/vfg2006/sales-analytics-api/pkg/log"
	"github.com/vfg2006/sales-analytics-api/pkg/metrics"
)

func main() {
	configureWorkdir()

	cfg, err := config.NewConfig()
	if err != nil {
		log.L.Fatal(err)
	}

	log.Setup(cfg.App.LogLevel)
	log.L.WithField("level", cfg.App.LogLevel).Info("Nível de log configurado")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := api.Dependencies{
		Metrics: metrics.New(),
	}

	var reportRepo repository.ReportRepository
	if cfg.Database.Enabled {
		pgConn := pgconn(ctx, cfg.Database)
		defer pgConn.Close()

		reportRepo = repository.NewReportRepository(pgConn)
		deps.Database = pgConn
	} else {
		log.L.Warn("Banco de dados desabilitado, relatórios ficarão apenas em memória")
		reportRepo = repository.NewMemoryReportRepository()
	}

	reporter := reporting.NewService(cfg, reportRepo, notifier.New(cfg.Mailgun), deps.Metrics)
	deps.Reporter = reporter
	deps.Authenticator = authenticating.NewService(cfg)

	// Inicializa o agendador do relatório periódico
	reportSyncService := scheduler.NewReportSyncService(reporter, reportRepo, cfg)
	if err := reportSyncService.Start(ctx); err != nil {
		log.L.WithError(err).Error("Erro ao iniciar o agendador de relatórios")
	}
	deps.ReportSync = reportSyncService

	server, err := api.New(cfg, deps)
	if err != nil {
		log.L.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		log.L.Error(err)
	}
}

// configureWorkdir posiciona o processo no diretório do binário para encontrar o .env local
func configureWorkdir() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)
}

// pgconn cria a conexão com o banco de dados e garante o schema
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		log.L.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	if err := postgres.EnsureSchema(ctx, conn); err != nil {
		log.L.WithError(err).Fatal("Erro ao criar schema do PostgreSQL")
	}

	log.L.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
