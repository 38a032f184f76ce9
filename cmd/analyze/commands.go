package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vfg2006/sales-analytics-api/infrastructure/database/postgres"
	"github.com/vfg2006/sales-analytics-api/infrastructure/exporter"
	"github.com/vfg2006/sales-analytics-api/infrastructure/source"
	"github.com/vfg2006/sales-analytics-api/internal/config"
	"github.com/vfg2006/sales-analytics-api/internal/domain"
	"github.com/vfg2006/sales-analytics-api/internal/usecases/analyzing"
	"github.com/vfg2006/sales-analytics-api/internal/usecases/authenticating"
	"github.com/vfg2006/sales-analytics-api/pkg/log"
)

const migrateTimeout = 30 * time.Second

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "analyze",
		Short:         "Análise de planilhas de vendas",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(), newMigrateCmd(), newHashPasswordCmd())
	return root
}

type runCmd struct {
	input             string
	bucket            string
	threshold         float64
	topN              int
	tolerance         float64
	projectionPeriods int
	format            string
	output            string
}

func newRunCmd() *cobra.Command {
	rc := &runCmd{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Gera o relatório de um arquivo CSV ou XLSX sem banco de dados",
		RunE:  rc.run,
	}

	cmd.Flags().StringVarP(&rc.input, "input", "i", "", "Arquivo de vendas (.csv ou .xlsx)")
	cmd.Flags().StringVar(&rc.bucket, "bucket", string(analyzing.DefaultBucket), "Granularidade: day, week ou month")
	cmd.Flags().Float64Var(&rc.threshold, "threshold", analyzing.DefaultThreshold, "Limite do z-score para anomalias")
	cmd.Flags().IntVar(&rc.topN, "top-n", analyzing.DefaultTopN, "Quantidade de produtos no ranking")
	cmd.Flags().Float64Var(&rc.tolerance, "tolerance", analyzing.DefaultTolerance, "Tolerância relativa entre quantidade x preço e total")
	cmd.Flags().IntVar(&rc.projectionPeriods, "projection", analyzing.DefaultProjectionPeriods, "Períodos projetados")
	cmd.Flags().StringVarP(&rc.format, "format", "f", exporter.FormatJSON, "Formato de saída: json, csv ou xlsx")
	cmd.Flags().StringVarP(&rc.output, "output", "o", "", "Arquivo de saída (padrão: saída padrão)")

	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func (rc *runCmd) config() domain.AnalysisConfig {
	cfg := analyzing.DefaultConfig()
	cfg.Bucket = domain.Granularity(rc.bucket)
	cfg.Threshold = rc.threshold
	cfg.TopN = rc.topN
	cfg.Tolerance = rc.tolerance
	cfg.ProjectionPeriods = rc.projectionPeriods
	return cfg
}

func (rc *runCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	exp, err := exporter.ForFormat(rc.format)
	if err != nil {
		return err
	}

	rows, err := source.OpenFile(ctx, rc.input)
	if err != nil {
		return err
	}

	engine := analyzing.NewEngine(rc.config(), analyzing.WithLogger(log.L))
	report, err := engine.Analyze(ctx, rows)
	if err != nil {
		return fmt.Errorf("erro ao analisar %s: %w", rc.input, err)
	}

	var out io.Writer = cmd.OutOrStdout()
	if rc.output != "" {
		file, err := os.Create(rc.output)
		if err != nil {
			return fmt.Errorf("erro ao criar %s: %w", rc.output, err)
		}
		defer file.Close()
		out = file
	}

	if err := exp.Export(out, report); err != nil {
		return fmt.Errorf("erro ao exportar relatório: %w", err)
	}

	log.L.WithFields(log.Fields{
		"input":         rc.input,
		"rows_valid":    report.Validation.ValidCount(),
		"rows_rejected": report.Validation.RejectedCount(),
		"anomalies":     len(report.Anomalies),
	}).Info("Relatório gerado")

	return nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Cria as tabelas do PostgreSQL usadas pela API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
			defer cancel()

			conn, err := postgres.NewConnection(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := postgres.EnsureSchema(ctx, conn); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Schema criado com sucesso")
			return nil
		},
	}
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <senha>",
		Short: "Gera o hash bcrypt usado em AUTH_ADMIN_PASSWORD_HASH e AUTH_ANALYST_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := authenticating.HashPassword(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
