// Package repository contém as implementações dos repositórios para acesso aos dados
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	jsoniter "github.com/json-iterator/go"

	"github.com/vfg2006/sales-analytics-api/infrastructure/database/postgres"
	"github.com/vfg2006/sales-analytics-api/internal/domain"
)

const (
	reportsTable = "analysis_reports"

	DefaultListLimit = 50
	MaxListLimit     = 500
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var reportSummaryColumns = []string{
	"id",
	"source_name",
	"generated_at",
	"input_rows",
	"valid_rows",
	"rejected_rows",
	"total_revenue",
	"anomaly_count",
	"created_at",
}

//go:generate mockgen -source=report.go -destination=mocks/report_mock.go -package=mocks
type ReportRepository interface {
	Save(ctx context.Context, report *domain.StoredReport) error
	GetByID(ctx context.Context, id string) (*domain.StoredReport, error)
	List(ctx context.Context, limit int) ([]*domain.StoredReport, error)
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}

type reportRepository struct {
	conn postgres.Queryer
}

func NewReportRepository(conn postgres.Queryer) ReportRepository {
	return &reportRepository{
		conn: conn,
	}
}

func (r *reportRepository) Save(ctx context.Context, report *domain.StoredReport) error {
	payload, err := json.Marshal(report.Report)
	if err != nil {
		return fmt.Errorf("erro ao serializar relatório: %w", err)
	}

	query, args, err := squirrel.
		Insert(reportsTable).
		Columns(
			"id",
			"source_name",
			"generated_at",
			"input_rows",
			"valid_rows",
			"rejected_rows",
			"total_revenue",
			"anomaly_count",
			"report",
		).
		Values(
			report.ID,
			report.SourceName,
			report.GeneratedAt,
			report.InputRows,
			report.ValidRows,
			report.RejectedRows,
			report.TotalRevenue,
			report.AnomalyCount,
			payload,
		).
		Suffix(`
			ON CONFLICT (id) DO UPDATE SET
				source_name = EXCLUDED.source_name,
				generated_at = EXCLUDED.generated_at,
				input_rows = EXCLUDED.input_rows,
				valid_rows = EXCLUDED.valid_rows,
				rejected_rows = EXCLUDED.rejected_rows,
				total_revenue = EXCLUDED.total_revenue,
				anomaly_count = EXCLUDED.anomaly_count,
				report = EXCLUDED.report
			RETURNING created_at
		`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir query de inserção: %w", err)
	}

	if err := r.conn.QueryRowContext(ctx, query, args...).Scan(&report.CreatedAt); err != nil {
		return fmt.Errorf("erro ao salvar relatório: %w", err)
	}

	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, id string) (*domain.StoredReport, error) {
	query, args, err := squirrel.
		Select(append(append([]string{}, reportSummaryColumns...), "report")...).
		From(reportsTable).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	stored := &domain.StoredReport{}
	var payload []byte

	err = r.conn.QueryRowContext(ctx, query, args...).Scan(
		&stored.ID,
		&stored.SourceName,
		&stored.GeneratedAt,
		&stored.InputRows,
		&stored.ValidRows,
		&stored.RejectedRows,
		&stored.TotalRevenue,
		&stored.AnomalyCount,
		&stored.CreatedAt,
		&payload,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao buscar relatório: %w", err)
	}

	report := &domain.AnalysisReport{}
	if err := json.Unmarshal(payload, report); err != nil {
		return nil, fmt.Errorf("erro ao desserializar relatório %s: %w", id, err)
	}
	stored.Report = report

	return stored, nil
}

// List retorna os resumos dos relatórios, do mais recente para o mais antigo, sem o conteúdo completo
func (r *reportRepository) List(ctx context.Context, limit int) ([]*domain.StoredReport, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	query, args, err := squirrel.
		Select(reportSummaryColumns...).
		From(reportsTable).
		OrderBy("created_at DESC", "id ASC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	reports := make([]*domain.StoredReport, 0)
	for rows.Next() {
		stored := &domain.StoredReport{}
		err := rows.Scan(
			&stored.ID,
			&stored.SourceName,
			&stored.GeneratedAt,
			&stored.InputRows,
			&stored.ValidRows,
			&stored.RejectedRows,
			&stored.TotalRevenue,
			&stored.AnomalyCount,
			&stored.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear relatório: %w", err)
		}
		reports = append(reports, stored)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return reports, nil
}

// DeleteOlderThan remove relatórios criados há mais de days dias e retorna quantos foram removidos
func (r *reportRepository) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	query, args, err := squirrel.
		Delete(reportsTable).
		Where(squirrel.Lt{"created_at": cutoff}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir query de remoção: %w", err)
	}

	result, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("erro ao remover relatórios antigos: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("erro ao obter linhas removidas: %w", err)
	}

	return affected, nil
}
