package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
)

// Abas da planilha exportada
const (
	SheetSummary    = "Resumo"
	SheetProducts   = "Produtos"
	SheetTrends     = "Tendencias"
	SheetAnomalies  = "Anomalias"
	SheetRejections = "Rejeicoes"
)

type XLSXExporter struct{}

func (XLSXExporter) Export(w io.Writer, report *domain.AnalysisReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return fmt.Errorf("erro ao renomear aba: %w", err)
	}
	for _, sheet := range []string{SheetProducts, SheetTrends, SheetAnomalies, SheetRejections} {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("erro ao criar aba %s: %w", sheet, err)
		}
	}

	writers := []func(*excelize.File, *domain.AnalysisReport) error{
		writeSummary,
		writeProducts,
		writeTrends,
		writeAnomalies,
		writeRejections,
	}
	for _, write := range writers {
		if err := write(f, report); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("erro ao gravar planilha: %w", err)
	}
	return nil
}

func (XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (XLSXExporter) Extension() string {
	return FormatXLSX
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("erro ao escrever aba %s: %w", sheet, err)
		}
	}
	return nil
}

func writeSummary(f *excelize.File, report *domain.AnalysisReport) error {
	kpis := report.KPIs
	rows := [][]any{
		{"Indicador", "Valor"},
		{"Receita total", kpis.TotalRevenue.StringFixed(2)},
		{"Transações", kpis.TransactionCount},
		{"Quantidade total", kpis.TotalQuantity},
		{"Ticket médio", kpis.AverageTicket.StringFixed(2)},
		{"Ticket mediano", kpis.MedianTicket.StringFixed(2)},
		{"Produtos distintos", kpis.UniqueProducts},
		{"Clientes distintos", kpis.UniqueCustomers},
		{"Linhas recebidas", report.Validation.InputRows},
		{"Linhas válidas", report.Validation.ValidCount()},
		{"Linhas rejeitadas", report.Validation.RejectedCount()},
		{"Anomalias", len(report.Anomalies)},
		{"Gerado em", report.GeneratedAt.Format("2006-01-02 15:04:05")},
	}

	if summary := report.TrendSummary; summary != nil {
		rows = append(rows,
			[]any{"Tendência", string(summary.Direction)},
			[]any{"Melhor período", summary.BestPeriod},
			[]any{"Pior período", summary.WorstPeriod},
		)
	}

	if projection := report.Projection; projection != nil {
		rows = append(rows, []any{"Projeção", projection.Method})
		for _, point := range projection.Points {
			rows = append(rows, []any{"Projeção " + point.Period, point.Revenue})
		}
	}

	return writeRows(f, SheetSummary, rows)
}

func writeProducts(f *excelize.File, report *domain.AnalysisReport) error {
	rows := [][]any{{"Produto", "Receita", "Quantidade", "Transações"}}
	for _, product := range report.KPIs.TopProducts {
		rows = append(rows, []any{
			product.ProductID,
			product.Revenue.StringFixed(2),
			product.Quantity,
			product.Transactions,
		})
	}
	return writeRows(f, SheetProducts, rows)
}

func writeTrends(f *excelize.File, report *domain.AnalysisReport) error {
	rows := [][]any{{"Período", "Receita", "Transações", "Variação (%)"}}
	for _, point := range report.Trends {
		rows = append(rows, []any{
			point.Period,
			point.Revenue.StringFixed(2),
			point.TransactionCount,
			optionalPercent(point.PercentChange),
		})
	}
	return writeRows(f, SheetTrends, rows)
}

func writeAnomalies(f *excelize.File, report *domain.AnalysisReport) error {
	rows := [][]any{{"Tipo", "Referência", "Data", "Observado", "Esperado", "Score", "Severidade", "Direção"}}
	for _, anomaly := range report.Anomalies {
		rows = append(rows, []any{
			string(anomaly.Kind),
			anomaly.Subject(),
			anomaly.Date.Format("2006-01-02"),
			anomaly.Observed,
			anomaly.Expected,
			anomaly.Score,
			string(anomaly.Severity),
			string(anomaly.Direction),
		})
	}
	return writeRows(f, SheetAnomalies, rows)
}

func writeRejections(f *excelize.File, report *domain.AnalysisReport) error {
	rows := [][]any{{"Linha", "Motivo", "Campo", "Detalhe"}}
	for _, rejection := range report.Validation.Rejected {
		rows = append(rows, []any{
			rejection.RowIndex,
			string(rejection.Reason),
			rejection.Field,
			rejection.Detail,
		})
	}
	return writeRows(f, SheetRejections, rows)
}
