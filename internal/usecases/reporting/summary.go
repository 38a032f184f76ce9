package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
)

const maxSummaryAnomalies = 5

var directionLabels = map[domain.TrendDirection]string{
	domain.TrendGrowing:   "crescimento",
	domain.TrendDeclining: "queda",
	domain.TrendStable:    "estável",
}

// SummarySubject monta o assunto do e-mail de um relatório
func SummarySubject(stored *domain.StoredReport) string {
	return fmt.Sprintf("Relatório de vendas %s (%s)", stored.SourceName, stored.GeneratedAt.Format(time.DateOnly))
}

// SummaryText gera o resumo em texto puro enviado por e-mail
func SummaryText(stored *domain.StoredReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Relatório %s\n", stored.ID)
	fmt.Fprintf(&b, "Origem: %s\n", stored.SourceName)
	fmt.Fprintf(&b, "Gerado em: %s\n\n", stored.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Linhas: %d recebidas, %d válidas, %d rejeitadas\n", stored.InputRows, stored.ValidRows, stored.RejectedRows)

	report := stored.Report
	if report == nil {
		return b.String()
	}

	kpis := report.KPIs
	fmt.Fprintf(&b, "Receita total: %s\n", kpis.TotalRevenue.StringFixed(2))
	fmt.Fprintf(&b, "Transações: %d\n", kpis.TransactionCount)
	fmt.Fprintf(&b, "Ticket médio: %s\n", kpis.AverageTicket.StringFixed(2))
	fmt.Fprintf(&b, "Ticket mediano: %s\n", kpis.MedianTicket.StringFixed(2))
	fmt.Fprintf(&b, "Clientes únicos: %d\n", kpis.UniqueCustomers)

	if len(kpis.TopProducts) > 0 {
		b.WriteString("\nProdutos com maior receita:\n")
		for i, product := range kpis.TopProducts {
			fmt.Fprintf(&b, "%d. %s: %s (%d un.)\n", i+1, product.ProductID, product.Revenue.StringFixed(2), product.Quantity)
		}
	}

	if summary := report.TrendSummary; summary != nil {
		fmt.Fprintf(&b, "\nTendência: %s", directionLabels[summary.Direction])
		if summary.GrowthPercent != nil {
			fmt.Fprintf(&b, " (%+.2f%%)", *summary.GrowthPercent)
		}
		fmt.Fprintf(&b, "\nMelhor período: %s | Pior período: %s\n", summary.BestPeriod, summary.WorstPeriod)
	}

	severe := 0
	for _, anomaly := range report.Anomalies {
		if anomaly.Severity == domain.SeveritySevere {
			severe++
		}
	}
	fmt.Fprintf(&b, "\nAnomalias: %d (%d severas)\n", len(report.Anomalies), severe)
	for i, anomaly := range report.Anomalies {
		if i == maxSummaryAnomalies {
			fmt.Fprintf(&b, "... e mais %d\n", len(report.Anomalies)-maxSummaryAnomalies)
			break
		}
		fmt.Fprintf(&b, "- [%s] %s %s: observado %.2f, esperado %.2f, score %.2f\n",
			anomaly.Severity, anomaly.Kind, anomaly.Subject(), anomaly.Observed, anomaly.Expected, anomaly.Score)
	}

	if projection := report.Projection; projection != nil {
		if projection.Method == domain.ProjectionMethodInsufficient {
			b.WriteString("\nProjeção: dados insuficientes\n")
		} else {
			fmt.Fprintf(&b, "\nProjeção (confiança %.2f%%):\n", projection.Confidence)
			for _, point := range projection.Points {
				fmt.Fprintf(&b, "- %s: %.2f\n", point.Period, point.Revenue)
			}
		}
	}

	return b.String()
}
