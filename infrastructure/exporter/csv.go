package exporter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
)

// CSVExporter exporta a série de tendências, um período por linha
type CSVExporter struct{}

var trendHeader = []string{"period", "start", "revenue", "transaction_count", "percent_change"}

func (CSVExporter) Export(w io.Writer, report *domain.AnalysisReport) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(trendHeader); err != nil {
		return err
	}

	for _, point := range report.Trends {
		err := writer.Write([]string{
			point.Period,
			point.Start.Format("2006-01-02"),
			point.Revenue.StringFixed(2),
			strconv.Itoa(point.TransactionCount),
			optionalPercent(point.PercentChange),
		})
		if err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func (CSVExporter) ContentType() string {
	return "text/csv"
}

func (CSVExporter) Extension() string {
	return FormatCSV
}
