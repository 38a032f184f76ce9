// Package exporter serializa relatórios de análise em JSON, CSV e XLSX
package exporter

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var ErrUnsupportedFormat = errors.New("formato de exportação não suportado")

type Exporter interface {
	Export(w io.Writer, report *domain.AnalysisReport) error
	ContentType() string
	Extension() string
}

// ForFormat retorna o Exporter do formato informado
func ForFormat(format string) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON, "":
		return JSONExporter{Indent: true}, nil
	case FormatCSV:
		return CSVExporter{}, nil
	case FormatXLSX:
		return XLSXExporter{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// FileName monta o nome do arquivo exportado a partir do id do relatório
func FileName(reportID string, exporter Exporter) string {
	return fmt.Sprintf("relatorio-%s.%s", reportID, exporter.Extension())
}

func optionalPercent(value *float64) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *value)
}
