package exporter

import (
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type JSONExporter struct {
	Indent bool
}

func (e JSONExporter) Export(w io.Writer, report *domain.AnalysisReport) error {
	encoder := json.NewEncoder(w)
	if e.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(report)
}

func (JSONExporter) ContentType() string {
	return "application/json"
}

func (JSONExporter) Extension() string {
	return FormatJSON
}
