package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
)

type CSVReader struct {
	Comma rune
}

func NewCSVReader() *CSVReader {
	return &CSVReader{Comma: ','}
}

func (c *CSVReader) Read(ctx context.Context, r io.Reader) ([]domain.RawRow, error) {
	reader := csv.NewReader(r)
	reader.Comma = c.Comma
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("erro ao ler CSV: %w", err)
	}

	for i, record := range records {
		if !isEmptyRecord(record) {
			return buildRows(ctx, record, records[i+1:])
		}
	}

	return nil, ErrMissingHeader
}
