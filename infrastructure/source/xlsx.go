package source

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
)

// DefaultSheetName é a aba usada pelas planilhas de vendas legadas
const DefaultSheetName = "DB_sales"

type XLSXReader struct {
	Sheet string
}

// NewXLSXReader cria um leitor para a aba informada.
// Sem aba definida, usa DB_sales quando existir ou a primeira aba da planilha.
func NewXLSXReader(sheet string) *XLSXReader {
	return &XLSXReader{Sheet: sheet}
}

func (x *XLSXReader) Read(ctx context.Context, r io.Reader) ([]domain.RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir planilha: %w", err)
	}
	defer f.Close()

	sheet, err := x.resolveSheet(f)
	if err != nil {
		return nil, err
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler aba %s: %w", sheet, err)
	}

	for i, record := range records {
		if !isEmptyRecord(record) {
			return buildRows(ctx, record, records[i+1:])
		}
	}

	return nil, ErrMissingHeader
}

func (x *XLSXReader) resolveSheet(f *excelize.File) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("planilha sem abas")
	}

	wanted := x.Sheet
	if wanted == "" {
		wanted = DefaultSheetName
	}
	for _, name := range sheets {
		if name == wanted {
			return name, nil
		}
	}

	if x.Sheet != "" {
		return "", fmt.Errorf("aba %q não encontrada", x.Sheet)
	}
	return sheets[0], nil
}
