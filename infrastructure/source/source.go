// Package source lê planilhas de vendas e as converte em linhas brutas para análise
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
)

// Formatos de arquivo suportados
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var (
	ErrUnsupportedFormat = errors.New("formato de arquivo não suportado")
	ErrMissingHeader     = errors.New("cabeçalho não encontrado")
)

// Reader converte o conteúdo de um arquivo em linhas brutas indexadas pelo cabeçalho
type Reader interface {
	Read(ctx context.Context, r io.Reader) ([]domain.RawRow, error)
}

// ForFormat retorna o Reader do formato informado
func ForFormat(format string) (Reader, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), ".")) {
	case FormatCSV, "text/csv":
		return NewCSVReader(), nil
	case FormatXLSX, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return NewXLSXReader(""), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ForFile escolhe o Reader pela extensão do arquivo
func ForFile(name string) (Reader, error) {
	return ForFormat(filepath.Ext(name))
}

// OpenFile lê as linhas de um arquivo CSV ou XLSX do disco
func OpenFile(ctx context.Context, path string) ([]domain.RawRow, error) {
	reader, err := ForFile(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir arquivo %s: %w", path, err)
	}
	defer file.Close()

	return reader.Read(ctx, file)
}

// buildRows associa cada linha de dados aos nomes do cabeçalho, ignorando linhas vazias
func buildRows(ctx context.Context, header []string, records [][]string) ([]domain.RawRow, error) {
	names := make([]string, len(header))
	for i, name := range header {
		names[i] = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	}

	rows := make([]domain.RawRow, 0, len(records))
	for i, record := range records {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if isEmptyRecord(record) {
			continue
		}

		row := make(domain.RawRow, len(names))
		for col, name := range names {
			if name == "" {
				continue
			}
			if col < len(record) {
				row[name] = record[col]
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func isEmptyRecord(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
