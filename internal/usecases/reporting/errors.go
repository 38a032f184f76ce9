package reporting

import (
	"errors"
	"fmt"
)

var (
	ErrReportNotFound   = errors.New("relatório não encontrado")
	ErrReportIDRequired = errors.New("id do relatório é obrigatório")
	ErrGenerateID       = errors.New("erro ao gerar id do relatório")
)

// ReportError é um erro com contexto adicional sobre o relatório
type ReportError struct {
	Err      error  // Erro base
	ReportID string // ID do relatório envolvido (quando aplicável)
	Details  string // Detalhes adicionais
}

// Error implementa a interface error
func (e *ReportError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

// Unwrap retorna o erro subjacente
func (e *ReportError) Unwrap() error {
	return e.Err
}

func NewReportError(err error, reportID string, details string) *ReportError {
	return &ReportError{
		Err:      err,
		ReportID: reportID,
		Details:  details,
	}
}
