package analyzing

import (
	"errors"
	"fmt"
)

// Erros do motor de análise
var (
	// Não há registros válidos suficientes para a etapa
	ErrInsufficientData = errors.New("insufficient data")
	// Parâmetro de configuração fora do intervalo permitido
	ErrConfiguration = errors.New("invalid analysis configuration")
	// Alguma parte obrigatória do relatório não foi produzida
	ErrIncompleteAnalysis = errors.New("incomplete analysis")
)

// Componentes do motor, usados para identificar a origem de um AnalysisError
const (
	ComponentNormalizer = "normalizer"
	ComponentKPI        = "kpi"
	ComponentTrend      = "trend"
	ComponentAnomaly    = "anomaly"
	ComponentAssembler  = "assembler"
	ComponentProjection = "projection"
	ComponentConfig     = "config"
)

// AnalysisError é um erro com contexto adicional sobre a etapa da análise
type AnalysisError struct {
	Err       error  // Erro base
	Component string // Etapa que falhou
	Details   string // Detalhes adicionais
}

// Error implementa a interface error
func (e *AnalysisError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s: %s", e.Component, e.Err.Error(), e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Component, e.Err.Error())
}

// Unwrap retorna o erro subjacente
func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// NewAnalysisError cria um novo AnalysisError
func NewAnalysisError(err error, component string, details string) *AnalysisError {
	return &AnalysisError{
		Err:       err,
		Component: component,
		Details:   details,
	}
}

func configurationError(field string, format string, args ...any) *AnalysisError {
	return NewAnalysisError(ErrConfiguration, ComponentConfig, field+": "+fmt.Sprintf(format, args...))
}
