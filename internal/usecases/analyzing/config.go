package analyzing

import (
	"math"
	"time"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
)

// Valores padrão da análise
const (
	DefaultThreshold         = 2.0
	DefaultTopN              = 5
	DefaultBucket            = domain.GranularityMonth
	DefaultTolerance         = 0.01
	DefaultProjectionPeriods = 3

	MaxProjectionPeriods = 24
)

// DefaultDateLayouts são os formatos de data aceitos quando a configuração não define outros
var DefaultDateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	time.DateTime,
	"02/01/2006",
	"2006/01/02",
}

// DefaultConfig retorna a configuração padrão da análise
func DefaultConfig() domain.AnalysisConfig {
	layouts := make([]string, len(DefaultDateLayouts))
	copy(layouts, DefaultDateLayouts)

	return domain.AnalysisConfig{
		Threshold:         DefaultThreshold,
		TopN:              DefaultTopN,
		Bucket:            DefaultBucket,
		Tolerance:         DefaultTolerance,
		ProjectionPeriods: DefaultProjectionPeriods,
		DateLayouts:       layouts,
	}
}

// ValidateConfig verifica se todos os parâmetros estão dentro dos intervalos aceitos
func ValidateConfig(cfg domain.AnalysisConfig) error {
	if err := validateThreshold(cfg.Threshold); err != nil {
		return err
	}

	if cfg.TopN < 1 {
		return configurationError("top_n", "deve ser maior ou igual a 1, recebido %d", cfg.TopN)
	}

	if !cfg.Bucket.IsValid() {
		return configurationError("bucket", "granularidade desconhecida %q", cfg.Bucket)
	}

	if math.IsNaN(cfg.Tolerance) || math.IsInf(cfg.Tolerance, 0) || cfg.Tolerance < 0 {
		return configurationError("tolerance", "deve ser um número finito não negativo, recebido %v", cfg.Tolerance)
	}

	if cfg.ProjectionPeriods < 0 || cfg.ProjectionPeriods > MaxProjectionPeriods {
		return configurationError("projection_periods", "deve estar entre 0 e %d, recebido %d", MaxProjectionPeriods, cfg.ProjectionPeriods)
	}

	return nil
}

func validateThreshold(threshold float64) error {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) || threshold <= 0 {
		return configurationError("threshold", "deve ser um número finito maior que zero, recebido %v", threshold)
	}
	return nil
}

// withDefaults preenche campos não informados com os valores padrão
func withDefaults(cfg domain.AnalysisConfig) domain.AnalysisConfig {
	if len(cfg.DateLayouts) == 0 {
		cfg.DateLayouts = DefaultConfig().DateLayouts
	}
	return cfg
}
