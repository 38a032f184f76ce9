package domain

// RejectionReason identifica o motivo pelo qual uma linha foi rejeitada
type RejectionReason string

const (
	ReasonMissingField    RejectionReason = "MissingField"
	ReasonTypeMismatch    RejectionReason = "TypeMismatch"
	ReasonNegativeValue   RejectionReason = "NegativeValue"
	ReasonUnparseableDate RejectionReason = "UnparseableDate"
	ReasonTotalMismatch   RejectionReason = "TotalMismatch"
)

// Rejection registra uma linha de entrada descartada e o motivo
type Rejection struct {
	RowIndex int             `json:"row_index"`
	Reason   RejectionReason `json:"reason"`
	Field    string          `json:"field,omitempty"`
	Detail   string          `json:"detail,omitempty"`
}

// ValidationOutcome separa as linhas de entrada em registros válidos e rejeições.
// Valid + Rejected sempre somam InputRows.
type ValidationOutcome struct {
	InputRows int           `json:"input_rows"`
	Valid     []SalesRecord `json:"valid"`
	Rejected  []Rejection   `json:"rejected"`
}

// ValidCount retorna a quantidade de registros válidos
func (v ValidationOutcome) ValidCount() int {
	return len(v.Valid)
}

// RejectedCount retorna a quantidade de linhas rejeitadas
func (v ValidationOutcome) RejectedCount() int {
	return len(v.Rejected)
}

// RejectionsByReason agrupa a contagem de rejeições por motivo
func (v ValidationOutcome) RejectionsByReason() map[RejectionReason]int {
	counts := make(map[RejectionReason]int)
	for _, rejection := range v.Rejected {
		counts[rejection.Reason]++
	}
	return counts
}
