package analyzing

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
)

// Vírgula só é aceita como separador de milhar, "12,50" não vira 1250
var thousandsPattern = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+(\.\d+)?$`)

// rowAccessor resolve os campos de uma RawRow ignorando caixa, espaços e aliases
type rowAccessor struct {
	values map[string]any
}

func newRowAccessor(row domain.RawRow) rowAccessor {
	keys := make([]string, 0, len(row))
	for key := range row {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	// Chaves que colidem após a normalização: vale a primeira não vazia em ordem alfabética
	values := make(map[string]any, len(row))
	for _, key := range keys {
		normalized := normalizeKey(key)
		if current, exists := values[normalized]; exists && !isBlank(current) {
			continue
		}
		values[normalized] = row[key]
	}
	return rowAccessor{values: values}
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// lookup retorna o primeiro valor não vazio do campo canônico ou de um de seus aliases
func (a rowAccessor) lookup(field string) (any, bool) {
	if value, ok := a.values[field]; ok && !isBlank(value) {
		return value, true
	}
	for _, alias := range domain.DefaultFieldAliases[field] {
		if value, ok := a.values[alias]; ok && !isBlank(value) {
			return value, true
		}
	}
	return nil, false
}

func (a rowAccessor) text(field string) string {
	value, ok := a.lookup(field)
	if !ok {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(value))
}

func isBlank(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// Normalize converte as linhas brutas em registros tipados, coletando as rejeições.
// A primeira verificação que falha define o motivo da rejeição.
func Normalize(rows []domain.RawRow, cfg domain.AnalysisConfig) domain.ValidationOutcome {
	cfg = withDefaults(cfg)

	outcome := domain.ValidationOutcome{
		InputRows: len(rows),
		Valid:     make([]domain.SalesRecord, 0, len(rows)),
		Rejected:  make([]domain.Rejection, 0),
	}

	for index, row := range rows {
		record, rejection := normalizeRow(index, row, cfg)
		if rejection != nil {
			outcome.Rejected = append(outcome.Rejected, *rejection)
			continue
		}
		outcome.Valid = append(outcome.Valid, record)
	}

	return outcome
}

func normalizeRow(index int, row domain.RawRow, cfg domain.AnalysisConfig) (domain.SalesRecord, *domain.Rejection) {
	reject := func(reason domain.RejectionReason, field, detail string) (domain.SalesRecord, *domain.Rejection) {
		return domain.SalesRecord{}, &domain.Rejection{
			RowIndex: index,
			Reason:   reason,
			Field:    field,
			Detail:   detail,
		}
	}

	fields := newRowAccessor(row)

	for _, field := range domain.RequiredFields {
		if _, ok := fields.lookup(field); !ok {
			return reject(domain.ReasonMissingField, field, "campo obrigatório ausente")
		}
	}

	rawDate, _ := fields.lookup(domain.FieldDate)
	date, err := parseDate(rawDate, cfg.DateLayouts)
	if err != nil {
		return reject(domain.ReasonUnparseableDate, domain.FieldDate, err.Error())
	}

	rawQuantity, _ := fields.lookup(domain.FieldQuantity)
	quantity, err := parseDecimal(rawQuantity)
	if err != nil {
		return reject(domain.ReasonTypeMismatch, domain.FieldQuantity, err.Error())
	}
	if !quantity.IsInteger() {
		return reject(domain.ReasonTypeMismatch, domain.FieldQuantity, fmt.Sprintf("quantidade não inteira: %s", quantity))
	}
	if !quantity.Equal(decimal.NewFromInt(quantity.IntPart())) {
		return reject(domain.ReasonTypeMismatch, domain.FieldQuantity, fmt.Sprintf("quantidade fora do intervalo suportado: %s", quantity))
	}
	if quantity.IsNegative() {
		return reject(domain.ReasonNegativeValue, domain.FieldQuantity, fmt.Sprintf("quantidade negativa: %s", quantity))
	}

	rawUnit, _ := fields.lookup(domain.FieldUnitAmount)
	unitAmount, err := parseDecimal(rawUnit)
	if err != nil {
		return reject(domain.ReasonTypeMismatch, domain.FieldUnitAmount, err.Error())
	}
	if unitAmount.IsNegative() {
		return reject(domain.ReasonNegativeValue, domain.FieldUnitAmount, fmt.Sprintf("valor unitário negativo: %s", unitAmount))
	}

	computed := quantity.Mul(unitAmount)

	if rawTotal, ok := fields.lookup(domain.FieldTotalAmount); ok {
		supplied, err := parseDecimal(rawTotal)
		if err != nil {
			return reject(domain.ReasonTypeMismatch, domain.FieldTotalAmount, err.Error())
		}
		if supplied.IsNegative() {
			return reject(domain.ReasonNegativeValue, domain.FieldTotalAmount, fmt.Sprintf("valor total negativo: %s", supplied))
		}
		if !withinTolerance(supplied, computed, cfg.Tolerance) {
			return reject(domain.ReasonTotalMismatch, domain.FieldTotalAmount,
				fmt.Sprintf("informado %s, calculado %s", supplied, computed))
		}
	}

	return domain.SalesRecord{
		RowIndex:    index,
		Date:        date,
		ProductID:   fields.text(domain.FieldProductID),
		Category:    fields.text(domain.FieldCategory),
		Quantity:    quantity.IntPart(),
		UnitAmount:  unitAmount,
		TotalAmount: computed,
		CustomerID:  fields.text(domain.FieldCustomerID),
	}, nil
}

// withinTolerance compara o total informado com o calculado usando tolerância relativa
func withinTolerance(supplied, computed decimal.Decimal, tolerance float64) bool {
	diff := supplied.Sub(computed).Abs()
	if computed.IsZero() {
		return diff.IsZero()
	}
	return diff.Div(computed).LessThanOrEqual(decimal.NewFromFloat(tolerance))
}

func parseDecimal(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int32:
		return decimal.NewFromInt32(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float32:
		return floatToDecimal(float64(v))
	case float64:
		return floatToDecimal(v)
	case string:
		cleaned := strings.TrimSpace(v)
		cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, "$"))
		if strings.Contains(cleaned, ",") {
			if !thousandsPattern.MatchString(cleaned) {
				return decimal.Zero, fmt.Errorf("separador decimal ambíguo em %q", v)
			}
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
		parsed, err := decimal.NewFromString(cleaned)
		if err != nil {
			return decimal.Zero, fmt.Errorf("valor não numérico %q", v)
		}
		return parsed, nil
	default:
		return decimal.Zero, fmt.Errorf("tipo não numérico %T", value)
	}
}

func floatToDecimal(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("valor não finito %v", f)
	}
	return decimal.NewFromFloat(f), nil
}

func parseDate(value any, layouts []string) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return toCalendarDate(v), nil
	case *time.Time:
		if v == nil {
			return time.Time{}, fmt.Errorf("data ausente")
		}
		return toCalendarDate(*v), nil
	case string:
		text := strings.TrimSpace(v)
		for _, layout := range layouts {
			if parsed, err := time.Parse(layout, text); err == nil {
				return toCalendarDate(parsed), nil
			}
		}
		return time.Time{}, fmt.Errorf("data em formato desconhecido %q", v)
	default:
		return time.Time{}, fmt.Errorf("tipo de data não suportado %T (%s)", value, strconv.Quote(fmt.Sprint(value)))
	}
}

// toCalendarDate mantém apenas a data de calendário, em UTC
func toCalendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
