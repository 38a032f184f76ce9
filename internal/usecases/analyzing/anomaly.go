package analyzing

import (
	"math"
	"sort"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
)

const (
	// MinAnomalyObservations é o mínimo de observações para que uma verificação seja executada
	MinAnomalyObservations = 3
	// SevereMultiplier define o limite de severidade alta em relação ao threshold
	SevereMultiplier = 1.5

	constantSeriesEpsilon = 1e-12
)

type observation struct {
	value float64
	base  domain.Anomaly
}

// DetectAnomalies executa duas verificações independentes: valor total das transações
// e receita de cada período da série de tendências.
//
// O score de uma observação compara o valor com a média e o desvio padrão populacional
// das demais observações da mesma verificação.
func DetectAnomalies(records []domain.SalesRecord, trends []domain.TrendPoint, threshold float64) ([]domain.Anomaly, error) {
	if err := validateThreshold(threshold); err != nil {
		return nil, err
	}

	transactions := make([]observation, 0, len(records))
	for _, record := range records {
		rowIndex := record.RowIndex
		value, _ := record.TotalAmount.Float64()
		transactions = append(transactions, observation{
			value: value,
			base: domain.Anomaly{
				Kind:      domain.AnomalyKindTransaction,
				RowIndex:  &rowIndex,
				ProductID: record.ProductID,
				Date:      record.Date,
			},
		})
	}

	periods := make([]observation, 0, len(trends))
	for _, point := range trends {
		value, _ := point.Revenue.Float64()
		periods = append(periods, observation{
			value: value,
			base: domain.Anomaly{
				Kind:   domain.AnomalyKindPeriod,
				Period: point.Period,
				Date:   point.Start,
			},
		})
	}

	anomalies := make([]domain.Anomaly, 0)
	anomalies = append(anomalies, scoreObservations(transactions, threshold)...)
	anomalies = append(anomalies, scoreObservations(periods, threshold)...)

	sortAnomalies(anomalies)
	return anomalies, nil
}

func scoreObservations(observations []observation, threshold float64) []domain.Anomaly {
	n := len(observations)
	if n < MinAnomalyObservations {
		return nil
	}

	var sum float64
	for _, obs := range observations {
		sum += obs.value
	}
	mean := sum / float64(n)

	var m2 float64
	for _, obs := range observations {
		diff := obs.value - mean
		m2 += diff * diff
	}

	// Série constante não tem outliers
	if m2 == 0 {
		return nil
	}

	flagged := make([]domain.Anomaly, 0)
	others := float64(n - 1)

	for _, obs := range observations {
		diff := obs.value - mean
		othersMean := (sum - obs.value) / others
		othersM2 := m2 - diff*diff*float64(n)/others

		var score float64
		if othersM2 <= constantSeriesEpsilon*m2 {
			// As demais observações são constantes: o desvio é medido pelo desvio padrão
			// de todas as observações e nunca fica abaixo do limite de severidade alta
			score = (obs.value - othersMean) / math.Sqrt(m2/float64(n))
			if floor := SevereMultiplier * threshold; math.Abs(score) < floor {
				score = math.Copysign(floor, score)
			}
		} else {
			score = (obs.value - othersMean) / math.Sqrt(othersM2/others)
		}

		magnitude := math.Abs(score)
		if magnitude < threshold {
			continue
		}

		anomaly := obs.base
		anomaly.Observed = obs.value
		anomaly.Expected = othersMean
		anomaly.Score = score
		anomaly.Severity = severityFor(magnitude, threshold)
		anomaly.Direction = domain.AnomalyHigh
		if score < 0 {
			anomaly.Direction = domain.AnomalyLow
		}
		flagged = append(flagged, anomaly)
	}

	return flagged
}

func severityFor(magnitude, threshold float64) domain.Severity {
	if magnitude >= SevereMultiplier*threshold {
		return domain.SeveritySevere
	}
	return domain.SeverityModerate
}

// sortAnomalies ordena por magnitude do score e desempata por data, tipo e linha
func sortAnomalies(anomalies []domain.Anomaly) {
	sort.SliceStable(anomalies, func(i, j int) bool {
		a, b := anomalies[i], anomalies[j]

		if ma, mb := math.Abs(a.Score), math.Abs(b.Score); ma != mb {
			return ma > mb
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Kind != b.Kind {
			return a.Kind == domain.AnomalyKindTransaction
		}
		return rowIndexOf(a) < rowIndexOf(b)
	})
}

func rowIndexOf(a domain.Anomaly) int {
	if a.RowIndex == nil {
		return -1
	}
	return *a.RowIndex
}
