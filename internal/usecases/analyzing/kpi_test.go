package analyzing

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
)

func TestComputeKPIs(t *testing.T) {
	jan := date(2024, time.January, 10)

	tests := []struct {
		name     string
		records  []domain.SalesRecord
		topN     int
		wantErr  error
		validate func(t *testing.T, kpis *domain.KPIMetrics)
	}{
		{
			name:    "Conjunto vazio retorna dados insuficientes",
			records: nil,
			topN:    5,
			wantErr: ErrInsufficientData,
		},
		{
			name:    "Top N inválido retorna erro de configuração",
			records: []domain.SalesRecord{newRecord(0, jan, "A", 1, "10")},
			topN:    0,
			wantErr: ErrConfiguration,
		},
		{
			name: "Ticket médio com outlier",
			records: []domain.SalesRecord{
				newRecord(0, jan, "A", 1, "10"),
				newRecord(1, jan, "A", 1, "10"),
				newRecord(2, jan, "A", 1, "10000"),
			},
			topN: 5,
			validate: func(t *testing.T, kpis *domain.KPIMetrics) {
				assert.True(t, decimal.NewFromInt(10020).Equal(kpis.TotalRevenue))
				assert.True(t, decimal.NewFromInt(3340).Equal(kpis.AverageTicket))
				assert.True(t, decimal.NewFromInt(10).Equal(kpis.MedianTicket))
				assert.Equal(t, 3, kpis.TransactionCount)
				assert.Equal(t, 1, kpis.UniqueProducts)
				require.Len(t, kpis.TopProducts, 1)
				assert.Equal(t, 3, kpis.TopProducts[0].Transactions)
			},
		},
		{
			name: "Ranking por receita com desempate pelo identificador",
			records: []domain.SalesRecord{
				newRecord(0, jan, "C", 1, "50"),
				newRecord(1, jan, "B", 2, "25"),
				newRecord(2, jan, "A", 1, "50"),
				newRecord(3, jan, "D", 1, "100"),
				newRecord(4, jan, "E", 1, "1"),
			},
			topN: 3,
			validate: func(t *testing.T, kpis *domain.KPIMetrics) {
				require.Len(t, kpis.TopProducts, 3)
				assert.Equal(t, "D", kpis.TopProducts[0].ProductID)
				assert.Equal(t, "A", kpis.TopProducts[1].ProductID)
				assert.Equal(t, "B", kpis.TopProducts[2].ProductID)
				assert.Equal(t, 5, kpis.UniqueProducts)
			},
		},
		{
			name: "Clientes distintos ignoram identificadores em branco",
			records: func() []domain.SalesRecord {
				r1 := newRecord(0, jan, "A", 1, "10")
				r1.CustomerID = "c1"
				r2 := newRecord(1, jan, "A", 1, "10")
				r2.CustomerID = "c1"
				r3 := newRecord(2, jan, "B", 1, "10")
				r3.CustomerID = "c2"
				r4 := newRecord(3, jan, "B", 1, "10")
				return []domain.SalesRecord{r1, r2, r3, r4}
			}(),
			topN: 5,
			validate: func(t *testing.T, kpis *domain.KPIMetrics) {
				assert.Equal(t, 2, kpis.UniqueCustomers)
				assert.Equal(t, 2.0, kpis.TransactionsPerCustomer)
			},
		},
		{
			name: "Receita por categoria e período coberto",
			records: func() []domain.SalesRecord {
				r1 := newRecord(0, date(2024, time.March, 1), "A", 1, "30")
				r1.Category = "Solar"
				r2 := newRecord(1, date(2024, time.January, 5), "B", 1, "70")
				r3 := newRecord(2, date(2024, time.February, 9), "C", 1, "10")
				r3.Category = "Solar"
				return []domain.SalesRecord{r1, r2, r3}
			}(),
			topN: 5,
			validate: func(t *testing.T, kpis *domain.KPIMetrics) {
				require.Len(t, kpis.RevenueByCategory, 2)
				assert.Equal(t, domain.UncategorizedLabel, kpis.RevenueByCategory[0].Category)
				assert.Equal(t, "Solar", kpis.RevenueByCategory[1].Category)
				assert.True(t, decimal.NewFromInt(40).Equal(kpis.RevenueByCategory[1].Revenue))
				assert.Equal(t, date(2024, time.January, 5), kpis.FirstSale)
				assert.Equal(t, date(2024, time.March, 1), kpis.LastSale)
				assert.Equal(t, 0.0, kpis.TransactionsPerCustomer)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kpis, err := ComputeKPIs(tt.records, tt.topN)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.Nil(t, kpis)
				return
			}

			require.NoError(t, err)
			tt.validate(t, kpis)
		})
	}
}

func TestComputeKPIs_TopProductsInvariants(t *testing.T) {
	jan := date(2024, time.January, 10)
	records := []domain.SalesRecord{
		newRecord(0, jan, "A", 3, "19.90"),
		newRecord(1, jan, "B", 1, "250"),
		newRecord(2, jan, "C", 7, "3.33"),
		newRecord(3, jan, "A", 2, "19.90"),
		newRecord(4, jan, "D", 1, "0"),
	}

	for topN := 1; topN <= 6; topN++ {
		kpis, err := ComputeKPIs(records, topN)
		require.NoError(t, err)

		expectedLen := topN
		if expectedLen > kpis.UniqueProducts {
			expectedLen = kpis.UniqueProducts
		}
		assert.Len(t, kpis.TopProducts, expectedLen)

		sum := decimal.Zero
		for _, product := range kpis.TopProducts {
			sum = sum.Add(product.Revenue)
		}
		assert.True(t, sum.LessThanOrEqual(kpis.TotalRevenue))
	}
}

func TestComputeKPIs_Deterministic(t *testing.T) {
	jan := date(2024, time.January, 10)
	records := []domain.SalesRecord{
		newRecord(0, jan, "B", 1, "10"),
		newRecord(1, jan, "A", 1, "10"),
		newRecord(2, jan, "C", 2, "5"),
	}

	first, err := ComputeKPIs(records, 2)
	require.NoError(t, err)
	second, err := ComputeKPIs(records, 2)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"A", "B"}, []string{first.TopProducts[0].ProductID, first.TopProducts[1].ProductID})
}
