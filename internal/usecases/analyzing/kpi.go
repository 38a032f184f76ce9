package analyzing

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
)

// ComputeKPIs calcula as métricas agregadas dos registros válidos.
// Um conjunto vazio retorna ErrInsufficientData em vez de métricas zeradas.
func ComputeKPIs(records []domain.SalesRecord, topN int) (*domain.KPIMetrics, error) {
	if topN < 1 {
		return nil, configurationError("top_n", "deve ser maior ou igual a 1, recebido %d", topN)
	}

	if len(records) == 0 {
		return nil, NewAnalysisError(ErrInsufficientData, ComponentKPI, "nenhum registro válido para calcular os indicadores")
	}

	metrics := &domain.KPIMetrics{
		TotalRevenue:     decimal.Zero,
		TransactionCount: len(records),
		FirstSale:        records[0].Date,
		LastSale:         records[0].Date,
	}

	products := make(map[string]*domain.ProductRevenue)
	categories := make(map[string]*domain.CategoryRevenue)
	customers := make(map[string]struct{})
	tickets := make([]decimal.Decimal, 0, len(records))

	for _, record := range records {
		metrics.TotalRevenue = metrics.TotalRevenue.Add(record.TotalAmount)
		metrics.TotalQuantity += record.Quantity
		tickets = append(tickets, record.TotalAmount)

		if record.Date.Before(metrics.FirstSale) {
			metrics.FirstSale = record.Date
		}
		if record.Date.After(metrics.LastSale) {
			metrics.LastSale = record.Date
		}

		product, ok := products[record.ProductID]
		if !ok {
			product = &domain.ProductRevenue{ProductID: record.ProductID, Revenue: decimal.Zero}
			products[record.ProductID] = product
		}
		product.Revenue = product.Revenue.Add(record.TotalAmount)
		product.Quantity += record.Quantity
		product.Transactions++

		categoryName := strings.TrimSpace(record.Category)
		if categoryName == "" {
			categoryName = domain.UncategorizedLabel
		}
		category, ok := categories[categoryName]
		if !ok {
			category = &domain.CategoryRevenue{Category: categoryName, Revenue: decimal.Zero}
			categories[categoryName] = category
		}
		category.Revenue = category.Revenue.Add(record.TotalAmount)
		category.Transactions++

		if customerID := strings.TrimSpace(record.CustomerID); customerID != "" {
			customers[customerID] = struct{}{}
		}
	}

	count := decimal.NewFromInt(int64(metrics.TransactionCount))
	metrics.AverageTicket = metrics.TotalRevenue.Div(count)
	metrics.MedianTicket = median(tickets)
	metrics.UniqueProducts = len(products)
	metrics.UniqueCustomers = len(customers)
	if metrics.UniqueCustomers > 0 {
		metrics.TransactionsPerCustomer = float64(metrics.TransactionCount) / float64(metrics.UniqueCustomers)
	}

	metrics.TopProducts = topProducts(products, topN)
	metrics.RevenueByCategory = sortedCategories(categories)

	return metrics, nil
}

// topProducts ordena por receita decrescente e, em caso de empate, pelo identificador
func topProducts(products map[string]*domain.ProductRevenue, topN int) []domain.ProductRevenue {
	ranking := make([]domain.ProductRevenue, 0, len(products))
	for _, product := range products {
		ranking = append(ranking, *product)
	}

	sort.Slice(ranking, func(i, j int) bool {
		if cmp := ranking[i].Revenue.Cmp(ranking[j].Revenue); cmp != 0 {
			return cmp > 0
		}
		return ranking[i].ProductID < ranking[j].ProductID
	})

	if len(ranking) > topN {
		ranking = ranking[:topN]
	}
	return ranking
}

func sortedCategories(categories map[string]*domain.CategoryRevenue) []domain.CategoryRevenue {
	result := make([]domain.CategoryRevenue, 0, len(categories))
	for _, category := range categories {
		result = append(result, *category)
	}

	sort.Slice(result, func(i, j int) bool {
		if cmp := result[i].Revenue.Cmp(result[j].Revenue); cmp != 0 {
			return cmp > 0
		}
		return result[i].Category < result[j].Category
	})
	return result
}

func median(values []decimal.Decimal) decimal.Decimal {
	sorted := make([]decimal.Decimal, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	middle := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[middle]
	}
	return sorted[middle-1].Add(sorted[middle]).Div(decimal.NewFromInt(2))
}
