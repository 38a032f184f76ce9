package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// UncategorizedLabel agrupa as vendas sem categoria informada
const UncategorizedLabel = "Sem categoria"

type ProductRevenue struct {
	ProductID    string          `json:"product_id"`
	Revenue      decimal.Decimal `json:"revenue"`
	Quantity     int64           `json:"quantity"`
	Transactions int             `json:"transactions"`
}

type CategoryRevenue struct {
	Category     string          `json:"category"`
	Revenue      decimal.Decimal `json:"revenue"`
	Transactions int             `json:"transactions"`
}

// KPIMetrics é o retrato agregado das métricas financeiras e operacionais
type KPIMetrics struct {
	TotalRevenue            decimal.Decimal   `json:"total_revenue"`
	TransactionCount        int               `json:"transaction_count"`
	TotalQuantity           int64             `json:"total_quantity"`
	AverageTicket           decimal.Decimal   `json:"average_ticket"`
	MedianTicket            decimal.Decimal   `json:"median_ticket"`
	UniqueProducts          int               `json:"unique_products"`
	UniqueCustomers         int               `json:"unique_customers"`
	TransactionsPerCustomer float64           `json:"transactions_per_customer"`
	TopProducts             []ProductRevenue  `json:"top_products"`
	RevenueByCategory       []CategoryRevenue `json:"revenue_by_category,omitempty"`
	FirstSale               time.Time         `json:"first_sale"`
	LastSale                time.Time         `json:"last_sale"`
}
