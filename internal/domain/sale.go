package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawRow é uma linha de entrada sem tipagem, com os campos acessados pelo nome da coluna
type RawRow map[string]any

// Nomes canônicos dos campos de uma linha de venda
const (
	FieldDate        = "date"
	FieldProductID   = "product_id"
	FieldQuantity    = "quantity"
	FieldUnitAmount  = "unit_amount"
	FieldTotalAmount = "total_amount"
	FieldCustomerID  = "customer_id"
	FieldCategory    = "category"
)

// RequiredFields lista os campos obrigatórios na ordem em que são verificados
var RequiredFields = []string{FieldDate, FieldProductID, FieldQuantity, FieldUnitAmount}

// DefaultFieldAliases mapeia nomes alternativos de colunas para os nomes canônicos.
// Inclui os cabeçalhos das planilhas legadas de vendas.
var DefaultFieldAliases = map[string][]string{
	FieldDate:        {"fecha", "venta_timestamp", "data", "sale_date"},
	FieldProductID:   {"nombre", "producto", "produto", "product", "sku"},
	FieldQuantity:    {"cantidad", "quantidade", "qty"},
	FieldUnitAmount:  {"precio_unitario", "preco_unitario", "unit_price", "price"},
	FieldTotalAmount: {"venta_total", "valor_total", "total"},
	FieldCustomerID:  {"cliente_id", "customer"},
	FieldCategory:    {"categoria"},
}

// SalesRecord representa uma venda já validada e tipada
type SalesRecord struct {
	RowIndex    int             `json:"row_index"`
	Date        time.Time       `json:"date"`
	ProductID   string          `json:"product_id"`
	Category    string          `json:"category,omitempty"`
	Quantity    int64           `json:"quantity"`
	UnitAmount  decimal.Decimal `json:"unit_amount"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CustomerID  string          `json:"customer_id,omitempty"`
}
