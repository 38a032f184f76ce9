package analyzing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func newRecord(rowIndex int, when time.Time, productID string, quantity int64, unit string) domain.SalesRecord {
	unitAmount := decimal.RequireFromString(unit)
	return domain.SalesRecord{
		RowIndex:    rowIndex,
		Date:        when,
		ProductID:   productID,
		Quantity:    quantity,
		UnitAmount:  unitAmount,
		TotalAmount: unitAmount.Mul(decimal.NewFromInt(quantity)),
	}
}

func rawRow(when any, productID string, quantity, unit any) domain.RawRow {
	return domain.RawRow{
		"date":        when,
		"product_id":  productID,
		"quantity":    quantity,
		"unit_amount": unit,
	}
}

func float(v float64) *float64 {
	return &v
}
