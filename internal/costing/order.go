package costing

import "github.com/shopspring/decimal"

// LineAmounts is a priced order line.
type LineAmounts struct {
	Value decimal.Decimal
	Cost  decimal.Decimal
}

// PriceLine snapshots a recipe's current prices for qty units.
func PriceLine(sellingPrice, costPrice decimal.Decimal, qty int) LineAmounts {
	q := decimal.NewFromInt(int64(qty))
	return LineAmounts{Value: sellingPrice.Mul(q), Cost: costPrice.Mul(q)}
}

// OrderTotals are the derived order header values.
type OrderTotals struct {
	TotalValue       decimal.Decimal
	TotalCost        decimal.Decimal
	Profit           decimal.Decimal
	ProfitPercentage decimal.Decimal
}

// SummarizeOrder totals priced lines. Profit percentage is relative to the
// order value and is zero for a zero-value order.
func SummarizeOrder(lines []LineAmounts) OrderTotals {
	var t OrderTotals
	for _, l := range lines {
		t.TotalValue = t.TotalValue.Add(l.Value)
		t.TotalCost = t.TotalCost.Add(l.Cost)
	}
	t.Profit = t.TotalValue.Sub(t.TotalCost)
	if t.TotalValue.IsPositive() {
		t.ProfitPercentage = t.Profit.Div(t.TotalValue).Mul(hundred).Round(2)
	}
	return t
}
