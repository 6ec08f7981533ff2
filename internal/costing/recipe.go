package costing

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RecipeInputs is everything a recipe price depends on.
type RecipeInputs struct {
	IngredientCosts []decimal.Decimal
	LabourTime      time.Duration
	LabourRate      decimal.Decimal
	LabourCost      decimal.Decimal // current value, kept when labour is not fully set
	PackagingCost   decimal.Decimal
	OverheadCost    decimal.Decimal
	ProfitMargin    decimal.Decimal // percent
}

// RecipeTotals are the derived recipe header values.
type RecipeTotals struct {
	InventoryItemsCost decimal.Decimal
	LabourCost         decimal.Decimal
	CostPrice          decimal.Decimal
	SellingPrice       decimal.Decimal
}

// IngredientCost is quantity x current unit cost.
func IngredientCost(quantity, unitCost decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitCost)
}

// LabourCost prices labour_time in hours at rate, rounded to cents. ok is
// false when either side is unset, in which case the stored cost stands.
func LabourCost(d time.Duration, rate decimal.Decimal) (cost decimal.Decimal, ok bool) {
	if d <= 0 || rate.IsZero() {
		return decimal.Zero, false
	}
	hours := decimal.NewFromInt(int64(d)).Div(decimal.NewFromInt(int64(time.Hour)))
	return hours.Mul(rate).Round(2), true
}

// SellingPrice applies a percentage margin on top of cost.
func SellingPrice(costPrice, marginPct decimal.Decimal) decimal.Decimal {
	return costPrice.Mul(decimal.NewFromInt(1).Add(marginPct.Div(hundred)))
}

// PriceRecipe computes the derived recipe header from its inputs.
func PriceRecipe(in RecipeInputs) RecipeTotals {
	items := decimal.Zero
	for _, c := range in.IngredientCosts {
		items = items.Add(c)
	}
	labour := in.LabourCost
	if c, ok := LabourCost(in.LabourTime, in.LabourRate); ok {
		labour = c
	}
	cost := items.Add(labour).Add(in.PackagingCost).Add(in.OverheadCost)
	return RecipeTotals{
		InventoryItemsCost: items,
		LabourCost:         labour,
		CostPrice:          cost,
		SellingPrice:       SellingPrice(cost, in.ProfitMargin),
	}
}
