// Package costing holds the pure cost rules of the cascade: the unit-cost
// policy applied to purchase history and the recipe / order price math.
// Nothing here touches the database.
package costing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// Window is how many recent purchases the unit-cost policy looks at.
	Window = 2
	// UnitCostPlaces is the scale of a stored cost_per_unit.
	UnitCostPlaces = 4
)

// Addition is the part of a purchase ledger entry the policy reads.
type Addition struct {
	Seq          uint64
	CostPerUnit  decimal.Decimal
	IncidentDate time.Time
	CreatedAt    time.Time
}

// EntryUnitCost derives the per-unit cost stored on a purchase entry.
// A non-positive quantity yields zero; callers validate before getting here.
func EntryUnitCost(costPrice, quantity decimal.Decimal) decimal.Decimal {
	if !quantity.IsPositive() {
		return decimal.Zero
	}
	return costPrice.DivRound(quantity, UnitCostPlaces)
}

// SortRecent orders additions newest first: incident date, then creation
// time, then ledger sequence.
func SortRecent(adds []Addition) {
	sort.SliceStable(adds, func(i, j int) bool {
		a, b := adds[i], adds[j]
		if !a.IncidentDate.Equal(b.IncidentDate) {
			return a.IncidentDate.After(b.IncidentDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.Seq > b.Seq
	})
}

// UnitCost returns the maximum cost_per_unit among the two most recent
// additions. One addition yields its own cost; none yields zero.
// The input slice is reordered in place.
func UnitCost(adds []Addition) decimal.Decimal {
	SortRecent(adds)
	if len(adds) > Window {
		adds = adds[:Window]
	}
	cost := decimal.Zero
	for i, a := range adds {
		if i == 0 || a.CostPerUnit.GreaterThan(cost) {
			cost = a.CostPerUnit
		}
	}
	return cost
}

// TotalValue is quantity x unit cost, unrounded.
func TotalValue(quantity, unitCost decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitCost)
}
