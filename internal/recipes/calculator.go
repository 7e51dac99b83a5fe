// =============================================================================
// BRO.AI - Recipe Cost Calculator
// =============================================================================
//
// Pure cost functions over a recipe cost sheet. None of them fail: every
// division is guarded and returns zero when its denominator is out of range.
//
//   totalCost        = sum(qty * costUnit)
//   costPerPortion   = totalCost / yieldQty            (yieldQty > 0)
//   cmvPercent       = 100 * costPerPortion / salePrice (salePrice > 0)
//   margin           = salePrice - costPerPortion, and its share of salePrice
//   minPriceForCMV   = costPerPortion / (target / 100)  (0 < target < 100)
//
// =============================================================================

package recipes

import (
	"github.com/ginjaninja78/broai/internal/types"
)

// DefaultTargetCMV is the CMV percentage a recipe is measured against when
// no target is configured.
const DefaultTargetCMV = 35.0

// TotalCost sums qty * costUnit over the items.
func TotalCost(items []types.RecipeItem) float64 {
	total := 0.0
	for _, it := range items {
		total += it.Qty * it.CostUnit
	}
	return total
}

// CostPerPortion divides the total cost by the yield. Zero when the yield
// is not positive.
func CostPerPortion(totalCost, yieldQty float64) float64 {
	if yieldQty <= 0 {
		return 0
	}
	return totalCost / yieldQty
}

// CMVPercent is the cost per portion as a percentage of the sale price.
// Zero when the sale price is not positive.
func CMVPercent(costPerPortion, salePrice float64) float64 {
	if salePrice <= 0 {
		return 0
	}
	return costPerPortion / salePrice * 100
}

// Margin is the gross margin of one portion.
type Margin struct {
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
}

// CalcMargin returns the margin value and its percentage of the sale price.
// The percentage is zero when the sale price is not positive.
func CalcMargin(costPerPortion, salePrice float64) Margin {
	m := Margin{Value: salePrice - costPerPortion}
	if salePrice > 0 {
		m.Percent = m.Value / salePrice * 100
	}
	return m
}

// MinPriceForTargetCMV is the lowest sale price that keeps the CMV at the
// target percentage. Zero unless 0 < target < 100.
func MinPriceForTargetCMV(costPerPortion, targetCMVPercent float64) float64 {
	if targetCMVPercent <= 0 || targetCMVPercent >= 100 {
		return 0
	}
	return costPerPortion / (targetCMVPercent / 100)
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summary is the cost strip shown next to a recipe.
type Summary struct {
	TotalCost      float64 `json:"totalCost"`
	CostPerPortion float64 `json:"costPerPortion"`
	CMVPercent     float64 `json:"cmvPercent"`
	Margin         Margin  `json:"margin"`
	TargetCMV      float64 `json:"targetCmv"`
	MinPrice       float64 `json:"minPrice"`
	AboveTarget    bool    `json:"aboveTarget"`
}

// Summarize computes every cost figure of a recipe against a target CMV.
//
// PARAMETERS:
//   - r: The recipe
//   - targetCMV: Target CMV percentage. Non-positive values use DefaultTargetCMV.
//
// RETURNS:
//   - Summary: The computed figures. AboveTarget is set when the recipe's CMV
//     exceeds the target.
func Summarize(r types.Recipe, targetCMV float64) Summary {
	if targetCMV <= 0 {
		targetCMV = DefaultTargetCMV
	}
	total := TotalCost(r.Items)
	perPortion := CostPerPortion(total, r.YieldQty)
	cmv := CMVPercent(perPortion, r.SalePrice)

	return Summary{
		TotalCost:      total,
		CostPerPortion: perPortion,
		CMVPercent:     cmv,
		Margin:         CalcMargin(perPortion, r.SalePrice),
		TargetCMV:      targetCMV,
		MinPrice:       MinPriceForTargetCMV(perPortion, targetCMV),
		AboveTarget:    cmv > targetCMV,
	}
}
