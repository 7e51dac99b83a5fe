package recipes

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ginjaninja78/broai/internal/types"
)

func TestCalculator(t *testing.T) {
	items := []types.RecipeItem{
		{Name: "Pão", Qty: 1, CostUnit: 1.5},
		{Name: "Carne", Qty: 150, CostUnit: 0.08},
	}
	assert.InDelta(t, 13.5, TotalCost(items), 1e-9)
	assert.Zero(t, TotalCost(nil))

	assert.Equal(t, 0.0, CostPerPortion(100, 0))
	assert.Equal(t, 0.0, CostPerPortion(100, -2))
	assert.Equal(t, 25.0, CostPerPortion(100, 4))

	assert.Equal(t, 0.0, CMVPercent(30, 0))
	assert.Equal(t, 50.0, CMVPercent(10, 20))

	assert.Equal(t, Margin{Value: 30, Percent: 60}, CalcMargin(20, 50))
	assert.Equal(t, Margin{Value: -5, Percent: 0}, CalcMargin(5, 0))

	assert.InDelta(t, 57.14, MinPriceForTargetCMV(20, 35), 0.01)
	for _, target := range []float64{0, -1, 100, 120} {
		assert.Zero(t, MinPriceForTargetCMV(20, target), target)
	}
}

func TestSummarize(t *testing.T) {
	r := types.Recipe{
		Name:      "Pizza Margherita",
		YieldQty:  1,
		SalePrice: 45,
		Items: []types.RecipeItem{
			{Name: "Massa", Qty: 300, CostUnit: 0.03},
			{Name: "Molho", Qty: 100, CostUnit: 0.02},
			{Name: "Mussarela", Qty: 200, CostUnit: 0.15},
			{Name: "Manjericão", Qty: 5, CostUnit: 0.5},
		},
	}

	s := Summarize(r, 0)
	assert.Equal(t, DefaultTargetCMV, s.TargetCMV)
	assert.InDelta(t, 43.5, s.TotalCost, 1e-9)
	assert.InDelta(t, 43.5, s.CostPerPortion, 1e-9)
	assert.InDelta(t, 96.67, s.CMVPercent, 0.01)
	assert.InDelta(t, 1.5, s.Margin.Value, 1e-9)
	assert.InDelta(t, 124.29, s.MinPrice, 0.01)
	assert.True(t, s.AboveTarget)

	r.SalePrice = 200
	assert.False(t, Summarize(r, 35).AboveTarget)
}
