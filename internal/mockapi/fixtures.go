package mockapi

import (
	"time"

	"github.com/ginjaninja78/broai/internal/types"
)

// seedRecipes are the sample cost sheets every new Store starts with.
func seedRecipes(now time.Time) []types.Recipe {
	ts := now
	recipes := []types.Recipe{
		{
			ID: "1", Name: "Hambúrguer Artesanal", YieldQty: 1, YieldUnit: "unidade", SalePrice: 25,
			Items: []types.RecipeItem{
				{ID: "1-1", Name: "Pão de hambúrguer", Qty: 1, Unit: "un", CostUnit: 1.5},
				{ID: "1-2", Name: "Carne moída", Qty: 150, Unit: "g", CostUnit: 0.08},
				{ID: "1-3", Name: "Queijo cheddar", Qty: 30, Unit: "g", CostUnit: 0.12},
				{ID: "1-4", Name: "Alface", Qty: 20, Unit: "g", CostUnit: 0.05},
				{ID: "1-5", Name: "Tomate", Qty: 30, Unit: "g", CostUnit: 0.06},
			},
		},
		{
			ID: "2", Name: "Pizza Margherita", YieldQty: 1, YieldUnit: "pizza", SalePrice: 45,
			Items: []types.RecipeItem{
				{ID: "2-1", Name: "Massa de pizza", Qty: 300, Unit: "g", CostUnit: 0.03},
				{ID: "2-2", Name: "Molho de tomate", Qty: 100, Unit: "ml", CostUnit: 0.02},
				{ID: "2-3", Name: "Mussarela", Qty: 200, Unit: "g", CostUnit: 0.15},
				{ID: "2-4", Name: "Manjericão", Qty: 5, Unit: "g", CostUnit: 0.5},
			},
		},
		{
			ID: "3", Name: "Salada Caesar", YieldQty: 1, YieldUnit: "porção", SalePrice: 18,
			Items: []types.RecipeItem{
				{ID: "3-1", Name: "Alface romana", Qty: 100, Unit: "g", CostUnit: 0.04},
				{ID: "3-2", Name: "Croutons", Qty: 30, Unit: "g", CostUnit: 0.08},
				{ID: "3-3", Name: "Molho caesar", Qty: 50, Unit: "ml", CostUnit: 0.12},
				{ID: "3-4", Name: "Parmesão", Qty: 20, Unit: "g", CostUnit: 0.25},
			},
		},
	}
	for i := range recipes {
		recipes[i].ItemsCount = len(recipes[i].Items)
		recipes[i].UpdatedAt = &ts
	}
	return recipes
}

// fixtureColumns and fixtureRows are the preview served for uploads that
// were not staged with real content.
var fixtureColumns = []string{"produto", "quantidade", "preco", "data", "categoria"}

func fixtureRows() []types.PreviewRow {
	type r struct {
		produto   string
		qty       float64
		preco     float64
		data      string
		categoria string
		issues    []string
	}
	src := []r{
		{"Produto A", 10, 25.5, "2024-01-15", "Eletrônicos", nil},
		{"Produto B", 5, 30, "2024-01-16", "Roupas", []string{"Campo obrigatório ausente"}},
		{"Produto C", 8, 15, "2024-01-17", "Alimentos", nil},
		{"Produto D", 12, 45, "", "Casa", []string{"Data inválida"}},
		{"Produto E", 3, 60, "2024-01-18", "Eletrônicos", nil},
		{"Produto F", 20, 8.5, "2024-01-19", "Alimentos", nil},
		{"Produto G", 7, 35, "2024-01-20", "Roupas", nil},
		{"Produto H", 15, 22, "2024-01-21", "Casa", nil},
		{"Produto I", 4, 55, "2024-01-22", "Eletrônicos", nil},
		{"Produto J", 9, 18, "2024-01-23", "Alimentos", nil},
		{"Produto K", 6, 40, "2024-01-24", "Roupas", nil},
	}

	rows := make([]types.PreviewRow, len(src))
	for i, s := range src {
		data := types.Null()
		if s.data != "" {
			data = types.String(s.data)
		}
		rows[i] = types.PreviewRow{
			RowNumber: i + 1,
			Data: types.Row{
				"produto":    types.String(s.produto),
				"quantidade": types.Number(s.qty),
				"preco":      types.Number(s.preco),
				"data":       data,
				"categoria":  types.String(s.categoria),
			},
			Issues: s.issues,
		}
	}
	return rows
}

// buildKPIs returns the sample dashboard. Deltas are filled only when a
// comparison window was requested.
func buildKPIs(params types.KPIParams) types.KPIs {
	comparing := params.Comparing()

	card := func(id, label, value, unit, trend, delta string, spark []float64, bench *types.Benchmark) types.KPICard {
		c := types.KPICard{
			ID: id, Label: label, Value: types.String(value), Unit: unit, Trend: trend,
			Sparkline: spark, Benchmark: bench,
		}
		if comparing && delta != "" {
			c.DeltaValue = types.String(delta)
			c.DeltaLabel = "vs previous month"
		}
		return c
	}

	return types.KPIs{
		Cards: []types.KPICard{
			card("faturamento", "Revenue (POS)", "R$ 185.200", "R$", "up", "+8%",
				[]float64{165000, 170000, 172000, 178000, 180000, 183000, 185200}, nil),
			card("cmv", "Actual CMV", "R$ 72.800 (39%)", "R$", "flat", "+2 p.p.",
				[]float64{38, 37, 39, 40, 38, 39, 39},
				&types.Benchmark{Min: 30, Max: 35, Label: "Ideal: 30-35% (typical bars/restaurants)"}),
			card("lucro-bruto", "Estimated gross profit", "R$ 112.400", "R$", "up", "+6%",
				[]float64{102000, 105000, 106000, 109000, 110000, 111000, 112400}, nil),
			card("margem-bruta", "Gross margin", "61%", "%", "flat", "+1.2 p.p.",
				[]float64{59, 60, 60, 61, 61, 60, 61},
				&types.Benchmark{Min: 55, Max: 65, Label: "Healthy: 55-65%"}),
			card("perdas", "Losses / adjustments", "R$ 4.300", "R$", "down", "-3%",
				[]float64{5200, 5000, 4800, 4600, 4500, 4400, 4300}, nil),
			card("saude-uso", "Usage health", "Last upload 12h ago", "", "up", "", nil, nil),
		},
		TopImpacts: []types.TopImpact{
			{Label: "Alcatra (beef)", Value: 18200, Unit: "R$", RecipeID: "1"},
			{Label: "Chicken fillet", Value: 12400, Unit: "R$", RecipeID: "2"},
			{Label: "Mozzarella cheese", Value: 9800, Unit: "R$", RecipeID: "3"},
			{Label: "Frying oil", Value: 7400, Unit: "R$", RecipeID: "4"},
			{Label: "Delivery packaging", Value: 5200, Unit: "R$"},
		},
		RecipeIndicator: &types.RecipeIndicator{
			Label:       "% of menu above target CMV",
			Value:       types.String("28%"),
			Description: "Items that can be adjusted through their cost sheet",
			CTALabel:    "Review cost sheets",
		},
		UsageHealth: "Last upload 12 hours ago",
		ExecutiveSummary: &types.ExecutiveSummary{
			Headline: "Your operation is 4% more efficient than last month",
			Insights: []string{
				"Revenue grew 8% while CMV rose only 2%",
				"Losses dropped R$ 300 against the previous period",
				"Margin is healthy (61%), above the sector average (55-58%)",
			},
			Alerts: []string{
				"CMV is 4 points above ideal (39% vs 30-35%). Adjusting Alcatra can save R$ 450/month",
			},
		},
	}
}

func buildSuggestions() []types.Suggestion {
	return []types.Suggestion{
		{
			ID:       "1",
			Text:     "Adjusting the Alcatra portion can save about R$ 450/month while keeping quality.",
			Source:   "Data dec/2025 • Rule: item CMV 12% above the ideal average (25%) • Ref: sector best practices",
			RecipeID: "1",
			Action:   &types.SuggestionAction{Label: "Review cost sheet", Link: "/fichas-tecnicas?recipeId=1&from=dashboard"},
		},
		{
			ID:       "2",
			Text:     "Frying oil is 4% of your CMV. Fewer oil changes can save money without affecting taste.",
			Source:   "Data dec/2025 • Rule: frying cost above 3% • Ref: operations management handbook",
			RecipeID: "4",
			Action:   &types.SuggestionAction{Label: "See recommendations", Link: "/fichas-tecnicas?recipeId=4&from=dashboard"},
		},
	}
}
