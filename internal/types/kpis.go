package types

// KPIParams selects the reporting window. Dates are YYYY-MM-DD; the compare
// pair is optional and enables delta values on the cards.
type KPIParams struct {
	From        string
	To          string
	CompareFrom string
	CompareTo   string
}

// Comparing reports whether a comparison window was requested.
func (p KPIParams) Comparing() bool {
	return p.CompareFrom != "" && p.CompareTo != ""
}

// Benchmark is the healthy band for a KPI card.
type Benchmark struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Label string  `json:"label"`
}

// KPICard is one dashboard card.
type KPICard struct {
	ID         string     `json:"id"`
	Label      string     `json:"label"`
	Value      Value      `json:"value"`
	Unit       string     `json:"unit,omitempty"`
	Trend      string     `json:"trend,omitempty"`
	DeltaValue Value      `json:"deltaValue"`
	DeltaLabel string     `json:"deltaLabel,omitempty"`
	Sparkline  []float64  `json:"sparkline,omitempty"`
	Benchmark  *Benchmark `json:"benchmark,omitempty"`
}

// TopImpact is an ingredient ranked by its cost impact.
type TopImpact struct {
	Label    string  `json:"label"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit,omitempty"`
	RecipeID string  `json:"recipeId,omitempty"`
}

// RecipeIndicator summarizes how much of the menu is above target CMV.
type RecipeIndicator struct {
	Label       string `json:"label"`
	Value       Value  `json:"value"`
	Description string `json:"description,omitempty"`
	CTALabel    string `json:"ctaLabel,omitempty"`
}

// ExecutiveSummary is the headline block of the dashboard.
type ExecutiveSummary struct {
	Headline string   `json:"headline"`
	Insights []string `json:"insights"`
	Alerts   []string `json:"alerts,omitempty"`
}

// KPIs is the response of the KPI endpoint.
type KPIs struct {
	Cards            []KPICard         `json:"cards"`
	TopImpacts       []TopImpact       `json:"topImpacts,omitempty"`
	RecipeIndicator  *RecipeIndicator  `json:"recipeIndicator,omitempty"`
	UsageHealth      string            `json:"usageHealth,omitempty"`
	ExecutiveSummary *ExecutiveSummary `json:"executiveSummary,omitempty"`
}

// SuggestionAction is a deep link attached to a suggestion.
type SuggestionAction struct {
	Label string `json:"label"`
	Link  string `json:"link"`
}

// Suggestion is a data-driven recommendation with its explicit source.
type Suggestion struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Source   string            `json:"source"`
	RecipeID string            `json:"recipeId,omitempty"`
	Action   *SuggestionAction `json:"action,omitempty"`
}
