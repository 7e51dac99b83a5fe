// =============================================================================
// BRO.AI - Dashboard Command
// =============================================================================
//
// This file defines the 'dashboard' command, which loads the KPI cards and
// suggestions of a reporting period.
//
// COMMAND USAGE:
//   broai dashboard [flags]
//
// FLAGS:
//   --month    : Report one calendar month, YYYY-MM (default: current month)
//   --from/--to: Report a custom date range, YYYY-MM-DD
//   --last12   : Report the last twelve months
//   --compare  : Add deltas against the previous period of the same length
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/broai/internal/dashboard"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	dashboardMonth   string
	dashboardFrom    string
	dashboardTo      string
	dashboardLast12  bool
	dashboardCompare bool
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the KPIs and suggestions of a period",
	Long: `The dashboard command loads the KPI cards (revenue, CMV, gross profit,
gross margin, losses and usage health) and the data-driven suggestions for
a reporting period.

Example:
  broai dashboard --month 2025-12 --compare
  broai dashboard --from 2025-12-01 --to 2025-12-15`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd)
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)

	dashboardCmd.Flags().StringVar(&dashboardMonth, "month", "", "Month to report, YYYY-MM (default: current month)")
	dashboardCmd.Flags().StringVar(&dashboardFrom, "from", "", "Start date, YYYY-MM-DD (use with --to)")
	dashboardCmd.Flags().StringVar(&dashboardTo, "to", "", "End date, YYYY-MM-DD (use with --from)")
	dashboardCmd.Flags().BoolVar(&dashboardLast12, "last12", false, "Report the last twelve months")
	dashboardCmd.Flags().BoolVar(&dashboardCompare, "compare", false, "Compare with the previous period")
	dashboardCmd.MarkFlagsMutuallyExclusive("month", "from", "last12")
	dashboardCmd.MarkFlagsMutuallyExclusive("month", "to", "last12")
	dashboardCmd.MarkFlagsRequiredTogether("from", "to")
}

// =============================================================================
// MAIN FUNCTION
// =============================================================================

func runDashboard(cmd *cobra.Command) error {
	period, err := dashboardPeriod(time.Now())
	if err != nil {
		return err
	}
	if dashboardCompare {
		period = period.WithCompare()
	}

	kpis, _ := newBackend()
	loader := dashboard.NewLoader(kpis, kpis, dashboard.WithLogger(logger))

	ctx, cancel := commandContext(cmd.Context())
	defer cancel()
	view, err := loader.Load(ctx, period)
	if err != nil {
		return errors.New(loader.Error())
	}

	printDashboard(cmd.OutOrStdout(), view)
	return nil
}

// dashboardPeriod builds the period selected by the flags.
func dashboardPeriod(now time.Time) (dashboard.Period, error) {
	switch {
	case dashboardFrom != "":
		from, err := time.Parse(dashboard.DateLayout, dashboardFrom)
		if err != nil {
			return dashboard.Period{}, fmt.Errorf("invalid --from: %w", err)
		}
		to, err := time.Parse(dashboard.DateLayout, dashboardTo)
		if err != nil {
			return dashboard.Period{}, fmt.Errorf("invalid --to: %w", err)
		}
		return dashboard.NewPeriod(from, to)
	case dashboardLast12:
		return dashboard.Period{Range: dashboard.Last12Range(now)}, nil
	case dashboardMonth != "":
		month, err := dashboard.ParseMonth(dashboardMonth)
		if err != nil {
			return dashboard.Period{}, err
		}
		return dashboard.Period{Range: dashboard.MonthRange(month)}, nil
	default:
		return dashboard.Period{Range: dashboard.MonthRange(now)}, nil
	}
}

// =============================================================================
// OUTPUT
// =============================================================================

func printDashboard(w io.Writer, v dashboard.View) {
	fmt.Fprintf(w, "=== Dashboard %s (%d days) ===\n", v.Period.Range, v.Period.Days())
	if v.Period.Compare != nil {
		fmt.Fprintf(w, "Compared with %s\n", *v.Period.Compare)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KPI\tVALUE\tDELTA\tBENCHMARK")
	for _, c := range v.MainCards() {
		value := c.Value.String()
		if c.Unit != "" {
			value += " " + c.Unit
		}
		delta := "-"
		if !c.DeltaValue.IsNull() {
			delta = c.DeltaValue.String()
			if c.DeltaLabel != "" {
				delta += " " + c.DeltaLabel
			}
		}
		bench := "-"
		if c.Benchmark != nil {
			bench = c.Benchmark.Label
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Label, value, delta, bench)
	}
	tw.Flush()

	if es := v.KPIs.ExecutiveSummary; es != nil {
		fmt.Fprintf(w, "\n%s\n", es.Headline)
		for _, s := range es.Insights {
			fmt.Fprintf(w, "  - %s\n", s)
		}
		for _, a := range es.Alerts {
			fmt.Fprintf(w, "  ! %s\n", a)
		}
	}

	if len(v.KPIs.TopImpacts) > 0 {
		fmt.Fprintln(w, "\nTop cost impacts:")
		for i, t := range v.KPIs.TopImpacts {
			fmt.Fprintf(w, "  %d. %s: %s\n", i+1, t.Label, impactValue(t.Value, t.Unit))
		}
	}

	if ri := v.KPIs.RecipeIndicator; ri != nil {
		fmt.Fprintf(w, "\n%s: %s\n", ri.Label, ri.Value)
		if ri.Description != "" {
			fmt.Fprintf(w, "  %s\n", ri.Description)
		}
	}

	if len(v.Suggestions) > 0 {
		fmt.Fprintln(w, "\nSuggestions:")
		for _, s := range v.Suggestions {
			fmt.Fprintf(w, "  - %s (source: %s)\n", s.Text, s.Source)
		}
	}
}

// impactValue formats a top impact amount by its unit.
func impactValue(v float64, unit string) string {
	switch unit {
	case "R$":
		return money(v)
	case "%":
		return percent(v)
	case "":
		return quantity(v)
	default:
		return quantity(v) + " " + unit
	}
}
