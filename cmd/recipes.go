// =============================================================================
// BRO.AI - Recipes Command
// =============================================================================
//
// This file defines the 'recipes' command group, which manages recipe cost
// sheets through the recipe editor session.
//
// COMMAND USAGE:
//   broai recipes list [--search text]
//   broai recipes show <id>
//   broai recipes cost <id> [--target-cmv N]
//   broai recipes save --file recipe.json
//   broai recipes delete <id>
//
// Every failure is reported with the same banner the editor shows, for
// example "Error loading recipe: Not found.".
//
// =============================================================================

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/broai/internal/recipes"
	"github.com/ginjaninja78/broai/internal/types"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	recipesSearch    string
	recipesTargetCMV float64
	recipesSaveFile  string
)

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "Manage recipe cost sheets",
	Long: `The recipes commands list, show, cost, save and delete recipe cost sheets
(fichas técnicas) in the configured backend.`,
}

var recipesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recipes, optionally filtered by name",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRecipesList(cmd)
	},
}

var recipesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a recipe and its ingredients",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRecipesShow(cmd, args[0], false)
	},
}

var recipesCostCmd = &cobra.Command{
	Use:   "cost <id>",
	Short: "Show the cost, CMV and margin of a recipe",
	Long: `The cost command computes the total cost, cost per portion, CMV and margin
of a recipe, and the minimum sale price that keeps the CMV at the target.

The target defaults to target_cmv_percent from the configuration.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRecipesShow(cmd, args[0], true)
	},
}

var recipesSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Create or update a recipe from a JSON file",
	Long: `The save command reads a recipe from a JSON file and stores it. A recipe
without "id" is created; a recipe with "id" is updated.

Example recipe.json:
  {
    "name": "Pão de Queijo",
    "yieldQty": 20,
    "yieldUnit": "un",
    "salePrice": 3.5,
    "items": [
      {"name": "Polvilho", "qty": 0.5, "unit": "kg", "costUnit": 12}
    ]
  }`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRecipesSave(cmd)
	},
}

var recipesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a recipe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRecipesDelete(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(recipesCmd)
	recipesCmd.AddCommand(recipesListCmd, recipesShowCmd, recipesCostCmd, recipesSaveCmd, recipesDeleteCmd)

	recipesListCmd.Flags().StringVar(&recipesSearch, "search", "", "Only list recipes whose name contains this text")
	recipesCostCmd.Flags().Float64Var(&recipesTargetCMV, "target-cmv", 0, "Target CMV percentage (default from config)")
	recipesSaveCmd.Flags().StringVar(&recipesSaveFile, "file", "", "Path to the recipe JSON file")
	_ = recipesSaveCmd.MarkFlagRequired("file")
}

// =============================================================================
// COMMAND FUNCTIONS
// =============================================================================

func newEditor() *recipes.Editor {
	repo, _ := newBackend()
	return recipes.NewEditor(repo, recipes.WithLogger(logger))
}

func runRecipesList(cmd *cobra.Command) error {
	editor := newEditor()
	ctx, cancel := commandContext(cmd.Context())
	defer cancel()

	if err := editor.Load(ctx); err != nil {
		return errors.New(editor.Error())
	}
	editor.SetSearch(recipesSearch)
	list := editor.Recipes()

	out := cmd.OutOrStdout()
	if len(list) == 0 {
		fmt.Fprintln(out, "No recipes found.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tYIELD\tPRICE\tCMV\tITEMS\tUPDATED")
	for _, r := range list {
		s := recipes.Summarize(r, targetCMV())
		updated := "-"
		if r.UpdatedAt != nil {
			updated = humanize.Time(*r.UpdatedAt)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s %s\t%s\t%s\t%d\t%s\n",
			r.ID, r.Name, quantity(r.YieldQty), r.YieldUnit, money(r.SalePrice),
			percent(s.CMVPercent), itemsCount(r), updated)
	}
	tw.Flush()
	fmt.Fprintf(out, "\n%d recipe(s)\n", len(list))
	return nil
}

func runRecipesShow(cmd *cobra.Command, id string, withCost bool) error {
	editor := newEditor()
	ctx, cancel := commandContext(cmd.Context())
	defer cancel()

	if err := editor.Select(ctx, id); err != nil {
		return errors.New(editor.Error())
	}
	r, _ := editor.Selected()

	out := cmd.OutOrStdout()
	printRecipe(out, r)
	if withCost {
		fmt.Fprintln(out)
		printSummary(out, recipes.Summarize(r, targetCMV()))
	}
	return nil
}

func runRecipesSave(cmd *cobra.Command) error {
	raw, err := os.ReadFile(recipesSaveFile)
	if err != nil {
		return fmt.Errorf("failed to read recipe file: %w", err)
	}
	var r types.Recipe
	if err := json.Unmarshal(raw, &r); err != nil {
		return fmt.Errorf("failed to parse recipe file: %w", err)
	}
	if r.Items == nil {
		r.Items = []types.RecipeItem{}
	}

	editor := newEditor()
	ctx, cancel := commandContext(cmd.Context())
	defer cancel()

	saved, err := editor.Save(ctx, r)
	var fe recipes.FieldErrors
	switch {
	case errors.As(err, &fe):
		return fe
	case err != nil:
		return errors.New(editor.Error())
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Saved recipe %s.\n\n", saved.ID)
	printSummary(out, recipes.Summarize(saved, targetCMV()))
	return nil
}

func runRecipesDelete(cmd *cobra.Command, id string) error {
	editor := newEditor()
	ctx, cancel := commandContext(cmd.Context())
	defer cancel()

	if err := editor.Delete(ctx, id); err != nil {
		return errors.New(editor.Error())
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted recipe %s.\n", id)
	return nil
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

// targetCMV is --target-cmv when given and the configured target otherwise.
func targetCMV() float64 {
	if recipesTargetCMV > 0 {
		return recipesTargetCMV
	}
	return cfg.TargetCMVPercent
}

func itemsCount(r types.Recipe) int {
	if len(r.Items) > 0 {
		return len(r.Items)
	}
	return r.ItemsCount
}

func printRecipe(w io.Writer, r types.Recipe) {
	fmt.Fprintf(w, "%s (%s)\n", r.Name, r.ID)
	fmt.Fprintf(w, "Yield:       %s %s\n", quantity(r.YieldQty), r.YieldUnit)
	fmt.Fprintf(w, "Sale price:  %s\n", money(r.SalePrice))
	if r.UpdatedAt != nil {
		fmt.Fprintf(w, "Updated:     %s\n", humanize.Time(*r.UpdatedAt))
	}
	if len(r.Items) == 0 {
		fmt.Fprintln(w, "\nNo ingredients.")
		return
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INGREDIENT\tQTY\tUNIT COST\tCOST")
	for _, it := range r.Items {
		fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\n",
			it.Name, quantity(it.Qty), it.Unit, money(it.CostUnit), money(it.Qty*it.CostUnit))
	}
	tw.Flush()
}

func printSummary(w io.Writer, s recipes.Summary) {
	fmt.Fprintf(w, "Total cost:        %s\n", money(s.TotalCost))
	fmt.Fprintf(w, "Cost per portion:  %s\n", money(s.CostPerPortion))
	fmt.Fprintf(w, "CMV:               %s\n", percent(s.CMVPercent))
	fmt.Fprintf(w, "Margin:            %s (%s)\n", money(s.Margin.Value), percent(s.Margin.Percent))
	fmt.Fprintf(w, "Minimum price:     %s for a %s CMV\n", money(s.MinPrice), percent(s.TargetCMV))
	if s.AboveTarget {
		fmt.Fprintln(w, "\nWarning: CMV is above the target.")
	}
}

// money formats a value in reais with Brazilian separators.
func money(v float64) string {
	return "R$ " + humanize.FormatFloat("#.###,##", v)
}

func percent(v float64) string {
	return humanize.FormatFloat("#.###,#", v) + "%"
}

func quantity(v float64) string {
	return humanize.FtoaWithDigits(v, 3)
}
