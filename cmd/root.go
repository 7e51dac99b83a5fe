// =============================================================================
// BRO.AI - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// (import, validate, recipes, dashboard, serve, version) is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (broai)
//   ├── importCmd    (broai import)
//   ├── validateCmd  (broai validate)
//   ├── recipesCmd   (broai recipes list|show|cost|save|delete)
//   ├── dashboardCmd (broai dashboard)
//   ├── serveCmd     (broai serve)
//   └── versionCmd   (broai version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads config.yaml (or --config), .env and BROAI_* variables
//   2. Builds the logger (--verbose forces debug output)
//
//   Commands that talk to the backend get it from newBackend, which returns
//   the in-memory store when use_mocks is set and the HTTP client otherwise.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/broai/internal/apiclient"
	"github.com/ginjaninja78/broai/internal/config"
	"github.com/ginjaninja78/broai/internal/dashboard"
	"github.com/ginjaninja78/broai/internal/logging"
	"github.com/ginjaninja78/broai/internal/mockapi"
	"github.com/ginjaninja78/broai/internal/recipes"
	"github.com/ginjaninja78/broai/internal/wizard"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables verbose logging when set to true.
var verbose bool

// cfg and logger are set by the root command before any subcommand runs.
var (
	cfg    *config.Config
	logger *zap.SugaredLogger
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "broai",
	Short: "BRO.AI - Spreadsheet importer and recipe cost toolkit",
	Long: `BRO.AI imports restaurant spreadsheets (sales, invoices and recipe cost
sheets), keeps recipe cost sheets up to date and reports food cost KPIs.

Key Features:
  - Guided import: upload, column mapping, review and confirmation
  - Local validation of CSV and XLSX files against the import templates
  - Recipe cost, CMV and margin calculation with a target CMV price
  - Dashboard KPIs with an optional comparison period
  - A mock backend for working without the BRO.AI API

Example Usage:
  broai validate --file vendas.csv --type PDV   # Check a file locally
  broai import --file ficha.xlsx --type RECIPE  # Run the import wizard
  broai recipes list                            # List recipe cost sheets
  broai dashboard --month 2025-12 --compare     # Show the KPIs of a month
  broai serve                                   # Start the mock API`,

	SilenceUsage:  true,
	SilenceErrors: true,

	// PersistentPreRunE loads the configuration and builds the logger for
	// every subcommand.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		l, err := logging.New(loaded.LogLevel, verbose)
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		cfg, logger = loaded, l
		logger.Debugf("Configuration loaded from %s (mocks: %t)", cfgFile, cfg.UseMocks)
		return nil
	},

	// If no subcommand is provided, print the help message.
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. This is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// BACKEND SELECTION
// =============================================================================

// backend is what the commands talk to: the HTTP client or the in-memory
// store, behind the same interfaces.
type backend interface {
	wizard.ImportService
	recipes.Repository
	dashboard.KPIProvider
	dashboard.SuggestionProvider
}

// newBackend returns the backend selected by the configuration. The store
// is returned as well when mocks are in use, so callers can stage uploads.
func newBackend() (backend, *mockapi.Store) {
	if cfg.UseMocks {
		logger.Debug("Using the in-memory mock backend")
		store := mockapi.NewStore(
			mockapi.WithLatency(cfg.MockLatency),
			mockapi.WithLogger(logger),
		)
		return store, store
	}

	logger.Debugf("Using the BRO.AI API at %s", cfg.APIURL)
	client := apiclient.New(cfg.APIURL,
		apiclient.WithToken(cfg.APIToken),
		apiclient.WithTimeout(cfg.RequestTimeout),
		apiclient.WithLogger(logger),
	)
	return client, nil
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	// --config flag: Allows the user to specify a custom configuration file.
	// A missing file is fine; defaults and environment variables apply.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file (default is config.yaml)",
	)

	// --verbose flag: Enables verbose/debug logging.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
