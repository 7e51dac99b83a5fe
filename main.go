// =============================================================================
// BRO.AI - Main Entry Point
// =============================================================================
//
// This is the main entry point for the BRO.AI command line tool. It hands
// control to the Cobra commands in the cmd package.
//
// USAGE:
//   broai validate   - Check a local CSV/XLSX file against an import template
//   broai import     - Run the import wizard for a file
//   broai recipes    - List, show, cost, save and delete recipe cost sheets
//   broai dashboard  - Show the KPIs and suggestions of a period
//   broai serve      - Run the mock API over HTTP
//   broai version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : Cobra command definitions
//   - internal/      : Domain logic (templates, validation, wizard, recipes,
//                      dashboard) and the backends (apiclient, mockapi)
//   - pkg/           : Shared file helpers
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/broai/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}
