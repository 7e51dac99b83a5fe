// =============================================================================
// BRO.AI - Import Command
// =============================================================================
//
// This file defines the 'import' command, which drives the import wizard
// from the command line against the configured backend.
//
// COMMAND USAGE:
//   broai import --file <path> [flags]
//
// FLAGS:
//   --file           : The file to import (required)
//   --type           : Template type: PDV, NF or RECIPE (default RECIPE)
//   --map            : Explicit mapping "Header=key", repeatable
//   --dry-run        : Stop after the review step without confirming
//   --allow-invalid  : Confirm even when the review finds invalid rows
//
// PROCESSING PIPELINE:
//   1. Upload:  select the file and create the import job
//   2. Map:     take the suggested mappings and apply the --map overrides
//   3. Review:  validate the mapped preview rows
//   4. Confirm: confirm the job with the final mappings
//   5. Write an import summary to the output directory
//
// With the mock backend the file is parsed locally first, so the preview
// shows the real columns and rows instead of the sample data.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/broai/internal/importer"
	"github.com/ginjaninja78/broai/internal/mockapi"
	"github.com/ginjaninja78/broai/internal/templates"
	"github.com/ginjaninja78/broai/internal/types"
	"github.com/ginjaninja78/broai/internal/validation"
	"github.com/ginjaninja78/broai/internal/wizard"
	"github.com/ginjaninja78/broai/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	importFile         string
	importType         string
	importMappings     []string
	importSheet        string
	importDryRun       bool
	importAllowInvalid bool
)

// =============================================================================
// IMPORT COMMAND DEFINITION
// =============================================================================

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a CSV or XLSX file through the import wizard",
	Long: `The import command uploads a file to the import service, maps its columns
onto the selected template, validates the preview and confirms the import.

Mappings are suggested from the template synonyms. Use --map to override a
suggestion or to map a column the suggestions missed. Map a column to
"ignore" to leave it out of the import.

Example:
  broai import --file vendas.csv --type PDV
  broai import --file ficha.xlsx --map "Insumo=ingrediente" --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importFile, "file", "", "Path to the CSV or XLSX file to import")
	importCmd.Flags().StringVar(&importType, "type", string(templates.RECIPE), "Template type (PDV, NF, RECIPE)")
	importCmd.Flags().StringArrayVar(&importMappings, "map", nil, `Explicit column mapping "Header=key" (repeatable)`)
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "Workbook sheet to read when staging with mocks")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Stop after the review step without confirming")
	importCmd.Flags().BoolVar(&importAllowInvalid, "allow-invalid", false, "Confirm even when the review finds invalid rows")
	_ = importCmd.MarkFlagRequired("file")
}

// =============================================================================
// MAIN FUNCTION
// =============================================================================

// runImport walks the wizard from upload to complete.
func runImport(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	summary := utils.ImportSummary{StartTime: time.Now(), SourceFile: filepath.Base(importFile)}

	overrides, err := importer.ParseMappingFlags(importMappings)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(importFile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", importFile, err)
	}
	fmt.Fprintf(out, "=== Importing %s (%s) ===\n", summary.SourceFile, humanize.Bytes(uint64(len(content))))

	svc, store := newBackend()
	if store != nil {
		if err := stageUpload(store, summary.SourceFile, content); err != nil {
			return err
		}
	}

	w := wizard.New(svc,
		wizard.WithTemplate(templates.ParseType(importType)),
		wizard.WithLogger(logger),
	)
	summary.Template = string(w.Template().Type)

	err = importSteps(cmd, w, content, overrides, &summary)
	summary.EndTime = time.Now()
	if err != nil {
		summary.ErrorMessage = err.Error()
	}

	fm := utils.NewFileManager(cfg.OutputDir)
	path, logErr := fm.WriteSummaryLog(summary)
	if logErr != nil {
		logger.Warnf("Could not write import summary: %v", logErr)
	} else {
		fmt.Fprintf(out, "\nSummary written to %s\n", path)
	}
	return err
}

// importSteps runs the wizard transitions and fills in the summary as it
// goes.
func importSteps(cmd *cobra.Command, w *wizard.Wizard, content []byte, overrides types.ColumnMapping, summary *utils.ImportSummary) error {
	out := cmd.OutOrStdout()

	// =========================================================================
	// STEP 1: UPLOAD
	// =========================================================================

	if err := w.SelectFile(summary.SourceFile, content); err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd.Context())
	err := w.StartImport(ctx)
	cancel()
	if err != nil {
		return bannerError(w, err)
	}

	data := w.Data()
	summary.JobID = data.JobID
	summary.TotalRows = len(data.Preview)
	fmt.Fprintf(out, "Import job %s: %d column(s), %s preview row(s)\n\n",
		data.JobID, len(data.Columns), humanize.Comma(int64(len(data.Preview))))
	printPreview(out, data.Columns, data.Preview, cfg.PreviewRows)

	// =========================================================================
	// STEP 2: MAP COLUMNS
	// =========================================================================

	mappings := importer.MergeMappings(data.Mappings, overrides)
	if err := w.SetMappings(mappings); err != nil {
		return err
	}
	summary.Mappings = mappings

	fmt.Fprintln(out)
	printMapping(out, data.Columns, mappings)

	if err := w.ProceedToReview(); err != nil {
		return bannerError(w, err)
	}

	// =========================================================================
	// STEP 3: REVIEW
	// =========================================================================

	result := w.Review()
	summary.InvalidRows = result.InvalidCount
	fmt.Fprintf(out, "\n%s", validation.FormatErrors(w.Template().Columns, result))

	if importDryRun {
		fmt.Fprintln(out, "\nDry run: the import was not confirmed.")
		return nil
	}
	if !result.IsValid && !importAllowInvalid {
		return fmt.Errorf("%d row(s) are invalid; fix the file or pass --allow-invalid", result.InvalidCount)
	}

	// =========================================================================
	// STEP 4: CONFIRM
	// =========================================================================

	ctx, cancel = commandContext(cmd.Context())
	defer cancel()
	if err := w.Confirm(ctx); err != nil {
		return bannerError(w, err)
	}

	summary.Confirmed = true
	fmt.Fprintf(out, "\nImport %s confirmed.\n", data.JobID)
	return nil
}

// stageUpload parses the file locally and hands its rows to the mock store,
// so the wizard previews the real content.
func stageUpload(store *mockapi.Store, fileName string, content []byte) error {
	src, err := importer.ReadSourceContent(fileName, content, importer.ReadOptions{CSV: cfg.CSV, Sheet: importSheet})
	if err != nil {
		return err
	}
	store.StageUpload(fileName, src.Headers, src.Preview(0))
	logger.Debugf("Staged %d row(s) of %s in the mock backend", len(src.Rows), fileName)
	return nil
}

// bannerError prefers the wizard banner, which is what a user of the wizard
// would see, over the raw error.
func bannerError(w *wizard.Wizard, err error) error {
	var te *wizard.TransitionError
	if errors.As(err, &te) {
		return errors.New(te.Message)
	}
	if msg := w.Error(); msg != "" {
		return errors.New(msg)
	}
	return err
}
