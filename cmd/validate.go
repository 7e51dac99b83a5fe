// =============================================================================
// BRO.AI - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks local CSV or XLSX
// files against an import template without contacting the import service.
//
// COMMAND USAGE:
//   broai validate [paths...] [flags]
//
// FLAGS:
//   --file       : A file to check, in addition to any paths given
//   --type       : Template type: PDV, NF or RECIPE (default RECIPE)
//   --map        : Explicit mapping "Header=key", repeatable
//   --sheet      : Workbook sheet to read (XLSX only)
//   --error-log  : Write the cell errors of each file to the output directory
//
// PROCESSING PIPELINE:
//   1. Collect the files (directories are scanned for .csv/.xlsx/.xls)
//   2. Check each file concurrently with the local importer
//   3. Print each report in input order
//   4. Print a summary
//
// EXIT STATUS:
//   The command fails when any file cannot be read, cannot be mapped, or
//   has invalid rows.
//
// =============================================================================

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/broai/internal/importer"
	"github.com/ginjaninja78/broai/internal/templates"
	"github.com/ginjaninja78/broai/internal/types"
	"github.com/ginjaninja78/broai/internal/validation"
	"github.com/ginjaninja78/broai/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	validateFile     string
	validateType     string
	validateMappings []string
	validateSheet    string
	validateErrorLog bool
)

// errInvalidRows is returned when a file was read but some rows failed
// validation.
var errInvalidRows = errors.New("file has invalid rows")

// sourceExtensions are the file types picked up when scanning a directory.
var sourceExtensions = map[string]bool{".csv": true, ".xlsx": true, ".xls": true}

// =============================================================================
// VALIDATE COMMAND DEFINITION
// =============================================================================

var validateCmd = &cobra.Command{
	Use:   "validate [paths...]",
	Short: "Check local files against an import template",
	Long: `The validate command parses CSV or XLSX files, suggests a column mapping
from the template synonyms, applies any --map overrides and validates every
row the same way the import wizard does at the review step.

Directories are scanned for spreadsheet files. Files are checked
concurrently and a problem in one file does not stop the others.

Example:
  broai validate --file vendas.csv --type PDV
  broai validate ./exports --type NF --error-log
  broai validate ficha.xlsx --map "Nome do prato=produto_final"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFile, "file", "", "Path to a CSV or XLSX file to check")
	validateCmd.Flags().StringVar(&validateType, "type", string(templates.RECIPE), "Template type (PDV, NF, RECIPE)")
	validateCmd.Flags().StringArrayVar(&validateMappings, "map", nil, `Explicit column mapping "Header=key" (repeatable)`)
	validateCmd.Flags().StringVar(&validateSheet, "sheet", "", "Workbook sheet to read (default: first sheet)")
	validateCmd.Flags().BoolVar(&validateErrorLog, "error-log", false, "Write cell errors to the output directory")
}

// =============================================================================
// MAIN FUNCTION
// =============================================================================

// validateResult is the outcome of checking one file.
type validateResult struct {
	path   string
	output bytes.Buffer
	report *importer.Report
	err    error
}

// runValidate checks every requested file and prints the reports.
func runValidate(cmd *cobra.Command, args []string) error {
	startTime := time.Now()
	out := cmd.OutOrStdout()

	paths := args
	if validateFile != "" {
		paths = append([]string{validateFile}, paths...)
	}
	if len(paths) == 0 {
		return errors.New("no files to check: pass --file or one or more paths")
	}

	files, err := discoverSourceFiles(paths)
	if err != nil {
		return fmt.Errorf("failed to discover input files: %w", err)
	}
	if len(files) == 0 {
		fmt.Fprintln(out, "No CSV or XLSX files found.")
		return nil
	}

	overrides, err := importer.ParseMappingFlags(validateMappings)
	if err != nil {
		return err
	}

	imp := importer.New(
		importer.ReadOptions{CSV: cfg.CSV, Sheet: validateSheet},
		importer.WithLogger(logger),
	)
	tplType := templates.ParseType(validateType)

	// =========================================================================
	// CHECK FILES CONCURRENTLY
	// =========================================================================

	results := make([]*validateResult, len(files))
	var wg sync.WaitGroup
	for i, path := range files {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			res := &validateResult{path: path}
			res.report, res.err = checkFile(&res.output, imp, path, tplType, overrides)
			results[i] = res
		}(i, path)
	}
	wg.Wait()

	// =========================================================================
	// PRINT REPORTS AND SUMMARY
	// =========================================================================

	var validCount, failedCount int
	var totalRows int
	for _, res := range results {
		if _, err := io.Copy(out, &res.output); err != nil {
			return err
		}
		if res.report != nil {
			totalRows += len(res.report.Rows)
		}
		if res.err != nil {
			failedCount++
			fmt.Fprintf(out, "  ✗ %s: %v\n\n", filepath.Base(res.path), res.err)
			continue
		}
		validCount++
		fmt.Fprintf(out, "  ✓ %s\n\n", filepath.Base(res.path))
	}

	fmt.Fprintln(out, "=== Validation Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", len(files))
	fmt.Fprintf(out, "Valid:           %d\n", validCount)
	fmt.Fprintf(out, "With errors:     %d\n", failedCount)
	fmt.Fprintf(out, "Rows checked:    %s\n", humanize.Comma(int64(totalRows)))
	fmt.Fprintf(out, "Time elapsed:    %s\n", time.Since(startTime))

	if failedCount > 0 {
		return fmt.Errorf("%d of %d file(s) failed validation", failedCount, len(files))
	}
	return nil
}

// checkFile runs the local importer on one file and writes its report to w.
func checkFile(w io.Writer, imp *importer.Importer, path string, tplType templates.Type, overrides types.ColumnMapping) (*importer.Report, error) {
	report, err := imp.Run(path, tplType, overrides)
	if report == nil {
		return nil, err
	}

	size := "size unknown"
	if n, err := utils.GetFileSize(path); err == nil {
		size = humanize.Bytes(uint64(n))
	}
	fmt.Fprintf(w, "=== %s (%s template, %s) ===\n", report.Source.FileName, report.Template.Type, size)
	printMapping(w, report.Source.Headers, report.Mapping)
	if err != nil {
		return report, err
	}

	fmt.Fprintf(w, "\nRows checked:  %s\n", humanize.Comma(int64(len(report.Rows))))
	fmt.Fprintf(w, "Invalid rows:  %s\n", humanize.Comma(int64(report.Result.InvalidCount)))
	fmt.Fprintf(w, "Time elapsed:  %s\n\n", report.Duration)
	fmt.Fprint(w, validation.FormatErrors(report.Template.Columns, report.Result))

	if report.Valid() {
		return report, nil
	}

	if validateErrorLog {
		fm := utils.NewFileManager(cfg.OutputDir)
		logPath, err := validation.WriteErrorLog(fm, report.Source.FileName, report.Rows, report.Result)
		if err != nil {
			return report, fmt.Errorf("failed to write error log: %w", err)
		}
		fmt.Fprintf(w, "\nErrors have been logged to %s\n", logPath)
	}
	return report, errInvalidRows
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// discoverSourceFiles expands the given paths into a list of files.
// Directories are walked for spreadsheet files; plain files are kept as
// given, whatever their extension.
//
// PARAMETERS:
//   - paths: Files and directories, as given on the command line.
//
// RETURNS:
//   - The files to check, without duplicates, in discovery order.
//   - An error if a path does not exist or a directory cannot be read.
func discoverSourceFiles(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, root := range paths {
		if !utils.FileExists(root) {
			return nil, fmt.Errorf("%s does not exist", root)
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if path == root || sourceExtensions[strings.ToLower(filepath.Ext(path))] {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
