// =============================================================================
// BRO.AI - Local Import Pipeline
// =============================================================================
//
// This module checks a local file the same way the import wizard would,
// without talking to the import service. It backs "broai validate".
//
// PIPELINE:
//   1. Parse the source file (CSV or XLSX)
//   2. Suggest a column mapping from the template synonyms
//   3. Apply the user's overrides on top of the suggestion
//   4. Check that the mapping is complete
//   5. Map the rows onto the template keys
//   6. Validate the mapped rows
//
// A file with invalid rows is not an error: the report carries the cell
// errors. Errors are returned only when the pipeline cannot run (unreadable
// file, incomplete mapping).
//
// =============================================================================

package importer

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ginjaninja78/broai/internal/logging"
	"github.com/ginjaninja78/broai/internal/templates"
	"github.com/ginjaninja78/broai/internal/types"
	"github.com/ginjaninja78/broai/internal/validation"
)

// =============================================================================
// REPORT STRUCTURE
// =============================================================================

// Report is the outcome of checking one file.
type Report struct {
	// Source is the parsed file.
	Source *Source

	// Template is the template the file was checked against.
	Template templates.Template

	// Mapping is the final column mapping.
	Mapping types.ColumnMapping

	// Rows are the data rows keyed by template key.
	Rows []types.Row

	// Result holds the per-cell errors.
	Result validation.Result

	// Duration is the time taken to run the pipeline.
	Duration time.Duration
}

// Valid reports whether every row passed validation.
func (r *Report) Valid() bool {
	return r.Result.IsValid
}

// =============================================================================
// IMPORTER STRUCTURE
// =============================================================================

// Importer runs the local pipeline.
type Importer struct {
	opts   ReadOptions
	logger *zap.SugaredLogger
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(i *Importer) {
		if l != nil {
			i.logger = l
		}
	}
}

// New creates an Importer that parses sources with opts.
func New(opts ReadOptions, options ...Option) *Importer {
	imp := &Importer{opts: opts, logger: logging.Nop()}
	for _, o := range options {
		o(imp)
	}
	return imp
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run checks the file at path against the template of type tplType.
//
// PARAMETERS:
//   - path: The file to check.
//   - tplType: The template to check against.
//   - overrides: Explicit header -> key mappings that win over suggestions.
//
// RETURNS:
//   - The report.
//   - An error if the file cannot be read or the mapping is incomplete.
//     When the mapping is incomplete the partial report (source, template
//     and mapping) is returned alongside the error.
func (imp *Importer) Run(path string, tplType templates.Type, overrides types.ColumnMapping) (*Report, error) {
	start := time.Now()
	tpl := templates.Get(tplType)

	imp.logger.Infof("Checking %s against template %s", path, tpl.Type)

	src, err := ReadSource(path, imp.opts)
	if err != nil {
		return nil, err
	}
	imp.logger.Debugf("Parsed %d rows and %d columns from %s", len(src.Rows), len(src.Headers), src.FileName)

	mapping := MergeMappings(templates.SuggestMappings(tpl, src.Headers), overrides)
	for _, h := range src.Headers {
		imp.logger.Debugf("Mapping %q -> %s", h, mapping[h])
	}

	report := &Report{Source: src, Template: tpl, Mapping: mapping}

	if err := templates.CheckMapping(tpl, src.Headers, mapping); err != nil {
		report.Duration = time.Since(start)
		return report, fmt.Errorf("cannot map %s: %w", src.FileName, err)
	}

	report.Rows = ApplyMappings(src.Headers, src.Rows, mapping)
	report.Result = validation.Validate(tpl.Columns, report.Rows)
	report.Duration = time.Since(start)

	if report.Result.IsValid {
		imp.logger.Infof("%s: %d rows, all valid", src.FileName, len(report.Rows))
	} else {
		imp.logger.Warnf("%s: %d of %d rows have errors", src.FileName, report.Result.InvalidCount, len(report.Rows))
	}

	return report, nil
}
