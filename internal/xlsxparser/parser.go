// =============================================================================
// BRO.AI - XLSX Source Parser
// =============================================================================
//
// This module reads spreadsheet uploads (.xlsx) into headers and rows, the
// same shape the CSV parser produces, so that the rest of the importer does
// not care which format the user picked.
//
// SHEET SELECTION:
//   - When Options.Sheet is set, that sheet is read.
//   - Otherwise the first sheet whose name does not start with "_" is read.
//     Sheets prefixed with "_" are treated as helper/lookup sheets.
//
// Cells are read with their displayed formatting, so a number typed as
// "12,5" in a Brazilian locale sheet arrives as that text and is parsed by
// the validator like any CSV value.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/broai/internal/csvparser"
)

// =============================================================================
// OPTIONS AND RESULT
// =============================================================================

// Options controls how a workbook is read.
type Options struct {
	// Sheet is the sheet to read. Empty means the first regular sheet.
	Sheet string

	// HeaderRows is the number of header rows. Default: 1
	HeaderRows int

	// DataStartRow is the 1-based row where data begins.
	// Default: HeaderRows + 1
	DataStartRow int
}

func (o Options) withDefaults() Options {
	if o.HeaderRows <= 0 {
		o.HeaderRows = 1
	}
	if o.DataStartRow <= o.HeaderRows {
		o.DataStartRow = o.HeaderRows + 1
	}
	return o
}

// SheetData is the parsed content of one sheet.
type SheetData struct {
	// Headers are the column headers in sheet order.
	Headers []string

	// Rows contains the data rows as maps of header -> value.
	Rows []map[string]string

	// Sheet is the name of the sheet that was read.
	Sheet string

	// SourceFile is the name of the workbook.
	SourceFile string

	RowCount    int
	ColumnCount int
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a workbook from disk.
//
// PARAMETERS:
//   - path: The path to the .xlsx file.
//   - opts: Sheet and header settings.
//
// RETURNS:
//   - The parsed sheet.
//   - An error if the file cannot be opened or has no readable sheet.
func Parse(path string, opts Options) (*SheetData, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseWorkbook(f, path, opts)
}

// ParseReader reads a workbook from r, typically an uploaded file's content.
func ParseReader(r io.Reader, sourceName string, opts Options) (*SheetData, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseWorkbook(f, sourceName, opts)
}

// ListSheets returns the names of the sheets of a workbook in tab order.
func ListSheets(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

func parseWorkbook(f *excelize.File, sourceName string, opts Options) (*SheetData, error) {
	opts = opts.withDefaults()

	sheet, err := pickSheet(f, opts.Sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet '%s': %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet '%s' is empty", sheet)
	}

	headers, err := csvparser.ExtractHeaders(rows, opts.HeaderRows)
	if err != nil {
		return nil, fmt.Errorf("failed to extract headers: %w", err)
	}

	data := &SheetData{
		Headers:     headers,
		Rows:        []map[string]string{},
		Sheet:       sheet,
		SourceFile:  sourceName,
		ColumnCount: len(headers),
	}

	for i := opts.DataStartRow - 1; i < len(rows); i++ {
		if csvparser.IsRowEmpty(rows[i]) {
			continue
		}
		data.Rows = append(data.Rows, csvparser.RowToMap(headers, rows[i]))
	}
	data.RowCount = len(data.Rows)

	return data, nil
}

// pickSheet resolves the sheet to read.
func pickSheet(f *excelize.File, requested string) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}

	if requested != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, requested) {
				return s, nil
			}
		}
		return "", fmt.Errorf("sheet '%s' not found (available: %s)", requested, strings.Join(sheets, ", "))
	}

	for _, s := range sheets {
		if !strings.HasPrefix(s, "_") {
			return s, nil
		}
	}
	return "", fmt.Errorf("workbook has no regular sheets")
}
