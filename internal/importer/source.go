package importer

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/ginjaninja78/broai/internal/config"
	"github.com/ginjaninja78/broai/internal/csvparser"
	"github.com/ginjaninja78/broai/internal/types"
	"github.com/ginjaninja78/broai/internal/xlsxparser"
	"github.com/ginjaninja78/broai/pkg/utils"
)

// Source is a parsed upload: its headers in file order and its data rows
// keyed by header.
type Source struct {
	FileName string
	Format   types.SourceFormat
	Sheet    string
	Headers  []string
	Rows     []map[string]string
}

// ReadOptions controls how sources are parsed.
type ReadOptions struct {
	// CSV holds the delimiter and header layout. HeaderRows and DataStartRow
	// also apply to workbooks.
	CSV config.CSVSettings

	// Sheet selects a workbook sheet. Empty means the first regular sheet.
	Sheet string
}

// ReadSource parses the file at path. The format is chosen from the file
// extension: .csv is CSV, anything else is read as a workbook.
func ReadSource(path string, opts ReadOptions) (*Source, error) {
	format := utils.DetectSourceFormat(path)
	name := filepath.Base(path)

	switch format {
	case types.SourceCSV:
		data, err := csvparser.Parse(path, opts.CSV)
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV source: %w", err)
		}
		return &Source{FileName: name, Format: format, Headers: data.Headers, Rows: data.Rows}, nil
	default:
		data, err := xlsxparser.Parse(path, xlsxOptions(opts))
		if err != nil {
			return nil, fmt.Errorf("failed to parse workbook source: %w", err)
		}
		return &Source{FileName: name, Format: format, Sheet: data.Sheet, Headers: data.Headers, Rows: data.Rows}, nil
	}
}

// ReadSourceContent parses an uploaded file held in memory.
func ReadSourceContent(fileName string, content []byte, opts ReadOptions) (*Source, error) {
	format := utils.DetectSourceFormat(fileName)

	switch format {
	case types.SourceCSV:
		data, err := csvparser.ParseReader(bytes.NewReader(content), fileName, opts.CSV)
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV source: %w", err)
		}
		return &Source{FileName: fileName, Format: format, Headers: data.Headers, Rows: data.Rows}, nil
	default:
		data, err := xlsxparser.ParseReader(bytes.NewReader(content), fileName, xlsxOptions(opts))
		if err != nil {
			return nil, fmt.Errorf("failed to parse workbook source: %w", err)
		}
		return &Source{FileName: fileName, Format: format, Sheet: data.Sheet, Headers: data.Headers, Rows: data.Rows}, nil
	}
}

func xlsxOptions(opts ReadOptions) xlsxparser.Options {
	return xlsxparser.Options{
		Sheet:        opts.Sheet,
		HeaderRows:   opts.CSV.HeaderRows,
		DataStartRow: opts.CSV.DataStartRow,
	}
}

// Preview turns the first limit rows of the source into preview rows keyed
// by source header, the shape the import service returns before mapping.
// A limit <= 0 means all rows.
func (s *Source) Preview(limit int) []types.PreviewRow {
	n := len(s.Rows)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]types.PreviewRow, n)
	for i := 0; i < n; i++ {
		data := make(types.Row, len(s.Headers))
		for _, h := range s.Headers {
			data[h] = types.String(s.Rows[i][h])
		}
		out[i] = types.PreviewRow{RowNumber: i + 1, Data: data}
	}
	return out
}
