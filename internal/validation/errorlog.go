package validation

import (
	"github.com/ginjaninja78/broai/internal/types"
	"github.com/ginjaninja78/broai/pkg/utils"
)

// ErrorLogEntries converts a result into error log entries. Row numbers are
// 1-based and the offending cell value is included when the row is known.
func ErrorLogEntries(fileName string, rows []types.Row, result Result) []utils.ErrorLogEntry {
	flat := result.Flatten()
	entries := make([]utils.ErrorLogEntry, 0, len(flat))
	for _, e := range flat {
		entry := utils.ErrorLogEntry{
			FileName:     fileName,
			ErrorType:    "validation",
			ErrorMessage: e.Message,
			RowNumber:    e.Row + 1,
			FieldName:    e.Key,
		}
		if e.Row < len(rows) {
			entry.FieldValue = rows[e.Row].Get(e.Key).String()
		}
		entries = append(entries, entry)
	}
	return entries
}

// WriteErrorLog writes the cell errors of a result to the output directory
// managed by fm and returns the log path. Nothing is written for a valid
// result.
func WriteErrorLog(fm *utils.FileManager, fileName string, rows []types.Row, result Result) (string, error) {
	return fm.WriteErrorLog(fileName, ErrorLogEntries(fileName, rows, result))
}
