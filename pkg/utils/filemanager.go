// =============================================================================
// BRO.AI - File Manager Utility
// =============================================================================
//
// This module provides file utilities for the importer, including:
//   - Source format detection from file names
//   - Output directory management
//   - Output file naming
//   - Error log and import summary generation
//
// Reports are plain text so that they can be attached to a support ticket
// or opened on any machine.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/broai/internal/types"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager writes reports into an output directory.
type FileManager struct {
	// OutputDir is the directory where reports are placed.
	OutputDir string

	// now is the clock used for file names and timestamps.
	now func() time.Time
}

// NewFileManager creates a new FileManager writing into outputDir.
func NewFileManager(outputDir string) *FileManager {
	return &FileManager{OutputDir: outputDir, now: time.Now}
}

// EnsureOutputDir creates the output directory if it doesn't exist.
func (fm *FileManager) EnsureOutputDir() error {
	if err := os.MkdirAll(fm.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.OutputDir, err)
	}
	return nil
}

// =============================================================================
// SOURCE FORMAT
// =============================================================================

// DetectSourceFormat infers the format of an uploaded file from its name.
// Files ending in .csv are CSV; everything else is treated as a workbook.
func DetectSourceFormat(fileName string) types.SourceFormat {
	if strings.EqualFold(filepath.Ext(fileName), ".csv") {
		return types.SourceCSV
	}
	return types.SourceXLSX
}

// =============================================================================
// FILE NAMING
// =============================================================================

// OutputFileName generates an output file name from a format string, using
// the file manager clock for the time placeholders.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {time}      - Current time (HHMMSS)
//               {type}      - Template type
//               {original}  - Original file name (without extension)
//   - params: A map of placeholder values.
//   - ext: The extension to enforce, with the dot (".txt").
//
// RETURNS:
//   - The generated file name.
//
// EXAMPLE:
//   format: "{type}_{original}_{timestamp}"
//   params: {"type": "NF", "original": "compras"}
//   output: "NF_compras_20240115_143022.txt"
func (fm *FileManager) OutputFileName(format string, params map[string]string, ext string) string {
	return generateOutputFileName(fm.now(), format, params, ext)
}

func generateOutputFileName(now time.Time, format string, params map[string]string, ext string) string {
	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if ext != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
		result += ext
	}
	return result
}

// BaseName returns the file name without directory and extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry represents a single error log entry.
type ErrorLogEntry struct {
	FileName     string
	ErrorType    string
	ErrorMessage string
	RowNumber    int
	FieldName    string
	FieldValue   string
}

// WriteErrorLog writes error entries to a log file in the output directory.
//
// PARAMETERS:
//   - sourceName: The imported file the entries refer to. Used in the log
//     file name.
//   - entries: The error entries to write.
//
// RETURNS:
//   - The path to the error log file, or "" when there was nothing to write.
//   - An error if writing fails.
func (fm *FileManager) WriteErrorLog(sourceName string, entries []ErrorLogEntry) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}
	if err := fm.EnsureOutputDir(); err != nil {
		return "", err
	}

	now := fm.now()
	logFileName := generateOutputFileName(now, "error_log_{original}_{timestamp}",
		map[string]string{"original": BaseName(sourceName)}, ".txt")
	logPath := filepath.Join(fm.OutputDir, logFileName)

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "BRO.AI Importer - Error Log\n"+
		"Generated: %s\n"+
		"Source: %s\n"+
		"Total Errors: %d\n"+
		"================================================================================\n\n",
		now.Format("2006-01-02 15:04:05"),
		sourceName,
		len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Error #%d\n"+
			"  File:           %s\n"+
			"  Error Type:     %s\n"+
			"  Message:        %s\n",
			i+1,
			entry.FileName,
			entry.ErrorType,
			entry.ErrorMessage)

		if entry.RowNumber > 0 {
			fmt.Fprintf(writer, "  Row Number:     %d\n", entry.RowNumber)
		}
		if entry.FieldName != "" {
			fmt.Fprintf(writer, "  Field:          %s\n", entry.FieldName)
		}
		if entry.FieldValue != "" {
			fmt.Fprintf(writer, "  Value:          %s\n", entry.FieldValue)
		}
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Error Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}
	return logPath, nil
}

// =============================================================================
// IMPORT SUMMARY
// =============================================================================

// ImportSummary contains summary information about an import run.
type ImportSummary struct {
	StartTime    time.Time
	EndTime      time.Time
	SourceFile   string
	Template     string
	JobID        string
	TotalRows    int
	InvalidRows  int
	Mappings     map[string]string
	Confirmed    bool
	ErrorMessage string
}

// WriteSummaryLog writes an import summary to the output directory.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func (fm *FileManager) WriteSummaryLog(summary ImportSummary) (string, error) {
	if err := fm.EnsureOutputDir(); err != nil {
		return "", err
	}

	summaryFileName := fm.OutputFileName("import_summary_{original}_{timestamp}",
		map[string]string{"original": BaseName(summary.SourceFile)}, ".txt")
	summaryPath := filepath.Join(fm.OutputDir, summaryFileName)

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	status := "not confirmed"
	if summary.Confirmed {
		status = "confirmed"
	}

	fmt.Fprintf(writer, "BRO.AI Importer - Import Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Import:\n"+
		"  Source File:    %s\n"+
		"  Template:       %s\n"+
		"  Job ID:         %s\n"+
		"  Status:         %s\n"+
		"  Rows:           %d\n"+
		"  Invalid Rows:   %d\n\n",
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.SourceFile,
		summary.Template,
		summary.JobID,
		status,
		summary.TotalRows,
		summary.InvalidRows)

	if len(summary.Mappings) > 0 {
		writer.WriteString("Column Mappings:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		headers := make([]string, 0, len(summary.Mappings))
		for h := range summary.Mappings {
			headers = append(headers, h)
		}
		sort.Strings(headers)
		for _, h := range headers {
			fmt.Fprintf(writer, "  %-30s -> %s\n", h, summary.Mappings[h])
		}
		writer.WriteString("\n")
	}

	if summary.ErrorMessage != "" {
		fmt.Fprintf(writer, "Error: %s\n\n", summary.ErrorMessage)
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}
	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
