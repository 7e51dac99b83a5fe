// =============================================================================
// BRO.AI - Row Validator
// =============================================================================
//
// This module validates imported rows against the columns of a template.
//
// RULES (applied per row, per column, in order):
//   1. Required: a required column with an empty cell (null or whitespace)
//      gets "Required" and no further checks for that cell.
//   2. Numeric: the keys quantidade, valor_total, custo_total and rendimento
//      must parse as a finite number when filled. A comma is accepted as the
//      decimal separator ("12,5").
//   3. Unit: the key unidade, when filled, must be one of g, kg, ml, l, un,
//      und after trimming and lowercasing.
//
// ERROR HANDLING:
//   - Cell errors are data, not Go errors. They are collected per row and
//     never stop validation of the other rows.
//   - Validate is pure: it never mutates its inputs and the same inputs
//     always give the same result.
//
// =============================================================================

package validation

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ginjaninja78/broai/internal/templates"
	"github.com/ginjaninja78/broai/internal/types"
)

// =============================================================================
// MESSAGES
// =============================================================================

const (
	MsgRequired      = "Required"
	MsgInvalidNumber = "Invalid number"
	MsgInvalidUnit   = "Unit outside standard (g, kg, ml, l, un)"
)

// numericKeys are the column keys that must hold numbers.
var numericKeys = map[string]bool{
	"quantidade":  true,
	"valor_total": true,
	"custo_total": true,
	"rendimento":  true,
}

// unitKey is the column key checked against allowedUnits.
const unitKey = "unidade"

// allowedUnits is the unit allow-set. "und" is accepted even though the
// message lists only the canonical spellings.
var allowedUnits = map[string]bool{
	"g":   true,
	"kg":  true,
	"ml":  true,
	"l":   true,
	"un":  true,
	"und": true,
}

// =============================================================================
// RESULT TYPES
// =============================================================================

// CellError is the problem found in one cell.
type CellError struct {
	Message string `json:"message"`
}

// RowErrors maps a column key to its cell error.
type RowErrors map[string]CellError

// Result is the outcome of validating a table.
type Result struct {
	// Errors maps a 0-based row index to the errors of that row. Rows without
	// errors are absent.
	Errors map[int]RowErrors `json:"errors"`

	// InvalidCount is the number of rows with at least one error.
	InvalidCount int `json:"invalidCount"`

	// IsValid is InvalidCount == 0.
	IsValid bool `json:"isValid"`
}

// RowError is one flattened cell error, for reports.
type RowError struct {
	// Row is the 0-based row index.
	Row     int    `json:"row"`
	Key     string `json:"key"`
	Message string `json:"message"`
}

// Flatten lists every cell error ordered by row, then column key.
func (r Result) Flatten() []RowError {
	rows := make([]int, 0, len(r.Errors))
	for idx := range r.Errors {
		rows = append(rows, idx)
	}
	sort.Ints(rows)

	var out []RowError
	for _, idx := range rows {
		keys := make([]string, 0, len(r.Errors[idx]))
		for k := range r.Errors[idx] {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, RowError{Row: idx, Key: k, Message: r.Errors[idx][k].Message})
		}
	}
	return out
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks every row against the given columns.
//
// PARAMETERS:
//   - columns: The template columns that drive the rules.
//   - rows: The rows to check, keyed by column key.
//
// RETURNS:
//   - The per-row errors and the overall validity.
func Validate(columns []templates.Column, rows []types.Row) Result {
	errs := make(map[int]RowErrors)

	for idx, row := range rows {
		rowErrs := make(RowErrors)

		for _, col := range columns {
			v := row.Get(col.Key)
			empty := isEmpty(v)

			if col.Required && empty {
				rowErrs[col.Key] = CellError{Message: MsgRequired}
				continue
			}
			if empty {
				continue
			}

			if numericKeys[col.Key] {
				if _, ok := ParseNumber(v); !ok {
					rowErrs[col.Key] = CellError{Message: MsgInvalidNumber}
				}
			}

			if col.Key == unitKey && !IsAllowedUnit(v.String()) {
				rowErrs[col.Key] = CellError{Message: MsgInvalidUnit}
			}
		}

		if len(rowErrs) > 0 {
			errs[idx] = rowErrs
		}
	}

	return Result{
		Errors:       errs,
		InvalidCount: len(errs),
		IsValid:      len(errs) == 0,
	}
}

// isEmpty reports whether a cell counts as unfilled.
func isEmpty(v types.Value) bool {
	switch v.Kind() {
	case types.KindNull:
		return true
	case types.KindString:
		return strings.TrimSpace(v.Str()) == ""
	default:
		return false
	}
}

// decimalPattern is the plain decimal notation accepted in cells. Go literal
// forms such as "1_000" or "0x1p3" do not match.
var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseNumber converts a cell to a finite number.
//
// Numbers pass through when finite. Strings have their first comma replaced
// by a dot and are trimmed; blank strings and anything that is not a plain
// decimal with a finite value are rejected.
func ParseNumber(v types.Value) (float64, bool) {
	var f float64
	switch v.Kind() {
	case types.KindNumber:
		f = v.Num()
	case types.KindString:
		s := strings.TrimSpace(strings.Replace(v.Str(), ",", ".", 1))
		if !decimalPattern.MatchString(s) {
			return 0, false
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// IsAllowedUnit reports whether a unit is in the allow-set, ignoring case
// and surrounding whitespace.
func IsAllowedUnit(unit string) bool {
	return allowedUnits[strings.ToLower(strings.TrimSpace(unit))]
}

// FormatErrors formats a result for display.
//
// PARAMETERS:
//   - columns: Used to print column display names next to keys.
//   - result: The validation result.
//
// RETURNS:
//   - A multi-line string, one cell error per line, with 1-based row numbers.
func FormatErrors(columns []templates.Column, result Result) string {
	if result.IsValid {
		return "No validation errors."
	}

	names := make(map[string]string, len(columns))
	for _, c := range columns {
		names[c.Key] = c.Name
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Validation found %d row(s) with errors:\n\n", result.InvalidCount))
	for i, e := range result.Flatten() {
		label := e.Key
		if n, ok := names[e.Key]; ok {
			label = fmt.Sprintf("%s (%s)", n, e.Key)
		}
		builder.WriteString(fmt.Sprintf("%d. Row %d, %s: %s\n", i+1, e.Row+1, label, e.Message))
	}
	return builder.String()
}
