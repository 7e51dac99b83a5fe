// =============================================================================
// BRO.AI - Shared Types
// =============================================================================
//
// This package contains the types shared by the importer, the wizard, the
// recipe editor, the HTTP client and the mock backend. Keeping them here
// avoids import cycles between the consumers and the service implementations.
//
// JSON tags follow the wire shape of the BRO.AI API (camelCase).
//
// =============================================================================

package types

import (
	"fmt"
	"time"
)

// =============================================================================
// ROWS
// =============================================================================

// Row is one table row keyed by column key. A missing key reads as null.
type Row map[string]Value

// Get returns the cell for key, or Null() when the key is absent.
func (r Row) Get(key string) Value {
	return r[key]
}

// Clone returns a shallow copy. Values are immutable so this is a full copy.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// RowOf builds a Row from plain Go values, rejecting anything that is not a
// string, a number or nil.
func RowOf(m map[string]any) (Row, error) {
	row := make(Row, len(m))
	for k, x := range m {
		v, err := ValueOf(x)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", k, err)
		}
		row[k] = v
	}
	return row, nil
}

// CloneRows copies a slice of rows.
func CloneRows(rows []Row) []Row {
	if rows == nil {
		return nil
	}
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}

// =============================================================================
// IMPORT JOBS
// =============================================================================

// SourceFormat is the format of an uploaded file.
type SourceFormat string

const (
	SourceCSV  SourceFormat = "csv"
	SourceXLSX SourceFormat = "xlsx"
)

// ImportStatus is the lifecycle state of an import job on the server.
type ImportStatus string

const (
	ImportUploaded  ImportStatus = "uploaded"
	ImportParsing   ImportStatus = "parsing"
	ImportReady     ImportStatus = "ready"
	ImportConfirmed ImportStatus = "confirmed"
	ImportError     ImportStatus = "error"
)

// ImportJob is a server-side import job.
type ImportJob struct {
	ID           string       `json:"id"`
	Status       ImportStatus `json:"status"`
	CreatedAt    string       `json:"createdAt,omitempty"`
	ErrorMessage string       `json:"errorMessage,omitempty"`
}

// PreviewRow is one row of an import preview. RowNumber is 1-based.
type PreviewRow struct {
	RowNumber int      `json:"rowNumber"`
	Data      Row      `json:"data"`
	Issues    []string `json:"issues,omitempty"`
}

// Clone deep-copies the preview row.
func (p PreviewRow) Clone() PreviewRow {
	out := PreviewRow{RowNumber: p.RowNumber, Data: p.Data.Clone()}
	if p.Issues != nil {
		out.Issues = append([]string(nil), p.Issues...)
	}
	return out
}

// ImportPreview is the response of the preview endpoint.
type ImportPreview struct {
	Job     ImportJob    `json:"job"`
	Columns []string     `json:"columns"`
	Preview []PreviewRow `json:"preview"`
}

// CreateImportRequest is the payload that opens an import job.
type CreateImportRequest struct {
	Source   SourceFormat `json:"source"`
	FileName string       `json:"fileName"`
}

// ColumnMapping maps a source header to a target column key or MappingIgnore.
type ColumnMapping map[string]string

// MappingIgnore marks a source column that is not imported.
const MappingIgnore = "ignore"

// Clone copies the mapping.
func (m ColumnMapping) Clone() ColumnMapping {
	if m == nil {
		return nil
	}
	out := make(ColumnMapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ConfirmImportRequest is the payload that confirms an import job.
type ConfirmImportRequest struct {
	Mappings ColumnMapping `json:"mappings"`
}

// OKResponse is the acknowledgement returned by confirm and delete calls.
type OKResponse struct {
	OK bool `json:"ok"`
}

// =============================================================================
// RECIPES
// =============================================================================

// RecipeItem is one ingredient line of a recipe cost sheet.
type RecipeItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Qty      float64 `json:"qty"`
	Unit     string  `json:"unit"`
	CostUnit float64 `json:"costUnit"`
}

// Recipe is a cost sheet ("ficha técnica") for a sold item.
type Recipe struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	YieldQty   float64      `json:"yieldQty"`
	YieldUnit  string       `json:"yieldUnit"`
	SalePrice  float64      `json:"salePrice"`
	Items      []RecipeItem `json:"items"`
	ItemsCount int          `json:"itemsCount,omitempty"`
	UpdatedAt  *time.Time   `json:"updatedAt,omitempty"`
}

// Clone deep-copies the recipe.
func (r Recipe) Clone() Recipe {
	out := r
	if r.Items != nil {
		out.Items = append([]RecipeItem(nil), r.Items...)
	}
	if r.UpdatedAt != nil {
		t := *r.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}
