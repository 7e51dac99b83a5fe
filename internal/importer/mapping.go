// =============================================================================
// BRO.AI - Column Mapping
// =============================================================================
//
// This module turns source rows (keyed by the headers of the uploaded file)
// into template rows (keyed by template column keys), following a column
// mapping chosen by the user or suggested by the template registry.
//
// MAPPING RULES:
//   - A header mapped to "ignore" is dropped.
//   - A header mapped to a template key puts its value under that key.
//   - Template keys no header maps to are absent and read as null.
//   - When two headers map to the same key, the first in column order wins.
//
// =============================================================================

package importer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ginjaninja78/broai/internal/types"
)

// ApplyMappings converts rows keyed by source header into rows keyed by
// template key. Cell values stay strings; the validator decides whether
// they parse.
func ApplyMappings(headers []string, rows []map[string]string, mapping types.ColumnMapping) []types.Row {
	out := make([]types.Row, len(rows))
	for i, src := range rows {
		row := make(types.Row, len(headers))
		for _, h := range headers {
			target := strings.TrimSpace(mapping[h])
			if target == "" || target == types.MappingIgnore {
				continue
			}
			if _, taken := row[target]; taken {
				continue
			}
			row[target] = types.String(src[h])
		}
		out[i] = row
	}
	return out
}

// ApplyPreviewMappings does the same for preview rows returned by the import
// service, keeping row numbers and issues. Headers are read in column order;
// headers missing from columns follow in sorted order.
func ApplyPreviewMappings(columns []string, preview []types.PreviewRow, mapping types.ColumnMapping) []types.PreviewRow {
	out := make([]types.PreviewRow, len(preview))
	for i, p := range preview {
		mapped := p.Clone()
		mapped.Data = make(types.Row, len(p.Data))
		for _, header := range headerOrder(columns, p.Data) {
			target := strings.TrimSpace(mapping[header])
			if target == "" || target == types.MappingIgnore {
				continue
			}
			if _, taken := mapped.Data[target]; taken {
				continue
			}
			mapped.Data[target] = p.Data[header]
		}
		out[i] = mapped
	}
	return out
}

// headerOrder lists the headers of data, columns first.
func headerOrder(columns []string, data types.Row) []string {
	order := make([]string, 0, len(data))
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if _, ok := data[c]; ok && !seen[c] {
			seen[c] = true
			order = append(order, c)
		}
	}
	var rest []string
	for h := range data {
		if !seen[h] {
			rest = append(rest, h)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

// ParseMappingFlags parses "header=key" pairs as given on the command line.
// The header may contain spaces; the last "=" separates it from the key.
func ParseMappingFlags(pairs []string) (types.ColumnMapping, error) {
	mapping := make(types.ColumnMapping, len(pairs))
	for _, pair := range pairs {
		idx := strings.LastIndex(pair, "=")
		if idx <= 0 {
			return nil, fmt.Errorf("invalid mapping %q: want header=key", pair)
		}
		header := strings.TrimSpace(pair[:idx])
		key := strings.TrimSpace(pair[idx+1:])
		if header == "" || key == "" {
			return nil, fmt.Errorf("invalid mapping %q: want header=key", pair)
		}
		mapping[header] = key
	}
	return mapping, nil
}

// MergeMappings returns base with overrides applied on top. Neither input is
// modified.
func MergeMappings(base, overrides types.ColumnMapping) types.ColumnMapping {
	out := base.Clone()
	if out == nil {
		out = make(types.ColumnMapping, len(overrides))
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}
