package templates

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ginjaninja78/broai/internal/types"
)

// SuggestMappings proposes a target key for every source header.
//
// Headers are processed in source order. Each header takes the first column,
// in template order, that is still unclaimed and whose key, display name or
// synonyms equal the header after lowercasing, trimming and accent folding.
// Headers with no match map to types.MappingIgnore.
func SuggestMappings(tpl Template, headers []string) types.ColumnMapping {
	mapping := make(types.ColumnMapping, len(headers))
	claimed := make(map[string]bool, len(tpl.Columns))

	for _, header := range headers {
		target := types.MappingIgnore
		h := FoldHeader(header)
		if h != "" {
			for _, c := range tpl.Columns {
				if claimed[c.Key] || !matchesColumn(c, h) {
					continue
				}
				target = c.Key
				claimed[c.Key] = true
				break
			}
		}
		mapping[header] = target
	}
	return mapping
}

func matchesColumn(c Column, folded string) bool {
	if FoldHeader(c.Key) == folded || FoldHeader(c.Name) == folded {
		return true
	}
	for _, s := range c.SuggestedMappings {
		if FoldHeader(s) == folded {
			return true
		}
	}
	return false
}

// FoldHeader lowercases, trims and strips diacritics, so that "Descrição"
// and "descricao" compare equal.
func FoldHeader(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
