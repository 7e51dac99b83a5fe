// =============================================================================
// BRO.AI - Template Registry
// =============================================================================
//
// A template describes the target columns of one import type: which keys the
// imported rows carry, which are required, and which source header names are
// commonly used for each of them.
//
// SUPPORTED TYPES:
//   - PDV:    Point-of-sale sales export
//   - NF:     Incoming invoice (purchases)
//   - RECIPE: Recipe cost sheet (ficha técnica)
//
// The registry is built once at package initialization and never mutated.
// Get hands out copies so callers cannot change it either.
//
// =============================================================================

package templates

import (
	"strings"
)

// =============================================================================
// TYPES
// =============================================================================

// Type identifies an import template.
type Type string

const (
	PDV    Type = "PDV"
	NF     Type = "NF"
	RECIPE Type = "RECIPE"
)

// Types lists the supported template types in display order.
func Types() []Type {
	return []Type{PDV, NF, RECIPE}
}

// ParseType resolves a template name. Matching is case-insensitive and
// FICHA_TECNICA is accepted for RECIPE. Anything unknown resolves to RECIPE.
func ParseType(s string) Type {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PDV":
		return PDV
	case "NF":
		return NF
	case "RECIPE", "FICHA_TECNICA":
		return RECIPE
	default:
		return RECIPE
	}
}

// Column is one target column of a template.
type Column struct {
	// Name is the display label.
	Name string `json:"name"`

	// Key is the machine identifier, unique within the template.
	Key string `json:"key"`

	// Required marks columns every row must fill.
	Required bool `json:"required"`

	// SuggestedMappings are lowercase header synonyms, trimmed, non-empty and
	// without duplicates.
	SuggestedMappings []string `json:"suggestedMappings"`
}

// Template is the ordered set of target columns of an import type.
type Template struct {
	Type    Type     `json:"type"`
	Columns []Column `json:"columns"`
}

// Column returns the column with the given key.
func (t Template) Column(key string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// Keys returns the column keys in template order.
func (t Template) Keys() []string {
	keys := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		keys[i] = c.Key
	}
	return keys
}

// RequiredKeys returns the keys of the required columns in template order.
func (t Template) RequiredKeys() []string {
	var keys []string
	for _, c := range t.Columns {
		if c.Required {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

func (t Template) clone() Template {
	out := Template{Type: t.Type, Columns: make([]Column, len(t.Columns))}
	for i, c := range t.Columns {
		c.SuggestedMappings = append([]string(nil), c.SuggestedMappings...)
		out.Columns[i] = c
	}
	return out
}

// =============================================================================
// REGISTRY
// =============================================================================

// Get returns the template for the given type. Unknown types get the recipe
// template.
func Get(t Type) Template {
	tpl, ok := registry[t]
	if !ok {
		tpl = registry[RECIPE]
	}
	return tpl.clone()
}

// NormalizeMappings lowercases and trims every synonym, dropping blanks and
// duplicates while keeping first-seen order. It is idempotent.
func NormalizeMappings(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, s := range list {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func col(name, key string, required bool, synonyms ...string) Column {
	return Column{
		Name:              name,
		Key:               key,
		Required:          required,
		SuggestedMappings: NormalizeMappings(synonyms),
	}
}

var registry = map[Type]Template{
	PDV: {
		Type: PDV,
		Columns: []Column{
			col("Data da venda", "data_venda", true,
				"data", "date", "data venda", "dt", "dia", "data_venda"),
			col("Item vendido", "item", true,
				"item", "produto vendido", "descricao", "descrição", "nome", "item_nome"),
			col("Quantidade", "quantidade", true,
				"quantidade", "qtd", "qty", "qtde", "quant"),
			col("Valor total da venda", "valor_total", true,
				"valor", "total", "valor total", "amount", "venda", "valor_total"),
		},
	},
	NF: {
		Type: NF,
		Columns: []Column{
			col("Data de entrada", "data_entrada", true,
				"data", "date", "entrada", "dt entrada", "data_entrada"),
			col("Produto comprado", "produto", true,
				"produto", "item", "descricao", "descrição", "nome", "produto_nome"),
			col("Quantidade", "quantidade", true,
				"quantidade", "qtd", "qty", "qtde", "quant"),
			col("Unidade de medida", "unidade", true,
				"unidade", "und", "un", "kg", "g", "l", "ml", "cx", "lt"),
			col("Custo total", "custo_total", true,
				"custo", "valor", "total", "custo total", "valor total", "custo_total"),
			col("Fornecedor", "fornecedor", false,
				"fornecedor", "vendor", "emitente", "razao social", "razão social"),
			col("Número da nota fiscal", "nf_numero", false,
				"nf", "nota fiscal", "numero nf", "número nf", "invoice", "nf_numero"),
		},
	},
	RECIPE: {
		Type: RECIPE,
		Columns: []Column{
			col("Produto final", "produto_final", true,
				"produto final", "prato", "receita", "nome do prato", "produto_final"),
			// No "produto" synonym here: it would compete with produto_final.
			col("Ingrediente", "ingrediente", true,
				"ingrediente", "insumo", "matéria prima", "materia prima", "componente"),
			col("Quantidade do ingrediente", "quantidade", true,
				"quantidade", "qtd", "qty", "qtde", "quant"),
			col("Unidade de medida", "unidade", true,
				"unidade", "und", "un", "kg", "g", "l", "ml"),
			col("Rendimento", "rendimento", false,
				"rendimento", "porcoes", "porções", "yield"),
		},
	},
}
