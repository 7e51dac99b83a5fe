package templates

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/broai/internal/types"
)

func TestCheckMapping(t *testing.T) {
	tpl := Get(PDV)
	columns := []string{"Data", "Produto", "Qtd", "Valor", "Obs"}
	complete := types.ColumnMapping{
		"Data":    "data_venda",
		"Produto": "item",
		"Qtd":     "quantidade",
		"Valor":   "valor_total",
		"Obs":     types.MappingIgnore,
	}

	require.NoError(t, CheckMapping(tpl, columns, complete))

	tests := []struct {
		name   string
		mutate func(types.ColumnMapping) types.ColumnMapping
		want   string
	}{
		{"nil", func(types.ColumnMapping) types.ColumnMapping { return nil }, "no mappings set"},
		{"unmapped column", func(m types.ColumnMapping) types.ColumnMapping { delete(m, "Obs"); return m }, `column "Obs" has no target`},
		{"blank target", func(m types.ColumnMapping) types.ColumnMapping { m["Obs"] = " "; return m }, `column "Obs" has no target`},
		{"unknown field", func(m types.ColumnMapping) types.ColumnMapping { m["Obs"] = "observacao"; return m }, `unknown field "observacao"`},
		{"duplicate target", func(m types.ColumnMapping) types.ColumnMapping { m["Obs"] = "item"; return m }, `field "item" is mapped from both`},
		{"missing required", func(m types.ColumnMapping) types.ColumnMapping { m["Valor"] = types.MappingIgnore; return m }, "required fields not mapped: valor_total"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckMapping(tpl, columns, tt.mutate(complete.Clone()))
			var mErr *MappingError
			require.True(t, errors.As(err, &mErr))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCheckMapping_SuggestionsCanBeIncomplete(t *testing.T) {
	tpl := Get(NF)
	columns := []string{"produto", "qtd"}
	err := CheckMapping(tpl, columns, SuggestMappings(tpl, columns))
	assert.ErrorContains(t, err, "required fields not mapped: custo_total, data_entrada, unidade")
}
