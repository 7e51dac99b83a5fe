package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/broai/internal/templates"
	"github.com/ginjaninja78/broai/internal/types"
)

func TestTable_RepairFlow(t *testing.T) {
	columns := templates.Get(templates.RECIPE).Columns
	table := NewTable(columns, []types.Row{{
		"produto_final": types.String("Pizza"),
		"ingrediente":   types.String("Queijo"),
		"quantidade":    types.String("abc"),
		"unidade":       types.String("g"),
	}})

	before := table.Validate()
	require.False(t, before.IsValid)

	require.NoError(t, table.SetCell(0, "quantidade", types.String("0,2")))
	after := table.Validate()
	assert.True(t, after.IsValid)

	// Earlier results are not affected by later edits.
	assert.Equal(t, 1, before.InvalidCount)
}

func TestTable_AddAndRemoveRows(t *testing.T) {
	columns := templates.Get(templates.RECIPE).Columns
	table := NewTable(columns, nil)

	idx := table.AddRow()
	assert.Equal(t, 0, idx)
	row := table.Rows()[0]
	for _, c := range columns {
		assert.Equal(t, types.String(""), row[c.Key])
	}

	res := table.Validate()
	assert.Equal(t, 1, res.InvalidCount)
	assert.Len(t, res.Errors[0], len(templates.Get(templates.RECIPE).RequiredKeys()))

	require.NoError(t, table.RemoveRow(0))
	assert.Equal(t, 0, table.Len())
	assert.True(t, table.Validate().IsValid)

	assert.Error(t, table.RemoveRow(0))
	assert.Error(t, table.SetCell(3, "unidade", types.String("g")))
}

func TestTable_RowsAreCopies(t *testing.T) {
	src := []types.Row{{"unidade": types.String("g")}}
	table := NewTable([]templates.Column{{Key: "unidade"}}, src)

	rows := table.Rows()
	rows[0]["unidade"] = types.String("xx")
	require.NoError(t, table.SetCell(0, "unidade", types.String("kg")))

	assert.Equal(t, types.String("g"), src[0]["unidade"])
	assert.Equal(t, types.String("xx"), rows[0]["unidade"])
	assert.Equal(t, types.String("kg"), table.Rows()[0]["unidade"])
}
