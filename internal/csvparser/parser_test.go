package csvparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/broai/internal/config"
)

func defaultSettings() config.CSVSettings {
	return config.CSVSettings{Delimiter: ",", HeaderRows: 1, DataStartRow: 2}
}

func TestParseReader_Basic(t *testing.T) {
	input := "\xEF\xBB\xBFproduto,quantidade,preco\n" +
		"Produto A, 10 ,25.50\n" +
		"\n" +
		"Produto B,5\n"

	data, err := ParseReader(strings.NewReader(input), "vendas.csv", defaultSettings())
	require.NoError(t, err)

	assert.Equal(t, []string{"produto", "quantidade", "preco"}, data.Headers)
	assert.Equal(t, 2, data.RowCount)
	assert.Equal(t, 3, data.ColumnCount)
	assert.Equal(t, map[string]string{"produto": "Produto A", "quantidade": "10", "preco": "25.50"}, data.Rows[0])
	assert.Equal(t, "", data.Rows[1]["preco"])
	assert.Equal(t, "vendas.csv", data.SourceFile)
}

func TestParseReader_Semicolon(t *testing.T) {
	settings := defaultSettings()
	settings.Delimiter = ";"

	data, err := ParseReader(strings.NewReader("Item;Valor\nPizza;89,90\n"), "pdv.csv", settings)
	require.NoError(t, err)
	assert.Equal(t, "89,90", data.Rows[0]["Valor"])
}

func TestParseReader_MultiLineHeaders(t *testing.T) {
	settings := config.CSVSettings{Delimiter: ",", HeaderRows: 2, DataStartRow: 3}
	input := "Valor,,Data\nTotal,Qtd,Venda\n10,2,2024-01-15\n"

	data, err := ParseReader(strings.NewReader(input), "x.csv", settings)
	require.NoError(t, err)
	assert.Equal(t, []string{"Valor Total", "Qtd", "Data Venda"}, data.Headers)
	assert.Equal(t, "2", data.Rows[0]["Qtd"])
}

func TestParseReader_DuplicateAndBlankHeaders(t *testing.T) {
	data, err := ParseReader(strings.NewReader("nome,,nome\na,b,c\n"), "x.csv", defaultSettings())
	require.NoError(t, err)
	assert.Equal(t, []string{"nome", "Column_2", "nome_2"}, data.Headers)
	assert.Equal(t, "c", data.Rows[0]["nome_2"])
}

func TestParseReader_Empty(t *testing.T) {
	_, err := ParseReader(strings.NewReader(""), "x.csv", defaultSettings())
	assert.ErrorContains(t, err, "empty")
}

func TestParse_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nf.csv")
	require.NoError(t, os.WriteFile(path, []byte("produto,unidade\nTomate,kg\n"), 0644))

	data, err := Parse(path, defaultSettings())
	require.NoError(t, err)
	assert.Equal(t, "kg", data.Rows[0]["unidade"])

	_, err = Parse(filepath.Join(t.TempDir(), "missing.csv"), defaultSettings())
	assert.ErrorContains(t, err, "failed to open file")
}
