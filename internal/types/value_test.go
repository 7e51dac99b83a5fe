package types

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_ZeroIsNull(t *testing.T) {
	var v Value
	assert.True(t, v.IsNull())
	assert.Equal(t, KindNull, v.Kind())
	assert.Equal(t, "", v.String())
}

func TestValue_DecodeRow(t *testing.T) {
	var row Row
	err := json.Unmarshal([]byte(`{"produto":"Produto A","quantidade":10,"preco":25.5,"data":null}`), &row)
	require.NoError(t, err)

	assert.Equal(t, String("Produto A"), row["produto"])
	assert.Equal(t, Number(10), row["quantidade"])
	assert.Equal(t, Number(25.5), row["preco"])
	assert.True(t, row["data"].IsNull())
	assert.True(t, row.Get("missing").IsNull())
}

func TestValue_DecodeRejectsOtherShapes(t *testing.T) {
	for _, raw := range []string{`{"a":true}`, `{"a":{"b":1}}`, `{"a":[1,2]}`} {
		var row Row
		err := json.Unmarshal([]byte(raw), &row)
		assert.Error(t, err, raw)
	}
}

func TestValue_EncodeRejectsNonFinite(t *testing.T) {
	_, err := json.Marshal(Number(math.Inf(1)))
	assert.Error(t, err)

	out, err := json.Marshal(Row{"a": Number(1.5), "b": String("x"), "c": Null()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1.5,"b":"x","c":null}`, string(out))
}

func TestValueOf(t *testing.T) {
	v, err := ValueOf(int64(3))
	require.NoError(t, err)
	assert.Equal(t, Number(3), v)

	v, err = ValueOf(nil)
	require.NoError(t, err)
	assert.True(t, v.IsNull())

	_, err = ValueOf(true)
	assert.Error(t, err)

	_, err = RowOf(map[string]any{"ok": "x", "bad": []string{"y"}})
	assert.ErrorContains(t, err, `column "bad"`)
}

func TestValue_StringRendering(t *testing.T) {
	assert.Equal(t, "12.5", Number(12.5).String())
	assert.Equal(t, "100", Number(100).String())
	assert.Equal(t, " G ", String(" G ").String())
}

func TestRow_CloneIsIndependent(t *testing.T) {
	orig := Row{"a": String("1")}
	cp := orig.Clone()
	cp["a"] = String("2")
	assert.Equal(t, String("1"), orig["a"])
}
