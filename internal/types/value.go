// =============================================================================
// BRO.AI - Cell Values
// =============================================================================
//
// Imported tables carry cells that are either text, a number, or empty. The
// Value type is a closed union over those three shapes so that a stray bool
// or nested object coming off the wire is rejected at decode time instead of
// drifting through validation as an untyped interface{}.
//
// WIRE FORMAT:
//   null        -> Null()
//   "12,5"      -> String("12,5")
//   12.5        -> Number(12.5)
//   true, {}, []-> decode error
//
// =============================================================================

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind identifies which member of the union a Value holds.
type Kind int

const (
	// KindNull is the zero Kind; the zero Value is therefore null.
	KindNull Kind = iota
	KindString
	KindNumber
)

// String returns the kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	default:
		return "null"
	}
}

// Value is a single table cell: string, number or null.
type Value struct {
	kind Kind
	str  string
	num  float64
}

// Null returns the empty cell.
func Null() Value { return Value{} }

// String returns a text cell.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric cell.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Kind reports which member of the union v holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the empty cell.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the text payload. It is "" for non-string cells.
func (v Value) Str() string { return v.str }

// Num returns the numeric payload. It is 0 for non-number cells.
func (v Value) Num() float64 { return v.num }

// String renders the cell the way it is shown to users: null is empty,
// numbers use the shortest representation that round-trips.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return nil, fmt.Errorf("cannot encode non-finite number %v", v.num)
		}
		return json.Marshal(v.num)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler. Only strings, numbers and null
// are accepted.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*v = Null()
		return nil
	}

	switch c := trimmed[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("invalid string cell: %w", err)
		}
		*v = String(s)
		return nil

	case c == '-' || (c >= '0' && c <= '9'):
		var f float64
		if err := json.Unmarshal(trimmed, &f); err != nil {
			return fmt.Errorf("invalid number cell: %w", err)
		}
		*v = Number(f)
		return nil

	default:
		return fmt.Errorf("unsupported cell value %s: want string, number or null", abbreviate(string(trimmed), 40))
	}
}

// ValueOf converts a plain Go value into a cell. It accepts nil, strings,
// every integer and float type, and Value itself.
func ValueOf(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case string:
		return String(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Number(float64(t)), nil
	case int8:
		return Number(float64(t)), nil
	case int16:
		return Number(float64(t)), nil
	case int32:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case uint:
		return Number(float64(t)), nil
	case uint8:
		return Number(float64(t)), nil
	case uint16:
		return Number(float64(t)), nil
	case uint32:
		return Number(float64(t)), nil
	case uint64:
		return Number(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Null(), fmt.Errorf("invalid json number %q: %w", t, err)
		}
		return Number(f), nil
	default:
		return Null(), fmt.Errorf("unsupported cell type %T: want string, number or nil", x)
	}
}

func abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
