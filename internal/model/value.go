package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which scalar a Value holds.
type Kind uint8

const (
	KindString Kind = iota
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "string"
	}
}

// Value is a scalar parameter or input value: an integer, a float or a string.
// The zero Value is the empty string.
type Value struct {
	kind Kind
	i    int
	f    float64
	s    string
}

// Int returns an integer Value.
func Int(n int) Value { return Value{kind: KindInt, i: n} }

// Float returns a float Value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// ValueOf converts a decoded scalar (as produced by encoding/json or yaml.v3)
// into a Value. Types other than integers and floats become strings.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case Value:
		return x
	case int:
		return Int(x)
	case int64:
		return Int(int(x))
	case int32:
		return Int(int(x))
	case uint64:
		return Int(int(x))
	case float64:
		return Float(x)
	case float32:
		return Float(float64(x))
	case string:
		return String(x)
	case nil:
		return String("")
	default:
		return String(fmt.Sprint(x))
	}
}

// Kind reports the scalar kind.
func (v Value) Kind() Kind { return v.kind }

// IsNumeric reports whether v holds an integer or a float.
func (v Value) IsNumeric() bool { return v.kind == KindInt || v.kind == KindFloat }

// Int returns the integer value; floats are truncated. Strings report false.
func (v Value) Int() (int, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindFloat:
		return int(v.f), true
	}
	return 0, false
}

// Float returns the numeric value as a float64. Strings report false.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

// Abs returns the absolute value of a number. Strings are returned unchanged.
func (v Value) Abs() Value {
	switch v.kind {
	case KindInt:
		if v.i < 0 {
			return Int(-v.i)
		}
	case KindFloat:
		return Float(math.Abs(v.f))
	}
	return v
}

// NegAbs returns -|v| for numbers. Strings are returned unchanged.
func (v Value) NegAbs() Value {
	switch v.kind {
	case KindInt:
		if v.i > 0 {
			return Int(-v.i)
		}
	case KindFloat:
		return Float(-math.Abs(v.f))
	}
	return v
}

// String renders the value the way it appears in generated documents:
// integers in base 10, floats always with a fractional part ("3.0", "2.5").
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.Itoa(v.i)
	case KindFloat:
		if math.IsInf(v.f, 0) || math.IsNaN(v.f) {
			return strconv.FormatFloat(v.f, 'g', -1, 64)
		}
		s := strconv.FormatFloat(v.f, 'f', -1, 64)
		if !strings.ContainsAny(s, ".e") {
			s += ".0"
		}
		return s
	}
	return v.s
}

// MarshalJSON writes numbers as JSON numbers and strings as JSON strings.
// Integral floats keep a ".0" suffix so they decode back as floats.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInt:
		return []byte(strconv.Itoa(v.i)), nil
	case KindFloat:
		if math.IsInf(v.f, 0) || math.IsNaN(v.f) {
			return json.Marshal(v.String())
		}
		return []byte(v.String()), nil
	}
	return json.Marshal(v.s)
}

// UnmarshalJSON accepts a JSON number or string.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 || string(data) == "null" {
		*v = String("")
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode string value: %w", err)
		}
		*v = String(s)
		return nil
	}
	raw := string(data)
	if !strings.ContainsAny(raw, ".eE") {
		if n, err := strconv.Atoi(raw); err == nil {
			*v = Int(n)
			return nil
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// Booleans and other literals are kept as their text.
		*v = String(raw)
		return nil
	}
	*v = Float(f)
	return nil
}
