package runtime

import (
	"math"
	"strconv"
)

// ValueType represents the type of a runtime value.
type ValueType int

const (
	TypeNull ValueType = iota
	TypeBoolean
	TypeNumber
	TypeString
	TypeCallable
	TypeInstance
)

func (t ValueType) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeCallable:
		return "callable"
	case TypeInstance:
		return "instance"
	default:
		return "unknown"
	}
}

// Value is a runtime value. Only the field matching Type is meaningful.
type Value struct {
	Type     ValueType
	Bool     bool
	Number   float64
	Str      string
	Callable Callable
	Instance *Instance
}

var (
	Null  = &Value{Type: TypeNull}
	True  = &Value{Type: TypeBoolean, Bool: true}
	False = &Value{Type: TypeBoolean, Bool: false}
)

func NewNumber(n float64) *Value {
	return &Value{Type: TypeNumber, Number: n}
}

func NewString(s string) *Value {
	return &Value{Type: TypeString, Str: s}
}

func NewBool(b bool) *Value {
	if b {
		return True
	}
	return False
}

func NewCallable(c Callable) *Value {
	return &Value{Type: TypeCallable, Callable: c}
}

func NewInstanceValue(i *Instance) *Value {
	return &Value{Type: TypeInstance, Instance: i}
}

// FromLiteral converts a parsed literal (nil, bool, float64, string).
func FromLiteral(lit any) *Value {
	switch v := lit.(type) {
	case bool:
		return NewBool(v)
	case float64:
		return NewNumber(v)
	case string:
		return NewString(v)
	default:
		return Null
	}
}

// Truthy reports the value's truthiness: only false and null are falsy.
func (v *Value) Truthy() bool {
	switch v.Type {
	case TypeNull:
		return false
	case TypeBoolean:
		return v.Bool
	default:
		return true
	}
}

// String returns the display form used by print.
func (v *Value) String() string {
	switch v.Type {
	case TypeNull:
		return "null"
	case TypeBoolean:
		return strconv.FormatBool(v.Bool)
	case TypeNumber:
		return formatNumber(v.Number)
	case TypeString:
		return v.Str
	case TypeCallable:
		return v.Callable.String()
	case TypeInstance:
		return v.Instance.String()
	default:
		return "unknown"
	}
}

func formatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "nan"
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	case n == 0:
		return "0"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Equals compares without coercion. Callables and instances compare by
// identity.
func Equals(a, b *Value) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TypeNull:
		return true
	case TypeBoolean:
		return a.Bool == b.Bool
	case TypeNumber:
		return a.Number == b.Number
	case TypeString:
		return a.Str == b.Str
	case TypeCallable:
		return a.Callable == b.Callable
	case TypeInstance:
		return a.Instance == b.Instance
	}
	return false
}
