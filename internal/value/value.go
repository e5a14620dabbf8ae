package value

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	// KindTable is only produced for the keybinding table.
	KindTable
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindTable:
		return "table"
	default:
		return "invalid"
	}
}

// Value is a configuration or layout attribute value.
type Value struct {
	kind  Kind
	b     bool
	i     int64
	f     float64
	s     string
	list  []string
	table map[string]string
}

func Bool(v bool) Value      { return Value{kind: KindBool, b: v} }
func Int(v int64) Value      { return Value{kind: KindInt, i: v} }
func Float(v float64) Value  { return Value{kind: KindFloat, f: v} }
func String(v string) Value  { return Value{kind: KindString, s: v} }
func List(v ...string) Value { return Value{kind: KindList, list: slices.Clone(v)} }

// Table wraps a string->string mapping. The map is copied.
func Table(v map[string]string) Value {
	out := make(map[string]string, len(v))
	maps.Copy(out, v)
	return Value{kind: KindTable, table: out}
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsValid() bool  { return v.kind != KindInvalid }
func (v Value) Bool() bool     { return v.kind == KindBool && v.b }
func (v Value) Int() int64     { return v.i }
func (v Value) Float() float64 { return v.f }
func (v Value) Str() string    { return v.s }

// List returns a copy of the list variant.
func (v Value) List() []string {
	if v.kind != KindList {
		return nil
	}
	return slices.Clone(v.list)
}

// Table returns a copy of the table variant.
func (v Value) Table() map[string]string {
	if v.kind != KindTable {
		return nil
	}
	out := make(map[string]string, len(v.table))
	maps.Copy(out, v.table)
	return out
}

// IsZero reports whether the value is empty or falsy.
func (v Value) IsZero() bool {
	switch v.kind {
	case KindBool:
		return !v.b
	case KindInt:
		return v.i == 0
	case KindFloat:
		return v.f == 0
	case KindString:
		return v.s == ""
	case KindList:
		return len(v.list) == 0
	case KindTable:
		return len(v.table) == 0
	default:
		return true
	}
}

// Equal compares kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindList:
		return slices.Equal(v.list, o.list)
	case KindTable:
		return maps.Equal(v.table, o.table)
	default:
		return true
	}
}

// Clone returns a value that shares no backing storage with v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindList:
		return List(v.list...)
	case KindTable:
		return Table(v.table)
	default:
		return v
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	case KindList:
		return strings.Join(v.list, ", ")
	case KindTable:
		keys := slices.Sorted(maps.Keys(v.table))
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"="+v.table[k])
		}
		return strings.Join(parts, ", ")
	default:
		return "<invalid>"
	}
}

// GoString renders the value with its kind, for test failures.
func (v Value) GoString() string {
	return fmt.Sprintf("value.%s(%s)", v.kind, v.String())
}

// Map is a string-keyed set of values.
type Map map[string]Value

// Clone deep-copies the map.
func (m Map) Clone() Map {
	if m == nil {
		return nil
	}
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v.Clone()
	}
	return out
}

// Keys returns the sorted keys of m.
func (m Map) Keys() []string {
	return slices.Sorted(maps.Keys(m))
}
