package value

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
)

// FromAny converts a decoded YAML/TOML scalar or sequence into a Value.
func FromAny(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Value{}, fmt.Errorf("value: null is not supported")
	case Value:
		return v.Clone(), nil
	case bool:
		return Bool(v), nil
	case int:
		return Int(int64(v)), nil
	case int8:
		return Int(int64(v)), nil
	case int16:
		return Int(int64(v)), nil
	case int32:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case uint:
		return fromUint(uint64(v))
	case uint8:
		return Int(int64(v)), nil
	case uint16:
		return Int(int64(v)), nil
	case uint32:
		return Int(int64(v)), nil
	case uint64:
		return fromUint(v)
	case float32:
		return Float(float64(v)), nil
	case float64:
		return Float(v), nil
	case string:
		return String(v), nil
	case time.Time:
		// TOML may decode unquoted timestamps; keep them as text.
		return String(v.Format(time.RFC3339)), nil
	case []string:
		return List(v...), nil
	case []any:
		items := make([]string, 0, len(v))
		for i, item := range v {
			s, err := scalarText(item)
			if err != nil {
				return Value{}, fmt.Errorf("value: list item %d: %w", i, err)
			}
			items = append(items, s)
		}
		return List(items...), nil
	case map[string]string:
		return Table(v), nil
	case map[string]any:
		table := make(map[string]string, len(v))
		for k, item := range v {
			s, err := scalarText(item)
			if err != nil {
				return Value{}, fmt.Errorf("value: table entry %q: %w", k, err)
			}
			table[k] = s
		}
		return Table(table), nil
	default:
		return Value{}, fmt.Errorf("value: unsupported type %T", raw)
	}
}

func fromUint(v uint64) (Value, error) {
	if v > math.MaxInt64 {
		return Value{}, fmt.Errorf("value: %d overflows int64", v)
	}
	return Int(int64(v)), nil
}

func scalarText(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(v), nil
	default:
		return "", fmt.Errorf("unsupported element type %T", raw)
	}
}

// Any converts v into a plain Go value suitable for YAML/TOML encoding.
func (v Value) Any() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindList:
		out := make([]any, len(v.list))
		for i, s := range v.list {
			out[i] = s
		}
		return out
	case KindTable:
		out := make(map[string]any, len(v.table))
		for k, s := range v.table {
			out[k] = s
		}
		return out
	default:
		return nil
	}
}

// ParseAs parses CLI text into a value of the given kind. Lists use shell
// quoting rules; tables take space separated key=value pairs.
func ParseAs(kind Kind, raw string) (Value, error) {
	switch kind {
	case KindBool:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "1", "true", "yes", "on":
			return Bool(true), nil
		case "0", "false", "no", "off", "":
			return Bool(false), nil
		}
		return Value{}, fmt.Errorf("value: invalid bool %q", raw)
	case KindInt:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("value: invalid int %q: %w", raw, err)
		}
		return Int(n), nil
	case KindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return Value{}, fmt.Errorf("value: invalid float %q: %w", raw, err)
		}
		return Float(f), nil
	case KindString:
		return String(raw), nil
	case KindList:
		items, err := shellquote.Split(raw)
		if err != nil {
			return Value{}, fmt.Errorf("value: invalid list %q: %w", raw, err)
		}
		return List(items...), nil
	case KindTable:
		items, err := shellquote.Split(raw)
		if err != nil {
			return Value{}, fmt.Errorf("value: invalid table %q: %w", raw, err)
		}
		table := make(map[string]string, len(items))
		for _, item := range items {
			k, v, ok := strings.Cut(item, "=")
			if !ok || strings.TrimSpace(k) == "" {
				return Value{}, fmt.Errorf("value: table entry %q must be key=value", item)
			}
			table[strings.TrimSpace(k)] = v
		}
		return Table(table), nil
	default:
		return Value{}, fmt.Errorf("value: cannot parse into %s", kind)
	}
}

// Guess infers a kind for CLI text with no known template.
func Guess(raw string) Value {
	trimmed := strings.TrimSpace(raw)
	switch strings.ToLower(trimmed) {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return Int(n)
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && strings.ContainsAny(trimmed, ".eE") {
		return Float(f)
	}
	return String(raw)
}

// FromMap converts a decoded document section into a Map, reporting every
// key that failed to convert.
func FromMap(raw map[string]any) (Map, []error) {
	out := make(Map, len(raw))
	var errs []error
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, err := FromAny(raw[k])
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", k, err))
			continue
		}
		out[k] = v
	}
	return out, errs
}

// ToMap converts a Map into plain values for encoding.
func (m Map) ToMap() map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.Any()
	}
	return out
}
