package decoding

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Objects reads v as a list of objects. v may be a native array or a string
// holding a JSON array. Elements that are not objects are dropped; anything
// unreadable yields an empty, non-nil slice.
func Objects(v any) []map[string]any {
	out := []map[string]any{}

	var items []any
	switch val := v.(type) {
	case []any:
		items = val
	case []map[string]any:
		return append(out, val...)
	case string:
		text := strings.TrimSpace(val)
		if text == "" {
			return out
		}
		if err := json.Unmarshal([]byte(text), &items); err != nil {
			// A single object serialized as a string
			var single map[string]any
			if err := json.Unmarshal([]byte(text), &single); err == nil {
				return append(out, single)
			}
			return out
		}
	case map[string]any:
		return append(out, val)
	default:
		return out
	}

	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

// Str returns the first key of m holding a usable scalar, trimmed and
// rendered as a string.
func Str(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := scalarString(m[key]); ok && s != "" {
			return s
		}
	}
	return ""
}

// Strs returns the first key of m holding a list of strings. A stringified
// JSON array or a single string are accepted. Blank entries are dropped.
// The result is never nil.
func Strs(m map[string]any, keys ...string) []string {
	for _, key := range keys {
		if list, ok := stringList(m[key]); ok && len(list) > 0 {
			return list
		}
	}
	return []string{}
}

// Int reads an integer from m. Numbers and numeric strings are accepted;
// fractions are rounded. ok is false when nothing numeric was found.
func Int(m map[string]any, key string) (int, bool) {
	switch val := m[key].(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0, false
		}
		return roundInt(val), true
	case json.Number:
		f, err := val.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return roundInt(f), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(val), "%")), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return roundInt(f), true
	default:
		return 0, false
	}
}

// roundInt rounds f, saturating at the int32 range so huge values keep their sign.
func roundInt(f float64) int {
	return int(math.Round(math.Max(math.MinInt32, math.Min(math.MaxInt32, f))))
}

// Object returns m[key] when it is an object, unwrapping a stringified one.
func Object(m map[string]any, key string) (map[string]any, bool) {
	switch val := m[key].(type) {
	case map[string]any:
		return val, true
	case string:
		var obj map[string]any
		if err := json.Unmarshal([]byte(strings.TrimSpace(val)), &obj); err == nil && obj != nil {
			return obj, true
		}
	}
	return nil, false
}

func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case json.Number:
		return val.String(), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return "", false
	}
}

func stringList(v any) ([]string, bool) {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := scalarString(item); ok && s != "" {
				out = append(out, s)
			}
		}
		return out, true
	case []string:
		out := make([]string, 0, len(val))
		for _, s := range val {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, true
	case string:
		text := strings.TrimSpace(val)
		if text == "" {
			return nil, false
		}
		if strings.HasPrefix(text, "[") {
			var items []any
			if err := json.Unmarshal([]byte(text), &items); err == nil {
				return stringList(items)
			}
		}
		return []string{text}, true
	default:
		return nil, false
	}
}
