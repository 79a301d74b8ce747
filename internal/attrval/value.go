// Package attrval reads attribute values out of the loosely shaped maps both
// input datasets are made of. A logical attribute may arrive as a bare scalar
// or as a wrapper map whose payload sits under any of several known sub-keys;
// every accessor here tries an ordered priority list instead of re-deriving
// the unwrap logic at each call site.
package attrval

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// preferredKeys is the priority order of wrapper sub-keys the survey tool
// writes payloads under.
var preferredKeys = []string{"-Imported", "assessment", "button_added", "multi_added", "tagtext", "value", "name", "id"}

// nestedKeys is the shorter list tried one level deeper when a payload is
// itself a wrapper.
var nestedKeys = []string{"tagtext", "value", "name", "id"}

// Value is a tagged view over a decoded JSON node: a scalar, a wrapper map,
// or absent.
type Value struct {
	raw any
}

// Of wraps a decoded JSON value.
func Of(raw any) Value {
	return Value{raw: raw}
}

// IsNil reports whether there is no underlying value.
func (v Value) IsNil() bool {
	return v.raw == nil
}

// Map returns the underlying wrapper map, or nil for scalars.
func (v Value) Map() map[string]any {
	m, _ := v.raw.(map[string]any)
	return m
}

// Raw returns the underlying decoded value.
func (v Value) Raw() any {
	return v.raw
}

// String extracts a string from the value: scalars stringify directly, and
// wrapper maps are searched through the preferred sub-keys (one nesting level
// deep), then through any remaining entries. Returns def when nothing
// usable is found.
func (v Value) String(def string) string {
	if v.raw == nil {
		return def
	}
	m, ok := v.raw.(map[string]any)
	if !ok {
		return scalarString(v.raw)
	}

	for _, key := range preferredKeys {
		inner, present := m[key]
		if !present {
			continue
		}
		if s, ok := unwrapScalar(inner); ok {
			return s
		}
	}

	// No preferred key matched: take the first usable payload.
	for _, inner := range m {
		if s, ok := unwrapScalar(inner); ok {
			return s
		}
	}
	return def
}

// Float extracts a numeric payload, accepting numbers and numeric strings.
func (v Value) Float() (float64, bool) {
	s := v.String("")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Bool extracts a boolean payload, accepting bools, "true"/"yes"/"proposed"
// strings, and the numeric 1.
func (v Value) Bool() bool {
	switch t := v.raw.(type) {
	case bool:
		return t
	case float64:
		return t == 1
	case int:
		return t == 1
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "proposed":
			return true
		}
		return false
	}
	s := strings.ToLower(v.String(""))
	return s == "true" || s == "yes" || s == "proposed" || s == "1"
}

// unwrapScalar resolves one payload: scalars stringify, wrapper maps are
// probed for the nested sub-keys and finally any non-nil entry.
func unwrapScalar(inner any) (string, bool) {
	if inner == nil {
		return "", false
	}
	m, ok := inner.(map[string]any)
	if !ok {
		return scalarString(inner), true
	}
	for _, key := range nestedKeys {
		if sub, present := m[key]; present && sub != nil {
			if _, isMap := sub.(map[string]any); !isMap {
				return scalarString(sub), true
			}
		}
	}
	for _, sub := range m {
		if sub == nil {
			continue
		}
		if _, isMap := sub.(map[string]any); !isMap {
			return scalarString(sub), true
		}
	}
	return "", false
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// JSON numbers decode as float64; render integers without the
		// trailing ".0" so pole tags compare cleanly.
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// First returns the first attribute in names that yields a non-empty string
// from attrs, honoring the wrapper priority order.
func First(attrs map[string]any, names ...string) string {
	for _, name := range names {
		if s := Of(attrs[name]).String(""); s != "" {
			return s
		}
	}
	return ""
}

// FirstValue returns the first attribute in names that is present at all,
// wrapped, along with its name. Used when the caller needs the raw shape,
// not just a string.
func FirstValue(attrs map[string]any, names ...string) (Value, string) {
	for _, name := range names {
		if raw, present := attrs[name]; present && raw != nil {
			return Of(raw), name
		}
	}
	return Value{}, ""
}

// MapAt returns attrs[name] as a map when it is one.
func MapAt(attrs map[string]any, name string) map[string]any {
	m, _ := attrs[name].(map[string]any)
	return m
}

// SliceOfMaps normalizes a collection that may be a JSON array or a keyed
// map into a slice of its map elements, skipping non-map entries. Both
// datasets store wire collections in either shape.
func SliceOfMaps(raw any) []map[string]any {
	switch t := raw.(type) {
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, e := range t {
			if m, ok := e.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]map[string]any, 0, len(t))
		for _, k := range keys {
			if m, ok := t[k].(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

// SortedKeys returns the keys of m in sorted order so callers iterate keyed
// collections deterministically.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
