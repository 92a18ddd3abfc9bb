// Package config compiles a nested default-option tree into a fast runtime
// store: boolean options share one 64-bit mask, everything else lives in a
// payload map keyed by dotted path.
package config

import (
	"reflect"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Config is the live option state of one engine instance. It is not safe
// for concurrent mutation; renders and sets are expected to be serialized
// by the caller, matching the single-threaded render model.
type Config struct {
	schema  *Schema
	mask    uint64
	payload map[string]any
}

// Get resolves path to its current value. When path itself is not a schema
// entry but "<path>.enabled" is, that flag is read instead, so a feature
// group can be queried as a single boolean.
func (c *Config) Get(path string) (any, error) {
	path = normalize(path)
	e, ok := c.schema.entries[path]
	if !ok {
		if e2, ok2 := c.schema.entries[path+".enabled"]; ok2 {
			e = e2
		} else {
			return nil, &InvalidPathError{Path: path}
		}
	}
	if e.kind == KindBool {
		return c.mask&(1<<e.bit) != 0, nil
	}
	return c.payload[path], nil
}

// Enabled is a convenience around Get for boolean reads. Unknown paths
// report false.
func (c *Config) Enabled(path string) bool {
	v, err := c.Get(path)
	if err != nil {
		return false
	}
	return cast.ToBool(v)
}

func (c *Config) GetBool(path string) bool { return c.Enabled(path) }

func (c *Config) GetString(path string) string {
	v, err := c.Get(path)
	if err != nil {
		return ""
	}
	return cast.ToString(v)
}

func (c *Config) GetInt(path string) int {
	v, err := c.Get(path)
	if err != nil {
		return 0
	}
	return cast.ToInt(v)
}

func (c *Config) GetStringSlice(path string) []string {
	v, err := c.Get(path)
	if err != nil {
		return nil
	}
	return cast.ToStringSlice(v)
}

func (c *Config) GetIntSlice(path string) []int {
	v, err := c.Get(path)
	if err != nil {
		return nil
	}
	return cast.ToIntSlice(v)
}

// Set writes value at path. A mapping value is expanded key by key only
// when no literal schema entry exists at path but at least one entry
// begins with "path."; otherwise it is stored verbatim. The value's
// runtime type must match the kind recorded at compile time.
func (c *Config) Set(path string, value any) error {
	path = normalize(path)
	if m, ok := toStringMap(value); ok {
		if _, literal := c.schema.entries[path]; !literal && c.schema.hasPrefix(path+".") {
			keys := make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				child := normalize(k)
				if path != "" {
					child = path + "." + child
				}
				if err := c.Set(child, m[k]); err != nil {
					return err
				}
			}
			return nil
		}
	}
	e, ok := c.schema.entries[path]
	if !ok {
		return &InvalidPathError{Path: path}
	}
	switch e.kind {
	case KindBool:
		b, isBool := value.(bool)
		if !isBool {
			return &TypeMismatchError{Path: path, Want: e.kind.String(), Got: typeName(value)}
		}
		if b {
			c.mask |= 1 << e.bit
		} else {
			c.mask &^= 1 << e.bit
		}
	case KindString:
		s, isString := value.(string)
		if !isString {
			return &TypeMismatchError{Path: path, Want: e.kind.String(), Got: typeName(value)}
		}
		c.payload[path] = s
	case KindInt:
		switch value.(type) {
		case bool, string:
			return &TypeMismatchError{Path: path, Want: e.kind.String(), Got: typeName(value)}
		}
		n, err := cast.ToIntE(value)
		if err != nil {
			return &TypeMismatchError{Path: path, Want: e.kind.String(), Got: typeName(value)}
		}
		c.payload[path] = n
	case KindFloat:
		switch value.(type) {
		case bool, string:
			return &TypeMismatchError{Path: path, Want: e.kind.String(), Got: typeName(value)}
		}
		f, err := cast.ToFloat64E(value)
		if err != nil {
			return &TypeMismatchError{Path: path, Want: e.kind.String(), Got: typeName(value)}
		}
		c.payload[path] = f
	case KindList:
		l, ok := toList(value)
		if !ok {
			return &TypeMismatchError{Path: path, Want: e.kind.String(), Got: typeName(value)}
		}
		c.payload[path] = l
	}
	return nil
}

// Apply runs Set for every key of an override tree, in sorted key order.
func (c *Config) Apply(overrides map[string]any) error {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := c.Set(k, overrides[k]); err != nil {
			return err
		}
	}
	return nil
}

// Export returns the fully flattened current state, path to value, in the
// schema's registration order when ranged via Paths.
func (c *Config) Export() map[string]any {
	out := make(map[string]any, len(c.schema.order))
	for _, path := range c.schema.order {
		v, _ := c.Get(path)
		out[path] = v
	}
	return out
}

// Decode unflattens the current state into a nested tree and decodes it
// into target with mapstructure, so callers can read the live options as
// a plain struct.
func (c *Config) Decode(target any) error {
	nested := make(map[string]any)
	for _, path := range c.schema.order {
		v, _ := c.Get(path)
		parts := strings.Split(path, ".")
		m := nested
		for _, p := range parts[:len(parts)-1] {
			child, ok := m[p].(map[string]any)
			if !ok {
				child = make(map[string]any)
				m[p] = child
			}
			m = child
		}
		m[parts[len(parts)-1]] = v
	}
	return mapstructure.Decode(nested, target)
}

// FromYAML parses a YAML override document into the mapping shape that
// Apply expects.
func FromYAML(data []byte) (map[string]any, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func normalize(path string) string {
	return strings.ToLower(strings.TrimSpace(path))
}

func toStringMap(v any) (map[string]any, bool) {
	switch v.(type) {
	case map[string]any, map[any]any, map[string]string:
		m, err := cast.ToStringMapE(v)
		return m, err == nil
	}
	return nil, false
}

func toList(v any) ([]any, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
