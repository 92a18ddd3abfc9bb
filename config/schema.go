package config

import (
	"reflect"
	"sort"
	"strings"
)

// Kind is the value type recorded for a schema entry.
type Kind uint8

const (
	KindBool Kind = iota
	KindString
	KindInt
	KindFloat
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindList:
		return "list"
	}
	return "unknown"
}

// maxFeatureBits is the capacity of the per-instance feature mask.
const maxFeatureBits = 64

type entry struct {
	kind Kind
	bit  uint // valid only for KindBool
	def  any
}

// Schema is a default-option tree compiled into a flat lookup table: every
// boolean path owns one bit of a 64-bit mask, every other leaf becomes a
// payload entry. A Schema is immutable once compiled and safe to share
// read-only between any number of Config instances.
type Schema struct {
	entries    map[string]*entry
	order      []string
	bools      uint
	defMask    uint64
	defPayload map[string]any
}

// Compile walks tree and builds a Schema. A mapping node registers an
// implicit "<path>.enabled" boolean (an explicit "enabled" key overrides
// its default of true) and then recurses into its remaining children in
// sorted key order, so bit assignment is deterministic. A boolean leaf
// registers a feature bit; any other leaf registers a payload entry.
func Compile(tree map[string]any) (*Schema, error) {
	s := &Schema{
		entries:    make(map[string]*entry),
		defPayload: make(map[string]any),
	}
	if err := s.walk("", tree); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Schema) walk(prefix string, node map[string]any) error {
	if prefix != "" {
		def := true
		if v, ok := node["enabled"]; ok {
			b, isBool := v.(bool)
			if !isBool {
				return &SchemaError{Path: prefix + ".enabled", Reason: "enabled must be a bool, got " + typeName(v)}
			}
			def = b
		}
		if err := s.addBool(prefix+".enabled", def); err != nil {
			return err
		}
	}
	keys := make([]string, 0, len(node))
	for k := range node {
		if prefix != "" && k == "enabled" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		path := strings.ToLower(k)
		if prefix != "" {
			path = prefix + "." + path
		}
		switch v := node[k].(type) {
		case map[string]any:
			if err := s.walk(path, v); err != nil {
				return err
			}
		case bool:
			if err := s.addBool(path, v); err != nil {
				return err
			}
		default:
			kind, ok := kindOf(v)
			if !ok {
				return &SchemaError{Path: path, Reason: "unsupported default type " + typeName(v)}
			}
			s.add(path, &entry{kind: kind, def: v})
			s.defPayload[path] = v
		}
	}
	return nil
}

func (s *Schema) addBool(path string, def bool) error {
	if s.bools == maxFeatureBits {
		return &SchemaError{Path: path, Reason: "more than 64 boolean options"}
	}
	e := &entry{kind: KindBool, bit: s.bools, def: def}
	s.bools++
	if def {
		s.defMask |= 1 << e.bit
	}
	s.add(path, e)
	return nil
}

func (s *Schema) add(path string, e *entry) {
	s.entries[path] = e
	s.order = append(s.order, path)
}

// hasPrefix reports whether any schema entry starts with the given prefix.
func (s *Schema) hasPrefix(prefix string) bool {
	for p := range s.entries {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// Paths returns every compiled path in registration order.
func (s *Schema) Paths() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// New creates a Config seeded with the compiled defaults. The returned
// Config owns its mask and payload exclusively; only the Schema is shared.
func (s *Schema) New() *Config {
	payload := make(map[string]any, len(s.defPayload))
	for k, v := range s.defPayload {
		payload[k] = v
	}
	return &Config{schema: s, mask: s.defMask, payload: payload}
}

func kindOf(v any) (Kind, bool) {
	switch v.(type) {
	case string:
		return KindString, true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindInt, true
	case float32, float64:
		return KindFloat, true
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice {
		return KindList, true
	}
	return 0, false
}
