package vellum

import (
	"sync"

	"vellum.pub/vellum/config"
)

// Defaults is the default-option tree. Branches compile to an implicit
// "<path>.enabled" feature bit, boolean leaves to their own bit, and every
// other leaf to a payload entry.
func Defaults() map[string]any {
	return map[string]any{
		"unsafe":    false,
		"hardwraps": false,
		"xhtml":     false,
		"emoji":     true,

		"attributes": true,

		"math": map[string]any{
			"enabled": true,
			"inline":  true,
			"block":   true,
		},

		"alert": map[string]any{
			"enabled": true,
			"types":   []any{"note", "tip", "important", "warning", "caution"},
		},

		"table": map[string]any{
			"enabled": true,
			"span":    true,
		},

		"toc": map[string]any{
			"enabled":       true,
			"placeholder":   "[TOC]",
			"levels":        []any{1, 2, 3, 4, 5, 6},
			"lowercase":     true,
			"transliterate": true,
			"delimiter":     "-",
			"blacklist":     []any{},
			"replacements":  []any{},
		},

		"highlight": map[string]any{
			"enabled":     true,
			"style":       "monokai",
			"linenumbers": false,
		},
	}
}

var (
	schemaOnce sync.Once
	schema     *config.Schema
	schemaErr  error
)

// compiledSchema compiles the default tree exactly once per process. The
// compiled tables are shared read-only by every engine instance.
func compiledSchema() (*config.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = config.Compile(Defaults())
	})
	return schema, schemaErr
}
