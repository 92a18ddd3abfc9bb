package config

import "fmt"

// InvalidPathError is returned when a get or set names a path that the
// compiled schema does not know about.
type InvalidPathError struct {
	Path string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("unknown configuration path %q", e.Path)
}

// TypeMismatchError is returned when a set supplies a value whose runtime
// type does not match the type recorded for the path at compile time.
type TypeMismatchError struct {
	Path string
	Want string
	Got  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("configuration path %q wants %s, got %s", e.Path, e.Want, e.Got)
}

// SchemaError is returned when the default-option tree itself cannot be
// compiled, for example when it declares more boolean options than the
// feature mask can hold.
type SchemaError struct {
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("configuration schema: %s", e.Reason)
	}
	return fmt.Sprintf("configuration schema at %q: %s", e.Path, e.Reason)
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
