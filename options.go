package graphwire

import (
	"fmt"
	"reflect"
)

// FieldMode selects how class descriptors identify fields.
type FieldMode int

const (
	// FieldsByName lists field names in the class descriptor.
	FieldsByName FieldMode = iota
	// FieldsByIndex lists positional field indices instead of names.
	FieldsByIndex
)

func (m FieldMode) String() string {
	switch m {
	case FieldsByName:
		return "name"
	case FieldsByIndex:
		return "index"
	default:
		return fmt.Sprintf("FieldMode(%d)", int(m))
	}
}

// ParseFieldMode parses "name" or "index".
func ParseFieldMode(s string) (FieldMode, error) {
	switch s {
	case "", "name":
		return FieldsByName, nil
	case "index":
		return FieldsByIndex, nil
	default:
		return 0, fmt.Errorf("graphwire: unknown field mode %q", s)
	}
}

// Options configures a Writer or Reader. The zero value enables reference
// tracking, writes fields by name and uses the default registry.
type Options struct {
	// Simple disables reference tracking. Shared values are written
	// once per occurrence and cyclic graphs cannot be encoded.
	Simple bool
	// FieldMode controls class descriptors on write. Readers accept
	// both forms.
	FieldMode FieldMode
	// Registry supplies codecs and class names; nil means DefaultRegistry.
	Registry *Registry
	// MaxElements bounds counts read for lists, maps, strings and bytes.
	// Zero means unlimited.
	MaxElements int
	// MapType is the map type built for maps decoded into interface
	// targets. Nil means map[any]any.
	MapType reflect.Type
	// MaxDepth bounds nesting on both sides. Zero means 10000 for a
	// simple-mode Writer, where it is what stops a cycle, and 1<<18
	// otherwise, which keeps recursion well inside the goroutine stack.
	MaxDepth int
}

const (
	simpleMaxDepth  = 10000
	defaultMaxDepth = 1 << 18
)

var anyMapType = reflect.TypeOf(map[any]any(nil))

func (o Options) registry() *Registry {
	if o.Registry != nil {
		return o.Registry
	}
	return DefaultRegistry
}

func (o Options) mapType() reflect.Type {
	if o.MapType != nil {
		return o.MapType
	}
	return anyMapType
}

func (o Options) maxDepth() int {
	if o.MaxDepth > 0 {
		return o.MaxDepth
	}
	if o.Simple {
		return simpleMaxDepth
	}
	return defaultMaxDepth
}
