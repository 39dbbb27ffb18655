package graphwire

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrUnsupportedType is returned when no encoder handles a value.
	ErrUnsupportedType = errors.New("graphwire: unsupported type")
	// ErrMalformedStream covers unknown tags, truncated or invalid
	// tokens and missing terminators.
	ErrMalformedStream = errors.New("graphwire: malformed stream")
	// ErrUnresolvedReference is returned for a reference id (object or
	// class) that was never registered in the current pass.
	ErrUnresolvedReference = errors.New("graphwire: unresolved reference")
	// ErrClassIDConflict is returned when a class name is described twice
	// in one pass.
	ErrClassIDConflict = errors.New("graphwire: class id conflict")
	// ErrTypeMismatch is returned when a decoded value cannot be stored
	// in the requested target.
	ErrTypeMismatch = errors.New("graphwire: type mismatch")
	// ErrTooDeep is returned when nesting exceeds Options.MaxDepth. The
	// reader reports it together with ErrMalformedStream.
	ErrTooDeep = errors.New("graphwire: nesting too deep")
	// ErrFaulted is returned by a Writer or Reader that already failed.
	ErrFaulted = errors.New("graphwire: instance faulted by an earlier failure")
)

func unsupported(t reflect.Type) error {
	if t == nil {
		return fmt.Errorf("%w: <invalid>", ErrUnsupportedType)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedType, t)
}

func mismatch(tag byte, t reflect.Type) error {
	return fmt.Errorf("%w: cannot decode %s into %s", ErrTypeMismatch, TagName(tag), t)
}
