package graphwire

import (
	"fmt"
	"reflect"
)

// assign stores a decoded or resolved value into dst. Besides plain
// assignment it wraps a value into a fresh pointer target and unwraps a
// pointer into a value target, so back-references resolve into either
// form.
func assign(dst, src reflect.Value) error {
	if !src.IsValid() {
		dst.SetZero()
		return nil
	}
	st, dt := src.Type(), dst.Type()
	switch {
	case st.AssignableTo(dt):
		dst.Set(src)
	case dt.Kind() == reflect.Pointer && st.AssignableTo(dt.Elem()):
		p := reflect.New(dt.Elem())
		p.Elem().Set(src)
		dst.Set(p)
	case st.Kind() == reflect.Pointer && !src.IsNil() && st.Elem().AssignableTo(dt):
		dst.Set(src.Elem())
	default:
		return fmt.Errorf("%w: cannot assign %s to %s", ErrTypeMismatch, st, dt)
	}
	return nil
}
