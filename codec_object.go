package graphwire

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/rawbytedev/graphwire/internal/common"
)

var stringAnyMapType = reflect.TypeOf(map[string]any(nil))

// isObject matches structs and pointers to structs other than the
// value-like structs handled by earlier codecs.
func isObject(v reflect.Value) bool {
	t := v.Type()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct && t != timeType && t != bigIntType
}

// encodePointer writes the pointed-to value. Pointers other than pointers
// to structs carry no identity.
func encodePointer(w *Writer, v reflect.Value) error {
	return w.WriteValue(v.Elem())
}

func encodeObject(w *Writer, v reflect.Value) error {
	s := v
	if v.Kind() == reflect.Pointer {
		s = v.Elem()
	}
	if shareable(w, v) {
		return nil
	}
	t := s.Type()
	plan := w.registry.plan(t)
	cid, err := w.classID(t, plan)
	if err != nil {
		return err
	}
	w.WriteTag(TagObject)
	w.WriteCount(cid)
	w.WriteTag(TagOpenbrace)
	for _, f := range plan.fields {
		if err := w.WriteValue(s.Field(f.idx)); err != nil {
			return err
		}
	}
	w.WriteTag(TagClosebrace)
	return nil
}

// classID writes the descriptor for t on first use. Two Go types with
// the same class name cannot share one pass.
func (w *Writer) classID(t reflect.Type, plan *structPlan) (int, error) {
	return w.WriteClass(t, func() error {
		name := w.registry.ClassName(t)
		if prev, ok := w.classNames[name]; ok && prev != t {
			return fmt.Errorf("%w: %s and %s both write class %q", ErrClassIDConflict, prev, t, name)
		}
		w.classNames[name] = t
		w.WriteTag(TagClass)
		w.writeQuoted(common.UTF16Len(name), name)
		if n := len(plan.fields); n > 0 {
			w.WriteCount(n)
		}
		w.WriteTag(TagOpenbrace)
		for i, f := range plan.fields {
			if w.opts.FieldMode == FieldsByIndex {
				w.WriteInt(int64(i))
			} else {
				w.WriteString(f.name)
			}
		}
		w.WriteTag(TagClosebrace)
		return nil
	})
}

// decodeObject rebuilds a class instance. Struct targets accept any
// class; interface targets get *T for registered classes and a
// map[string]any otherwise.
func decodeObject(r *Reader, tag byte, dst reflect.Value) error {
	cid, err := r.ReadID(TagOpenbrace)
	if err != nil {
		return err
	}
	cd, err := r.ResolveClass(cid)
	if err != nil {
		return err
	}
	for dst.Kind() == reflect.Pointer && dst.Type().Elem().Kind() != reflect.Struct {
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		dst = dst.Elem()
	}
	var st reflect.Type
	switch {
	case dst.Kind() == reflect.Struct:
		st = dst.Type()
	case dst.Kind() == reflect.Pointer && dst.Type().Elem().Kind() == reflect.Struct:
		st = dst.Type().Elem()
	case dst.Kind() == reflect.Interface:
		if t, ok := r.registry.ClassType(cd.Name); ok {
			st = t
		}
	case dst.Kind() == reflect.Map && dst.Type().Key().Kind() == reflect.String:
	default:
		return r.Mismatch(tag, dst)
	}
	if st == nil {
		return decodeObjectMap(r, tag, cd, dst)
	}
	if st == timeType || st == bigIntType {
		return r.Mismatch(tag, dst)
	}
	p := reflect.New(st)
	if dst.Kind() == reflect.Interface && !p.Type().AssignableTo(dst.Type()) {
		return r.Mismatch(tag, dst)
	}
	r.RegisterObject(p)
	plan := r.registry.plan(st)
	for _, f := range cd.Fields {
		if err := readField(r, plan, p.Elem(), f); err != nil {
			return err
		}
	}
	if err := r.Expect(TagClosebrace); err != nil {
		return err
	}
	if dst.Kind() == reflect.Struct {
		dst.Set(p.Elem())
	} else {
		dst.Set(p)
	}
	return nil
}

// readField reads one value into the struct field f names, or discards
// it when the struct has no such field.
func readField(r *Reader, plan *structPlan, s reflect.Value, f ClassField) error {
	if i, ok := plan.lookup(f); ok {
		return r.ReadValue(s.Field(i))
	}
	var discard any
	return r.ReadValue(reflect.ValueOf(&discard).Elem())
}

// decodeObjectMap decodes an object of an unknown class into a map keyed
// by field name, or by decimal index for by-index descriptors.
func decodeObjectMap(r *Reader, tag byte, cd *ClassDescriptor, dst reflect.Value) error {
	mt := dst.Type()
	if dst.Kind() == reflect.Interface {
		if !stringAnyMapType.AssignableTo(mt) {
			return r.Mismatch(tag, dst)
		}
		mt = stringAnyMapType
	}
	m := reflect.MakeMapWithSize(mt, len(cd.Fields))
	r.RegisterObject(m)
	for _, f := range cd.Fields {
		key := f.Name
		if f.Index >= 0 {
			key = strconv.Itoa(f.Index)
		}
		v := reflect.New(mt.Elem()).Elem()
		if err := r.ReadValue(v); err != nil {
			return err
		}
		m.SetMapIndex(reflect.ValueOf(key).Convert(mt.Key()), v)
	}
	if err := r.Expect(TagClosebrace); err != nil {
		return err
	}
	dst.Set(m)
	return nil
}
