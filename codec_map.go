package graphwire

import (
	"cmp"
	"reflect"
	"slices"

	"github.com/rawbytedev/graphwire/internal/common"
)

func encodeMap(w *Writer, v reflect.Value) error {
	if shareable(w, v) {
		return nil
	}
	n := v.Len()
	w.WriteTag(TagMap)
	if n > 0 {
		w.WriteCount(n)
	}
	w.WriteTag(TagOpenbrace)
	for _, k := range sortedKeys(v) {
		if err := w.WriteValue(k); err != nil {
			return err
		}
		if err := w.WriteValue(v.MapIndex(k)); err != nil {
			return err
		}
	}
	w.WriteTag(TagClosebrace)
	return nil
}

// sortedKeys orders keys of basic kinds so equal maps encode to equal
// bytes. Other key kinds keep iteration order.
func sortedKeys(m reflect.Value) []reflect.Value {
	keys := m.MapKeys()
	k := m.Type().Key().Kind()
	switch {
	case k == reflect.String:
		slices.SortFunc(keys, func(a, b reflect.Value) int { return cmp.Compare(a.String(), b.String()) })
	case common.IsSignedKind(k):
		slices.SortFunc(keys, func(a, b reflect.Value) int { return cmp.Compare(a.Int(), b.Int()) })
	case common.IsUnsignedKind(k):
		slices.SortFunc(keys, func(a, b reflect.Value) int { return cmp.Compare(a.Uint(), b.Uint()) })
	case common.IsFloatKind(k):
		slices.SortFunc(keys, func(a, b reflect.Value) int { return cmp.Compare(a.Float(), b.Float()) })
	case k == reflect.Bool:
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			if a.Bool() == b.Bool() {
				return 0
			}
			if b.Bool() {
				return -1
			}
			return 1
		})
	}
	return keys
}

// decodeMap fills map targets, interface targets with Options.MapType and
// struct targets by field name.
func decodeMap(r *Reader, tag byte, dst reflect.Value) error {
	n, err := r.ReadCount(TagOpenbrace)
	if err != nil {
		return err
	}
	switch dst.Kind() {
	case reflect.Map:
		m := reflect.MakeMapWithSize(dst.Type(), r.capHint(n))
		r.RegisterObject(m)
		if err := readEntries(r, tag, m, n); err != nil {
			return err
		}
		dst.Set(m)
	case reflect.Interface:
		mt := r.opts.mapType()
		if !mt.AssignableTo(dst.Type()) {
			return r.Mismatch(tag, dst)
		}
		m := reflect.MakeMapWithSize(mt, r.capHint(n))
		r.RegisterObject(m)
		if err := readEntries(r, tag, m, n); err != nil {
			return err
		}
		dst.Set(m)
	case reflect.Struct:
		p := reflect.New(dst.Type())
		r.RegisterObject(p)
		plan := r.registry.plan(dst.Type())
		for i := 0; i < n; i++ {
			var name string
			if err := r.Read(&name); err != nil {
				return err
			}
			if err := readField(r, plan, p.Elem(), ClassField{Name: name, Index: -1}); err != nil {
				return err
			}
		}
		dst.Set(p.Elem())
	default:
		return r.Mismatch(tag, dst)
	}
	return r.Expect(TagClosebrace)
}

func readEntries(r *Reader, tag byte, m reflect.Value, n int) error {
	kt, vt := m.Type().Key(), m.Type().Elem()
	for i := 0; i < n; i++ {
		k := reflect.New(kt).Elem()
		if err := r.ReadValue(k); err != nil {
			return err
		}
		if !k.Comparable() {
			return r.Mismatch(tag, k)
		}
		v := reflect.New(vt).Elem()
		if err := r.ReadValue(v); err != nil {
			return err
		}
		m.SetMapIndex(k, v)
	}
	return nil
}
