package graphwire

import "reflect"

var anySliceType = reflect.TypeOf([]any(nil))

func isList(v reflect.Value) bool {
	k := v.Kind()
	return k == reflect.Slice || k == reflect.Array
}

// shareable registers v as the next object, or consumes an id when v has
// no identity. It reports true when a back-reference was written instead.
func shareable(w *Writer, v reflect.Value) bool {
	id, ok := IdentityOf(v)
	if !ok {
		w.AddReferenceCount(1)
		return false
	}
	if w.WriteReference(id) {
		return true
	}
	w.SetReference(id)
	return false
}

func encodeList(w *Writer, v reflect.Value) error {
	if shareable(w, v) {
		return nil
	}
	n := v.Len()
	w.WriteTag(TagList)
	if n > 0 {
		w.WriteCount(n)
	}
	w.WriteTag(TagOpenbrace)
	for i := 0; i < n; i++ {
		if err := w.WriteValue(v.Index(i)); err != nil {
			return err
		}
	}
	w.WriteTag(TagClosebrace)
	return nil
}

// decodeList registers the new slice before reading elements, so
// elements may refer back to it. A count the reader cannot check against
// the remaining input is not trusted for allocation: the slice starts
// clamped and grows as elements arrive.
func decodeList(r *Reader, tag byte, dst reflect.Value) error {
	n, err := r.ReadCount(TagOpenbrace)
	if err != nil {
		return err
	}
	var st reflect.Type
	switch dst.Kind() {
	case reflect.Slice:
		st = dst.Type()
	case reflect.Array:
		if dst.Len() != n {
			return r.Mismatch(tag, dst)
		}
		dst.SetZero()
		r.RegisterObject(dst)
		if err := readElements(r, dst, n); err != nil {
			return err
		}
		return r.Expect(TagClosebrace)
	case reflect.Interface:
		if !anySliceType.AssignableTo(dst.Type()) {
			return r.Mismatch(tag, dst)
		}
		st = anySliceType
	default:
		return r.Mismatch(tag, dst)
	}

	c := r.capHint(n)
	list := reflect.MakeSlice(st, c, c)
	id := r.RegisterObject(list)
	if c == n {
		if err := readElements(r, list, n); err != nil {
			return err
		}
	} else {
		for i := 0; i < n; i++ {
			if i == list.Len() {
				list = reflect.Append(list, reflect.Zero(st.Elem()))
				list = list.Slice(0, list.Cap())
				r.objects[id] = list
			}
			if err := r.ReadValue(list.Index(i)); err != nil {
				return err
			}
		}
		list = list.Slice3(0, n, n)
		r.objects[id] = list
	}
	if err := r.Expect(TagClosebrace); err != nil {
		return err
	}
	dst.Set(list)
	return nil
}

func readElements(r *Reader, list reflect.Value, n int) error {
	for i := 0; i < n; i++ {
		if err := r.ReadValue(list.Index(i)); err != nil {
			return err
		}
	}
	return nil
}
