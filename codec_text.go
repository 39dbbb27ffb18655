package graphwire

import (
	"errors"
	"reflect"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func isBytes(v reflect.Value) bool {
	k := v.Kind()
	return (k == reflect.Slice || k == reflect.Array) && v.Type().Elem().Kind() == reflect.Uint8
}

// isError matches any non-nil value implementing error that no earlier
// codec claimed. Only the message travels.
func isError(v reflect.Value) bool {
	return v.Type().Implements(errorType) && v.CanInterface()
}

func encodeString(w *Writer, v reflect.Value) error {
	w.WriteString(v.String())
	return nil
}

func encodeBytes(w *Writer, v reflect.Value) error {
	if v.Kind() == reflect.Slice {
		w.WriteBytes(v.Bytes())
		return nil
	}
	b := make([]byte, v.Len())
	for i := range b {
		b[i] = byte(v.Index(i).Uint())
	}
	w.WriteBytes(b)
	return nil
}

func encodeError(w *Writer, v reflect.Value) error {
	w.WriteTag(TagError)
	w.WriteString(v.Interface().(error).Error())
	return nil
}

func decodeString(r *Reader, tag byte, dst reflect.Value) error {
	s, err := r.ReadString(tag)
	if err != nil {
		return err
	}
	switch dst.Kind() {
	case reflect.String:
		dst.SetString(s)
		return nil
	case reflect.Interface:
		return assignTo(r, tag, dst, reflect.ValueOf(s))
	default:
		return r.Mismatch(tag, dst)
	}
}

// decodeBytes also fills string targets, since strings that are not
// valid UTF-8 travel as bytes.
func decodeBytes(r *Reader, tag byte, dst reflect.Value) error {
	b, err := r.ReadBytes()
	if err != nil {
		return err
	}
	switch k := dst.Kind(); {
	case k == reflect.String:
		dst.SetString(string(b))
	case k == reflect.Slice && dst.Type().Elem().Kind() == reflect.Uint8:
		s := reflect.MakeSlice(dst.Type(), len(b), len(b))
		s.SetBytes(b)
		dst.Set(s)
	case k == reflect.Array && dst.Type().Elem().Kind() == reflect.Uint8:
		if dst.Len() != len(b) {
			return r.Mismatch(tag, dst)
		}
		for i, c := range b {
			dst.Index(i).SetUint(uint64(c))
		}
	case k == reflect.Interface:
		return assignTo(r, tag, dst, reflect.ValueOf(b))
	default:
		return r.Mismatch(tag, dst)
	}
	return nil
}

// decodeError rebuilds errors with errors.New. Only error and plain
// interface targets accept them.
func decodeError(r *Reader, tag byte, dst reflect.Value) error {
	st, err := r.ReadTag()
	if err != nil {
		return err
	}
	var msg string
	if st == TagBytes {
		b, err := r.ReadBytes()
		if err != nil {
			return err
		}
		msg = string(b)
	} else if msg, err = r.ReadString(st); err != nil {
		return err
	}
	if dst.Kind() != reflect.Interface {
		return r.Mismatch(tag, dst)
	}
	return assignTo(r, tag, dst, reflect.ValueOf(errors.New(msg)))
}
