package graphwire

import (
	"bytes"
	"fmt"
	"reflect"
)

// Marshal encodes v as one pass.
func Marshal(v any, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewWriter(&buf, opts).Serialize(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data as one pass into the value v points to. Data
// after the first value is malformed. v is left untouched on failure.
func Unmarshal(data []byte, v any, opts Options) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: need a non-nil pointer, got %T", ErrTypeMismatch, v)
	}
	tmp := reflect.New(rv.Elem().Type())
	r := NewBytesReader(data, opts)
	if err := r.Deserialize(tmp.Interface()); err != nil {
		return err
	}
	if err := r.done(); err != nil {
		return err
	}
	rv.Elem().Set(tmp.Elem())
	return nil
}

// Decode decodes data as one pass into a fresh T.
func Decode[T any](data []byte, opts Options) (T, error) {
	var v T
	err := Unmarshal(data, &v, opts)
	return v, err
}
