package graphwire

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode/utf8"
)

// Encoder writes exactly one complete tagged value. Encoders of shareable
// kinds consult WriteReference and call SetReference before recursing.
// CanEncode is never called with the zero reflect.Value; those encode as
// null.
type Encoder interface {
	CanEncode(v reflect.Value) bool
	Encode(w *Writer, v reflect.Value) error
}

// Decoder consumes exactly the bytes of one tagged value whose tag has
// already been read. Decoders of shareable kinds call RegisterObject
// before populating nested content.
type Decoder interface {
	CanDecode(tag byte) bool
	Decode(r *Reader, tag byte, dst reflect.Value) error
}

type encoderFunc struct {
	match  func(reflect.Value) bool
	encode func(*Writer, reflect.Value) error
}

func (e encoderFunc) CanEncode(v reflect.Value) bool          { return e.match(v) }
func (e encoderFunc) Encode(w *Writer, v reflect.Value) error { return e.encode(w, v) }

// EncoderFunc pairs a predicate with an encode function.
func EncoderFunc(match func(reflect.Value) bool, encode func(*Writer, reflect.Value) error) Encoder {
	return encoderFunc{match: match, encode: encode}
}

type decoderFunc struct {
	tags   string
	decode func(*Reader, byte, reflect.Value) error
}

func (d decoderFunc) CanDecode(tag byte) bool { return strings.IndexByte(d.tags, tag) >= 0 }
func (d decoderFunc) Decode(r *Reader, tag byte, dst reflect.Value) error {
	return d.decode(r, tag, dst)
}

// DecoderFunc pairs a set of leading tags with a decode function.
func DecoderFunc(tags string, decode func(*Reader, byte, reflect.Value) error) Decoder {
	return decoderFunc{tags: tags, decode: decode}
}

// Registry holds codecs, class names and cached struct plans. It is
// configuration shared by many Writers and Readers, not pass state, and
// is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	encoders []Encoder
	decoders []Decoder
	builtinE []Encoder
	builtinD []Decoder
	types    map[string]reflect.Type
	names    map[reflect.Type]string
	plans    map[reflect.Type]*structPlan
}

// DefaultRegistry is used by Options without a Registry.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry()
}

// NewRegistry returns a registry holding the built-in codecs.
func NewRegistry() *Registry {
	return &Registry{
		builtinE: builtinEncoders(),
		builtinD: builtinDecoders(),
		types:    make(map[string]reflect.Type),
		names:    make(map[reflect.Type]string),
		plans:    make(map[reflect.Type]*structPlan),
	}
}

// RegisterEncoder adds e ahead of the built-ins. Custom encoders are
// tried in registration order.
func (r *Registry) RegisterEncoder(e Encoder) {
	r.mu.Lock()
	r.encoders = append(r.encoders, e)
	r.mu.Unlock()
}

// RegisterDecoder adds d ahead of the built-ins.
func (r *Registry) RegisterDecoder(d Decoder) {
	r.mu.Lock()
	r.decoders = append(r.decoders, d)
	r.mu.Unlock()
}

// RegisterClass binds the struct type of sample (a struct or pointer to
// struct) to a class name. Objects of that class decoded into interface
// targets are rebuilt as pointers to the type.
func (r *Registry) RegisterClass(name string, sample any) error {
	t := reflect.TypeOf(sample)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return fmt.Errorf("%w: class %q needs a struct type, got %T", ErrUnsupportedType, name, sample)
	}
	if name == "" || !utf8.ValidString(name) {
		return fmt.Errorf("graphwire: invalid class name %q for %s", name, t)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.types[name]; ok && prev != t {
		return fmt.Errorf("%w: class %q already bound to %s", ErrClassIDConflict, name, prev)
	}
	if old, ok := r.names[t]; ok && old != name {
		delete(r.types, old)
	}
	r.types[name] = t
	r.names[t] = name
	return nil
}

// ClassName returns the class name written for t.
func (r *Registry) ClassName(t reflect.Type) string {
	r.mu.RLock()
	name, ok := r.names[t]
	r.mu.RUnlock()
	if ok {
		return name
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

// ClassType returns the struct type registered under name.
func (r *Registry) ClassType(name string) (reflect.Type, bool) {
	r.mu.RLock()
	t, ok := r.types[name]
	r.mu.RUnlock()
	return t, ok
}

// encoderFor picks the first custom encoder, then builtin, accepting v.
// Custom encoders only ever see valid values.
func (r *Registry) encoderFor(v reflect.Value) Encoder {
	if !v.IsValid() {
		return nilEncoder
	}
	r.mu.RLock()
	custom := r.encoders
	r.mu.RUnlock()
	for _, e := range custom {
		if e.CanEncode(v) {
			return e
		}
	}
	for _, e := range r.builtinE {
		if e.CanEncode(v) {
			return e
		}
	}
	return nil
}

func (r *Registry) decoderFor(tag byte) Decoder {
	r.mu.RLock()
	custom := r.decoders
	r.mu.RUnlock()
	for _, d := range custom {
		if d.CanDecode(tag) {
			return d
		}
	}
	for _, d := range r.builtinD {
		if d.CanDecode(tag) {
			return d
		}
	}
	return nil
}

// builtinEncoders lists the standard codecs in priority order.
func builtinEncoders() []Encoder {
	return []Encoder{
		nilEncoder,
		EncoderFunc(isBigInt, encodeBigInt),
		EncoderFunc(isTime, encodeTime),
		EncoderFunc(isGUID, encodeGUID),
		EncoderFunc(isError, encodeError),
		EncoderFunc(isKind(reflect.Bool), encodeBool),
		EncoderFunc(isSigned, encodeSigned),
		EncoderFunc(isUnsigned, encodeUnsigned),
		EncoderFunc(isFloat, encodeFloat),
		EncoderFunc(isKind(reflect.String), encodeString),
		EncoderFunc(isBytes, encodeBytes),
		EncoderFunc(isList, encodeList),
		EncoderFunc(isKind(reflect.Map), encodeMap),
		EncoderFunc(isObject, encodeObject),
		EncoderFunc(isKind(reflect.Pointer), encodePointer),
	}
}

func builtinDecoders() []Decoder {
	return []Decoder{
		DecoderFunc("n", decodeNull),
		DecoderFunc("0123456789il", decodeInteger),
		DecoderFunc("dNI", decodeFloat),
		DecoderFunc("tf", decodeBool),
		DecoderFunc("eus", decodeString),
		DecoderFunc("b", decodeBytes),
		DecoderFunc("DT", decodeTime),
		DecoderFunc("g", decodeGUID),
		DecoderFunc("E", decodeError),
		DecoderFunc("a", decodeList),
		DecoderFunc("m", decodeMap),
		DecoderFunc("o", decodeObject),
	}
}

func isKind(k reflect.Kind) func(reflect.Value) bool {
	return func(v reflect.Value) bool { return v.Kind() == k }
}
