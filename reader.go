package graphwire

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rawbytedev/graphwire/internal/common"
)

// ClassField is one entry of a class descriptor. Index is -1 for fields
// identified by name.
type ClassField struct {
	Name  string
	Index int
}

// ClassDescriptor is a decoded class: its name and ordered fields.
type ClassDescriptor struct {
	Name   string
	Fields []ClassField
}

type byteSource interface {
	io.Reader
	io.ByteReader
	io.RuneReader
}

// source counts consumed bytes.
type source struct {
	r   byteSource
	off int64
}

func (s *source) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	s.off += int64(n)
	return n, err
}

func (s *source) ReadByte() (byte, error) {
	c, err := s.r.ReadByte()
	if err == nil {
		s.off++
	}
	return c, err
}

func (s *source) ReadRune() (rune, int, error) {
	r, n, err := s.r.ReadRune()
	s.off += int64(n)
	return r, n, err
}

// remaining reports the unread byte count when the underlying reader
// knows it, as bytes.Reader and strings.Reader do.
func (s *source) remaining() (int, bool) {
	if l, ok := s.r.(interface{ Len() int }); ok {
		return l.Len(), true
	}
	return 0, false
}

// preallocLimit caps capacity reserved from an unverified count.
const preallocLimit = 1024

// capHint returns the capacity to reserve for n elements. Counts already
// checked against the remaining input are trusted; others are clamped,
// and the container grows as elements arrive.
func (r *Reader) capHint(n int) int {
	if _, ok := r.src.remaining(); ok {
		return n
	}
	return min(n, preallocLimit)
}

// Reader decodes object graphs written by a Writer.
//
// A Reader is not safe for concurrent use. After any failure it is
// faulted and must be discarded.
type Reader struct {
	src      *source
	opts     Options
	registry *Registry

	objects  []reflect.Value
	classes  []*ClassDescriptor
	classIDs map[string]int

	depth int
	err   error
}

// NewReader returns a Reader consuming r. Sources that do not implement
// io.ByteReader and io.RuneReader are wrapped in a bufio.Reader, which may
// read ahead of the decoded value.
func NewReader(r io.Reader, opts Options) *Reader {
	bs, ok := r.(byteSource)
	if !ok {
		bs = bufio.NewReader(r)
	}
	return &Reader{
		src:      &source{r: bs},
		opts:     opts,
		registry: opts.registry(),
		classIDs: make(map[string]int),
	}
}

// NewBytesReader returns a Reader over b.
func NewBytesReader(b []byte, opts Options) *Reader {
	return NewReader(bytes.NewReader(b), opts)
}

// Deserialize starts a new pass and decodes one value into the value v
// points to. v is left untouched on failure.
func (r *Reader) Deserialize(v any) error {
	if r.err != nil {
		return r.faulted()
	}
	r.Reset()
	return r.Read(v)
}

// Read decodes one value into the value v points to, within the current
// pass.
func (r *Reader) Read(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: need a non-nil pointer, got %T", ErrTypeMismatch, v)
	}
	tmp := reflect.New(rv.Elem().Type())
	if err := r.ReadValue(tmp.Elem()); err != nil {
		return err
	}
	rv.Elem().Set(tmp.Elem())
	return nil
}

// ReadAs decodes one value of type T within the current pass.
func ReadAs[T any](r *Reader) (T, error) {
	var v T
	err := r.Read(&v)
	return v, err
}

// ReadValue decodes one value into the settable dst. Plugin decoders call
// it for nested values.
func (r *Reader) ReadValue(dst reflect.Value) error {
	if r.err != nil {
		return r.faulted()
	}
	tag, err := r.ReadTag()
	if err != nil {
		return err
	}
	return r.DecodeTag(tag, dst)
}

// DecodeTag decodes the value introduced by an already consumed tag.
func (r *Reader) DecodeTag(tag byte, dst reflect.Value) error {
	if r.err != nil {
		return r.faulted()
	}
	if r.depth >= r.opts.maxDepth() {
		return r.malformed("%w: more than %d levels", ErrTooDeep, r.opts.maxDepth())
	}
	r.depth++
	defer func() { r.depth-- }()

	switch tag {
	case TagRef:
		id, err := r.ReadID(TagSemicolon)
		if err != nil {
			return err
		}
		v, err := r.ResolveReference(id)
		if err != nil {
			return err
		}
		return r.fail(assign(dst, v))
	case TagClass:
		if err := r.readClass(); err != nil {
			return err
		}
		tag, err := r.ReadTag()
		if err != nil {
			return err
		}
		return r.DecodeTag(tag, dst)
	case TagNull, TagObject:
	default:
		dst = deref(dst)
	}
	d := r.registry.decoderFor(tag)
	if d == nil {
		return r.malformed("unknown tag %q", tag)
	}
	return r.fail(d.Decode(r, tag, dst))
}

// deref allocates through pointer targets.
func deref(dst reflect.Value) reflect.Value {
	for dst.Kind() == reflect.Pointer {
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		dst = dst.Elem()
	}
	return dst
}

// Reset clears the object and class tables. A faulted Reader stays
// faulted.
func (r *Reader) Reset() {
	clear(r.objects)
	r.objects = r.objects[:0]
	clear(r.classes)
	r.classes = r.classes[:0]
	clear(r.classIDs)
}

// ResolveReference returns the object registered under id.
func (r *Reader) ResolveReference(id int) (reflect.Value, error) {
	if id < 0 || id >= len(r.objects) {
		return reflect.Value{}, r.fail(fmt.Errorf("%w: object %d of %d at offset %d", ErrUnresolvedReference, id, len(r.objects), r.src.off))
	}
	return r.objects[id], nil
}

// RegisterObject binds v to the next object id. Call it before decoding
// nested content.
func (r *Reader) RegisterObject(v reflect.Value) int {
	r.objects = append(r.objects, v)
	return len(r.objects) - 1
}

// ResolveClass returns the descriptor registered under id.
func (r *Reader) ResolveClass(id int) (*ClassDescriptor, error) {
	if id < 0 || id >= len(r.classes) {
		return nil, r.fail(fmt.Errorf("%w: class %d of %d at offset %d", ErrUnresolvedReference, id, len(r.classes), r.src.off))
	}
	return r.classes[id], nil
}

// RegisterClass binds a descriptor to the next class id.
func (r *Reader) RegisterClass(name string, fields []ClassField) (int, error) {
	if id, ok := r.classIDs[name]; ok {
		return 0, r.fail(fmt.Errorf("%w: class %q already registered as %d", ErrClassIDConflict, name, id))
	}
	id := len(r.classes)
	r.classes = append(r.classes, &ClassDescriptor{Name: name, Fields: fields})
	r.classIDs[name] = id
	return id, nil
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 { return r.src.off }

// Options returns the options the Reader was built with.
func (r *Reader) Options() Options { return r.opts }

// Registry returns the registry the Reader dispatches through.
func (r *Reader) Registry() *Registry { return r.registry }

// readClass reads <len>"<name>"<count>{<fields>} after the class tag.
func (r *Reader) readClass() error {
	n, err := r.ReadCount(TagQuote)
	if err != nil {
		return err
	}
	name, err := r.readText(n)
	if err != nil {
		return err
	}
	if name == "" {
		return r.malformed("empty class name")
	}
	count, err := r.ReadCount(TagOpenbrace)
	if err != nil {
		return err
	}
	fields := make([]ClassField, 0, r.capHint(count))
	for i := 0; i < count; i++ {
		tag, err := r.ReadTag()
		if err != nil {
			return err
		}
		f := ClassField{Index: -1}
		switch {
		case tag == TagEmpty || tag == TagUTF8Char || tag == TagString:
			if f.Name, err = r.ReadString(tag); err != nil {
				return err
			}
		case common.IsDigit(tag) || tag == TagInteger:
			x, err := r.ReadInt(tag)
			if err != nil {
				return err
			}
			if x < 0 {
				return r.malformed("negative field index %d", x)
			}
			f.Index = int(x)
		default:
			return r.malformed("class field entry starts with %s", TagName(tag))
		}
		fields = append(fields, f)
	}
	if err := r.Expect(TagClosebrace); err != nil {
		return err
	}
	_, err = r.RegisterClass(name, fields)
	return err
}

// ReadTag reads one byte. End of input is malformed.
func (r *Reader) ReadTag() (byte, error) {
	c, err := r.src.ReadByte()
	if err != nil {
		return 0, r.readErr(err)
	}
	return c, nil
}

// Expect consumes one byte and requires it to be want.
func (r *Reader) Expect(want byte) error {
	c, err := r.ReadTag()
	if err != nil {
		return err
	}
	if c != want {
		return r.malformed("expected %q, got %q", want, c)
	}
	return nil
}

// readToken returns the bytes before term and consumes term.
func (r *Reader) readToken(term byte) ([]byte, error) {
	var tok []byte
	for {
		c, err := r.ReadTag()
		if err != nil {
			return nil, err
		}
		if c == term {
			return tok, nil
		}
		tok = append(tok, c)
	}
}

// ReadDecimal reads a canonical signed decimal token ending in term.
func (r *Reader) ReadDecimal(term byte) (string, error) {
	tok, err := r.readToken(term)
	if err != nil {
		return "", err
	}
	if !common.ValidDecimal(tok, true) {
		return "", r.malformed("bad decimal %q", tok)
	}
	return string(tok), nil
}

// ReadID reads a non-negative id terminated by term.
func (r *Reader) ReadID(term byte) (int, error) {
	tok, err := r.readToken(term)
	if err != nil {
		return 0, err
	}
	if !common.ValidDecimal(tok, false) {
		return 0, r.malformed("bad id %q", tok)
	}
	id, err := strconv.Atoi(string(tok))
	if err != nil {
		return 0, r.malformed("id %s out of range", tok)
	}
	return id, nil
}

// ReadCount reads an optional element count terminated by term. A missing
// count is zero.
func (r *Reader) ReadCount(term byte) (int, error) {
	tok, err := r.readToken(term)
	if err != nil {
		return 0, err
	}
	if len(tok) == 0 {
		return 0, nil
	}
	if !common.ValidDecimal(tok, false) {
		return 0, r.malformed("bad count %q", tok)
	}
	n, err := strconv.Atoi(string(tok))
	if err != nil || (r.opts.MaxElements > 0 && n > r.opts.MaxElements) {
		return 0, r.malformed("count %s exceeds limit", tok)
	}
	// every element, unit or byte takes at least one input byte
	if left, ok := r.src.remaining(); ok && n > left {
		return 0, r.malformed("unexpected end of input: count %d with %d bytes left", n, left)
	}
	return n, nil
}

// ReadInt reads the rest of an integer value that fits in int64.
func (r *Reader) ReadInt(tag byte) (int64, error) {
	tok, err := r.integerToken(tag)
	if err != nil {
		return 0, err
	}
	x, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, r.malformed("integer %s out of range", tok)
	}
	return x, nil
}

// integerToken returns the decimal text of an integer value.
func (r *Reader) integerToken(tag byte) (string, error) {
	switch {
	case common.IsDigit(tag):
		return string(tag), nil
	case tag == TagInteger:
		tok, err := r.ReadDecimal(TagSemicolon)
		if err != nil {
			return "", err
		}
		if _, perr := strconv.ParseInt(tok, 10, 32); perr != nil {
			return "", r.malformed("integer %s out of int32 range", tok)
		}
		return tok, nil
	case tag == TagLong:
		return r.ReadDecimal(TagSemicolon)
	default:
		return "", r.malformed("expected integer, got %s", TagName(tag))
	}
}

// ReadString reads the rest of a string value.
func (r *Reader) ReadString(tag byte) (string, error) {
	switch tag {
	case TagEmpty:
		return "", nil
	case TagUTF8Char:
		c, size, err := r.src.ReadRune()
		if err != nil {
			return "", r.readErr(err)
		}
		if c == utf8.RuneError && size <= 1 {
			return "", r.malformed("invalid UTF-8")
		}
		return string(c), nil
	case TagString:
		n, err := r.ReadCount(TagQuote)
		if err != nil {
			return "", err
		}
		return r.readText(n)
	default:
		return "", r.malformed("expected string, got %s", TagName(tag))
	}
}

// readText reads n UTF-16 units of text after the opening quote, then the
// closing quote.
func (r *Reader) readText(n int) (string, error) {
	var sb strings.Builder
	for units := 0; units < n; {
		c, size, err := r.src.ReadRune()
		if err != nil {
			return "", r.readErr(err)
		}
		if c == utf8.RuneError && size <= 1 {
			return "", r.malformed("invalid UTF-8")
		}
		sb.WriteRune(c)
		units += common.RuneUnits(c)
		if units > n {
			return "", r.malformed("character splits past %d UTF-16 units", n)
		}
	}
	if err := r.Expect(TagQuote); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ReadBytes reads the rest of a byte string value.
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadCount(TagQuote)
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	if _, err := io.CopyN(&b, r.src, int64(n)); err != nil {
		return nil, r.readErr(err)
	}
	if err := r.Expect(TagQuote); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// ReadDigits reads exactly n ASCII digits.
func (r *Reader) ReadDigits(n int) (int, error) {
	x := 0
	for i := 0; i < n; i++ {
		c, err := r.ReadTag()
		if err != nil {
			return 0, err
		}
		if !common.IsDigit(c) {
			return 0, r.malformed("expected digit, got %q", c)
		}
		x = x*10 + int(c-'0')
	}
	return x, nil
}

// done reports an error when input remains after the last value.
func (r *Reader) done() error {
	if r.err != nil {
		return r.faulted()
	}
	if _, err := r.src.ReadByte(); err == nil {
		return r.malformed("trailing data")
	} else if !errors.Is(err, io.EOF) {
		return r.fail(err)
	}
	return nil
}

// Mismatch builds a type mismatch error for tag and dst at the current
// offset.
func (r *Reader) Mismatch(tag byte, dst reflect.Value) error {
	return fmt.Errorf("%w at offset %d", mismatch(tag, dst.Type()), r.src.off)
}

func (r *Reader) readErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return r.malformed("unexpected end of input")
	}
	return r.fail(err)
}

func (r *Reader) malformed(format string, args ...any) error {
	return r.fail(fmt.Errorf("%w: %w at offset %d", ErrMalformedStream, fmt.Errorf(format, args...), r.src.off))
}

func (r *Reader) fail(err error) error {
	if err != nil && r.err == nil {
		r.err = err
	}
	return err
}

func (r *Reader) faulted() error {
	return fmt.Errorf("%w: %w", ErrFaulted, r.err)
}
