package graphwire

import (
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
	"unicode/utf8"

	"github.com/rawbytedev/graphwire/internal/common"
)

// Writer encodes object graphs. A pass is buffered in memory and reaches
// the sink only once it has been fully encoded.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	out      io.Writer
	buf      []byte
	opts     Options
	registry *Registry

	refer      *referTable // nil in simple mode
	classes    map[reflect.Type]int
	classNames map[string]reflect.Type

	depth int
	err   error
}

// NewWriter returns a Writer that flushes encoded passes to w. A nil w
// discards them.
func NewWriter(w io.Writer, opts Options) *Writer {
	wr := &Writer{
		out:        w,
		opts:       opts,
		registry:   opts.registry(),
		classes:    make(map[reflect.Type]int),
		classNames: make(map[string]reflect.Type),
	}
	if !opts.Simple {
		wr.refer = newReferTable()
	}
	return wr
}

// Serialize starts a new pass, encodes v and flushes it.
func (w *Writer) Serialize(v any) error {
	if w.err != nil {
		return w.faulted()
	}
	w.Reset()
	if err := w.Write(v); err != nil {
		return err
	}
	return w.Flush()
}

// Write encodes v within the current pass.
func (w *Writer) Write(v any) error {
	return w.WriteValue(reflect.ValueOf(v))
}

// WriteValue encodes v within the current pass. Plugin encoders call it
// for nested values.
func (w *Writer) WriteValue(v reflect.Value) error {
	if w.err != nil {
		return w.faulted()
	}
	for v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	if w.depth >= w.opts.maxDepth() {
		return w.fail(fmt.Errorf("%w: more than %d levels (cycle in simple mode?)", ErrTooDeep, w.opts.maxDepth()))
	}
	e := w.registry.encoderFor(v)
	if e == nil {
		var t reflect.Type
		if v.IsValid() {
			t = v.Type()
		}
		return w.fail(unsupported(t))
	}
	w.depth++
	err := e.Encode(w, v)
	w.depth--
	return w.fail(err)
}

// Flush writes buffered bytes to the sink.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.faulted()
	}
	if w.out == nil {
		w.buf = w.buf[:0]
		return nil
	}
	if len(w.buf) == 0 {
		return nil
	}
	_, err := w.out.Write(w.buf)
	w.buf = w.buf[:0]
	return w.fail(err)
}

// Buffered returns the number of encoded bytes not yet flushed.
func (w *Writer) Buffered() int { return len(w.buf) }

// Reset clears the reference table and class cache. A faulted Writer
// stays faulted.
func (w *Writer) Reset() {
	if w.refer != nil {
		w.refer.reset()
	}
	clear(w.classes)
	clear(w.classNames)
}

// WriteReference writes a back-reference and reports true when id was
// already emitted in this pass. It always reports false in simple mode.
func (w *Writer) WriteReference(id Identity) bool {
	if w.refer == nil {
		return false
	}
	var ok bool
	w.buf, ok = w.refer.write(w.buf, id)
	return ok
}

// SetReference binds id to the next object id. Call it before writing
// nested content.
func (w *Writer) SetReference(id Identity) {
	if w.refer != nil {
		w.refer.set(id)
	}
}

// AddReferenceCount consumes n object ids without binding them.
func (w *Writer) AddReferenceCount(n int) {
	if w.refer != nil {
		w.refer.addCount(n)
	}
}

// WriteClass returns the class id of t. The first call for t in a pass
// runs describe, which must write the class descriptor.
func (w *Writer) WriteClass(t reflect.Type, describe func() error) (int, error) {
	if id, ok := w.classes[t]; ok {
		return id, nil
	}
	if err := describe(); err != nil {
		return 0, err
	}
	id := len(w.classes)
	w.classes[t] = id
	return id, nil
}

// FieldMode reports how class descriptors list fields.
func (w *Writer) FieldMode() FieldMode { return w.opts.FieldMode }

// Registry returns the registry the Writer dispatches through.
func (w *Writer) Registry() *Registry { return w.registry }

// WriteTag appends a single tag or delimiter byte.
func (w *Writer) WriteTag(tag byte) { w.buf = append(w.buf, tag) }

// WriteRaw appends p unchanged.
func (w *Writer) WriteRaw(p []byte) { w.buf = append(w.buf, p...) }

// WriteCount appends n as a decimal token without tag or terminator.
func (w *Writer) WriteCount(n int) { w.buf = common.AppendInt(w.buf, int64(n)) }

// WriteInt writes a complete integer value.
func (w *Writer) WriteInt(x int64) {
	switch {
	case x >= 0 && x <= 9:
		w.buf = append(w.buf, byte('0'+x))
	case x >= math.MinInt32 && x <= math.MaxInt32:
		w.buf = append(w.buf, TagInteger)
		w.buf = common.AppendInt(w.buf, x)
		w.buf = append(w.buf, TagSemicolon)
	default:
		w.buf = append(w.buf, TagLong)
		w.buf = common.AppendInt(w.buf, x)
		w.buf = append(w.buf, TagSemicolon)
	}
}

// WriteUint writes a complete unsigned integer value.
func (w *Writer) WriteUint(x uint64) {
	if x <= math.MaxInt32 {
		w.WriteInt(int64(x))
		return
	}
	w.buf = append(w.buf, TagLong)
	w.buf = common.AppendUint(w.buf, x)
	w.buf = append(w.buf, TagSemicolon)
}

// WriteFloat writes a complete float value of the given bit size.
func (w *Writer) WriteFloat(f float64, bits int) {
	switch {
	case math.IsNaN(f):
		w.buf = append(w.buf, TagNaN)
	case math.IsInf(f, 1):
		w.buf = append(w.buf, TagInfinity, TagPos)
	case math.IsInf(f, -1):
		w.buf = append(w.buf, TagInfinity, TagNeg)
	default:
		w.buf = append(w.buf, TagDouble)
		w.buf = strconv.AppendFloat(w.buf, f, 'g', -1, bits)
		w.buf = append(w.buf, TagSemicolon)
	}
}

// WriteString writes a complete string value. Strings that are not valid
// UTF-8 are written as bytes.
func (w *Writer) WriteString(s string) {
	if s == "" {
		w.buf = append(w.buf, TagEmpty)
		return
	}
	if !utf8.ValidString(s) {
		w.writeBytes(s)
		return
	}
	n := common.UTF16Len(s)
	if n == 1 {
		w.buf = append(w.buf, TagUTF8Char)
		w.buf = append(w.buf, s...)
		return
	}
	w.buf = append(w.buf, TagString)
	w.writeQuoted(n, s)
}

// WriteBytes writes a complete byte string value.
func (w *Writer) WriteBytes(b []byte) { w.writeBytes(string(b)) }

func (w *Writer) writeBytes(b string) {
	w.buf = append(w.buf, TagBytes)
	if len(b) == 0 {
		w.buf = append(w.buf, TagQuote, TagQuote)
		return
	}
	w.writeQuoted(len(b), b)
}

// writeQuoted appends <n>"<s>".
func (w *Writer) writeQuoted(n int, s string) {
	w.buf = common.AppendInt(w.buf, int64(n))
	w.buf = append(w.buf, TagQuote)
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, TagQuote)
}

func (w *Writer) fail(err error) error {
	if err != nil && w.err == nil {
		w.err = err
		w.buf = w.buf[:0]
	}
	return err
}

func (w *Writer) faulted() error {
	return fmt.Errorf("%w: %w", ErrFaulted, w.err)
}
