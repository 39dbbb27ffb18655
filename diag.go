package graphwire

import (
	"encoding/hex"
	"errors"
	"io"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rawbytedev/graphwire/internal/common"
)

// Diagnose renders an encoded stream in a readable notation without
// building values, for example
//
//	c"Node"{"name", "next"} o0{"x", o0{"y", r0}}
//
// Lists print as [...], maps as {k: v}, bytes as h'..' and back-references
// as r<id>. Top-level values are separated by spaces.
func Diagnose(data []byte) (string, error) {
	d := &diagnoser{r: NewBytesReader(data, Options{})}
	for first := true; ; first = false {
		tag, err := d.r.src.ReadByte()
		if errors.Is(err, io.EOF) {
			break
		}
		if !first {
			d.sb.WriteByte(' ')
		}
		if err := d.value(tag); err != nil {
			return "", err
		}
	}
	return d.sb.String(), nil
}

type diagnoser struct {
	r     *Reader
	sb    strings.Builder
	depth int
}

func (d *diagnoser) next() error {
	tag, err := d.r.ReadTag()
	if err != nil {
		return err
	}
	return d.value(tag)
}

func (d *diagnoser) value(tag byte) error {
	r := d.r
	if d.depth >= defaultMaxDepth {
		return r.malformed("%w: more than %d levels", ErrTooDeep, defaultMaxDepth)
	}
	d.depth++
	defer func() { d.depth-- }()

	if common.IsDigit(tag) {
		d.sb.WriteByte(tag)
		return nil
	}
	switch tag {
	case TagInteger, TagLong:
		tok, err := r.integerToken(tag)
		if err != nil {
			return err
		}
		d.sb.WriteString(tok)
	case TagDouble, TagNaN, TagInfinity:
		var f float64
		if err := decodeFloat(r, tag, reflect.ValueOf(&f).Elem()); err != nil {
			return err
		}
		d.sb.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	case TagTrue:
		d.sb.WriteString("true")
	case TagFalse:
		d.sb.WriteString("false")
	case TagNull:
		d.sb.WriteString("null")
	case TagEmpty, TagUTF8Char, TagString:
		s, err := r.ReadString(tag)
		if err != nil {
			return err
		}
		d.sb.WriteString(strconv.Quote(s))
	case TagBytes:
		b, err := r.ReadBytes()
		if err != nil {
			return err
		}
		d.sb.WriteString("h'" + hex.EncodeToString(b) + "'")
	case TagDate, TagTime:
		var t time.Time
		if err := decodeTime(r, tag, reflect.ValueOf(&t).Elem()); err != nil {
			return err
		}
		d.sb.WriteString(string(tag) + strconv.Quote(t.Format(time.RFC3339Nano)))
	case TagGUID:
		var u uuid.UUID
		if err := decodeGUID(r, tag, reflect.ValueOf(&u).Elem()); err != nil {
			return err
		}
		d.sb.WriteString("g{" + u.String() + "}")
	case TagError:
		d.sb.WriteByte(TagError)
		return d.next()
	case TagList:
		return d.list()
	case TagMap:
		return d.dict()
	case TagClass:
		return d.class()
	case TagObject:
		return d.object()
	case TagRef:
		id, err := r.ReadID(TagSemicolon)
		if err != nil {
			return err
		}
		d.sb.WriteString("r" + strconv.Itoa(id))
	default:
		return r.malformed("unknown tag %q", tag)
	}
	return nil
}

func (d *diagnoser) list() error {
	n, err := d.r.ReadCount(TagOpenbrace)
	if err != nil {
		return err
	}
	d.sb.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			d.sb.WriteString(", ")
		}
		if err := d.next(); err != nil {
			return err
		}
	}
	d.sb.WriteByte(']')
	return d.r.Expect(TagClosebrace)
}

func (d *diagnoser) dict() error {
	n, err := d.r.ReadCount(TagOpenbrace)
	if err != nil {
		return err
	}
	d.sb.WriteByte('{')
	for i := 0; i < n; i++ {
		if i > 0 {
			d.sb.WriteString(", ")
		}
		if err := d.next(); err != nil {
			return err
		}
		d.sb.WriteString(": ")
		if err := d.next(); err != nil {
			return err
		}
	}
	d.sb.WriteByte('}')
	return d.r.Expect(TagClosebrace)
}

// class prints the descriptor and the value it introduces.
func (d *diagnoser) class() error {
	r := d.r
	if err := r.readClass(); err != nil {
		return err
	}
	cd := r.classes[len(r.classes)-1]
	d.sb.WriteString("c" + strconv.Quote(cd.Name) + "{")
	for i, f := range cd.Fields {
		if i > 0 {
			d.sb.WriteString(", ")
		}
		if f.Index >= 0 {
			d.sb.WriteString(strconv.Itoa(f.Index))
		} else {
			d.sb.WriteString(strconv.Quote(f.Name))
		}
	}
	d.sb.WriteString("} ")
	return d.next()
}

func (d *diagnoser) object() error {
	r := d.r
	id, err := r.ReadID(TagOpenbrace)
	if err != nil {
		return err
	}
	cd, err := r.ResolveClass(id)
	if err != nil {
		return err
	}
	d.sb.WriteString("o" + strconv.Itoa(id) + "{")
	for i := range cd.Fields {
		if i > 0 {
			d.sb.WriteString(", ")
		}
		if err := d.next(); err != nil {
			return err
		}
	}
	d.sb.WriteByte('}')
	return r.Expect(TagClosebrace)
}
