package graphwire

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/rawbytedev/graphwire/internal/common"
)

var (
	bigIntType    = reflect.TypeOf(big.Int{})
	bigIntPtrType = reflect.TypeOf((*big.Int)(nil))
)

func isNil(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

func isBigInt(v reflect.Value) bool {
	t := v.Type()
	return t == bigIntType || t == bigIntPtrType
}

func isSigned(v reflect.Value) bool   { return common.IsSignedKind(v.Kind()) }
func isUnsigned(v reflect.Value) bool { return common.IsUnsignedKind(v.Kind()) }
func isFloat(v reflect.Value) bool    { return common.IsFloatKind(v.Kind()) }

var nilEncoder = EncoderFunc(isNil, encodeNil)

func encodeNil(w *Writer, _ reflect.Value) error {
	w.WriteTag(TagNull)
	return nil
}

func encodeBool(w *Writer, v reflect.Value) error {
	if v.Bool() {
		w.WriteTag(TagTrue)
	} else {
		w.WriteTag(TagFalse)
	}
	return nil
}

func encodeSigned(w *Writer, v reflect.Value) error {
	w.WriteInt(v.Int())
	return nil
}

func encodeUnsigned(w *Writer, v reflect.Value) error {
	w.WriteUint(v.Uint())
	return nil
}

func encodeFloat(w *Writer, v reflect.Value) error {
	w.WriteFloat(v.Float(), common.FloatBits(v.Kind()))
	return nil
}

// encodeBigInt always uses the long form.
func encodeBigInt(w *Writer, v reflect.Value) error {
	var x *big.Int
	if v.Kind() == reflect.Pointer {
		x = v.Interface().(*big.Int)
	} else {
		b := v.Interface().(big.Int)
		x = &b
	}
	w.WriteTag(TagLong)
	w.WriteRaw(x.Append(nil, 10))
	w.WriteTag(TagSemicolon)
	return nil
}

func decodeNull(_ *Reader, _ byte, dst reflect.Value) error {
	dst.SetZero()
	return nil
}

func decodeBool(r *Reader, tag byte, dst reflect.Value) error {
	b := tag == TagTrue
	switch dst.Kind() {
	case reflect.Bool:
		dst.SetBool(b)
		return nil
	case reflect.Interface:
		return assignTo(r, tag, dst, reflect.ValueOf(b))
	default:
		return r.Mismatch(tag, dst)
	}
}

// decodeInteger stores an integer into any integer, float or big.Int
// target. Values that do not fit are a type mismatch.
func decodeInteger(r *Reader, tag byte, dst reflect.Value) error {
	tok, err := r.integerToken(tag)
	if err != nil {
		return err
	}
	k := dst.Kind()
	switch {
	case dst.Type() == bigIntType:
		x, ok := new(big.Int).SetString(tok, 10)
		if !ok {
			return r.malformed("bad integer %q", tok)
		}
		dst.Set(reflect.ValueOf(x).Elem())
	case common.IsSignedKind(k):
		x, err := strconv.ParseInt(tok, 10, 64)
		if err != nil || dst.OverflowInt(x) {
			return overflow(r, tag, dst, tok)
		}
		dst.SetInt(x)
	case common.IsUnsignedKind(k):
		x, err := strconv.ParseUint(tok, 10, 64)
		if err != nil || dst.OverflowUint(x) {
			return overflow(r, tag, dst, tok)
		}
		dst.SetUint(x)
	case common.IsFloatKind(k):
		x, err := strconv.ParseFloat(tok, 64)
		if err != nil || dst.OverflowFloat(x) {
			return overflow(r, tag, dst, tok)
		}
		dst.SetFloat(x)
	case k == reflect.Interface:
		return assignTo(r, tag, dst, integerValue(tag, tok))
	default:
		return r.Mismatch(tag, dst)
	}
	return nil
}

// integerValue picks the dynamic type for an integer in an interface
// target: int for the short forms, int64 for longs, *big.Int beyond that.
func integerValue(tag byte, tok string) reflect.Value {
	if tag != TagLong {
		x, _ := strconv.Atoi(tok)
		return reflect.ValueOf(x)
	}
	if x, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return reflect.ValueOf(x)
	}
	x, _ := new(big.Int).SetString(tok, 10)
	return reflect.ValueOf(x)
}

func overflow(r *Reader, tag byte, dst reflect.Value, tok string) error {
	return fmt.Errorf("%w: value %s overflows", r.Mismatch(tag, dst), tok)
}

func decodeFloat(r *Reader, tag byte, dst reflect.Value) error {
	k := dst.Kind()
	if !common.IsFloatKind(k) && k != reflect.Interface {
		return r.Mismatch(tag, dst)
	}
	var f float64
	switch tag {
	case TagNaN:
		f = math.NaN()
	case TagInfinity:
		sign, err := r.ReadTag()
		if err != nil {
			return err
		}
		switch sign {
		case TagPos:
			f = math.Inf(1)
		case TagNeg:
			f = math.Inf(-1)
		default:
			return r.malformed("bad infinity sign %q", sign)
		}
	default:
		tok, err := r.readToken(TagSemicolon)
		if err != nil {
			return err
		}
		if len(tok) == 0 || strings.Trim(string(tok), "0123456789+-.eE") != "" {
			return r.malformed("bad float %q", tok)
		}
		// parse at the target width so float32 values round once
		f, err = strconv.ParseFloat(string(tok), common.FloatBits(k))
		if errors.Is(err, strconv.ErrRange) {
			return overflow(r, tag, dst, string(tok))
		}
		if err != nil {
			return r.malformed("bad float %q", tok)
		}
	}
	if k == reflect.Interface {
		return assignTo(r, tag, dst, reflect.ValueOf(f))
	}
	dst.SetFloat(f)
	return nil
}

// assignTo stores v into an interface target that may not accept it.
func assignTo(r *Reader, tag byte, dst, v reflect.Value) error {
	if !v.Type().AssignableTo(dst.Type()) {
		return r.Mismatch(tag, dst)
	}
	dst.Set(v)
	return nil
}
