package graphwire

import (
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
)

var (
	timeType = reflect.TypeOf(time.Time{})
	uuidType = reflect.TypeOf(uuid.UUID{})
)

func isTime(v reflect.Value) bool { return v.Type() == timeType }
func isGUID(v reflect.Value) bool { return v.Type() == uuidType }

// encodeTime writes UTC times with a Z terminator. Other zones are
// converted to time.Local and end with a semicolon.
func encodeTime(w *Writer, v reflect.Value) error {
	t := v.Interface().(time.Time)
	term := TagSemicolon
	if t.Location() == time.UTC {
		term = TagUTC
	} else {
		t = t.In(time.Local)
	}
	year, month, day := t.Date()
	if year < 0 || year > 9999 {
		return fmt.Errorf("%w: year %d of %s", ErrUnsupportedType, year, v.Type())
	}
	hour, min, sec := t.Clock()
	nsec := t.Nanosecond()
	hasClock := hour != 0 || min != 0 || sec != 0 || nsec != 0
	switch {
	case !hasClock:
		w.WriteTag(TagDate)
		w.writeDigits(year, 4)
		w.writeDigits(int(month), 2)
		w.writeDigits(day, 2)
	case year == 1970 && month == time.January && day == 1:
		w.writeClock(hour, min, sec, nsec)
	default:
		w.WriteTag(TagDate)
		w.writeDigits(year, 4)
		w.writeDigits(int(month), 2)
		w.writeDigits(day, 2)
		w.writeClock(hour, min, sec, nsec)
	}
	w.WriteTag(term)
	return nil
}

func (w *Writer) writeClock(hour, min, sec, nsec int) {
	w.WriteTag(TagTime)
	w.writeDigits(hour, 2)
	w.writeDigits(min, 2)
	w.writeDigits(sec, 2)
	if nsec == 0 {
		return
	}
	w.WriteTag(TagPoint)
	switch {
	case nsec%1000000 == 0:
		w.writeDigits(nsec/1000000, 3)
	case nsec%1000 == 0:
		w.writeDigits(nsec/1000, 6)
	default:
		w.writeDigits(nsec, 9)
	}
}

// writeDigits appends x zero-padded to n digits.
func (w *Writer) writeDigits(x, n int) {
	start := len(w.buf)
	for i := 0; i < n; i++ {
		w.buf = append(w.buf, '0')
	}
	for i := n - 1; i >= 0 && x > 0; i-- {
		w.buf[start+i] = byte('0' + x%10)
		x /= 10
	}
}

func encodeGUID(w *Writer, v reflect.Value) error {
	u := v.Interface().(uuid.UUID)
	w.WriteTag(TagGUID)
	w.WriteTag(TagOpenbrace)
	w.WriteRaw([]byte(u.String()))
	w.WriteTag(TagClosebrace)
	return nil
}

func decodeTime(r *Reader, tag byte, dst reflect.Value) error {
	year, month, day := 1970, 1, 1
	var hour, min, sec, nsec int
	var err error
	next := tag
	if tag == TagDate {
		if year, err = r.ReadDigits(4); err != nil {
			return err
		}
		if month, err = r.ReadDigits(2); err != nil {
			return err
		}
		if day, err = r.ReadDigits(2); err != nil {
			return err
		}
		if next, err = r.ReadTag(); err != nil {
			return err
		}
	}
	if next == TagTime {
		if hour, min, sec, nsec, next, err = r.readClock(); err != nil {
			return err
		}
	}
	var loc *time.Location
	switch next {
	case TagUTC:
		loc = time.UTC
	case TagSemicolon:
		loc = time.Local
	default:
		return r.malformed("bad time terminator %q", next)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || min > 59 || sec > 59 {
		return r.malformed("time field out of range")
	}
	t := time.Date(year, time.Month(month), day, hour, min, sec, nsec, loc)
	if t.Day() != day {
		return r.malformed("day %d out of range for %04d-%02d", day, year, month)
	}
	switch dst.Kind() {
	case reflect.Struct:
		if dst.Type() != timeType {
			return r.Mismatch(tag, dst)
		}
		dst.Set(reflect.ValueOf(t))
		return nil
	case reflect.Interface:
		return assignTo(r, tag, dst, reflect.ValueOf(t))
	default:
		return r.Mismatch(tag, dst)
	}
}

// readClock reads hhmmss[.fraction] after the time tag and returns the
// byte that follows. The fraction holds 3, 6 or 9 digits.
func (r *Reader) readClock() (hour, min, sec, nsec int, next byte, err error) {
	if hour, err = r.ReadDigits(2); err != nil {
		return
	}
	if min, err = r.ReadDigits(2); err != nil {
		return
	}
	if sec, err = r.ReadDigits(2); err != nil {
		return
	}
	if next, err = r.ReadTag(); err != nil || next != TagPoint {
		return
	}
	n := 0
	for {
		if next, err = r.ReadTag(); err != nil {
			return
		}
		if next < '0' || next > '9' || n == 9 {
			break
		}
		nsec = nsec*10 + int(next-'0')
		n++
	}
	if n == 0 || n%3 != 0 {
		err = r.malformed("fraction of %d digits", n)
		return
	}
	for ; n < 9; n++ {
		nsec *= 10
	}
	return
}

func decodeGUID(r *Reader, tag byte, dst reflect.Value) error {
	if err := r.Expect(TagOpenbrace); err != nil {
		return err
	}
	tok, err := r.readToken(TagClosebrace)
	if err != nil {
		return err
	}
	if len(tok) != 36 {
		return r.malformed("bad GUID %q", tok)
	}
	u, err := uuid.ParseBytes(tok)
	if err != nil {
		return r.malformed("bad GUID %q", tok)
	}
	switch {
	case dst.Type() == uuidType:
		dst.Set(reflect.ValueOf(u))
		return nil
	case dst.Kind() == reflect.Interface:
		return assignTo(r, tag, dst, reflect.ValueOf(u))
	default:
		return r.Mismatch(tag, dst)
	}
}
