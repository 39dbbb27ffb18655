package common

import (
	"reflect"
	"strconv"
)

// IsSignedKind reports whether k is a signed integer kind.
func IsSignedKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	default:
		return false
	}
}

// IsUnsignedKind reports whether k is an unsigned integer kind.
func IsUnsignedKind(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	default:
		return false
	}
}

// IsFloatKind reports whether k is a floating point kind.
func IsFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

// IsNumericKind reports whether k is any integer or float kind.
func IsNumericKind(k reflect.Kind) bool {
	return IsSignedKind(k) || IsUnsignedKind(k) || IsFloatKind(k)
}

// FloatBits returns the bit size used to format a float of kind k.
func FloatBits(k reflect.Kind) int {
	if k == reflect.Float32 {
		return 32
	}
	return 64
}

// AppendInt appends the canonical decimal form of x.
func AppendInt(dst []byte, x int64) []byte {
	return strconv.AppendInt(dst, x, 10)
}

// AppendUint appends the canonical decimal form of x.
func AppendUint(dst []byte, x uint64) []byte {
	return strconv.AppendUint(dst, x, 10)
}

// IsDigit reports whether c is an ASCII decimal digit.
func IsDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// ValidDecimal reports whether b is a canonical decimal token: optional
// leading '-' when signed is set, at least one digit, no leading zeros
// except the literal 0, and no "-0".
func ValidDecimal(b []byte, signed bool) bool {
	if len(b) == 0 {
		return false
	}
	if b[0] == '-' {
		if !signed || len(b) == 1 || b[1] == '0' {
			return false
		}
		b = b[1:]
	}
	if len(b) > 1 && b[0] == '0' {
		return false
	}
	for _, c := range b {
		if !IsDigit(c) {
			return false
		}
	}
	return true
}

// UTF16Len returns the number of UTF-16 code units needed for s.
// Invalid bytes count as one unit each, like the replacement rune.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += RuneUnits(r)
	}
	return n
}

// RuneUnits returns how many UTF-16 code units r occupies.
func RuneUnits(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}
