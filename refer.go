package graphwire

import (
	"reflect"
	"unsafe"

	"github.com/rawbytedev/graphwire/internal/common"
)

// Identity keys a shareable value in the reference table. Two values
// share an identity only if they are the same allocation seen through the
// same type; equal contents are not enough.
type Identity struct {
	ptr unsafe.Pointer
	typ reflect.Type
	n   int
}

// IdentityOf returns the identity of pointers, maps and non-empty slices.
// Everything else, including nil and empty slices, has none.
func IdentityOf(v reflect.Value) (Identity, bool) {
	switch v.Kind() {
	case reflect.Pointer, reflect.Map:
		if v.IsNil() {
			return Identity{}, false
		}
		return Identity{ptr: v.UnsafePointer(), typ: v.Type()}, true
	case reflect.Slice:
		// empty slices may all alias the same zero-size allocation
		if v.Len() == 0 {
			return Identity{}, false
		}
		return Identity{ptr: v.UnsafePointer(), typ: v.Type(), n: v.Len()}, true
	default:
		return Identity{}, false
	}
}

// referTable maps identities to sequential ids for one pass.
type referTable struct {
	ref  map[Identity]int
	last int
}

func newReferTable() *referTable {
	return &referTable{ref: make(map[Identity]int)}
}

func (t *referTable) addCount(n int) { t.last += n }

func (t *referTable) set(id Identity) {
	t.ref[id] = t.last
	t.last++
}

// write appends r<id>; when id is known.
func (t *referTable) write(buf []byte, id Identity) ([]byte, bool) {
	r, ok := t.ref[id]
	if !ok {
		return buf, false
	}
	buf = append(buf, TagRef)
	buf = common.AppendInt(buf, int64(r))
	buf = append(buf, TagSemicolon)
	return buf, true
}

func (t *referTable) reset() {
	clear(t.ref)
	t.last = 0
}
