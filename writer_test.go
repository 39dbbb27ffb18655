package graphwire

import (
	"bytes"
	"errors"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type point struct {
	X, Y int
}

type tagged struct {
	ID     int `graphwire:"id"`
	Skip   int `graphwire:"-"`
	secret int
}

func marshalString(t *testing.T, v any, opts Options) string {
	t.Helper()
	data, err := Marshal(v, opts)
	require.NoError(t, err)
	return string(data)
}

func TestWriteScalars(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "n"},
		{"true", true, "t"},
		{"false", false, "f"},
		{"zero", 0, "0"},
		{"nine", 9, "9"},
		{"ten", 10, "i10;"},
		{"negative", -1, "i-1;"},
		{"int8", int8(-5), "i-5;"},
		{"max int32", int32(math.MaxInt32), "i2147483647;"},
		{"min int32", int64(math.MinInt32), "i-2147483648;"},
		{"above int32", uint32(math.MaxInt32 + 1), "l2147483648;"},
		{"int64", int64(1 << 40), "l1099511627776;"},
		{"max uint64", uint64(math.MaxUint64), "l18446744073709551615;"},
		{"big", big.NewInt(5), "l5;"},
		{"big value", *big.NewInt(-12), "l-12;"},
		{"float", 1.5, "d1.5;"},
		{"float32", float32(0.1), "d0.1;"},
		{"float exponent", 1e21, "d1e+21;"},
		{"integral float", 2.0, "d2;"},
		{"nan", math.NaN(), "N"},
		{"+inf", math.Inf(1), "I+"},
		{"-inf", math.Inf(-1), "I-"},
		{"empty string", "", "e"},
		{"one char", "a", "ua"},
		{"one BMP rune", "é", "ué"},
		{"string", "hello", `s5"hello"`},
		{"surrogate pair", "😀", `s2"😀"`},
		{"invalid utf8", "\xff", "b1\"\xff\""},
		{"empty bytes", []byte{}, `b""`},
		{"bytes", []byte("ab"), `b2"ab"`},
		{"byte array", [2]byte{'x', 'y'}, `b2"xy"`},
		{"pointer to int", func() *int { p := 7; return &p }(), "7"},
		{"error", errors.New("boom"), `Es4"boom"`},
		{"guid", uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e"), "g{0f8fad5b-d9cb-469f-a165-70867728950e}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, marshalString(t, tc.in, Options{}))
		})
	}
}

func TestWriteTime(t *testing.T) {
	cases := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "D20240102Z"},
		{time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "D20240102T030405Z"},
		{time.Date(2024, 1, 2, 3, 4, 5, 6*int(time.Millisecond), time.UTC), "D20240102T030405.006Z"},
		{time.Date(2024, 1, 2, 3, 4, 5, 7000, time.UTC), "D20240102T030405.000007Z"},
		{time.Date(2024, 1, 2, 3, 4, 5, 123456789, time.UTC), "D20240102T030405.123456789Z"},
		{time.Date(1970, 1, 1, 12, 0, 0, 0, time.UTC), "T120000Z"},
		{time.Date(2024, 12, 31, 23, 59, 59, 0, time.Local), "D20241231T235959;"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, marshalString(t, tc.in, Options{}), tc.in.String())
	}
	_, err := Marshal(time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC), Options{})
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestWriteContainers(t *testing.T) {
	require.Equal(t, "a{}", marshalString(t, []int{}, Options{}))
	require.Equal(t, "a2{12}", marshalString(t, []int{1, 2}, Options{}))
	require.Equal(t, "a2{12}", marshalString(t, [2]int{1, 2}, Options{}))
	require.Equal(t, "a3{1uan}", marshalString(t, []any{1, "a", nil}, Options{}))
	require.Equal(t, "m{}", marshalString(t, map[string]int{}, Options{}))
	require.Equal(t, "m2{ua1ub2}", marshalString(t, map[string]int{"b": 2, "a": 1}, Options{}))
	require.Equal(t, "m3{i-3;t0f1t}", marshalString(t, map[int]bool{1: true, 0: false, -3: true}, Options{}))
	require.Equal(t, "n", marshalString(t, []int(nil), Options{}))
	require.Equal(t, "n", marshalString(t, map[string]int(nil), Options{}))
}

func TestWriteObjects(t *testing.T) {
	require.Equal(t, `c5"point"2{uxuy}o0{12}`, marshalString(t, point{1, 2}, Options{}))
	require.Equal(t, `c5"point"2{uxuy}o0{12}`, marshalString(t, &point{1, 2}, Options{}))
	require.Equal(t, `c5"point"2{01}o0{12}`, marshalString(t, point{1, 2}, Options{FieldMode: FieldsByIndex}))
	require.Equal(t, `c6"tagged"1{s2"id"}o0{5}`, marshalString(t, tagged{ID: 5, Skip: 6, secret: 7}, Options{}))

	reg := NewRegistry()
	require.NoError(t, reg.RegisterClass("Pt", point{}))
	require.Equal(t, `c2"Pt"2{uxuy}o0{12}`, marshalString(t, point{1, 2}, Options{Registry: reg}))
}

func TestWriteCycle(t *testing.T) {
	x := &node{Name: "x"}
	x.Next = &node{Name: "y", Next: x}
	require.Equal(t, `c4"node"2{s4"name"s4"next"}o0{uxo0{uyr0;}}`, marshalString(t, x, Options{}))
}

func TestWriteSingleClassEmission(t *testing.T) {
	pts := []point{{1, 2}, {3, 4}, {5, 6}}
	got := marshalString(t, pts, Options{})
	require.Equal(t, `a3{c5"point"2{uxuy}o0{12}o0{34}o0{56}}`, got)
	require.Equal(t, 1, bytes.Count([]byte(got), []byte{TagClass}))
}

func TestWriterResetBetweenPasses(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	shared := map[string]int{}
	require.NoError(t, w.Serialize([]any{shared, shared}))
	require.NoError(t, w.Serialize([]any{shared, shared}))
	require.Equal(t, "a2{m{}r1;}a2{m{}r1;}", buf.String())

	buf.Reset()
	require.NoError(t, w.Serialize(point{1, 2}))
	require.NoError(t, w.Serialize(point{3, 4}))
	require.Equal(t, `c5"point"2{uxuy}o0{12}c5"point"2{uxuy}o0{34}`, buf.String())
}

func TestWriterNestedWrites(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	a, b := map[string]int{}, map[string]int{}
	require.NoError(t, w.Write(a))
	require.NoError(t, w.Write(b))
	require.NoError(t, w.Write([]any{a, a, b}))
	require.Zero(t, buf.Len())
	require.NoError(t, w.Flush())
	require.Equal(t, "m{}m{}a3{r0;r0;r1;}", buf.String())
}

func TestWriteUnsupported(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	err := w.Serialize([]any{1, make(chan int)})
	require.ErrorIs(t, err, ErrUnsupportedType)
	require.Zero(t, buf.Len())

	err = w.Serialize(1)
	require.ErrorIs(t, err, ErrFaulted)
	require.ErrorIs(t, err, ErrUnsupportedType)

	_, err = Marshal(func() {}, Options{})
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestWriteClassNameConflict(t *testing.T) {
	first := func() any {
		type item struct{ A int }
		return item{1}
	}
	second := func() any {
		type item struct{ B string }
		return item{"b"}
	}
	_, err := Marshal([]any{first(), second()}, Options{})
	require.ErrorIs(t, err, ErrClassIDConflict)

	// separate passes do not conflict
	_, err = Marshal(first(), Options{})
	require.NoError(t, err)
	_, err = Marshal(second(), Options{})
	require.NoError(t, err)
}

func TestSimpleModeCycleFails(t *testing.T) {
	x := &node{Name: "x"}
	x.Next = x
	_, err := Marshal(x, Options{Simple: true, MaxDepth: 64})
	require.ErrorIs(t, err, ErrTooDeep)
	require.NotErrorIs(t, err, ErrUnsupportedType)

	_, err = Marshal(x, Options{Simple: true})
	require.ErrorIs(t, err, ErrTooDeep)
}

func TestSimpleModeRepeatsShared(t *testing.T) {
	shared := &point{1, 2}
	require.Equal(t, `a2{c5"point"2{uxuy}o0{12}o0{12}}`, marshalString(t, []*point{shared, shared}, Options{Simple: true}))
	require.Equal(t, `a2{c5"point"2{uxuy}o0{12}r1;}`, marshalString(t, []*point{shared, shared}, Options{}))
}

func TestCustomEncoder(t *testing.T) {
	type celsius float64
	reg := NewRegistry()
	reg.RegisterEncoder(EncoderFunc(
		func(v reflect.Value) bool { return v.Type() == reflect.TypeOf(celsius(0)) },
		func(w *Writer, v reflect.Value) error {
			w.WriteString(strconv.FormatFloat(v.Float(), 'f', 1, 64) + "C")
			return nil
		},
	))
	require.Equal(t, `s5"21.5C"`, marshalString(t, celsius(21.5), Options{Registry: reg}))
	// the default registry is untouched
	require.Equal(t, "d21.5;", marshalString(t, celsius(21.5), Options{}))
	// a predicate that calls v.Type() never sees the zero Value
	require.Equal(t, "a2{ns4\"0.5C\"}", marshalString(t, []any{nil, celsius(0.5)}, Options{Registry: reg}))
	require.Equal(t, "n", marshalString(t, nil, Options{Registry: reg}))
}

func TestNilSinkDiscards(t *testing.T) {
	w := NewWriter(nil, Options{})
	for i := 0; i < 3; i++ {
		require.NoError(t, w.Serialize([]string{"a", "b"}))
		require.Zero(t, w.Buffered())
	}
	require.NoError(t, w.Write(7))
	require.Equal(t, 1, w.Buffered())
	require.NoError(t, w.Flush())
	require.Zero(t, w.Buffered())
}
