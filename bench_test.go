package graphwire

import (
	"bytes"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type benchRecord struct {
	Val      []string
	Mod      []int8
	Integers []int16
	Float3   []float32
	Float6   []float64
}

func newBenchRecord() benchRecord {
	return benchRecord{
		Val: []string{"azerty", "hello", "world", "random"},
		Mod: []int8{12, 10, 13, 1}, Integers: []int16{100, 250, 300},
		Float3: []float32{12.13, 16.23, 75.1}, Float6: []float64{100.5, 165.63, 153.5},
	}
}

func BenchmarkWriterSmall(b *testing.B) {
	type small struct{ Int int8 }
	z := small{Int: 1}
	w := NewWriter(nil, Options{})
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = w.Serialize(z)
	}
}

func BenchmarkWriterRecord(b *testing.B) {
	z := newBenchRecord()
	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		_ = w.Serialize(z)
	}
}

func BenchmarkWriterRecordSimple(b *testing.B) {
	z := newBenchRecord()
	var buf bytes.Buffer
	w := NewWriter(&buf, Options{Simple: true})
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		_ = w.Serialize(z)
	}
}

func BenchmarkReaderRecord(b *testing.B) {
	z := newBenchRecord()
	data, err := Marshal(z, Options{})
	require.NoError(b, err)
	var y benchRecord
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Unmarshal(data, &y, Options{})
	}
	require.EqualValues(b, z, y)
}

func BenchmarkCycle(b *testing.B) {
	nodes := make([]*node, 64)
	for i := range nodes {
		nodes[i] = &node{Name: "n"}
	}
	for i := range nodes {
		nodes[i].Next = nodes[(i+1)%len(nodes)]
	}
	data, err := Marshal(nodes[0], Options{})
	require.NoError(b, err)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		out, _ := Marshal(nodes[0], Options{})
		_, _ = Decode[*node](out, Options{})
	}
	b.SetBytes(int64(len(data)))
}

func BenchmarkYAMLRecord(b *testing.B) {
	z := newBenchRecord()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = yaml.Marshal(z)
	}
}

func BenchmarkCBORRecord(b *testing.B) {
	z := newBenchRecord()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = cbor.Marshal(z)
	}
}
