package frame

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rawbytedev/graphwire"
	"github.com/stretchr/testify/require"
)

type node struct {
	Name string
	Next *node
}

func TestDataFrameRoundTrip(t *testing.T) {
	payload := []byte(strings.Repeat("s5\"hello\"", 100))
	for _, c := range []Compression{CompressionNone, CompressionZstd, CompressionLZ4} {
		t.Run(c.String(), func(t *testing.T) {
			data, err := EncodeData(payload, Options{Compression: c})
			require.NoError(t, err)
			if c != CompressionNone {
				require.Less(t, len(data), len(payload))
			}
			got, err := DecodeData(data, Options{})
			require.NoError(t, err)
			require.Equal(t, payload, got)
		})
	}
}

func TestDataFrameLayout(t *testing.T) {
	data, err := EncodeData([]byte("n"), Options{})
	require.NoError(t, err)
	require.Equal(t, byte('G'), data[0])
	require.Equal(t, byte('W'), data[1])
	require.Equal(t, TypeData, data[2])
	require.Equal(t, []byte{13, 0, 0, 0}, data[3:7])
	require.Equal(t, byte(0), data[7])
	require.Equal(t, byte('n'), data[8])
	require.Len(t, data, 13)
}

func TestIncompressibleStaysRaw(t *testing.T) {
	data, err := EncodeData([]byte("a{}"), Options{Compression: CompressionZstd})
	require.NoError(t, err)
	f, err := Decode(data, Options{})
	require.NoError(t, err)
	require.Zero(t, f.Flags)
	require.Equal(t, []byte("a{}"), f.Payload)
}

func TestCorruptionDetected(t *testing.T) {
	data, err := EncodeData([]byte("s5\"hello\""), Options{})
	require.NoError(t, err)

	flipped := bytes.Clone(data)
	flipped[10] ^= 0xff
	_, err = DecodeData(flipped, Options{})
	require.ErrorIs(t, err, ErrCRC)

	badMagic := bytes.Clone(data)
	badMagic[0] = 'X'
	_, err = DecodeData(badMagic, Options{})
	require.ErrorIs(t, err, ErrBadMagic)

	_, err = DecodeData(data[:len(data)-1], Options{})
	require.ErrorIs(t, err, ErrLength)
}

func TestSizeLimit(t *testing.T) {
	payload := bytes.Repeat([]byte{'x'}, 100)
	_, err := EncodeData(payload, Options{MaxSize: 50})
	require.ErrorIs(t, err, ErrFrameTooLarge)

	data, err := EncodeData(payload, Options{})
	require.NoError(t, err)
	_, err = DecodeData(data, Options{MaxSize: 50})
	require.ErrorIs(t, err, ErrFrameTooLarge)

	_, err = ReadFrame(bytes.NewReader(data), 50)
	require.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestCompressedSizeLimit(t *testing.T) {
	payload := bytes.Repeat([]byte{'x'}, 4096)
	data, err := EncodeData(payload, Options{Compression: CompressionLZ4})
	require.NoError(t, err)
	require.Less(t, len(data), 1024)
	_, err = DecodeData(data, Options{MaxSize: 1024})
	require.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestReadFrameStream(t *testing.T) {
	a, err := EncodeData([]byte("1"), Options{})
	require.NoError(t, err)
	b, err := EncodeError(CodeMalformedStream, "bad tag")
	require.NoError(t, err)
	stream := bytes.NewReader(append(bytes.Clone(a), b...))

	got, err := ReadFrame(stream, 0)
	require.NoError(t, err)
	require.Equal(t, a, got)
	got, err = ReadFrame(stream, 0)
	require.NoError(t, err)
	require.Equal(t, b, got)
}

func TestErrorFrame(t *testing.T) {
	data, err := EncodeError(CodeUnresolvedReference, "object 7")
	require.NoError(t, err)
	code, msg, err := DecodeError(data)
	require.NoError(t, err)
	require.Equal(t, CodeUnresolvedReference, code)
	require.Equal(t, "object 7", msg)

	_, err = DecodeData(data, Options{})
	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	require.ErrorIs(t, err, graphwire.ErrUnresolvedReference)
}

func TestCodeOf(t *testing.T) {
	_, err := graphwire.Marshal(make(chan int), graphwire.Options{})
	require.Equal(t, CodeUnsupportedType, CodeOf(err))
	require.Equal(t, CodeUnknown, CodeOf(errors.New("other")))
	require.ErrorIs(t, CodeTypeMismatch.Err(), graphwire.ErrTypeMismatch)

	data, err := ErrorFrame(err)
	require.NoError(t, err)
	code, _, err := DecodeError(data)
	require.NoError(t, err)
	require.Equal(t, CodeUnsupportedType, code)
}

func TestMarshalCycle(t *testing.T) {
	x := &node{Name: "x"}
	x.Next = &node{Name: "y", Next: x}
	data, err := Marshal(x, graphwire.Options{}, Options{Compression: CompressionZstd})
	require.NoError(t, err)

	var got *node
	require.NoError(t, Unmarshal(data, &got, graphwire.Options{}, Options{}))
	require.Equal(t, "y", got.Next.Name)
	require.Same(t, got, got.Next.Next)
}

func TestMarshalFailureWritesNothing(t *testing.T) {
	data, err := Marshal([]any{1, make(chan int)}, graphwire.Options{}, Options{})
	require.ErrorIs(t, err, graphwire.ErrUnsupportedType)
	require.Nil(t, data)
}

func TestParseCompression(t *testing.T) {
	for _, name := range []string{"none", "zstd", "lz4"} {
		c, err := ParseCompression(name)
		require.NoError(t, err)
		require.Equal(t, name, c.String())
	}
	_, err := ParseCompression("gzip")
	require.Error(t, err)
}
