package frame

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// zstd.Encoder and zstd.Decoder are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("frame: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("frame: zstd decoder initialization failed: " + err.Error())
	}
}

// compress returns the compressed payload and its flag, or ok=false when
// compression would not shrink it.
func compress(data []byte, c Compression) (out []byte, flag byte, ok bool, err error) {
	switch c {
	case CompressionNone:
		return nil, 0, false, nil
	case CompressionZstd:
		out = zstdEncoder.EncodeAll(data, nil)
		flag = FlagZstd
	case CompressionLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, dst, nil)
		if err != nil {
			return nil, 0, false, fmt.Errorf("frame: lz4 compress: %w", err)
		}
		if n == 0 {
			return nil, 0, false, nil
		}
		out = dst[:n]
		flag = FlagLZ4
	default:
		return nil, 0, false, fmt.Errorf("frame: unsupported compression %s", c)
	}
	if len(out) >= len(data) {
		return nil, 0, false, nil
	}
	return out, flag, true, nil
}

func decompress(data []byte, flags byte, size int) ([]byte, error) {
	switch flags & (FlagZstd | FlagLZ4) {
	case FlagZstd:
		out, err := zstdDecoder.DecodeAll(data, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("frame: zstd decompress: %w", err)
		}
		if len(out) != size {
			return nil, fmt.Errorf("%w: zstd produced %d bytes, expected %d", ErrLength, len(out), size)
		}
		return out, nil
	case FlagLZ4:
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(data, out)
		if err != nil {
			return nil, fmt.Errorf("frame: lz4 decompress: %w", err)
		}
		if n != size {
			return nil, fmt.Errorf("%w: lz4 produced %d bytes, expected %d", ErrLength, n, size)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("frame: conflicting compression flags %#x", flags)
	}
}
