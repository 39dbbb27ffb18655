// Package frame wraps graphwire payloads in checksummed transport frames.
//
// Layout, all integers little endian:
//
//	"GW" | type (1) | total length (4) | flags (1) |
//	[uncompressed size (4) when compressed] | payload | CRC32 (4)
//
// The total length counts every byte including the CRC. The CRC (IEEE)
// covers everything after the magic up to the end of the payload.
package frame

import (
	"errors"
	"fmt"
)

// Frame types.
const (
	TypeData  byte = 0x01
	TypeError byte = 0x02
)

// Flags.
const (
	FlagZstd byte = 1 << 0
	FlagLZ4  byte = 1 << 1
)

const (
	magic0 = 'G'
	magic1 = 'W'

	headerSize = 8 // magic + type + length + flags
	crcSize    = 4

	// DefaultMaxSize bounds frames when Options.MaxSize is zero.
	DefaultMaxSize = 16 << 20
)

var (
	ErrFrameTooLarge = errors.New("frame: frame too large")
	ErrBadMagic      = errors.New("frame: bad magic")
	ErrCRC           = errors.New("frame: crc mismatch")
	ErrLength        = errors.New("frame: length mismatch")
	ErrType          = errors.New("frame: unexpected frame type")
)

// Compression selects transport compression for data frames.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses "none", "zstd" or "lz4". The empty string is
// none.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("frame: unknown compression %q", name)
	}
}

// Options configures framing.
type Options struct {
	Compression Compression
	// MaxSize bounds the total frame size and the uncompressed payload
	// size. Zero means DefaultMaxSize.
	MaxSize int
}

func (o Options) maxSize() int {
	if o.MaxSize > 0 {
		return o.MaxSize
	}
	return DefaultMaxSize
}

// Frame is a decoded frame.
type Frame struct {
	Type    byte
	Flags   byte
	Payload []byte
}
