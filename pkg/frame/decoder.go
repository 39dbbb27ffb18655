package frame

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

// Decode validates a complete frame and returns it with the payload
// decompressed.
func Decode(data []byte, o Options) (Frame, error) {
	var f Frame
	if len(data) < headerSize+crcSize {
		return f, fmt.Errorf("%w: %d bytes is shorter than a frame", ErrLength, len(data))
	}
	if data[0] != magic0 || data[1] != magic1 {
		return f, ErrBadMagic
	}
	length := binary.LittleEndian.Uint32(data[3:])
	if uint64(length) > uint64(o.maxSize()) {
		return f, fmt.Errorf("%w: %d bytes exceeds %d", ErrFrameTooLarge, length, o.maxSize())
	}
	if int(length) != len(data) {
		return f, fmt.Errorf("%w: header says %d, got %d", ErrLength, length, len(data))
	}
	payloadEnd := len(data) - crcSize
	want := binary.LittleEndian.Uint32(data[payloadEnd:])
	if crc32.ChecksumIEEE(data[2:payloadEnd]) != want {
		return f, ErrCRC
	}
	f.Type = data[2]
	f.Flags = data[7]
	payload := data[headerSize:payloadEnd]
	if f.Flags&(FlagZstd|FlagLZ4) != 0 {
		if len(payload) < 4 {
			return f, fmt.Errorf("%w: missing uncompressed size", ErrLength)
		}
		size := binary.LittleEndian.Uint32(payload)
		if uint64(size) > uint64(o.maxSize()) {
			return f, fmt.Errorf("%w: uncompressed payload of %d bytes exceeds %d", ErrFrameTooLarge, size, o.maxSize())
		}
		out, err := decompress(payload[4:], f.Flags, int(size))
		if err != nil {
			return f, err
		}
		payload = out
	}
	f.Payload = payload
	return f, nil
}

// DecodeData returns the payload of a data frame. An error frame is
// returned as its carried error.
func DecodeData(data []byte, o Options) ([]byte, error) {
	f, err := Decode(data, o)
	if err != nil {
		return nil, err
	}
	switch f.Type {
	case TypeData:
		return f.Payload, nil
	case TypeError:
		code, msg, err := parseError(f.Payload)
		if err != nil {
			return nil, err
		}
		return nil, &RemoteError{Code: code, Message: msg}
	default:
		return nil, fmt.Errorf("%w: %#x", ErrType, f.Type)
	}
}

// DecodeError returns the code and message of an error frame.
func DecodeError(data []byte) (Code, string, error) {
	f, err := Decode(data, Options{})
	if err != nil {
		return 0, "", err
	}
	if f.Type != TypeError {
		return 0, "", fmt.Errorf("%w: %#x is not an error frame", ErrType, f.Type)
	}
	return parseError(f.Payload)
}

func parseError(p []byte) (Code, string, error) {
	if len(p) < 3 {
		return 0, "", fmt.Errorf("%w: short error payload", ErrLength)
	}
	n := int(binary.LittleEndian.Uint16(p[1:]))
	if len(p) != 3+n {
		return 0, "", fmt.Errorf("%w: error message of %d bytes, header says %d", ErrLength, len(p)-3, n)
	}
	return Code(p[0]), string(p[3:]), nil
}

// ReadFrame reads exactly one frame from r. The declared length is checked
// against maxSize (zero means DefaultMaxSize) before the body is
// allocated.
func ReadFrame(r io.Reader, maxSize int) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	var head [7]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, err
	}
	if head[0] != magic0 || head[1] != magic1 {
		return nil, ErrBadMagic
	}
	length := binary.LittleEndian.Uint32(head[3:])
	if uint64(length) > uint64(maxSize) {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrFrameTooLarge, length, maxSize)
	}
	if length < headerSize+crcSize {
		return nil, fmt.Errorf("%w: declared length %d", ErrLength, length)
	}
	out := make([]byte, length)
	copy(out, head[:])
	if _, err := io.ReadFull(r, out[len(head):]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return out, nil
}
