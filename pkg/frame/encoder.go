package frame

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"
)

// EncodeData frames a graphwire payload, compressing it when o asks for
// it and it helps.
func EncodeData(payload []byte, o Options) ([]byte, error) {
	if len(payload) > o.maxSize() {
		return nil, fmt.Errorf("%w: payload of %d bytes exceeds %d", ErrFrameTooLarge, len(payload), o.maxSize())
	}
	body, flag, ok, err := compress(payload, o.Compression)
	if err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	writeHeader(buf, TypeData)
	if ok {
		buf.WriteByte(flag)
		binary.Write(buf, binary.LittleEndian, uint32(len(payload)))
		buf.Write(body)
	} else {
		buf.WriteByte(0)
		buf.Write(payload)
	}
	return finish(buf.Bytes(), o.maxSize())
}

// EncodeError builds an error frame carrying code and msg. Messages
// longer than 64 KiB are truncated.
func EncodeError(code Code, msg string) ([]byte, error) {
	if len(msg) > math.MaxUint16 {
		msg = msg[:math.MaxUint16]
	}
	buf := &bytes.Buffer{}
	writeHeader(buf, TypeError)
	buf.WriteByte(0)
	buf.WriteByte(byte(code))
	binary.Write(buf, binary.LittleEndian, uint16(len(msg)))
	buf.WriteString(msg)
	return finish(buf.Bytes(), math.MaxInt)
}

// writeHeader writes the magic, the type and a length placeholder.
func writeHeader(buf *bytes.Buffer, typ byte) {
	buf.WriteByte(magic0)
	buf.WriteByte(magic1)
	buf.WriteByte(typ)
	binary.Write(buf, binary.LittleEndian, uint32(0))
}

// finish fills in the length and appends the CRC.
func finish(out []byte, maxSize int) ([]byte, error) {
	total := len(out) + crcSize
	if total > maxSize || total > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrFrameTooLarge, total, maxSize)
	}
	binary.LittleEndian.PutUint32(out[3:], uint32(total))
	crc := crc32.ChecksumIEEE(out[2:])
	out = binary.LittleEndian.AppendUint32(out, crc)
	return out, nil
}
