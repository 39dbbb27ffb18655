package frame

import (
	"errors"
	"fmt"

	"github.com/rawbytedev/graphwire"
)

// Code identifies an error category on the wire.
type Code byte

const (
	CodeUnknown Code = iota
	CodeUnsupportedType
	CodeMalformedStream
	CodeUnresolvedReference
	CodeClassIDConflict
	CodeTypeMismatch
)

var codeErrs = map[Code]error{
	CodeUnsupportedType:     graphwire.ErrUnsupportedType,
	CodeMalformedStream:     graphwire.ErrMalformedStream,
	CodeUnresolvedReference: graphwire.ErrUnresolvedReference,
	CodeClassIDConflict:     graphwire.ErrClassIDConflict,
	CodeTypeMismatch:        graphwire.ErrTypeMismatch,
}

var errUnknown = errors.New("frame: remote error")

// CodeOf maps err onto the graphwire error taxonomy.
func CodeOf(err error) Code {
	for _, c := range []Code{CodeUnsupportedType, CodeMalformedStream, CodeUnresolvedReference, CodeClassIDConflict, CodeTypeMismatch} {
		if errors.Is(err, codeErrs[c]) {
			return c
		}
	}
	return CodeUnknown
}

// Err returns the sentinel for c.
func (c Code) Err() error {
	if err, ok := codeErrs[c]; ok {
		return err
	}
	return errUnknown
}

func (c Code) String() string {
	if c == CodeUnknown {
		return "unknown"
	}
	if err, ok := codeErrs[c]; ok {
		return err.Error()
	}
	return fmt.Sprintf("Code(%d)", byte(c))
}

// RemoteError is an error received in an error frame.
type RemoteError struct {
	Code    Code
	Message string
}

func (e *RemoteError) Error() string { return "frame: remote: " + e.Message }

// Unwrap lets errors.Is match the taxonomy sentinel.
func (e *RemoteError) Unwrap() error { return e.Code.Err() }

// ErrorFrame encodes err as an error frame.
func ErrorFrame(err error) ([]byte, error) {
	return EncodeError(CodeOf(err), err.Error())
}

// Marshal serializes v in memory and frames it only once the whole graph
// encoded successfully.
func Marshal(v any, gw graphwire.Options, o Options) ([]byte, error) {
	payload, err := graphwire.Marshal(v, gw)
	if err != nil {
		return nil, err
	}
	return EncodeData(payload, o)
}

// Unmarshal checks a frame and decodes its payload into the value v
// points to.
func Unmarshal(data []byte, v any, gw graphwire.Options, o Options) error {
	payload, err := DecodeData(data, o)
	if err != nil {
		return err
	}
	return graphwire.Unmarshal(payload, v, gw)
}
