package codec

import (
	"errors"
	"fmt"
)

// Decode failures.
var (
	ErrMissingBytes       = errors.New("codec: missing bytes")
	ErrUnknownOpCode      = errors.New("codec: unknown opcode")
	ErrUnknownEnumVariant = errors.New("codec: unknown enum variant")
	ErrBadEncodedRange    = errors.New("codec: bad encoded range")
	ErrBadLength          = errors.New("codec: declared length does not match content")
	ErrUnsupported        = errors.New("codec: unsupported encoding")
)

// Validation failures, raised before a value is allowed onto the wire.
var (
	ErrOffsetTooBig         = errors.New("codec: offset too big")
	ErrSizeTooBig           = errors.New("codec: size too big")
	ErrDataTooBig           = errors.New("codec: data too big")
	ErrMaskBadSize          = errors.New("codec: mask size does not match data size")
	ErrStartGreaterThanStop = errors.New("codec: range start greater than stop")
	ErrBitmapBadSize        = errors.New("codec: bitmap size does not match range")
	ErrBoundWidth           = errors.New("codec: range bound width out of range")
	ErrMissingNlsState      = errors.New("codec: nls method requires an nls state")
	ErrUnexpectedNlsState   = errors.New("codec: nls state given without an nls method")
	ErrMissingOperand       = errors.New("codec: required operand is nil")
	ErrValueOutOfRange      = errors.New("codec: value does not fit its bit field")
)

var ErrShortBuffer = errors.New("codec: output buffer too small")

// MissingBytesError reports a truncated input. Decoding the same input
// extended by N bytes may succeed.
type MissingBytesError struct {
	N int
}

func (e MissingBytesError) Error() string {
	return fmt.Sprintf("codec: missing %d byte(s)", e.N)
}

func (e MissingBytesError) Unwrap() error {
	return ErrMissingBytes
}

// ContentError reports bytes that are complete but invalid. Offset counts
// from the start of the outermost decode call once the error has been
// shifted through every enclosing frame.
type ContentError struct {
	Offset int
	Field  string
	Value  uint32
	Err    error
}

func (e ContentError) Error() string {
	return fmt.Sprintf("%v: %s=0x%02X at offset %d", e.Err, e.Field, e.Value, e.Offset)
}

func (e ContentError) Unwrap() error {
	return e.Err
}

// ValidationError reports a value that cannot be encoded.
type ValidationError struct {
	Field string
	Err   error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%v (%s)", e.Err, e.Field)
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

// Missing returns a MissingBytesError when b holds fewer than n bytes.
func Missing(b []byte, n int) error {
	if len(b) < n {
		return MissingBytesError{N: n - len(b)}
	}
	return nil
}

// Unknown builds a content error for an unrecognised discriminant at offset 0.
func Unknown(field string, value uint8) error {
	return ContentError{Field: field, Value: uint32(value), Err: ErrUnknownEnumVariant}
}

// Invalid builds a content error of kind err at offset 0.
func Invalid(err error, field string, value uint32) error {
	return ContentError{Field: field, Value: value, Err: err}
}

// Shift moves a child's content error by the n header bytes its parent
// consumed before delegating. Other errors pass through unchanged.
func Shift(err error, n int) error {
	if ce, ok := err.(ContentError); ok {
		ce.Offset += n
		return ce
	}
	return err
}

// Reject wraps a validation sentinel with the field it applies to.
func Reject(field string, err error) error {
	return ValidationError{Field: field, Err: err}
}

// MissingCount returns the byte count of a MissingBytesError found in err.
func MissingCount(err error) (int, bool) {
	var mb MissingBytesError
	if errors.As(err, &mb) {
		return mb.N, true
	}
	return 0, false
}

// ContentOffset returns the offset of a ContentError found in err.
func ContentOffset(err error) (int, bool) {
	var ce ContentError
	if errors.As(err, &ce) {
		return ce.Offset, true
	}
	return 0, false
}
