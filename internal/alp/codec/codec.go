// Package codec defines the encode/decode contract shared by every ALP wire
// type and the two error taxonomies it reports.
//
// Decoders are plain functions of the form
//
//	func DecodeX(b []byte) (X, int, error)
//
// returning the value and the number of bytes consumed from the front of b.
// A failed decode returns either a MissingBytesError (retry with more input
// at the same offset) or a ContentError (the bytes are invalid).
package codec

import "fmt"

// Encoder is implemented by every value with a wire form.
//
// EncodeTo writes exactly EncodedSize bytes to the front of out and returns
// that count. It assumes len(out) >= EncodedSize and panics otherwise; use
// EncodeInto or Marshal for a checked write.
type Encoder interface {
	EncodedSize() int
	EncodeTo(out []byte) int
}

// Validator is implemented by values whose fields carry invariants that
// must hold before encoding.
type Validator interface {
	Validate() error
}

// Validate runs v.Validate when v implements Validator.
func Validate(v any) error {
	if val, ok := v.(Validator); ok {
		return val.Validate()
	}
	return nil
}

// Marshal validates e and returns its wire form.
func Marshal(e Encoder) ([]byte, error) {
	if err := Validate(e); err != nil {
		return nil, err
	}
	out := make([]byte, e.EncodedSize())
	n := e.EncodeTo(out)
	if n != len(out) {
		panic(fmt.Sprintf("codec: %T wrote %d bytes, declared %d", e, n, len(out)))
	}
	return out, nil
}

// EncodeInto validates e and writes it to out after checking capacity.
func EncodeInto(e Encoder, out []byte) (int, error) {
	if err := Validate(e); err != nil {
		return 0, err
	}
	size := e.EncodedSize()
	if len(out) < size {
		return 0, fmt.Errorf("%w: need %d, have %d", ErrShortBuffer, size, len(out))
	}
	return e.EncodeTo(out[:size]), nil
}

// Bit returns 1 when v is set.
func Bit(v bool) byte {
	if v {
		return 1
	}
	return 0
}
