// Package codectest checks encoders against literal wire vectors.
package codectest

import (
	"bytes"
	"encoding/hex"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/danmuck/d7alp/internal/alp/codec"
)

// Decoder is the decode half of the codec contract for T.
type Decoder[T any] func(b []byte) (T, int, error)

// Hex parses a spaced hex literal such as "84 09 05".
func Hex(t testing.TB, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		t.Fatalf("bad hex literal %q: %v", s, err)
	}
	return b
}

// Check encodes v, compares it with want, decodes want back into v and
// confirms that every strict prefix of want fails with MissingBytes.
func Check[T codec.Encoder](t testing.TB, v T, want string, decode Decoder[T]) {
	t.Helper()
	wire := Hex(t, want)

	got, err := codec.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %T: %v", v, err)
	}
	if !bytes.Equal(got, wire) {
		t.Fatalf("encode %T: got=% X want=% X", v, got, wire)
	}
	if v.EncodedSize() != len(wire) {
		t.Fatalf("encoded size %T: got=%d want=%d", v, v.EncodedSize(), len(wire))
	}

	out, n, err := decode(wire)
	if err != nil {
		t.Fatalf("decode % X: %v", wire, err)
	}
	if n != len(wire) {
		t.Fatalf("decode % X: consumed %d of %d", wire, n, len(wire))
	}
	if !reflect.DeepEqual(out, v) {
		t.Fatalf("decode % X: got=%+v want=%+v", wire, out, v)
	}

	Truncations(t, wire, decode)
}

// Truncations decodes every strict prefix of wire and requires a
// MissingBytes failure for each.
func Truncations[T any](t testing.TB, wire []byte, decode Decoder[T]) {
	t.Helper()
	for k := 0; k < len(wire); k++ {
		_, _, err := decode(wire[:k])
		if !errors.Is(err, codec.ErrMissingBytes) {
			t.Fatalf("decode prefix % X (%d/%d): expected missing bytes, got %v", wire[:k], k, len(wire), err)
		}
	}
}

// ContentAt requires err to be a content error of kind want at offset.
func ContentAt(t testing.TB, err error, want error, offset int) {
	t.Helper()
	var ce codec.ContentError
	if !errors.As(err, &ce) {
		t.Fatalf("expected content error, got %v", err)
	}
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
	if ce.Offset != offset {
		t.Fatalf("expected offset %d, got %d (%v)", offset, ce.Offset, err)
	}
}
