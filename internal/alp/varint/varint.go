// Package varint implements the ALP variable length integer: a 2-bit length
// class in the top bits of the first byte followed by a big-endian payload,
// 1 to 4 bytes in total.
package varint

import (
	"fmt"

	"github.com/danmuck/d7alp/internal/alp/codec"
)

// Max is the largest encodable value.
const Max uint32 = 0x3F_FF_FF_FF

// IsValid reports whether n can be encoded.
func IsValid(n uint32) bool {
	return n <= Max
}

// Size returns the minimal encoded length of n. The result for n > Max is
// meaningless.
func Size(n uint32) int {
	switch {
	case n <= 0x3F:
		return 1
	case n <= 0x3F_FF:
		return 2
	case n <= 0x3F_FF_FF:
		return 3
	default:
		return 4
	}
}

// Encode writes n to out and returns the byte count. It panics when n > Max
// or out is shorter than Size(n).
func Encode(n uint32, out []byte) int {
	if !IsValid(n) {
		panic(fmt.Sprintf("varint: %d exceeds max %d", n, Max))
	}
	size := Size(n)
	_ = out[size-1]
	for i := size - 1; i >= 0; i-- {
		out[i] = byte(n)
		n >>= 8
	}
	out[0] |= byte(size-1) << 6
	return size
}

// Append appends the encoding of n to dst.
func Append(dst []byte, n uint32) []byte {
	var buf [4]byte
	size := Encode(n, buf[:])
	return append(dst, buf[:size]...)
}

// Decode reads one varint from the front of b. Non-minimal encodings are
// accepted. The only failure is a codec.MissingBytesError.
func Decode(b []byte) (uint32, int, error) {
	if len(b) == 0 {
		return 0, 0, codec.MissingBytesError{N: 1}
	}
	size := int(b[0]>>6) + 1
	if err := codec.Missing(b, size); err != nil {
		return 0, 0, err
	}
	n := uint32(b[0] & 0x3F)
	for _, c := range b[1:size] {
		n = n<<8 | uint32(c)
	}
	return n, size, nil
}
