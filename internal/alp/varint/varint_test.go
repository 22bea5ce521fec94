package varint

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/danmuck/d7alp/internal/alp/codec"
	logs "github.com/danmuck/d7alp/internal/logging"
	"github.com/danmuck/d7alp/internal/testutil/testlog"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

func TestEncodeVectors(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		n    uint32
		want string
	}{
		{0x00, "00"},
		{0x3F, "3F"},
		{0x40, "4040"},
		{0x3F_FF, "7FFF"},
		{0x40_00, "804000"},
		{0x3F_FF_FF, "BFFFFF"},
		{0x40_00_00, "C0400000"},
		{Max, "FFFFFFFF"},
	}
	for _, tc := range cases {
		want := mustHex(t, tc.want)
		got := Append(nil, tc.n)
		if !bytes.Equal(got, want) {
			t.Fatalf("encode 0x%X: got=%X want=%X", tc.n, got, want)
		}
		if Size(tc.n) != len(want) {
			t.Fatalf("size 0x%X: got=%d want=%d", tc.n, Size(tc.n), len(want))
		}
		n, size, err := Decode(want)
		if err != nil {
			t.Fatalf("decode %X: %v", want, err)
		}
		if n != tc.n || size != len(want) {
			t.Fatalf("decode %X: got=(0x%X,%d) want=(0x%X,%d)", want, n, size, tc.n, len(want))
		}
	}
	logs.Logf("varint/encode: %d vectors round-tripped", len(cases))
}

func TestDecodeAcceptsNonMinimal(t *testing.T) {
	testlog.Start(t)
	n, size, err := Decode(mustHex(t, "4000"))
	if err != nil || n != 0 || size != 2 {
		t.Fatalf("expected (0,2,nil), got (%d,%d,%v)", n, size, err)
	}
	n, size, err = Decode(mustHex(t, "C000003F"))
	if err != nil || n != 0x3F || size != 4 {
		t.Fatalf("expected (0x3F,4,nil), got (%d,%d,%v)", n, size, err)
	}
}

func TestDecodeIgnoresTrailingBytes(t *testing.T) {
	testlog.Start(t)
	n, size, err := Decode(mustHex(t, "7FFFAA"))
	if err != nil || n != 0x3FFF || size != 2 {
		t.Fatalf("expected (0x3FFF,2,nil), got (%d,%d,%v)", n, size, err)
	}
}

func TestDecodeTruncatedReportsMissingBytes(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		in   string
		need int
	}{
		{"", 1},
		{"40", 1},
		{"80", 2},
		{"8012", 1},
		{"C0", 3},
		{"C01234", 1},
	}
	for _, tc := range cases {
		_, _, err := Decode(mustHex(t, tc.in))
		var mb codec.MissingBytesError
		if !errors.As(err, &mb) {
			t.Fatalf("decode %q: expected MissingBytesError, got %v", tc.in, err)
		}
		if mb.N != tc.need {
			t.Fatalf("decode %q: need=%d want=%d", tc.in, mb.N, tc.need)
		}
		if !errors.Is(err, codec.ErrMissingBytes) {
			t.Fatalf("decode %q: expected ErrMissingBytes sentinel", tc.in)
		}
	}
}

func TestRoundTripAcrossBoundaries(t *testing.T) {
	testlog.Start(t)
	var buf [4]byte
	for _, base := range []uint32{0, 0x3F, 0x3F_FF, 0x3F_FF_FF, Max - 2} {
		for d := uint32(0); d < 3; d++ {
			n := base + d
			if !IsValid(n) {
				continue
			}
			size := Encode(n, buf[:])
			got, read, err := Decode(buf[:size])
			if err != nil || got != n || read != size {
				t.Fatalf("round trip 0x%X: got=(0x%X,%d,%v)", n, got, read, err)
			}
			if size != Size(n) {
				t.Fatalf("size 0x%X: wrote=%d size=%d", n, size, Size(n))
			}
		}
	}
}

func TestEncodeAboveMaxPanics(t *testing.T) {
	testlog.Start(t)
	if IsValid(Max + 1) {
		t.Fatalf("Max+1 must be invalid")
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for value above Max")
		}
	}()
	var buf [4]byte
	Encode(Max+1, buf[:])
}
