package dash7

import (
	"errors"
	"testing"

	"github.com/danmuck/d7alp/internal/alp/codec"
	logs "github.com/danmuck/d7alp/internal/logging"
	"github.com/danmuck/d7alp/internal/testutil/codectest"
	"github.com/danmuck/d7alp/internal/testutil/testlog"
)

func vidAddressee() Addressee {
	return Addressee{NlsMethod: NlsAesCcm32, AccessClass: 0xFF, Address: VID{0xAB, 0xCD}}
}

func TestAddresseeVectors(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name string
		in   Addressee
		want string
	}{
		{"nbid", Addressee{NlsMethod: NlsNone, AccessClass: 0x00, Address: NbID(0x15)}, "00 00 15"},
		{"noid", Addressee{NlsMethod: NlsAesCbcMac128, AccessClass: 0x24, Address: NoID{}}, "12 24"},
		{"uid", Addressee{NlsMethod: NlsAesCcm64, AccessClass: 0x48, Address: UID{0, 1, 2, 3, 4, 5, 6, 7}}, "26 48 0001020304050607"},
		{"vid", vidAddressee(), "37 FF AB CD"},
	}
	for _, tc := range cases {
		codectest.Check(t, tc.in, tc.want, DecodeAddressee)
		logs.Logf("dash7/addressee: %s ok", tc.name)
	}
}

func TestParseAddressUsesExternalTag(t *testing.T) {
	testlog.Start(t)
	b := codectest.Hex(t, "AB CD EF")
	addr, n, err := ParseAddress(AddressVID, b)
	if err != nil || n != 2 || addr != (VID{0xAB, 0xCD}) {
		t.Fatalf("vid parse: addr=%v n=%d err=%v", addr, n, err)
	}
	addr, n, err = ParseAddress(AddressNbID, b)
	if err != nil || n != 1 || addr != NbID(0xAB) {
		t.Fatalf("nbid parse: addr=%v n=%d err=%v", addr, n, err)
	}
	if _, _, err := ParseAddress(AddressUID, b); !errors.Is(err, codec.ErrMissingBytes) {
		t.Fatalf("expected missing bytes for short uid, got %v", err)
	}
	_, _, err = ParseAddress(AddressType(4), b)
	codectest.ContentAt(t, err, codec.ErrUnknownEnumVariant, 0)
}

func TestAddresseeUnknownNlsMethodIsContentError(t *testing.T) {
	testlog.Start(t)
	_, _, err := DecodeAddressee(codectest.Hex(t, "38 FF AB CD"))
	codectest.ContentAt(t, err, codec.ErrUnknownEnumVariant, 0)
}

func TestAddresseeValidate(t *testing.T) {
	testlog.Start(t)
	if _, err := codec.Marshal(Addressee{}); !errors.Is(err, codec.ErrMissingOperand) {
		t.Fatalf("expected missing address, got %v", err)
	}
	bad := vidAddressee()
	bad.NlsMethod = 9
	var ve codec.ValidationError
	if _, err := codec.Marshal(bad); !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestQos(t *testing.T) {
	testlog.Start(t)
	codectest.Check(t, Qos{Retry: RetryNo, Resp: RespNoRpt}, "04", DecodeQos)
	codectest.Check(t, Qos{Retry: RetryNo, Resp: RespPreferred}, "06", DecodeQos)

	_, _, err := DecodeQos(codectest.Hex(t, "03"))
	codectest.ContentAt(t, err, codec.ErrUnknownEnumVariant, 0)
	_, _, err = DecodeQos(codectest.Hex(t, "0A"))
	codectest.ContentAt(t, err, codec.ErrUnknownEnumVariant, 0)
}

func TestInterfaceConfiguration(t *testing.T) {
	testlog.Start(t)
	cfg := InterfaceConfiguration{
		Qos:       Qos{Retry: RetryNo, Resp: RespAny},
		To:        0x23,
		Te:        0x34,
		Addressee: vidAddressee(),
	}
	codectest.Check(t, cfg, "02 23 34 37 FF AB CD", DecodeInterfaceConfiguration)

	_, _, err := DecodeInterfaceConfiguration(codectest.Hex(t, "02 23 34 3F FF AB CD"))
	codectest.ContentAt(t, err, codec.ErrUnknownEnumVariant, 3)
}

func TestInterfaceStatus(t *testing.T) {
	testlog.Start(t)
	state := [NlsStateLen]byte{0x00, 0x11, 0x22, 0x33, 0x44}
	status, err := NewInterfaceStatus(InterfaceStatus{
		ChHeader:  1,
		ChIdx:     0x0123,
		Rxlev:     2,
		Lb:        3,
		Snr:       4,
		Status:    5,
		Token:     6,
		Seq:       7,
		RespTo:    8,
		Addressee: vidAddressee(),
		NlsState:  &state,
	})
	if err != nil {
		t.Fatalf("new interface status: %v", err)
	}
	codectest.Check(t, status, "01 0123 02 03 04 05 06 07 08 37 FF ABCD 0011223344", DecodeInterfaceStatus)

	plain := status
	plain.Addressee = Addressee{NlsMethod: NlsNone, AccessClass: 0x01, Address: NoID{}}
	plain.NlsState = nil
	codectest.Check(t, plain, "01 0123 02 03 04 05 06 07 08 10 01", DecodeInterfaceStatus)
}

func TestNewInterfaceStatusChecksNlsState(t *testing.T) {
	testlog.Start(t)
	_, err := NewInterfaceStatus(InterfaceStatus{Addressee: vidAddressee()})
	if !errors.Is(err, codec.ErrMissingNlsState) {
		t.Fatalf("expected ErrMissingNlsState, got %v", err)
	}
	state := [NlsStateLen]byte{}
	_, err = NewInterfaceStatus(InterfaceStatus{
		Addressee: Addressee{Address: NoID{}},
		NlsState:  &state,
	})
	if !errors.Is(err, codec.ErrUnexpectedNlsState) {
		t.Fatalf("expected ErrUnexpectedNlsState, got %v", err)
	}
}
