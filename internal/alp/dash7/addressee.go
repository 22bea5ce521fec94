// Package dash7 holds the DASH7 session layer operands carried by ALP
// actions: addressing, QoS, and the D7ASP interface configuration and status.
package dash7

import (
	"github.com/danmuck/d7alp/internal/alp/codec"
)

// AddressType is the 2-bit identifier type. It is stored in the byte ahead of
// the address, never with it.
type AddressType uint8

const (
	AddressNbID AddressType = 0
	AddressNoID AddressType = 1
	AddressUID  AddressType = 2
	AddressVID  AddressType = 3
)

// Address is one of NbID, NoID, UID or VID.
type Address interface {
	codec.Encoder
	Type() AddressType
}

// NbID is the number of devices expected to answer a broadcast.
type NbID uint8

// NoID addresses every listener.
type NoID struct{}

// UID is a device's 64-bit unique id.
type UID [8]byte

// VID is a device's 16-bit virtual id.
type VID [2]byte

func (NbID) Type() AddressType { return AddressNbID }
func (NbID) EncodedSize() int  { return 1 }
func (a NbID) EncodeTo(out []byte) int {
	out[0] = byte(a)
	return 1
}

func (NoID) Type() AddressType   { return AddressNoID }
func (NoID) EncodedSize() int    { return 0 }
func (NoID) EncodeTo([]byte) int { return 0 }

func (UID) Type() AddressType { return AddressUID }
func (UID) EncodedSize() int  { return 8 }
func (a UID) EncodeTo(out []byte) int {
	return copy(out[:8], a[:])
}

func (VID) Type() AddressType { return AddressVID }
func (VID) EncodedSize() int  { return 2 }
func (a VID) EncodeTo(out []byte) int {
	return copy(out[:2], a[:])
}

// ParseAddress decodes an address whose type was read by the caller from a
// neighbouring byte.
func ParseAddress(t AddressType, b []byte) (Address, int, error) {
	switch t {
	case AddressNbID:
		if err := codec.Missing(b, 1); err != nil {
			return nil, 0, err
		}
		return NbID(b[0]), 1, nil
	case AddressNoID:
		return NoID{}, 0, nil
	case AddressUID:
		if err := codec.Missing(b, 8); err != nil {
			return nil, 0, err
		}
		var id UID
		copy(id[:], b)
		return id, 8, nil
	case AddressVID:
		if err := codec.Missing(b, 2); err != nil {
			return nil, 0, err
		}
		var id VID
		copy(id[:], b)
		return id, 2, nil
	default:
		return nil, 0, codec.Unknown("address_type", uint8(t))
	}
}

// NlsMethod is the network layer security method.
type NlsMethod uint8

const (
	NlsNone         NlsMethod = 0
	NlsAesCtr       NlsMethod = 1
	NlsAesCbcMac128 NlsMethod = 2
	NlsAesCbcMac64  NlsMethod = 3
	NlsAesCbcMac32  NlsMethod = 4
	NlsAesCcm128    NlsMethod = 5
	NlsAesCcm64     NlsMethod = 6
	NlsAesCcm32     NlsMethod = 7
)

func (m NlsMethod) valid() bool {
	return m <= NlsAesCcm32
}

// Addressee is the target of a D7ASP request.
//
// Wire form: byte 0 = address type<<4 | nls method, byte 1 = access class,
// then the address.
type Addressee struct {
	NlsMethod   NlsMethod
	AccessClass uint8
	Address     Address
}

func (a Addressee) Validate() error {
	if a.Address == nil {
		return codec.Reject("addressee.address", codec.ErrMissingOperand)
	}
	if !a.NlsMethod.valid() {
		return codec.Reject("addressee.nls_method", codec.ErrValueOutOfRange)
	}
	return nil
}

func (a Addressee) EncodedSize() int {
	return 2 + a.Address.EncodedSize()
}

func (a Addressee) EncodeTo(out []byte) int {
	out[0] = byte(a.Address.Type())<<4 | byte(a.NlsMethod)
	out[1] = a.AccessClass
	return 2 + a.Address.EncodeTo(out[2:])
}

func DecodeAddressee(b []byte) (Addressee, int, error) {
	if err := codec.Missing(b, 2); err != nil {
		return Addressee{}, 0, err
	}
	nls := NlsMethod(b[0] & 0x0F)
	if !nls.valid() {
		return Addressee{}, 0, codec.Unknown("nls_method", uint8(nls))
	}
	addr, n, err := ParseAddress(AddressType(b[0]>>4&0x03), b[2:])
	if err != nil {
		return Addressee{}, 0, codec.Shift(err, 2)
	}
	return Addressee{NlsMethod: nls, AccessClass: b[1], Address: addr}, 2 + n, nil
}
