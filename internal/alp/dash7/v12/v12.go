// Package v12 holds the DASH7 1.2 layouts of the D7ASP operands that changed
// from the base revision: the addressee byte gains a group condition and a
// use-VID flag, and the interface status gains a frequency offset and a wider
// response timeout. Addresses, QoS and NLS state come from package dash7.
package v12

import (
	"encoding/binary"

	"github.com/danmuck/d7alp/internal/alp/codec"
	"github.com/danmuck/d7alp/internal/alp/dash7"
)

// GroupCondition selects which listeners of a group answer.
type GroupCondition uint8

const (
	// GroupAny matches <, = and >.
	GroupAny         GroupCondition = 0
	GroupNotEqual    GroupCondition = 1
	GroupEqual       GroupCondition = 2
	GroupGreaterThan GroupCondition = 3
)

func (g GroupCondition) String() string {
	switch g {
	case GroupAny:
		return "X"
	case GroupNotEqual:
		return "!="
	case GroupEqual:
		return "=="
	case GroupGreaterThan:
		return ">"
	}
	return "?"
}

// Addressee is the 1.2 request target.
//
// Wire form: byte 0 = group condition<<6 | address type<<4 | use vid<<3 |
// nls method, byte 1 = access class, then the address.
type Addressee struct {
	GroupCondition GroupCondition
	// UseVID asks for the VID instead of the UID when the target has one.
	UseVID      bool
	NlsMethod   dash7.NlsMethod
	AccessClass uint8
	Address     dash7.Address
}

func (a Addressee) Validate() error {
	if a.Address == nil {
		return codec.Reject("addressee.address", codec.ErrMissingOperand)
	}
	if a.NlsMethod > dash7.NlsAesCcm32 {
		return codec.Reject("addressee.nls_method", codec.ErrValueOutOfRange)
	}
	if a.GroupCondition > GroupGreaterThan {
		return codec.Reject("addressee.group_condition", codec.ErrValueOutOfRange)
	}
	return nil
}

func (a Addressee) EncodedSize() int {
	return 2 + a.Address.EncodedSize()
}

func (a Addressee) EncodeTo(out []byte) int {
	out[0] = byte(a.GroupCondition)<<6 | byte(a.Address.Type())<<4 | codec.Bit(a.UseVID)<<3 | byte(a.NlsMethod)
	out[1] = a.AccessClass
	return 2 + a.Address.EncodeTo(out[2:])
}

func DecodeAddressee(b []byte) (Addressee, int, error) {
	if err := codec.Missing(b, 2); err != nil {
		return Addressee{}, 0, err
	}
	addr, n, err := dash7.ParseAddress(dash7.AddressType(b[0]>>4&0x03), b[2:])
	if err != nil {
		return Addressee{}, 0, codec.Shift(err, 2)
	}
	return Addressee{
		GroupCondition: GroupCondition(b[0] >> 6),
		UseVID:         b[0]&0x08 != 0,
		NlsMethod:      dash7.NlsMethod(b[0] & 0x07),
		AccessClass:    b[1],
		Address:        addr,
	}, 2 + n, nil
}

// InterfaceConfiguration is the 1.2 D7ASP session configuration.
type InterfaceConfiguration struct {
	Qos       dash7.Qos
	To        uint8
	Te        uint8
	Addressee Addressee
}

func (c InterfaceConfiguration) Validate() error {
	if err := c.Qos.Validate(); err != nil {
		return err
	}
	return c.Addressee.Validate()
}

func (c InterfaceConfiguration) EncodedSize() int {
	return 3 + c.Addressee.EncodedSize()
}

func (c InterfaceConfiguration) EncodeTo(out []byte) int {
	c.Qos.EncodeTo(out)
	out[1] = c.To
	out[2] = c.Te
	return 3 + c.Addressee.EncodeTo(out[3:])
}

func DecodeInterfaceConfiguration(b []byte) (InterfaceConfiguration, int, error) {
	if err := codec.Missing(b, 5); err != nil {
		return InterfaceConfiguration{}, 0, err
	}
	qos, _, err := dash7.DecodeQos(b)
	if err != nil {
		return InterfaceConfiguration{}, 0, err
	}
	addressee, n, err := DecodeAddressee(b[3:])
	if err != nil {
		return InterfaceConfiguration{}, 0, codec.Shift(err, 3)
	}
	return InterfaceConfiguration{Qos: qos, To: b[1], Te: b[2], Addressee: addressee}, 3 + n, nil
}

const statusFixedLen = 13

// InterfaceStatus is the 1.2 D7ASP reception report. RespTo and Fof are
// little-endian on the wire, unlike ChIdx. The addressee keeps the base
// layout.
type InterfaceStatus struct {
	ChHeader uint8
	ChIdx    uint16
	Rxlev    uint8
	Lb       uint8
	Snr      uint8
	Status   uint8
	Token    uint8
	Seq      uint8
	// RespTo is the response delay in TiT.
	RespTo uint16
	// Fof is the frequency offset in Hz.
	Fof       uint16
	Addressee dash7.Addressee
	NlsState  *[dash7.NlsStateLen]byte
}

// NewInterfaceStatus returns s after checking its NLS state.
func NewInterfaceStatus(s InterfaceStatus) (InterfaceStatus, error) {
	if err := s.Validate(); err != nil {
		return InterfaceStatus{}, err
	}
	return s, nil
}

func (s InterfaceStatus) Validate() error {
	if err := s.Addressee.Validate(); err != nil {
		return err
	}
	return dash7.ValidateNlsState("interface_status.nls_state", s.Addressee.NlsMethod, s.NlsState)
}

func (s InterfaceStatus) EncodedSize() int {
	size := statusFixedLen + s.Addressee.EncodedSize()
	if s.NlsState != nil {
		size += dash7.NlsStateLen
	}
	return size
}

func (s InterfaceStatus) EncodeTo(out []byte) int {
	out[0] = s.ChHeader
	binary.BigEndian.PutUint16(out[1:3], s.ChIdx)
	out[3] = s.Rxlev
	out[4] = s.Lb
	out[5] = s.Snr
	out[6] = s.Status
	out[7] = s.Token
	out[8] = s.Seq
	binary.LittleEndian.PutUint16(out[9:11], s.RespTo)
	binary.LittleEndian.PutUint16(out[11:13], s.Fof)
	offset := statusFixedLen
	offset += s.Addressee.EncodeTo(out[offset:])
	if s.NlsState != nil {
		offset += copy(out[offset:offset+dash7.NlsStateLen], s.NlsState[:])
	}
	return offset
}

func DecodeInterfaceStatus(b []byte) (InterfaceStatus, int, error) {
	if err := codec.Missing(b, statusFixedLen); err != nil {
		return InterfaceStatus{}, 0, err
	}
	s := InterfaceStatus{
		ChHeader: b[0],
		ChIdx:    binary.BigEndian.Uint16(b[1:3]),
		Rxlev:    b[3],
		Lb:       b[4],
		Snr:      b[5],
		Status:   b[6],
		Token:    b[7],
		Seq:      b[8],
		RespTo:   binary.LittleEndian.Uint16(b[9:11]),
		Fof:      binary.LittleEndian.Uint16(b[11:13]),
	}
	addressee, n, err := dash7.DecodeAddressee(b[statusFixedLen:])
	if err != nil {
		return InterfaceStatus{}, 0, codec.Shift(err, statusFixedLen)
	}
	s.Addressee = addressee
	offset := statusFixedLen + n
	if s.NlsState, n, err = dash7.DecodeNlsState(addressee.NlsMethod, b[offset:]); err != nil {
		return InterfaceStatus{}, 0, err
	}
	return s, offset + n, nil
}
