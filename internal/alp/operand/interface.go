package operand

import (
	"github.com/danmuck/d7alp/internal/alp/codec"
	"github.com/danmuck/d7alp/internal/alp/dash7"
	"github.com/danmuck/d7alp/internal/alp/varint"
)

// Interface ids.
const (
	InterfaceHost  uint8 = 0x00
	InterfaceD7asp uint8 = 0xD7
)

// InterfaceConfiguration is the Forward operand: an interface id followed by
// that interface's configuration.
type InterfaceConfiguration interface {
	codec.Encoder
	InterfaceID() uint8
}

// HostConfiguration forwards to the host itself. It has no payload.
type HostConfiguration struct{}

func (HostConfiguration) InterfaceID() uint8 { return InterfaceHost }
func (HostConfiguration) EncodedSize() int   { return 1 }
func (HostConfiguration) EncodeTo(out []byte) int {
	out[0] = InterfaceHost
	return 1
}

type D7aspConfiguration struct {
	Config dash7.InterfaceConfiguration
}

func (D7aspConfiguration) InterfaceID() uint8 { return InterfaceD7asp }

func (c D7aspConfiguration) Validate() error { return c.Config.Validate() }

func (c D7aspConfiguration) EncodedSize() int { return 1 + c.Config.EncodedSize() }

func (c D7aspConfiguration) EncodeTo(out []byte) int {
	out[0] = InterfaceD7asp
	return 1 + c.Config.EncodeTo(out[1:])
}

func DecodeInterfaceConfiguration(b []byte) (InterfaceConfiguration, int, error) {
	if err := codec.Missing(b, 1); err != nil {
		return nil, 0, err
	}
	switch b[0] {
	case InterfaceHost:
		return HostConfiguration{}, 1, nil
	case InterfaceD7asp:
		cfg, n, err := dash7.DecodeInterfaceConfiguration(b[1:])
		if err != nil {
			return nil, 0, codec.Shift(err, 1)
		}
		return D7aspConfiguration{Config: cfg}, 1 + n, nil
	default:
		return nil, 0, codec.Unknown("interface_id", b[0])
	}
}

// InterfaceStatus is the interface variant of a Status action: an interface
// id, a varint length, then that many bytes of interface specific status.
type InterfaceStatus interface {
	Status
	InterfaceID() uint8
}

type HostStatus struct{}

func (HostStatus) StatusExtension() StatusExtension { return StatusExtInterface }
func (HostStatus) InterfaceID() uint8               { return InterfaceHost }
func (HostStatus) EncodedSize() int                 { return 2 }
func (HostStatus) EncodeTo(out []byte) int {
	out[0] = InterfaceHost
	out[1] = 0
	return 2
}

type D7aspStatus struct {
	Status dash7.InterfaceStatus
}

func (D7aspStatus) StatusExtension() StatusExtension { return StatusExtInterface }
func (D7aspStatus) InterfaceID() uint8               { return InterfaceD7asp }

func (s D7aspStatus) Validate() error {
	if err := s.Status.Validate(); err != nil {
		return err
	}
	if !varint.IsValid(uint32(s.Status.EncodedSize())) {
		return codec.Reject("d7asp_status", codec.ErrDataTooBig)
	}
	return nil
}

func (s D7aspStatus) EncodedSize() int {
	size := s.Status.EncodedSize()
	return 1 + varint.Size(uint32(size)) + size
}

func (s D7aspStatus) EncodeTo(out []byte) int {
	out[0] = InterfaceD7asp
	offset := 1
	offset += varint.Encode(uint32(s.Status.EncodedSize()), out[offset:])
	offset += s.Status.EncodeTo(out[offset:])
	return offset
}

// UnknownInterfaceStatus keeps the raw status of an interface this package
// does not model.
type UnknownInterfaceStatus struct {
	ID   uint8
	Data []byte
}

func NewUnknownInterfaceStatus(id uint8, data []byte) (UnknownInterfaceStatus, error) {
	s := UnknownInterfaceStatus{ID: id, Data: data}
	return s, s.Validate()
}

func (UnknownInterfaceStatus) StatusExtension() StatusExtension { return StatusExtInterface }
func (s UnknownInterfaceStatus) InterfaceID() uint8             { return s.ID }

func (s UnknownInterfaceStatus) Validate() error {
	if uint64(len(s.Data)) > uint64(varint.Max) {
		return codec.Reject("interface_status.data", codec.ErrDataTooBig)
	}
	return nil
}

func (s UnknownInterfaceStatus) EncodedSize() int {
	return 1 + varint.Size(uint32(len(s.Data))) + len(s.Data)
}

func (s UnknownInterfaceStatus) EncodeTo(out []byte) int {
	out[0] = s.ID
	offset := 1
	offset += varint.Encode(uint32(len(s.Data)), out[offset:])
	offset += copy(out[offset:], s.Data)
	return offset
}

func DecodeInterfaceStatus(b []byte) (InterfaceStatus, int, error) {
	if err := codec.Missing(b, 2); err != nil {
		return nil, 0, err
	}
	length, n, err := varint.Decode(b[1:])
	if err != nil {
		return nil, 0, err
	}
	offset := 1 + n
	size := int(length)
	if err := codec.Missing(b[offset:], size); err != nil {
		return nil, 0, err
	}
	body := b[offset : offset+size]

	switch b[0] {
	case InterfaceHost:
		if size != 0 {
			return nil, 0, codec.Shift(codec.Invalid(codec.ErrBadLength, "host_status_length", length), 1)
		}
		return HostStatus{}, offset, nil
	case InterfaceD7asp:
		status, read, err := dash7.DecodeInterfaceStatus(body)
		if err != nil {
			// The window is complete, so a short nested status is a bad length.
			if _, missing := codec.MissingCount(err); missing {
				return nil, 0, codec.Shift(codec.Invalid(codec.ErrBadLength, "d7asp_status_length", length), 1)
			}
			return nil, 0, codec.Shift(err, offset)
		}
		if read != size {
			return nil, 0, codec.Shift(codec.Invalid(codec.ErrBadLength, "d7asp_status_length", length), 1)
		}
		return D7aspStatus{Status: status}, offset + size, nil
	default:
		var data []byte
		if size > 0 {
			data = make([]byte, size)
			copy(data, body)
		}
		return UnknownInterfaceStatus{ID: b[0], Data: data}, offset + size, nil
	}
}

// IndirectInterface is the IndirectForward operand. Whether it is overloaded
// is carried by the action's control byte.
type IndirectInterface interface {
	codec.Encoder
	Overloaded() bool
}

// OverloadedIndirectInterface names an interface file and overrides its
// addressee.
type OverloadedIndirectInterface struct {
	InterfaceFileID uint8
	Addressee       dash7.Addressee
}

func (OverloadedIndirectInterface) Overloaded() bool { return true }

func (i OverloadedIndirectInterface) Validate() error { return i.Addressee.Validate() }

func (i OverloadedIndirectInterface) EncodedSize() int { return 1 + i.Addressee.EncodedSize() }

func (i OverloadedIndirectInterface) EncodeTo(out []byte) int {
	out[0] = i.InterfaceFileID
	return 1 + i.Addressee.EncodeTo(out[1:])
}

// NonOverloadedIndirectInterface names an interface file followed by
// interface specific data whose length the wire does not carry.
type NonOverloadedIndirectInterface struct {
	InterfaceFileID uint8
	Data            []byte
}

func (NonOverloadedIndirectInterface) Overloaded() bool { return false }

func (i NonOverloadedIndirectInterface) EncodedSize() int { return 1 + len(i.Data) }

func (i NonOverloadedIndirectInterface) EncodeTo(out []byte) int {
	out[0] = i.InterfaceFileID
	return 1 + copy(out[1:], i.Data)
}

// DecodeIndirectInterface decodes the operand that follows an IndirectForward
// control byte. The non-overloaded form cannot be delimited without knowing
// the referenced interface file and is reported as unsupported.
func DecodeIndirectInterface(overloaded bool, b []byte) (IndirectInterface, int, error) {
	if err := codec.Missing(b, 1); err != nil {
		return nil, 0, err
	}
	if !overloaded {
		return nil, 0, codec.Invalid(codec.ErrUnsupported, "indirect_interface", uint32(b[0]))
	}
	addressee, n, err := dash7.DecodeAddressee(b[1:])
	if err != nil {
		return nil, 0, codec.Shift(err, 1)
	}
	return OverloadedIndirectInterface{InterfaceFileID: b[0], Addressee: addressee}, 1 + n, nil
}
