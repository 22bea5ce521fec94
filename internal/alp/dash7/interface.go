package dash7

import (
	"encoding/binary"

	"github.com/danmuck/d7alp/internal/alp/codec"
)

// InterfaceConfiguration is the D7ASP session configuration used when
// forwarding a request.
type InterfaceConfiguration struct {
	Qos Qos
	// To is the dormant session timeout.
	To uint8
	// Te is the execution delay timeout.
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
	if err := codec.Missing(b, 3); err != nil {
		return InterfaceConfiguration{}, 0, err
	}
	qos, _, err := DecodeQos(b)
	if err != nil {
		return InterfaceConfiguration{}, 0, err
	}
	addressee, n, err := DecodeAddressee(b[3:])
	if err != nil {
		return InterfaceConfiguration{}, 0, codec.Shift(err, 3)
	}
	return InterfaceConfiguration{Qos: qos, To: b[1], Te: b[2], Addressee: addressee}, 3 + n, nil
}

const (
	statusFixedLen = 10
	NlsStateLen    = 5
)

// InterfaceStatus is the D7ASP reception report attached to a response.
// NlsState is present exactly when the addressee uses an NLS method.
type InterfaceStatus struct {
	ChHeader  uint8
	ChIdx     uint16
	Rxlev     uint8
	Lb        uint8
	Snr       uint8
	Status    uint8
	Token     uint8
	Seq       uint8
	RespTo    uint8
	Addressee Addressee
	NlsState  *[NlsStateLen]byte
}

// NewInterfaceStatus returns s after checking that its NLS state matches
// the addressee's NLS method.
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
	return ValidateNlsState("interface_status.nls_state", s.Addressee.NlsMethod, s.NlsState)
}

// ValidateNlsState checks that state is present exactly when m needs one.
func ValidateNlsState(field string, m NlsMethod, state *[NlsStateLen]byte) error {
	if m != NlsNone && state == nil {
		return codec.Reject(field, codec.ErrMissingNlsState)
	}
	if m == NlsNone && state != nil {
		return codec.Reject(field, codec.ErrUnexpectedNlsState)
	}
	return nil
}

// DecodeNlsState reads the security state that follows an addressee using m.
func DecodeNlsState(m NlsMethod, b []byte) (*[NlsStateLen]byte, int, error) {
	if m == NlsNone {
		return nil, 0, nil
	}
	if err := codec.Missing(b, NlsStateLen); err != nil {
		return nil, 0, err
	}
	var state [NlsStateLen]byte
	copy(state[:], b)
	return &state, NlsStateLen, nil
}

func (s InterfaceStatus) EncodedSize() int {
	size := statusFixedLen + s.Addressee.EncodedSize()
	if s.NlsState != nil {
		size += NlsStateLen
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
	out[9] = s.RespTo
	offset := statusFixedLen
	offset += s.Addressee.EncodeTo(out[offset:])
	if s.NlsState != nil {
		offset += copy(out[offset:offset+NlsStateLen], s.NlsState[:])
	}
	return offset
}

func DecodeInterfaceStatus(b []byte) (InterfaceStatus, int, error) {
	head := statusFixedLen
	if err := codec.Missing(b, head); err != nil {
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
		RespTo:   b[9],
	}
	addressee, n, err := DecodeAddressee(b[head:])
	if err != nil {
		return InterfaceStatus{}, 0, codec.Shift(err, head)
	}
	s.Addressee = addressee
	offset := head + n
	if s.NlsState, n, err = DecodeNlsState(addressee.NlsMethod, b[offset:]); err != nil {
		return InterfaceStatus{}, 0, err
	}
	return s, offset + n, nil
}
