package action

import (
	"github.com/danmuck/d7alp/internal/alp/codec"
	"github.com/danmuck/d7alp/internal/alp/operand"
)

// Status reports either an action result or an interface status. The
// extension of the payload occupies the flag bits of the control byte, so a
// Status action has no group or response flag.
type Status struct {
	Status operand.Status
}

func (Status) OpCode() OpCode { return OpStatus }

func (a Status) Validate() error {
	if a.Status == nil {
		return codec.Reject("status", codec.ErrMissingOperand)
	}
	if a.Status.StatusExtension() > operand.StatusExtInterface {
		return codec.Reject("status.extension", codec.ErrValueOutOfRange)
	}
	return codec.Validate(a.Status)
}

func (a Status) EncodedSize() int { return 1 + a.Status.EncodedSize() }

func (a Status) EncodeTo(out []byte) int {
	out[0] = byte(a.Status.StatusExtension())<<6 | byte(OpStatus)
	return 1 + a.Status.EncodeTo(out[1:])
}

func decodeStatus(b []byte) (Action, int, error) {
	var (
		s   operand.Status
		n   int
		err error
	)
	switch ext := operand.StatusExtension(b[0] >> 6); ext {
	case operand.StatusExtAction:
		s, n, err = widenStatus(operand.DecodeActionStatus(b[1:]))
	case operand.StatusExtInterface:
		s, n, err = widenStatus(operand.DecodeInterfaceStatus(b[1:]))
	default:
		return nil, 0, codec.Unknown("status_extension", uint8(ext))
	}
	if err != nil {
		return nil, 0, codec.Shift(err, 1)
	}
	return Status{Status: s}, 1 + n, nil
}

func widenStatus[T operand.Status](s T, n int, err error) (operand.Status, int, error) {
	if err != nil {
		return nil, 0, err
	}
	return s, n, nil
}
