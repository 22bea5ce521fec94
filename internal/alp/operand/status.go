package operand

import "github.com/danmuck/d7alp/internal/alp/codec"

// Action status codes.
const (
	StatusOK                           uint8 = 0x00
	StatusReceived                     uint8 = 0x01
	StatusUnknownError                 uint8 = 0x80
	StatusOperandWrongFormat           uint8 = 0xF4
	StatusOperandIncomplete            uint8 = 0xF5
	StatusUnknownOperation             uint8 = 0xF6
	StatusWriteStorageUnavailable      uint8 = 0xF7
	StatusWriteDataOverflow            uint8 = 0xF8
	StatusWriteOffsetOverflow          uint8 = 0xF9
	StatusCreateFileAllocationOverflow uint8 = 0xFA
	StatusCreateFileLengthOverflow     uint8 = 0xFB
	StatusInsufficientPermission       uint8 = 0xFC
	StatusFileIsNotRestorable          uint8 = 0xFD
	StatusCreateFileIDAlreadyExist     uint8 = 0xFE
	StatusFileIDMissing                uint8 = 0xFF
)

// Status is the payload of a Status action. The extension selects the
// variant and travels in the top bits of the action's control byte.
type Status interface {
	codec.Encoder
	StatusExtension() StatusExtension
}

type StatusExtension uint8

const (
	StatusExtAction    StatusExtension = 0
	StatusExtInterface StatusExtension = 1
)

// ActionStatus reports the outcome of the action at index ActionID.
type ActionStatus struct {
	ActionID uint8
	Status   uint8
}

func (ActionStatus) StatusExtension() StatusExtension { return StatusExtAction }

func (ActionStatus) EncodedSize() int { return 2 }

func (s ActionStatus) EncodeTo(out []byte) int {
	out[0] = s.ActionID
	out[1] = s.Status
	return 2
}

func DecodeActionStatus(b []byte) (ActionStatus, int, error) {
	if err := codec.Missing(b, 2); err != nil {
		return ActionStatus{}, 0, err
	}
	return ActionStatus{ActionID: b[0], Status: b[1]}, 2, nil
}

// Permission levels requested by a PermissionRequest.
const (
	PermissionLevelUser uint8 = 0
	PermissionLevelRoot uint8 = 1
)

const PermissionDash7ID uint8 = 0x42

// Permission is an authentication token. Dash7 is the only known kind.
type Permission struct {
	Dash7 [8]byte
}

func (Permission) EncodedSize() int { return 9 }

func (p Permission) EncodeTo(out []byte) int {
	out[0] = PermissionDash7ID
	copy(out[1:9], p.Dash7[:])
	return 9
}

func DecodePermission(b []byte) (Permission, int, error) {
	if err := codec.Missing(b, 1); err != nil {
		return Permission{}, 0, err
	}
	if b[0] != PermissionDash7ID {
		return Permission{}, 0, codec.Unknown("permission_id", b[0])
	}
	if err := codec.Missing(b, 9); err != nil {
		return Permission{}, 0, err
	}
	var p Permission
	copy(p.Dash7[:], b[1:9])
	return p, 9, nil
}
