// Package action implements the ALP action tagged union. Every action
// starts with a control byte whose low 6 bits are the opcode; the top two
// bits are usually the group and response flags.
package action

import (
	"fmt"

	"github.com/danmuck/d7alp/internal/alp/codec"
)

type OpCode uint8

const (
	OpNop                  OpCode = 0
	OpReadFileData         OpCode = 1
	OpReadFileProperties   OpCode = 2
	OpWriteFileData        OpCode = 4
	OpWriteFileProperties  OpCode = 6
	OpActionQuery          OpCode = 8
	OpBreakQuery           OpCode = 9
	OpPermissionRequest    OpCode = 10
	OpVerifyChecksum       OpCode = 11
	OpExistFile            OpCode = 16
	OpCreateNewFile        OpCode = 17
	OpDeleteFile           OpCode = 18
	OpRestoreFile          OpCode = 19
	OpFlushFile            OpCode = 20
	OpCopyFile             OpCode = 23
	OpExecuteFile          OpCode = 31
	OpReturnFileData       OpCode = 32
	OpReturnFileProperties OpCode = 33
	OpStatus               OpCode = 34
	OpResponseTag          OpCode = 35
	OpChunk                OpCode = 48
	OpLogic                OpCode = 49
	OpForward              OpCode = 50
	OpIndirectForward      OpCode = 51
	OpRequestTag           OpCode = 52
	OpExtension            OpCode = 63
)

var opNames = map[OpCode]string{
	OpNop:                  "Nop",
	OpReadFileData:         "ReadFileData",
	OpReadFileProperties:   "ReadFileProperties",
	OpWriteFileData:        "WriteFileData",
	OpWriteFileProperties:  "WriteFileProperties",
	OpActionQuery:          "ActionQuery",
	OpBreakQuery:           "BreakQuery",
	OpPermissionRequest:    "PermissionRequest",
	OpVerifyChecksum:       "VerifyChecksum",
	OpExistFile:            "ExistFile",
	OpCreateNewFile:        "CreateNewFile",
	OpDeleteFile:           "DeleteFile",
	OpRestoreFile:          "RestoreFile",
	OpFlushFile:            "FlushFile",
	OpCopyFile:             "CopyFile",
	OpExecuteFile:          "ExecuteFile",
	OpReturnFileData:       "ReturnFileData",
	OpReturnFileProperties: "ReturnFileProperties",
	OpStatus:               "Status",
	OpResponseTag:          "ResponseTag",
	OpChunk:                "Chunk",
	OpLogic:                "Logic",
	OpForward:              "Forward",
	OpIndirectForward:      "IndirectForward",
	OpRequestTag:           "RequestTag",
	OpExtension:            "Extension",
}

func (op OpCode) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("OpCode(%d)", uint8(op))
}

// Action is one ALP instruction.
type Action interface {
	codec.Encoder
	OpCode() OpCode
}

const (
	flagGroup = 0x80
	flagResp  = 0x40
	opMask    = 0x3F
)

func ctrl(op OpCode, group, resp bool) byte {
	return codec.Bit(group)<<7 | codec.Bit(resp)<<6 | byte(op)
}

func flags(b byte) (group, resp bool) {
	return b&flagGroup != 0, b&flagResp != 0
}

type decodeFunc func(b []byte) (Action, int, error)

var decoders map[OpCode]decodeFunc

func init() {
	decoders = map[OpCode]decodeFunc{
		OpNop:                  decodeNop,
		OpReadFileData:         decodeReadFileData,
		OpReadFileProperties:   fileIDDecoder(OpReadFileProperties),
		OpWriteFileData:        fileDataDecoder(OpWriteFileData),
		OpWriteFileProperties:  filePropertiesDecoder(OpWriteFileProperties),
		OpActionQuery:          queryDecoder(OpActionQuery),
		OpBreakQuery:           queryDecoder(OpBreakQuery),
		OpPermissionRequest:    decodePermissionRequest,
		OpVerifyChecksum:       queryDecoder(OpVerifyChecksum),
		OpExistFile:            fileIDDecoder(OpExistFile),
		OpCreateNewFile:        filePropertiesDecoder(OpCreateNewFile),
		OpDeleteFile:           fileIDDecoder(OpDeleteFile),
		OpRestoreFile:          fileIDDecoder(OpRestoreFile),
		OpFlushFile:            fileIDDecoder(OpFlushFile),
		OpCopyFile:             decodeCopyFile,
		OpExecuteFile:          fileIDDecoder(OpExecuteFile),
		OpReturnFileData:       fileDataDecoder(OpReturnFileData),
		OpReturnFileProperties: filePropertiesDecoder(OpReturnFileProperties),
		OpStatus:               decodeStatus,
		OpResponseTag:          decodeResponseTag,
		OpChunk:                decodeChunk,
		OpLogic:                decodeLogic,
		OpForward:              decodeForward,
		OpIndirectForward:      decodeIndirectForward,
		OpRequestTag:           decodeRequestTag,
		OpExtension:            decodeExtension,
	}
}

// Decode reads one action from the front of b. The returned size includes
// the control byte.
func Decode(b []byte) (Action, int, error) {
	if err := codec.Missing(b, 1); err != nil {
		return nil, 0, err
	}
	op := OpCode(b[0] & opMask)
	decode, ok := decoders[op]
	if !ok {
		return nil, 0, codec.Invalid(codec.ErrUnknownOpCode, "opcode", uint32(op))
	}
	return decode(b)
}

func decodeExtension(b []byte) (Action, int, error) {
	return nil, 0, codec.Invalid(codec.ErrUnsupported, "opcode", uint32(OpExtension))
}

// Nop does nothing. It is used to request a response or to pad a group.
type Nop struct {
	Group bool
	Resp  bool
}

func (Nop) OpCode() OpCode   { return OpNop }
func (Nop) EncodedSize() int { return 1 }
func (a Nop) EncodeTo(out []byte) int {
	out[0] = ctrl(OpNop, a.Group, a.Resp)
	return 1
}

func decodeNop(b []byte) (Action, int, error) {
	group, resp := flags(b[0])
	return Nop{Group: group, Resp: resp}, 1, nil
}
