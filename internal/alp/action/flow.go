package action

import (
	"github.com/danmuck/d7alp/internal/alp/codec"
	"github.com/danmuck/d7alp/internal/alp/operand"
)

// RequestTag marks the command with ID so responses can be matched.
// Eop asks the responder to signal end of packet.
type RequestTag struct {
	Eop bool
	ID  uint8
}

func (RequestTag) OpCode() OpCode   { return OpRequestTag }
func (RequestTag) EncodedSize() int { return 2 }
func (a RequestTag) EncodeTo(out []byte) int {
	out[0] = codec.Bit(a.Eop)<<7 | byte(OpRequestTag)
	out[1] = a.ID
	return 2
}

func decodeRequestTag(b []byte) (Action, int, error) {
	if err := codec.Missing(b, 2); err != nil {
		return nil, 0, err
	}
	return RequestTag{Eop: b[0]&flagGroup != 0, ID: b[1]}, 2, nil
}

// ResponseTag answers the RequestTag with the same ID. Eop marks the last
// response and Err reports that an action of the request failed.
type ResponseTag struct {
	Eop bool
	Err bool
	ID  uint8
}

func (ResponseTag) OpCode() OpCode   { return OpResponseTag }
func (ResponseTag) EncodedSize() int { return 2 }
func (a ResponseTag) EncodeTo(out []byte) int {
	out[0] = ctrl(OpResponseTag, a.Eop, a.Err)
	out[1] = a.ID
	return 2
}

func decodeResponseTag(b []byte) (Action, int, error) {
	if err := codec.Missing(b, 2); err != nil {
		return nil, 0, err
	}
	eop, e := flags(b[0])
	return ResponseTag{Eop: eop, Err: e, ID: b[1]}, 2, nil
}

type ChunkStep uint8

const (
	ChunkContinue ChunkStep = 0
	ChunkStart    ChunkStep = 1
	ChunkEnd      ChunkStep = 2
	ChunkStartEnd ChunkStep = 3
)

// Chunk delimits a command split over several packets.
type Chunk struct {
	Step ChunkStep
}

func (Chunk) OpCode() OpCode { return OpChunk }

func (a Chunk) Validate() error {
	if a.Step > ChunkStartEnd {
		return codec.Reject("chunk.step", codec.ErrValueOutOfRange)
	}
	return nil
}

func (Chunk) EncodedSize() int { return 1 }

func (a Chunk) EncodeTo(out []byte) int {
	out[0] = byte(a.Step)<<6 | byte(OpChunk)
	return 1
}

func decodeChunk(b []byte) (Action, int, error) {
	return Chunk{Step: ChunkStep(b[0] >> 6)}, 1, nil
}

type LogicOp uint8

const (
	LogicOr   LogicOp = 0
	LogicXor  LogicOp = 1
	LogicNor  LogicOp = 2
	LogicNand LogicOp = 3
)

// Logic combines the results of the queries around it.
type Logic struct {
	Op LogicOp
}

func (Logic) OpCode() OpCode { return OpLogic }

func (a Logic) Validate() error {
	if a.Op > LogicNand {
		return codec.Reject("logic.op", codec.ErrValueOutOfRange)
	}
	return nil
}

func (Logic) EncodedSize() int { return 1 }

func (a Logic) EncodeTo(out []byte) int {
	out[0] = byte(a.Op)<<6 | byte(OpLogic)
	return 1
}

func decodeLogic(b []byte) (Action, int, error) {
	return Logic{Op: LogicOp(b[0] >> 6)}, 1, nil
}

// Forward sends the rest of the command through the configured interface.
type Forward struct {
	Resp bool
	Conf operand.InterfaceConfiguration
}

func (Forward) OpCode() OpCode { return OpForward }

func (a Forward) Validate() error {
	if a.Conf == nil {
		return codec.Reject("forward.conf", codec.ErrMissingOperand)
	}
	return codec.Validate(a.Conf)
}

func (a Forward) EncodedSize() int { return 1 + a.Conf.EncodedSize() }

func (a Forward) EncodeTo(out []byte) int {
	out[0] = ctrl(OpForward, false, a.Resp)
	return 1 + a.Conf.EncodeTo(out[1:])
}

func decodeForward(b []byte) (Action, int, error) {
	_, resp := flags(b[0])
	conf, n, err := operand.DecodeInterfaceConfiguration(b[1:])
	if err != nil {
		return nil, 0, codec.Shift(err, 1)
	}
	return Forward{Resp: resp, Conf: conf}, 1 + n, nil
}

// IndirectForward forwards through the interface stored in a file. The
// overloaded flag of the control byte follows Interface.Overloaded.
type IndirectForward struct {
	Resp      bool
	Interface operand.IndirectInterface
}

func (IndirectForward) OpCode() OpCode { return OpIndirectForward }

func (a IndirectForward) Validate() error {
	if a.Interface == nil {
		return codec.Reject("indirect_forward.interface", codec.ErrMissingOperand)
	}
	return codec.Validate(a.Interface)
}

func (a IndirectForward) EncodedSize() int { return 1 + a.Interface.EncodedSize() }

func (a IndirectForward) EncodeTo(out []byte) int {
	out[0] = ctrl(OpIndirectForward, a.Interface.Overloaded(), a.Resp)
	return 1 + a.Interface.EncodeTo(out[1:])
}

func decodeIndirectForward(b []byte) (Action, int, error) {
	overloaded, resp := flags(b[0])
	iface, n, err := operand.DecodeIndirectInterface(overloaded, b[1:])
	if err != nil {
		return nil, 0, codec.Shift(err, 1)
	}
	return IndirectForward{Resp: resp, Interface: iface}, 1 + n, nil
}
