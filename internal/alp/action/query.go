package action

import (
	"github.com/danmuck/d7alp/internal/alp/codec"
	"github.com/danmuck/d7alp/internal/alp/operand"
)

// ActionQuery makes the rest of the group conditional on Query.
type ActionQuery struct {
	Group bool
	Resp  bool
	Query operand.Query
}

// BreakQuery stops command execution when Query fails.
type BreakQuery struct {
	Group bool
	Resp  bool
	Query operand.Query
}

type VerifyChecksum struct {
	Group bool
	Resp  bool
	Query operand.Query
}

func validateQuery(field string, q operand.Query) error {
	if q == nil {
		return codec.Reject(field+".query", codec.ErrMissingOperand)
	}
	return q.Validate()
}

func encodeQuery(op OpCode, group, resp bool, q operand.Query, out []byte) int {
	out[0] = ctrl(op, group, resp)
	return 1 + q.EncodeTo(out[1:])
}

func (ActionQuery) OpCode() OpCode    { return OpActionQuery }
func (a ActionQuery) Validate() error { return validateQuery("action_query", a.Query) }
func (a ActionQuery) EncodedSize() int {
	return 1 + a.Query.EncodedSize()
}
func (a ActionQuery) EncodeTo(out []byte) int {
	return encodeQuery(OpActionQuery, a.Group, a.Resp, a.Query, out)
}

func (BreakQuery) OpCode() OpCode    { return OpBreakQuery }
func (a BreakQuery) Validate() error { return validateQuery("break_query", a.Query) }
func (a BreakQuery) EncodedSize() int {
	return 1 + a.Query.EncodedSize()
}
func (a BreakQuery) EncodeTo(out []byte) int {
	return encodeQuery(OpBreakQuery, a.Group, a.Resp, a.Query, out)
}

func (VerifyChecksum) OpCode() OpCode    { return OpVerifyChecksum }
func (a VerifyChecksum) Validate() error { return validateQuery("verify_checksum", a.Query) }
func (a VerifyChecksum) EncodedSize() int {
	return 1 + a.Query.EncodedSize()
}
func (a VerifyChecksum) EncodeTo(out []byte) int {
	return encodeQuery(OpVerifyChecksum, a.Group, a.Resp, a.Query, out)
}

func queryDecoder(op OpCode) decodeFunc {
	return func(b []byte) (Action, int, error) {
		g, r := flags(b[0])
		q, n, err := operand.DecodeQuery(b[1:])
		if err != nil {
			return nil, 0, codec.Shift(err, 1)
		}
		switch op {
		case OpBreakQuery:
			return BreakQuery{Group: g, Resp: r, Query: q}, 1 + n, nil
		case OpVerifyChecksum:
			return VerifyChecksum{Group: g, Resp: r, Query: q}, 1 + n, nil
		default:
			return ActionQuery{Group: g, Resp: r, Query: q}, 1 + n, nil
		}
	}
}

// PermissionRequest asks for Level using the Permission token.
type PermissionRequest struct {
	Group      bool
	Resp       bool
	Level      uint8
	Permission operand.Permission
}

func (PermissionRequest) OpCode() OpCode { return OpPermissionRequest }

func (a PermissionRequest) EncodedSize() int { return 2 + a.Permission.EncodedSize() }

func (a PermissionRequest) EncodeTo(out []byte) int {
	out[0] = ctrl(OpPermissionRequest, a.Group, a.Resp)
	out[1] = a.Level
	return 2 + a.Permission.EncodeTo(out[2:])
}

func decodePermissionRequest(b []byte) (Action, int, error) {
	if err := codec.Missing(b, 2); err != nil {
		return nil, 0, err
	}
	g, r := flags(b[0])
	p, n, err := operand.DecodePermission(b[2:])
	if err != nil {
		return nil, 0, codec.Shift(err, 2)
	}
	return PermissionRequest{Group: g, Resp: r, Level: b[1], Permission: p}, 2 + n, nil
}
