// Package alp encodes and decodes DASH7 ALP commands: ordered sequences of
// actions with no delimiter between them.
package alp

import (
	"fmt"

	"github.com/danmuck/d7alp/internal/alp/action"
	"github.com/danmuck/d7alp/internal/alp/codec"
)

type Command struct {
	Actions []action.Action
}

// DecodeError reports the failure of the Index-th action. Offset is absolute
// within the decoded buffer: the start of the failed action for missing
// bytes, the offending byte for content errors.
type DecodeError struct {
	Offset int
	Index  int
	Err    error
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("alp: action %d at offset %d: %v", e.Index, e.Offset, e.Err)
}

func (e DecodeError) Unwrap() error {
	return e.Err
}

func (c Command) Validate() error {
	for i, a := range c.Actions {
		if a == nil {
			return codec.Reject(fmt.Sprintf("actions[%d]", i), codec.ErrMissingOperand)
		}
		if err := codec.Validate(a); err != nil {
			return fmt.Errorf("actions[%d] %v: %w", i, a.OpCode(), err)
		}
	}
	return nil
}

func (c Command) EncodedSize() int {
	size := 0
	for _, a := range c.Actions {
		size += a.EncodedSize()
	}
	return size
}

func (c Command) EncodeTo(out []byte) int {
	offset := 0
	for _, a := range c.Actions {
		offset += a.EncodeTo(out[offset:])
	}
	return offset
}

// Encode validates every action and returns the command's wire form.
func (c Command) Encode() ([]byte, error) {
	return codec.Marshal(c)
}

// Decode reads actions until b is exhausted. On failure it returns the
// actions decoded before the failing one together with a DecodeError.
func Decode(b []byte) (Command, error) {
	cmd, _, err := decode(b)
	return cmd, err
}

// span is the range of b that one decoded action was read from.
type span struct {
	start, end int
}

func decode(b []byte) (Command, []span, error) {
	var (
		cmd   Command
		spans []span
	)
	offset := 0
	for offset < len(b) {
		a, n, err := action.Decode(b[offset:])
		if err != nil {
			return cmd, spans, DecodeError{
				Offset: errorOffset(err, offset),
				Index:  len(cmd.Actions),
				Err:    codec.Shift(err, offset),
			}
		}
		cmd.Actions = append(cmd.Actions, a)
		spans = append(spans, span{start: offset, end: offset + n})
		offset += n
	}
	return cmd, spans, nil
}

func errorOffset(err error, start int) int {
	if off, ok := codec.ContentOffset(err); ok {
		return start + off
	}
	return start
}

// RequestID returns the id of the first RequestTag.
func (c Command) RequestID() (uint8, bool) {
	for _, a := range c.Actions {
		if tag, ok := a.(action.RequestTag); ok {
			return tag.ID, true
		}
	}
	return 0, false
}

// ResponseID returns the id of the first ResponseTag.
func (c Command) ResponseID() (uint8, bool) {
	for _, a := range c.Actions {
		if tag, ok := a.(action.ResponseTag); ok {
			return tag.ID, true
		}
	}
	return 0, false
}

// IsLastResponse reports whether a ResponseTag marks the end of the
// response stream.
func (c Command) IsLastResponse() bool {
	for _, a := range c.Actions {
		if tag, ok := a.(action.ResponseTag); ok && tag.Eop {
			return true
		}
	}
	return false
}
