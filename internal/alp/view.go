package alp

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/danmuck/d7alp/internal/alp/action"
	"github.com/danmuck/d7alp/internal/alp/codec"
)

// ActionView is the JSON shape of a decoded action.
type ActionView struct {
	Index  int           `json:"index" yaml:"index"`
	Offset int           `json:"offset" yaml:"offset"`
	Op     string        `json:"op" yaml:"op"`
	Hex    string        `json:"hex" yaml:"hex"`
	Fields action.Action `json:"fields" yaml:"fields"`
}

// Views describes each action with its offset and encoding. Decoded input
// may differ from the re-encoded form; Inspect reports the received bytes.
func (c Command) Views() []ActionView {
	views := make([]ActionView, 0, len(c.Actions))
	offset := 0
	for i, a := range c.Actions {
		raw := make([]byte, a.EncodedSize())
		a.EncodeTo(raw)
		views = append(views, newView(i, offset, a, raw))
		offset += len(raw)
	}
	return views
}

func newView(i, offset int, a action.Action, raw []byte) ActionView {
	return ActionView{
		Index:  i,
		Offset: offset,
		Op:     a.OpCode().String(),
		Hex:    strings.ToUpper(hex.EncodeToString(raw)),
		Fields: a,
	}
}

func (v ActionView) String() string {
	return fmt.Sprintf("#%d @%d %s [%s] %+v", v.Index, v.Offset, v.Op, v.Hex, v.Fields)
}

// Error kinds reported by Inspect.
const (
	KindMissingBytes = "missing_bytes"
	KindContent      = "content"
)

type ErrorReport struct {
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
	Offset  int    `json:"offset" yaml:"offset"`
	Index   int    `json:"index" yaml:"index"`
	Missing int    `json:"missing,omitempty" yaml:"missing,omitempty"`
	Field   string `json:"field,omitempty" yaml:"field,omitempty"`
	Value   uint32 `json:"value,omitempty" yaml:"value,omitempty"`
}

// Report is the decoded form of one command buffer, partial on failure.
type Report struct {
	Size       int          `json:"size" yaml:"size"`
	Actions    []ActionView `json:"actions" yaml:"actions"`
	RequestID  *uint8       `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	ResponseID *uint8       `json:"response_id,omitempty" yaml:"response_id,omitempty"`
	Last       bool         `json:"last_response,omitempty" yaml:"last_response,omitempty"`
	Error      *ErrorReport `json:"error,omitempty" yaml:"error,omitempty"`
}

// Inspect decodes b and describes the result.
func Inspect(b []byte) Report {
	cmd, spans, err := decode(b)
	r := Report{Size: len(b), Actions: make([]ActionView, 0, len(spans))}
	for i, sp := range spans {
		r.Actions = append(r.Actions, newView(i, sp.start, cmd.Actions[i], b[sp.start:sp.end]))
	}
	if id, ok := cmd.RequestID(); ok {
		r.RequestID = &id
	}
	if id, ok := cmd.ResponseID(); ok {
		r.ResponseID = &id
	}
	r.Last = cmd.IsLastResponse()
	if err != nil {
		r.Error = reportError(err)
	}
	return r
}

func reportError(err error) *ErrorReport {
	rep := &ErrorReport{Kind: KindContent, Message: err.Error()}
	var de DecodeError
	if errors.As(err, &de) {
		rep.Offset = de.Offset
		rep.Index = de.Index
	}
	if n, ok := codec.MissingCount(err); ok {
		rep.Kind = KindMissingBytes
		rep.Missing = n
	}
	var ce codec.ContentError
	if errors.As(err, &ce) {
		rep.Field = ce.Field
		rep.Value = ce.Value
	}
	return rep
}
