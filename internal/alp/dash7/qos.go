package dash7

import "github.com/danmuck/d7alp/internal/alp/codec"

type RetryMode uint8

const (
	RetryNo RetryMode = 0
)

type RespMode uint8

const (
	RespNo        RespMode = 0
	RespAll       RespMode = 1
	RespAny       RespMode = 2
	RespNoRpt     RespMode = 4
	RespOnData    RespMode = 5
	RespPreferred RespMode = 6
)

func (m RetryMode) valid() bool {
	return m == RetryNo
}

func (m RespMode) valid() bool {
	switch m {
	case RespNo, RespAll, RespAny, RespNoRpt, RespOnData, RespPreferred:
		return true
	}
	return false
}

// Qos is packed into one byte as retry<<3 | resp.
type Qos struct {
	Retry RetryMode
	Resp  RespMode
}

func (q Qos) Validate() error {
	if !q.Retry.valid() {
		return codec.Reject("qos.retry", codec.ErrValueOutOfRange)
	}
	if !q.Resp.valid() {
		return codec.Reject("qos.resp", codec.ErrValueOutOfRange)
	}
	return nil
}

func (Qos) EncodedSize() int { return 1 }

func (q Qos) EncodeTo(out []byte) int {
	out[0] = byte(q.Retry)<<3 | byte(q.Resp)
	return 1
}

func DecodeQos(b []byte) (Qos, int, error) {
	if err := codec.Missing(b, 1); err != nil {
		return Qos{}, 0, err
	}
	retry := RetryMode(b[0] >> 3 & 0x07)
	if !retry.valid() {
		return Qos{}, 0, codec.Unknown("retry_mode", uint8(retry))
	}
	resp := RespMode(b[0] & 0x07)
	if !resp.valid() {
		return Qos{}, 0, codec.Unknown("resp_mode", uint8(resp))
	}
	return Qos{Retry: retry, Resp: resp}, 1, nil
}
