package action

import (
	"errors"
	"testing"

	"github.com/danmuck/d7alp/internal/alp/codec"
	"github.com/danmuck/d7alp/internal/alp/dash7"
	"github.com/danmuck/d7alp/internal/alp/operand"
	"github.com/danmuck/d7alp/internal/alp/varint"
	logs "github.com/danmuck/d7alp/internal/logging"
	"github.com/danmuck/d7alp/internal/testutil/codectest"
	"github.com/danmuck/d7alp/internal/testutil/testlog"
)

func header() operand.FileHeader {
	return operand.FileHeader{
		Permissions: operand.Permissions{
			Encrypted: true,
			UserRead:  true,
			UserWrite: true,
			UserExec:  true,
		},
		Properties: operand.FileProperties{
			ActCondition: operand.ActOnRead,
			StorageClass: operand.StoragePermanent,
		},
		AlpCmdFileID:    1,
		InterfaceFileID: 2,
		FileSize:        0xDEADBEEF,
		AllocatedSize:   0xBAADFACE,
	}
}

const headerHex = "B8 13 01 02 DEADBEEF BAADFACE"

func nonVoid() operand.Query {
	return operand.NonVoid{Size: 4, File: operand.FileOffset{ID: 5, Offset: 6}}
}

func TestActionVectors(t *testing.T) {
	testlog.Start(t)

	cases := []struct {
		name string
		a    Action
		wire string
	}{
		{"nop", Nop{Group: true}, "80"},
		{"read_file_data", ReadFileData{Resp: true, FileID: 1, Offset: 2, Size: 3}, "41 01 02 03"},
		{"read_file_properties", ReadFileProperties{FileID: 7}, "02 07"},
		{"write_file_data", WriteFileData{Group: true, FileID: 9, Offset: 5, Data: []byte{1, 2, 3}}, "84 09 05 03 010203"},
		{"write_file_data_empty", WriteFileData{FileID: 1}, "04 01 00 00"},
		{"return_file_data_empty", ReturnFileData{FileID: 1, Offset: 2}, "20 01 02 00"},
		{"write_file_properties", WriteFileProperties{Group: true, FileID: 9, Header: header()}, "86 09 " + headerHex},
		{"action_query", ActionQuery{Group: true, Resp: true, Query: nonVoid()}, "C8 00 04 05 06"},
		{"break_query", BreakQuery{Query: nonVoid()}, "09 00 04 05 06"},
		{"permission_request", PermissionRequest{Level: operand.PermissionLevelRoot, Permission: operand.Permission{Dash7: [8]byte{1, 2, 3, 4, 5, 6, 7, 8}}}, "0A 01 42 0102030405060708"},
		{"verify_checksum", VerifyChecksum{Resp: true, Query: nonVoid()}, "4B 00 04 05 06"},
		{"exist_file", ExistFile{FileID: 7}, "10 07"},
		{"create_new_file", CreateNewFile{Group: true, FileID: 3, Header: header()}, "91 03 " + headerHex},
		{"delete_file", DeleteFile{Resp: true, FileID: 9}, "52 09"},
		{"restore_file", RestoreFile{Group: true, Resp: true, FileID: 9}, "D3 09"},
		{"flush_file", FlushFile{FileID: 7}, "14 07"},
		{"copy_file", CopyFile{SrcFileID: 0x42, DstFileID: 0x24}, "17 42 24"},
		{"execute_file", ExecuteFile{FileID: 7}, "1F 07"},
		{"return_file_data", ReturnFileData{FileID: 1, Offset: 0x40, Data: []byte{0xFF}}, "20 01 40 40 01 FF"},
		{"return_file_properties", ReturnFileProperties{FileID: 5, Header: header()}, "21 05 " + headerHex},
		{"action_status", Status{Status: operand.ActionStatus{ActionID: 2, Status: operand.StatusUnknownOperation}}, "22 02 F6"},
		{"host_status", Status{Status: operand.HostStatus{}}, "62 00 00"},
		{"unknown_interface_status", Status{Status: operand.UnknownInterfaceStatus{ID: 0x55, Data: []byte{0xAA, 0xBB}}}, "62 55 02 AA BB"},
		{"response_tag", ResponseTag{Eop: true, ID: 8}, "A3 08"},
		{"response_tag_err", ResponseTag{Eop: true, Err: true, ID: 1}, "E3 01"},
		{"chunk", Chunk{Step: ChunkEnd}, "B0"},
		{"logic", Logic{Op: LogicNand}, "F1"},
		{"forward_host", Forward{Resp: true, Conf: operand.HostConfiguration{}}, "72 00"},
		{"indirect_forward", IndirectForward{
			Resp: true,
			Interface: operand.OverloadedIndirectInterface{
				InterfaceFileID: 4,
				Addressee: dash7.Addressee{
					NlsMethod:   dash7.NlsAesCcm32,
					AccessClass: 0xFF,
					Address:     dash7.VID{0xAB, 0xCD},
				},
			},
		}, "F3 04 37 FF AB CD"},
		{"request_tag", RequestTag{Eop: true, ID: 8}, "B4 08"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			codectest.Check(t, tc.a, tc.wire, Decode)
			if got, _, _ := Decode(codectest.Hex(t, tc.wire)); got.OpCode() != tc.a.OpCode() {
				t.Fatalf("opcode: got=%v want=%v", got.OpCode(), tc.a.OpCode())
			}
		})
	}
	logs.Logf("checked %d action vectors", len(cases))
}

func TestForwardD7asp(t *testing.T) {
	testlog.Start(t)
	conf := operand.D7aspConfiguration{Config: dash7.InterfaceConfiguration{
		Qos: dash7.Qos{Resp: dash7.RespPreferred},
		To:  0x23,
		Te:  0x34,
		Addressee: dash7.Addressee{
			NlsMethod:   dash7.NlsAesCcm32,
			AccessClass: 0xFF,
			Address:     dash7.VID{0xAB, 0xCD},
		},
	}}
	codectest.Check[Action](t, Forward{Conf: conf}, "32 D7 06 23 34 37 FF AB CD", Decode)
}

func TestDecodeContentErrors(t *testing.T) {
	testlog.Start(t)

	cases := []struct {
		name   string
		wire   string
		want   error
		offset int
	}{
		{"unknown_opcode", "03", codec.ErrUnknownOpCode, 0},
		{"unknown_opcode_flags", "C5 00", codec.ErrUnknownOpCode, 0},
		{"extension", "3F", codec.ErrUnsupported, 0},
		{"status_extension", "A2 02 F6", codec.ErrUnknownEnumVariant, 0},
		{"query_code", "08 E0", codec.ErrUnknownEnumVariant, 1},
		{"permission_id", "0A 00 43 0102030405060708", codec.ErrUnknownEnumVariant, 2},
		{"forward_interface", "32 01", codec.ErrUnknownEnumVariant, 1},
		{"forward_nls", "32 D7 02 23 34 38 FF AB CD", codec.ErrUnknownEnumVariant, 5},
		{"host_status_length", "62 00 01 FF", codec.ErrBadLength, 2},
		{"non_overloaded", "73 04 AA", codec.ErrUnsupported, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Decode(codectest.Hex(t, tc.wire))
			codectest.ContentAt(t, err, tc.want, tc.offset)
		})
	}
}

func TestDecodeMissingBytes(t *testing.T) {
	testlog.Start(t)
	if _, _, err := Decode(nil); !errors.Is(err, codec.ErrMissingBytes) {
		t.Fatalf("expected missing bytes on empty input, got %v", err)
	}

	_, _, err := Decode(codectest.Hex(t, "04 01 00 05 AA"))
	n, ok := codec.MissingCount(err)
	if !ok || n != 4 {
		t.Fatalf("expected 4 missing bytes, got %v", err)
	}
}

func TestNonOverloadedEncode(t *testing.T) {
	testlog.Start(t)
	a := IndirectForward{Interface: operand.NonOverloadedIndirectInterface{InterfaceFileID: 4, Data: []byte{0xAA}}}
	got, err := codec.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if want := codectest.Hex(t, "33 04 AA"); string(got) != string(want) {
		t.Fatalf("encode: got=% X want=% X", got, want)
	}
}

func TestValidate(t *testing.T) {
	testlog.Start(t)

	cases := []struct {
		name string
		a    Action
		want error
	}{
		{"read_offset", ReadFileData{Offset: varint.Max + 1}, codec.ErrOffsetTooBig},
		{"read_size", ReadFileData{Size: varint.Max + 1}, codec.ErrSizeTooBig},
		{"write_offset", WriteFileData{Offset: varint.Max + 1}, codec.ErrOffsetTooBig},
		{"query_nil", ActionQuery{}, codec.ErrMissingOperand},
		{"query_mask", BreakQuery{Query: operand.ComparisonWithZero{Size: 2, Mask: []byte{1}}}, codec.ErrMaskBadSize},
		{"status_nil", Status{}, codec.ErrMissingOperand},
		{"forward_nil", Forward{}, codec.ErrMissingOperand},
		{"indirect_nil", IndirectForward{}, codec.ErrMissingOperand},
		{"chunk_step", Chunk{Step: 4}, codec.ErrValueOutOfRange},
		{"logic_op", Logic{Op: 9}, codec.ErrValueOutOfRange},
		{"storage_class", CreateNewFile{Header: operand.FileHeader{Properties: operand.FileProperties{StorageClass: 4}}}, codec.ErrValueOutOfRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := codec.Marshal(tc.a)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			var ve codec.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
		})
	}

	if _, err := NewWriteFileData(false, false, 1, 0, []byte{1}); err != nil {
		t.Fatalf("new write file data: %v", err)
	}
}

func TestOpCodeString(t *testing.T) {
	testlog.Start(t)
	if got := OpIndirectForward.String(); got != "IndirectForward" {
		t.Fatalf("got %q", got)
	}
	if got := OpCode(5).String(); got != "OpCode(5)" {
		t.Fatalf("got %q", got)
	}
}
