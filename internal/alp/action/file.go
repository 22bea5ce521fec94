package action

import (
	"github.com/danmuck/d7alp/internal/alp/codec"
	"github.com/danmuck/d7alp/internal/alp/operand"
	"github.com/danmuck/d7alp/internal/alp/varint"
)

// File id actions: control byte then one file id.

type ReadFileProperties struct {
	Group  bool
	Resp   bool
	FileID uint8
}

type ExistFile struct {
	Group  bool
	Resp   bool
	FileID uint8
}

type DeleteFile struct {
	Group  bool
	Resp   bool
	FileID uint8
}

type RestoreFile struct {
	Group  bool
	Resp   bool
	FileID uint8
}

type FlushFile struct {
	Group  bool
	Resp   bool
	FileID uint8
}

type ExecuteFile struct {
	Group  bool
	Resp   bool
	FileID uint8
}

func encodeFileID(op OpCode, group, resp bool, id uint8, out []byte) int {
	out[0] = ctrl(op, group, resp)
	out[1] = id
	return 2
}

func (ReadFileProperties) OpCode() OpCode   { return OpReadFileProperties }
func (ReadFileProperties) EncodedSize() int { return 2 }
func (a ReadFileProperties) EncodeTo(out []byte) int {
	return encodeFileID(OpReadFileProperties, a.Group, a.Resp, a.FileID, out)
}

func (ExistFile) OpCode() OpCode   { return OpExistFile }
func (ExistFile) EncodedSize() int { return 2 }
func (a ExistFile) EncodeTo(out []byte) int {
	return encodeFileID(OpExistFile, a.Group, a.Resp, a.FileID, out)
}

func (DeleteFile) OpCode() OpCode   { return OpDeleteFile }
func (DeleteFile) EncodedSize() int { return 2 }
func (a DeleteFile) EncodeTo(out []byte) int {
	return encodeFileID(OpDeleteFile, a.Group, a.Resp, a.FileID, out)
}

func (RestoreFile) OpCode() OpCode   { return OpRestoreFile }
func (RestoreFile) EncodedSize() int { return 2 }
func (a RestoreFile) EncodeTo(out []byte) int {
	return encodeFileID(OpRestoreFile, a.Group, a.Resp, a.FileID, out)
}

func (FlushFile) OpCode() OpCode   { return OpFlushFile }
func (FlushFile) EncodedSize() int { return 2 }
func (a FlushFile) EncodeTo(out []byte) int {
	return encodeFileID(OpFlushFile, a.Group, a.Resp, a.FileID, out)
}

func (ExecuteFile) OpCode() OpCode   { return OpExecuteFile }
func (ExecuteFile) EncodedSize() int { return 2 }
func (a ExecuteFile) EncodeTo(out []byte) int {
	return encodeFileID(OpExecuteFile, a.Group, a.Resp, a.FileID, out)
}

func fileIDDecoder(op OpCode) decodeFunc {
	return func(b []byte) (Action, int, error) {
		if err := codec.Missing(b, 2); err != nil {
			return nil, 0, err
		}
		g, r := flags(b[0])
		id := b[1]
		switch op {
		case OpReadFileProperties:
			return ReadFileProperties{Group: g, Resp: r, FileID: id}, 2, nil
		case OpExistFile:
			return ExistFile{Group: g, Resp: r, FileID: id}, 2, nil
		case OpDeleteFile:
			return DeleteFile{Group: g, Resp: r, FileID: id}, 2, nil
		case OpRestoreFile:
			return RestoreFile{Group: g, Resp: r, FileID: id}, 2, nil
		case OpFlushFile:
			return FlushFile{Group: g, Resp: r, FileID: id}, 2, nil
		default:
			return ExecuteFile{Group: g, Resp: r, FileID: id}, 2, nil
		}
	}
}

// ReadFileData requests Size bytes of file FileID starting at Offset.
type ReadFileData struct {
	Group  bool
	Resp   bool
	FileID uint8
	Offset uint32
	Size   uint32
}

func (ReadFileData) OpCode() OpCode { return OpReadFileData }

func (a ReadFileData) Validate() error {
	if !varint.IsValid(a.Offset) {
		return codec.Reject("read_file_data.offset", codec.ErrOffsetTooBig)
	}
	if !varint.IsValid(a.Size) {
		return codec.Reject("read_file_data.size", codec.ErrSizeTooBig)
	}
	return nil
}

func (a ReadFileData) EncodedSize() int {
	return 2 + varint.Size(a.Offset) + varint.Size(a.Size)
}

func (a ReadFileData) EncodeTo(out []byte) int {
	out[0] = ctrl(OpReadFileData, a.Group, a.Resp)
	out[1] = a.FileID
	offset := 2
	offset += varint.Encode(a.Offset, out[offset:])
	offset += varint.Encode(a.Size, out[offset:])
	return offset
}

func decodeReadFileData(b []byte) (Action, int, error) {
	if err := codec.Missing(b, 4); err != nil {
		return nil, 0, err
	}
	g, r := flags(b[0])
	a := ReadFileData{Group: g, Resp: r, FileID: b[1]}
	offset := 2
	var n int
	var err error
	if a.Offset, n, err = varint.Decode(b[offset:]); err != nil {
		return nil, 0, err
	}
	offset += n
	if a.Size, n, err = varint.Decode(b[offset:]); err != nil {
		return nil, 0, err
	}
	return a, offset + n, nil
}

// File data actions: control byte, file id, varint offset, varint length,
// then the data.

// WriteFileData writes Data into file FileID at Offset.
type WriteFileData struct {
	Group  bool
	Resp   bool
	FileID uint8
	Offset uint32
	Data   []byte
}

// ReturnFileData carries file content in a response.
type ReturnFileData struct {
	Group  bool
	Resp   bool
	FileID uint8
	Offset uint32
	Data   []byte
}

// NewWriteFileData checks that offset and len(data) fit a varint.
func NewWriteFileData(group, resp bool, fileID uint8, offset uint32, data []byte) (WriteFileData, error) {
	a := WriteFileData{Group: group, Resp: resp, FileID: fileID, Offset: offset, Data: data}
	return a, a.Validate()
}

func NewReturnFileData(group, resp bool, fileID uint8, offset uint32, data []byte) (ReturnFileData, error) {
	a := ReturnFileData{Group: group, Resp: resp, FileID: fileID, Offset: offset, Data: data}
	return a, a.Validate()
}

func validateFileData(field string, offset uint32, data []byte) error {
	if !varint.IsValid(offset) {
		return codec.Reject(field+".offset", codec.ErrOffsetTooBig)
	}
	if uint64(len(data)) > uint64(varint.Max) {
		return codec.Reject(field+".data", codec.ErrSizeTooBig)
	}
	return nil
}

func fileDataSize(offset uint32, data []byte) int {
	return 2 + varint.Size(offset) + varint.Size(uint32(len(data))) + len(data)
}

func encodeFileData(op OpCode, group, resp bool, id uint8, off uint32, data []byte, out []byte) int {
	out[0] = ctrl(op, group, resp)
	out[1] = id
	offset := 2
	offset += varint.Encode(off, out[offset:])
	offset += varint.Encode(uint32(len(data)), out[offset:])
	offset += copy(out[offset:], data)
	return offset
}

func (WriteFileData) OpCode() OpCode { return OpWriteFileData }
func (a WriteFileData) Validate() error {
	return validateFileData("write_file_data", a.Offset, a.Data)
}
func (a WriteFileData) EncodedSize() int { return fileDataSize(a.Offset, a.Data) }
func (a WriteFileData) EncodeTo(out []byte) int {
	return encodeFileData(OpWriteFileData, a.Group, a.Resp, a.FileID, a.Offset, a.Data, out)
}

func (ReturnFileData) OpCode() OpCode { return OpReturnFileData }
func (a ReturnFileData) Validate() error {
	return validateFileData("return_file_data", a.Offset, a.Data)
}
func (a ReturnFileData) EncodedSize() int { return fileDataSize(a.Offset, a.Data) }
func (a ReturnFileData) EncodeTo(out []byte) int {
	return encodeFileData(OpReturnFileData, a.Group, a.Resp, a.FileID, a.Offset, a.Data, out)
}

func fileDataDecoder(op OpCode) decodeFunc {
	return func(b []byte) (Action, int, error) {
		if err := codec.Missing(b, 4); err != nil {
			return nil, 0, err
		}
		g, r := flags(b[0])
		id := b[1]
		offset := 2
		off, n, err := varint.Decode(b[offset:])
		if err != nil {
			return nil, 0, err
		}
		offset += n
		size, n, err := varint.Decode(b[offset:])
		if err != nil {
			return nil, 0, err
		}
		offset += n
		if err := codec.Missing(b[offset:], int(size)); err != nil {
			return nil, 0, err
		}
		var data []byte
		if size > 0 {
			data = make([]byte, size)
			offset += copy(data, b[offset:])
		}
		if op == OpReturnFileData {
			return ReturnFileData{Group: g, Resp: r, FileID: id, Offset: off, Data: data}, offset, nil
		}
		return WriteFileData{Group: g, Resp: r, FileID: id, Offset: off, Data: data}, offset, nil
	}
}

// File properties actions: control byte, file id, then a file header.

type WriteFileProperties struct {
	Group  bool
	Resp   bool
	FileID uint8
	Header operand.FileHeader
}

type CreateNewFile struct {
	Group  bool
	Resp   bool
	FileID uint8
	Header operand.FileHeader
}

type ReturnFileProperties struct {
	Group  bool
	Resp   bool
	FileID uint8
	Header operand.FileHeader
}

const filePropertiesLen = 2 + operand.FileHeaderLen

func encodeFileProperties(op OpCode, group, resp bool, id uint8, h operand.FileHeader, out []byte) int {
	out[0] = ctrl(op, group, resp)
	out[1] = id
	return 2 + h.EncodeTo(out[2:])
}

func (WriteFileProperties) OpCode() OpCode    { return OpWriteFileProperties }
func (a WriteFileProperties) Validate() error { return a.Header.Validate() }
func (WriteFileProperties) EncodedSize() int  { return filePropertiesLen }
func (a WriteFileProperties) EncodeTo(out []byte) int {
	return encodeFileProperties(OpWriteFileProperties, a.Group, a.Resp, a.FileID, a.Header, out)
}

func (CreateNewFile) OpCode() OpCode    { return OpCreateNewFile }
func (a CreateNewFile) Validate() error { return a.Header.Validate() }
func (CreateNewFile) EncodedSize() int  { return filePropertiesLen }
func (a CreateNewFile) EncodeTo(out []byte) int {
	return encodeFileProperties(OpCreateNewFile, a.Group, a.Resp, a.FileID, a.Header, out)
}

func (ReturnFileProperties) OpCode() OpCode    { return OpReturnFileProperties }
func (a ReturnFileProperties) Validate() error { return a.Header.Validate() }
func (ReturnFileProperties) EncodedSize() int  { return filePropertiesLen }
func (a ReturnFileProperties) EncodeTo(out []byte) int {
	return encodeFileProperties(OpReturnFileProperties, a.Group, a.Resp, a.FileID, a.Header, out)
}

func filePropertiesDecoder(op OpCode) decodeFunc {
	return func(b []byte) (Action, int, error) {
		if err := codec.Missing(b, 2); err != nil {
			return nil, 0, err
		}
		g, r := flags(b[0])
		id := b[1]
		h, n, err := operand.DecodeFileHeader(b[2:])
		if err != nil {
			return nil, 0, codec.Shift(err, 2)
		}
		switch op {
		case OpCreateNewFile:
			return CreateNewFile{Group: g, Resp: r, FileID: id, Header: h}, 2 + n, nil
		case OpReturnFileProperties:
			return ReturnFileProperties{Group: g, Resp: r, FileID: id, Header: h}, 2 + n, nil
		default:
			return WriteFileProperties{Group: g, Resp: r, FileID: id, Header: h}, 2 + n, nil
		}
	}
}

// CopyFile copies file SrcFileID into DstFileID.
type CopyFile struct {
	Group     bool
	Resp      bool
	SrcFileID uint8
	DstFileID uint8
}

func (CopyFile) OpCode() OpCode   { return OpCopyFile }
func (CopyFile) EncodedSize() int { return 3 }
func (a CopyFile) EncodeTo(out []byte) int {
	out[0] = ctrl(OpCopyFile, a.Group, a.Resp)
	out[1] = a.SrcFileID
	out[2] = a.DstFileID
	return 3
}

func decodeCopyFile(b []byte) (Action, int, error) {
	if err := codec.Missing(b, 3); err != nil {
		return nil, 0, err
	}
	g, r := flags(b[0])
	return CopyFile{Group: g, Resp: r, SrcFileID: b[1], DstFileID: b[2]}, 3, nil
}
