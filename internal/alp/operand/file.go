// Package operand implements the structured arguments carried by ALP
// actions: file pointers and headers, statuses, permissions, queries and the
// interface unions used by forwarding and status reports.
package operand

import (
	"encoding/binary"

	"github.com/danmuck/d7alp/internal/alp/codec"
	"github.com/danmuck/d7alp/internal/alp/varint"
)

// FileOffset points at a byte offset inside file ID.
type FileOffset struct {
	ID     uint8
	Offset uint32
}

// NewFileOffset checks that offset fits a varint.
func NewFileOffset(id uint8, offset uint32) (FileOffset, error) {
	f := FileOffset{ID: id, Offset: offset}
	if err := f.Validate(); err != nil {
		return FileOffset{}, err
	}
	return f, nil
}

func (f FileOffset) Validate() error {
	if !varint.IsValid(f.Offset) {
		return codec.Reject("file_offset.offset", codec.ErrOffsetTooBig)
	}
	return nil
}

func (f FileOffset) EncodedSize() int {
	return 1 + varint.Size(f.Offset)
}

func (f FileOffset) EncodeTo(out []byte) int {
	out[0] = f.ID
	return 1 + varint.Encode(f.Offset, out[1:])
}

func DecodeFileOffset(b []byte) (FileOffset, int, error) {
	if err := codec.Missing(b, 2); err != nil {
		return FileOffset{}, 0, err
	}
	offset, n, err := varint.Decode(b[1:])
	if err != nil {
		return FileOffset{}, 0, err
	}
	return FileOffset{ID: b[0], Offset: offset}, 1 + n, nil
}

// Permissions is the access byte of a file header.
type Permissions struct {
	Encrypted  bool
	Executable bool
	UserRead   bool
	UserWrite  bool
	UserExec   bool
	GuestRead  bool
	GuestWrite bool
	GuestExec  bool
}

func (p Permissions) Byte() byte {
	return codec.Bit(p.Encrypted)<<7 |
		codec.Bit(p.Executable)<<6 |
		codec.Bit(p.UserRead)<<5 |
		codec.Bit(p.UserWrite)<<4 |
		codec.Bit(p.UserExec)<<3 |
		codec.Bit(p.GuestRead)<<2 |
		codec.Bit(p.GuestWrite)<<1 |
		codec.Bit(p.GuestExec)
}

func PermissionsFromByte(n byte) Permissions {
	return Permissions{
		Encrypted:  n&0x80 != 0,
		Executable: n&0x40 != 0,
		UserRead:   n&0x20 != 0,
		UserWrite:  n&0x10 != 0,
		UserExec:   n&0x08 != 0,
		GuestRead:  n&0x04 != 0,
		GuestWrite: n&0x02 != 0,
		GuestExec:  n&0x01 != 0,
	}
}

// ActionCondition selects when a file's action command runs. Values 4 to 7
// are reserved but representable.
type ActionCondition uint8

const (
	ActOnList       ActionCondition = 0
	ActOnRead       ActionCondition = 1
	ActOnWrite      ActionCondition = 2
	ActOnWriteFlush ActionCondition = 3
)

type StorageClass uint8

const (
	StorageTransient  StorageClass = 0
	StorageVolatile   StorageClass = 1
	StorageRestorable StorageClass = 2
	StoragePermanent  StorageClass = 3
)

// FileProperties is act_en<<7 | act_cond<<4 | storage_class.
type FileProperties struct {
	ActEnabled   bool
	ActCondition ActionCondition
	StorageClass StorageClass
}

func (p FileProperties) Validate() error {
	if p.ActCondition > 7 {
		return codec.Reject("file_properties.act_condition", codec.ErrValueOutOfRange)
	}
	if p.StorageClass > 3 {
		return codec.Reject("file_properties.storage_class", codec.ErrValueOutOfRange)
	}
	return nil
}

func (p FileProperties) Byte() byte {
	return codec.Bit(p.ActEnabled)<<7 | byte(p.ActCondition)<<4 | byte(p.StorageClass)
}

func FilePropertiesFromByte(n byte) FileProperties {
	return FileProperties{
		ActEnabled:   n&0x80 != 0,
		ActCondition: ActionCondition(n >> 4 & 0x07),
		StorageClass: StorageClass(n & 0x03),
	}
}

const FileHeaderLen = 12

// FileHeader is the fixed 12 byte description of a file.
type FileHeader struct {
	Permissions     Permissions
	Properties      FileProperties
	AlpCmdFileID    uint8
	InterfaceFileID uint8
	FileSize        uint32
	AllocatedSize   uint32
}

func (h FileHeader) Validate() error {
	return h.Properties.Validate()
}

func (FileHeader) EncodedSize() int { return FileHeaderLen }

func (h FileHeader) EncodeTo(out []byte) int {
	_ = out[FileHeaderLen-1]
	out[0] = h.Permissions.Byte()
	out[1] = h.Properties.Byte()
	out[2] = h.AlpCmdFileID
	out[3] = h.InterfaceFileID
	binary.BigEndian.PutUint32(out[4:8], h.FileSize)
	binary.BigEndian.PutUint32(out[8:12], h.AllocatedSize)
	return FileHeaderLen
}

func DecodeFileHeader(b []byte) (FileHeader, int, error) {
	if err := codec.Missing(b, FileHeaderLen); err != nil {
		return FileHeader{}, 0, err
	}
	return FileHeader{
		Permissions:     PermissionsFromByte(b[0]),
		Properties:      FilePropertiesFromByte(b[1]),
		AlpCmdFileID:    b[2],
		InterfaceFileID: b[3],
		FileSize:        binary.BigEndian.Uint32(b[4:8]),
		AllocatedSize:   binary.BigEndian.Uint32(b[8:12]),
	}, FileHeaderLen, nil
}
