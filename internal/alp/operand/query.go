package operand

import (
	"github.com/danmuck/d7alp/internal/alp/codec"
	"github.com/danmuck/d7alp/internal/alp/varint"
)

// QueryCode occupies bits 7..5 of a query's first byte.
type QueryCode uint8

const (
	QueryNonVoid                 QueryCode = 0
	QueryComparisonWithZero      QueryCode = 1
	QueryComparisonWithValue     QueryCode = 2
	QueryComparisonWithOtherFile QueryCode = 3
	QueryBitmapRangeComparison   QueryCode = 4
	QueryStringTokenSearch       QueryCode = 7
)

type ComparisonType uint8

const (
	CompareInequal            ComparisonType = 0
	CompareEqual              ComparisonType = 1
	CompareLessThan           ComparisonType = 2
	CompareLessThanOrEqual    ComparisonType = 3
	CompareGreaterThan        ComparisonType = 4
	CompareGreaterThanOrEqual ComparisonType = 5
)

func (c ComparisonType) valid() bool { return c <= CompareGreaterThanOrEqual }

type RangeComparisonType uint8

const (
	RangeNotIn RangeComparisonType = 0
	RangeIn    RangeComparisonType = 1
)

func (c RangeComparisonType) valid() bool { return c <= RangeIn }

// Query is the condition operand of ActionQuery, BreakQuery and
// VerifyChecksum.
type Query interface {
	codec.Encoder
	codec.Validator
	Code() QueryCode
}

const (
	maskFlag   = 1 << 4
	signedFlag = 1 << 3
)

func queryByte(code QueryCode, mask, signed bool, low uint8) byte {
	return byte(code)<<5 | codec.Bit(mask)<<4 | codec.Bit(signed)<<3 | low&0x07
}

func checkSize(field string, size uint32) error {
	if !varint.IsValid(size) {
		return codec.Reject(field, codec.ErrSizeTooBig)
	}
	return nil
}

func checkMask(field string, mask []byte, size uint32) error {
	if mask != nil && uint64(len(mask)) != uint64(size) {
		return codec.Reject(field, codec.ErrMaskBadSize)
	}
	return nil
}

func checkComparison(c ComparisonType) error {
	if !c.valid() {
		return codec.Reject("query.comparison_type", codec.ErrValueOutOfRange)
	}
	return nil
}

// readBytes copies n bytes from the front of b. Zero bytes read as nil.
func readBytes(b []byte, n int) ([]byte, error) {
	if err := codec.Missing(b, n); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// readMask reads a mask whose flag is set. An empty mask stays non-nil, since
// a nil Mask clears the flag.
func readMask(b []byte, n int) ([]byte, error) {
	mask, err := readBytes(b, n)
	if err == nil && mask == nil {
		mask = []byte{}
	}
	return mask, err
}

// decodeSized reads a query's control byte and varint size.
func decodeSized(b []byte) (uint32, int, error) {
	if err := codec.Missing(b, 2); err != nil {
		return 0, 0, err
	}
	size, n, err := varint.Decode(b[1:])
	if err != nil {
		return 0, 0, err
	}
	return size, 1 + n, nil
}

// NonVoid checks that Size bytes exist at File.
type NonVoid struct {
	Size uint32
	File FileOffset
}

func NewNonVoid(size uint32, file FileOffset) (NonVoid, error) {
	q := NonVoid{Size: size, File: file}
	return q, q.Validate()
}

func (NonVoid) Code() QueryCode { return QueryNonVoid }

func (q NonVoid) Validate() error {
	if err := checkSize("non_void.size", q.Size); err != nil {
		return err
	}
	return q.File.Validate()
}

func (q NonVoid) EncodedSize() int {
	return 1 + varint.Size(q.Size) + q.File.EncodedSize()
}

func (q NonVoid) EncodeTo(out []byte) int {
	out[0] = queryByte(QueryNonVoid, false, false, 0)
	offset := 1
	offset += varint.Encode(q.Size, out[offset:])
	offset += q.File.EncodeTo(out[offset:])
	return offset
}

func DecodeNonVoid(b []byte) (NonVoid, int, error) {
	size, offset, err := decodeSized(b)
	if err != nil {
		return NonVoid{}, 0, err
	}
	file, n, err := DecodeFileOffset(b[offset:])
	if err != nil {
		return NonVoid{}, 0, codec.Shift(err, offset)
	}
	return NonVoid{Size: size, File: file}, offset + n, nil
}

// ComparisonWithZero compares Size bytes at File, optionally masked, with 0.
type ComparisonWithZero struct {
	Signed     bool
	Comparison ComparisonType
	Size       uint32
	Mask       []byte
	File       FileOffset
}

func NewComparisonWithZero(signed bool, cmp ComparisonType, size uint32, mask []byte, file FileOffset) (ComparisonWithZero, error) {
	q := ComparisonWithZero{Signed: signed, Comparison: cmp, Size: size, Mask: mask, File: file}
	return q, q.Validate()
}

func (ComparisonWithZero) Code() QueryCode { return QueryComparisonWithZero }

func (q ComparisonWithZero) Validate() error {
	if err := checkComparison(q.Comparison); err != nil {
		return err
	}
	if err := checkSize("comparison_with_zero.size", q.Size); err != nil {
		return err
	}
	if err := checkMask("comparison_with_zero.mask", q.Mask, q.Size); err != nil {
		return err
	}
	return q.File.Validate()
}

func (q ComparisonWithZero) EncodedSize() int {
	return 1 + varint.Size(q.Size) + len(q.Mask) + q.File.EncodedSize()
}

func (q ComparisonWithZero) EncodeTo(out []byte) int {
	out[0] = queryByte(QueryComparisonWithZero, q.Mask != nil, q.Signed, uint8(q.Comparison))
	offset := 1
	offset += varint.Encode(q.Size, out[offset:])
	offset += copy(out[offset:], q.Mask)
	offset += q.File.EncodeTo(out[offset:])
	return offset
}

func DecodeComparisonWithZero(b []byte) (ComparisonWithZero, int, error) {
	size, offset, err := decodeSized(b)
	if err != nil {
		return ComparisonWithZero{}, 0, err
	}
	cmp := ComparisonType(b[0] & 0x07)
	if !cmp.valid() {
		return ComparisonWithZero{}, 0, codec.Unknown("comparison_type", uint8(cmp))
	}
	q := ComparisonWithZero{Signed: b[0]&signedFlag != 0, Comparison: cmp, Size: size}
	if b[0]&maskFlag != 0 {
		if q.Mask, err = readMask(b[offset:], int(size)); err != nil {
			return ComparisonWithZero{}, 0, err
		}
		offset += int(size)
	}
	file, n, err := DecodeFileOffset(b[offset:])
	if err != nil {
		return ComparisonWithZero{}, 0, codec.Shift(err, offset)
	}
	q.File = file
	return q, offset + n, nil
}

// ComparisonWithValue compares len(Value) bytes at File with Value.
type ComparisonWithValue struct {
	Signed     bool
	Comparison ComparisonType
	Mask       []byte
	Value      []byte
	File       FileOffset
}

func NewComparisonWithValue(signed bool, cmp ComparisonType, mask, value []byte, file FileOffset) (ComparisonWithValue, error) {
	q := ComparisonWithValue{Signed: signed, Comparison: cmp, Mask: mask, Value: value, File: file}
	return q, q.Validate()
}

func (ComparisonWithValue) Code() QueryCode { return QueryComparisonWithValue }

// Size is the compared length.
func (q ComparisonWithValue) Size() uint32 { return uint32(len(q.Value)) }

func (q ComparisonWithValue) Validate() error {
	if err := checkComparison(q.Comparison); err != nil {
		return err
	}
	if uint64(len(q.Value)) > uint64(varint.Max) {
		return codec.Reject("comparison_with_value.value", codec.ErrSizeTooBig)
	}
	if err := checkMask("comparison_with_value.mask", q.Mask, q.Size()); err != nil {
		return err
	}
	return q.File.Validate()
}

func (q ComparisonWithValue) EncodedSize() int {
	return 1 + varint.Size(q.Size()) + len(q.Mask) + len(q.Value) + q.File.EncodedSize()
}

func (q ComparisonWithValue) EncodeTo(out []byte) int {
	out[0] = queryByte(QueryComparisonWithValue, q.Mask != nil, q.Signed, uint8(q.Comparison))
	offset := 1
	offset += varint.Encode(q.Size(), out[offset:])
	offset += copy(out[offset:], q.Mask)
	offset += copy(out[offset:], q.Value)
	offset += q.File.EncodeTo(out[offset:])
	return offset
}

func DecodeComparisonWithValue(b []byte) (ComparisonWithValue, int, error) {
	size, offset, err := decodeSized(b)
	if err != nil {
		return ComparisonWithValue{}, 0, err
	}
	cmp := ComparisonType(b[0] & 0x07)
	if !cmp.valid() {
		return ComparisonWithValue{}, 0, codec.Unknown("comparison_type", uint8(cmp))
	}
	q := ComparisonWithValue{Signed: b[0]&signedFlag != 0, Comparison: cmp}
	if b[0]&maskFlag != 0 {
		if q.Mask, err = readMask(b[offset:], int(size)); err != nil {
			return ComparisonWithValue{}, 0, err
		}
		offset += int(size)
	}
	if q.Value, err = readBytes(b[offset:], int(size)); err != nil {
		return ComparisonWithValue{}, 0, err
	}
	offset += int(size)
	file, n, err := DecodeFileOffset(b[offset:])
	if err != nil {
		return ComparisonWithValue{}, 0, codec.Shift(err, offset)
	}
	q.File = file
	return q, offset + n, nil
}

// ComparisonWithOtherFile compares Size bytes at File1 with Size bytes at
// File2.
type ComparisonWithOtherFile struct {
	Signed     bool
	Comparison ComparisonType
	Size       uint32
	Mask       []byte
	File1      FileOffset
	File2      FileOffset
}

func NewComparisonWithOtherFile(signed bool, cmp ComparisonType, size uint32, mask []byte, file1, file2 FileOffset) (ComparisonWithOtherFile, error) {
	q := ComparisonWithOtherFile{Signed: signed, Comparison: cmp, Size: size, Mask: mask, File1: file1, File2: file2}
	return q, q.Validate()
}

func (ComparisonWithOtherFile) Code() QueryCode { return QueryComparisonWithOtherFile }

func (q ComparisonWithOtherFile) Validate() error {
	if err := checkComparison(q.Comparison); err != nil {
		return err
	}
	if err := checkSize("comparison_with_other_file.size", q.Size); err != nil {
		return err
	}
	if err := checkMask("comparison_with_other_file.mask", q.Mask, q.Size); err != nil {
		return err
	}
	if err := q.File1.Validate(); err != nil {
		return err
	}
	return q.File2.Validate()
}

func (q ComparisonWithOtherFile) EncodedSize() int {
	return 1 + varint.Size(q.Size) + len(q.Mask) + q.File1.EncodedSize() + q.File2.EncodedSize()
}

func (q ComparisonWithOtherFile) EncodeTo(out []byte) int {
	out[0] = queryByte(QueryComparisonWithOtherFile, q.Mask != nil, q.Signed, uint8(q.Comparison))
	offset := 1
	offset += varint.Encode(q.Size, out[offset:])
	offset += copy(out[offset:], q.Mask)
	offset += q.File1.EncodeTo(out[offset:])
	offset += q.File2.EncodeTo(out[offset:])
	return offset
}

func DecodeComparisonWithOtherFile(b []byte) (ComparisonWithOtherFile, int, error) {
	size, offset, err := decodeSized(b)
	if err != nil {
		return ComparisonWithOtherFile{}, 0, err
	}
	cmp := ComparisonType(b[0] & 0x07)
	if !cmp.valid() {
		return ComparisonWithOtherFile{}, 0, codec.Unknown("comparison_type", uint8(cmp))
	}
	q := ComparisonWithOtherFile{Signed: b[0]&signedFlag != 0, Comparison: cmp, Size: size}
	if b[0]&maskFlag != 0 {
		if q.Mask, err = readMask(b[offset:], int(size)); err != nil {
			return ComparisonWithOtherFile{}, 0, err
		}
		offset += int(size)
	}
	file1, n, err := DecodeFileOffset(b[offset:])
	if err != nil {
		return ComparisonWithOtherFile{}, 0, codec.Shift(err, offset)
	}
	offset += n
	file2, n, err := DecodeFileOffset(b[offset:])
	if err != nil {
		return ComparisonWithOtherFile{}, 0, codec.Shift(err, offset)
	}
	q.File1, q.File2 = file1, file2
	return q, offset + n, nil
}

// BitmapRangeComparison tests the bits of a bitmap covering [Start, Stop]
// against the file content. Start and Stop are written as big-endian fields
// of Width bytes each. The bitmap holds (Stop-Start+6)/8 bytes.
type BitmapRangeComparison struct {
	Signed     bool
	Comparison RangeComparisonType
	Width      uint8
	Start      uint32
	Stop       uint32
	Bitmap     []byte
	File       FileOffset
}

// NewBitmapRangeComparison picks the narrowest bound width that holds stop.
func NewBitmapRangeComparison(signed bool, cmp RangeComparisonType, start, stop uint32, bitmap []byte, file FileOffset) (BitmapRangeComparison, error) {
	q := BitmapRangeComparison{
		Signed:     signed,
		Comparison: cmp,
		Width:      BoundWidth(stop),
		Start:      start,
		Stop:       stop,
		Bitmap:     bitmap,
		File:       file,
	}
	return q, q.Validate()
}

// BoundWidth is the smallest byte count that holds n.
func BoundWidth(n uint32) uint8 {
	switch {
	case n <= 0xFF:
		return 1
	case n <= 0xFF_FF:
		return 2
	case n <= 0xFF_FF_FF:
		return 3
	default:
		return 4
	}
}

// BitmapLen is the bitmap size implied by a range.
func BitmapLen(start, stop uint32) int {
	return int((uint64(stop) - uint64(start) + 6) / 8)
}

func (BitmapRangeComparison) Code() QueryCode { return QueryBitmapRangeComparison }

func (q BitmapRangeComparison) Validate() error {
	if !q.Comparison.valid() {
		return codec.Reject("bitmap_range_comparison.comparison_type", codec.ErrValueOutOfRange)
	}
	if q.Start > q.Stop {
		return codec.Reject("bitmap_range_comparison.start", codec.ErrStartGreaterThanStop)
	}
	if q.Width < 1 || q.Width > 4 || BoundWidth(q.Stop) > q.Width {
		return codec.Reject("bitmap_range_comparison.width", codec.ErrBoundWidth)
	}
	if len(q.Bitmap) != BitmapLen(q.Start, q.Stop) {
		return codec.Reject("bitmap_range_comparison.bitmap", codec.ErrBitmapBadSize)
	}
	return q.File.Validate()
}

func (q BitmapRangeComparison) EncodedSize() int {
	return 1 + varint.Size(uint32(q.Width)) + 2*int(q.Width) + len(q.Bitmap) + q.File.EncodedSize()
}

func (q BitmapRangeComparison) EncodeTo(out []byte) int {
	out[0] = queryByte(QueryBitmapRangeComparison, false, q.Signed, uint8(q.Comparison))
	offset := 1
	offset += varint.Encode(uint32(q.Width), out[offset:])
	offset += putBound(out[offset:], q.Start, q.Width)
	offset += putBound(out[offset:], q.Stop, q.Width)
	offset += copy(out[offset:], q.Bitmap)
	offset += q.File.EncodeTo(out[offset:])
	return offset
}

func putBound(out []byte, n uint32, width uint8) int {
	w := int(width)
	for i := w - 1; i >= 0; i-- {
		out[i] = byte(n)
		n >>= 8
	}
	return w
}

func bound(b []byte) uint32 {
	var n uint32
	for _, c := range b {
		n = n<<8 | uint32(c)
	}
	return n
}

func DecodeBitmapRangeComparison(b []byte) (BitmapRangeComparison, int, error) {
	width, offset, err := decodeSized(b)
	if err != nil {
		return BitmapRangeComparison{}, 0, err
	}
	cmp := RangeComparisonType(b[0] & 0x07)
	if !cmp.valid() {
		return BitmapRangeComparison{}, 0, codec.Unknown("range_comparison_type", uint8(cmp))
	}
	if width < 1 || width > 4 {
		return BitmapRangeComparison{}, 0, codec.Shift(codec.Invalid(codec.ErrUnsupported, "bound_width", width), 1)
	}
	w := int(width)
	if err := codec.Missing(b[offset:], 2*w); err != nil {
		return BitmapRangeComparison{}, 0, err
	}
	start := bound(b[offset : offset+w])
	stop := bound(b[offset+w : offset+2*w])
	if start > stop {
		return BitmapRangeComparison{}, 0, codec.Shift(codec.Invalid(codec.ErrBadEncodedRange, "range_start", start), offset)
	}
	offset += 2 * w
	bitmap, err := readBytes(b[offset:], BitmapLen(start, stop))
	if err != nil {
		return BitmapRangeComparison{}, 0, err
	}
	offset += len(bitmap)
	file, n, err := DecodeFileOffset(b[offset:])
	if err != nil {
		return BitmapRangeComparison{}, 0, codec.Shift(err, offset)
	}
	return BitmapRangeComparison{
		Signed:     b[0]&signedFlag != 0,
		Comparison: cmp,
		Width:      uint8(width),
		Start:      start,
		Stop:       stop,
		Bitmap:     bitmap,
		File:       file,
	}, offset + n, nil
}

// StringTokenSearch looks for Value in the file, tolerating up to MaxErrors
// mismatching bytes.
type StringTokenSearch struct {
	MaxErrors uint8
	Mask      []byte
	Value     []byte
	File      FileOffset
}

func NewStringTokenSearch(maxErrors uint8, mask, value []byte, file FileOffset) (StringTokenSearch, error) {
	q := StringTokenSearch{MaxErrors: maxErrors, Mask: mask, Value: value, File: file}
	return q, q.Validate()
}

func (StringTokenSearch) Code() QueryCode { return QueryStringTokenSearch }

func (q StringTokenSearch) Size() uint32 { return uint32(len(q.Value)) }

func (q StringTokenSearch) Validate() error {
	if q.MaxErrors > 7 {
		return codec.Reject("string_token_search.max_errors", codec.ErrValueOutOfRange)
	}
	if uint64(len(q.Value)) > uint64(varint.Max) {
		return codec.Reject("string_token_search.value", codec.ErrSizeTooBig)
	}
	if err := checkMask("string_token_search.mask", q.Mask, q.Size()); err != nil {
		return err
	}
	return q.File.Validate()
}

func (q StringTokenSearch) EncodedSize() int {
	return 1 + varint.Size(q.Size()) + len(q.Mask) + len(q.Value) + q.File.EncodedSize()
}

func (q StringTokenSearch) EncodeTo(out []byte) int {
	out[0] = queryByte(QueryStringTokenSearch, q.Mask != nil, false, q.MaxErrors)
	offset := 1
	offset += varint.Encode(q.Size(), out[offset:])
	offset += copy(out[offset:], q.Mask)
	offset += copy(out[offset:], q.Value)
	offset += q.File.EncodeTo(out[offset:])
	return offset
}

func DecodeStringTokenSearch(b []byte) (StringTokenSearch, int, error) {
	size, offset, err := decodeSized(b)
	if err != nil {
		return StringTokenSearch{}, 0, err
	}
	q := StringTokenSearch{MaxErrors: b[0] & 0x07}
	if b[0]&maskFlag != 0 {
		if q.Mask, err = readMask(b[offset:], int(size)); err != nil {
			return StringTokenSearch{}, 0, err
		}
		offset += int(size)
	}
	if q.Value, err = readBytes(b[offset:], int(size)); err != nil {
		return StringTokenSearch{}, 0, err
	}
	offset += int(size)
	file, n, err := DecodeFileOffset(b[offset:])
	if err != nil {
		return StringTokenSearch{}, 0, codec.Shift(err, offset)
	}
	q.File = file
	return q, offset + n, nil
}

// DecodeQuery dispatches on the query code in bits 7..5 of the first byte.
func DecodeQuery(b []byte) (Query, int, error) {
	if err := codec.Missing(b, 1); err != nil {
		return nil, 0, err
	}
	switch code := QueryCode(b[0] >> 5); code {
	case QueryNonVoid:
		return widen(DecodeNonVoid(b))
	case QueryComparisonWithZero:
		return widen(DecodeComparisonWithZero(b))
	case QueryComparisonWithValue:
		return widen(DecodeComparisonWithValue(b))
	case QueryComparisonWithOtherFile:
		return widen(DecodeComparisonWithOtherFile(b))
	case QueryBitmapRangeComparison:
		return widen(DecodeBitmapRangeComparison(b))
	case QueryStringTokenSearch:
		return widen(DecodeStringTokenSearch(b))
	default:
		return nil, 0, codec.Unknown("query_code", uint8(code))
	}
}

func widen[T Query](q T, n int, err error) (Query, int, error) {
	if err != nil {
		return nil, 0, err
	}
	return q, n, nil
}
