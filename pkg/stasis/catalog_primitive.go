package stasis

import (
	"encoding/binary"
	"io"
	"math"
	"unsafe"

	"golang.org/x/exp/constraints"

	"github.com/lk2023060901/stasis-go/pkg/util/merr"
	"github.com/lk2023060901/stasis-go/pkg/varint"
)

// nullHandler 对应 nil：不写任何字节，读出 nil。
type nullHandler struct{}

func (nullHandler) write(*Writer, Output, any) error { return nil }

func (nullHandler) read(*Reader, Input) (any, error) { return nil, nil }

func writeBytes(out Output, b []byte) error {
	if _, err := out.Write(b); err != nil {
		return merr.WrapErrIoFailed(err)
	}
	return nil
}

func readFull(in Input, b []byte) error {
	if _, err := io.ReadFull(in, b); err != nil {
		return merr.WrapErrIoFailed(err)
	}
	return nil
}

type boolSerializer struct{}

func (boolSerializer) Write(_ *Writer, out Output, v bool) error {
	var b byte
	if v {
		b = 1
	}
	if err := out.WriteByte(b); err != nil {
		return merr.WrapErrIoFailed(err)
	}
	return nil
}

func (boolSerializer) Read(_ *Reader, in Input) (bool, error) {
	b, err := in.ReadByte()
	if err != nil {
		return false, merr.WrapErrIoFailed(err)
	}
	return b == 1, nil
}

// fixedInt 以大端定长格式编码整数，宽度等于 T 的大小。
type fixedInt[T constraints.Integer] struct{}

func (fixedInt[T]) size() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

func (s fixedInt[T]) Write(_ *Writer, out Output, v T) error {
	var b [8]byte
	n := s.size()
	u := uint64(v)
	for i := n - 1; i >= 0; i-- {
		b[i] = byte(u)
		u >>= 8
	}
	return writeBytes(out, b[:n])
}

func (s fixedInt[T]) Read(_ *Reader, in Input) (T, error) {
	var b [8]byte
	n := s.size()
	if err := readFull(in, b[:n]); err != nil {
		return 0, err
	}
	var u uint64
	for i := 0; i < n; i++ {
		u = u<<8 | uint64(b[i])
	}
	return T(u), nil
}

type float32Serializer struct{}

func (float32Serializer) Write(_ *Writer, out Output, v float32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], math.Float32bits(v))
	return writeBytes(out, b[:])
}

func (float32Serializer) Read(_ *Reader, in Input) (float32, error) {
	var b [4]byte
	if err := readFull(in, b[:]); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(b[:])), nil
}

type float64Serializer struct{}

func (float64Serializer) Write(_ *Writer, out Output, v float64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	return writeBytes(out, b[:])
}

func (float64Serializer) Read(_ *Reader, in Input) (float64, error) {
	var b [8]byte
	if err := readFull(in, b[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b[:])), nil
}

// signedVarint 以 zig-zag 变长格式编码有符号整数，
// 不超过 4 字节的类型使用 32 位编码，其余使用 64 位编码。
type signedVarint[T constraints.Signed] struct{}

func (signedVarint[T]) wide() bool {
	var zero T
	return unsafe.Sizeof(zero) > 4
}

func (s signedVarint[T]) Write(_ *Writer, out Output, v T) error {
	if s.wide() {
		return varint.WriteVarint64(out, int64(v))
	}
	return varint.WriteVarint32(out, int32(v))
}

func (s signedVarint[T]) Read(_ *Reader, in Input) (T, error) {
	if s.wide() {
		v, err := varint.ReadVarint64(in)
		return T(v), err
	}
	v, err := varint.ReadVarint32(in)
	return T(v), err
}

// unsignedVarint 以无符号变长格式编码整数。
type unsignedVarint[T constraints.Unsigned] struct{}

func (unsignedVarint[T]) wide() bool {
	var zero T
	return unsafe.Sizeof(zero) > 4
}

func (s unsignedVarint[T]) Write(_ *Writer, out Output, v T) error {
	if s.wide() {
		return varint.WriteUvarint64(out, uint64(v))
	}
	return varint.WriteUvarint32(out, uint32(v))
}

func (s unsignedVarint[T]) Read(_ *Reader, in Input) (T, error) {
	if s.wide() {
		v, err := varint.ReadUvarint64(in)
		return T(v), err
	}
	v, err := varint.ReadUvarint32(in)
	return T(v), err
}

// BoolSerializer 以单字节 0/1 编码布尔值。
func BoolSerializer() Serializer[bool] { return boolSerializer{} }

// CharSerializer 以 2 字节大端编码一个 UTF-16 码元。
func CharSerializer() Serializer[uint16] { return fixedInt[uint16]{} }

func Int8Serializer() Serializer[int8] { return fixedInt[int8]{} }

func Uint8Serializer() Serializer[uint8] { return fixedInt[uint8]{} }

func Int16Serializer() Serializer[int16] { return fixedInt[int16]{} }

func Int32Serializer() Serializer[int32] { return fixedInt[int32]{} }

func Int64Serializer() Serializer[int64] { return fixedInt[int64]{} }

// IntSerializer 把 int 按 8 字节大端编码，与平台字长无关。
func IntSerializer() Serializer[int] { return fixedWidth[int, int64]{} }

func UintSerializer() Serializer[uint] { return fixedWidth[uint, uint64]{} }

func Uint32Serializer() Serializer[uint32] { return fixedInt[uint32]{} }

func Uint64Serializer() Serializer[uint64] { return fixedInt[uint64]{} }

// Float32Serializer 写出 IEEE-754 原始位模式，NaN 的载荷位保持不变。
func Float32Serializer() Serializer[float32] { return float32Serializer{} }

func Float64Serializer() Serializer[float64] { return float64Serializer{} }

// VarintOf 返回有符号整数的 zig-zag 变长序列化器。
func VarintOf[T constraints.Signed]() Serializer[T] { return signedVarint[T]{} }

// UvarintOf 返回无符号整数的变长序列化器。
func UvarintOf[T constraints.Unsigned]() Serializer[T] { return unsignedVarint[T]{} }

// fixedWidth 把平台相关宽度的 T 按 W 的宽度编码。
type fixedWidth[T, W constraints.Integer] struct{}

func (fixedWidth[T, W]) Write(w *Writer, out Output, v T) error {
	return fixedInt[W]{}.Write(w, out, W(v))
}

func (fixedWidth[T, W]) Read(r *Reader, in Input) (T, error) {
	v, err := fixedInt[W]{}.Read(r, in)
	return T(v), err
}
