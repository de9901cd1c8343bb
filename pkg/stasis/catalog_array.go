package stasis

import (
	"math"
	"slices"

	"github.com/lk2023060901/stasis-go/pkg/util/merr"
	"github.com/lk2023060901/stasis-go/pkg/varint"
)

const (
	// maxStreamLength 为流中长度字段允许的最大值。
	maxStreamLength = math.MaxInt32
	// preallocLimit 限制按流中长度预分配的元素个数，超出部分随读取增长。
	preallocLimit = 4096
)

func readLength(in Input, what string) (int, error) {
	n, err := varint.ReadUvarint32(in)
	if err != nil {
		return 0, err
	}
	if n > maxStreamLength {
		return 0, merr.WrapErrStreamLengthInvalid(what, uint64(n), maxStreamLength)
	}
	return int(n), nil
}

func writeLength(out Output, n int) error {
	if n > maxStreamLength {
		return merr.WrapErrStreamLengthInvalid("length", uint64(n), maxStreamLength)
	}
	return varint.WriteUvarint32(out, uint32(n))
}

type byteArraySerializer struct{}

func (byteArraySerializer) Write(_ *Writer, out Output, v []byte) error {
	if err := writeLength(out, len(v)); err != nil {
		return err
	}
	return writeBytes(out, v)
}

func (byteArraySerializer) Read(_ *Reader, in Input) ([]byte, error) {
	n, err := readLength(in, "byte array")
	if err != nil {
		return nil, err
	}
	if n <= preallocLimit {
		b := make([]byte, n)
		return b, readFull(in, b)
	}
	b := make([]byte, 0, preallocLimit)
	for len(b) < n {
		if len(b) == cap(b) {
			b = slices.Grow(b, min(n-len(b), cap(b)))
		}
		chunk := min(n-len(b), cap(b)-len(b))
		if err := readFull(in, b[len(b):len(b)+chunk]); err != nil {
			return nil, err
		}
		b = b[:len(b)+chunk]
	}
	return b, nil
}

// ByteArraySerializer 以“变长长度 + 原始字节”编码字节切片。
func ByteArraySerializer() Serializer[[]byte] { return byteArraySerializer{} }

type arraySerializer[T any] struct {
	elem Serializer[T]
}

// ArrayOf 返回 []T 的序列化器：先写变长长度，再用 elem 逐个写出元素。
// 元素不带头部，也不参与引用追踪。
func ArrayOf[T any](elem Serializer[T]) Serializer[[]T] {
	return &arraySerializer[T]{elem: elem}
}

func (s *arraySerializer[T]) Write(w *Writer, out Output, v []T) error {
	if err := writeLength(out, len(v)); err != nil {
		return err
	}
	for i := range v {
		if err := s.elem.Write(w, out, v[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *arraySerializer[T]) Read(r *Reader, in Input) ([]T, error) {
	n, err := readLength(in, "array")
	if err != nil {
		return nil, err
	}
	v := make([]T, 0, min(n, preallocLimit))
	for i := 0; i < n; i++ {
		e, err := s.elem.Read(r, in)
		if err != nil {
			return nil, err
		}
		v = append(v, e)
	}
	return v, nil
}

type objectArraySerializer struct{}

func (objectArraySerializer) Write(w *Writer, out Output, v []any) error {
	if err := writeLength(out, len(v)); err != nil {
		return err
	}
	for _, e := range v {
		if err := w.WriteTyped(out, e); err != nil {
			return err
		}
	}
	return nil
}

func (objectArraySerializer) Read(r *Reader, in Input) ([]any, error) {
	n, err := readLength(in, "object array")
	if err != nil {
		return nil, err
	}
	v := make([]any, 0, min(n, preallocLimit))
	for i := 0; i < n; i++ {
		e, err := r.ReadTyped(in)
		if err != nil {
			return nil, err
		}
		v = append(v, e)
	}
	return v, nil
}

// ObjectArraySerializer 编码 []any：每个元素都带类型头部并参与引用追踪，
// 因此可以包含不同类型的元素以及 nil。
func ObjectArraySerializer() Serializer[[]any] { return objectArraySerializer{} }
