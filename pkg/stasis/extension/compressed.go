package extension

import (
	"bytes"

	"github.com/valyala/bytebufferpool"

	"github.com/lk2023060901/stasis-go/internal/network/compressor"
	"github.com/lk2023060901/stasis-go/pkg/stasis"
)

type compressedSerializer[T any] struct {
	inner stasis.Serializer[T]
	codec compressor.Compressor
	bytes stasis.Serializer[[]byte]
}

// Compressed 先用 inner 把值写入缓冲区，再把压缩后的字节以长度前缀写出。
// inner 在同一个会话中执行，嵌套值的引用追踪不受影响。
func Compressed[T any](inner stasis.Serializer[T], codec compressor.Compressor) stasis.Serializer[T] {
	return &compressedSerializer[T]{inner: inner, codec: codec, bytes: stasis.ByteArraySerializer()}
}

func (s *compressedSerializer[T]) Write(w *stasis.Writer, out stasis.Output, v T) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := s.inner.Write(w, buf, v); err != nil {
		return err
	}
	packed, err := s.codec.Compress(nil, buf.B)
	if err != nil {
		return err
	}
	return s.bytes.Write(w, out, packed)
}

func (s *compressedSerializer[T]) Read(r *stasis.Reader, in stasis.Input) (T, error) {
	var zero T
	packed, err := s.bytes.Read(r, in)
	if err != nil {
		return zero, err
	}
	plain, err := s.codec.Decompress(nil, packed)
	if err != nil {
		return zero, err
	}
	return s.inner.Read(r, bytes.NewReader(plain))
}
