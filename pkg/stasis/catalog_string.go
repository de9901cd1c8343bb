package stasis

import (
	"io"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/valyala/bytebufferpool"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/lk2023060901/stasis-go/internal/pool"
	"github.com/lk2023060901/stasis-go/pkg/metrics"
	"github.com/lk2023060901/stasis-go/pkg/util/merr"
	"github.com/lk2023060901/stasis-go/pkg/varint"
)

// StringSerializer 编码字符串：先写 UTF-16 码元个数，非空时再写 UTF-8 字节数与字节内容。
// 非法的 UTF-8 序列在写读两端都会被替换为 U+FFFD。
//
// 解码所需的临时缓冲区从容量有限的池中借用，池被借空时调用方会阻塞。
type StringSerializer struct {
	buffers pool.ObjectPool[*bytebufferpool.ByteBuffer]
	metrics bool
}

var _ Serializer[string] = (*StringSerializer)(nil)

func newStringSerializer(cfg StringPoolConfig, withMetrics bool) *StringSerializer {
	cfg = cfg.withDefaults()
	factory := pool.FactoryFunc(
		func() *bytebufferpool.ByteBuffer {
			return &bytebufferpool.ByteBuffer{B: make([]byte, 0, cfg.BufferSize)}
		},
		nil,
		func(buf *bytebufferpool.ByteBuffer) {
			// 超大的缓冲区不放回池中长期占用内存。
			if cap(buf.B) > cfg.BufferSize*maxRetainedGrowth {
				buf.B = make([]byte, 0, cfg.BufferSize)
			}
			buf.Reset()
		},
	)

	s := &StringSerializer{metrics: withMetrics}
	if cfg.Dynamic {
		s.buffers = pool.NewDynamicPool(cfg.Size, factory)
	} else {
		s.buffers = pool.NewStaticPool(cfg.Size, factory)
	}
	return s
}

const maxRetainedGrowth = 16

func (s *StringSerializer) borrow() *bytebufferpool.ByteBuffer {
	if !s.metrics {
		return s.buffers.Borrow()
	}
	start := time.Now()
	buf := s.buffers.Borrow()
	metrics.StringPoolBorrowSeconds.Observe(time.Since(start).Seconds())
	return buf
}

func (s *StringSerializer) release(buf *bytebufferpool.ByteBuffer) error {
	if !s.buffers.Release(buf) {
		return merr.WrapErrPoolReleaseRejected("string scratch buffer")
	}
	return nil
}

func (s *StringSerializer) Write(_ *Writer, out Output, v string) (err error) {
	if utf8.ValidString(v) {
		return writeUTF8(out, v)
	}

	buf := s.borrow()
	defer func() {
		err = merr.Combine(err, s.release(buf))
	}()
	tw := transform.NewWriter(buf, unicode.UTF8.NewEncoder())
	if _, err := io.WriteString(tw, v); err != nil {
		return merr.WrapErrIoFailed(err, "encode string")
	}
	if err := tw.Close(); err != nil {
		return merr.WrapErrIoFailed(err, "encode string")
	}
	return writeUTF8(out, buf.B)
}

func (s *StringSerializer) Read(_ *Reader, in Input) (v string, err error) {
	chars, err := varint.ReadUvarint32(in)
	if err != nil {
		return "", err
	}
	if chars == 0 {
		return "", nil
	}
	size, err := varint.ReadUvarint32(in)
	if err != nil {
		return "", err
	}
	if size > maxStreamLength {
		return "", merr.WrapErrStreamLengthInvalid("string bytes", uint64(size), maxStreamLength)
	}

	buf := s.borrow()
	defer func() {
		err = merr.Combine(err, s.release(buf))
	}()
	if _, err := io.CopyN(buf, in, int64(size)); err != nil {
		return "", merr.WrapErrIoFailed(err, "read string")
	}

	decoded := buf.B
	if !utf8.Valid(decoded) {
		decoded, _, err = transform.Bytes(unicode.UTF8.NewDecoder(), decoded)
		if err != nil {
			return "", merr.WrapErrIoFailed(err, "decode string")
		}
	}
	if actual := utf16Len(decoded); actual != int(chars) {
		return "", merr.WrapErrDecodedLengthMismatch(int(chars), actual)
	}
	return string(decoded), nil
}

func writeUTF8[S ~string | ~[]byte](out Output, s S) error {
	chars := utf16Len(s)
	if err := varint.WriteUvarint32(out, uint32(chars)); err != nil {
		return err
	}
	if chars == 0 {
		return nil
	}
	if err := varint.WriteUvarint32(out, uint32(len(s))); err != nil {
		return err
	}
	if _, err := io.WriteString(out, string(s)); err != nil {
		return merr.WrapErrIoFailed(err)
	}
	return nil
}

// utf16Len 返回 s 按 UTF-16 编码时的码元个数。
func utf16Len[S ~string | ~[]byte](s S) int {
	n := 0
	for _, r := range string(s) {
		n += utf16.RuneLen(r)
	}
	return n
}
