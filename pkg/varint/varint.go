package varint

import (
	"io"

	"github.com/lk2023060901/stasis-go/pkg/util/merr"
)

const (
	// MaxLen32 为 32 位变长整数的最大字节数。
	MaxLen32 = 5
	// MaxLen64 为 64 位变长整数的最大字节数。
	MaxLen64 = 10

	continuation = 0x80
	payload      = 0x7f
)

// ZigZag32 把有符号整数映射为无符号整数，使绝对值小的数编码更短。
func ZigZag32(n int32) uint32 { return uint32(n<<1) ^ uint32(n>>31) }

// UnZigZag32 是 ZigZag32 的逆变换。
func UnZigZag32(u uint32) int32 { return int32(u>>1) ^ -int32(u&1) }

func ZigZag64(n int64) uint64 { return uint64(n<<1) ^ uint64(n>>63) }

func UnZigZag64(u uint64) int64 { return int64(u>>1) ^ -int64(u&1) }

// WriteUvarint32 以无符号变长格式写出 v。
func WriteUvarint32(w io.ByteWriter, v uint32) error {
	return WriteUvarint64(w, uint64(v))
}

// WriteVarint32 以 zig-zag 变长格式写出 v。
func WriteVarint32(w io.ByteWriter, v int32) error {
	return WriteUvarint64(w, uint64(ZigZag32(v)))
}

func WriteUvarint64(w io.ByteWriter, v uint64) error {
	for v >= continuation {
		if err := w.WriteByte(byte(v) | continuation); err != nil {
			return merr.WrapErrIoFailed(err, "write varint")
		}
		v >>= 7
	}
	if err := w.WriteByte(byte(v)); err != nil {
		return merr.WrapErrIoFailed(err, "write varint")
	}
	return nil
}

func WriteVarint64(w io.ByteWriter, v int64) error {
	return WriteUvarint64(w, ZigZag64(v))
}

// ReadUvarint32 读取一个 32 位无符号变长整数。
// 超过 MaxLen32 个字节仍未结束时返回 ErrMalformedVarint；
// 超出 32 位的高位被截断。
func ReadUvarint32(r io.ByteReader) (uint32, error) {
	v, err := readUvarint(r, MaxLen32, 32)
	return uint32(v), err
}

func ReadVarint32(r io.ByteReader) (int32, error) {
	u, err := ReadUvarint32(r)
	if err != nil {
		return 0, err
	}
	return UnZigZag32(u), nil
}

func ReadUvarint64(r io.ByteReader) (uint64, error) {
	return readUvarint(r, MaxLen64, 64)
}

func ReadVarint64(r io.ByteReader) (int64, error) {
	u, err := ReadUvarint64(r)
	if err != nil {
		return 0, err
	}
	return UnZigZag64(u), nil
}

func readUvarint(r io.ByteReader, maxLen int, bits int) (uint64, error) {
	var (
		v     uint64
		shift uint
	)
	for i := 0; i < maxLen; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, merr.WrapErrIoFailed(err, "read varint")
		}
		v |= uint64(b&payload) << shift
		if b&continuation == 0 {
			return v, nil
		}
		shift += 7
	}
	return 0, merr.WrapErrMalformedVarint(bits)
}

// AppendUvarint32 把 v 追加到 b 末尾。
func AppendUvarint32(b []byte, v uint32) []byte { return AppendUvarint64(b, uint64(v)) }

func AppendVarint32(b []byte, v int32) []byte { return AppendUvarint64(b, uint64(ZigZag32(v))) }

func AppendUvarint64(b []byte, v uint64) []byte {
	for v >= continuation {
		b = append(b, byte(v)|continuation)
		v >>= 7
	}
	return append(b, byte(v))
}

func AppendVarint64(b []byte, v int64) []byte { return AppendUvarint64(b, ZigZag64(v)) }

// SizeUvarint64 返回 v 编码后的字节数。
func SizeUvarint64(v uint64) int {
	n := 1
	for v >= continuation {
		v >>= 7
		n++
	}
	return n
}

func SizeUvarint32(v uint32) int { return SizeUvarint64(uint64(v)) }

func SizeVarint32(v int32) int { return SizeUvarint64(uint64(ZigZag32(v))) }

func SizeVarint64(v int64) int { return SizeUvarint64(ZigZag64(v)) }
