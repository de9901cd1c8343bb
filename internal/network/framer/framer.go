package framer

import (
	"encoding/binary"
	"io"

	"github.com/valyala/bytebufferpool"

	"github.com/lk2023060901/stasis-go/pkg/util/merr"
)

// Framer 在字节流上划分消息边界。
type Framer interface {
	// WriteFrame 把 payload 作为一帧写入 w。
	WriteFrame(w io.Writer, payload []byte) error

	// ReadFrame 从 r 读取一帧，返回的切片归调用方所有。
	ReadFrame(r io.Reader) ([]byte, error)
}

const (
	frameHeaderSize            = 4
	defaultMaxFrameSize uint32 = 16 * 1024 * 1024 // 16MB
)

// LengthPrefixedFramer 以 4 字节大端长度作为帧头，适用于 TCP 等流式连接。
type LengthPrefixedFramer struct {
	// MaxFrameSize 为单帧 payload 的上限，为 0 时取 16MB。
	MaxFrameSize uint32
}

var _ Framer = (*LengthPrefixedFramer)(nil)

func NewLengthPrefixedFramer(maxFrameSize uint32) *LengthPrefixedFramer {
	if maxFrameSize == 0 {
		maxFrameSize = defaultMaxFrameSize
	}
	return &LengthPrefixedFramer{MaxFrameSize: maxFrameSize}
}

func (f *LengthPrefixedFramer) WriteFrame(w io.Writer, payload []byte) error {
	if uint64(len(payload)) > uint64(f.maxSize()) {
		return merr.WrapErrStreamLengthInvalid("frame", uint64(len(payload)), uint64(f.maxSize()))
	}

	// 帧头与 payload 一次写出。
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	buf.B = binary.BigEndian.AppendUint32(buf.B[:0], uint32(len(payload)))
	buf.B = append(buf.B, payload...)
	if _, err := w.Write(buf.B); err != nil {
		return merr.WrapErrIoFailed(err, "write frame")
	}
	return nil
}

func (f *LengthPrefixedFramer) ReadFrame(r io.Reader) ([]byte, error) {
	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, merr.WrapErrIoFailed(err, "read frame header")
	}
	length := binary.BigEndian.Uint32(header[:])
	if length > f.maxSize() {
		return nil, merr.WrapErrStreamLengthInvalid("frame", uint64(length), uint64(f.maxSize()))
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, merr.WrapErrIoFailed(err, "read frame body")
	}
	return payload, nil
}

func (f *LengthPrefixedFramer) maxSize() uint32 {
	if f == nil || f.MaxFrameSize == 0 {
		return defaultMaxFrameSize
	}
	return f.MaxFrameSize
}
