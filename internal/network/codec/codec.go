package codec

import (
	"io"

	"github.com/lk2023060901/stasis-go/internal/network/compressor"
	"github.com/lk2023060901/stasis-go/internal/network/framer"
	"github.com/lk2023060901/stasis-go/internal/network/serializer"
	"github.com/lk2023060901/stasis-go/pkg/util/merr"
)

// Codec 把消息编码为帧写入流，或从流中读出一帧并解码。
//
// 写出：msg --> serializer --> [compress?] --> flags || body --> framer.WriteFrame
//
// 读入：framer.ReadFrame --> flags || body --> [decompress?] --> serializer --> msg
type Codec interface {
	Encode(w io.Writer, msg any) error

	// Decode 读取一帧并解码到 msg，msg 通常为指针。
	Decode(r io.Reader, msg any) error

	// DecodeRaw 读取一帧，返回解压后的字节，不做反序列化。
	DecodeRaw(r io.Reader) ([]byte, error)
}

// Options 为 Codec 的依赖。
type Options struct {
	Framer     framer.Framer
	Serializer serializer.Serializer
	// Compressor 为 nil 时使用 NopCompressor。
	Compressor compressor.Compressor

	// EnableCompression 为 true 时压缩不小于 MinCompressSize 的消息体。
	EnableCompression bool
	MinCompressSize   int
}

const flagCompressed byte = 1 << 0

type codec struct {
	framer     framer.Framer
	serializer serializer.Serializer
	compressor compressor.Compressor

	compress    bool
	minCompress int
}

var _ Codec = (*codec)(nil)

func New(opts Options) (Codec, error) {
	if opts.Framer == nil {
		return nil, merr.WrapErrParameterInvalidMsg("codec: framer is nil")
	}
	if opts.Serializer == nil {
		return nil, merr.WrapErrParameterInvalidMsg("codec: serializer is nil")
	}
	c := &codec{
		framer:      opts.Framer,
		serializer:  opts.Serializer,
		compressor:  opts.Compressor,
		compress:    opts.EnableCompression,
		minCompress: opts.MinCompressSize,
	}
	if c.compressor == nil {
		c.compressor = compressor.NopCompressor{}
	}
	return c, nil
}

func (c *codec) Encode(w io.Writer, msg any) error {
	body, err := c.serializer.Marshal(msg)
	if err != nil {
		return err
	}

	var flags byte
	if c.compress && len(body) > 0 && len(body) >= c.minCompress {
		packed, err := c.compressor.Compress(nil, body)
		if err != nil {
			return err
		}
		body = packed
		flags |= flagCompressed
	}

	frame := make([]byte, 0, 1+len(body))
	frame = append(frame, flags)
	frame = append(frame, body...)
	return c.framer.WriteFrame(w, frame)
}

func (c *codec) DecodeRaw(r io.Reader) ([]byte, error) {
	frame, err := c.framer.ReadFrame(r)
	if err != nil {
		return nil, err
	}
	if len(frame) == 0 {
		return nil, merr.WrapErrStreamLengthInvalid("frame flags", 0, 1)
	}
	flags, body := frame[0], frame[1:]
	if flags&^flagCompressed != 0 {
		return nil, merr.WrapErrParameterInvalidMsg("codec: unknown frame flags %#x", flags)
	}
	if flags&flagCompressed != 0 {
		return c.compressor.Decompress(nil, body)
	}
	return body, nil
}

func (c *codec) Decode(r io.Reader, msg any) error {
	body, err := c.DecodeRaw(r)
	if err != nil {
		return err
	}
	return c.serializer.Unmarshal(body, msg)
}
