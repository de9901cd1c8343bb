package codec

import (
	"bytes"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/lk2023060901/stasis-go/internal/network/compressor"
	"github.com/lk2023060901/stasis-go/internal/network/framer"
	"github.com/lk2023060901/stasis-go/internal/network/serializer"
	"github.com/lk2023060901/stasis-go/pkg/stasis"
	"github.com/lk2023060901/stasis-go/pkg/util/merr"
)

type CodecSuite struct {
	suite.Suite
	registry *stasis.Registry
	zstd     *compressor.ZstdCompressor
}

func (s *CodecSuite) SetupTest() {
	s.registry = stasis.RegisterDefaults(stasis.New())
	var err error
	s.zstd, err = compressor.NewZstdCompressor()
	s.Require().NoError(err)
}

func (s *CodecSuite) TearDownTest() {
	s.NoError(s.zstd.Close())
}

func (s *CodecSuite) newCodec(compress bool, minSize int) Codec {
	c, err := New(Options{
		Framer:            framer.NewLengthPrefixedFramer(0),
		Serializer:        serializer.NewStasisSerializer(s.registry),
		Compressor:        s.zstd,
		EnableCompression: compress,
		MinCompressSize:   minSize,
	})
	s.Require().NoError(err)
	return c
}

func (s *CodecSuite) TestRoundTrip() {
	c := s.newCodec(false, 0)
	var buf bytes.Buffer
	s.Require().NoError(c.Encode(&buf, []any{"a", int32(1)}))
	s.Require().NoError(c.Encode(&buf, "b"))

	var first any
	s.Require().NoError(c.Decode(&buf, &first))
	s.Equal([]any{"a", int32(1)}, first)
	var second string
	s.Require().NoError(c.Decode(&buf, &second))
	s.Equal("b", second)
	s.Zero(buf.Len())
}

func (s *CodecSuite) TestCompression() {
	plain := s.newCodec(false, 0)
	packed := s.newCodec(true, 64)
	v := strings.Repeat("payload ", 512)

	var a, b bytes.Buffer
	s.Require().NoError(plain.Encode(&a, v))
	s.Require().NoError(packed.Encode(&b, v))
	s.Less(b.Len(), a.Len())
	// 帧头之后的第一个字节为标志位。
	s.Equal(byte(0), a.Bytes()[4])
	s.Equal(flagCompressed, b.Bytes()[4])

	var got string
	s.Require().NoError(packed.Decode(&b, &got))
	s.Equal(v, got)

	// 小于阈值的消息不压缩。
	b.Reset()
	s.Require().NoError(packed.Encode(&b, "short"))
	s.Equal(byte(0), b.Bytes()[4])
	s.Require().NoError(packed.Decode(&b, &got))
	s.Equal("short", got)
}

func (s *CodecSuite) TestOverPipe() {
	c := s.newCodec(true, 0)
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	values := []any{"x", nil, []string{"y", "z"}}
	errCh := make(chan error, 1)
	go func() {
		for _, v := range values {
			if err := c.Encode(client, v); err != nil {
				errCh <- err
				return
			}
		}
		errCh <- nil
	}()

	for _, expected := range values {
		var got any
		s.Require().NoError(c.Decode(server, &got))
		s.Equal(expected, got)
	}
	s.NoError(<-errCh)
}

func (s *CodecSuite) TestInvalidFrames() {
	c := s.newCodec(false, 0)
	f := framer.NewLengthPrefixedFramer(0)

	var buf bytes.Buffer
	s.Require().NoError(f.WriteFrame(&buf, nil))
	_, err := c.DecodeRaw(&buf)
	s.ErrorIs(err, merr.ErrStreamLengthInvalid)

	s.Require().NoError(f.WriteFrame(&buf, []byte{0x80, 0x00}))
	_, err = c.DecodeRaw(&buf)
	s.ErrorIs(err, merr.ErrParameterInvalid)
}

func (s *CodecSuite) TestMissingDependencies() {
	_, err := New(Options{Serializer: serializer.JSONSerializer{}})
	s.ErrorIs(err, merr.ErrParameterInvalid)
	_, err = New(Options{Framer: framer.NewLengthPrefixedFramer(0)})
	s.ErrorIs(err, merr.ErrParameterInvalid)
}

func TestCodec(t *testing.T) {
	suite.Run(t, new(CodecSuite))
}
