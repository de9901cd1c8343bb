package compressor

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/stasis-go/pkg/util/merr"
)

func TestNop(t *testing.T) {
	c, err := ByName("")
	require.NoError(t, err)
	src := []byte("plain")
	out, err := c.Compress(nil, src)
	require.NoError(t, err)
	assert.Equal(t, src, out)
	out, err = c.Decompress(nil, out)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestZstdRoundTrip(t *testing.T) {
	c, err := NewZstdCompressorWithConcurrency(2)
	require.NoError(t, err)
	defer c.Close()

	src := bytes.Repeat([]byte("stasis "), 1000)
	packed, err := c.Compress(make([]byte, 0, 64), src)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(src))

	plain, err := c.Decompress(nil, packed)
	require.NoError(t, err)
	assert.Equal(t, src, plain)

	// 空输入也产生一个完整的帧。
	packed, err = c.Compress(nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, packed)
	plain, err = c.Decompress(nil, packed)
	require.NoError(t, err)
	assert.Empty(t, plain)
}

func TestZstdCorruptInput(t *testing.T) {
	c, err := ByName(NameZstd)
	require.NoError(t, err)
	_, err = c.Decompress(nil, []byte("not a zstd frame at all"))
	assert.ErrorIs(t, err, merr.ErrIoFailed)
}

func TestZstdClosed(t *testing.T) {
	c, err := NewZstdCompressor()
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = c.Compress(nil, []byte("x"))
	assert.ErrorIs(t, err, zstd.ErrEncoderClosed)
	_, err = c.Decompress(nil, []byte("x"))
	assert.ErrorIs(t, err, zstd.ErrDecoderClosed)
}

func TestUnknown(t *testing.T) {
	_, err := ByName("lz4")
	assert.ErrorIs(t, err, merr.ErrParameterInvalid)
}
