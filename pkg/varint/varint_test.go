package varint

import (
	"bytes"
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/stasis-go/pkg/util/merr"
)

var boundaries = []int64{0, 63, 64, 8191, 8192, math.MaxInt32, -1, math.MinInt32}

func TestVarint32RoundTrip(t *testing.T) {
	for _, n := range boundaries {
		v := int32(n)
		var buf bytes.Buffer
		require.NoError(t, WriteVarint32(&buf, v))
		assert.Equal(t, SizeVarint32(v), buf.Len())
		got, err := ReadVarint32(&buf)
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Zero(t, buf.Len())

		u := uint32(v)
		require.NoError(t, WriteUvarint32(&buf, u))
		gotU, err := ReadUvarint32(&buf)
		require.NoError(t, err)
		assert.Equal(t, u, gotU)
	}
}

func TestVarint64RoundTrip(t *testing.T) {
	values := append([]int64{math.MaxInt64, math.MinInt64}, boundaries...)
	for _, v := range values {
		var buf bytes.Buffer
		require.NoError(t, WriteVarint64(&buf, v))
		assert.Equal(t, SizeVarint64(v), buf.Len())
		got, err := ReadVarint64(&buf)
		require.NoError(t, err)
		assert.Equal(t, v, got)

		u := uint64(v)
		require.NoError(t, WriteUvarint64(&buf, u))
		gotU, err := ReadUvarint64(&buf)
		require.NoError(t, err)
		assert.Equal(t, u, gotU)
	}
}

func TestZigZag(t *testing.T) {
	for i, v := range []int32{0, -1, 1, -2, 2} {
		assert.Equal(t, uint32(i), ZigZag32(v))
		assert.Equal(t, v, UnZigZag32(uint32(i)))
	}
	for i, v := range []int64{0, -1, 1, -2, 2} {
		assert.Equal(t, uint64(i), ZigZag64(v))
		assert.Equal(t, v, UnZigZag64(uint64(i)))
	}
}

func TestEncodedSizes(t *testing.T) {
	cases := []struct {
		value uint32
		size  int
	}{
		{0, 1},
		{1 << 6, 1},
		{1<<7 - 1, 1},
		{1 << 7, 2},
		{1<<14 - 1, 2},
		{1 << 14, 3},
		{1 << 21, 4},
		{1 << 28, 5},
		{math.MaxUint32, 5},
	}
	for _, c := range cases {
		assert.Equal(t, c.size, len(AppendUvarint32(nil, c.value)), "value %d", c.value)
		assert.Equal(t, c.size, SizeUvarint32(c.value))
	}
	assert.Equal(t, MaxLen64, len(AppendUvarint64(nil, math.MaxUint64)))
	assert.Equal(t, []byte{0x01}, AppendVarint32(nil, -1))
	assert.Equal(t, []byte{0x80, 0x01}, AppendVarint64(nil, 64))
}

func TestMalformed(t *testing.T) {
	tooLong32 := bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01})
	_, err := ReadUvarint32(tooLong32)
	assert.True(t, errors.Is(err, merr.ErrMalformedVarint))

	tooLong64 := bytes.NewReader(bytes.Repeat([]byte{0xff}, 11))
	_, err = ReadVarint64(tooLong64)
	assert.True(t, errors.Is(err, merr.ErrMalformedVarint))

	// 64 位允许的长度对 32 位来说同样是非法的。
	_, err = ReadUvarint32(bytes.NewReader(AppendUvarint64(nil, math.MaxUint64)))
	assert.True(t, errors.Is(err, merr.ErrMalformedVarint))
}

func TestTruncated(t *testing.T) {
	_, err := ReadUvarint64(bytes.NewReader([]byte{0x80}))
	assert.True(t, errors.Is(err, merr.ErrIoUnexpectEOF))

	_, err = ReadVarint32(bytes.NewReader(nil))
	assert.True(t, errors.Is(err, merr.ErrIoUnexpectEOF))
}
