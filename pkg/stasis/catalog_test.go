package stasis

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/lk2023060901/stasis-go/pkg/util/merr"
	"github.com/lk2023060901/stasis-go/pkg/varint"
)

func roundTrip[T any](t *testing.T, r *Registry, s Serializer[T], v T) T {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, s.Write(r.NewWriter(), &buf, v))
	got, err := s.Read(r.NewReader(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 0, buf.Len(), "serializer must consume exactly what it wrote")
	return got
}

type CatalogSuite struct {
	suite.Suite
	registry *Registry
}

func (s *CatalogSuite) SetupTest() {
	s.registry = RegisterDefaults(New())
}

func (s *CatalogSuite) TestBool() {
	t := s.T()
	s.True(roundTrip(t, s.registry, BoolSerializer(), true))
	s.False(roundTrip(t, s.registry, BoolSerializer(), false))
}

func (s *CatalogSuite) TestFixedIntegers() {
	t := s.T()
	for _, v := range []uint16{0, 'a', math.MaxUint16} {
		s.Equal(v, roundTrip(t, s.registry, CharSerializer(), v))
	}
	for _, v := range []int8{0, -1, math.MinInt8, math.MaxInt8} {
		s.Equal(v, roundTrip(t, s.registry, Int8Serializer(), v))
	}
	for _, v := range []uint8{0, 1, math.MaxUint8} {
		s.Equal(v, roundTrip(t, s.registry, Uint8Serializer(), v))
	}
	for _, v := range []int16{0, -1, math.MinInt16, math.MaxInt16} {
		s.Equal(v, roundTrip(t, s.registry, Int16Serializer(), v))
	}
	for _, v := range []int32{0, -1, math.MinInt32, math.MaxInt32} {
		s.Equal(v, roundTrip(t, s.registry, Int32Serializer(), v))
	}
	for _, v := range []int64{0, -1, math.MinInt64, math.MaxInt64} {
		s.Equal(v, roundTrip(t, s.registry, Int64Serializer(), v))
	}
	for _, v := range []int{0, -1, math.MinInt64, math.MaxInt64} {
		s.Equal(v, roundTrip(t, s.registry, IntSerializer(), v))
	}
	for _, v := range []uint64{0, 1, math.MaxUint64} {
		s.Equal(v, roundTrip(t, s.registry, Uint64Serializer(), v))
	}
	for _, v := range []uint{0, 1, math.MaxUint64} {
		s.Equal(v, roundTrip(t, s.registry, UintSerializer(), v))
	}
}

func (s *CatalogSuite) TestFixedIntegerLayout() {
	var buf bytes.Buffer
	w := s.registry.NewWriter()
	s.Require().NoError(Int32Serializer().Write(w, &buf, 0x01020304))
	s.Require().NoError(Int16Serializer().Write(w, &buf, -2))
	s.Require().NoError(CharSerializer().Write(w, &buf, 'a'))
	s.Require().NoError(IntSerializer().Write(w, &buf, 1))
	s.Equal([]byte{
		0x01, 0x02, 0x03, 0x04,
		0xff, 0xfe,
		0x00, 0x61,
		0, 0, 0, 0, 0, 0, 0, 1,
	}, buf.Bytes())
}

func (s *CatalogSuite) TestFloatsKeepBits() {
	t := s.T()
	nan32 := math.Float32frombits(0x7fc00001)
	got32 := roundTrip(t, s.registry, Float32Serializer(), nan32)
	s.Equal(uint32(0x7fc00001), math.Float32bits(got32))

	negZero := math.Copysign(0, -1)
	got64 := roundTrip(t, s.registry, Float64Serializer(), negZero)
	s.Equal(math.Float64bits(negZero), math.Float64bits(got64))

	nan64 := math.Float64frombits(0x7ff8000000000abc)
	got64 = roundTrip(t, s.registry, Float64Serializer(), nan64)
	s.Equal(uint64(0x7ff8000000000abc), math.Float64bits(got64))

	for _, v := range []float64{0, 1.5, -1.5, math.MaxFloat64, math.SmallestNonzeroFloat64, math.Inf(1), math.Inf(-1)} {
		s.Equal(v, roundTrip(t, s.registry, Float64Serializer(), v))
	}
	for _, v := range []float32{0, 1.5, math.MaxFloat32, float32(math.Inf(-1))} {
		s.Equal(v, roundTrip(t, s.registry, Float32Serializer(), v))
	}
}

func (s *CatalogSuite) TestVarints() {
	t := s.T()
	for _, v := range []int32{0, 63, 64, 8191, 8192, math.MaxInt32, -1, math.MinInt32} {
		s.Equal(v, roundTrip(t, s.registry, VarintOf[int32](), v))
	}
	for _, v := range []int64{0, 63, 64, 8191, 8192, math.MaxInt32, -1, math.MinInt32, math.MinInt64, math.MaxInt64} {
		s.Equal(v, roundTrip(t, s.registry, VarintOf[int64](), v))
	}
	for _, v := range []int{0, -1, math.MinInt64} {
		s.Equal(v, roundTrip(t, s.registry, VarintOf[int](), v))
	}
	for _, v := range []uint32{0, 63, 64, 8191, 8192, math.MaxUint32} {
		s.Equal(v, roundTrip(t, s.registry, UvarintOf[uint32](), v))
	}
	for _, v := range []uint64{0, 127, 128, math.MaxUint64} {
		s.Equal(v, roundTrip(t, s.registry, UvarintOf[uint64](), v))
	}

	// 32 位类型使用 32 位编码：-1 只占一个字节。
	var buf bytes.Buffer
	s.Require().NoError(VarintOf[int32]().Write(nil, &buf, -1))
	s.Equal([]byte{0x01}, buf.Bytes())
	buf.Reset()
	s.Require().NoError(UvarintOf[uint32]().Write(nil, &buf, math.MaxUint32))
	s.Equal(varint.MaxLen32, buf.Len())
}

func (s *CatalogSuite) TestString() {
	t := s.T()
	str := s.registry.Strings()
	for _, v := range []string{"", "a", "hello, world", "héllo", "日本語", "😀 emoji", strings.Repeat("x", 70000)} {
		s.Equal(v, roundTrip(t, s.registry, Serializer[string](str), v))
	}
}

func (s *CatalogSuite) TestStringLayout() {
	str := s.registry.Strings()
	var buf bytes.Buffer
	s.Require().NoError(str.Write(nil, &buf, ""))
	s.Equal([]byte{0x00}, buf.Bytes(), "empty string is a single byte")

	buf.Reset()
	// "é😀"：2 个字符为 3 个 UTF-16 码元、6 个 UTF-8 字节。
	s.Require().NoError(str.Write(nil, &buf, "é😀"))
	s.Equal([]byte{0x03, 0x06, 0xc3, 0xa9, 0xf0, 0x9f, 0x98, 0x80}, buf.Bytes())
}

func (s *CatalogSuite) TestStringReplacesMalformed() {
	str := s.registry.Strings()
	var buf bytes.Buffer
	s.Require().NoError(str.Write(nil, &buf, "a\xffb"))
	got, err := str.Read(nil, &buf)
	s.Require().NoError(err)
	s.Equal("a\uFFFDb", got)

	// 读端同样替换非法字节：声明 3 个码元、3 个字节。
	buf.Reset()
	buf.Write([]byte{0x03, 0x03, 'a', 0xff, 'b'})
	got, err = str.Read(nil, &buf)
	s.Require().NoError(err)
	s.Equal("a\uFFFDb", got)
}

func (s *CatalogSuite) TestStringLengthMismatch() {
	str := s.registry.Strings()
	var buf bytes.Buffer
	buf.Write([]byte{0x05, 0x02, 'a', 'b'})
	_, err := str.Read(nil, &buf)
	s.ErrorIs(err, merr.ErrDecodedLengthMismatch)

	buf.Reset()
	buf.Write([]byte{0x02, 0x04, 'a', 'b'})
	_, err = str.Read(nil, &buf)
	s.ErrorIs(err, merr.ErrIoUnexpectEOF)

	// 出错后缓冲区仍被归还。
	for i := 0; i < defaultStringPoolSize+1; i++ {
		s.Equal("ok", roundTrip(s.T(), s.registry, Serializer[string](str), "ok"))
		buf.Reset()
		buf.Write([]byte{0x01, 0x02, 'a', 'b'})
		_, err = str.Read(nil, &buf)
		s.ErrorIs(err, merr.ErrDecodedLengthMismatch)
	}
}

func (s *CatalogSuite) TestArrays() {
	t := s.T()
	s.Equal([]byte{1, 2, 255}, roundTrip(t, s.registry, ByteArraySerializer(), []byte{1, 2, 255}))
	s.Equal([]byte{}, roundTrip(t, s.registry, ByteArraySerializer(), []byte{}))
	big := bytes.Repeat([]byte{7}, 3*preallocLimit+5)
	s.Equal(big, roundTrip(t, s.registry, ByteArraySerializer(), big))

	s.Equal([]uint16{'a', 'b'}, roundTrip(t, s.registry, ArrayOf(CharSerializer()), []uint16{'a', 'b'}))
	s.Equal([]int16{1, -2}, roundTrip(t, s.registry, ArrayOf(Int16Serializer()), []int16{1, -2}))
	s.Equal([]int32{3, 4}, roundTrip(t, s.registry, ArrayOf(VarintOf[int32]()), []int32{3, 4}))
	s.Equal([]int64{math.MinInt64, 0}, roundTrip(t, s.registry, ArrayOf(VarintOf[int64]()), []int64{math.MinInt64, 0}))
	s.Equal([]float32{1.5}, roundTrip(t, s.registry, ArrayOf(Float32Serializer()), []float32{1.5}))
	s.Equal([]float64{}, roundTrip(t, s.registry, ArrayOf(Float64Serializer()), []float64{}))
	s.Equal([]string{"a", "", "b"}, roundTrip(t, s.registry, ArrayOf[string](s.registry.Strings()), []string{"a", "", "b"}))

	var buf bytes.Buffer
	s.Require().NoError(ArrayOf(VarintOf[int32]()).Write(nil, &buf, []int32{3, 4}))
	s.Equal([]byte{0x02, 0x06, 0x08}, buf.Bytes())
}

func (s *CatalogSuite) TestTruncatedArray() {
	var buf bytes.Buffer
	buf.Write([]byte{0x05, 0x01})
	_, err := ByteArraySerializer().Read(nil, &buf)
	s.ErrorIs(err, merr.ErrIoUnexpectEOF)
}

type color int

const (
	red color = iota
	green
	blue
)

func (s *CatalogSuite) TestEnum() {
	t := s.T()
	colors := EnumOf(red, green, blue)
	s.Equal(blue, roundTrip(t, s.registry, colors, blue))
	s.Equal(red, roundTrip(t, s.registry, colors, red))

	var buf bytes.Buffer
	s.Require().NoError(colors.Write(nil, &buf, green))
	s.Equal([]byte{0x01}, buf.Bytes())

	s.ErrorIs(colors.Write(nil, &buf, color(9)), merr.ErrParameterInvalid)

	buf.Reset()
	buf.WriteByte(0x03)
	_, err := colors.Read(nil, &buf)
	s.ErrorIs(err, merr.ErrEnumOrdinalOutOfRange)
}

func TestCatalog(t *testing.T) {
	suite.Run(t, new(CatalogSuite))
}
