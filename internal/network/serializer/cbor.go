package serializer

import (
	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"
)

// CBORSerializer 使用规范化编码（RFC 8949 canonical），相同的值总是得到相同的字节。
type CBORSerializer struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Serializer = (*CBORSerializer)(nil)

func NewCBORSerializer() (*CBORSerializer, error) {
	enc, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, errors.Wrap(err, "build cbor encode mode")
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, errors.Wrap(err, "build cbor decode mode")
	}
	return &CBORSerializer{enc: enc, dec: dec}, nil
}

func (c *CBORSerializer) Marshal(v any) ([]byte, error) {
	return c.enc.Marshal(v)
}

func (c *CBORSerializer) Unmarshal(data []byte, v any) error {
	return c.dec.Unmarshal(data, v)
}
