package stasis

import (
	"math"

	"github.com/lk2023060901/stasis-go/pkg/util/merr"
	"github.com/lk2023060901/stasis-go/pkg/varint"
)

type headerTag uint32

const (
	tagObject    headerTag = 0
	tagReference headerTag = 1

	headerTagMask = 1

	// maxHeaderData 为头部数据段可表示的最大值。
	maxHeaderData = math.MaxUint32 >> 1
)

func (t headerTag) String() string {
	if t == tagReference {
		return "REFERENCE"
	}
	return "OBJECT"
}

// header 是每个值前的变长头部：(data << 1) | tag。
type header uint32

func makeHeader(data uint32, tag headerTag) (header, error) {
	if data > maxHeaderData {
		return 0, merr.WrapErrParameterInvalidMsg("header data %d exceeds %d", data, maxHeaderData)
	}
	return header(data<<1 | uint32(tag)), nil
}

func (h header) tag() headerTag { return headerTag(h & headerTagMask) }

func (h header) data() uint32 { return uint32(h) >> 1 }

func writeHeader(out Output, data uint32, tag headerTag) error {
	h, err := makeHeader(data, tag)
	if err != nil {
		return err
	}
	return varint.WriteUvarint32(out, uint32(h))
}

func readHeader(in Input) (header, error) {
	v, err := varint.ReadUvarint32(in)
	if err != nil {
		return 0, err
	}
	return header(v), nil
}
