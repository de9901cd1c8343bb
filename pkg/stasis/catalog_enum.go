package stasis

import (
	"reflect"

	"github.com/lk2023060901/stasis-go/pkg/util/merr"
	"github.com/lk2023060901/stasis-go/pkg/varint"
)

type enumSerializer[T comparable] struct {
	constants []T
	ordinals  map[T]uint32
}

// EnumOf 返回枚举类型的序列化器，值按其在 constants 中的位置（序号）编码。
// 读写两端必须以相同顺序声明常量。
func EnumOf[T comparable](constants ...T) Serializer[T] {
	s := &enumSerializer[T]{
		constants: constants,
		ordinals:  make(map[T]uint32, len(constants)),
	}
	for i, c := range constants {
		if _, ok := s.ordinals[c]; !ok {
			s.ordinals[c] = uint32(i)
		}
	}
	return s
}

func (s *enumSerializer[T]) Write(_ *Writer, out Output, v T) error {
	ordinal, ok := s.ordinals[v]
	if !ok {
		return merr.WrapErrParameterInvalidMsg("%v is not a declared constant of %s", v, reflect.TypeFor[T]())
	}
	return varint.WriteUvarint32(out, ordinal)
}

func (s *enumSerializer[T]) Read(_ *Reader, in Input) (T, error) {
	var zero T
	ordinal, err := varint.ReadUvarint32(in)
	if err != nil {
		return zero, err
	}
	if int(ordinal) >= len(s.constants) {
		return zero, merr.WrapErrEnumOrdinalOutOfRange(reflect.TypeFor[T]().String(), ordinal, len(s.constants))
	}
	return s.constants[ordinal], nil
}
