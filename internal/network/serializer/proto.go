package serializer

import (
	"reflect"

	"google.golang.org/protobuf/proto"

	"github.com/lk2023060901/stasis-go/pkg/util/merr"
)

// ProtoSerializer 使用 Protobuf 二进制格式，v 必须实现 proto.Message。
// 编码时开启 Deterministic，相同的消息得到相同的字节。
type ProtoSerializer struct{}

var _ Serializer = ProtoSerializer{}

func (ProtoSerializer) Marshal(v any) ([]byte, error) {
	msg, ok := v.(proto.Message)
	if !ok {
		return nil, merr.WrapErrSerializerTypeMismatch("proto.Message", reflect.TypeOf(v))
	}
	return proto.MarshalOptions{Deterministic: true}.Marshal(msg)
}

func (ProtoSerializer) Unmarshal(data []byte, v any) error {
	msg, ok := v.(proto.Message)
	if !ok {
		return merr.WrapErrSerializerTypeMismatch("proto.Message", reflect.TypeOf(v))
	}
	return proto.Unmarshal(data, msg)
}
