package serializer

import (
	"github.com/lk2023060901/stasis-go/pkg/stasis"
	"github.com/lk2023060901/stasis-go/pkg/util/merr"
)

// Serializer 抽象“对象 <-> 字节”的整体编解码，调用方按需注入具体实现。
type Serializer interface {
	// Marshal 将 v 编码为一段完整的字节。
	Marshal(v any) ([]byte, error)

	// Unmarshal 将 data 解码到 v，v 通常为指针。
	Unmarshal(data []byte, v any) error
}

const (
	NameJSON   = "json"
	NameCBOR   = "cbor"
	NameProto  = "proto"
	NameStasis = "stasis"
)

// ByName 按名字返回实现。stasis 实现需要注册表，其余实现忽略 registry。
func ByName(name string, registry *stasis.Registry) (Serializer, error) {
	switch name {
	case NameJSON:
		return JSONSerializer{}, nil
	case NameCBOR:
		return NewCBORSerializer()
	case NameProto:
		return ProtoSerializer{}, nil
	case NameStasis:
		if registry == nil {
			return nil, merr.WrapErrParameterInvalidMsg("stasis serializer requires a registry")
		}
		return NewStasisSerializer(registry), nil
	default:
		return nil, merr.WrapErrParameterInvalidMsg("unknown serializer %q", name)
	}
}
