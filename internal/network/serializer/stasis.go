package serializer

import (
	"reflect"

	"github.com/lk2023060901/stasis-go/pkg/stasis"
	"github.com/lk2023060901/stasis-go/pkg/util/merr"
)

// StasisSerializer 把 stasis 注册表适配为 Serializer。
// 每次 Marshal/Unmarshal 使用独立的会话，字节流自带类型下标。
type StasisSerializer struct {
	registry *stasis.Registry
}

var _ Serializer = (*StasisSerializer)(nil)

func NewStasisSerializer(registry *stasis.Registry) *StasisSerializer {
	return &StasisSerializer{registry: registry}
}

func (s *StasisSerializer) Marshal(v any) ([]byte, error) {
	return stasis.Marshal(s.registry, v)
}

// Unmarshal 解码 data 并把结果赋给 v 指向的变量，v 必须是非 nil 指针。
// *any 可以接收任意结果；其它类型要求解码结果可赋值给 v 的元素类型。
func (s *StasisSerializer) Unmarshal(data []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return merr.WrapErrParameterInvalidMsg("unmarshal target must be a non-nil pointer, got %T", v)
	}
	decoded, err := stasis.Unmarshal(s.registry, data)
	if err != nil {
		return err
	}

	elem := rv.Elem()
	if decoded == nil {
		elem.SetZero()
		return nil
	}
	dv := reflect.ValueOf(decoded)
	if !dv.Type().AssignableTo(elem.Type()) {
		return merr.WrapErrSerializerTypeMismatch(elem.Type(), dv.Type())
	}
	elem.Set(dv)
	return nil
}
