package log

import (
	"reflect"

	"go.uber.org/zap"
)

const (
	FieldNameModule    = "module"
	FieldNameComponent = "component"
	FieldNameType      = "type"
	FieldNameIndex     = "index"
)

// FieldModule 返回一个包含模块名的 zap 字段。
func FieldModule(module string) zap.Field {
	return zap.String(FieldNameModule, module)
}

// FieldComponent 返回一个包含组件名的 zap 字段。
func FieldComponent(component string) zap.Field {
	return zap.String(FieldNameComponent, component)
}

// FieldType 返回一个包含类型名的 zap 字段，nil 类型输出为 "<nil>"。
func FieldType(t reflect.Type) zap.Field {
	if t == nil {
		return zap.String(FieldNameType, "<nil>")
	}
	return zap.Stringer(FieldNameType, t)
}

// FieldIndex 返回一个包含序列化器下标的 zap 字段。
func FieldIndex(index uint32) zap.Field {
	return zap.Uint32(FieldNameIndex, index)
}
