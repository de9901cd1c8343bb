package stasis

// RegisterNull 注册 nil 的序列化器，使 WriteTyped(nil) 可用。
func RegisterNull(r *Registry) *Registry {
	r.register(nullType, nullHandler{})
	return r
}

// RegisterPrimitives 为基础类型注册定长序列化器。
// uint16 作为 UTF-16 码元（char），uint8 即 byte。
func RegisterPrimitives(r *Registry) *Registry {
	Register(r, BoolSerializer())
	Register(r, CharSerializer())
	Register(r, Int8Serializer())
	Register(r, Uint8Serializer())
	Register(r, Int16Serializer())
	Register(r, Int32Serializer())
	Register(r, Int64Serializer())
	Register(r, IntSerializer())
	Register(r, Uint32Serializer())
	Register(r, Uint64Serializer())
	Register(r, UintSerializer())
	Register(r, Float32Serializer())
	Register(r, Float64Serializer())
	return r
}

// RegisterVarints 为整数类型注册变长序列化器。
// 已通过 RegisterPrimitives 注册的类型会被替换，下标保持不变。
func RegisterVarints(r *Registry) *Registry {
	Register(r, VarintOf[int32]())
	Register(r, VarintOf[int64]())
	Register(r, VarintOf[int]())
	Register(r, UvarintOf[uint32]())
	Register(r, UvarintOf[uint64]())
	Register(r, UvarintOf[uint]())
	return r
}

// RegisterString 注册字符串序列化器，缓冲池按注册表的配置创建。
func RegisterString(r *Registry) *Registry {
	Register[string](r, r.strings)
	return r
}

// RegisterPrimitiveArrays 为基础类型切片注册序列化器。
// []int32 与 []int64 的元素使用 zig-zag 变长编码。
func RegisterPrimitiveArrays(r *Registry) *Registry {
	Register(r, ArrayOf(CharSerializer()))
	Register(r, ByteArraySerializer())
	Register(r, ArrayOf(Int16Serializer()))
	Register(r, ArrayOf(VarintOf[int32]()))
	Register(r, ArrayOf(VarintOf[int64]()))
	Register(r, ArrayOf(Float32Serializer()))
	Register(r, ArrayOf(Float64Serializer()))
	return r
}

func RegisterStringArray(r *Registry) *Registry {
	Register(r, ArrayOf[string](r.strings))
	return r
}

func RegisterObjectArray(r *Registry) *Registry {
	Register(r, ObjectArraySerializer())
	return r
}

// RegisterDefaults 按固定顺序注册全部内置序列化器。
// 写端与读端的注册顺序必须一致，下标才能对应。
func RegisterDefaults(r *Registry) *Registry {
	RegisterNull(r)
	RegisterPrimitives(r)
	RegisterString(r)
	RegisterPrimitiveArrays(r)
	RegisterStringArray(r)
	RegisterObjectArray(r)
	return r
}

// Strings 返回注册表持有的字符串序列化器。
func (r *Registry) Strings() *StringSerializer {
	return r.strings
}
