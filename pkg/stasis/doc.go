// Package stasis 实现紧凑的二进制对象图编解码。
//
// 每个写出的值以一个变长头部开始，头部的最低位区分“新对象”与“回引”：
// 新对象携带序列化器在注册表中的下标（显式指定序列化器时为 0），
// 回引携带此前已写出对象的引用下标。写端与读端按相同顺序登记对象，
// 因此引用下标无需出现在新对象的编码中。
//
// 典型用法：
//
//	reg := stasis.New()
//	stasis.RegisterDefaults(reg)
//
//	var buf bytes.Buffer
//	w := reg.NewWriter()
//	if err := w.WriteTyped(&buf, []any{"a", nil, "a"}); err != nil {
//		return err
//	}
//
//	r := reg.NewReader()
//	v, err := r.ReadTyped(&buf)
//
// Registry 可以被多个 goroutine 共享；Writer 与 Reader 只能在单个 goroutine 中使用一次。
//
// 对象登记发生在序列化器写完之后，所以对象不能在自身的序列化过程中直接引用自己，
// 经由其他已登记对象的间接共享不受影响。
package stasis
