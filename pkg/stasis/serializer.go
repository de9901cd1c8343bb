package stasis

import (
	"io"
	"reflect"

	"github.com/lk2023060901/stasis-go/pkg/util/merr"
)

// Output 是写端的字节流，bytes.Buffer 与 bufio.Writer 均满足该接口。
type Output interface {
	io.Writer
	io.ByteWriter
}

// Input 是读端的字节流，bytes.Reader、bytes.Buffer 与 bufio.Reader 均满足该接口。
// Read 的短读由调用方通过 io.ReadFull 处理。
type Input interface {
	io.Reader
	io.ByteReader
}

// Serializer 是类型 T 的编解码器。
//
// 实现必须自定界：会话不会在序列化器输出的前后添加长度。
// 嵌套的值可以通过 w/r 递归写读，从而参与引用追踪。
type Serializer[T any] interface {
	Write(w *Writer, out Output, v T) error
	Read(r *Reader, in Input) (T, error)
}

// SerializerFuncs 用一对函数构造 Serializer。
func SerializerFuncs[T any](
	write func(w *Writer, out Output, v T) error,
	read func(r *Reader, in Input) (T, error),
) Serializer[T] {
	return &funcSerializer[T]{write: write, read: read}
}

type funcSerializer[T any] struct {
	write func(w *Writer, out Output, v T) error
	read  func(r *Reader, in Input) (T, error)
}

func (s *funcSerializer[T]) Write(w *Writer, out Output, v T) error { return s.write(w, out, v) }

func (s *funcSerializer[T]) Read(r *Reader, in Input) (T, error) { return s.read(r, in) }

// handler 是注册表内部保存的类型擦除后的序列化器。
type handler interface {
	write(w *Writer, out Output, v any) error
	read(r *Reader, in Input) (any, error)
}

// erased 把 Serializer[T] 适配为 handler。
type erased[T any] struct {
	s Serializer[T]
}

func erase[T any](s Serializer[T]) handler {
	return &erased[T]{s: s}
}

func (e *erased[T]) write(w *Writer, out Output, v any) error {
	typed, err := castTo[T](v)
	if err != nil {
		return err
	}
	return e.s.Write(w, out, typed)
}

func (e *erased[T]) read(r *Reader, in Input) (any, error) {
	v, err := e.s.Read(r, in)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// castTo 把 v 断言为 T。nil 在 T 为接口、指针、切片等可空类型时转换为零值。
func castTo[T any](v any) (T, error) {
	var zero T
	if v == nil {
		if nillable(reflect.TypeFor[T]()) {
			return zero, nil
		}
		return zero, merr.WrapErrSerializerTypeMismatch(reflect.TypeFor[T](), nil)
	}
	if typed, ok := v.(T); ok {
		return typed, nil
	}
	// 未命名类型的值可以赋给底层类型相同的命名类型，例如 []byte 与 type Bytes []byte。
	target := reflect.TypeFor[T]()
	if rv := reflect.ValueOf(v); rv.Type().AssignableTo(target) {
		return rv.Convert(target).Interface().(T), nil
	}
	return zero, merr.WrapErrSerializerTypeMismatch(target, reflect.TypeOf(v))
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return true
	default:
		return false
	}
}

// typedHandler 把 handler 还原为 Serializer[T]，供 SerializerFor 使用。
type typedHandler[T any] struct {
	h handler
}

func (t *typedHandler[T]) Write(w *Writer, out Output, v T) error {
	return t.h.write(w, out, v)
}

func (t *typedHandler[T]) Read(r *Reader, in Input) (T, error) {
	v, err := t.h.read(r, in)
	if err != nil {
		var zero T
		return zero, err
	}
	return castTo[T](v)
}

// unwrap 取回 handler 中原始的 Serializer[T]，类型不符时退化为适配器。
func unwrap[T any](h handler) Serializer[T] {
	if e, ok := h.(*erased[T]); ok {
		return e.s
	}
	return &typedHandler[T]{h: h}
}
