package stasis

import (
	"math"
	"reflect"
	"unsafe"

	"github.com/lk2023060901/stasis-go/pkg/util/merr"
)

// ReferenceWriter 为写会话记录已写出的对象。
type ReferenceWriter interface {
	// ReferenceFor 返回 v 已分配的引用下标，未登记过时 found 为 false。
	ReferenceFor(v any) (ref uint32, found bool, err error)
	// RegisterObject 为 v 分配下一个引用下标，即当前已登记对象的数量。
	RegisterObject(v any) error
	Close() error
}

// ReferenceReader 为读会话按读取顺序保存对象。
type ReferenceReader interface {
	ObjectFor(ref uint32) (any, error)
	RegisterObject(v any) error
	Close() error
}

// ReferenceStrategy 负责为每个会话创建一对新的引用追踪器。
// 写端与读端必须使用同一种策略。
type ReferenceStrategy interface {
	Name() string
	NewWriter() ReferenceWriter
	NewReader() ReferenceReader
}

// ReferenceKeyer 允许类型在 Equality 策略下自定义判等的键。
// 不可比较的类型（如包含切片的结构体）可以借此参与去重。
type ReferenceKeyer interface {
	ReferenceKey() any
}

const (
	ReferencesIdentity = "identity"
	ReferencesEquality = "equality"
	ReferencesNone     = "none"
)

// Identity 返回按实例去重的策略：只有同一个实例才会被写成回引。
// 对字符串而言，“同一个实例”指共享同一段底层字节。
func Identity() ReferenceStrategy { return identityStrategy{} }

// Equality 返回按值去重的策略：值相等的对象只写出一次。
// 指向可比较值的指针按其指向的值判等。
func Equality() ReferenceStrategy { return equalityStrategy{} }

// NoReferences 返回不做任何去重的策略。
func NoReferences() ReferenceStrategy { return noReferences{} }

// ReferenceStrategyByName 按名称返回内置策略。
func ReferenceStrategyByName(name string) (ReferenceStrategy, error) {
	switch name {
	case "", ReferencesIdentity:
		return Identity(), nil
	case ReferencesEquality:
		return Equality(), nil
	case ReferencesNone:
		return NoReferences(), nil
	default:
		return nil, merr.WrapErrParameterInvalidMsg("unknown reference strategy %q", name)
	}
}

type identityStrategy struct{}

func (identityStrategy) Name() string { return ReferencesIdentity }

func (identityStrategy) NewWriter() ReferenceWriter {
	return newMapReferenceWriter(ReferencesIdentity, identityKey)
}

func (identityStrategy) NewReader() ReferenceReader {
	return newListReferenceReader(ReferencesIdentity)
}

type equalityStrategy struct{}

func (equalityStrategy) Name() string { return ReferencesEquality }

func (equalityStrategy) NewWriter() ReferenceWriter {
	return newMapReferenceWriter(ReferencesEquality, equalityKey)
}

func (equalityStrategy) NewReader() ReferenceReader {
	return newListReferenceReader(ReferencesEquality)
}

// nilKey 是 nil 值在两种策略下共用的键。
type nilKey struct{}

// instanceKey 以类型、地址与长度标识一个实例。
type instanceKey struct {
	typ reflect.Type
	ptr uintptr
	n   int
}

// valueKey 以类型和值标识一个对象。
type valueKey struct {
	typ reflect.Type
	v   any
}

// identityKey 返回 v 在 Identity 策略下的键；
// 没有实例身份的值（数字、结构体值等）返回 false，这类值不参与去重。
func identityKey(v any) (any, bool) {
	if v == nil {
		return nilKey{}, true
	}
	if s, ok := v.(string); ok {
		return instanceKey{typ: stringType, ptr: uintptr(unsafe.Pointer(unsafe.StringData(s))), n: len(s)}, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return instanceKey{typ: rv.Type(), ptr: rv.Pointer()}, true
	case reflect.Slice:
		return instanceKey{typ: rv.Type(), ptr: rv.Pointer(), n: rv.Len()}, true
	case reflect.String:
		s := rv.String()
		return instanceKey{typ: rv.Type(), ptr: uintptr(unsafe.Pointer(unsafe.StringData(s))), n: len(s)}, true
	default:
		return nil, false
	}
}

// equalityKey 返回 v 在 Equality 策略下的键。
// 顺序：ReferenceKeyer、可比较的值、指向可比较值的指针，最后退化为实例身份。
func equalityKey(v any) (any, bool) {
	if v == nil {
		return nilKey{}, true
	}
	if k, ok := v.(ReferenceKeyer); ok {
		return valueKey{typ: reflect.TypeOf(v), v: k.ReferenceKey()}, true
	}
	rv := reflect.ValueOf(v)
	rt := rv.Type()
	switch rt.Kind() {
	case reflect.Float32, reflect.Float64:
		// 按位比较：NaN 与自身不相等，+0 与 -0 相等。
		return valueKey{typ: rt, v: floatBits(rv)}, true
	case reflect.Pointer:
		if !rv.IsNil() && rv.Elem().Kind() != reflect.Interface && rv.Elem().Comparable() {
			return valueKey{typ: rt, v: rv.Elem().Interface()}, true
		}
	default:
		if rv.Comparable() {
			return valueKey{typ: rt, v: v}, true
		}
	}
	return identityKey(v)
}

func floatBits(rv reflect.Value) uint64 {
	if rv.Kind() == reflect.Float32 {
		return uint64(math.Float32bits(float32(rv.Float())))
	}
	return math.Float64bits(rv.Float())
}

// mapReferenceWriter 是基于 map 的 ReferenceWriter，键由 keyOf 计算。
type mapReferenceWriter struct {
	name  string
	keyOf func(v any) (any, bool)
	refs  map[any]uint32
	// pinned 持有已登记的对象，保证以地址为键时对象不会在会话期间被回收。
	pinned []any
	count  uint32
	closed bool
}

func newMapReferenceWriter(name string, keyOf func(v any) (any, bool)) *mapReferenceWriter {
	return &mapReferenceWriter{
		name:  name,
		keyOf: keyOf,
		refs:  make(map[any]uint32),
	}
}

func (w *mapReferenceWriter) ReferenceFor(v any) (uint32, bool, error) {
	if w.closed {
		return 0, false, merr.WrapErrSessionClosed(w.name + " reference writer")
	}
	key, ok := w.keyOf(v)
	if !ok {
		return 0, false, nil
	}
	ref, found := w.refs[key]
	return ref, found, nil
}

func (w *mapReferenceWriter) RegisterObject(v any) error {
	if w.closed {
		return merr.WrapErrSessionClosed(w.name + " reference writer")
	}
	ref := w.count
	w.count++
	key, ok := w.keyOf(v)
	if !ok {
		return nil
	}
	if _, exists := w.refs[key]; !exists {
		w.refs[key] = ref
		w.pinned = append(w.pinned, v)
	}
	return nil
}

func (w *mapReferenceWriter) Close() error {
	if w.closed {
		return merr.WrapErrSessionClosed(w.name + " reference writer")
	}
	w.closed = true
	w.refs = nil
	w.pinned = nil
	return nil
}

// listReferenceReader 按登记顺序保存读出的对象。
type listReferenceReader struct {
	name    string
	objects []any
	closed  bool
}

func newListReferenceReader(name string) *listReferenceReader {
	return &listReferenceReader{name: name}
}

func (r *listReferenceReader) ObjectFor(ref uint32) (any, error) {
	if r.closed {
		return nil, merr.WrapErrSessionClosed(r.name + " reference reader")
	}
	if int(ref) >= len(r.objects) {
		return nil, merr.WrapErrReferenceDangling(ref, len(r.objects))
	}
	return r.objects[ref], nil
}

func (r *listReferenceReader) RegisterObject(v any) error {
	if r.closed {
		return merr.WrapErrSessionClosed(r.name + " reference reader")
	}
	r.objects = append(r.objects, v)
	return nil
}

func (r *listReferenceReader) Close() error {
	if r.closed {
		return merr.WrapErrSessionClosed(r.name + " reference reader")
	}
	r.closed = true
	r.objects = nil
	return nil
}

type noReferences struct{}

func (noReferences) Name() string { return ReferencesNone }

func (noReferences) NewWriter() ReferenceWriter { return &noReferenceWriter{} }

func (noReferences) NewReader() ReferenceReader { return &noReferenceReader{} }

type noReferenceWriter struct {
	closed bool
}

func (w *noReferenceWriter) ReferenceFor(any) (uint32, bool, error) {
	if w.closed {
		return 0, false, merr.WrapErrSessionClosed("none reference writer")
	}
	return 0, false, nil
}

func (w *noReferenceWriter) RegisterObject(any) error {
	if w.closed {
		return merr.WrapErrSessionClosed("none reference writer")
	}
	return nil
}

func (w *noReferenceWriter) Close() error {
	if w.closed {
		return merr.WrapErrSessionClosed("none reference writer")
	}
	w.closed = true
	return nil
}

// noReferenceReader 不保存任何对象，收到回引即视为流损坏。
type noReferenceReader struct {
	closed bool
}

func (r *noReferenceReader) ObjectFor(ref uint32) (any, error) {
	if r.closed {
		return nil, merr.WrapErrSessionClosed("none reference reader")
	}
	return nil, merr.WrapErrReferenceDangling(ref, 0)
}

func (r *noReferenceReader) RegisterObject(any) error {
	if r.closed {
		return merr.WrapErrSessionClosed("none reference reader")
	}
	return nil
}

func (r *noReferenceReader) Close() error {
	if r.closed {
		return merr.WrapErrSessionClosed("none reference reader")
	}
	r.closed = true
	return nil
}
