package stasis

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/lk2023060901/stasis-go/pkg/metrics"
	"github.com/lk2023060901/stasis-go/pkg/util/merr"
)

// Writer 是一次编码过程的会话，不能被多个 goroutine 同时使用。
type Writer struct {
	registry *Registry
	refs     ReferenceWriter
	objects  int
	depth    int
	closed   bool
}

func newWriter(registry *Registry, refs ReferenceWriter) *Writer {
	return &Writer{registry: registry, refs: refs}
}

// Registry 返回会话所属的注册表。
func (w *Writer) Registry() *Registry { return w.registry }

// WriteTyped 写出 v 及其类型下标；v 已写出过时只写回引。
// nil 使用 Null 的序列化器。
func (w *Writer) WriteTyped(out Output, v any) error {
	if w.closed {
		return merr.WrapErrSessionClosed("writer")
	}
	ref, found, err := w.refs.ReferenceFor(v)
	if err != nil {
		return err
	}
	if found {
		return w.writeReference(out, ref)
	}
	e, err := w.registry.resolveType(reflect.TypeOf(v))
	if err != nil {
		return err
	}
	return w.writeObject(out, v, e.index, e.load())
}

// WriteExplicit 使用调用方给定的序列化器写出 v，头部不携带类型下标，
// 读端必须用同样的序列化器调用 ReadExplicit。
func WriteExplicit[T any](w *Writer, out Output, v T, s Serializer[T]) error {
	return w.writeExplicit(out, v, erase(s))
}

// WriteAs 按静态类型 T 解析序列化器写出 v，头部不携带类型下标，
// 读端应使用 ReadAs[T]。
func WriteAs[T any](w *Writer, out Output, v T) error {
	if w.closed {
		return merr.WrapErrSessionClosed("writer")
	}
	e, err := w.registry.resolveType(reflect.TypeFor[T]())
	if err != nil {
		return err
	}
	return w.writeExplicit(out, v, e.load())
}

func (w *Writer) writeExplicit(out Output, v any, h handler) error {
	if w.closed {
		return merr.WrapErrSessionClosed("writer")
	}
	ref, found, err := w.refs.ReferenceFor(v)
	if err != nil {
		return err
	}
	if found {
		return w.writeReference(out, ref)
	}
	return w.writeObject(out, v, 0, h)
}

// writeObject 写出头部与对象内容，之后才登记对象。
// 对象在写出过程中引用自身会不断重新进入这里，由嵌套深度上限截断。
func (w *Writer) writeObject(out Output, v any, data uint32, h handler) error {
	if w.depth >= w.registry.opts.maxDepth {
		return merr.WrapErrReferenceTooDeep(w.depth)
	}
	if err := writeHeader(out, data, tagObject); err != nil {
		return err
	}
	w.depth++
	err := h.write(w, out, v)
	w.depth--
	if err != nil {
		return err
	}
	w.objects++
	w.observe(metrics.KindObject)
	return w.refs.RegisterObject(v)
}

func (w *Writer) writeReference(out Output, ref uint32) error {
	w.observe(metrics.KindReference)
	return writeHeader(out, ref, tagReference)
}

func (w *Writer) observe(kind string) {
	if w.registry.opts.metrics {
		metrics.ObjectsTotal.WithLabelValues(metrics.DirectionWrite, kind).Inc()
	}
}

// Close 结束会话，之后的任何写入都会返回 ErrSessionClosed。
func (w *Writer) Close() error {
	if w.closed {
		return merr.WrapErrSessionClosed("writer")
	}
	w.closed = true
	w.registry.Logger().Debug("writer closed", zap.Int("objects", w.objects))
	return w.refs.Close()
}

// Reader 是一次解码过程的会话，不能被多个 goroutine 同时使用。
type Reader struct {
	registry *Registry
	refs     ReferenceReader
	objects  int
	depth    int
	closed   bool
}

func newReader(registry *Registry, refs ReferenceReader) *Reader {
	return &Reader{registry: registry, refs: refs}
}

func (r *Reader) Registry() *Registry { return r.registry }

// ReadTyped 读取一个由 WriteTyped 写出的值。
func (r *Reader) ReadTyped(in Input) (any, error) {
	if r.closed {
		return nil, merr.WrapErrSessionClosed("reader")
	}
	h, err := readHeader(in)
	if err != nil {
		return nil, err
	}
	if h.tag() == tagReference {
		return r.readReference(h.data())
	}
	e, err := r.registry.resolveIndex(h.data())
	if err != nil {
		return nil, err
	}
	return r.readObject(in, e.load())
}

// ReadExplicit 使用给定的序列化器读取一个由 WriteExplicit 写出的值，
// 头部中的数据段被忽略。
func ReadExplicit[T any](r *Reader, in Input, s Serializer[T]) (T, error) {
	v, err := r.readExplicit(in, erase(s))
	if err != nil {
		var zero T
		return zero, err
	}
	return castTo[T](v)
}

// ReadAs 按静态类型 T 解析序列化器，读取一个由 WriteAs[T] 写出的值。
func ReadAs[T any](r *Reader, in Input) (T, error) {
	var zero T
	if r.closed {
		return zero, merr.WrapErrSessionClosed("reader")
	}
	e, err := r.registry.resolveType(reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	v, err := r.readExplicit(in, e.load())
	if err != nil {
		return zero, err
	}
	return castTo[T](v)
}

func (r *Reader) readExplicit(in Input, h handler) (any, error) {
	if r.closed {
		return nil, merr.WrapErrSessionClosed("reader")
	}
	hdr, err := readHeader(in)
	if err != nil {
		return nil, err
	}
	if hdr.tag() == tagReference {
		return r.readReference(hdr.data())
	}
	return r.readObject(in, h)
}

func (r *Reader) readObject(in Input, h handler) (any, error) {
	if r.depth >= r.registry.opts.maxDepth {
		return nil, merr.WrapErrReferenceTooDeep(r.depth)
	}
	r.depth++
	v, err := h.read(r, in)
	r.depth--
	if err != nil {
		return nil, err
	}
	r.objects++
	r.observe(metrics.KindObject)
	if err := r.refs.RegisterObject(v); err != nil {
		return nil, err
	}
	return v, nil
}

func (r *Reader) readReference(ref uint32) (any, error) {
	r.observe(metrics.KindReference)
	return r.refs.ObjectFor(ref)
}

func (r *Reader) observe(kind string) {
	if r.registry.opts.metrics {
		metrics.ObjectsTotal.WithLabelValues(metrics.DirectionRead, kind).Inc()
	}
}

// Close 结束会话，之后的任何读取都会返回 ErrSessionClosed。
func (r *Reader) Close() error {
	if r.closed {
		return merr.WrapErrSessionClosed("reader")
	}
	r.closed = true
	r.registry.Logger().Debug("reader closed", zap.Int("objects", r.objects))
	return r.refs.Close()
}
