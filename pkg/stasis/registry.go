package stasis

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/lk2023060901/stasis-go/pkg/log"
	"github.com/lk2023060901/stasis-go/pkg/metrics"
	"github.com/lk2023060901/stasis-go/pkg/util/merr"
	"github.com/lk2023060901/stasis-go/pkg/util/typeutil"
)

// Null 是 nil 值在注册表中的类型键。
type Null struct{}

var (
	nullType   = reflect.TypeFor[Null]()
	stringType = reflect.TypeFor[string]()
)

// serializerEntry 是注册表中的一项。index 一经分配不再改变，
// 重新注册只替换 handler，缓存中持有的是同一个 entry 指针。
type serializerEntry struct {
	typ     reflect.Type
	index   uint32
	handler atomic.Pointer[handlerSlot]
}

type handlerSlot struct {
	h handler
}

func (e *serializerEntry) load() handler {
	return e.handler.Load().h
}

// Registry 保存类型到序列化器的映射，并为每个序列化器分配稳定的下标。
// 注册互斥进行；查找通过无锁缓存完成，可被任意多个 goroutine 并发调用。
type Registry struct {
	log.Binder

	mu      sync.Mutex
	entries atomic.Pointer[[]*serializerEntry]
	cache   *typeutil.ConcurrentMap[reflect.Type, *serializerEntry]
	group   singleflight.Group

	refs    atomic.Pointer[strategySlot]
	opts    *options
	strings *StringSerializer
}

type strategySlot struct {
	s ReferenceStrategy
}

// New 创建一个空的注册表，默认使用 Identity 引用策略。
func New(opts ...Option) *Registry {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	r := &Registry{
		cache: typeutil.NewConcurrentMap[reflect.Type, *serializerEntry](),
		opts:  o,
	}
	empty := make([]*serializerEntry, 0)
	r.entries.Store(&empty)
	r.refs.Store(&strategySlot{s: o.references})
	if o.logger != nil {
		r.SetLogger(o.logger)
	} else {
		r.SetLogger(log.With(log.FieldModule("stasis"), log.FieldComponent("registry")).WithRateGroup("stasis.registry", 1, 60))
	}
	r.strings = newStringSerializer(o.stringPool, o.metrics)
	return r
}

// Register 为类型 T 注册序列化器。
// T 已注册时替换其序列化器并保留原下标，否则追加到表尾。
func Register[T any](r *Registry, s Serializer[T]) uint32 {
	return r.register(reflect.TypeFor[T](), erase(s))
}

// RegisterType 以运行时类型为键注册序列化器，供 Register 无法表达的场景使用。
func RegisterType(r *Registry, typ reflect.Type, s Serializer[any]) uint32 {
	return r.register(typ, erase(s))
}

func (r *Registry) register(typ reflect.Type, h handler) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.cache.Get(typ); ok && existing.typ == typ {
		existing.handler.Store(&handlerSlot{h: h})
		r.Logger().Warn("serializer replaced",
			log.FieldType(typ),
			log.FieldIndex(existing.index))
		return existing.index
	}

	old := *r.entries.Load()
	entry := &serializerEntry{
		typ:   typ,
		index: uint32(len(old)),
	}
	entry.handler.Store(&handlerSlot{h: h})

	next := make([]*serializerEntry, len(old), len(old)+1)
	copy(next, old)
	next = append(next, entry)
	r.entries.Store(&next)
	// 精确类型直接写入缓存，覆盖之前通过父类型解析得到的结果。
	r.cache.Insert(typ, entry)

	if r.opts.metrics {
		metrics.RegisteredSerializers.Set(float64(len(next)))
	}
	r.Logger().Debug("serializer registered",
		log.FieldType(typ),
		log.FieldIndex(entry.index))
	return entry.index
}

// Len 返回注册表中序列化器的数量。
func (r *Registry) Len() int {
	return len(*r.entries.Load())
}

// Types 返回已注册的全部类型。
func (r *Registry) Types() typeutil.Set[reflect.Type] {
	entries := *r.entries.Load()
	types := typeutil.NewSet[reflect.Type]()
	for _, e := range entries {
		types.Insert(e.typ)
	}
	return types
}

// IndexOf 返回类型 typ 解析到的序列化器下标。
func (r *Registry) IndexOf(typ reflect.Type) (uint32, error) {
	e, err := r.resolveType(typ)
	if err != nil {
		return 0, err
	}
	return e.index, nil
}

// SerializerFor 返回静态类型 T 解析到的序列化器，
// 可能是 T 本身的序列化器，也可能是 T 所实现接口的序列化器。
func SerializerFor[T any](r *Registry) (Serializer[T], error) {
	e, err := r.resolveType(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return unwrap[T](e.load()), nil
}

// resolveType 先查缓存，未命中时按注册顺序找第一个可赋值的类型并缓存结果。
func (r *Registry) resolveType(typ reflect.Type) (*serializerEntry, error) {
	if typ == nil {
		typ = nullType
	}
	if e, ok := r.cache.Get(typ); ok {
		return e, nil
	}

	v, err, _ := r.group.Do(fmt.Sprintf("%p", typ), func() (any, error) {
		if e, ok := r.cache.Get(typ); ok {
			return e, nil
		}
		for _, e := range *r.entries.Load() {
			if typ.AssignableTo(e.typ) {
				e, _ = r.cache.GetOrInsert(typ, e)
				r.observeResolve(metrics.ResolveSupertype)
				r.Logger().RatedDebug(1, "serializer resolved by supertype",
					log.FieldType(typ),
					zap.Stringer("supertype", e.typ),
					log.FieldIndex(e.index))
				return e, nil
			}
		}
		r.observeResolve(metrics.ResolveMiss)
		return nil, merr.WrapErrSerializerNotFound(typ.String())
	})
	if err != nil {
		return nil, err
	}
	return v.(*serializerEntry), nil
}

// resolveIndex 直接按下标取表项。
func (r *Registry) resolveIndex(index uint32) (*serializerEntry, error) {
	entries := *r.entries.Load()
	if int(index) >= len(entries) {
		return nil, merr.WrapErrSerializerIndexOutOfRange(index, len(entries))
	}
	return entries[index], nil
}

func (r *Registry) observeResolve(result string) {
	if r.opts.metrics {
		metrics.ResolveTotal.WithLabelValues(result).Inc()
	}
}

// SetReferences 替换之后新建会话使用的引用策略，已存在的会话不受影响。
func (r *Registry) SetReferences(s ReferenceStrategy) {
	r.refs.Store(&strategySlot{s: s})
}

// References 返回当前的引用策略。
func (r *Registry) References() ReferenceStrategy {
	return r.refs.Load().s
}

// NewWriter 创建一个单次使用的写会话。
func (r *Registry) NewWriter() *Writer {
	return newWriter(r, r.References().NewWriter())
}

// NewReader 创建一个单次使用的读会话。
func (r *Registry) NewReader() *Reader {
	return newReader(r, r.References().NewReader())
}
