package pool

// StaticPool 在创建时即预先分配全部 size 个对象。
type StaticPool[T any] struct {
	objects chan T
	factory ObjectFactory[T]
}

var _ ObjectPool[int] = (*StaticPool[int])(nil)

// NewStaticPool 创建容量为 size 的池并立即填满；size 必须大于 0。
func NewStaticPool[T any](size int, factory ObjectFactory[T]) *StaticPool[T] {
	if size <= 0 {
		panic("pool: size must be positive")
	}
	p := &StaticPool[T]{
		objects: make(chan T, size),
		factory: factory,
	}
	for i := 0; i < size; i++ {
		p.objects <- factory.Create()
	}
	return p
}

func (p *StaticPool[T]) Borrow() T {
	obj := <-p.objects
	p.factory.OnBorrow(obj)
	return obj
}

func (p *StaticPool[T]) Release(obj T) bool {
	p.factory.OnRelease(obj)
	select {
	case p.objects <- obj:
		return true
	default:
		return false
	}
}

// Available 返回当前池中空闲对象的数量。
func (p *StaticPool[T]) Available() int {
	return len(p.objects)
}
