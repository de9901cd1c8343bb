package pool

import (
	"go.uber.org/atomic"
)

// DynamicPool 按需创建对象，最多创建 maxSize 个；
// 达到上限后 Borrow 阻塞等待其他调用方归还。
type DynamicPool[T any] struct {
	objects chan T
	factory ObjectFactory[T]

	maxSize int32
	size    atomic.Int32
}

var _ ObjectPool[int] = (*DynamicPool[int])(nil)

// NewDynamicPool 创建最多容纳 maxSize 个对象的池；maxSize 必须大于 0。
func NewDynamicPool[T any](maxSize int, factory ObjectFactory[T]) *DynamicPool[T] {
	if maxSize <= 0 {
		panic("pool: maxSize must be positive")
	}
	return &DynamicPool[T]{
		objects: make(chan T, maxSize),
		factory: factory,
		maxSize: int32(maxSize),
	}
}

func (p *DynamicPool[T]) Borrow() T {
	var obj T
	select {
	case obj = <-p.objects:
	default:
		if p.size.Load() < p.maxSize && p.size.Inc() <= p.maxSize {
			obj = p.factory.Create()
		} else {
			obj = <-p.objects
		}
	}
	p.factory.OnBorrow(obj)
	return obj
}

func (p *DynamicPool[T]) Release(obj T) bool {
	p.factory.OnRelease(obj)
	select {
	case p.objects <- obj:
		return true
	default:
		return false
	}
}

// Created 返回迄今为止创建过的对象数量（不超过 maxSize）。
func (p *DynamicPool[T]) Created() int {
	n := p.size.Load()
	if n > p.maxSize {
		return int(p.maxSize)
	}
	return int(n)
}
