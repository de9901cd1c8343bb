// Package pool 提供可复用对象的借还池。
//
// 与 sync.Pool 不同，这里的池有容量上限：池被借空时 Borrow 会阻塞，
// 直到有对象被归还，从而限制同时进行的操作数量。
package pool

// ObjectPool 抽象了“借出/归还”能力。
type ObjectPool[T any] interface {
	// Borrow 借出一个对象，池为空时阻塞等待。
	Borrow() T

	// Release 归还对象。返回 false 表示池无法接收该对象，属于调用方的逻辑错误。
	Release(obj T) bool
}

// ObjectFactory 负责对象的创建以及借出/归还时的状态重置。
type ObjectFactory[T any] interface {
	Create() T
	OnBorrow(obj T)
	OnRelease(obj T)
}

// FactoryFunc 用函数快速构造一个 ObjectFactory。
// onBorrow 与 onRelease 允许为 nil。
func FactoryFunc[T any](create func() T, onBorrow, onRelease func(T)) ObjectFactory[T] {
	return &funcFactory[T]{create: create, onBorrow: onBorrow, onRelease: onRelease}
}

type funcFactory[T any] struct {
	create    func() T
	onBorrow  func(T)
	onRelease func(T)
}

func (f *funcFactory[T]) Create() T { return f.create() }

func (f *funcFactory[T]) OnBorrow(obj T) {
	if f.onBorrow != nil {
		f.onBorrow(obj)
	}
}

func (f *funcFactory[T]) OnRelease(obj T) {
	if f.onRelease != nil {
		f.onRelease(obj)
	}
}
