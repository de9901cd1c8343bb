package stasis

import (
	"bytes"
	"context"

	"github.com/lk2023060901/stasis-go/pkg/util/conc"
	"github.com/lk2023060901/stasis-go/pkg/util/merr"
)

// Marshal 用一个新的写会话把 v 连同类型下标编码为字节。
func Marshal(r *Registry, v any) ([]byte, error) {
	var buf bytes.Buffer
	w := r.NewWriter()
	err := w.WriteTyped(&buf, v)
	if err = merr.Combine(err, w.Close()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal 用一个新的读会话解码由 Marshal 生成的字节。
// 输入中多余的字节被视为流损坏。
func Unmarshal(r *Registry, data []byte) (any, error) {
	in := bytes.NewReader(data)
	rd := r.NewReader()
	v, err := rd.ReadTyped(in)
	if err = merr.Combine(err, rd.Close()); err != nil {
		return nil, err
	}
	if in.Len() > 0 {
		return nil, merr.WrapErrStreamLengthInvalid("trailing bytes", uint64(in.Len()), 0)
	}
	return v, nil
}

// Batch 在协程池上并行执行多个互相独立的编解码过程。
// 每个过程使用自己的会话，注册表被共享。
type Batch struct {
	registry *Registry
	pool     *conc.Pool[any]
}

// NewBatch 创建并发度为 parallelism 的 Batch，parallelism 不大于 0 时取 GOMAXPROCS。
func NewBatch(r *Registry, parallelism int, opts ...conc.PoolOption) *Batch {
	var p *conc.Pool[any]
	if parallelism > 0 {
		p = conc.NewPool[any](parallelism, opts...)
	} else {
		p = conc.NewDefaultPool[any]()
	}
	return &Batch{registry: r, pool: p}
}

// MarshalAll 并行编码 values，结果与输入一一对应。
// ctx 取消后尚未开始的编码不再执行。
func (b *Batch) MarshalAll(ctx context.Context, values []any) ([][]byte, error) {
	futures := make([]*conc.Future[any], len(values))
	for i, v := range values {
		futures[i] = b.pool.Submit(func() (any, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			data, err := Marshal(b.registry, v)
			if err != nil {
				return nil, err
			}
			return data, nil
		})
	}
	if err := conc.AwaitAll(futures...); err != nil {
		return nil, err
	}
	out := make([][]byte, len(futures))
	for i, f := range futures {
		out[i] = f.Value().([]byte)
	}
	return out, nil
}

// UnmarshalAll 并行解码 data，结果与输入一一对应。
func (b *Batch) UnmarshalAll(ctx context.Context, data [][]byte) ([]any, error) {
	futures := make([]*conc.Future[any], len(data))
	for i, d := range data {
		futures[i] = b.pool.Submit(func() (any, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return Unmarshal(b.registry, d)
		})
	}
	if err := conc.AwaitAll(futures...); err != nil {
		return nil, err
	}
	out := make([]any, len(futures))
	for i, f := range futures {
		out[i] = f.Value()
	}
	return out, nil
}

// Close 释放协程池。
func (b *Batch) Close() {
	b.pool.Release()
}
