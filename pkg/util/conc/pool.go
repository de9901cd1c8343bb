// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package conc

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/cockroachdb/errors"
	ants "github.com/panjf2000/ants/v2"

	"github.com/lk2023060901/stasis-go/pkg/util/merr"
)

// Pool 是带 Future 的 goroutine 池，底层使用 ants。
type Pool[T any] struct {
	inner *ants.Pool
	opt   *poolOption
}

// NewPool 创建容量为 cap 的协程池。
func NewPool[T any](cap int, opts ...PoolOption) *Pool[T] {
	opt := defaultPoolOption()
	for _, o := range opts {
		o(opt)
	}

	pool, err := ants.NewPool(cap, opt.antsOptions()...)
	if err != nil {
		panic(err)
	}

	return &Pool[T]{
		inner: pool,
		opt:   opt,
	}
}

// NewDefaultPool 创建与 GOMAXPROCS 等大的协程池。
func NewDefaultPool[T any]() *Pool[T] {
	return NewPool[T](defaultPoolSize())
}

// Submit 提交一个任务。
// 协程池已满且配置为非阻塞时，返回的 Future 携带提交失败的错误。
func (pool *Pool[T]) Submit(method func() (T, error)) *Future[T] {
	future := newFuture[T]()
	err := pool.inner.Submit(func() {
		defer close(future.ch)
		defer func() {
			if x := recover(); x != nil {
				future.err = errors.Newf("task panicked: %v", x)
				if !pool.opt.concealPanic {
					panic(x)
				}
			}
		}()
		res, err := method()
		if err != nil {
			future.err = err
		} else {
			future.value = res
		}
	})
	if err != nil {
		future.err = errors.Wrap(err, "submit to pool")
		close(future.ch)
	}

	return future
}

// Cap 返回协程池容量。
func (pool *Pool[T]) Cap() int {
	return pool.inner.Cap()
}

// Running 返回正在运行的 worker 数量。
func (pool *Pool[T]) Running() int {
	return pool.inner.Running()
}

// Free 返回空闲的 worker 数量。
func (pool *Pool[T]) Free() int {
	return pool.inner.Free()
}

// Release 释放协程池，等待中的任务仍会执行完毕。
func (pool *Pool[T]) Release() {
	pool.inner.Release()
}

func (pool *Pool[T]) Resize(size int) error {
	if size <= 0 {
		return merr.WrapErrParameterInvalid("positive size", fmt.Sprint(size))
	}
	pool.inner.Tune(size)
	return nil
}

var (
	defaultPoolOnce sync.Once
	defaultPoolSz   int
)

func defaultPoolSize() int {
	defaultPoolOnce.Do(func() {
		defaultPoolSz = runtime.GOMAXPROCS(0)
	})
	return defaultPoolSz
}
