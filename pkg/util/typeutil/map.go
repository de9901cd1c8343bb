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

package typeutil

import (
	"sync"

	"go.uber.org/atomic"
)

// ConcurrentMap 是 sync.Map 的泛型封装，读操作无锁。
type ConcurrentMap[K comparable, V any] struct {
	inner sync.Map
	len   atomic.Uint64
}

func NewConcurrentMap[K comparable, V any]() *ConcurrentMap[K, V] {
	return &ConcurrentMap[K, V]{}
}

// Insert 写入键值对，已存在时覆盖。
func (m *ConcurrentMap[K, V]) Insert(key K, value V) {
	_, loaded := m.inner.Swap(key, value)
	if !loaded {
		m.len.Inc()
	}
}

func (m *ConcurrentMap[K, V]) Get(key K) (V, bool) {
	var zeroValue V
	value, ok := m.inner.Load(key)
	if !ok {
		return zeroValue, false
	}
	return value.(V), true
}

func (m *ConcurrentMap[K, V]) Contain(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// GetOrInsert 返回已存在的值，否则写入 value。
// 第二个返回值表示 key 是否已经存在。
func (m *ConcurrentMap[K, V]) GetOrInsert(key K, value V) (V, bool) {
	stored, loaded := m.inner.LoadOrStore(key, value)
	if !loaded {
		m.len.Inc()
	}
	return stored.(V), loaded
}

// GetAndRemove 删除 key 并返回被删除的值。
func (m *ConcurrentMap[K, V]) GetAndRemove(key K) (V, bool) {
	var zeroValue V
	value, loaded := m.inner.LoadAndDelete(key)
	if !loaded {
		return zeroValue, false
	}
	m.len.Dec()
	return value.(V), true
}

func (m *ConcurrentMap[K, V]) Remove(key K) {
	m.GetAndRemove(key)
}

func (m *ConcurrentMap[K, V]) Len() int {
	return int(m.len.Load())
}

// Range 遍历所有键值对，回调返回 false 时停止。
func (m *ConcurrentMap[K, V]) Range(fn func(key K, value V) bool) {
	m.inner.Range(func(key, value any) bool {
		return fn(key.(K), value.(V))
	})
}

func (m *ConcurrentMap[K, V]) Keys() []K {
	ret := make([]K, 0, m.Len())
	m.Range(func(key K, _ V) bool {
		ret = append(ret, key)
		return true
	})
	return ret
}

func (m *ConcurrentMap[K, V]) Values() []V {
	ret := make([]V, 0, m.Len())
	m.Range(func(_ K, value V) bool {
		ret = append(ret, value)
		return true
	})
	return ret
}
