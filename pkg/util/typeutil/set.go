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

import "github.com/samber/lo"

// Set 是基于 map 的集合，零值不可用，需通过 NewSet 创建。不是并发安全的。
type Set[T comparable] map[T]struct{}

func NewSet[T comparable](elements ...T) Set[T] {
	set := make(Set[T], len(elements))
	set.Insert(elements...)
	return set
}

func (set Set[T]) Insert(elements ...T) {
	for _, e := range elements {
		set[e] = struct{}{}
	}
}

// Contain 当全部 elements 都在集合中时返回 true。
func (set Set[T]) Contain(elements ...T) bool {
	return lo.EveryBy(elements, func(e T) bool {
		_, ok := set[e]
		return ok
	})
}

func (set Set[T]) Remove(elements ...T) {
	for _, e := range elements {
		delete(set, e)
	}
}

func (set Set[T]) Len() int {
	return len(set)
}

// Collect 以任意顺序返回全部元素。
func (set Set[T]) Collect() []T {
	return lo.Keys(set)
}

// Range 遍历集合，f 返回 false 时停止。
func (set Set[T]) Range(f func(element T) bool) {
	for e := range set {
		if !f(e) {
			return
		}
	}
}

func (set Set[T]) Clone() Set[T] {
	return NewSet(set.Collect()...)
}

// Union 返回两个集合的并集。
func (set Set[T]) Union(other Set[T]) Set[T] {
	ret := set.Clone()
	ret.Insert(other.Collect()...)
	return ret
}

// Intersection 返回同时属于两个集合的元素。
func (set Set[T]) Intersection(other Set[T]) Set[T] {
	return NewSet(lo.Filter(set.Collect(), func(e T, _ int) bool { return other.Contain(e) })...)
}

// Complement 返回属于 set 但不属于 other 的元素。
func (set Set[T]) Complement(other Set[T]) Set[T] {
	return NewSet(lo.Filter(set.Collect(), func(e T, _ int) bool { return !other.Contain(e) })...)
}
