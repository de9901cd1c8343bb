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
	"time"

	ants "github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/lk2023060901/stasis-go/pkg/log"
)

// PoolOption 用于配置 Pool。
type PoolOption func(opt *poolOption)

type poolOption struct {
	preAlloc    bool
	nonBlocking bool
	// expiry 为空闲 worker 的回收周期，为 0 时使用 ants 的默认值。
	expiry time.Duration
	// concealPanic 为 true 时任务的 panic 转为 Future 的错误，否则继续向上抛出。
	concealPanic bool
}

func defaultPoolOption() *poolOption {
	return &poolOption{concealPanic: true}
}

func (opt *poolOption) antsOptions() []ants.Option {
	opts := []ants.Option{
		ants.WithPreAlloc(opt.preAlloc),
		ants.WithNonblocking(opt.nonBlocking),
		ants.WithPanicHandler(func(v any) {
			log.Error("conc pool task panicked", zap.Any("panic", v))
		}),
	}
	if opt.expiry > 0 {
		opts = append(opts, ants.WithExpiryDuration(opt.expiry))
	}
	return opts
}

// WithPreAlloc 在创建时一次性分配全部 worker 队列。
func WithPreAlloc(v bool) PoolOption {
	return func(opt *poolOption) { opt.preAlloc = v }
}

// WithNonBlocking 为 true 时池满后 Submit 立即失败，而不是等待空闲 worker。
func WithNonBlocking(v bool) PoolOption {
	return func(opt *poolOption) { opt.nonBlocking = v }
}

func WithExpiryDuration(d time.Duration) PoolOption {
	return func(opt *poolOption) { opt.expiry = d }
}

func WithConcealPanic(v bool) PoolOption {
	return func(opt *poolOption) { opt.concealPanic = v }
}
