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

package log

import (
	"sync"
	"sync/atomic"

	"github.com/uber/jaeger-client-go/utils"
	uatomic "go.uber.org/atomic"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// rateGroups 保存按名字共享的限流器。
var rateGroups sync.Map

// MLogger 在 zap.Logger 之上增加限流输出。
// 未绑定限流分组时使用全局限流器 R()。
type MLogger struct {
	*zap.Logger
	limiter atomic.Pointer[utils.ReconfigurableRateLimiter]
}

// With 返回追加了字段的 MLogger，限流分组随之继承。
func (l *MLogger) With(fields ...zap.Field) *MLogger {
	child := &MLogger{Logger: l.Logger.With(fields...)}
	child.limiter.Store(l.limiter.Load())
	return child
}

// WithRateGroup 把 l 绑定到名为 group 的限流器上，已存在的分组会更新参数。
func (l *MLogger) WithRateGroup(group string, creditPerSecond, maxBalance float64) *MLogger {
	fresh := utils.NewRateLimiter(creditPerSecond, maxBalance)
	if existing, loaded := rateGroups.LoadOrStore(group, fresh); loaded {
		fresh = existing.(*utils.ReconfigurableRateLimiter)
		fresh.Update(creditPerSecond, maxBalance)
	}
	l.limiter.Store(fresh)
	return l
}

func (l *MLogger) allow(cost float64) bool {
	if rl := l.limiter.Load(); rl != nil {
		return rl.CheckCredit(cost)
	}
	return R().CheckCredit(cost)
}

func (l *MLogger) RatedDebug(cost float64, msg string, fields ...zap.Field) bool {
	return l.rated(cost, zap.DebugLevel, msg, fields)
}

func (l *MLogger) RatedInfo(cost float64, msg string, fields ...zap.Field) bool {
	return l.rated(cost, zap.InfoLevel, msg, fields)
}

func (l *MLogger) RatedWarn(cost float64, msg string, fields ...zap.Field) bool {
	return l.rated(cost, zap.WarnLevel, msg, fields)
}

// rated 在额度足够时输出日志，返回是否输出。
func (l *MLogger) rated(cost float64, lvl zapcore.Level, msg string, fields []zap.Field) bool {
	if !l.allow(cost) {
		return false
	}
	if ce := l.WithOptions(zap.AddCallerSkip(2)).Check(lvl, msg); ce != nil {
		ce.Write(fields...)
	}
	return true
}

// Binder 嵌入到组件中保存组件自己的 logger。
type Binder struct {
	logger uatomic.Pointer[MLogger]
}

func (b *Binder) SetLogger(logger *MLogger) {
	b.logger.Store(logger)
}

// Logger 返回绑定的 logger，未绑定时返回基于全局 logger 的 MLogger。
func (b *Binder) Logger() *MLogger {
	if l := b.logger.Load(); l != nil {
		return l
	}
	return With()
}
