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
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/uber/jaeger-client-go/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RateLimiter 是限流日志需要的能力。
type RateLimiter interface {
	CheckCredit(delta float64) bool
}

type unlimited struct{}

func (unlimited) CheckCredit(float64) bool { return true }

// globals 在一次替换中同时更新 logger、sugar 与属性。
type globals struct {
	logger *zap.Logger
	sugar  *zap.SugaredLogger
	props  *ZapProperties
}

var (
	current atomic.Pointer[globals]
	limiter atomic.Pointer[RateLimiter]
)

func init() {
	lg, props, err := InitLogger(&Config{Level: "info", Stdout: true}, zap.OnFatal(zapcore.WriteThenPanic))
	if err != nil {
		panic(err)
	}
	ReplaceGlobals(lg, props)
	setRateLimiter(rateLimiterFromEnv())
}

// InitLogger 按配置构造 logger。
// 文件与 stdout 都未开启时输出到 stderr。
func InitLogger(cfg *Config, opts ...zap.Option) (*zap.Logger, *ZapProperties, error) {
	sinks := make([]zapcore.WriteSyncer, 0, 2)
	if cfg.File.Filename != "" {
		rotating, err := openRotating(&cfg.File)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, zapcore.AddSync(rotating))
	}
	if cfg.Stdout {
		sinks = append(sinks, zapcore.Lock(os.Stdout))
	}
	if len(sinks) == 0 {
		sinks = append(sinks, zapcore.Lock(os.Stderr))
	}
	return InitLoggerWithWriteSyncer(cfg, zap.CombineWriteSyncers(sinks...), opts...)
}

// InitTestLogger 构造写入 testing.T 的 logger，zap 内部错误会让测试失败。
func InitTestLogger(t zaptest.TestingT, cfg *Config, opts ...zap.Option) (*zap.Logger, *ZapProperties, error) {
	w := testingWriter{t: t}
	opts = append([]zap.Option{zap.ErrorOutput(w.failing())}, opts...)
	return InitLoggerWithWriteSyncer(cfg, w, opts...)
}

// InitLoggerWithWriteSyncer 以 output 为输出构造 logger。
func InitLoggerWithWriteSyncer(cfg *Config, output zapcore.WriteSyncer, opts ...zap.Option) (*zap.Logger, *ZapProperties, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, nil, errors.Wrapf(err, "parse log level %q", cfg.Level)
		}
	}
	props := &ZapProperties{
		Core:   zapcore.NewCore(cfg.encoder(), output, level),
		Syncer: output,
		Level:  level,
	}
	return zap.New(props.Core, append(cfg.buildOptions(output), opts...)...), props, nil
}

func openRotating(cfg *FileLogConfig) (*lumberjack.Logger, error) {
	path := filepath.Join(cfg.RootPath, cfg.Filename)
	if st, err := os.Stat(path); err == nil && st.IsDir() {
		return nil, errors.Newf("log file %s is a directory", path)
	}
	maxSize := cfg.MaxSize
	if maxSize == 0 {
		maxSize = defaultLogMaxSize
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxDays,
		LocalTime:  true,
	}, nil
}

// L 返回全局 logger。
func L() *zap.Logger { return current.Load().logger }

// S 返回全局 SugaredLogger。
func S() *zap.SugaredLogger { return current.Load().sugar }

// R 返回全局限流器，未开启限流时所有日志都放行。
func R() RateLimiter { return *limiter.Load() }

// ReplaceGlobals 替换全局 logger，并发安全。
func ReplaceGlobals(logger *zap.Logger, props *ZapProperties) {
	current.Store(&globals{logger: logger, sugar: logger.Sugar(), props: props})
}

func Sync() error {
	return L().Sync()
}

func SetLevel(l zapcore.Level) { current.Load().props.Level.SetLevel(l) }

func GetLevel() zapcore.Level { return current.Load().props.Level.Level() }

func setRateLimiter(rl RateLimiter) { limiter.Store(&rl) }

// rateLimiterFromEnv 读取 STASIS_LOG_RATE_ENABLE、STASIS_LOG_RATE_CREDIT_PER_SECOND
// 与 STASIS_LOG_RATE_MAX_BALANCE。
func rateLimiterFromEnv() RateLimiter {
	enabled, err := strconv.ParseBool(strings.TrimSpace(os.Getenv("STASIS_LOG_RATE_ENABLE")))
	if err != nil || !enabled {
		return unlimited{}
	}
	return utils.NewRateLimiter(envFloat("STASIS_LOG_RATE_CREDIT_PER_SECOND", 1), envFloat("STASIS_LOG_RATE_MAX_BALANCE", 60))
}

func envFloat(key string, def float64) float64 {
	if f, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64); err == nil {
		return f
	}
	return def
}
