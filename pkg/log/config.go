// Copyright 2019 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// 单位 MB。
	defaultLogMaxSize = 300

	FormatJSON    = "json"
	FormatConsole = "console"
)

// FileLogConfig 描述轮转文件日志，Filename 为空时不写文件。
type FileLogConfig struct {
	RootPath   string `mapstructure:"rootpath" json:"rootpath"`
	Filename   string `mapstructure:"filename" json:"filename"`
	MaxSize    int    `mapstructure:"max-size" json:"max-size"`
	MaxDays    int    `mapstructure:"max-days" json:"max-days"`
	MaxBackups int    `mapstructure:"max-backups" json:"max-backups"`
}

// Config 对应配置文件中的 logging 段。
type Config struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"`
	Stdout bool   `mapstructure:"stdout" json:"stdout"`

	File FileLogConfig `mapstructure:"file" json:"file"`

	DisableTimestamp  bool `mapstructure:"disable-timestamp" json:"disable-timestamp"`
	DisableCaller     bool `mapstructure:"disable-caller" json:"disable-caller"`
	DisableStacktrace bool `mapstructure:"disable-stacktrace" json:"disable-stacktrace"`
	// Development 打开后 Warn 即带堆栈，DPanic 会真正 panic。
	Development bool `mapstructure:"development" json:"development"`
	// Sampling 按秒采样，见 zapcore.NewSamplerWithOptions。
	Sampling *zap.SamplingConfig `mapstructure:"sampling" json:"sampling"`
}

type ZapProperties struct {
	Core   zapcore.Core
	Syncer zapcore.WriteSyncer
	Level  zap.AtomicLevel
}

func (cfg *Config) encoder() zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.MessageKey = "message"
	ec.StacktraceKey = "stack"
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	ec.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05.000 -07:00")
	ec.EncodeDuration = zapcore.StringDurationEncoder
	if cfg.DisableTimestamp {
		ec.TimeKey = zapcore.OmitKey
	}
	if cfg.Format == FormatJSON {
		return zapcore.NewJSONEncoder(ec)
	}
	return zapcore.NewConsoleEncoder(ec)
}

func (cfg *Config) buildOptions(errSink zapcore.WriteSyncer) []zap.Option {
	opts := []zap.Option{zap.ErrorOutput(errSink)}
	stackAt := zapcore.ErrorLevel
	if cfg.Development {
		opts = append(opts, zap.Development())
		stackAt = zapcore.WarnLevel
	}
	if !cfg.DisableCaller {
		opts = append(opts, zap.AddCaller())
	}
	if !cfg.DisableStacktrace {
		opts = append(opts, zap.AddStacktrace(stackAt))
	}
	if s := cfg.Sampling; s != nil {
		opts = append(opts, zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewSamplerWithOptions(core, time.Second, s.Initial, s.Thereafter, zapcore.SamplerHook(s.Hook))
		}))
	}
	return opts
}
