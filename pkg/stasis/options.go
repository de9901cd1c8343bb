package stasis

import (
	"github.com/lk2023060901/stasis-go/pkg/log"
	"github.com/lk2023060901/stasis-go/pkg/metrics"
)

const defaultMaxDepth = 1024

type options struct {
	references ReferenceStrategy
	stringPool StringPoolConfig
	logger     *log.MLogger
	metrics    bool
	maxDepth   int
}

func defaultOptions() *options {
	return &options{
		references: Identity(),
		stringPool: StringPoolConfig{}.withDefaults(),
		maxDepth:   defaultMaxDepth,
	}
}

// Option 用于配置 Registry。
type Option func(opt *options)

// WithReferences 设置新建会话使用的引用策略。
func WithReferences(s ReferenceStrategy) Option {
	return func(opt *options) {
		if s != nil {
			opt.references = s
		}
	}
}

// WithStringPool 设置字符串序列化器的缓冲池。
func WithStringPool(cfg StringPoolConfig) Option {
	return func(opt *options) {
		opt.stringPool = cfg.withDefaults()
	}
}

func WithLogger(logger *log.MLogger) Option {
	return func(opt *options) {
		opt.logger = logger
	}
}

// WithMetrics 开启 Prometheus 指标，并把指标注册到全局 Registerer。
func WithMetrics(enable bool) Option {
	return func(opt *options) {
		opt.metrics = enable
		if enable {
			metrics.RegisterStasisMetrics(metrics.GetRegisterer())
		}
	}
}

// WithMaxDepth 设置会话中对象的最大嵌套深度。
func WithMaxDepth(depth int) Option {
	return func(opt *options) {
		if depth > 0 {
			opt.maxDepth = depth
		}
	}
}
