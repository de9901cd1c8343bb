package stasis

import (
	"github.com/lk2023060901/stasis-go/pkg/log"
	"github.com/lk2023060901/stasis-go/pkg/util/viper"
)

const (
	defaultStringPoolSize   = 16
	defaultStringBufferSize = 4096
)

// StringPoolConfig 配置字符串序列化器使用的缓冲池。
type StringPoolConfig struct {
	// Size 为池中缓冲区的个数，同时也是并发解码字符串的上限。
	Size int `toml:"size" json:"size" mapstructure:"size"`
	// BufferSize 为每个缓冲区的初始容量，单位字节。
	BufferSize int `toml:"buffer-size" json:"buffer-size" mapstructure:"buffer-size"`
	// Dynamic 为 true 时缓冲区按需创建，最多 Size 个；否则在创建时全部预分配。
	Dynamic bool `toml:"dynamic" json:"dynamic" mapstructure:"dynamic"`
}

func (c StringPoolConfig) withDefaults() StringPoolConfig {
	if c.Size <= 0 {
		c.Size = defaultStringPoolSize
	}
	if c.BufferSize <= 0 {
		c.BufferSize = defaultStringBufferSize
	}
	return c
}

// Config 是注册表的可序列化配置。
type Config struct {
	// References 为引用策略：identity、equality 或 none。
	References string           `toml:"references" json:"references" mapstructure:"references"`
	StringPool StringPoolConfig `toml:"string-pool" json:"string-pool" mapstructure:"string-pool"`
	// MaxDepth 为对象的最大嵌套深度，不大于 0 时取默认值 1024。
	MaxDepth int `toml:"max-depth" json:"max-depth" mapstructure:"max-depth"`
	// Metrics 为 true 时更新 Prometheus 指标。
	Metrics bool `toml:"metrics" json:"metrics" mapstructure:"metrics"`
	// Log 非空时用于初始化全局 logger。
	Log *log.Config `toml:"log" json:"log" mapstructure:"log"`
}

// DefaultConfig 返回默认配置。
func DefaultConfig() *Config {
	return &Config{
		References: ReferencesIdentity,
		StringPool: StringPoolConfig{
			Size:       defaultStringPoolSize,
			BufferSize: defaultStringBufferSize,
		},
	}
}

// LoadConfig 从 YAML 或 JSON 文件加载配置，文件中缺省的字段取默认值。
// 配置项位于顶层的 stasis 键下。
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	if err := v.LoadFile(path); err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := v.UnmarshalKey("stasis", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewFromConfig 按配置创建注册表并注册全部内置序列化器。
func NewFromConfig(cfg *Config, opts ...Option) (*Registry, error) {
	refs, err := ReferenceStrategyByName(cfg.References)
	if err != nil {
		return nil, err
	}
	if cfg.Log != nil {
		logger, props, err := log.InitLogger(cfg.Log)
		if err != nil {
			return nil, err
		}
		log.ReplaceGlobals(logger, props)
	}

	base := []Option{
		WithReferences(refs),
		WithStringPool(cfg.StringPool),
		WithMetrics(cfg.Metrics),
		WithMaxDepth(cfg.MaxDepth),
	}
	return RegisterDefaults(New(append(base, opts...)...)), nil
}
