package viper

import (
	"path/filepath"

	"github.com/cockroachdb/errors"
	spfviper "github.com/spf13/viper"
)

// Loader 封装 spf13/viper，按文件扩展名加载 YAML、JSON 或 TOML 配置。
type Loader struct {
	v *spfviper.Viper
}

func New() *Loader {
	return &Loader{v: spfviper.New()}
}

// LoadFile 读取配置文件，未知扩展名交给 viper 自行判断。
func (l *Loader) LoadFile(path string) error {
	l.v.SetConfigFile(path)
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		l.v.SetConfigType("yaml")
	case ".json":
		l.v.SetConfigType("json")
	case ".toml":
		l.v.SetConfigType("toml")
	}
	if err := l.v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "load config %s", path)
	}
	return nil
}

// IsSet 判断 key 是否出现在文件、环境变量或默认值中。
func (l *Loader) IsSet(key string) bool {
	return l.v.IsSet(key)
}

// UnmarshalKey 把 key 下的子树解码到 dst，dst 中已有的值作为缺省值保留。
func (l *Loader) UnmarshalKey(key string, dst any) error {
	if err := l.v.UnmarshalKey(key, dst); err != nil {
		return errors.Wrapf(err, "decode config key %s", key)
	}
	return nil
}
