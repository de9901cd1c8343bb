package application

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/lk2023060901/stasis-go/pkg/log"
	"github.com/lk2023060901/stasis-go/pkg/stasis"
	"github.com/lk2023060901/stasis-go/pkg/util/viper"
)

const (
	defaultConfigPath = "./stasis.yaml"
	envConfigPath     = "STASIS_CONFIG_FILE_PATH"
)

// Application 持有进程级的配置、日志与注册表。
type Application struct {
	configPath string
	cfg        *stasis.Config
	registry   *stasis.Registry
	loggers    map[string]*log.MLogger
}

func New() *Application {
	return &Application{}
}

// Run 解析命令行参数并完成初始化。配置文件路径的优先级从低到高为：
//  1. 默认 ./stasis.yaml，不存在时使用默认配置
//  2. 环境变量 STASIS_CONFIG_FILE_PATH
//  3. 命令行 --config <path> 或 --config=<path>
//
// 显式指定的文件必须存在。
func (a *Application) Run(args []string, opts ...stasis.Option) error {
	path, explicit, err := resolveConfigPath(args)
	if err != nil {
		return err
	}
	if err := a.initGlobalLoggerFromEnv(); err != nil {
		return err
	}

	cfg := stasis.DefaultConfig()
	if _, statErr := os.Stat(path); statErr == nil || explicit {
		cfg, err = stasis.LoadConfig(path)
		if err != nil {
			return err
		}
		if err := a.initModuleLoggers(path); err != nil {
			return err
		}
		a.configPath = path
	}
	a.cfg = cfg

	var base []stasis.Option
	if lg, ok := a.loggers["stasis"]; ok {
		base = append(base, stasis.WithLogger(lg.With(log.FieldComponent("registry"))))
	}
	registry, err := stasis.NewFromConfig(cfg, append(base, opts...)...)
	if err != nil {
		return err
	}
	a.registry = registry
	log.Info("application started",
		zap.String("config", a.configPath),
		zap.String("references", registry.References().Name()),
		zap.Int("serializers", registry.Len()))
	return nil
}

// ConfigPath 返回实际加载的配置文件，未加载时为空。
func (a *Application) ConfigPath() string { return a.configPath }

func (a *Application) Config() *stasis.Config { return a.cfg }

// Registry 返回按配置创建并注册了内置序列化器的注册表。
func (a *Application) Registry() *stasis.Registry { return a.registry }

// Logger 返回配置文件 logging 段中的命名 logger，未配置时退回全局 logger。
func (a *Application) Logger(name string) *log.MLogger {
	if lg, ok := a.loggers[name]; ok && lg != nil {
		return lg
	}
	return log.With(log.FieldModule(name))
}

func resolveConfigPath(args []string) (string, bool, error) {
	path, explicit := defaultConfigPath, false
	if env := strings.TrimSpace(os.Getenv(envConfigPath)); env != "" {
		path, explicit = env, true
	}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--config" {
			if i+1 >= len(args) {
				return "", false, errors.New("missing value after --config")
			}
			path, explicit = args[i+1], true
			i++
			continue
		}
		if val, ok := strings.CutPrefix(arg, "--config="); ok && val != "" {
			path, explicit = val, true
		}
	}
	return path, explicit, nil
}

// initGlobalLoggerFromEnv 在 STASIS_LOG_ENABLE 开启时按环境变量重建全局 logger：
//   - STASIS_LOG_LEVEL：日志级别，默认 info
//   - STASIS_LOG_FORMAT：json 或 console，默认 console
//   - STASIS_LOG_STDOUT：是否输出到标准输出
//   - STASIS_LOG_FILE_DIR、STASIS_LOG_FILE：文件日志的目录与文件名
func (a *Application) initGlobalLoggerFromEnv() error {
	if !getenvBool("STASIS_LOG_ENABLE", false) {
		return nil
	}
	cfg := &log.Config{
		Level:  getenvDefault("STASIS_LOG_LEVEL", "info"),
		Format: getenvDefault("STASIS_LOG_FORMAT", log.FormatConsole),
		Stdout: getenvBool("STASIS_LOG_STDOUT", false),
		File: log.FileLogConfig{
			RootPath: getenvDefault("STASIS_LOG_FILE_DIR", ""),
			Filename: getenvDefault("STASIS_LOG_FILE", ""),
		},
	}
	logger, props, err := log.InitLogger(cfg)
	if err != nil {
		return errors.Wrap(err, "init global logger from env")
	}
	log.ReplaceGlobals(logger, props)
	return nil
}

// initModuleLoggers 按 logging 段创建命名 logger，例如：
//
//	logging:
//	  stasis:
//	    level: debug
//	    stdout: true
func (a *Application) initModuleLoggers(path string) error {
	loader := viper.New()
	if err := loader.LoadFile(path); err != nil {
		return err
	}
	if !loader.IsSet("logging") {
		return nil
	}
	raw := make(map[string]log.Config)
	if err := loader.UnmarshalKey("logging", &raw); err != nil {
		return err
	}

	a.loggers = make(map[string]*log.MLogger, len(raw))
	for name, lc := range raw {
		logger, _, err := log.InitLogger(&lc)
		if err != nil {
			return errors.Wrapf(err, "init module logger %q", name)
		}
		a.loggers[name] = &log.MLogger{Logger: logger.With(log.FieldModule(name))}
	}
	return nil
}

func getenvDefault(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getenvBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}
