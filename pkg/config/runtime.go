package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// RuntimeConfig 进程级运行参数(日志、随机种子、存储路径等)
type RuntimeConfig struct {
	LogLevel       string `mapstructure:"logLevel"`
	Seed           int64  `mapstructure:"seed"`
	TPS            int    `mapstructure:"tps"`
	CombatConfig   string `mapstructure:"combatConfig"`
	SaveAppName    string `mapstructure:"saveAppName"`
	KillLedgerPath string `mapstructure:"killLedgerPath"`
	MetricsEnabled bool   `mapstructure:"metricsEnabled"`
	EnemyCount     int    `mapstructure:"enemyCount"`
}

// EnvPrefix 环境变量前缀，例如 SHOOTER_LOGLEVEL=debug
const EnvPrefix = "SHOOTER"

// LoadRuntime 读取 configDir 下的 shooter.yaml，并允许环境变量覆盖
// 配置文件不存在时使用默认值
func LoadRuntime(configDir string) (*RuntimeConfig, error) {
	v := viper.New()

	v.SetDefault("logLevel", "info")
	v.SetDefault("seed", 1)
	v.SetDefault("tps", 60)
	v.SetDefault("combatConfig", DefaultCombatConfigPath)
	v.SetDefault("saveAppName", "shooter")
	v.SetDefault("killLedgerPath", "")
	v.SetDefault("metricsEnabled", true)
	v.SetDefault("enemyCount", 3)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("shooter")
	v.SetConfigType("yaml")
	if configDir != "" {
		v.AddConfigPath(configDir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading runtime config: %w", err)
		}
	}

	var rc RuntimeConfig
	if err := v.Unmarshal(&rc); err != nil {
		return nil, fmt.Errorf("failed to decode runtime config: %w", err)
	}
	if rc.TPS <= 0 {
		return nil, fmt.Errorf("tps must be positive, got %d", rc.TPS)
	}
	return &rc, nil
}
