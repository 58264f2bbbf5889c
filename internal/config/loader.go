package config

import (
	"context"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/turtacn/kam/pkg/constants"
	"github.com/turtacn/kam/pkg/errors"
	"github.com/turtacn/kam/pkg/logger"
)

// LoadConfig loads the configuration from file and environment variables.
// File values are overridden by KAM_ prefixed environment variables, with
// dots replaced by underscores (e.g. KAM_AUTH_REGION).
func LoadConfig(log logger.Logger) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/kam/")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.ErrServer("reading config file failed").WithCause(err)
		}
	}

	v.SetEnvPrefix("KAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.ErrServer("unmarshalling config failed").WithCause(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Log level changes take effect on the next restart; the watch only
	// surfaces edits so operators see them acknowledged.
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info(context.Background(), "config file changed", logger.Fields{
			"file": e.Name,
			"op":   e.Op.String(),
		})
	})
	v.WatchConfig()

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", constants.DefaultServicePort)
	v.SetDefault("server.read_timeout", 15)
	// write timeout stays disabled so SSE streams are not cut off
	v.SetDefault("server.write_timeout", 0)

	v.SetDefault("auth.start_url", constants.DefaultStartURL)
	v.SetDefault("auth.region", constants.DefaultRegion)
	v.SetDefault("auth.request_timeout", 15)

	v.SetDefault("batch.script_command", "python3")
	v.SetDefault("batch.script_args", []string{"register.py"})
	v.SetDefault("batch.item_timeout", 300)

	v.SetDefault("history.backend", "file")
	v.SetDefault("history.file_path", "history.json")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.mount_path", constants.VaultMountPath)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.topic", "kam.audit")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "kam")
	v.SetDefault("tracing.environment", "production")
	v.SetDefault("tracing.sampling_rate", 1.0)

	v.SetDefault("data_dir", ".")
}
