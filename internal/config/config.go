package config

import (
	"context"
	"strings"

	"github.com/turtacn/kam/pkg/constants"
	"github.com/turtacn/kam/pkg/errors"
)

// Config holds the application's configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Batch   BatchConfig   `mapstructure:"batch"`
	History HistoryConfig `mapstructure:"history"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Vault   VaultConfig   `mapstructure:"vault"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Log     LogConfig     `mapstructure:"log"`
	Tracing TracingConfig `mapstructure:"tracing"`
	DataDir string        `mapstructure:"data_dir"`
}

type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
}

// AuthConfig configures the device authorization flow.
type AuthConfig struct {
	StartURL       string `mapstructure:"start_url"`
	Region         string `mapstructure:"region"`
	RequestTimeout int    `mapstructure:"request_timeout"` // in seconds
}

// BatchConfig configures the batch registration orchestrator.
type BatchConfig struct {
	// ScriptCommand is the executable invoked for each registration attempt.
	ScriptCommand string `mapstructure:"script_command"`
	// ScriptArgs are passed to the command before the generated arguments.
	ScriptArgs []string `mapstructure:"script_args"`
	// WorkDir is the working directory for the command.
	WorkDir string `mapstructure:"work_dir"`
	// ItemTimeout bounds a single registration attempt, in seconds.
	ItemTimeout int `mapstructure:"item_timeout"`
}

// HistoryConfig selects and configures the history ledger backend.
type HistoryConfig struct {
	// Backend is "file", "sqlite" or "postgres".
	Backend string `mapstructure:"backend"`
	// FilePath is the ledger location for the file backend.
	FilePath string `mapstructure:"file_path"`
	// DSN is the database connection string for database backends.
	DSN string `mapstructure:"dsn"`
}

// RedisConfig configures the optional redis-backed auth URL store.
type RedisConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	Addresses    []string `mapstructure:"addresses"`
	Password     string   `mapstructure:"password"`
	DB           int      `mapstructure:"db"`
	PoolSize     int      `mapstructure:"pool_size"`
	MinIdleConns int      `mapstructure:"min_idle_conns"`
}

type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	MountPath string `mapstructure:"mount_path"`
}

// KafkaConfig configures the audit event producer.
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	Environment    string  `mapstructure:"environment"`
	SamplingRate   float64 `mapstructure:"sampling_rate"`
}

// Validate checks for essential configuration values.
func (c *Config) Validate() error {
	if c.Auth.StartURL == "" {
		return errors.ErrValidation("auth.start_url must not be empty")
	}
	if c.Auth.Region == "" {
		return errors.ErrValidation("auth.region must not be empty")
	}
	switch c.History.Backend {
	case "file", "sqlite", "postgres":
	default:
		return errors.ErrValidation("history.backend must be file, sqlite or postgres").
			WithMetadata("backend", c.History.Backend)
	}
	if c.History.Backend == "postgres" && c.History.DSN == "" {
		return errors.ErrValidation("history.dsn is required for the postgres backend")
	}
	if c.Redis.Enabled && len(c.Redis.Addresses) == 0 {
		return errors.ErrValidation("redis.addresses must not be empty when redis is enabled")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.ErrValidation("kafka.brokers must not be empty when kafka is enabled")
	}
	return nil
}

// SecretResolver fetches a secret value by its reference path.
type SecretResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// ResolveSecrets replaces every "vault:" prefixed value with the secret it
// points at. Called after loading, before the config is handed out.
func (c *Config) ResolveSecrets(ctx context.Context, resolver SecretResolver) error {
	fields := []*string{
		&c.Redis.Password,
		&c.History.DSN,
		&c.Vault.Token,
	}
	for _, field := range fields {
		resolved, err := resolveSecret(ctx, resolver, *field)
		if err != nil {
			return err
		}
		*field = resolved
	}
	return nil
}

func resolveSecret(ctx context.Context, resolver SecretResolver, value string) (string, error) {
	if !strings.HasPrefix(value, constants.VaultSecretPrefix) {
		return value, nil
	}
	ref := strings.TrimPrefix(value, constants.VaultSecretPrefix)
	resolved, err := resolver.Resolve(ctx, ref)
	if err != nil {
		return "", errors.ErrServer("resolving secret reference failed").
			WithCause(err).
			WithMetadata("ref", ref)
	}
	return resolved, nil
}
