package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
	"github.com/de-tools/invoice-reconciler/pkg/services/reconcile"
)

const EnvPrefix = "RECONCILER"

type Config struct {
	Policy    string       `mapstructure:"policy"`
	DateOrder string       `mapstructure:"date_order"`
	Currency  string       `mapstructure:"currency"`
	LogLevel  string       `mapstructure:"log_level"`
	Server    ServerConfig `mapstructure:"server"`
	S3        S3Config     `mapstructure:"s3"`
	Batch     BatchConfig  `mapstructure:"batch"`
}

type ServerConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

type S3Config struct {
	Region string `mapstructure:"region"`
}

type BatchConfig struct {
	Parallelism int `mapstructure:"parallelism"`
}

// Load reads the optional config file at path, then applies RECONCILER_*
// environment overrides such as RECONCILER_SERVER_PORT.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("policy", string(domain.PolicyBalanced))
	v.SetDefault("date_order", string(reconcile.DayFirst))
	v.SetDefault("currency", "")
	v.SetDefault("log_level", zerolog.InfoLevel.String())
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_bytes", 32<<20)
	v.SetDefault("s3.region", "")
	v.SetDefault("batch.parallelism", 4)
}

func (c *Config) Validate() error {
	if _, err := reconcile.ParsePolicy(c.Policy); err != nil {
		return fmt.Errorf("invalid policy: %w", err)
	}
	if _, err := reconcile.ParseDateOrder(c.DateOrder); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}
	if c.Batch.Parallelism < 1 {
		return fmt.Errorf("batch.parallelism must be at least 1")
	}
	return nil
}

// DefaultPolicy returns the validated default policy.
func (c *Config) DefaultPolicy() domain.Policy {
	p, _ := reconcile.ParsePolicy(c.Policy)
	return p
}

func (c *Config) Order() reconcile.DateOrder {
	o, _ := reconcile.ParseDateOrder(c.DateOrder)
	return o
}

func (c *Config) Level() zerolog.Level {
	l, _ := zerolog.ParseLevel(c.LogLevel)
	return l
}
