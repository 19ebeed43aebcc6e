package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "chatlist.yaml"

// Config is the runtime configuration of the chatlist commands.
type Config struct {
	Port     string      `yaml:"port" mapstructure:"port"`
	LogLevel string      `yaml:"log_level" mapstructure:"log_level"`
	Store    string      `yaml:"store" mapstructure:"store"` // memory | redis
	Redis    RedisConfig `yaml:"redis" mapstructure:"redis"`

	// EncryptionKey enables at-rest encryption of snapshots when set
	// (base64, 32 bytes). Fallback keys only decrypt, for key rotation.
	EncryptionKey          string   `yaml:"encryption_key" mapstructure:"encryption_key"`
	EncryptionFallbackKeys []string `yaml:"encryption_fallback_keys" mapstructure:"encryption_fallback_keys"`
}

// RedisConfig configures the redis store and locker.
type RedisConfig struct {
	Addr     string        `yaml:"addr" mapstructure:"addr"`
	Password string        `yaml:"password" mapstructure:"password"`
	DB       int           `yaml:"db" mapstructure:"db"`
	Prefix   string        `yaml:"prefix" mapstructure:"prefix"`
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`
	LockTTL  time.Duration `yaml:"lock_ttl" mapstructure:"lock_ttl"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Port:     "8080",
		LogLevel: "info",
		Store:    "memory",
		Redis: RedisConfig{
			Addr:    "localhost:6379",
			Prefix:  "chatlist:",
			LockTTL: 30 * time.Second,
		},
	}
}

// Load reads a YAML config file on top of the defaults.
// A missing file at the default path is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Apply decodes a generic override map (e.g. collected from flags or the
// environment) into the config. Durations may be given as strings ("5s").
func (c *Config) Apply(overrides map[string]any) error {
	if len(overrides) == 0 {
		return nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           c,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(overrides); err != nil {
		return fmt.Errorf("invalid config override: %w", err)
	}
	return c.Validate()
}

// Validate checks the fields that have a closed set of values.
func (c Config) Validate() error {
	switch c.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown store %q (want memory or redis)", c.Store)
	}
	if c.Port == "" {
		return errors.New("port must not be empty")
	}
	return nil
}
