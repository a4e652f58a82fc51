package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

type Config struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	// http
	TrustedProxies         []string `toml:"trusted_proxies"`
	ShutdownTimeoutSeconds int      `toml:"shutdown_timeout_seconds"`
	// metrics
	MetricsNamespace string `toml:"metrics_namespace"`
	MetricsSubsystem string `toml:"metrics_subsystem"`

	// DBURL comes from the environment (DB_URL), never from the TOML file.
	// Empty means the stored-data routes are disabled.
	DBURL string `toml:"-"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the env section of the TOML file at path, then fills secrets
// from the process environment (after loading .env files, if present).
func Load(path, env string, dotEnvFiles ...string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config %s has no section for env %s", path, env)
	}

	if err := LoadDotEnv(dotEnvFiles...); err != nil {
		return nil, err
	}
	cfg.DBURL = os.Getenv("DB_URL")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads .env files into the environment. Missing files are not an
// error; existing variables are not overwritten.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var err error
	if c.Port <= 0 || c.Port > 65535 {
		err = multierr.Append(err, fmt.Errorf("port out of range: %d", c.Port))
	}
	if c.ShutdownTimeoutSeconds < 0 {
		err = multierr.Append(err, fmt.Errorf("negative shutdown_timeout_seconds: %d", c.ShutdownTimeoutSeconds))
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "trace", "debug", "info", "warn", "error", "fatal":
	default:
		err = multierr.Append(err, fmt.Errorf("unknown log_level: %s", c.LogLevel))
	}
	if c.DBURL != "" && !strings.HasPrefix(c.DBURL, "postgres://") && !strings.HasPrefix(c.DBURL, "postgresql://") {
		err = multierr.Append(err, errors.New("DB_URL must be a postgres:// URL"))
	}
	return err
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
