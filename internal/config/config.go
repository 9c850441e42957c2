package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	yaml "gopkg.in/yaml.v3"
)

type AppConfig struct {
	RankingServiceURL string        `yaml:"ranking_service_url"`
	DefaultRegion     string        `yaml:"default_region"`
	ListenAddr        string        `yaml:"listen_addr"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	RefreshInterval   time.Duration `yaml:"refresh_interval"`

	PostgresDSN           string `yaml:"postgres_dsn"`
	PostgresMigrationsDir string `yaml:"postgres_migrations_dir"`
	DBPath                string `yaml:"db_path"`
	DBMigrationsDir       string `yaml:"db_migrations_dir"`
	RedisURL              string `yaml:"redis_url"`

	// bcrypt hash of the key accepted by admin endpoints
	AdminKeyHash string `yaml:"admin_key_hash"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogFile   string `yaml:"log_file"`

	Env string `yaml:"app"`
}

func (c *AppConfig) IsProd() bool { return strings.EqualFold(c.Env, "prod") }

func (c *AppConfig) OnLambda() bool { return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" }

// Load resolves configuration from defaults, then the YAML file named by
// CONFIG_FILE, then environment variables. Outside Lambda, .env and
// .env.local are loaded first without overriding the real environment.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		DefaultRegion:   "norcal",
		ListenAddr:      ":8080",
		RequestTimeout:  10 * time.Second,
		RefreshInterval: 15 * time.Minute,
		LogLevel:        "info",
		LogFormat:       "legacy",
	}
	if !cfg.OnLambda() {
		_ = godotenv.Load(".env", ".env.local")
	}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.RankingServiceURL = strings.TrimRight(cfg.RankingServiceURL, "/")
	if cfg.RankingServiceURL == "" {
		return nil, errors.New("RANKING_SERVICE_URL is required")
	}
	return cfg, nil
}

func (c *AppConfig) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *AppConfig) applyEnv() error {
	setString(&c.RankingServiceURL, "RANKING_SERVICE_URL")
	setString(&c.DefaultRegion, "DEFAULT_REGION")
	setString(&c.ListenAddr, "LISTEN_ADDR")
	setString(&c.PostgresDSN, "POSTGRES_DSN")
	setString(&c.PostgresMigrationsDir, "POSTGRES_MIGRATIONS_DIR")
	setString(&c.DBPath, "DB_PATH")
	setString(&c.DBMigrationsDir, "DB_MIGRATIONS_DIR")
	setString(&c.RedisURL, "REDIS_URL")
	setString(&c.AdminKeyHash, "ADMIN_KEY_HASH")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")
	setString(&c.LogFile, "LOG_FILE")
	setString(&c.Env, "APP")

	if err := setDuration(&c.RequestTimeout, "REQUEST_TIMEOUT"); err != nil {
		return err
	}
	return setDuration(&c.RefreshInterval, "ROSTER_REFRESH_INTERVAL")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// setDuration accepts Go durations ("90s") or plain seconds ("90").
func setDuration(dst *time.Duration, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		d, err = time.ParseDuration(v + "s")
	}
	if err != nil || d < 0 {
		return fmt.Errorf("%s: invalid duration %q", key, v)
	}
	*dst = d
	return nil
}
