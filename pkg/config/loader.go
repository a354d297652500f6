// Package config provides configuration loading and validation utilities.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// DefaultSupabaseURL is the project the provisioner was first written against.
	DefaultSupabaseURL = "https://yyvoavzgapsyycjwirmg.supabase.co"
	// DefaultAdminEmail is the account promoted when no override is configured.
	DefaultAdminEmail = "hedidjs@gmail.com"

	defaultConfigDir = "./configs"
)

// Load reads configuration from ./configs/<APP_ENV>.yaml and environment variables, validates it, and returns the resulting Config.
func Load() (*Config, error) {
	// env files are optional; earlier files win because godotenv never overrides
	for _, name := range []string{".env.local", ".env"} {
		_ = godotenv.Load(name)
	}

	return LoadFromDir(defaultConfigDir)
}

// LoadFromDir is Load without the dotenv step, reading the YAML file from dir.
// A missing file is not an error; defaults and environment variables still apply.
func LoadFromDir(dir string) (*Config, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := filepath.Join(dir, fmt.Sprintf("%s.yaml", env))
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.AppEnv = env

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct tags on cfg.
func Validate(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "text")
	v.SetDefault("logger.file.path", "")
	v.SetDefault("logger.file.max_size_mb", 10)
	v.SetDefault("logger.file.max_backups", 3)
	v.SetDefault("logger.file.max_age_days", 28)

	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "")

	v.SetDefault("supabase.url", DefaultSupabaseURL)
	v.SetDefault("supabase.service_key", "")
	v.SetDefault("supabase.rpc_path", "rest/v1/rpc/exec")
	v.SetDefault("supabase.rest_path", "rest/v1")
	v.SetDefault("supabase.timeout", 30*time.Second)
	v.SetDefault("supabase.check_responses", true)

	v.SetDefault("database.dsn", "")

	v.SetDefault("admin.email", DefaultAdminEmail)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_ttl", 5*time.Minute)

	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", "settings_provisioner")

	v.SetDefault("report.format", "text")
	v.SetDefault("report.language", "en")
}
