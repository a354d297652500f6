package config

import (
	"strings"
	"time"
)

// Config holds runtime configuration for the settings provisioner.
type Config struct {
	AppEnv   string         `mapstructure:"app_env"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Supabase SupabaseConfig `mapstructure:"supabase" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Admin    AdminConfig    `mapstructure:"admin" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Report   ReportConfig   `mapstructure:"report"`
}

// LoggerConfig controls slog output.
type LoggerConfig struct {
	Level  string        `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string        `mapstructure:"format" validate:"oneof=text json"`
	File   FileLogConfig `mapstructure:"file"`
}

// FileLogConfig enables a rotating log file next to stdout when Path is set.
type FileLogConfig struct {
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
}

// SentryConfig toggles error reporting.
type SentryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	DSN         string `mapstructure:"dsn" validate:"required_if=Enabled true"`
	Environment string `mapstructure:"environment"`
}

// SupabaseConfig describes the hosted project endpoint and its service-role secret.
type SupabaseConfig struct {
	URL            string        `mapstructure:"url" validate:"required,url"`
	ServiceKey     string        `mapstructure:"service_key" validate:"required"`
	RPCPath        string        `mapstructure:"rpc_path" validate:"required"`
	RESTPath       string        `mapstructure:"rest_path" validate:"required"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"gt=0"`
	CheckResponses bool          `mapstructure:"check_responses"`
}

// DatabaseConfig switches schema and admin stages to a direct Postgres connection when DSN is set.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// AdminConfig names the account promoted to the admin role.
type AdminConfig struct {
	Email string `mapstructure:"email" validate:"required,email"`
}

// RedisConfig enables the cross-operator run lock when Addr is set.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db" validate:"gte=0"`
	LockTTL  time.Duration `mapstructure:"lock_ttl" validate:"gt=0"`
}

// MetricsConfig configures the optional Pushgateway export.
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url" validate:"omitempty,url"`
	Job            string `mapstructure:"job" validate:"required"`
}

// ReportConfig controls the final console report.
type ReportConfig struct {
	Format   string `mapstructure:"format" validate:"oneof=text json yaml"`
	Language string `mapstructure:"language" validate:"oneof=en he"`
}

// RPCEndpoint returns the absolute URL of the SQL execution function.
func (c SupabaseConfig) RPCEndpoint() string {
	return joinURL(c.URL, c.RPCPath)
}

// RESTEndpoint returns the absolute URL of the table API root.
func (c SupabaseConfig) RESTEndpoint() string {
	return joinURL(c.URL, c.RESTPath)
}

// UseDirectDatabase reports whether SQL should bypass the RPC endpoint.
func (c *Config) UseDirectDatabase() bool {
	return strings.TrimSpace(c.Database.DSN) != ""
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
