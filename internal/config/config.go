// Package config loads application configuration from defaults, an optional
// YAML file and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	App      AppConfig      `mapstructure:"app"`
	Log      LogConfig      `mapstructure:"log"`
	AI       AIConfig       `mapstructure:"ai"`
	Mail     MailConfig     `mapstructure:"mail"`
	Cleanup  CleanupConfig  `mapstructure:"cleanup"`
	Storage  StorageConfig  `mapstructure:"storage"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds connection settings. RawDSN, when set, wins over the
// discrete PostgreSQL fields; a "sqlite://" prefix selects SQLite.
type DatabaseConfig struct {
	RawDSN   string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	Debug    bool   `mapstructure:"debug"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev           bool   `mapstructure:"dev"`
	Migrations    bool   `mapstructure:"migrations"`
	MigrationsDir string `mapstructure:"migrations_dir"`
	SessionSecret string `mapstructure:"session_secret"`
}

// LogConfig selects the zap preset and level.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// AIConfig selects the email drafting provider.
type AIConfig struct {
	Provider     string        `mapstructure:"provider"` // groq or gemini
	GroqAPIKey   string        `mapstructure:"groq_api_key"`
	GroqBaseURL  string        `mapstructure:"groq_base_url"`
	GroqModel    string        `mapstructure:"groq_model"`
	GeminiAPIKey string        `mapstructure:"gemini_api_key"`
	GeminiModel  string        `mapstructure:"gemini_model"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// MailConfig selects the outbound mail provider.
type MailConfig struct {
	Provider      string        `mapstructure:"provider"` // resend or smtp
	From          string        `mapstructure:"from"`
	ResendAPIKey  string        `mapstructure:"resend_api_key"`
	ResendBaseURL string        `mapstructure:"resend_base_url"`
	SMTPAddr      string        `mapstructure:"smtp_addr"`
	SMTPUser      string        `mapstructure:"smtp_user"`
	SMTPPassword  string        `mapstructure:"smtp_password"`
	Timeout       time.Duration `mapstructure:"timeout"`
	SenderTTL     time.Duration `mapstructure:"sender_ttl"`
}

// CleanupConfig tunes removal of inactive clients.
type CleanupConfig struct {
	Retention   time.Duration `mapstructure:"retention"`
	OnDashboard bool          `mapstructure:"on_dashboard"`
}

// StorageConfig locates uploaded avatars.
type StorageConfig struct {
	AvatarDir     string `mapstructure:"avatar_dir"`
	AvatarBaseURL string `mapstructure:"avatar_base_url"`
	MaxAvatarSize int64  `mapstructure:"max_avatar_size"`
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	if d.RawDSN != "" {
		return d.RawDSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format, as expected
// by golang-migrate.
func (d DatabaseConfig) URL() string {
	if strings.HasPrefix(d.RawDSN, "postgres://") || strings.HasPrefix(d.RawDSN, "postgresql://") {
		return d.RawDSN
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// env maps config keys to the environment variable names deployments use.
var env = map[string]string{
	"server.port":             "PORT",
	"server.read_timeout":     "SERVER_READ_TIMEOUT",
	"server.write_timeout":    "SERVER_WRITE_TIMEOUT",
	"server.idle_timeout":     "SERVER_IDLE_TIMEOUT",
	"database.dsn":            "DATABASE_DSN",
	"database.host":           "DB_HOST",
	"database.port":           "DB_PORT",
	"database.user":           "DB_USER",
	"database.password":       "DB_PASSWORD",
	"database.name":           "DB_NAME",
	"database.sslmode":        "DB_SSLMODE",
	"database.debug":          "DB_DEBUG",
	"app.dev":                 "DEV",
	"app.migrations":          "MIGRATIONS",
	"app.migrations_dir":      "MIGRATIONS_DIR",
	"app.session_secret":      "SESSION_SECRET",
	"log.level":               "LOG_LEVEL",
	"log.format":              "LOG_FORMAT",
	"ai.provider":             "AI_PROVIDER",
	"ai.groq_api_key":         "GROQ_API_KEY",
	"ai.groq_base_url":        "GROQ_BASE_URL",
	"ai.groq_model":           "GROQ_MODEL",
	"ai.gemini_api_key":       "GEMINI_API_KEY",
	"ai.gemini_model":         "GEMINI_MODEL",
	"ai.timeout":              "AI_TIMEOUT",
	"mail.provider":           "MAIL_PROVIDER",
	"mail.from":               "FROM_EMAIL",
	"mail.resend_api_key":     "RESEND_API_KEY",
	"mail.resend_base_url":    "RESEND_BASE_URL",
	"mail.smtp_addr":          "SMTP_ADDR",
	"mail.smtp_user":          "SMTP_USER",
	"mail.smtp_password":      "SMTP_PASSWORD",
	"mail.timeout":            "MAIL_TIMEOUT",
	"mail.sender_ttl":         "MAIL_SENDER_TTL",
	"cleanup.retention":       "CLEANUP_RETENTION",
	"cleanup.on_dashboard":    "CLEANUP_ON_DASHBOARD",
	"storage.avatar_dir":      "AVATAR_DIR",
	"storage.avatar_base_url": "AVATAR_BASE_URL",
	"storage.max_avatar_size": "MAX_AVATAR_SIZE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "clientsync")
	v.SetDefault("database.password", "clientsync")
	v.SetDefault("database.name", "clientsync")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.debug", false)

	v.SetDefault("app.dev", true)
	v.SetDefault("app.migrations", false)
	v.SetDefault("app.migrations_dir", "migrations")
	v.SetDefault("app.session_secret", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("ai.provider", "groq")
	v.SetDefault("ai.groq_base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("ai.groq_model", "llama3-8b-8192")
	v.SetDefault("ai.gemini_model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout", 30*time.Second)
	v.SetDefault("ai.groq_api_key", "")
	v.SetDefault("ai.gemini_api_key", "")

	v.SetDefault("mail.provider", "resend")
	v.SetDefault("mail.from", "onboarding@resend.dev")
	v.SetDefault("mail.resend_base_url", "https://api.resend.com")
	v.SetDefault("mail.timeout", 15*time.Second)
	v.SetDefault("mail.sender_ttl", 5*time.Minute)
	v.SetDefault("mail.resend_api_key", "")
	v.SetDefault("mail.smtp_addr", "")
	v.SetDefault("mail.smtp_user", "")
	v.SetDefault("mail.smtp_password", "")

	v.SetDefault("cleanup.retention", 30*24*time.Hour)
	v.SetDefault("cleanup.on_dashboard", false)

	v.SetDefault("storage.avatar_dir", "data/avatars")
	v.SetDefault("storage.avatar_base_url", "/avatars")
	v.SetDefault("storage.max_avatar_size", 2<<20)
}

// Load builds the configuration. path may name a YAML file; an empty path
// reads defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	for key, name := range env {
		if err := v.BindEnv(key, name); err != nil {
			return nil, fmt.Errorf("bind %s: %w", name, err)
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	switch c.AI.Provider {
	case "groq", "gemini":
	default:
		errs = append(errs, fmt.Errorf("ai.provider %q: want groq or gemini", c.AI.Provider))
	}
	switch c.Mail.Provider {
	case "resend", "smtp":
	default:
		errs = append(errs, fmt.Errorf("mail.provider %q: want resend or smtp", c.Mail.Provider))
	}
	if c.Cleanup.Retention <= 0 {
		errs = append(errs, errors.New("cleanup.retention must be positive"))
	}
	if !c.App.Dev && c.App.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required outside dev mode"))
	}
	return errors.Join(errs...)
}
