package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Log      LogConfig
	HTTP     HTTPConfig
	Auth     AuthConfig
	Import   ImportConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	TrustedProxies []string
}

// AuthConfig holds the operator authentication settings. The import trigger
// is an internal admin surface; a shared bearer token is the boundary.
type AuthConfig struct {
	Token       string
	TokenIssuer string
}

// ImportConfig carries the import engine's fixed constants. It is passed
// into the engine at construction so tests can run with alternate values.
type ImportConfig struct {
	Currency             string
	PlaceholderProductID string
	ExternalIDMetaKey    string
	PaidDateMetaKey      string
	DefaultItemName      string
	MissingFieldSentinel string
	MaxUploadBytes       int64
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Load loads configuration from a TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with FEEDBRIDGE_ prefix (e.g., FEEDBRIDGE_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("FEEDBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		Auth: AuthConfig{
			Token:       v.GetString("auth.token"),
			TokenIssuer: v.GetString("auth.token_issuer"),
		},
		Import: ImportConfig{
			Currency:             v.GetString("import.currency"),
			PlaceholderProductID: v.GetString("import.placeholder_product_id"),
			ExternalIDMetaKey:    v.GetString("import.external_id_meta_key"),
			PaidDateMetaKey:      v.GetString("import.paid_date_meta_key"),
			DefaultItemName:      v.GetString("import.default_item_name"),
			MissingFieldSentinel: v.GetString("import.missing_field_sentinel"),
			MaxUploadBytes:       v.GetInt64("import.max_upload_bytes"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers built-in defaults
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "feedbridge")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "feedbridge")
	v.SetDefault("database.dbname", "feedbridge")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30)
	v.SetDefault("database.conn_max_idle_time", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("http.read_timeout", 30*time.Second)
	v.SetDefault("http.write_timeout", 60*time.Second)
	v.SetDefault("http.idle_timeout", 90*time.Second)
	v.SetDefault("http.max_header_bytes", 1<<20)

	v.SetDefault("auth.token_issuer", "feedbridge")

	v.SetDefault("import.currency", "USD")
	v.SetDefault("import.external_id_meta_key", "_tiktok_order_id")
	v.SetDefault("import.paid_date_meta_key", "_paid_date")
	v.SetDefault("import.default_item_name", "TikTok Item")
	v.SetDefault("import.missing_field_sentinel", "Unknown")
	v.SetDefault("import.max_upload_bytes", 10<<20)
}

// Validate checks that required settings are present and coherent
func (c *Config) Validate() error {
	if c.App.Port == "" {
		return fmt.Errorf("app.port is required")
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("database.host and database.dbname are required")
	}
	if c.Import.Currency == "" {
		return fmt.Errorf("import.currency is required")
	}
	if c.Import.ExternalIDMetaKey == "" {
		return fmt.Errorf("import.external_id_meta_key is required")
	}
	if c.App.Env == "production" && c.Auth.Token == "" {
		return fmt.Errorf("auth.token is required in production")
	}
	return nil
}
