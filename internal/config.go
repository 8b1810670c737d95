package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Server          ServerConfig          `mapstructure:"http_server"`
	Database        DatabaseConfig        `mapstructure:"database"`
	Security        SecurityConfig        `mapstructure:"security" validate:"required"`
	HardwareCatalog HardwareCatalogConfig `mapstructure:"hardware_catalog"`
	Marketplace     MarketplaceConfig     `mapstructure:"marketplace"`
	Notification    NotificationConfig    `mapstructure:"notification"`
	Observability   ObservabilityConfig   `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" validate:"required,min=1m"`
	Source          string        `mapstructure:"source" validate:"required"`
}

type SecurityConfig struct {
	AccessTokenSecret    string        `mapstructure:"access_token_secret" validate:"required,min=32"`
	RefreshTokenSecret   string        `mapstructure:"refresh_token_secret" validate:"required,min=32"`
	AccessTokenDuration  time.Duration `mapstructure:"access_token_duration" validate:"required,min=1m,max=1h"`
	RefreshTokenDuration time.Duration `mapstructure:"refresh_token_duration" validate:"required,min=1h"`
	BCryptCost           int           `mapstructure:"bcrypt_cost" validate:"required,min=4,max=15"`
}

const (
	CatalogModeMock = "mock"
	CatalogModeHTTP = "http"
)

type HardwareCatalogConfig struct {
	Mode        string        `mapstructure:"mode" validate:"required,oneof=mock http"`
	BaseURL     string        `mapstructure:"base_url" validate:"required_if=Mode http"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MockLatency time.Duration `mapstructure:"mock_latency"`
}

type MarketplaceConfig struct {
	SecurityKeyword string        `mapstructure:"security_keyword"`
	ExpiryInterval  time.Duration `mapstructure:"expiry_interval"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
}

type NotificationConfig struct {
	WebhookURL string        `mapstructure:"webhook_url" validate:"omitempty,url"`
	Workers    int           `mapstructure:"workers" validate:"omitempty,min=1,max=64"`
	QueueSize  int           `mapstructure:"queue_size" validate:"omitempty,min=1"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// LoadConfigFromEnv builds the configuration for container deployments where
// no config.yml is mounted.
func LoadConfigFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("HTTP_PORT", 8080),
			BaseURL:           getEnv("HTTP_BASE_URL", "http://localhost:8080"),
			AllowedOrigins:    getEnv("HTTP_ALLOWED_ORIGINS", "*"),
			ReadHeaderTimeout: getEnvAsDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:      getEnvAsDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Source:          getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Security: SecurityConfig{
			AccessTokenSecret:    getEnv("ACCESS_TOKEN_SECRET", ""),
			RefreshTokenSecret:   getEnv("REFRESH_TOKEN_SECRET", ""),
			AccessTokenDuration:  getEnvAsDuration("ACCESS_TOKEN_DURATION", 15*time.Minute),
			RefreshTokenDuration: getEnvAsDuration("REFRESH_TOKEN_DURATION", 7*24*time.Hour),
			BCryptCost:           getEnvAsInt("BCRYPT_COST", 12),
		},
		HardwareCatalog: HardwareCatalogConfig{
			Mode:        getEnv("HARDWARE_CATALOG_MODE", CatalogModeMock),
			BaseURL:     getEnv("HARDWARE_CATALOG_URL", ""),
			Timeout:     getEnvAsDuration("HARDWARE_CATALOG_TIMEOUT", 5*time.Second),
			MockLatency: getEnvAsDuration("HARDWARE_CATALOG_MOCK_LATENCY", 0),
		},
		Marketplace: MarketplaceConfig{
			SecurityKeyword: getEnv("MARKETPLACE_SECURITY_KEYWORD", "security"),
			ExpiryInterval:  getEnvAsDuration("MARKETPLACE_EXPIRY_INTERVAL", time.Hour),
			RequestTimeout:  getEnvAsDuration("MARKETPLACE_REQUEST_TIMEOUT", 5*time.Second),
		},
		Notification: NotificationConfig{
			WebhookURL: getEnv("NOTIFICATION_WEBHOOK_URL", ""),
			Workers:    getEnvAsInt("NOTIFICATION_WORKERS", 4),
			QueueSize:  getEnvAsInt("NOTIFICATION_QUEUE_SIZE", 100),
			Timeout:    getEnvAsDuration("NOTIFICATION_TIMEOUT", 5*time.Second),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
}

// ApplyDefaults fills optional settings left empty by the config source.
func (c *Config) ApplyDefaults() {
	if c.Marketplace.SecurityKeyword == "" {
		c.Marketplace.SecurityKeyword = "security"
	}
	if c.Marketplace.ExpiryInterval <= 0 {
		c.Marketplace.ExpiryInterval = time.Hour
	}
	if c.Marketplace.RequestTimeout <= 0 {
		c.Marketplace.RequestTimeout = 5 * time.Second
	}
	if c.HardwareCatalog.Mode == "" {
		c.HardwareCatalog.Mode = CatalogModeMock
	}
	if c.HardwareCatalog.Timeout <= 0 {
		c.HardwareCatalog.Timeout = 5 * time.Second
	}
	if c.Notification.Workers <= 0 {
		c.Notification.Workers = 4
	}
	if c.Notification.QueueSize <= 0 {
		c.Notification.QueueSize = 100
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

var configValidator = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) Validate() error {
	var errs []string

	if err := configValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.HardwareCatalog.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("hardware catalog config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if c.AccessTokenSecret != "" && c.AccessTokenSecret == c.RefreshTokenSecret {
		return errors.New("access and refresh token secrets must differ")
	}
	if c.RefreshTokenDuration < c.AccessTokenDuration {
		return errors.New("refresh_token_duration must be >= access_token_duration")
	}
	return nil
}

func (c *HardwareCatalogConfig) Validate() error {
	if c.Mode != CatalogModeHTTP {
		return nil
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base_url %q", c.BaseURL)
	}
	return nil
}
