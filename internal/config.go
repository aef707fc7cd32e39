package internal

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	DefaultTokenTTL            = 30 * 24 * time.Hour
	DefaultBCryptCost          = 10
	DefaultBootstrapAdminEmail = "admin@example.com"
	DefaultPort                = 8000
	DefaultAuthRateLimit       = 30
	MinJWTSecretLength         = 32

	// DevClientOrigin is the local web client, always allowed.
	DevClientOrigin = "http://localhost:8081"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server" envPrefix:"SERVER_"`
	Database      DatabaseConfig      `mapstructure:"database" envPrefix:"DB_"`
	Security      SecurityConfig      `mapstructure:"security" envPrefix:"SECURITY_"`
	OAuth         OAuthConfig         `mapstructure:"oauth" envPrefix:"OAUTH_"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port                   int           `mapstructure:"port" env:"PORT"`
	BaseURL                string        `mapstructure:"base_url" env:"BASE_URL"`
	AllowedOrigins         string        `mapstructure:"allowed_origins" env:"ALLOWED_ORIGINS"`
	ReadHeaderTimeout      time.Duration `mapstructure:"read_header_timeout" env:"READ_HEADER_TIMEOUT" envDefault:"5s"`
	ReadTimeout            time.Duration `mapstructure:"read_timeout" env:"READ_TIMEOUT" envDefault:"15s"`
	IdleTimeout            time.Duration `mapstructure:"idle_timeout" env:"IDLE_TIMEOUT" envDefault:"60s"`
	WriteTimeout           time.Duration `mapstructure:"write_timeout" env:"WRITE_TIMEOUT" envDefault:"15s"`
	AuthRateLimitPerMinute int           `mapstructure:"auth_rate_limit_per_minute" env:"AUTH_RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	OpenAPIPath            string        `mapstructure:"openapi_path" env:"OPENAPI_PATH" envDefault:"./api/openapi.yml"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" env:"MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" env:"CONN_MAX_LIFETIME" envDefault:"30m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" env:"CONN_MAX_IDLE_TIME" envDefault:"5m"`
	Source          string        `mapstructure:"source" env:"SOURCE,required"`
}

type SecurityConfig struct {
	JWTSecret           string        `mapstructure:"jwt_secret" env:"JWT_SECRET,required"`
	TokenTTL            time.Duration `mapstructure:"token_ttl" env:"TOKEN_TTL" envDefault:"720h"`
	BCryptCost          int           `mapstructure:"bcrypt_cost" env:"BCRYPT_COST" envDefault:"10"`
	BootstrapAdminEmail string        `mapstructure:"bootstrap_admin_email" env:"BOOTSTRAP_ADMIN_EMAIL" envDefault:"admin@example.com"`
	CookieSecure        bool          `mapstructure:"cookie_secure" env:"COOKIE_SECURE"`
}

type OAuthConfig struct {
	Google   OAuthProviderConfig `mapstructure:"google" envPrefix:"GOOGLE_"`
	Facebook OAuthProviderConfig `mapstructure:"facebook" envPrefix:"FACEBOOK_"`
}

type OAuthProviderConfig struct {
	ClientID     string `mapstructure:"client_id" env:"CLIENT_ID"`
	ClientSecret string `mapstructure:"client_secret" env:"CLIENT_SECRET"`
	RedirectURL  string `mapstructure:"redirect_url" env:"REDIRECT_URL"`
}

// Enabled reports whether the provider has enough configuration to run a code exchange.
func (c OAuthProviderConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RedirectURL != ""
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging" envPrefix:"LOG_"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" env:"LEVEL" envDefault:"info"`
	Format string `mapstructure:"format" env:"FORMAT" envDefault:"json"`
}

// LoadConfigFromEnv builds the configuration from process environment only.
func LoadConfigFromEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills zero values left by a partial config file.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.AuthRateLimitPerMinute == 0 {
		c.Server.AuthRateLimitPerMinute = DefaultAuthRateLimit
	}
	if c.Security.TokenTTL <= 0 {
		c.Security.TokenTTL = DefaultTokenTTL
	}
	if c.Security.BCryptCost == 0 {
		c.Security.BCryptCost = DefaultBCryptCost
	}
	if c.Security.BootstrapAdminEmail == "" {
		c.Security.BootstrapAdminEmail = DefaultBootstrapAdminEmail
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "json"
	}
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Observability.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	for _, origin := range c.Origins() {
		if origin == "*" {
			continue
		}
		u, err := url.Parse(origin)
		if err != nil {
			return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid allowed origin %s: scheme and host are required", origin)
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	if c.AuthRateLimitPerMinute < 0 {
		return errors.New("auth_rate_limit_per_minute cannot be negative")
	}
	return nil
}

// Origins splits the comma separated allow list and appends DevClientOrigin.
func (c *ServerConfig) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" && origin != DevClientOrigin {
			origins = append(origins, origin)
		}
	}
	return append(origins, DevClientOrigin)
}

func (c *DatabaseConfig) Validate() error {
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

// Validate refuses to start without a usable signing secret.
func (c *SecurityConfig) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if len(c.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("jwt_secret must be at least %d characters", MinJWTSecretLength)
	}
	if c.BCryptCost < 10 || c.BCryptCost > 15 {
		return errors.New("bcrypt_cost must be between 10 and 15")
	}
	if c.TokenTTL < time.Minute {
		return errors.New("token_ttl must be at least one minute")
	}
	return nil
}

func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown level %q", c.Level)
	}
	switch c.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	return nil
}
