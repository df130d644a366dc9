package config

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11" // Struct tags to environment variables
	"github.com/joho/godotenv"    // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort        string   `env:"APP_PORT" envDefault:"8080"`                              // Application port
	TrustedProxies []string `env:"TRUSTED_PROXIES" envDefault:"127.0.0.1" envSeparator:","` // Proxies allowed to set X-Forwarded-For

	DBUser            string `env:"DB_USER" envDefault:"root"`          // Database user
	DBPassword        string `env:"DB_PASSWORD"`                        // Database password
	DBHost            string `env:"DB_HOST" envDefault:"localhost"`     // Database host
	DBPort            string `env:"DB_PORT" envDefault:"3306"`          // Database port
	DBName            string `env:"DB_NAME" envDefault:"paylite"`       // Database name
	DBLockWaitTimeout int    `env:"DB_LOCK_WAIT_TIMEOUT" envDefault:"5"` // Seconds a row lock is awaited
	DBMaxOpenConns    int    `env:"DB_MAX_OPEN_CONNS" envDefault:"50"`

	JWTSecret string        `env:"JWT_SECRET,required"`      // JWT secret key
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"` // Token lifetime

	RedisAddr      string `env:"REDIS_ADDR"` // Empty disables login rate limiting
	RedisPass      string `env:"REDIS_PASS"`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0"`
	LoginRateLimit int    `env:"LOGIN_RATE_LIMIT" envDefault:"5"` // Attempts per minute per client IP

	DefaultCurrency  string        `env:"DEFAULT_CURRENCY" envDefault:"XAF"`
	OperationTimeout time.Duration `env:"OPERATION_TIMEOUT" envDefault:"10s"` // Upper bound for one ledger operation

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	IsProd   bool   `env:"IS_PROD" envDefault:"false"` // Is production environment
}

// LoadConfig loads configuration from the environment, after a .env file if present
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // Existing variables take precedence over the file
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.DefaultCurrency) != 3 {
		return fmt.Errorf("DEFAULT_CURRENCY must be a 3-letter code, got %q", c.DefaultCurrency)
	}
	if c.OperationTimeout <= 0 {
		return fmt.Errorf("OPERATION_TIMEOUT must be positive")
	}
	if c.DBLockWaitTimeout < 1 {
		return fmt.Errorf("DB_LOCK_WAIT_TIMEOUT must be at least 1 second")
	}
	return nil
}

// DSN returns the MySQL data source name. Row lock waits are bounded so a
// contended wallet surfaces as a retryable error instead of blocking.
func (c *Config) DSN() string {
	params := url.Values{}
	params.Set("parseTime", "true")
	params.Set("loc", "UTC")
	params.Set("charset", "utf8mb4")
	params.Set("innodb_lock_wait_timeout", strconv.Itoa(c.DBLockWaitTimeout))
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?" + params.Encode()
}

// Address returns the listen address for the HTTP server
func (c *Config) Address() string {
	return ":" + c.AppPort
}
