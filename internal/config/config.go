// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Render    RenderConfig
	QR        QRConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
	// MaxRequestBytes caps request bodies on the API routes.
	MaxRequestBytes int64
	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// friends. Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool
}

type DatabaseConfig struct {
	URI            string
	Database       string
	MaxPoolSize    uint64
	MinPoolSize    uint64
	ConnectTimeout time.Duration
	// OperationTimeout bounds each server selection and socket read.
	OperationTimeout time.Duration
}

type AuthConfig struct {
	IssuerURL string
	// JWKSURL defaults to the issuer's /.well-known/jwks.json.
	JWKSURL  string
	Audience string
}

type RenderConfig struct {
	// EndpointURL enables server-side rendering when set.
	EndpointURL string
	Timeout     time.Duration
}

type QRConfig struct {
	CacheTTL       time.Duration
	SweepThreshold int
	ImageQuality   float64
	RenderTimeout  time.Duration
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
			Host: getEnvOrDefault("HOST", "0.0.0.0"),
			Env:  getEnvOrDefault("ENV", "development"),

			MaxRequestBytes:   int64(getEnvAsInt("MAX_REQUEST_BYTES", 8<<20)),
			TrustProxyHeaders: getEnvAsBool("TRUST_PROXY_HEADERS", false),
		},
		Database: DatabaseConfig{
			URI:              os.Getenv("MONGODB_URI"),
			Database:         getEnvOrDefault("MONGODB_DATABASE", "qrstudio"),
			MaxPoolSize:      uint64(getEnvAsInt("MONGODB_MAX_POOL_SIZE", 50)),
			MinPoolSize:      uint64(getEnvAsInt("MONGODB_MIN_POOL_SIZE", 0)),
			ConnectTimeout:   getEnvAsDuration("MONGODB_CONNECT_TIMEOUT", 10*time.Second),
			OperationTimeout: getEnvAsDuration("MONGODB_OPERATION_TIMEOUT", 15*time.Second),
		},
		Auth: AuthConfig{
			IssuerURL: os.Getenv("AUTH_ISSUER_URL"),
			JWKSURL:   os.Getenv("AUTH_JWKS_URL"),
			Audience:  os.Getenv("AUTH_AUDIENCE"),
		},
		Render: RenderConfig{
			EndpointURL: os.Getenv("RENDER_ENDPOINT_URL"),
			Timeout:     getEnvAsDuration("RENDER_TIMEOUT", 10*time.Second),
		},
		QR: QRConfig{
			CacheTTL:       getEnvAsDuration("QR_CACHE_TTL", 5*time.Minute),
			SweepThreshold: getEnvAsInt("QR_CACHE_SWEEP_THRESHOLD", 50),
			ImageQuality:   getEnvAsFloat("QR_IMAGE_QUALITY", 0.92),
			RenderTimeout:  getEnvAsDuration("QR_RENDER_TIMEOUT", 30*time.Second),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvAsFloat("RATE_LIMIT_RPS", 5),
			Burst: getEnvAsInt("RATE_LIMIT_BURST", 20),
		},
	}

	if config.Auth.JWKSURL == "" && config.Auth.IssuerURL != "" {
		config.Auth.JWKSURL = config.Auth.IssuerURL + "/.well-known/jwks.json"
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.Database.URI == "" {
		return fmt.Errorf("MONGODB_URI is required")
	}
	if c.Auth.IssuerURL == "" {
		return fmt.Errorf("AUTH_ISSUER_URL is required")
	}
	if c.QR.ImageQuality <= 0 || c.QR.ImageQuality > 1 {
		return fmt.Errorf("QR_IMAGE_QUALITY must be in (0, 1]")
	}
	if c.Server.MaxRequestBytes <= 0 {
		return fmt.Errorf("MAX_REQUEST_BYTES must be positive")
	}
	if c.Database.MaxPoolSize > 0 && c.Database.MinPoolSize > c.Database.MaxPoolSize {
		return fmt.Errorf("MONGODB_MIN_POOL_SIZE must not exceed MONGODB_MAX_POOL_SIZE")
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
