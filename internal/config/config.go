package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// StorageConfig holds settings for the S3-compatible object store.
type StorageConfig struct {
	// Driver selects the client implementation: "minio" (default) or "s3".
	Driver    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	// PublicEndpoint is the host[:port] clients use to reach the store.
	// Presigned links are rewritten to it so the internal address never leaks.
	PublicEndpoint  string
	LinkLifetimeSec int
}

// LinkLifetime returns the presigned link lifetime as a duration.
func (s StorageConfig) LinkLifetime() time.Duration {
	return time.Duration(s.LinkLifetimeSec) * time.Second
}

// AuthConfig holds token signing and login throttling settings.
type AuthConfig struct {
	Secret         string
	TokenTTLSec    int
	RateLimitRPS   float64
	RateLimitBurst int
}

// TokenTTL returns the access token lifetime as a duration.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLSec) * time.Second
}

// TracingConfig holds OpenTelemetry exporter settings.
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Protocol    string
	Sampler     string
	SamplerArg  string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Env             string
	Port            string
	Timezone        string
	LogLevel        string
	ReadTimeoutSec  int
	WriteTimeoutSec int
	Database        DatabaseConfig
	Storage         StorageConfig
	Auth            AuthConfig
	Tracing         TracingConfig
}

// Location resolves the configured timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsProduction reports whether the app runs with production defaults.
func (c *AppConfig) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

// Validate checks settings that have no usable default.
func (c *AppConfig) Validate() error {
	if c.Auth.Secret == "" {
		return errors.New("AUTH_SECRET is required")
	}
	if c.Storage.LinkLifetimeSec <= 0 {
		return errors.New("STORAGE_LINK_LIFETIME_SEC must be positive")
	}
	return nil
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		Env:             getEnv("APP_ENV", "dev"),
		Port:            getEnv("PORT", "8080"),
		Timezone:        getEnv("APP_TIMEZONE", "UTC"),
		LogLevel:        getEnv("LOG_LEVEL", ""),
		ReadTimeoutSec:  getEnvInt("HTTP_READ_TIMEOUT_SEC", 30),
		WriteTimeoutSec: getEnvInt("HTTP_WRITE_TIMEOUT_SEC", 60),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Storage: StorageConfig{
			Driver:          getEnv("STORAGE_DRIVER", "minio"),
			Endpoint:        getEnv("STORAGE_ENDPOINT", ""),
			AccessKey:       getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey:       getEnv("STORAGE_SECRET_KEY", ""),
			Bucket:          getEnv("STORAGE_BUCKET", ""),
			Region:          getEnv("STORAGE_REGION", "us-east-1"),
			UseSSL:          getEnvBool("STORAGE_USE_SSL", false),
			PublicEndpoint:  getEnv("STORAGE_PUBLIC_ENDPOINT", ""),
			LinkLifetimeSec: getEnvInt("STORAGE_LINK_LIFETIME_SEC", 86400),
		},
		Auth: AuthConfig{
			Secret:         getEnv("AUTH_SECRET", ""),
			TokenTTLSec:    getEnvInt("AUTH_TOKEN_TTL_SEC", 900),
			RateLimitRPS:   getEnvFloat("AUTH_RATE_LIMIT_RPS", 1),
			RateLimitBurst: getEnvInt("AUTH_RATE_LIMIT_BURST", 5),
		},
		Tracing: TracingConfig{
			Enabled:     !getEnvBool("OTEL_SDK_DISABLED", false),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "fileapi"),
			Protocol:    getEnv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
			Sampler:     getEnv("OTEL_TRACES_SAMPLER", "parentbased_traceidratio"),
			SamplerArg:  getEnv("OTEL_TRACES_SAMPLER_ARG", "1.0"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}
