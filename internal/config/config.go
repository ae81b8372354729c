package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Files   FilesConfig
	Storage StorageConfig
	OTEL    OTELConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	MaxUploadSizeMB int64
}

// MongoDBConfig holds MongoDB connection configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
}

// JWTConfig holds token verification configuration
type JWTConfig struct {
	Secret string
}

// FilesConfig holds the upload feature flags
type FilesConfig struct {
	Enabled       bool
	RestrictTypes bool
	AllowedTypes  []string // MIME allow-list, only consulted when RestrictTypes is set
}

// StorageConfig holds the storage provider candidates. Candidates are tried
// in order (local first, then S3) and the first enabled one is used.
type StorageConfig struct {
	Local LocalStorageConfig
	S3    S3Config
}

// LocalStorageConfig configures the local disk provider
type LocalStorageConfig struct {
	Enabled bool
	Dir     string
}

// S3Config configures the S3-compatible provider (AWS, SeaweedFS, MinIO)
type S3Config struct {
	Enabled   bool
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// OTELConfig holds OpenTelemetry export configuration
type OTELConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
}

// Load reads configuration from environment variables
// It attempts to load from .env file first, then falls back to system env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			MaxUploadSizeMB: getEnvAsInt64("MAX_UPLOAD_SIZE_MB", 25),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "palaver"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		Files: FilesConfig{
			Enabled:       getEnvAsBool("FILES_ENABLED", true),
			RestrictTypes: getEnvAsBool("FILES_RESTRICT_TYPES", false),
			AllowedTypes:  getEnvAsList("FILES_ALLOWED_TYPES"),
		},
		Storage: StorageConfig{
			Local: LocalStorageConfig{
				Enabled: getEnvAsBool("STORAGE_LOCAL_ENABLED", true),
				Dir:     getEnv("STORAGE_LOCAL_DIR", "./uploads"),
			},
			S3: S3Config{
				Enabled:   getEnvAsBool("STORAGE_S3_ENABLED", false),
				Endpoint:  getEnv("STORAGE_S3_ENDPOINT", ""),
				Region:    getEnv("STORAGE_S3_REGION", "us-east-1"),
				Bucket:    getEnv("STORAGE_S3_BUCKET", "palaver-files"),
				AccessKey: getEnv("STORAGE_S3_ACCESS_KEY", "any"),
				SecretKey: getEnv("STORAGE_S3_SECRET_KEY", "any"),
			},
		},
		OTEL: OTELConfig{
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "palaver-files"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Environment:    getEnv("OTEL_ENVIRONMENT", "development"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Storage.S3.Enabled {
		if c.Storage.S3.Endpoint == "" {
			return fmt.Errorf("STORAGE_S3_ENDPOINT is required when the S3 provider is enabled")
		}
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("STORAGE_S3_BUCKET is required when the S3 provider is enabled")
		}
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt64 retrieves an environment variable as int64 or returns a default value
func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool retrieves an environment variable as bool or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList retrieves a comma-separated environment variable as a slice
func getEnvAsList(key string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil
	}
	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			values = append(values, v)
		}
	}
	return values
}
