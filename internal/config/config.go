package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// DefaultSecret is the development fallback for SECRET_KEY.
const DefaultSecret = "fallback-secret"

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	MinIO    MinIOConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	URI             string
	Name            string
	MaxPoolSize     int
	ConnectTimeout  time.Duration
	QueryTimeout    time.Duration
	UseTransactions bool
}

type SessionConfig struct {
	Secret       string
	CookieName   string
	Expiration   time.Duration
	CookieSecure bool
}

type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	UseSSL          bool
	PublicURL       string
}

// Enabled reports whether poster storage has enough settings to connect.
func (m MinIOConfig) Enabled() bool {
	return m.Endpoint != "" && m.AccessKeyID != "" && m.SecretAccessKey != ""
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnvOrDefault("SERVER_PORT", "5000"),
			ReadTimeout:  getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationOrDefault("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URI:             getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
			Name:            getEnvOrDefault("MONGO_DB", "moviesdb"),
			MaxPoolSize:     getIntOrDefault("MONGO_MAX_POOL_SIZE", 100),
			ConnectTimeout:  getDurationOrDefault("MONGO_CONNECT_TIMEOUT", 10*time.Second),
			QueryTimeout:    getDurationOrDefault("DB_QUERY_TIMEOUT", 10*time.Second),
			UseTransactions: getBoolOrDefault("MONGO_TRANSACTIONS", false),
		},
		Session: SessionConfig{
			Secret:       getEnvOrDefault("SECRET_KEY", DefaultSecret),
			CookieName:   getEnvOrDefault("SESSION_COOKIE", "movies_session"),
			Expiration:   getDurationOrDefault("SESSION_EXPIRATION", 24*time.Hour),
			CookieSecure: getBoolOrDefault("SESSION_COOKIE_SECURE", false),
		},
		MinIO: MinIOConfig{
			Endpoint:        getEnvOrDefault("AWS_ENDPOINT", ""),
			AccessKeyID:     getEnvOrDefault("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnvOrDefault("AWS_SECRET_ACCESS_KEY", ""),
			BucketName:      getEnvOrDefault("AWS_BUCKET", "posters"),
			Region:          getEnvOrDefault("AWS_DEFAULT_REGION", "us-east-1"),
			UseSSL:          getBoolOrDefault("AWS_USE_SSL", true),
			PublicURL:       getEnvOrDefault("AWS_URL", ""),
		},
	}
}

// Validate reports settings that will work locally but should not reach production.
func (c *Config) Validate() error {
	if c.Database.URI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("MONGO_DB is required")
	}
	if c.Database.MaxPoolSize <= 0 {
		return fmt.Errorf("MONGO_MAX_POOL_SIZE must be positive")
	}
	if c.Database.QueryTimeout <= 0 {
		return fmt.Errorf("DB_QUERY_TIMEOUT must be positive")
	}
	if c.Session.Secret == DefaultSecret {
		return fmt.Errorf("SECRET_KEY is not set, using the development fallback")
	}
	if c.MinIO.Endpoint != "" && !c.MinIO.Enabled() {
		return fmt.Errorf("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are required when AWS_ENDPOINT is set")
	}
	if c.MinIO.Enabled() && c.MinIO.PublicURL == "" {
		return fmt.Errorf("AWS_URL is required for poster storage")
	}
	return nil
}

// LoadEnvFile loads envs/.env.<GO_ENV>, falling back to envs/.env and .env.
// Variables already present in the environment win.
func LoadEnvFile(log *logrus.Logger) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "dev"
	}

	execDir, err := os.Getwd()
	if err != nil {
		log.Warnf("Could not get working directory: %v", err)
		return
	}

	candidates := []string{
		filepath.Join(execDir, "envs", ".env."+env),
		filepath.Join(execDir, "envs", ".env"),
		filepath.Join(execDir, ".env"),
	}
	for _, envFile := range candidates {
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			log.Warnf("Could not load environment file %s: %v", envFile, err)
			continue
		}
		log.Infof("Environment loaded from file %s", envFile)
		return
	}
	log.Debug("No environment file found, using process environment")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
