package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "MONGO_URI", "MONGO_DB", "SECRET_KEY", "AWS_ENDPOINT", "MONGO_TRANSACTIONS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Server.Port != "5000" {
		t.Fatalf("Port = %s, want 5000", cfg.Server.Port)
	}
	if cfg.Database.URI != "mongodb://localhost:27017" {
		t.Fatalf("URI = %s, want local default", cfg.Database.URI)
	}
	if cfg.Database.Name != "moviesdb" {
		t.Fatalf("Name = %s, want moviesdb", cfg.Database.Name)
	}
	if cfg.Session.Secret != DefaultSecret {
		t.Fatalf("Secret = %s, want fallback", cfg.Session.Secret)
	}
	if cfg.Database.UseTransactions {
		t.Fatalf("UseTransactions should default to false")
	}
	if cfg.MinIO.Enabled() {
		t.Fatalf("MinIO should be disabled without endpoint")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("MONGO_DB", "films")
	t.Setenv("MONGO_MAX_POOL_SIZE", "40")
	t.Setenv("DB_QUERY_TIMEOUT", "3s")
	t.Setenv("MONGO_TRANSACTIONS", "true")
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("SESSION_EXPIRATION", "1h")

	cfg := Load()

	if cfg.Server.Port != "9090" {
		t.Fatalf("Port = %s, want 9090", cfg.Server.Port)
	}
	if cfg.Database.URI != "mongodb://db:27017" || cfg.Database.Name != "films" {
		t.Fatalf("database = %+v", cfg.Database)
	}
	if cfg.Database.MaxPoolSize != 40 {
		t.Fatalf("MaxPoolSize = %d, want 40", cfg.Database.MaxPoolSize)
	}
	if cfg.Database.QueryTimeout != 3*time.Second {
		t.Fatalf("QueryTimeout = %s, want 3s", cfg.Database.QueryTimeout)
	}
	if !cfg.Database.UseTransactions {
		t.Fatalf("UseTransactions not parsed")
	}
	if cfg.Session.Secret != "s3cret" || cfg.Session.Expiration != time.Hour {
		t.Fatalf("session = %+v", cfg.Session)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("MONGO_MAX_POOL_SIZE", "many")
	t.Setenv("DB_QUERY_TIMEOUT", "soon")
	t.Setenv("AWS_USE_SSL", "maybe")

	cfg := Load()

	if cfg.Database.MaxPoolSize != 100 {
		t.Fatalf("MaxPoolSize = %d, want default 100", cfg.Database.MaxPoolSize)
	}
	if cfg.Database.QueryTimeout != 10*time.Second {
		t.Fatalf("QueryTimeout = %s, want default", cfg.Database.QueryTimeout)
	}
	if !cfg.MinIO.UseSSL {
		t.Fatalf("UseSSL should keep its default")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{URI: "mongodb://localhost", Name: "moviesdb", MaxPoolSize: 10, QueryTimeout: time.Second},
			Session:  SessionConfig{Secret: "secret"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"missing uri", func(c *Config) { c.Database.URI = "" }, "MONGO_URI"},
		{"missing db name", func(c *Config) { c.Database.Name = "" }, "MONGO_DB"},
		{"zero pool", func(c *Config) { c.Database.MaxPoolSize = 0 }, "MONGO_MAX_POOL_SIZE"},
		{"zero timeout", func(c *Config) { c.Database.QueryTimeout = 0 }, "DB_QUERY_TIMEOUT"},
		{"fallback secret", func(c *Config) { c.Session.Secret = DefaultSecret }, "SECRET_KEY"},
		{"partial minio", func(c *Config) { c.MinIO.Endpoint = "minio:9000" }, "AWS_ACCESS_KEY_ID"},
		{"minio without public url", func(c *Config) {
			c.MinIO = MinIOConfig{Endpoint: "minio:9000", AccessKeyID: "a", SecretAccessKey: "b"}
		}, "AWS_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want contains %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("MONGO_DB=from_file\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("GO_ENV", "test")
	t.Setenv("MONGO_DB", "")
	os.Unsetenv("MONGO_DB")

	log := logrus.New()
	log.SetOutput(io.Discard)
	LoadEnvFile(log)

	if got := os.Getenv("MONGO_DB"); got != "from_file" {
		t.Fatalf("MONGO_DB = %q, want from_file", got)
	}
}
