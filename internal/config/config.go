// Package config provides application configuration management with support
// for environment variables and .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Server  ServerConfig
	Storage StorageConfig
	Upload  UploadConfig
	Thumbs  ThumbsConfig
	Auth    AuthConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8000)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 60s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// StorageConfig holds data and media storage configuration.
type StorageConfig struct {
	// DataDir is the Badger database directory.
	DataDir string
	// UploadDir is where uploaded files land on disk.
	UploadDir string
	// PublicPath is the URL prefix uploads are served back under.
	PublicPath string
}

// UploadConfig holds per-file upload rules.
type UploadConfig struct {
	// MaxFileSize is the per-file byte limit (default: 50 MiB).
	MaxFileSize int64
	// AllowedExtensions is the upload allow-set, ".png" style.
	AllowedExtensions []string
}

// ThumbsConfig holds thumbnail derivation configuration.
type ThumbsConfig struct {
	MaxDimension int // Bounding box for derived thumbnails (default: 320)
	Workers      int // Worker goroutines (default: 2)
	QueueSize    int // Pending job bound; full queue drops jobs (default: 64)
}

// AuthConfig holds token verification configuration.
type AuthConfig struct {
	// TokenSecret is the HS256 shared secret for access tokens.
	TokenSecret string
}

const devTokenSecret = "dev-secret-change-me"

// Load builds configuration with precedence: environment variables, then the
// .env file at envFile, then defaults. A missing .env file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		// godotenv never overrides variables already set in the environment.
		_ = godotenv.Load(envFile)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getEnv("ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8000"),
		},
		Storage: StorageConfig{
			DataDir:    getEnv("DATA_DIR", "data"),
			UploadDir:  getEnv("UPLOAD_DIR", "media/uploads"),
			PublicPath: getEnv("PUBLIC_PATH", "/media/uploads"),
		},
		Upload: UploadConfig{
			MaxFileSize:       getInt64Env("MAX_FILE_SIZE", 50*1024*1024),
			AllowedExtensions: getListEnv("ALLOWED_EXTENSIONS", []string{".jpg", ".jpeg", ".png", ".gif", ".pdf", ".cbz"}),
		},
		Thumbs: ThumbsConfig{
			MaxDimension: getIntEnv("THUMB_MAX_DIMENSION", 320),
			Workers:      getIntEnv("THUMB_WORKERS", 2),
			QueueSize:    getIntEnv("THUMB_QUEUE_SIZE", 64),
		},
		Auth: AuthConfig{
			TokenSecret: getEnv("TOKEN_SECRET", devTokenSecret),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	// Uploads of multi-file batches can take a while to stream in.
	if cfg.Server.WriteTimeout, err = getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.expandStoragePaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Storage.DataDir == "" {
		return errors.New("DATA_DIR cannot be empty")
	}
	if c.Storage.UploadDir == "" {
		return errors.New("UPLOAD_DIR cannot be empty")
	}

	if c.Upload.MaxFileSize <= 0 {
		return errors.New("MAX_FILE_SIZE must be positive")
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		return errors.New("ALLOWED_EXTENSIONS cannot be empty")
	}
	for _, ext := range c.Upload.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("invalid extension %q (must start with a dot)", ext)
		}
	}

	if c.Auth.TokenSecret == "" {
		return errors.New("TOKEN_SECRET cannot be empty")
	}
	if c.App.Environment == "production" && c.Auth.TokenSecret == devTokenSecret {
		return errors.New("TOKEN_SECRET must be set explicitly in production")
	}

	return nil
}

// expandStoragePaths makes the storage directories absolute.
func (c *Config) expandStoragePaths() error {
	var err error
	if c.Storage.DataDir, err = expandPath(c.Storage.DataDir); err != nil {
		return fmt.Errorf("invalid data dir: %w", err)
	}
	if c.Storage.UploadDir, err = expandPath(c.Storage.UploadDir); err != nil {
		return fmt.Errorf("invalid upload dir: %w", err)
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}

func getInt64Env(key string, defaultValue int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultValue
	}
	return n
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

// getListEnv parses a comma-separated list, trimming whitespace and dropping
// empty entries.
func getListEnv(key string, defaultValue []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
