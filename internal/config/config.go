// Package config reads the service configuration from the process
// environment. Missing remote credentials never crash startup; the affected
// operation fails with a configuration error when it is attempted.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config is the root configuration.
type Config struct {
	Server     ServerConfig
	Remote     RemoteConfig
	Storage    StorageConfig
	Matching   MatchingConfig
	Processing ProcessingConfig
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int
	BindAddress  string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
	BodyLimit    string
	EnableCORS   bool
	AllowOrigins string
}

// RemoteConfig contains the external collaborators' endpoints and
// credentials. APIServer is the matching backend base URL (pipeline,
// scoring, wingman); BucketURL/BucketKey address the content bucket.
type RemoteConfig struct {
	APIServer  string
	BucketURL  string
	BucketName string
	BucketKey  string
}

// StorageConfig contains local storage settings.
type StorageConfig struct {
	DataDirectory   string
	UploadDirectory string
	RecordDB        string
}

// MatchingConfig contains matching-flow settings. The QA flags force parse
// failures and fallback scoring for demo and test builds.
type MatchingConfig struct {
	AutoRun           bool
	WingmanLive       bool
	FixturesFile      string
	QAForceParseError bool
	QAFallbackScoring bool
}

// ProcessingConfig contains session housekeeping settings.
type ProcessingConfig struct {
	SessionTimeoutMinutes  int
	CleanupIntervalMinutes int
}

// Load reads the configuration from the environment, applying defaults for
// everything but the remote endpoints (those have no sensible default and
// stay empty when unset).
func Load() *Config {
	dataDir := getEnv("DATA_DIR", "./data")

	return &Config{
		Server: ServerConfig{
			Port:         getEnvInt("PORT", 8089),
			BindAddress:  getEnv("BIND_ADDRESS", "0.0.0.0"),
			ReadTimeout:  getEnvInt("READ_TIMEOUT_SECONDS", 30),
			WriteTimeout: getEnvInt("WRITE_TIMEOUT_SECONDS", 30),
			IdleTimeout:  getEnvInt("IDLE_TIMEOUT_SECONDS", 120),
			BodyLimit:    getEnv("BODY_LIMIT", "32M"),
			EnableCORS:   getEnvBool("ENABLE_CORS", true),
			AllowOrigins: getEnv("ALLOW_ORIGINS", "*"),
		},
		Remote: RemoteConfig{
			APIServer:  getEnv("API_SERVER", ""),
			BucketURL:  getEnv("BUCKET_URL", ""),
			BucketName: getEnv("BUCKET_NAME", "uploads"),
			BucketKey:  getEnv("BUCKET_KEY", ""),
		},
		Storage: StorageConfig{
			DataDirectory:   dataDir,
			UploadDirectory: getEnv("UPLOAD_DIR", filepath.Join(dataDir, "uploads")),
			RecordDB:        getEnv("RECORD_DB", filepath.Join(dataDir, "records.duckdb")),
		},
		Matching: MatchingConfig{
			AutoRun:           getEnvBool("AUTO_RUN", true),
			WingmanLive:       getEnvBool("WINGMAN_LIVE", false),
			FixturesFile:      getEnv("FIXTURES_FILE", ""),
			QAForceParseError: getEnvBool("QA_FORCE_PARSE_ERROR", false),
			QAFallbackScoring: getEnvBool("QA_FALLBACK_SCORING", false),
		},
		Processing: ProcessingConfig{
			SessionTimeoutMinutes:  getEnvInt("SESSION_TIMEOUT_MINUTES", 30),
			CleanupIntervalMinutes: getEnvInt("CLEANUP_INTERVAL_MINUTES", 5),
		},
	}
}

// EnsureDirectories creates the data directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Storage.DataDirectory, c.Storage.UploadDirectory} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetServerAddr returns the listen address.
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// UseRemoteBucket reports whether the content bucket is configured; when it
// is not, the service falls back to the local filesystem store.
func (c *Config) UseRemoteBucket() bool {
	return c.Remote.BucketURL != "" && c.Remote.BucketKey != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
