package main

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Backend names accepted in the config file and by --backend.
const (
	BackendBolt  = "bolt"
	BackendLocal = "local"
	BackendS3    = "s3"
	BackendMinio = "minio"
)

// Config describes the collection the CLI operates on.
type Config struct {
	Backend    string `yaml:"backend"`
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`

	// Compression of newly written documents: none, lz4 or zstd.
	Compression string `yaml:"compression"`
	CacheBytes  int64  `yaml:"cache_bytes"`

	// RepairOnLoad reconciles a diverged offset2id table when opening.
	RepairOnLoad bool `yaml:"repair_on_load"`

	S3    S3Config    `yaml:"s3"`
	Minio MinioConfig `yaml:"minio"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// S3Config configures the s3 backend.
type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
	// CommitTable names a DynamoDB table that serializes offset2id commits
	// of concurrent writers.
	CommitTable string `yaml:"commit_table"`
}

// MinioConfig configures the minio backend.
type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`
}

func defaultConfig() Config {
	return Config{
		Backend:    BackendBolt,
		Path:       "docarray.db",
		Collection: "docarray",
		LogLevel:   "warn",
		LogFormat:  "text",
	}
}

// loadConfig reads a YAML config file on top of the defaults. Environment
// variables in the file are expanded. An empty path returns the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Backend {
	case BackendBolt, BackendLocal:
		if c.Path == "" {
			return fmt.Errorf("backend %s requires path", c.Backend)
		}
	case BackendS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("backend s3 requires s3.bucket")
		}
	case BackendMinio:
		if c.Minio.Endpoint == "" || c.Minio.Bucket == "" {
			return fmt.Errorf("backend minio requires minio.endpoint and minio.bucket")
		}
	default:
		return fmt.Errorf("unknown backend %q (want bolt|local|s3|minio)", c.Backend)
	}
	if c.Collection == "" {
		return fmt.Errorf("collection must not be empty")
	}
	return nil
}

func (c Config) logLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn
	}
	return l
}
