// Package config loads application configuration from a .env file, an
// optional YAML file and environment variables, in that order of precedence
// (later wins).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/fileupload/service/internal/logging"
)

// Storage backends.
const (
	BackendFilesystem = "filesystem"
	BackendMinio      = "minio"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Upload  UploadConfig  `yaml:"upload"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port        string   `yaml:"port"`
	Env         string   `yaml:"env"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	Backend string `yaml:"backend"`
	// Location is the upload directory for the filesystem backend and the
	// key prefix for the MinIO backend.
	Location    string      `yaml:"location"`
	WipeOnStart bool        `yaml:"wipe_on_start"`
	Minio       MinioConfig `yaml:"minio"`
}

// MinioConfig holds S3-compatible object storage settings.
type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// UploadConfig limits and guards uploads.
type UploadConfig struct {
	MaxSize   string `yaml:"max_size"` // human readable, e.g. "10MB"
	JWTSecret string `yaml:"jwt_secret"`

	maxBytes int64
}

// LogConfig configures the logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			Env:         "development",
			CORSOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Backend:     BackendFilesystem,
			Location:    "upload-dir",
			WipeOnStart: true,
			Minio: MinioConfig{
				Endpoint:  "localhost:9000",
				AccessKey: "minioadmin",
				SecretKey: "minioadmin",
				Bucket:    "uploads",
			},
		},
		Upload: UploadConfig{
			MaxSize:  "10MB",
			maxBytes: 10 * 1000 * 1000,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads configuration from a .env file (if present), the YAML file at
// path (if present) and environment variables.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logging.Debug("no .env file found, reading from environment")
	}

	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logging.Debug("config file not found, using defaults", "path", path)
		case err != nil:
			return nil, fmt.Errorf("read config %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("parse config %q: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MaxUploadBytes returns the parsed upload.max_size.
func (c *Config) MaxUploadBytes() int64 {
	return c.Upload.maxBytes
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.Env, "APP_ENV")
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitComma(v)
	}

	setString(&c.Storage.Backend, "STORAGE_BACKEND")
	setString(&c.Storage.Location, "STORAGE_LOCATION")
	if err := setBool(&c.Storage.WipeOnStart, "STORAGE_WIPE_ON_START"); err != nil {
		return err
	}
	setString(&c.Storage.Minio.Endpoint, "STORAGE_ENDPOINT")
	setString(&c.Storage.Minio.AccessKey, "STORAGE_ACCESS_KEY")
	setString(&c.Storage.Minio.SecretKey, "STORAGE_SECRET_KEY")
	setString(&c.Storage.Minio.Bucket, "STORAGE_BUCKET")
	if err := setBool(&c.Storage.Minio.UseSSL, "STORAGE_USE_SSL"); err != nil {
		return err
	}

	setString(&c.Upload.MaxSize, "UPLOAD_MAX_SIZE")
	setString(&c.Upload.JWTSecret, "UPLOAD_JWT_SECRET")
	setString(&c.Log.Level, "LOG_LEVEL")
	return nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case BackendFilesystem, BackendMinio:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend == BackendFilesystem && strings.TrimSpace(c.Storage.Location) == "" {
		return errors.New("storage.location can not be empty")
	}

	n, err := humanize.ParseBytes(c.Upload.MaxSize)
	if err != nil {
		return fmt.Errorf("parse upload.max_size %q: %w", c.Upload.MaxSize, err)
	}
	if n == 0 {
		return errors.New("upload.max_size must be > 0")
	}
	c.Upload.maxBytes = int64(n)

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	*dst = b
	return nil
}

func splitComma(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
