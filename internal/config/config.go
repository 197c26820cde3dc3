// Package config loads the service configuration from defaults, a yaml file and the environment.
package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/pkg/errors"
)

const (
	// EnvPrefix is the prefix of the environment variables overriding the configuration.
	// Nested keys are separated by a double underscore (e.g. LOSTFOUND_SESSION__ACCESS_TOKEN_TTL).
	EnvPrefix = "LOSTFOUND_"

	dbname = "lostfound.db"
)

type (
	// A Config holds all the service settings.
	Config struct {
		Address        string   `koanf:"address"`
		PublicURL      string   `koanf:"public_url"`
		DatabasePath   string   `koanf:"database_path"`
		SecretKey      string   `koanf:"secret_key"`
		NoRegistration bool     `koanf:"no_registration"`
		Admins         []string `koanf:"admins"`

		Session Session `koanf:"session"`
		Live    Live    `koanf:"live"`
		Storage Storage `koanf:"storage"`
		Image   Image   `koanf:"image"`
		Mail    Mail    `koanf:"mail"`
		Log     Log     `koanf:"log"`
	}

	// Session holds the token lifetimes.
	Session struct {
		AccessTokenTTL  time.Duration `koanf:"access_token_ttl"`
		RefreshTokenTTL time.Duration `koanf:"refresh_token_ttl"`
	}

	// Live holds the live feed settings.
	Live struct {
		Debounce time.Duration `koanf:"debounce"`
	}

	// Storage holds the object storage settings.
	Storage struct {
		Backend string `koanf:"backend"` // local or s3
		Local   struct {
			Path string `koanf:"path"`
		} `koanf:"local"`
		S3 S3 `koanf:"s3"`
	}

	// S3 holds the settings of an S3 compatible object storage.
	S3 struct {
		Endpoint        string `koanf:"endpoint"`
		Region          string `koanf:"region"`
		Bucket          string `koanf:"bucket"`
		AccessKeyID     string `koanf:"access_key_id"`
		SecretAccessKey string `koanf:"secret_access_key"`
		PublicURL       string `koanf:"public_url"`
		PathStyle       bool   `koanf:"path_style"`
	}

	// Image holds the upload pipeline settings.
	Image struct {
		MaxDimension int   `koanf:"max_dimension"`
		JPEGQuality  int   `koanf:"jpeg_quality"`
		MaxUpload    int64 `koanf:"max_upload"`
	}

	// Mail holds the SMTP settings. Mails are disabled when Host is empty.
	Mail struct {
		Host     string `koanf:"host"`
		Port     int    `koanf:"port"`
		Username string `koanf:"username"`
		Password string `koanf:"password"`
		Sender   string `koanf:"sender"`
		// AdminEmails receive the notifications addressed to the administrators.
		AdminEmails []string `koanf:"admin_emails"`
	}

	// Log holds the logger settings.
	Log struct {
		Level      string `koanf:"level"`
		File       string `koanf:"file"`
		MaxSize    int    `koanf:"max_size"` // megabytes
		MaxBackups int    `koanf:"max_backups"`
		MaxAge     int    `koanf:"max_age"` // days
	}
)

// Defaults returns the default settings.
func Defaults() map[string]any {
	return map[string]any{
		"address":                   "localhost:5000",
		"database_path":             "",
		"session.access_token_ttl":  "1h",
		"session.refresh_token_ttl": "720h",
		"live.debounce":             "250ms",
		"storage.backend":           "local",
		"storage.local.path":        "images",
		"image.max_dimension":       800,
		"image.jpeg_quality":        80,
		"image.max_upload":          10 << 20,
		"mail.port":                 587,
		"log.level":                 "info",
		"log.max_size":              20,
		"log.max_backups":           2,
		"log.max_age":               10,
	}
}

// Load reads the configuration. filename may be empty.
func Load(filename string) (*Config, error) {
	konf := koanf.New(".")
	if err := konf.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, "could not load defaults")
	}

	if filename != "" {
		if err := konf.Load(file.Provider(filename), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "could not load %s", filename)
		}
	}

	err := konf.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not load environment")
	}

	var cfg Config
	if err := konf.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, "could not decode configuration")
	}
	return &cfg, nil
}

// Validate checks the settings required to run the server.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("secret_key not found")
	}
	if c.Session.AccessTokenTTL <= 0 || c.Session.RefreshTokenTTL <= 0 {
		return errors.New("session TTLs must be positive")
	}
	if c.Session.AccessTokenTTL > c.Session.RefreshTokenTTL {
		return errors.New("session.access_token_ttl must not exceed session.refresh_token_ttl")
	}

	switch c.Storage.Backend {
	case "local":
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return errors.New("storage.s3.bucket not found")
		}
	default:
		return errors.Errorf("unknown storage backend: %s", c.Storage.Backend)
	}
	return nil
}

// DatabaseFile returns the path of the database file.
func (c *Config) DatabaseFile() string {
	if len(c.DatabasePath) == 0 {
		return dbname
	}
	return filepath.Join(c.DatabasePath, dbname)
}

// IsAdminEmail returns true if the given email must be granted the admin role.
func (c *Config) IsAdminEmail(email string) bool {
	for _, e := range c.Admins {
		if strings.EqualFold(strings.TrimSpace(e), email) {
			return true
		}
	}
	return false
}
