package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/shoplist/internal/identity"
)

const (
	FileName = "config.yaml"

	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config holds the settings of the command line and TUI front ends.
// Precedence: defaults < <dir>/config.yaml < environment < flags.
type Config struct {
	Dir        string `yaml:"-"`
	Backend    string `yaml:"backend"`
	BaseURL    string `yaml:"base_url"`
	CodeLength int    `yaml:"code_length"`
	Log        string `yaml:"log"`
	QREndpoint string `yaml:"qr_endpoint"`
	QRSize     int    `yaml:"qr_size"`
	Theme      string `yaml:"theme"`
}

func Default() Config {
	return Config{
		Backend:    BackendJSON,
		BaseURL:    "https://shoplist.app/",
		CodeLength: identity.DefaultLength,
		Log:        "quiet",
		QREndpoint: "https://api.qrserver.com/v1/create-qr-code/",
		QRSize:     250,
		Theme:      "classic",
	}
}

// DefaultDir is ~/.shoplist.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".shoplist"), nil
}

// Load resolves the data dir (argument, then SHOPLIST_DIR, then ~/.shoplist),
// reads the optional YAML file there and applies environment overrides.
func Load(dir string) (Config, error) {
	cfg := Default()

	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = strings.TrimSpace(os.Getenv("SHOPLIST_DIR"))
	}
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return cfg, err
		}
		dir = d
	}
	cfg.Dir = dir

	b, err := os.ReadFile(filepath.Join(dir, FileName))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", FileName, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("read %s: %w", FileName, err)
	}

	cfg.Backend = envOr("SHOPLIST_BACKEND", cfg.Backend)
	cfg.BaseURL = envOr("SHOPLIST_BASE_URL", cfg.BaseURL)
	cfg.Log = envOr("SHOPLIST_LOG", cfg.Log)
	cfg.QREndpoint = envOr("SHOPLIST_QR_ENDPOINT", cfg.QREndpoint)
	cfg.Theme = envOr("SHOPLIST_THEME", cfg.Theme)
	if v := strings.TrimSpace(os.Getenv("SHOPLIST_CODE_LENGTH")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("SHOPLIST_CODE_LENGTH: not a number: %q", v)
		}
		cfg.CodeLength = n
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendJSON, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("backend %q: want %s, %s or %s", c.Backend, BackendJSON, BackendSQLite, BackendMemory)
	}
	if c.CodeLength < identity.MinLength || c.CodeLength > identity.MaxLength {
		return fmt.Errorf("code length %d out of range [%d,%d]", c.CodeLength, identity.MinLength, identity.MaxLength)
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base url %q must be http(s)", c.BaseURL)
	}
	return nil
}

// SQLitePath is where the sqlite backend keeps its database.
func (c Config) SQLitePath() string {
	return filepath.Join(c.Dir, "shoplist.sqlite")
}

// ListsDir is where the json backend keeps one file per key.
func (c Config) ListsDir() string {
	return filepath.Join(c.Dir, "lists")
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
