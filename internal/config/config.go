// Package config loads corkboard settings: built-in defaults, then an
// optional YAML file, then CORKBOARD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DataDir  string  `yaml:"data_dir" validate:"required"`
	LogLevel string  `yaml:"log_level" validate:"oneof=trace debug info warn error"`
	LogFile  string  `yaml:"log_file"`
	Storage  Storage `yaml:"storage"`
	Board    Board   `yaml:"board"`
	Backup   Backup  `yaml:"backup"`
	HTTP     HTTP    `yaml:"http"`
}

type Storage struct {
	Driver    string `yaml:"driver" validate:"oneof=sqlite postgres mysql mongo redis file memory"`
	DSN       string `yaml:"dsn"`
	Database  string `yaml:"database"`
	Namespace string `yaml:"namespace"`
	BoardKey  string `yaml:"board_key" validate:"required"`
	TasksKey  string `yaml:"tasks_key" validate:"required"`
	// Watch reloads the board when the backing file changes on disk.
	// Only honoured by the file driver.
	Watch bool `yaml:"watch"`
}

type Board struct {
	Jitter     float64 `yaml:"jitter" validate:"gte=0,lte=200"`
	NoteWidth  float64 `yaml:"note_width" validate:"gt=0"`
	PhotoWidth float64 `yaml:"photo_width" validate:"gt=0"`
}

type Backup struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule" validate:"required_if=Enabled true"`
	Keep     int    `yaml:"keep" validate:"gte=1,lte=1000"`
}

type HTTP struct {
	Addr           string   `yaml:"addr" validate:"required"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".local", "share", "corkboard")
	return &Config{
		DataDir:  dataDir,
		LogLevel: "info",
		Storage: Storage{
			Driver:    "sqlite",
			Namespace: "corkboard_kv",
			BoardKey:  "corkboard",
			TasksKey:  "nexus_tasks",
		},
		Board: Board{
			Jitter:     15,
			NoteWidth:  200,
			PhotoWidth: 240,
		},
		Backup: Backup{
			Enabled:  true,
			Schedule: "@every 30m",
			Keep:     40,
		},
		HTTP: HTTP{
			Addr:           "127.0.0.1:8787",
			AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		},
	}
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "corkboard", "config.yaml")
}

// Load builds the configuration. A missing file at the default path is not
// an error; a missing file at an explicit path is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if err := loadFile(path, cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) || explicit {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	applyEnv(cfg, os.Getenv)
	cfg.resolvePaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

// applyEnv overlays environment variables, the highest priority source.
func applyEnv(cfg *Config, getenv func(string) string) {
	str := func(name string, dst *string) {
		if v := getenv(name); v != "" {
			*dst = v
		}
	}
	str("CORKBOARD_DATA_DIR", &cfg.DataDir)
	str("CORKBOARD_LOG_LEVEL", &cfg.LogLevel)
	str("CORKBOARD_LOG_FILE", &cfg.LogFile)
	str("CORKBOARD_STORAGE_DRIVER", &cfg.Storage.Driver)
	str("CORKBOARD_STORAGE_DSN", &cfg.Storage.DSN)
	str("CORKBOARD_STORAGE_DATABASE", &cfg.Storage.Database)
	str("CORKBOARD_BOARD_KEY", &cfg.Storage.BoardKey)
	str("CORKBOARD_BACKUP_SCHEDULE", &cfg.Backup.Schedule)
	str("CORKBOARD_HTTP_ADDR", &cfg.HTTP.Addr)

	if v := getenv("CORKBOARD_STORAGE_WATCH"); v != "" {
		cfg.Storage.Watch = parseBool(v)
	}
	if v := getenv("CORKBOARD_BACKUP_ENABLED"); v != "" {
		cfg.Backup.Enabled = parseBool(v)
	}
	if v := getenv("CORKBOARD_BACKUP_KEEP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backup.Keep = n
		}
	}
	if v := getenv("CORKBOARD_HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = strings.Split(v, ",")
	}
	if v := getenv("DEBUG"); v != "" && parseBool(v) {
		cfg.LogLevel = "debug"
	}
}

// resolvePaths fills backend locations that default into the data dir.
func (c *Config) resolvePaths() {
	if c.Storage.DSN != "" {
		return
	}
	switch c.Storage.Driver {
	case "sqlite":
		c.Storage.DSN = filepath.Join(c.DataDir, "corkboard.db")
	case "file":
		c.Storage.DSN = filepath.Join(c.DataDir, "board")
	}
}

var validate = validator.New()

// Validate checks field constraints and backend-specific requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	switch c.Storage.Driver {
	case "postgres", "mysql", "mongo", "redis":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for driver %s", c.Storage.Driver)
		}
	}
	if c.Storage.Watch && c.Storage.Driver != "file" {
		return fmt.Errorf("storage.watch requires the file driver, got %s", c.Storage.Driver)
	}
	return nil
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}
