// Package config handles loading and parsing application configuration.
// It supports three sources (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//  3. Neither: every value comes from the environment or its default.
//
// Environment variables always override values read from the YAML file,
// so `PORT=8080` works with or without a config file.
package config

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

// Storage drivers accepted in Config.StorageDriver.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity: "dev", "staging" or "prod".
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	// StorageDriver selects the backend: "file" keeps the appointments in
	// a JSON file, "sqlite" in an SQLite database.
	StorageDriver string `yaml:"storage_driver" env:"STORAGE_DRIVER" env-default:"file" validate:"oneof=file sqlite"`

	// StoragePath is the JSON file or the SQLite .db file, depending on
	// StorageDriver.
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-default:"appointments.txt" validate:"required"`

	// StaticDir holds index.html and any other static assets.
	StaticDir string `yaml:"static_dir" env:"STATIC_DIR" env-default:"public" validate:"required"`

	HTTPServer `yaml:"http_server"`
}

// HTTPServer holds settings specific to the HTTP server.
// Nested under http_server: in the YAML file.
type HTTPServer struct {
	// Host is empty to listen on every interface.
	Host string `yaml:"host" env:"HTTP_HOST"`
	Port int    `yaml:"port" env:"PORT" env-default:"3000" validate:"min=1,max=65535"`

	// ShutdownTimeout bounds how long in-flight requests may run after a
	// shutdown signal.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Addr is the TCP address the server listens on, e.g. ":3000".
func (h HTTPServer) Addr() string {
	return net.JoinHostPort(h.Host, strconv.Itoa(h.Port))
}

// Load reads the YAML file at path (when non-empty) plus the environment,
// applies defaults and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read env: %w", err)
		}
	} else {
		// Give a clear message rather than a cryptic "open: no such file".
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// MustLoad resolves the config path, loads the config and exits the
// process if anything is wrong. If this returns, the config is valid.
func MustLoad() *Config {
	// ── Source 1: environment variable ───────────────────────────────
	configPath := os.Getenv("CONFIG_PATH")

	// ── Source 2: command-line flag ───────────────────────────────────
	//   go run ./cmd/appointments-api --config=config/local.yaml
	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %s", err.Error())
	}

	return cfg
}
