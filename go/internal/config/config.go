// Package config reads service settings from the environment (and .env),
// with an optional YAML file overlaying the auction tuning.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/mcdev12/liveauction/go/internal/auction/engine"
	"gopkg.in/yaml.v3"
)

const (
	CatalogDefault  = "default"
	CatalogFile     = "file"
	CatalogPostgres = "postgres"
)

type Config struct {
	Port      string
	LogLevel  string
	LogFormat string // console or json

	Catalog         CatalogConfig
	Auction         engine.Config
	AutoStart       bool // load the first lot and start bidding at boot
	PublishDebounce time.Duration

	NATS     NATSConfig
	Database DatabaseConfig
}

type CatalogConfig struct {
	Source string // default, file or postgres
	Path   string
}

type NATSConfig struct {
	Enabled       bool
	URL           string
	Stream        string
	SubjectPrefix string
}

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns the Postgres connection URL.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// fileConfig is the shape of the AUCTION_CONFIG file. Keys left out keep
// their environment value.
type fileConfig struct {
	Auction         *engine.Config `yaml:"auction"`
	AutoStart       *bool          `yaml:"autostart"`
	PublishDebounce *time.Duration `yaml:"publish_debounce"`
}

// Load reads .env if present, then the environment, then the YAML overlay
// named by AUCTION_CONFIG.
func Load() (Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	cfg := FromEnv()
	if path := os.Getenv("AUCTION_CONFIG"); path != "" {
		if err := cfg.overlay(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv builds a Config from environment variables with defaults.
func FromEnv() Config {
	defaults := engine.DefaultConfig()
	return Config{
		Port:      getEnv("PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
		Catalog: CatalogConfig{
			Source: getEnv("CATALOG_SOURCE", CatalogDefault),
			Path:   getEnv("CATALOG_PATH", ""),
		},
		Auction: engine.Config{
			BidDuration:    getEnvAsDuration("AUCTION_BID_DURATION", defaults.BidDuration),
			Tick:           getEnvAsDuration("AUCTION_TICK", defaults.Tick),
			SaleDisplay:    getEnvAsDuration("AUCTION_SALE_DISPLAY", defaults.SaleDisplay),
			UnsoldCooldown: getEnvAsDuration("AUCTION_UNSOLD_COOLDOWN", defaults.UnsoldCooldown),
			Increments: bidsPolicy(
				getEnvAsInt64("AUCTION_BID_STEP", defaults.Increments.Step),
				getEnvAsInt64("AUCTION_BID_HIGH_STEP", defaults.Increments.HighStep),
				getEnvAsInt64("AUCTION_BID_THRESHOLD", defaults.Increments.Threshold),
			),
			MaxRounds: getEnvAsInt("AUCTION_MAX_ROUNDS", defaults.MaxRounds),
		},
		AutoStart:       getEnvAsBool("AUCTION_AUTOSTART", true),
		PublishDebounce: getEnvAsDuration("AUCTION_PUBLISH_DEBOUNCE", 150*time.Millisecond),
		NATS: NATSConfig{
			Enabled:       getEnvAsBool("NATS_ENABLED", false),
			URL:           getEnv("NATS_URL", "nats://localhost:4222"),
			Stream:        getEnv("NATS_STREAM", "AUCTION_EVENTS"),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "auction.events"),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Database: getEnv("DB_NAME", "liveauction"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
	}
}

func (c *Config) overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	fc := fileConfig{Auction: &c.Auction, AutoStart: &c.AutoStart, PublishDebounce: &c.PublishDebounce}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	if err := c.Auction.Validate(); err != nil {
		return err
	}
	if c.PublishDebounce < 0 {
		return fmt.Errorf("publish debounce cannot be negative")
	}
	switch c.Catalog.Source {
	case CatalogDefault:
	case CatalogFile:
		if c.Catalog.Path == "" {
			return fmt.Errorf("CATALOG_PATH is required when CATALOG_SOURCE=file")
		}
	case CatalogPostgres:
		if !c.Database.Enabled {
			return fmt.Errorf("CATALOG_SOURCE=postgres needs DB_ENABLED=true")
		}
	default:
		return fmt.Errorf("unknown catalog source %q", c.Catalog.Source)
	}
	return nil
}
