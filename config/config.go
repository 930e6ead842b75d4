// Package config loads runtime settings from .env, the environment and an
// optional YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"storefront/logging"
)

// Config is the main application configuration
type Config struct {
	Env     string `yaml:"env"`
	Port    string `yaml:"port"`
	BaseURL string `yaml:"baseUrl"`

	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Currency CurrencyConfig `yaml:"currency"`
	Logging  logging.Config `yaml:"logging"`

	// AdminToken authorizes catalog administration calls
	AdminToken string `yaml:"adminToken"`

	// ImageDir stores uploaded item images and their renditions
	ImageDir string `yaml:"imageDir"`

	// StoreName is printed on invoices
	StoreName string `yaml:"storeName"`

	// ChromePath overrides headless Chrome detection for invoice PDFs
	ChromePath string `yaml:"chromePath"`
}

// DatabaseConfig selects the SQL driver and DSN
type DatabaseConfig struct {
	// Driver is "pgx" (Postgres) or "sqlite"
	Driver string `yaml:"driver"`
	URL    string `yaml:"url"`
}

// RedisConfig configures the item cache. An empty Addr disables caching.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// CurrencyConfig drives display formatting of money amounts
type CurrencyConfig struct {
	Code     string `yaml:"code"`
	Decimals int32  `yaml:"decimals"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Env:     "development",
		Port:    "8080",
		BaseURL: "http://localhost:8080",
		Database: DatabaseConfig{
			Driver: "pgx",
		},
		Redis: RedisConfig{
			TTL: 10 * time.Minute,
		},
		Currency: CurrencyConfig{
			Code:     "USD",
			Decimals: 2,
		},
		Logging:   logging.DefaultConfig(),
		ImageDir:  "cache/images",
		StoreName: "Storefront",
	}
}

// Load builds the configuration: defaults, then .env (outside production),
// then environment variables, then the YAML file at path when given.
func Load(path string) (*Config, error) {
	if os.Getenv("ENV") != "production" {
		if err := godotenv.Overload(".env"); err != nil {
			logging.Sugar.Debugf("config: no .env file loaded: %v", err)
		}
	}

	cfg := Default()
	cfg.applyEnv()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Env, "ENV")
	setString(&c.Port, "PORT")
	c.Port = strings.TrimPrefix(c.Port, ":")
	setString(&c.BaseURL, "BASE_URL")
	setString(&c.AdminToken, "ADMIN_TOKEN")
	setString(&c.ImageDir, "IMAGE_DIR")
	setString(&c.ChromePath, "CHROME_PATH")
	setString(&c.StoreName, "STORE_NAME")

	setString(&c.Database.Driver, "DB_DRIVER")
	c.Database.URL = databaseURL()

	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	if v, err := strconv.Atoi(os.Getenv("REDIS_DB")); err == nil {
		c.Redis.DB = v
	}
	if v, err := time.ParseDuration(os.Getenv("CACHE_TTL")); err == nil {
		c.Redis.TTL = v
	}

	setString(&c.Currency.Code, "CURRENCY")
	if v, err := strconv.Atoi(os.Getenv("CURRENCY_DECIMALS")); err == nil {
		c.Currency.Decimals = int32(v)
	}

	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "pgx", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q (use pgx or sqlite)", c.Database.Driver)
	}
	if c.Currency.Decimals < 0 {
		return fmt.Errorf("currency decimals must be non-negative")
	}
	return nil
}

// IsProduction reports whether ENV=production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// databaseURL reads DATABASE_URL or builds a Postgres DSN from DB_* parts.
func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := os.Getenv("DB_HOST")
	user := os.Getenv("DB_USER")
	dbname := os.Getenv("DB_NAME")
	if host == "" || user == "" || dbname == "" {
		return ""
	}

	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}
	sslmode := os.Getenv("DB_SSLMODE")
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, os.Getenv("DB_PASSWORD"), dbname, sslmode)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
