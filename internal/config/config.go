package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Goopi7/crop-connect/internal/crops"
)

// Store drivers
const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Config represents the application configuration
type Config struct {
	Server         ServerConfig         `json:"server"`
	Store          StoreConfig          `json:"store"`
	Mongo          MongoConfig          `json:"mongo"`
	Database       DatabaseConfig       `json:"database"`
	Catalog        CatalogConfig        `json:"catalog"`
	Recommendation RecommendationConfig `json:"recommendation"`
	Logging        LoggingConfig        `json:"logging"`
	Metrics        MetricsConfig        `json:"metrics"`
}

// Duration is a time.Duration that reads "30s" style strings or nanosecond numbers from JSON
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid duration %s", data)
	}
	*d = Duration(n)
	return nil
}

// MarshalJSON implements json.Marshaler
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns the standard library duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string   `json:"host"`
	Port         int      `json:"port"`
	ReadTimeout  Duration `json:"read_timeout"`
	WriteTimeout Duration `json:"write_timeout"`
	IdleTimeout  Duration `json:"idle_timeout"`
	GinMode      string   `json:"gin_mode"`
}

// StoreConfig selects the crop knowledge store
type StoreConfig struct {
	Driver      string `json:"driver"`
	SeedOnStart bool   `json:"seed_on_start"`
}

// MongoConfig represents the Mongo connection
type MongoConfig struct {
	URI            string   `json:"uri"`
	Database       string   `json:"database"`
	ConnectTimeout Duration `json:"connect_timeout"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host           string   `json:"host"`
	Port           int      `json:"port"`
	User           string   `json:"user"`
	Password       string   `json:"password"`
	DBName         string   `json:"db_name"`
	SSLMode        string   `json:"ssl_mode"`
	MaxConnections int      `json:"max_connections"`
	MaxIdleConns   int      `json:"max_idle_conns"`
	MaxLifetime    Duration `json:"max_lifetime"`
}

// CatalogConfig controls the catalogue cache and its warmer
type CatalogConfig struct {
	CacheTTL     Duration `json:"cache_ttl"`
	WarmSchedule string   `json:"warm_schedule"`
}

// RecommendationConfig
type RecommendationConfig struct {
	TablesPath  string `json:"tables_path"`
	ExportLimit int    `json:"export_limit"`
}

// LoggingConfig
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// MetricsConfig
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  Duration(15 * time.Second),
			WriteTimeout: Duration(15 * time.Second),
			IdleTimeout:  Duration(60 * time.Second),
			GinMode:      "release",
		},
		Store: StoreConfig{
			Driver:      DriverMemory,
			SeedOnStart: true,
		},
		Mongo: MongoConfig{
			URI:            "mongodb://localhost:27017",
			Database:       "crop_connect",
			ConnectTimeout: Duration(10 * time.Second),
		},
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           5432,
			User:           os.Getenv("USER"),
			DBName:         "crop_connect",
			SSLMode:        "disable",
			MaxConnections: 25,
			MaxIdleConns:   5,
			MaxLifetime:    Duration(30 * time.Minute),
		},
		Catalog: CatalogConfig{
			CacheTTL:     Duration(5 * time.Minute),
			WarmSchedule: "@every 10m",
		},
		Recommendation: RecommendationConfig{
			ExportLimit: 500,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// LoadConfig loads configuration from file and environment variables.
// CONFIG_PATH, when set, replaces configPath.
func LoadConfig(configPath string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	config := Default()

	// Load from file if exists
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Override with environment variables
	if err := overrideWithEnv(config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func overrideWithEnv(config *Config) error {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if err := envInt("SERVER_PORT", &config.Server.Port); err != nil {
		return err
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		config.Server.GinMode = mode
	}
	if driver := os.Getenv("STORE_DRIVER"); driver != "" {
		config.Store.Driver = strings.ToLower(driver)
	}
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		config.Mongo.URI = uri
	}
	if db := os.Getenv("MONGO_DATABASE"); db != "" {
		config.Mongo.Database = db
	}
	if dbHost := os.Getenv("DATABASE_HOST"); dbHost != "" {
		config.Database.Host = dbHost
	}
	if err := envInt("DATABASE_PORT", &config.Database.Port); err != nil {
		return err
	}
	if dbUser := os.Getenv("DATABASE_USER"); dbUser != "" {
		config.Database.User = dbUser
	}
	if dbPass := os.Getenv("DATABASE_PASSWORD"); dbPass != "" {
		config.Database.Password = dbPass
	}
	if dbName := os.Getenv("DATABASE_DBNAME"); dbName != "" {
		config.Database.DBName = dbName
	}
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		config.Database.SSLMode = sslMode
	}
	if ttl := os.Getenv("CATALOG_CACHE_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("invalid CATALOG_CACHE_TTL: %w", err)
		}
		config.Catalog.CacheTTL = Duration(d)
	}
	if schedule, ok := os.LookupEnv("CATALOG_WARM_SCHEDULE"); ok {
		config.Catalog.WarmSchedule = schedule
	}
	if path := os.Getenv("RECOMMENDATION_TABLES_PATH"); path != "" {
		config.Recommendation.TablesPath = path
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if enabled := os.Getenv("METRICS_ENABLED"); enabled != "" {
		b, err := strconv.ParseBool(enabled)
		if err != nil {
			return fmt.Errorf("invalid METRICS_ENABLED: %w", err)
		}
		config.Metrics.Enabled = b
	}
	return nil
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverMongo, DriverPostgres:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Store.Driver == DriverPostgres && (c.Database.Port <= 0 || c.Database.Port > 65535) {
		return fmt.Errorf("invalid database port %d", c.Database.Port)
	}
	if c.Catalog.CacheTTL < 0 {
		return fmt.Errorf("catalog cache_ttl must not be negative")
	}
	if c.Catalog.WarmSchedule != "" {
		if err := crops.ValidateSchedule(c.Catalog.WarmSchedule); err != nil {
			return fmt.Errorf("invalid catalog warm_schedule: %w", err)
		}
	}
	if c.Recommendation.ExportLimit < 0 {
		return fmt.Errorf("recommendation export_limit must not be negative")
	}
	return nil
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
