package config

import (
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Fetch modes.
const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresEnabled  bool   `envconfig:"POSTGRES_ENABLED" default:"false"`
	PostgresHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     string `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string `envconfig:"POSTGRES_USER" default:"scraper"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD" default:"scraper123"`
	PostgresDB       string `envconfig:"POSTGRES_DB" default:"housing_db"`
	PostgresSSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`

	MaxPagesPerRegion int           `envconfig:"MAX_PAGES_PER_REGION" default:"3" validate:"min=1"`
	RequestTimeout    time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s" validate:"gt=0"`
	PolitenessMin     time.Duration `envconfig:"POLITENESS_MIN" default:"1500ms" validate:"gte=0"`
	PolitenessMax     time.Duration `envconfig:"POLITENESS_MAX" default:"3500ms" validate:"gtefield=PolitenessMin"`
	FetchMode         string        `envconfig:"FETCH_MODE" default:"http" validate:"oneof=http browser"`
	ChromeBin         string        `envconfig:"CHROME_BIN"`
	RegionsFile       string        `envconfig:"REGIONS_FILE"`

	RawCSVPath       string `envconfig:"RAW_CSV_PATH" default:"./output/chengdu_raw_data.csv" validate:"required"`
	AnalyticsCSVPath string `envconfig:"ANALYTICS_CSV_PATH" default:"./output/chengdu_cleaned_data.csv" validate:"required"`
	ModelingCSVPath  string `envconfig:"MODELING_CSV_PATH" default:"./output/chengdu_ml_data.csv" validate:"required"`
	XLSXOutputPath   string `envconfig:"XLSX_OUTPUT_PATH"`

	// CoercionPolicy is parsed by services.CoercionPolicy.
	CoercionPolicy string `envconfig:"COERCION_POLICY" default:"fail" validate:"oneof=fail drop"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Regions []Region `ignored:"true" validate:"required,min=1,dive"`
}

// Load reads the .env file, environment and regions file, and returns a validated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if cfg.RegionsFile != "" {
		regions, err := LoadRegions(cfg.RegionsFile)
		if err != nil {
			return nil, err
		}
		cfg.Regions = regions
	} else {
		cfg.Regions = DefaultRegions()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}
