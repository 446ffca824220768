package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centralises every runtime setting so the rest of the codebase can
// remain deterministic and easy to test. All fields can be overridden using
// environment variables.
type Config struct {
	AppName  string         `env:"APP_NAME" envDefault:"citytwin-api"`
	Env      string         `env:"APP_ENV" envDefault:"development"`
	LogLevel string         `env:"LOG_LEVEL" envDefault:"info"`
	HTTP     HTTPConfig     `envPrefix:"HTTP_"`
	Database DatabaseConfig `envPrefix:"DB_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Auth     AuthConfig     `envPrefix:"AUTH_"`
	Routing  RoutingConfig  `envPrefix:"DGIS_"`
	Mapbox   MapboxConfig   `envPrefix:"MAPBOX_"`
	AI       AIConfig       `envPrefix:"XAI_"`
	City     CityConfig     `envPrefix:"CITY_"`
}

// HTTPConfig controls the HTTP server behaviour.
type HTTPConfig struct {
	Address      string        `env:"ADDRESS" envDefault:":8080"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
}

// DatabaseConfig groups the Postgres settings. An empty URL selects the
// in-memory store.
type DatabaseConfig struct {
	URL             string        `env:"URL"`
	RunMigrations   bool          `env:"RUN_MIGRATIONS" envDefault:"true"`
	MigrationsDir   string        `env:"MIGRATIONS_DIR" envDefault:"migrations"`
	MaxConns        int32         `env:"MAX_CONNS" envDefault:"20"`
	MaxConnIdleTime time.Duration `env:"MAX_CONN_IDLE_TIME" envDefault:"5m"`
	MaxConnLifetime time.Duration `env:"MAX_CONN_LIFETIME" envDefault:"30m"`
}

// RedisConfig enables the optional provider response cache when URL is set.
type RedisConfig struct {
	URL string        `env:"URL"`
	TTL time.Duration `env:"TTL" envDefault:"5m"`
}

// AuthConfig holds the token-signing settings.
type AuthConfig struct {
	Secret   string        `env:"SECRET" envDefault:"change-me-in-production"`
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
}

// RoutingConfig points at the 2GIS routing API.
type RoutingConfig struct {
	APIKey  string        `env:"API_KEY"`
	BaseURL string        `env:"BASE_URL" envDefault:"https://routing.api.2gis.com/routing/7.0.0/global"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// MapboxConfig points at the Mapbox isochrone API.
type MapboxConfig struct {
	AccessToken string        `env:"ACCESS_TOKEN"`
	BaseURL     string        `env:"BASE_URL" envDefault:"https://api.mapbox.com/isochrone/v1/mapbox"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// AIConfig points at the xAI chat-completions endpoint.
type AIConfig struct {
	APIKey      string        `env:"API_KEY"`
	BaseURL     string        `env:"API_URL" envDefault:"https://api.x.ai/v1/chat/completions"`
	Model       string        `env:"MODEL" envDefault:"grok-2-latest"`
	Temperature float64       `env:"TEMPERATURE" envDefault:"0.3"`
	MaxTokens   int           `env:"MAX_TOKENS" envDefault:"700"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"25s"`
	// RateLimit throttles the chat proxy: requests per second with a burst.
	RateLimit float64 `env:"RATE_LIMIT" envDefault:"2"`
	RateBurst int     `env:"RATE_BURST" envDefault:"5"`
}

// CityConfig carries the urban-model assumptions behind polygon insights.
type CityConfig struct {
	PopDensityPerKM2 float64 `env:"POP_DENSITY_PER_KM2" envDefault:"2900"`
	AvgHouseholdSize float64 `env:"AVG_HOUSEHOLD_SIZE" envDefault:"2.8"`
	StudentRatio     float64 `env:"STUDENT_RATIO" envDefault:"0.18"`
	SchoolCapacity   int     `env:"SCHOOL_CAPACITY" envDefault:"900"`
}

// Load reads configuration from the environment, applying defaults defined above.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
