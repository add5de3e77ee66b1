package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ProviderConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type AgentConfig struct {
	MaxTurns    int    `mapstructure:"max_turns"`
	ProfilesDir string `mapstructure:"profiles_dir"`
}

type WeatherConfig struct {
	GeocodingURL   string        `mapstructure:"geocoding_url"`
	ForecastURL    string        `mapstructure:"forecast_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	MaxConns       int           `mapstructure:"max_connections"`
	MaxIdleConns   int           `mapstructure:"max_idle_connections"`
}

type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
}

type Config struct {
	Provider ProviderConfig `mapstructure:"provider"`
	Agent    AgentConfig    `mapstructure:"agent"`
	Weather  WeatherConfig  `mapstructure:"weather"`
	Cache    CacheConfig    `mapstructure:"cache"`
}

// Load reads nimbus.yaml from the working directory or ~/.nimbus. Every
// key has a default, so a missing config file is fine as long as the API
// key can be found in the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("nimbus")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.nimbus")

	home := os.Getenv("HOME")
	v.SetDefault("provider.base_url", "")
	v.SetDefault("provider.api_key", "${OPENAI_API_KEY}")
	v.SetDefault("provider.model", "gpt-4o")
	v.SetDefault("provider.request_timeout", "60s")
	v.SetDefault("agent.max_turns", 10)
	v.SetDefault("agent.profiles_dir", filepath.Join(home, ".nimbus", "profiles"))
	v.SetDefault("weather.geocoding_url", "https://geocoding-api.open-meteo.com/v1/search")
	v.SetDefault("weather.forecast_url", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("weather.timeout", "10s")
	v.SetDefault("weather.connect_timeout", "5s")
	v.SetDefault("weather.max_connections", 10)
	v.SetDefault("weather.max_idle_connections", 5)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.db_path", filepath.Join(home, ".nimbus", "locations.db"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Expand environment variables in the API key
	if strings.HasPrefix(cfg.Provider.APIKey, "${") && strings.HasSuffix(cfg.Provider.APIKey, "}") {
		envVar := cfg.Provider.APIKey[2 : len(cfg.Provider.APIKey)-1]
		cfg.Provider.APIKey = os.Getenv(envVar)
	}

	return &cfg, nil
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.Provider.APIKey == "" {
		return fmt.Errorf("no API key configured: set OPENAI_API_KEY or provider.api_key in nimbus.yaml")
	}
	return nil
}
