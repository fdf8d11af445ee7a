package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds client configuration loaded from YAML and env.
type Config struct {
	APIKey string
	Mode   string

	GeoURL     string
	WeatherURL string
	Timeout    time.Duration

	CacheCapacity  int
	CacheFreshness time.Duration

	ServerPort      string
	ShutdownTimeout time.Duration

	DemoCity string
}

type fileConfig struct {
	Mode string `yaml:"mode"`

	Upstream struct {
		GeoURL     string `yaml:"geo_url"`
		WeatherURL string `yaml:"weather_url"`
		Timeout    string `yaml:"timeout"`
	} `yaml:"upstream"`

	Cache struct {
		Capacity  int    `yaml:"capacity"`
		Freshness string `yaml:"freshness"`
	} `yaml:"cache"`

	Server struct {
		Port            string `yaml:"port"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Demo struct {
		City string `yaml:"city"`
	} `yaml:"demo"`
}

type secretsFile struct {
	WeatherAPIKey string `yaml:"weather_api_key"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev) and
// config/secrets.yaml. API key comes from WEATHER_API_KEY env or the secrets
// file. Call from project root. A missing config file yields defaults; a
// missing API key is an error.
func Load() (*Config, error) {
	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}

	var fc fileConfig
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := &Config{}

	cfg.APIKey = os.Getenv("WEATHER_API_KEY")
	if cfg.APIKey == "" {
		secretsPath := filepath.Join(cwd, "config", "secrets.yaml")
		secretsData, err := os.ReadFile(secretsPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read secrets file: %w", err)
			}
		} else {
			var sec secretsFile
			if err := yaml.Unmarshal(secretsData, &sec); err != nil {
				return nil, fmt.Errorf("parse secrets file: %w", err)
			}
			cfg.APIKey = sec.WeatherAPIKey
		}
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("WEATHER_API_KEY required (set env or config/secrets.yaml weather_api_key)")
	}

	cfg.Mode = strings.TrimSpace(strings.ToLower(os.Getenv("WEATHER_MODE")))
	if cfg.Mode == "" {
		cfg.Mode = strings.TrimSpace(strings.ToLower(fc.Mode))
	}
	if cfg.Mode == "" {
		cfg.Mode = "on_demand"
	}

	cfg.GeoURL = fc.Upstream.GeoURL
	cfg.WeatherURL = fc.Upstream.WeatherURL
	cfg.Timeout = parseDuration(fc.Upstream.Timeout, 10*time.Second)

	cfg.CacheCapacity = fc.Cache.Capacity
	if cfg.CacheCapacity <= 0 {
		cfg.CacheCapacity = 10
	}
	cfg.CacheFreshness = parseDuration(fc.Cache.Freshness, 10*time.Minute)

	cfg.ServerPort = fc.Server.Port
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	cfg.ShutdownTimeout = parseDuration(fc.Server.ShutdownTimeout, 10*time.Second)

	cfg.DemoCity = fc.Demo.City
	if cfg.DemoCity == "" {
		cfg.DemoCity = "London"
	}

	return cfg, nil
}

// parseDuration parses s as a time.Duration, returning def when s is empty
// or invalid.
func parseDuration(s string, def time.Duration) time.Duration {
	if strings.TrimSpace(s) == "" {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
