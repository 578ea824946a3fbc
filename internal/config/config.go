package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"

	"vedaBack/internal/pricing"
)

const (
	defaultConfigPath    = "config/config.yaml"
	defaultSLAHours      = 72
	defaultWindowMs      = 60000
	defaultMaxPerWindow  = 5
	defaultSweepInterval = time.Hour
)

type Config struct {
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Engine EngineConfig `yaml:"engine"`
}

// RateLimitConfig holds the fixed-window defaults plus per-limiter max
// overrides keyed by limiter name.
type RateLimitConfig struct {
	WindowMs  int            `yaml:"window_ms"`
	Max       int            `yaml:"max"`
	Overrides map[string]int `yaml:"overrides"`
}

func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowMs) * time.Millisecond
}

// MaxFor returns the per-window budget for a named limiter.
func (c RateLimitConfig) MaxFor(name string) int {
	if v, ok := c.Overrides[name]; ok && v > 0 {
		return v
	}
	return c.Max
}

// EngineConfig is injected into the ledger/lifecycle engine so tests can
// run with alternate tier tables and shorter SLA windows.
type EngineConfig struct {
	Pricing              pricing.Config  `yaml:"pricing"`
	SLAHours             int             `yaml:"sla_hours"`
	RateLimit            RateLimitConfig `yaml:"rate_limit"`
	SweepIntervalMinutes int             `yaml:"sweep_interval_minutes"`
}

func (e EngineConfig) SLAWindow() time.Duration {
	return time.Duration(e.SLAHours) * time.Hour
}

func (e EngineConfig) SweepInterval() time.Duration {
	if e.SweepIntervalMinutes <= 0 {
		return defaultSweepInterval
	}
	return time.Duration(e.SweepIntervalMinutes) * time.Minute
}

// LoadConfig reads the yaml config (path from CONFIG_PATH) and applies
// environment overrides and defaults. A missing file is not an error:
// everything has a default except the database URL.
func LoadConfig() (Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("unmarshal config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "mysql"
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v, err := readIntEnv("SLA_HOURS"); err != nil {
		return Config{}, err
	} else if v != nil {
		cfg.Engine.SLAHours = *v
	}
	if v, err := readIntEnv("RATE_LIMIT_WINDOW_MS"); err != nil {
		return Config{}, err
	} else if v != nil {
		cfg.Engine.RateLimit.WindowMs = *v
	}
	if v, err := readIntEnv("RATE_LIMIT_MAX"); err != nil {
		return Config{}, err
	} else if v != nil {
		cfg.Engine.RateLimit.Max = *v
	}

	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":4001"
	}
	if cfg.Engine.SLAHours <= 0 {
		cfg.Engine.SLAHours = defaultSLAHours
	}
	if cfg.Engine.RateLimit.WindowMs <= 0 {
		cfg.Engine.RateLimit.WindowMs = defaultWindowMs
	}
	if cfg.Engine.RateLimit.Max <= 0 {
		cfg.Engine.RateLimit.Max = defaultMaxPerWindow
	}

	p := &cfg.Engine.Pricing
	if len(p.Tier1Cities) == 0 {
		p.Tier1Cities = []string{"Almaty", "Astana", "Shymkent"}
	}
	if len(p.Tier2Cities) == 0 {
		p.Tier2Cities = []string{"Karaganda", "Aktobe", "Taraz", "Pavlodar", "Oskemen", "Atyrau", "Kostanay"}
	}
	if len(p.Tier2Counties) == 0 {
		p.Tier2Counties = []string{"Almaty Region", "Karaganda Region", "Turkistan Region", "Aktobe Region"}
	}
	if p.Tier1Cost <= 0 {
		p.Tier1Cost = 80
	}
	if p.Tier2Cost <= 0 {
		p.Tier2Cost = 50
	}
	// tier 3 is deliberately below tier 2 to keep the entry cost low in
	// underserved geography
	if p.Tier3Cost <= 0 {
		p.Tier3Cost = 30
	}
}

func readIntEnv(name string) (*int, error) {
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return &v, nil
}
