package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/meltforce/liftsignal/internal/analytics"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Analytics AnalyticsConfig `yaml:"analytics"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// AnalyticsConfig exposes the analytics tunables in the config file. Zero
// values fall back to the documented defaults.
type AnalyticsConfig struct {
	Formula        string  `yaml:"formula"`
	DefaultRIR     float64 `yaml:"default_rir"`
	BaselineWindow int     `yaml:"baseline_window"`
	Sensitivity    float64 `yaml:"sensitivity"`

	ImprovementThreshold float64 `yaml:"improvement_threshold"`
	StagnationThreshold  float64 `yaml:"stagnation_threshold"`
	RegressionThreshold  float64 `yaml:"regression_threshold"`
	FatigueCeiling       float64 `yaml:"fatigue_ceiling"`

	// Per-recovery-group exponential decay constants, per hour.
	DecayFast   float64 `yaml:"decay_fast"`
	DecayMedium float64 `yaml:"decay_medium"`
	DecayLarge  float64 `yaml:"decay_large"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// AnalyticsConfig resolves the config file's analytics section against the
// package defaults.
func (c *Config) AnalyticsCore() analytics.Config {
	core := analytics.DefaultConfig()
	a := c.Analytics
	if a.Formula != "" {
		core.Formula = analytics.Formula(a.Formula)
	}
	if a.DefaultRIR != 0 {
		core.DefaultRIR = a.DefaultRIR
	}
	if a.BaselineWindow > 0 {
		core.BaselineWindow = a.BaselineWindow
	}
	if a.Sensitivity > 0 {
		core.Sensitivity = a.Sensitivity
	}
	if a.ImprovementThreshold != 0 {
		core.ImprovementThreshold = a.ImprovementThreshold
	}
	if a.StagnationThreshold != 0 {
		core.StagnationThreshold = a.StagnationThreshold
	}
	// The regression threshold is negative: any non-zero value overrides.
	if a.RegressionThreshold != 0 {
		core.RegressionThreshold = a.RegressionThreshold
	}
	if a.FatigueCeiling > 0 {
		core.FatigueCeiling = a.FatigueCeiling
	}
	if a.DecayFast > 0 {
		core.DecayFast = a.DecayFast
	}
	if a.DecayMedium > 0 {
		core.DecayMedium = a.DecayMedium
	}
	if a.DecayLarge > 0 {
		core.DecayLarge = a.DecayLarge
	}
	return core
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix LIFTSIGNAL_ and underscore-separated paths:
//
//	LIFTSIGNAL_SERVER_HOST, LIFTSIGNAL_SERVER_PORT,
//	LIFTSIGNAL_DB_HOST, LIFTSIGNAL_DB_PORT, LIFTSIGNAL_DB_NAME,
//	LIFTSIGNAL_DB_USER, LIFTSIGNAL_DB_PASSWORD, LIFTSIGNAL_DB_SSLMODE,
//	LIFTSIGNAL_AUTH_API_KEY, LIFTSIGNAL_TS_HOSTNAME, LIFTSIGNAL_TS_STATE_DIR,
//	LIFTSIGNAL_ANALYTICS_FORMULA, LIFTSIGNAL_ANALYTICS_DEFAULT_RIR,
//	LIFTSIGNAL_ANALYTICS_BASELINE_WINDOW, LIFTSIGNAL_ANALYTICS_SENSITIVITY,
//	LIFTSIGNAL_ANALYTICS_IMPROVEMENT_THRESHOLD, LIFTSIGNAL_ANALYTICS_STAGNATION_THRESHOLD,
//	LIFTSIGNAL_ANALYTICS_REGRESSION_THRESHOLD, LIFTSIGNAL_ANALYTICS_FATIGUE_CEILING,
//	LIFTSIGNAL_ANALYTICS_DECAY_FAST, LIFTSIGNAL_ANALYTICS_DECAY_MEDIUM,
//	LIFTSIGNAL_ANALYTICS_DECAY_LARGE
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LIFTSIGNAL_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("LIFTSIGNAL_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LIFTSIGNAL_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("LIFTSIGNAL_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("LIFTSIGNAL_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("LIFTSIGNAL_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("LIFTSIGNAL_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("LIFTSIGNAL_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("LIFTSIGNAL_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("LIFTSIGNAL_TS_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("LIFTSIGNAL_TS_STATE_DIR"); v != "" {
		cfg.Tailscale.StateDir = v
	}
	if v := os.Getenv("LIFTSIGNAL_ANALYTICS_FORMULA"); v != "" {
		cfg.Analytics.Formula = v
	}
	if v := os.Getenv("LIFTSIGNAL_ANALYTICS_BASELINE_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analytics.BaselineWindow = n
		}
	}
	floatEnv("LIFTSIGNAL_ANALYTICS_DEFAULT_RIR", &cfg.Analytics.DefaultRIR)
	floatEnv("LIFTSIGNAL_ANALYTICS_SENSITIVITY", &cfg.Analytics.Sensitivity)
	floatEnv("LIFTSIGNAL_ANALYTICS_IMPROVEMENT_THRESHOLD", &cfg.Analytics.ImprovementThreshold)
	floatEnv("LIFTSIGNAL_ANALYTICS_STAGNATION_THRESHOLD", &cfg.Analytics.StagnationThreshold)
	floatEnv("LIFTSIGNAL_ANALYTICS_REGRESSION_THRESHOLD", &cfg.Analytics.RegressionThreshold)
	floatEnv("LIFTSIGNAL_ANALYTICS_FATIGUE_CEILING", &cfg.Analytics.FatigueCeiling)
	floatEnv("LIFTSIGNAL_ANALYTICS_DECAY_FAST", &cfg.Analytics.DecayFast)
	floatEnv("LIFTSIGNAL_ANALYTICS_DECAY_MEDIUM", &cfg.Analytics.DecayMedium)
	floatEnv("LIFTSIGNAL_ANALYTICS_DECAY_LARGE", &cfg.Analytics.DecayLarge)
}

func floatEnv(name string, dst *float64) {
	if v := os.Getenv(name); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	switch c.Analytics.Formula {
	case "", string(analytics.FormulaEpley), string(analytics.FormulaBrzycki):
	default:
		return fmt.Errorf("analytics.formula must be %q or %q", analytics.FormulaEpley, analytics.FormulaBrzycki)
	}
	return nil
}
