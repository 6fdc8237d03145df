package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/newthinker/quant/internal/core"
	"github.com/newthinker/quant/internal/risk"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Collector CollectorConfig `mapstructure:"collector"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	Mode   string `mapstructure:"mode"`
	APIKey string `mapstructure:"api_key"`
}

// CollectorConfig selects the market data source and bounds its calls.
type CollectorConfig struct {
	Source         string        `mapstructure:"source"`
	Interval       string        `mapstructure:"interval"` // "1d", "1h", ...
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxConcurrency int           `mapstructure:"max_concurrency"`
}

// CacheConfig enables the bar history cache in front of the collector.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Type    string        `mapstructure:"type"` // "localfs" or "s3"
	Path    string        `mapstructure:"path"` // For localfs
	TTL     time.Duration `mapstructure:"ttl"`  // Expiry for windows that include today
	S3      S3Config      `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// AnalysisConfig holds lookback windows and risk estimation parameters.
type AnalysisConfig struct {
	Benchmark             string  `mapstructure:"benchmark"`
	IndicatorLookbackDays int     `mapstructure:"indicator_lookback_days"`
	RiskLookbackDays      int     `mapstructure:"risk_lookback_days"`
	VaRConfidence         float64 `mapstructure:"var_confidence"`
	TradingDays           int     `mapstructure:"trading_days"`
	TopHoldings           int     `mapstructure:"top_holdings"`
}

// RiskConfig converts the analysis section to risk engine parameters.
func (a AnalysisConfig) RiskConfig() risk.Config {
	return risk.Config{
		Confidence:  a.VaRConfidence,
		TradingDays: a.TradingDays,
		TopHoldings: a.TopHoldings,
	}
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file on top of Defaults
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("collector.source", d.Collector.Source)
	v.SetDefault("collector.interval", d.Collector.Interval)
	v.SetDefault("collector.timeout", d.Collector.Timeout)
	v.SetDefault("collector.max_concurrency", d.Collector.MaxConcurrency)
	v.SetDefault("cache.type", d.Cache.Type)
	v.SetDefault("cache.path", d.Cache.Path)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("analysis.benchmark", d.Analysis.Benchmark)
	v.SetDefault("analysis.indicator_lookback_days", d.Analysis.IndicatorLookbackDays)
	v.SetDefault("analysis.risk_lookback_days", d.Analysis.RiskLookbackDays)
	v.SetDefault("analysis.var_confidence", d.Analysis.VaRConfidence)
	v.SetDefault("analysis.trading_days", d.Analysis.TradingDays)
	v.SetDefault("analysis.top_holdings", d.Analysis.TopHoldings)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	rc := risk.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Mode: "release",
		},
		Collector: CollectorConfig{
			Source:         "yahoo",
			Interval:       "1d",
			Timeout:        20 * time.Second,
			MaxConcurrency: 8,
		},
		Cache: CacheConfig{
			Enabled: false,
			Type:    "localfs",
			Path:    "data/cache",
			TTL:     6 * time.Hour,
		},
		Analysis: AnalysisConfig{
			Benchmark: "SPY",
			// 200 trading days need roughly 290 calendar days plus holidays
			IndicatorLookbackDays: 400,
			RiskLookbackDays:      365,
			VaRConfidence:         rc.Confidence,
			TradingDays:           rc.TradingDays,
			TopHoldings:           rc.TopHoldings,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if c.Collector.Timeout < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("collector timeout cannot be negative, got %s", c.Collector.Timeout))
	}
	if c.Collector.MaxConcurrency < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_concurrency cannot be negative, got %d", c.Collector.MaxConcurrency))
	}

	if c.Cache.Enabled {
		if c.Cache.TTL < 0 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("cache ttl cannot be negative, got %s", c.Cache.TTL))
		}
		switch c.Cache.Type {
		case "localfs":
			if c.Cache.Path == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("cache path required when type is localfs"))
			}
		case "s3":
			if c.Cache.S3.Bucket == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("s3 bucket required when cache type is s3"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown cache type %q", c.Cache.Type))
		}
	}

	if c.Analysis.IndicatorLookbackDays < 0 || c.Analysis.RiskLookbackDays < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("lookback days cannot be negative"))
	}

	return c.Analysis.RiskConfig().Validate()
}
