package main

import (
	"fmt"
	"os"

	"github.com/newthinker/quant/internal/analysis"
	"github.com/newthinker/quant/internal/collector"
	"github.com/newthinker/quant/internal/collector/binance"
	"github.com/newthinker/quant/internal/collector/yahoo"
	"github.com/newthinker/quant/internal/config"
	"github.com/newthinker/quant/internal/metrics"
	"github.com/newthinker/quant/internal/storage/archive"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "quant - technical indicators and portfolio risk analytics",
	Long: `quant computes technical indicator snapshots for single tickers and
risk metrics (VaR, beta, volatility, concentration) for portfolios from
daily price history.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads --config or falls back to defaults, then validates.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Debug("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// newSources registers every built-in bar source.
func newSources() *collector.Registry {
	reg := collector.NewRegistry()
	reg.Register(yahoo.New())
	reg.Register(binance.New())
	return reg
}

// buildService wires the configured source, optional cache and engines.
func buildService(cfg *config.Config, log *zap.Logger, reg *metrics.Registry) (*analysis.Service, error) {
	source, err := newSources().Resolve(cfg.Collector.Source)
	if err != nil {
		return nil, err
	}

	if cfg.Cache.Enabled {
		store, err := archive.Open(cfg.Cache.Type, cfg.Cache.Path, archive.S3Config{
			Bucket:    cfg.Cache.S3.Bucket,
			Endpoint:  cfg.Cache.S3.Endpoint,
			Region:    cfg.Cache.S3.Region,
			AccessKey: cfg.Cache.S3.AccessKey,
			SecretKey: cfg.Cache.S3.SecretKey,
			Prefix:    cfg.Cache.S3.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("opening cache: %w", err)
		}
		source = collector.NewCached(source, store, cfg.Cache.TTL, log.Named("cache"))
		log.Info("bar cache enabled", zap.String("type", cfg.Cache.Type), zap.Duration("ttl", cfg.Cache.TTL))
	}

	return analysis.NewService(source, analysis.OptionsFromConfig(cfg), log.Named("analysis"), reg)
}
