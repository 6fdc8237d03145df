// Package analysis fetches bar histories and runs the indicator and risk
// engines on them. It owns timeouts, fan-out and observability; the
// engines stay pure.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/newthinker/quant/internal/collector"
	"github.com/newthinker/quant/internal/config"
	"github.com/newthinker/quant/internal/core"
	"github.com/newthinker/quant/internal/indicator"
	"github.com/newthinker/quant/internal/metrics"
	"github.com/newthinker/quant/internal/risk"
	"github.com/newthinker/quant/internal/series"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options control fetch windows and fan-out.
type Options struct {
	Benchmark         string
	Interval          string
	Timeout           time.Duration
	MaxConcurrency    int
	IndicatorLookback time.Duration
	RiskLookback      time.Duration
	Policy            series.Policy
	Risk              risk.Config
}

// DefaultOptions mirrors config.Defaults.
func DefaultOptions() Options {
	return OptionsFromConfig(config.Defaults())
}

// OptionsFromConfig maps the collector and analysis sections.
func OptionsFromConfig(cfg *config.Config) Options {
	day := 24 * time.Hour
	return Options{
		Benchmark:         cfg.Analysis.Benchmark,
		Interval:          cfg.Collector.Interval,
		Timeout:           cfg.Collector.Timeout,
		MaxConcurrency:    cfg.Collector.MaxConcurrency,
		IndicatorLookback: time.Duration(cfg.Analysis.IndicatorLookbackDays) * day,
		RiskLookback:      time.Duration(cfg.Analysis.RiskLookbackDays) * day,
		Policy:            series.DefaultPolicy(),
		Risk:              cfg.Analysis.RiskConfig(),
	}
}

// Service runs technical and risk analyses against a bar source.
type Service struct {
	source     collector.Source
	opts       Options
	indicators *indicator.Engine
	risk       *risk.Engine
	metrics    *metrics.Registry
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates a service. reg may be nil to disable metrics.
func NewService(source collector.Source, opts Options, logger *zap.Logger, reg *metrics.Registry) (*Service, error) {
	if source == nil {
		return nil, errors.New("analysis: source is required")
	}
	if err := opts.Risk.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:     source,
		opts:       opts,
		indicators: indicator.NewEngine(opts.Policy),
		risk:       risk.NewEngine(opts.Risk, opts.Policy),
		metrics:    reg,
		logger:     logger.With(zap.String("source", source.Name())),
		now:        time.Now,
	}, nil
}

// Technical computes the indicator snapshot for ticker. A benchmark that
// cannot be fetched only omits relative strength.
func (s *Service) Technical(ctx context.Context, ticker string) TechnicalResult {
	start := time.Now()
	ticker = normalizeTicker(ticker)
	snap, err := s.technical(ctx, ticker)
	return s.technicalOutcome(ticker, start, snap, err)
}

func (s *Service) technical(ctx context.Context, ticker string) (*indicator.Snapshot, error) {
	if ticker == "" {
		return nil, core.WrapError(core.ErrInvalidInput, errors.New("ticker is required"))
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tickers := []string{ticker}
	if s.opts.Benchmark != "" && s.opts.Benchmark != ticker {
		tickers = append(tickers, s.opts.Benchmark)
	}
	fetched := s.fetchAll(ctx, tickers, s.opts.IndicatorLookback)

	var benchmark []core.Bar
	if s.opts.Benchmark != "" {
		if b := fetched[s.opts.Benchmark]; b.err == nil {
			benchmark = b.bars
		}
	}
	return s.computeTechnical(ticker, fetched[ticker], benchmark)
}

// TechnicalBatch analyzes every ticker, at most MaxConcurrency at a time.
// The benchmark is fetched once up front and shared. Results keep the input
// order; one failure never affects the others.
func (s *Service) TechnicalBatch(ctx context.Context, tickers []string) []TechnicalResult {
	results := make([]TechnicalResult, len(tickers))
	benchmark := s.fetchBenchmark(ctx, s.opts.IndicatorLookback)

	var g errgroup.Group
	if s.opts.MaxConcurrency > 0 {
		g.SetLimit(s.opts.MaxConcurrency)
	}
	for i, t := range tickers {
		g.Go(func() error {
			start := time.Now()
			ticker := normalizeTicker(t)
			snap, err := s.technicalWithBenchmark(ctx, ticker, benchmark)
			results[i] = s.technicalOutcome(ticker, start, snap, err)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *Service) technicalWithBenchmark(ctx context.Context, ticker string, benchmark []core.Bar) (*indicator.Snapshot, error) {
	if ticker == "" {
		return nil, core.WrapError(core.ErrInvalidInput, errors.New("ticker is required"))
	}
	if ticker == s.opts.Benchmark && benchmark != nil {
		return s.computeTechnical(ticker, fetchResult{bars: benchmark}, benchmark)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	from, to := s.window(s.opts.IndicatorLookback)
	bars, err := s.fetch(ctx, ticker, from, to)
	return s.computeTechnical(ticker, fetchResult{bars: bars, err: err}, benchmark)
}

func (s *Service) computeTechnical(ticker string, f fetchResult, benchmark []core.Bar) (*indicator.Snapshot, error) {
	if f.err != nil {
		return nil, fetchError(ticker, f.err)
	}
	return s.indicators.Compute(ticker, f.bars, benchmark)
}

func (s *Service) technicalOutcome(ticker string, start time.Time, snap *indicator.Snapshot, err error) TechnicalResult {
	s.record(metrics.EngineIndicators, start, err)

	log := s.logger.With(zap.String("ticker", ticker), zap.Duration("duration", time.Since(start)))
	if err != nil {
		log.Warn("technical analysis failed", zap.Error(err))
		return technicalResult(ticker, nil, err)
	}
	s.degraded(metrics.EngineIndicators, snap.Warnings, log)
	log.Info("technical analysis complete", zap.Int("data_points", snap.DataPoints))
	return technicalResult(ticker, snap, nil)
}

// fetchBenchmark returns the benchmark history, or nil when it is not
// configured or cannot be fetched in time.
func (s *Service) fetchBenchmark(ctx context.Context, lookback time.Duration) []core.Bar {
	if s.opts.Benchmark == "" {
		return nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	from, to := s.window(lookback)
	bars, err := s.fetch(ctx, s.opts.Benchmark, from, to)
	if err != nil {
		return nil
	}
	return bars
}

// Risk computes portfolio risk. A holding whose history cannot be fetched
// counts as a missing series.
func (s *Service) Risk(ctx context.Context, portfolioID string, p core.Portfolio) RiskResult {
	start := time.Now()

	m, err := s.portfolioRisk(ctx, p)
	s.record(metrics.EngineRisk, start, err)

	log := s.logger.With(
		zap.String("portfolio_id", portfolioID),
		zap.Int("positions", len(p.Positions)),
		zap.Duration("duration", time.Since(start)),
	)
	if err != nil {
		log.Warn("risk analysis failed", zap.Error(err))
		return riskResult(portfolioID, nil, err)
	}
	s.degraded(metrics.EngineRisk, m.Warnings, log)
	log.Info("risk analysis complete",
		zap.Int("data_points", m.DataPoints),
		zap.Float64("var_95", m.VaR95),
		zap.Float64("beta", m.Beta),
	)
	return riskResult(portfolioID, m, nil)
}

func (s *Service) portfolioRisk(ctx context.Context, p core.Portfolio) (*risk.Metrics, error) {
	holdings := p.Holdings()
	if len(holdings) == 0 || p.TotalValue <= 0 {
		return s.risk.Compute(risk.Input{Positions: p.Positions, TotalValue: p.TotalValue})
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tickers := uniqueTickers(holdings)
	withBenchmark := tickers
	if s.opts.Benchmark != "" && !slices.Contains(tickers, s.opts.Benchmark) {
		withBenchmark = append(append([]string(nil), tickers...), s.opts.Benchmark)
	}
	fetched := s.fetchAll(ctx, withBenchmark, s.opts.RiskLookback)

	// Only the holdings' own errors decide the outcome. The benchmark shares
	// the deadline, so it may time out while every holding succeeded.
	var (
		bars     = make(map[string][]core.Bar, len(tickers))
		timedOut []string
		cause    error
	)
	for _, t := range tickers {
		f := fetched[t]
		switch {
		case f.err == nil:
			bars[t] = f.bars
		case errors.Is(f.err, core.ErrInvalidInput), errors.Is(f.err, context.Canceled):
			return nil, fetchError(t, f.err)
		case isTimeout(f.err):
			timedOut = append(timedOut, t)
			cause = f.err
		}
	}
	if len(timedOut) > 0 {
		return nil, fetchError(strings.Join(timedOut, ","), cause)
	}

	var benchmark []core.Bar
	if s.opts.Benchmark != "" {
		if b := fetched[s.opts.Benchmark]; b.err == nil {
			benchmark = b.bars
		}
	}

	return s.risk.Compute(risk.Input{
		Positions:  p.Positions,
		Bars:       bars,
		Benchmark:  benchmark,
		TotalValue: p.TotalValue,
	})
}

type fetchResult struct {
	bars []core.Bar
	err  error
}

// fetchAll fetches every ticker, at most MaxConcurrency at a time. Failures
// are reported per ticker and never cancel the siblings.
func (s *Service) fetchAll(ctx context.Context, tickers []string, lookback time.Duration) map[string]fetchResult {
	from, to := s.window(lookback)

	var (
		mu  sync.Mutex
		out = make(map[string]fetchResult, len(tickers))
		g   errgroup.Group
	)
	if s.opts.MaxConcurrency > 0 {
		g.SetLimit(s.opts.MaxConcurrency)
	}

	for _, t := range tickers {
		g.Go(func() error {
			bars, err := s.fetch(ctx, t, from, to)
			mu.Lock()
			out[t] = fetchResult{bars: bars, err: err}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// fetch returns a normalized, validated history for one ticker.
func (s *Service) fetch(ctx context.Context, ticker string, from, to time.Time) ([]core.Bar, error) {
	bars, err := s.source.FetchHistory(ctx, ticker, from, to, s.opts.Interval)
	if s.metrics != nil {
		s.metrics.RecordFetch(s.source.Name(), len(bars), err)
	}
	if err != nil {
		s.logger.Warn("fetch failed", zap.String("ticker", ticker), zap.Error(err))
		return nil, err
	}

	bars = series.Ascending(bars)
	if err := series.Validate(bars, s.opts.Interval == "1d"); err != nil {
		s.logger.Warn("rejecting malformed series", zap.String("ticker", ticker), zap.Error(err))
		return nil, err
	}
	return bars, nil
}

func (s *Service) window(lookback time.Duration) (from, to time.Time) {
	to = s.now()
	return to.Add(-lookback), to
}

// fetchError classifies a fetch failure from the error alone, so a sibling
// that outlived the shared deadline cannot turn it into a timeout.
func fetchError(ticker string, err error) error {
	var ce *core.Error
	if errors.As(err, &ce) {
		return err
	}
	if isTimeout(err) {
		return core.WrapError(core.ErrCollectorTimeout, fmt.Errorf("%s: %w", ticker, err))
	}
	return core.WrapError(core.ErrCollectorFailed, fmt.Errorf("%s: %w", ticker, err))
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.Timeout)
}

func (s *Service) record(engine string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordComputation(engine, StatusOf(err), time.Since(start).Seconds())
}

func (s *Service) degraded(engine string, warnings []core.Warning, log *zap.Logger) {
	for _, w := range warnings {
		log.Info("degraded result", zap.String("reason", w.Code), zap.String("detail", w.Message))
		if s.metrics != nil {
			s.metrics.RecordDegraded(engine, w.Code)
		}
	}
}

func normalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}

func uniqueTickers(positions []core.Position) []string {
	seen := make(map[string]struct{}, len(positions))
	out := make([]string, 0, len(positions))
	for _, p := range positions {
		if _, ok := seen[p.Ticker]; ok {
			continue
		}
		seen[p.Ticker] = struct{}{}
		out = append(out, p.Ticker)
	}
	sort.Strings(out)
	return out
}
