package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/newthinker/quant/internal/core"
	"github.com/newthinker/quant/internal/storage/archive"
	"go.uber.org/zap"
)

const cacheDateLayout = "20060102"

// cacheEntry is the archived form of one fetch window.
type cacheEntry struct {
	FetchedAt time.Time  `json:"fetched_at"`
	Bars      []core.Bar `json:"bars"`
}

// Cached serves histories from an archive before falling back to the
// wrapped source. Windows closed before today never expire; windows
// reaching into today expire after ttl.
type Cached struct {
	source Source
	store  archive.Storage
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewCached wraps source with store.
func NewCached(source Source, store archive.Storage, ttl time.Duration, logger *zap.Logger) *Cached {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{
		source: source,
		store:  store,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

func (c *Cached) Name() string {
	return c.source.Name()
}

// FetchHistory reads through the archive. Archive failures are logged and
// never fail the fetch.
func (c *Cached) FetchHistory(ctx context.Context, ticker string, from, to time.Time, interval string) ([]core.Bar, error) {
	key := CacheKey(c.source.Name(), ticker, interval, from, to)

	if bars, ok := c.lookup(ctx, key, to); ok {
		return bars, nil
	}

	bars, err := c.source.FetchHistory(ctx, ticker, from, to, interval)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return bars, nil
	}

	data, err := json.Marshal(cacheEntry{FetchedAt: c.now().UTC(), Bars: bars})
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return bars, nil
	}
	if err := c.store.Write(ctx, key, data); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return bars, nil
}

func (c *Cached) lookup(ctx context.Context, key string, to time.Time) ([]core.Bar, bool) {
	data, err := c.store.Read(ctx, key)
	if err != nil {
		if !errors.Is(err, archive.ErrNotFound) {
			c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn("discarding corrupt cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !c.closed(to) && c.now().Sub(entry.FetchedAt) > c.ttl {
		c.logger.Debug("cache entry expired", zap.String("key", key))
		return nil, false
	}

	c.logger.Debug("cache hit", zap.String("key", key), zap.Int("bars", len(entry.Bars)))
	return entry.Bars, true
}

// closed reports whether the window ends before the current UTC day.
func (c *Cached) closed(to time.Time) bool {
	y, m, d := c.now().UTC().Date()
	return to.UTC().Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// CacheKey returns the archive path for one fetch window.
func CacheKey(source, ticker, interval string, from, to time.Time) string {
	return fmt.Sprintf("%s/%s/%s/%s-%s.json",
		source,
		strings.ToUpper(ticker),
		interval,
		from.UTC().Format(cacheDateLayout),
		to.UTC().Format(cacheDateLayout),
	)
}
