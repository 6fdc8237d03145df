package collector

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/newthinker/quant/internal/core"
)

// Memory serves bars from an in-process map. Used for tests and for
// replaying captured histories.
type Memory struct {
	name string
	mu   sync.RWMutex
	bars map[string][]core.Bar
	errs map[string]error
}

// NewMemory creates an empty in-memory source.
func NewMemory(name string) *Memory {
	return &Memory{
		name: name,
		bars: make(map[string][]core.Bar),
		errs: make(map[string]error),
	}
}

func (m *Memory) Name() string {
	return m.name
}

// Set replaces the history for ticker.
func (m *Memory) Set(ticker string, bars []core.Bar) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bars[strings.ToUpper(ticker)] = bars
}

// Fail makes every fetch of ticker return err.
func (m *Memory) Fail(ticker string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[strings.ToUpper(ticker)] = err
}

// FetchHistory returns the stored bars inside [from, to]. A zero from or
// to leaves that side open.
func (m *Memory) FetchHistory(ctx context.Context, ticker string, from, to time.Time, interval string) ([]core.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	key := strings.ToUpper(ticker)
	if err := m.errs[key]; err != nil {
		return nil, err
	}

	out := make([]core.Bar, 0, len(m.bars[key]))
	for _, b := range m.bars[key] {
		if !from.IsZero() && b.Time.Before(from) {
			continue
		}
		if !to.IsZero() && b.Time.After(to) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}
