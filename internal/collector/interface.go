package collector

import (
	"context"
	"time"

	"github.com/newthinker/quant/internal/core"
)

// Source fetches historical bars for a ticker.
type Source interface {
	Name() string

	// FetchHistory returns bars in [from, to] at the given interval,
	// ordered oldest to newest. An unknown ticker yields an empty slice.
	FetchHistory(ctx context.Context, ticker string, from, to time.Time, interval string) ([]core.Bar, error)
}
