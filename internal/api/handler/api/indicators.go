package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/newthinker/quant/internal/analysis"
	"github.com/newthinker/quant/internal/api/response"
	"github.com/newthinker/quant/internal/core"
)

// MaxBatchTickers bounds one batch indicators request.
const MaxBatchTickers = 50

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// TechnicalAnalyzer defines the interface needed from analysis.Service.
type TechnicalAnalyzer interface {
	Technical(ctx context.Context, ticker string) analysis.TechnicalResult
	TechnicalBatch(ctx context.Context, tickers []string) []analysis.TechnicalResult
}

// IndicatorsHandler handles indicator snapshot requests.
type IndicatorsHandler struct {
	analyzer TechnicalAnalyzer
}

// NewIndicatorsHandler creates a new indicators handler.
func NewIndicatorsHandler(analyzer TechnicalAnalyzer) *IndicatorsHandler {
	return &IndicatorsHandler{analyzer: analyzer}
}

// Get returns the snapshot for the {ticker} path value.
func (h *IndicatorsHandler) Get(w http.ResponseWriter, r *http.Request) {
	res := h.analyzer.Technical(r.Context(), r.PathValue("ticker"))
	if err := res.Err(); err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, res)
}

type batchRequest struct {
	Tickers []string `json:"tickers"`
}

// Batch analyzes several tickers. Per-ticker failures are reported inline
// and do not fail the request.
func (h *IndicatorsHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeBody(w, r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}
	if len(req.Tickers) == 0 {
		response.Fail(w, core.WrapError(core.ErrInvalidInput, errors.New("tickers is required")))
		return
	}
	if len(req.Tickers) > MaxBatchTickers {
		response.Fail(w, core.WrapError(core.ErrInvalidInput,
			fmt.Errorf("at most %d tickers per request, got %d", MaxBatchTickers, len(req.Tickers))))
		return
	}

	results := h.analyzer.TechnicalBatch(r.Context(), req.Tickers)
	response.JSON(w, http.StatusOK, map[string]any{
		"results": results,
		"count":   len(results),
	})
}

// decodeBody reads a bounded JSON body, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return core.WrapError(core.ErrInvalidInput, fmt.Errorf("decoding body: %w", err))
	}
	return nil
}
