package api

import (
	"context"
	"net/http"

	"github.com/newthinker/quant/internal/analysis"
	"github.com/newthinker/quant/internal/api/response"
	"github.com/newthinker/quant/internal/core"
)

// RiskAnalyzer defines the interface needed from analysis.Service.
type RiskAnalyzer interface {
	Risk(ctx context.Context, portfolioID string, p core.Portfolio) analysis.RiskResult
}

// RiskHandler handles portfolio risk requests.
type RiskHandler struct {
	analyzer RiskAnalyzer
}

// NewRiskHandler creates a new risk handler.
func NewRiskHandler(analyzer RiskAnalyzer) *RiskHandler {
	return &RiskHandler{analyzer: analyzer}
}

// Compute runs risk metrics for the posted portfolio snapshot.
func (h *RiskHandler) Compute(w http.ResponseWriter, r *http.Request) {
	var p core.Portfolio
	if err := decodeBody(w, r, &p); err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	res := h.analyzer.Risk(r.Context(), r.PathValue("id"), p)
	if err := res.Err(); err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, res)
}
