package analysis

import (
	"errors"

	"github.com/newthinker/quant/internal/core"
	"github.com/newthinker/quant/internal/indicator"
	"github.com/newthinker/quant/internal/risk"
)

// Failure is the serialized form of a failed computation.
type Failure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// codeInternal labels errors that carry no core code.
const codeInternal = "INTERNAL"

func failureOf(err error) *Failure {
	var ce *core.Error
	if !errors.As(err, &ce) {
		return &Failure{Code: codeInternal, Message: err.Error()}
	}
	msg := ce.Message
	if ce.Cause != nil {
		msg = ce.Cause.Error()
	}
	return &Failure{Code: ce.Code, Message: msg}
}

// StatusOf returns the metrics status label for an outcome.
func StatusOf(err error) string {
	if err == nil {
		return "ok"
	}
	return failureOf(err).Code
}

// TechnicalResult is either a snapshot or an error for one ticker.
type TechnicalResult struct {
	*indicator.Snapshot
	Ticker string   `json:"ticker"`
	Error  *Failure `json:"error,omitempty"`

	err error
}

// Err returns the underlying error, nil on success.
func (r TechnicalResult) Err() error {
	return r.err
}

func technicalResult(ticker string, snap *indicator.Snapshot, err error) TechnicalResult {
	if err != nil {
		return TechnicalResult{Ticker: ticker, Error: failureOf(err), err: err}
	}
	return TechnicalResult{Snapshot: snap, Ticker: ticker}
}

// RiskResult is either metrics or an error for one portfolio.
type RiskResult struct {
	PortfolioID string        `json:"portfolio_id"`
	Metrics     *risk.Metrics `json:"metrics,omitempty"`
	Error       *Failure      `json:"error,omitempty"`

	err error
}

// Err returns the underlying error, nil on success.
func (r RiskResult) Err() error {
	return r.err
}

func riskResult(id string, m *risk.Metrics, err error) RiskResult {
	if err != nil {
		return RiskResult{PortfolioID: id, Error: failureOf(err), err: err}
	}
	return RiskResult{PortfolioID: id, Metrics: m}
}
